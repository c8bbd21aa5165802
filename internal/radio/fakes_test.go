package radio

import (
	"bytes"
	"fmt"
	"io"
	"sync"
)

// fakeGetter serves canned bodies keyed by URL and records request order.
// URLs without a canned body echo themselves as content.
type fakeGetter struct {
	mu     sync.Mutex
	bodies map[string][]byte
	errs   map[string]error
	calls  []string
}

func (g *fakeGetter) Get(url string) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, url)
	if err, ok := g.errs[url]; ok {
		return nil, err
	}
	if body, ok := g.bodies[url]; ok {
		return body, nil
	}
	return []byte(url), nil
}

func (g *fakeGetter) requested() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.calls))
	copy(out, g.calls)
	return out
}

// collectWriter is an io.WriteCloser accumulating everything written to it.
type collectWriter struct {
	mu       sync.Mutex
	writes   [][]byte
	closed   int
	writeErr error
}

func (w *collectWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.writeErr != nil {
		return 0, w.writeErr
	}
	buf := make([]byte, len(p))
	copy(buf, p)
	w.writes = append(w.writes, buf)
	return len(p), nil
}

func (w *collectWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed++
	return nil
}

func (w *collectWriter) closeCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

func (w *collectWriter) written() [][]byte {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([][]byte, len(w.writes))
	copy(out, w.writes)
	return out
}

// fakeMessenger records every messaging call and tracks which message the
// channel considers most recent.
type fakeMessenger struct {
	mu     sync.Mutex
	nextID int
	latest string

	sends   []string // channel IDs
	edits   []string // message IDs
	deletes []string // message IDs

	sendErr   error
	editErr   error
	deleteErr error
	latestErr error
}

func (m *fakeMessenger) Send(channelID string, content *CardContent) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return "", m.sendErr
	}
	m.nextID++
	id := fmt.Sprintf("m%d", m.nextID)
	m.sends = append(m.sends, channelID)
	m.latest = id
	return id, nil
}

func (m *fakeMessenger) Edit(channelID, messageID string, content *CardContent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.editErr != nil {
		return m.editErr
	}
	m.edits = append(m.edits, messageID)
	return nil
}

func (m *fakeMessenger) Delete(channelID, messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, messageID)
	return m.deleteErr
}

func (m *fakeMessenger) LatestMessageID(channelID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latest, m.latestErr
}

func (m *fakeMessenger) setLatest(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest = id
}

func (m *fakeMessenger) counts() (sends, edits, deletes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sends), len(m.edits), len(m.deletes)
}

// fakeSink implements Sink with bookkeeping only.
type fakeSink struct {
	mu       sync.Mutex
	state    SinkState
	played   []*Resource
	playErr  error
	stops    int
	pauses   int
	unpauses int
	onStop   func()
}

func (s *fakeSink) Play(res *Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.playErr != nil {
		return s.playErr
	}
	s.played = append(s.played, res)
	s.state = SinkPlaying
	return nil
}

func (s *fakeSink) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pauses++
	s.state = SinkPaused
}

func (s *fakeSink) Unpause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unpauses++
	s.state = SinkPlaying
}

func (s *fakeSink) Stop() {
	s.mu.Lock()
	s.stops++
	s.state = SinkIdle
	hook := s.onStop
	s.mu.Unlock()
	if hook != nil {
		hook()
	}
}

func (s *fakeSink) State() SinkState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *fakeSink) playCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.played)
}

// fakeConn is a scriptable voice connection. Tests push lifecycle events
// through emit.
type fakeConn struct {
	mu         sync.Mutex
	events     chan ConnEvent
	subscribed []Sink
	rejoins    int
	rejoinErr  error
	destroyed  bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{events: make(chan ConnEvent, 16)}
}

func (c *fakeConn) Subscribe(sink Sink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribed = append(c.subscribed, sink)
}

func (c *fakeConn) Rejoin() error {
	c.mu.Lock()
	c.rejoins++
	err := c.rejoinErr
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.emit(ConnEvent{State: ConnReady})
	return nil
}

func (c *fakeConn) Destroy() {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return
	}
	c.destroyed = true
	c.mu.Unlock()

	c.emit(ConnEvent{State: ConnDestroyed})
	close(c.events)
}

func (c *fakeConn) Events() <-chan ConnEvent { return c.events }

func (c *fakeConn) emit(ev ConnEvent) {
	select {
	case c.events <- ev:
	default:
	}
}

func (c *fakeConn) rejoinCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rejoins
}

// fakeTransport hands out fakeConns and records join targets.
type fakeTransport struct {
	mu      sync.Mutex
	joins   []string // "guild/channel"
	conns   []*fakeConn
	joinErr error
}

func (t *fakeTransport) Join(guildID, channelID string) (Conn, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.joinErr != nil {
		return nil, t.joinErr
	}
	t.joins = append(t.joins, guildID+"/"+channelID)
	conn := newFakeConn()
	t.conns = append(t.conns, conn)
	return conn, nil
}

func (t *fakeTransport) joinCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.joins)
}

func (t *fakeTransport) lastConn() *fakeConn {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.conns) == 0 {
		return nil
	}
	return t.conns[len(t.conns)-1]
}

// fakeOpener produces in-memory streams instead of transcoder processes.
type fakeOpener struct {
	mu        sync.Mutex
	directErr error
	pipeErr   error
	cleanups  int
	pipes     []*collectWriter
}

func (o *fakeOpener) OpenDirect(url string) (io.ReadCloser, func(), error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.directErr != nil {
		return nil, nil, o.directErr
	}
	return io.NopCloser(bytes.NewReader(nil)), o.countCleanup, nil
}

func (o *fakeOpener) OpenPipe() (io.WriteCloser, io.ReadCloser, func(), error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.pipeErr != nil {
		return nil, nil, nil, o.pipeErr
	}
	in := &collectWriter{}
	o.pipes = append(o.pipes, in)
	return in, io.NopCloser(bytes.NewReader(nil)), o.countCleanup, nil
}

func (o *fakeOpener) countCleanup() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cleanups++
}

func (o *fakeOpener) lastPipe() *collectWriter {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.pipes) == 0 {
		return nil
	}
	return o.pipes[len(o.pipes)-1]
}
