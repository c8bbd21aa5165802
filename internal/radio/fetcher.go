package radio

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Getter performs a one-shot HTTP GET with no built-in retry.
type Getter interface {
	Get(url string) ([]byte, error)
}

const mediaSequenceMarker = "#EXT-X-MEDIA-SEQUENCE:"

var errNoMediaSequence = errors.New("index has no media sequence marker")

// Fetcher turns sequentially numbered audio segments into one continuous
// byte stream. Start primes Prefetch segments synchronously, then a single
// goroutine fetches one further segment per poll interval. Fetches are never
// concurrent, so segments reach the stream in sequence order by construction.
//
// Closing the output writer is the end-of-stream marker; Stop emits it
// exactly once.
type Fetcher struct {
	client Getter
	src    *SegmentedSource
	out    io.WriteCloser

	// replaced in tests to drive polling manually
	newTicker func(time.Duration) (<-chan time.Time, func())

	seq int64

	mu        sync.Mutex
	running   bool
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func NewFetcher(client Getter, src *SegmentedSource, out io.WriteCloser) *Fetcher {
	return &Fetcher{
		client: client,
		src:    src,
		out:    out,
		newTicker: func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		},
	}
}

// Start fetches the index resource, computes the starting sequence as the
// current one minus Prefetch, appends Prefetch segments to the stream, then
// begins polling. Priming synchronously absorbs the sink's initial buffering
// lag so playback does not stutter at start.
func (f *Fetcher) Start() error {
	body, err := f.client.Get(f.src.IndexURL)
	if err != nil {
		return fmt.Errorf("index fetch failed: %w", err)
	}

	seq, err := parseMediaSequence(string(body))
	if err != nil {
		return fmt.Errorf("index parse failed: %w", err)
	}

	f.seq = seq - int64(f.src.Prefetch)
	for i := 0; i < f.src.Prefetch; i++ {
		f.fetchNext()
	}

	f.mu.Lock()
	f.running = true
	f.stop = make(chan struct{})
	f.done = make(chan struct{})
	f.mu.Unlock()

	tick, cancel := f.newTicker(f.src.PollInterval)
	go f.poll(tick, cancel)
	return nil
}

// Stop cancels the polling goroutine and closes the stream. Calling Stop
// when the fetcher never started, or a second time, is a no-op.
func (f *Fetcher) Stop() {
	f.mu.Lock()
	if !f.running {
		f.mu.Unlock()
		return
	}
	f.running = false
	f.mu.Unlock()

	close(f.stop)
	// Closing out first unblocks a poll goroutine stuck writing to a full pipe.
	f.closeOut()
	<-f.done
}

func (f *Fetcher) poll(tick <-chan time.Time, cancel func()) {
	defer close(f.done)
	defer cancel()
	for {
		select {
		case <-f.stop:
			return
		case <-tick:
			f.fetchNext()
		}
	}
}

// fetchNext retrieves the segment at the current sequence and appends it to
// the stream. A failed fetch is logged and skipped, the sequence still
// advances: a brief audio gap beats an ever-growing backlog.
func (f *Fetcher) fetchNext() {
	seq := f.seq
	f.seq++

	chunk, err := f.client.Get(f.src.SegmentURL(seq))
	if err != nil {
		log.Printf("[Fetcher] Error fetching segment %d: %v", seq, err)
		return
	}

	if _, err := f.out.Write(chunk); err != nil {
		log.Printf("[Fetcher] Error appending segment %d: %v", seq, err)
		return
	}
	log.Printf("[Fetcher] Segment %d appended (%d bytes)", seq, len(chunk))
}

func (f *Fetcher) closeOut() {
	f.closeOnce.Do(func() {
		if err := f.out.Close(); err != nil {
			log.Printf("[Fetcher] Error closing stream: %v", err)
		}
	})
}

// parseMediaSequence extracts the current segment sequence number from a
// playlist index body.
func parseMediaSequence(index string) (int64, error) {
	_, rest, found := strings.Cut(index, mediaSequenceMarker)
	if !found {
		return 0, errNoMediaSequence
	}
	line, _, _ := strings.Cut(rest, "\n")
	seq, err := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad media sequence %q: %w", line, err)
	}
	return seq, nil
}
