package radio

import (
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// State is the session playback state.
type State int

const (
	StateIdle State = iota
	StateJoining
	StatePlaying
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateJoining:
		return "joining"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	}
	return "unknown"
}

// Caller describes the user invoking a session operation.
type Caller struct {
	UserID         string
	VoiceChannelID string // empty when the user is not in a voice channel
	TextChannelID  string
}

// StreamOpener builds sink-ready audio streams for stations. The production
// implementation shells out to ffmpeg.
type StreamOpener interface {
	// OpenDirect returns a playable stream for a continuously served URL,
	// plus a cleanup to release it.
	OpenDirect(url string) (io.ReadCloser, func(), error)
	// OpenPipe returns a writer the chunk fetcher appends raw segments to
	// and the playable stream produced from them, plus a cleanup.
	OpenPipe() (io.WriteCloser, io.ReadCloser, func(), error)
}

// Deps are the collaborators a session operates on. All of them are owned
// solely by the session once handed over.
type Deps struct {
	Catalog   *Catalog
	Transport Transport
	Messenger Messenger
	Opener    StreamOpener
	Client    Getter
	NewSink   func() Sink

	EmbedColor int

	// optional persistence hooks
	OnVolumeChange  func(guildID string, volume float64)
	OnStationChange func(guildID, stationName string)
}

// Session coordinates one radio playback instance for a guild: a voice link,
// an audio sink, a station selection, and a status card. Operations
// serialize on the session mutex, the explicit guard against interleaved
// station switches corrupting the fetcher or the sink.
type Session struct {
	mu sync.Mutex

	guildID string
	deps    Deps

	token   string
	state   State
	volume  float64
	current *Station

	voiceChannelID string
	textChannelID  string

	link     *VoiceLink
	sink     Sink
	resource *Resource
	fetcher  *Fetcher
	card     *StatusCard

	onStop func() // set by the registry to drop the session on teardown
}

// NewSession creates an empty session for a guild. Fields populate
// incrementally: the voice channel on the first valid play request, the text
// channel on the first bind.
func NewSession(guildID string, deps Deps) *Session {
	s := &Session{
		guildID: guildID,
		deps:    deps,
		token:   uuid.NewString(),
		state:   StateIdle,
		volume:  1,
		sink:    deps.NewSink(),
		card:    NewStatusCard(deps.Messenger),
	}
	log.Printf("[Session %s] New instance created [guild: %s]", s.token, guildID)
	return s
}

// Token returns the session's identity token, minted at creation and on
// every reset.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// CheckToken returns the session when the token is empty (direct command
// invocation) or matches the current one, and nil otherwise, so a control
// rendered before a reset cannot mutate the session that replaced it.
func (s *Session) CheckToken(token string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token == "" || token == s.token {
		return s
	}
	return nil
}

// State returns the current playback state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CurrentStation returns the active station, or nil.
func (s *Session) CurrentStation() *Station {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// PlayStation validates the caller's voice presence, resolves the station,
// joins voice if needed, starts playback and refreshes the status card. The
// returned boolean reports whether a station is now playing; invalid
// requests are no-ops that report the prior status.
func (s *Session) PlayStation(caller Caller, stationName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	log.Printf("[Session %s] PlayStation started [station: %s]", s.token, stationName)

	// The caller must sit in a voice channel, and if the session already
	// owns one it must be the same.
	if caller.VoiceChannelID == "" ||
		(s.voiceChannelID != "" && s.voiceChannelID != caller.VoiceChannelID) {
		return s.state == StatePlaying
	}

	if s.textChannelID == "" {
		s.bindTextChannelLocked(caller.TextChannelID)
	}
	if s.voiceChannelID == "" {
		s.voiceChannelID = caller.VoiceChannelID
	}

	st, ok := s.deps.Catalog.Resolve(stationName)
	if !ok || (s.current != nil && strings.EqualFold(s.current.Name, st.Name)) {
		return s.state == StatePlaying
	}

	// Stop the previous segmented fetcher before switching stations.
	if s.fetcher != nil {
		s.fetcher.Stop()
		s.fetcher = nil
	}
	s.current = st
	s.state = StateJoining

	if s.link == nil || s.link.Destroyed() {
		conn, err := s.deps.Transport.Join(s.guildID, s.voiceChannelID)
		if err != nil {
			log.Printf("[Session %s] Failed to join voice channel: %v", s.token, err)
			s.resetLocked()
			return false
		}
		s.link = NewVoiceLink(conn, s.sink, s.handleLinkDestroyed)
		log.Printf("[Session %s] New voice connection established", s.token)
	}

	res, fetcher, err := s.openStation(st)
	if err != nil {
		log.Printf("[Session %s] Failed to open station stream: %v", s.token, err)
		s.resetLocked()
		return false
	}

	res.SetVolume(s.volume)
	// Close the old resource first: it kills the transcoder and unblocks a
	// playback goroutine stuck reading a stalled stream, so the sink stop
	// below cannot hang.
	if s.resource != nil {
		s.resource.Close()
	}
	s.sink.Stop()
	if err := s.sink.Play(res); err != nil {
		log.Printf("[Session %s] Failed to play resource: %v", s.token, err)
		if fetcher != nil {
			fetcher.Stop()
		}
		res.Close()
		s.resetLocked()
		return false
	}

	s.resource = res
	s.fetcher = fetcher
	s.state = StatePlaying

	s.refreshCardLocked()
	if s.deps.OnStationChange != nil {
		s.deps.OnStationChange(s.guildID, st.Name)
	}

	log.Printf("[Session %s] Station changed successfully to %s", s.token, st.Name)
	return true
}

// Pause suspends the sink; a no-op unless playing.
func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePlaying {
		return
	}
	s.sink.Pause()
	s.state = StatePaused
	s.editCardLocked()
}

// Resume unpauses the sink; a no-op unless paused.
func (s *Session) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePaused {
		return
	}
	s.sink.Unpause()
	s.state = StatePlaying
	s.editCardLocked()
}

// SetVolume stores the new default and applies it to the active resource,
// if any. Playback state is unchanged.
func (s *Session) SetVolume(volume float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = volume
	if s.resource != nil {
		s.resource.SetVolume(volume)
	}
	if s.deps.OnVolumeChange != nil {
		s.deps.OnVolumeChange(s.guildID, volume)
	}
}

// Volume returns the session's current volume.
func (s *Session) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// BindTextChannel re-targets the status card at a new text channel.
func (s *Session) BindTextChannel(channelID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bindTextChannelLocked(channelID)
}

// ResendCard reposts the status card at the bottom of its channel. A no-op
// while nothing plays.
func (s *Session) ResendCard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateIdle {
		return
	}
	s.card.Update(s.renderLocked())
	s.card.Resend()
}

// Stop is the idempotent full teardown: fetcher, sink, voice link and status
// message all go, every reference clears, and a fresh token is minted so
// stale controls can no longer reach this session.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Session) bindTextChannelLocked(channelID string) {
	s.textChannelID = channelID
	s.card.Bind(channelID)
}

func (s *Session) resetLocked() {
	log.Printf("[Session %s] Resetting session", s.token)

	if s.fetcher != nil {
		s.fetcher.Stop()
		s.fetcher = nil
	}
	// Resource before sink: closing the stream unblocks a playback goroutine
	// stuck reading from a stalled station, which sink.Stop waits on.
	if s.resource != nil {
		s.resource.Close()
		s.resource = nil
	}
	s.sink.Stop()
	if s.link != nil {
		s.link.Destroy()
		s.link = nil
	}
	s.card.Delete()

	s.sink = s.deps.NewSink()
	s.card = NewStatusCard(s.deps.Messenger)
	s.token = uuid.NewString()
	s.volume = 1
	s.current = nil
	s.voiceChannelID = ""
	s.textChannelID = ""
	s.state = StateIdle

	if s.onStop != nil {
		s.onStop()
	}
}

// handleLinkDestroyed fires from the link's watcher goroutine when the voice
// connection dies for good (kick or exhausted rejoins).
func (s *Session) handleLinkDestroyed(link *VoiceLink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.link != link {
		return
	}
	log.Printf("[Session %s] Voice link lost, tearing session down", s.token)
	s.resetLocked()
}

// openStation builds the playable resource for a station and, for segmented
// stations, the running fetcher feeding it.
func (s *Session) openStation(st *Station) (*Resource, *Fetcher, error) {
	switch st.Kind {
	case DirectStream:
		rc, cleanup, err := s.deps.Opener.OpenDirect(st.Direct.StreamURL)
		if err != nil {
			return nil, nil, err
		}
		return NewResource(rc, cleanup), nil, nil

	case SegmentedStream:
		in, out, cleanup, err := s.deps.Opener.OpenPipe()
		if err != nil {
			return nil, nil, err
		}
		fetcher := NewFetcher(s.deps.Client, st.Segmented, in)
		if err := fetcher.Start(); err != nil {
			out.Close()
			cleanup()
			return nil, nil, err
		}
		return NewResource(out, cleanup), fetcher, nil
	}

	return nil, nil, fmt.Errorf("station %q has no audio source", st.Name)
}

// refreshCardLocked keeps the control UI pinned to the channel bottom: when
// the live message is no longer the most recent one, the card is resent
// rather than edited in place.
func (s *Session) refreshCardLocked() {
	s.card.Update(s.renderLocked())

	latest, err := s.deps.Messenger.LatestMessageID(s.textChannelID)
	if err != nil || latest != s.card.Live() || s.card.Live() == "" {
		if err != nil {
			log.Printf("[Session %s] Latest message lookup failed: %v", s.token, err)
		}
		s.card.Resend()
		return
	}
	s.card.Edit()
}

func (s *Session) editCardLocked() {
	s.card.Update(s.renderLocked())
	s.card.Edit()
}
