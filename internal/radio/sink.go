package radio

import (
	"io"
	"sync"
)

// SinkState mirrors the audio sink lifecycle.
type SinkState int

const (
	SinkIdle SinkState = iota
	SinkBuffering
	SinkPlaying
	SinkPaused
	SinkAutoPaused
)

func (s SinkState) String() string {
	switch s {
	case SinkIdle:
		return "idle"
	case SinkBuffering:
		return "buffering"
	case SinkPlaying:
		return "playing"
	case SinkPaused:
		return "paused"
	case SinkAutoPaused:
		return "autopaused"
	}
	return "unknown"
}

// Sink is the real-time audio output a session plays into. The production
// implementation encodes PCM to Opus and feeds a voice connection.
type Sink interface {
	Play(res *Resource) error
	Pause()
	Unpause()
	Stop()
	State() SinkState
}

// Resource is a playable audio stream with live volume scaling. The volume
// is read by the sink on every frame, so changes apply mid-playback.
type Resource struct {
	rc      io.ReadCloser
	cleanup func()
	once    sync.Once

	mu     sync.RWMutex
	volume float64
}

func NewResource(rc io.ReadCloser, cleanup func()) *Resource {
	return &Resource{rc: rc, cleanup: cleanup, volume: 1}
}

func (r *Resource) Read(p []byte) (int, error) {
	return r.rc.Read(p)
}

func (r *Resource) SetVolume(v float64) {
	r.mu.Lock()
	r.volume = v
	r.mu.Unlock()
}

func (r *Resource) Volume() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.volume
}

// Close releases the underlying stream; safe to call more than once.
func (r *Resource) Close() error {
	var err error
	r.once.Do(func() {
		err = r.rc.Close()
		if r.cleanup != nil {
			r.cleanup()
		}
	})
	return err
}
