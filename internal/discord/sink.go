package discord

import (
	"encoding/binary"
	"io"
	"log"
	"sync"
	"time"

	"layeh.com/gopus"

	"github.com/Cotezzo/leotta-fm/internal/radio"
	"github.com/Cotezzo/leotta-fm/internal/transcode"
)

const frameDuration = 20 * time.Millisecond

// OpusSink reads PCM from the session's resource, applies the live volume,
// encodes to Opus and feeds the attached voice connection. One playback
// goroutine at a time; Play stops any previous one first.
type OpusSink struct {
	mu     sync.Mutex
	state  radio.SinkState
	paused bool
	out    chan<- []byte
	stop   chan struct{}
	done   chan struct{}
}

func NewOpusSink() *OpusSink {
	return &OpusSink{state: radio.SinkIdle}
}

// Attach points the sink at a voice connection's opus channel. Called on
// subscribe and again after every rejoin.
func (s *OpusSink) Attach(out chan<- []byte) {
	s.mu.Lock()
	s.out = out
	s.mu.Unlock()
}

func (s *OpusSink) Play(res *radio.Resource) error {
	s.Stop()

	s.mu.Lock()
	s.paused = false
	s.state = radio.SinkBuffering
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stop, s.done
	s.mu.Unlock()

	go s.run(res, stop, done)
	return nil
}

func (s *OpusSink) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop == nil {
		return
	}
	s.paused = true
	s.state = radio.SinkPaused
}

func (s *OpusSink) Unpause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop == nil {
		return
	}
	s.paused = false
	s.state = radio.SinkPlaying
}

func (s *OpusSink) Stop() {
	s.mu.Lock()
	if s.stop == nil {
		s.state = radio.SinkIdle
		s.mu.Unlock()
		return
	}
	stop, done := s.stop, s.done
	s.stop = nil
	s.done = nil
	s.mu.Unlock()

	close(stop)
	<-done

	s.mu.Lock()
	s.state = radio.SinkIdle
	s.mu.Unlock()
}

func (s *OpusSink) State() radio.SinkState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *OpusSink) run(res *radio.Resource, stop, done chan struct{}) {
	defer close(done)

	encoder, err := gopus.NewEncoder(transcode.SampleRate, transcode.Channels, gopus.Audio)
	if err != nil {
		log.Printf("[Sink] Encoder error: %v", err)
		return
	}

	pcm := make([]byte, transcode.FrameSize*transcode.Channels*2)
	frame := make([]int16, transcode.FrameSize*transcode.Channels)

	s.setState(radio.SinkPlaying)

	for {
		select {
		case <-stop:
			return
		default:
		}

		if s.isPaused() {
			select {
			case <-stop:
				return
			case <-time.After(frameDuration):
			}
			continue
		}

		if _, err := io.ReadFull(res, pcm); err != nil {
			if err != io.EOF {
				log.Printf("[Sink] Read error: %v", err)
			}
			s.setState(radio.SinkIdle)
			return
		}

		scaleFrame(pcm, frame, res.Volume())

		data, err := encoder.Encode(frame, transcode.FrameSize, len(pcm))
		if err != nil {
			log.Printf("[Sink] Encode error: %v", err)
			continue
		}

		out := s.output()
		if out == nil {
			// not subscribed to a connection yet, drop the frame
			select {
			case <-stop:
				return
			case <-time.After(frameDuration):
			}
			continue
		}

		select {
		case out <- data:
		case <-stop:
			return
		}
	}
}

// scaleFrame decodes little-endian PCM into samples scaled by volume,
// clamped to the int16 range.
func scaleFrame(pcm []byte, frame []int16, volume float64) {
	for i := range frame {
		sample := float64(int16(binary.LittleEndian.Uint16(pcm[i*2:i*2+2]))) * volume
		if sample > 32767 {
			sample = 32767
		} else if sample < -32768 {
			sample = -32768
		}
		frame[i] = int16(sample)
	}
}

func (s *OpusSink) isPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

func (s *OpusSink) output() chan<- []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out
}

func (s *OpusSink) setState(state radio.SinkState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paused && state == radio.SinkPlaying {
		return
	}
	s.state = state
}
