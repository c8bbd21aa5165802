package radio

import (
	"log"
	"sync"
	"time"
)

// ConnState mirrors the voice connection lifecycle.
type ConnState int

const (
	ConnConnecting ConnState = iota
	ConnReady
	ConnDisconnected
	ConnDestroyed
)

// DisconnectReason qualifies a ConnDisconnected event.
type DisconnectReason int

const (
	ReasonUnknown DisconnectReason = iota
	ReasonWebSocketClose
)

// CloseCodeDisconnected is the voice gateway close code Discord sends both
// when the bot is moved between channels and when it is kicked; the two are
// told apart by whether the connection re-enters Connecting shortly after.
const CloseCodeDisconnected = 4014

// ConnEvent is a voice connection lifecycle transition.
type ConnEvent struct {
	State     ConnState
	Reason    DisconnectReason
	CloseCode int
}

// Conn is a live voice connection. Events delivers lifecycle transitions
// until the connection is destroyed, after which the channel is closed.
type Conn interface {
	Subscribe(sink Sink)
	Rejoin() error
	Destroy()
	Events() <-chan ConnEvent
}

// Transport joins voice channels. The production implementation wraps
// discordgo.
type Transport interface {
	Join(guildID, channelID string) (Conn, error)
}

const (
	maxRejoinAttempts = 5
	rejoinBackoffUnit = 5 * time.Second
	connectingWait    = 5 * time.Second
)

// VoiceLink owns a voice connection and its reconnection policy:
//
//   - a 4014 close may mean the bot was moved (the connection recovers by
//     itself) or kicked; the link waits a few seconds for the connection to
//     re-enter Connecting and destroys it otherwise
//   - any other disconnect is retried up to maxRejoinAttempts times with a
//     backoff proportional to the attempt count
//   - the attempt counter resets whenever the connection reaches Ready
//
// A destroyed link is terminal: the owning session must create a new one on
// the next play request.
type VoiceLink struct {
	conn Conn

	// shrunk in tests
	backoffUnit    time.Duration
	connectingWait time.Duration

	onDestroyed func(*VoiceLink)

	mu            sync.Mutex
	attempts      int
	destroyed     bool
	stopRequested bool

	stop chan struct{}
	done chan struct{}
}

// NewVoiceLink subscribes the sink to the connection and starts watching its
// lifecycle. onDestroyed fires when the link destroys itself (kick detected
// or rejoin attempts exhausted), not when the owner called Destroy.
func NewVoiceLink(conn Conn, sink Sink, onDestroyed func(*VoiceLink)) *VoiceLink {
	l := &VoiceLink{
		conn:           conn,
		backoffUnit:    rejoinBackoffUnit,
		connectingWait: connectingWait,
		onDestroyed:    onDestroyed,
		stop:           make(chan struct{}),
		done:           make(chan struct{}),
	}
	conn.Subscribe(sink)
	go l.watch()
	return l
}

// Destroy tears the link down on behalf of the owner. Idempotent.
func (l *VoiceLink) Destroy() {
	l.mu.Lock()
	if l.destroyed || l.stopRequested {
		l.mu.Unlock()
		return
	}
	l.stopRequested = true
	l.mu.Unlock()

	close(l.stop)
	l.conn.Destroy()
}

// Destroyed reports whether the link reached its terminal state.
func (l *VoiceLink) Destroyed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.destroyed
}

// Done is closed when the lifecycle watcher exits.
func (l *VoiceLink) Done() <-chan struct{} { return l.done }

func (l *VoiceLink) watch() {
	defer close(l.done)

	for {
		select {
		case <-l.stop:
			l.markDestroyed()
			return
		case ev, ok := <-l.conn.Events():
			if !ok {
				l.markDestroyed()
				return
			}
			switch ev.State {
			case ConnReady:
				l.mu.Lock()
				l.attempts = 0
				l.mu.Unlock()

			case ConnDisconnected:
				if !l.handleDisconnect(ev) {
					l.markDestroyed()
					return
				}

			case ConnDestroyed:
				log.Printf("[VoiceLink] Connection destroyed")
				l.markDestroyed()
				return
			}
		}
	}
}

// handleDisconnect applies the reconnect policy. It returns false when the
// watcher should stop.
func (l *VoiceLink) handleDisconnect(ev ConnEvent) bool {
	if ev.Reason == ReasonWebSocketClose && ev.CloseCode == CloseCodeDisconnected {
		// Moved channel vs kicked: give the connection a moment to recover.
		if l.awaitConnecting() {
			return true
		}
		log.Printf("[VoiceLink] No reconnection after close %d, destroying", ev.CloseCode)
		l.conn.Destroy()
		return true // wait for the ConnDestroyed event
	}

	l.mu.Lock()
	attempts := l.attempts
	l.mu.Unlock()

	if attempts >= maxRejoinAttempts {
		log.Printf("[VoiceLink] Rejoin attempts exhausted, destroying")
		l.conn.Destroy()
		return true
	}

	backoff := time.Duration(attempts+1) * l.backoffUnit
	log.Printf("[VoiceLink] Disconnected, rejoining in %v (attempt %d)", backoff, attempts+1)
	select {
	case <-l.stop:
		return false
	case <-time.After(backoff):
	}

	l.mu.Lock()
	l.attempts++
	l.mu.Unlock()

	if err := l.conn.Rejoin(); err != nil {
		log.Printf("[VoiceLink] Rejoin error: %v", err)
	}
	return true
}

// awaitConnecting waits for the connection to re-enter Connecting (or jump
// straight to Ready) within the bounded window.
func (l *VoiceLink) awaitConnecting() bool {
	timer := time.NewTimer(l.connectingWait)
	defer timer.Stop()

	for {
		select {
		case <-l.stop:
			return false
		case <-timer.C:
			return false
		case ev, ok := <-l.conn.Events():
			if !ok {
				return false
			}
			switch ev.State {
			case ConnConnecting:
				return true
			case ConnReady:
				l.mu.Lock()
				l.attempts = 0
				l.mu.Unlock()
				return true
			case ConnDestroyed:
				return false
			}
		}
	}
}

func (l *VoiceLink) markDestroyed() {
	l.mu.Lock()
	if l.destroyed {
		l.mu.Unlock()
		return
	}
	l.destroyed = true
	requested := l.stopRequested
	cb := l.onDestroyed
	l.mu.Unlock()

	if !requested && cb != nil {
		cb(l)
	}
}
