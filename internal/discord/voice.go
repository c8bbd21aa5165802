package discord

import (
	"fmt"
	"log"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/Cotezzo/leotta-fm/internal/radio"
)

// Transport implements radio.Transport on top of discordgo.
type Transport struct {
	dg *discordgo.Session
}

func NewTransport(dg *discordgo.Session) *Transport {
	return &Transport{dg: dg}
}

func (t *Transport) Join(guildID, channelID string) (radio.Conn, error) {
	vc, err := t.dg.ChannelVoiceJoin(guildID, channelID, false, true)
	if err != nil {
		return nil, fmt.Errorf("failed to join voice channel: %w", err)
	}

	c := &voiceConn{
		dg:        t.dg,
		guildID:   guildID,
		channelID: channelID,
		vc:        vc,
		events:    make(chan radio.ConnEvent, 16),
	}
	c.removeHandler = t.dg.AddHandler(c.onVoiceStateUpdate)
	c.emit(radio.ConnEvent{State: radio.ConnReady})

	log.Printf("[Voice] Joined voice channel %s on guild %s", channelID, guildID)
	return c, nil
}

// voiceConn adapts a discordgo voice connection to radio.Conn, translating
// the bot's own voice-state updates into lifecycle events.
type voiceConn struct {
	dg *discordgo.Session

	mu            sync.Mutex
	guildID       string
	channelID     string
	vc            *discordgo.VoiceConnection
	sink          *OpusSink
	destroyed     bool
	removeHandler func()

	events chan radio.ConnEvent
}

func (c *voiceConn) Subscribe(sink radio.Sink) {
	os, ok := sink.(*OpusSink)
	if !ok {
		log.Printf("[Voice] Unsupported sink type %T", sink)
		return
	}

	c.mu.Lock()
	c.sink = os
	vc := c.vc
	c.mu.Unlock()

	os.Attach(vc.OpusSend)
	if err := vc.Speaking(true); err != nil {
		log.Printf("[Voice] Speaking error: %v", err)
	}
}

func (c *voiceConn) Rejoin() error {
	c.mu.Lock()
	guildID, channelID := c.guildID, c.channelID
	c.mu.Unlock()

	vc, err := c.dg.ChannelVoiceJoin(guildID, channelID, false, true)
	if err != nil {
		c.emit(radio.ConnEvent{State: radio.ConnDisconnected, Reason: radio.ReasonUnknown})
		return fmt.Errorf("rejoin failed: %w", err)
	}

	c.mu.Lock()
	c.vc = vc
	sink := c.sink
	c.mu.Unlock()

	if sink != nil {
		sink.Attach(vc.OpusSend)
		if err := vc.Speaking(true); err != nil {
			log.Printf("[Voice] Speaking error: %v", err)
		}
	}
	c.emit(radio.ConnEvent{State: radio.ConnReady})
	return nil
}

func (c *voiceConn) Destroy() {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return
	}
	c.destroyed = true
	vc := c.vc
	remove := c.removeHandler
	c.mu.Unlock()

	if remove != nil {
		remove()
	}
	if vc != nil {
		vc.Speaking(false)
		if err := vc.Disconnect(); err != nil {
			log.Printf("[Voice] Disconnect error: %v", err)
		}
	}

	c.mu.Lock()
	select {
	case c.events <- radio.ConnEvent{State: radio.ConnDestroyed}:
	default:
	}
	close(c.events)
	c.mu.Unlock()
}

func (c *voiceConn) Events() <-chan radio.ConnEvent { return c.events }

// onVoiceStateUpdate watches the bot's own voice state. Losing the channel
// surfaces as the 4014-style disconnect (moved or kicked, see radio
// package); landing in a different channel means a move, which discordgo
// recovers on its own.
func (c *voiceConn) onVoiceStateUpdate(s *discordgo.Session, u *discordgo.VoiceStateUpdate) {
	if s.State.User == nil || u.UserID != s.State.User.ID {
		return
	}

	c.mu.Lock()
	match := u.GuildID == c.guildID
	current := c.channelID
	c.mu.Unlock()
	if !match {
		return
	}

	switch {
	case u.ChannelID == "":
		c.emit(radio.ConnEvent{
			State:     radio.ConnDisconnected,
			Reason:    radio.ReasonWebSocketClose,
			CloseCode: radio.CloseCodeDisconnected,
		})
	case u.ChannelID != current:
		c.mu.Lock()
		c.channelID = u.ChannelID
		c.mu.Unlock()
		c.emit(radio.ConnEvent{State: radio.ConnConnecting})
		c.emit(radio.ConnEvent{State: radio.ConnReady})
	}
}

// emit delivers an event without ever blocking a discordgo handler; when the
// session is too far behind the event is dropped.
func (c *voiceConn) emit(ev radio.ConnEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return
	}
	select {
	case c.events <- ev:
	default:
		log.Printf("[Voice] Event dropped (channel full): %v", ev.State)
	}
}
