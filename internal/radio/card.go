package radio

import (
	"log"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// Messenger is the messaging surface the status card talks to. The
// production implementation wraps a discordgo session.
type Messenger interface {
	Send(channelID string, content *CardContent) (messageID string, err error)
	Edit(channelID, messageID string, content *CardContent) error
	Delete(channelID, messageID string) error
	// LatestMessageID returns the ID of the most recent message in the
	// channel, or "" when the channel is empty.
	LatestMessageID(channelID string) (string, error)
}

// CardContent is a rendered status-card payload.
type CardContent struct {
	Embed      *discordgo.MessageEmbed
	Components []discordgo.MessageComponent
}

// StatusCard tracks at most one live message reflecting session state. All
// operations serialize on the card's mutex so a resend can never race an
// edit into deleting a message the other just recreated.
type StatusCard struct {
	mu        sync.Mutex
	messenger Messenger
	channelID string
	content   *CardContent
	messageID string
}

func NewStatusCard(m Messenger) *StatusCard {
	return &StatusCard{messenger: m}
}

// Bind targets the card at a channel. If a message is already live it is
// moved: deleted from the previous channel, recreated in the new one.
func (c *StatusCard) Bind(channelID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prevChannel, prevMessage := c.channelID, c.messageID
	c.channelID = channelID
	if prevMessage == "" {
		return
	}

	if err := c.messenger.Delete(prevChannel, prevMessage); err != nil {
		log.Printf("[StatusCard] Delete error: %v", err)
	}
	c.messageID = ""
	c.createLocked()
}

// Update replaces the rendered payload without touching the live message.
func (c *StatusCard) Update(content *CardContent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.content = content
}

// Create sends a new message with the current payload.
func (c *StatusCard) Create() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.createLocked()
}

// Edit updates the live message in place. If there is no live message, or
// the edit fails (e.g. the message was deleted externally), it falls back to
// creating a new one.
func (c *StatusCard) Edit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.messageID != "" {
		if err := c.messenger.Edit(c.channelID, c.messageID, c.content); err == nil {
			return nil
		} else {
			log.Printf("[StatusCard] Edit error: %v", err)
		}
	}
	return c.createLocked()
}

// Resend deletes the previous live message (failure ignored) then creates a
// new one, so the card surfaces at the bottom of the channel.
func (c *StatusCard) Resend() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resendLocked()
}

// Delete removes the live message if present; failures are ignored.
func (c *StatusCard) Delete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleteLocked()
}

// Live returns the ID of the tracked live message, or "" if none.
func (c *StatusCard) Live() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.messageID
}

func (c *StatusCard) createLocked() error {
	if c.content == nil {
		log.Printf("[StatusCard] Create skipped: no content rendered yet")
		return nil
	}
	if c.channelID == "" {
		log.Printf("[StatusCard] Create skipped: no channel bound")
		return nil
	}

	id, err := c.messenger.Send(c.channelID, c.content)
	if err != nil {
		log.Printf("[StatusCard] Send error: %v", err)
		return err
	}
	c.messageID = id
	return nil
}

func (c *StatusCard) resendLocked() error {
	c.deleteLocked()
	return c.createLocked()
}

func (c *StatusCard) deleteLocked() {
	if c.messageID == "" {
		return
	}
	if err := c.messenger.Delete(c.channelID, c.messageID); err != nil {
		log.Printf("[StatusCard] Delete error: %v", err)
	}
	c.messageID = ""
}
