package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/Cotezzo/leotta-fm/internal/radio"
)

// Messenger implements radio.Messenger on top of discordgo.
type Messenger struct {
	dg *discordgo.Session
}

func NewMessenger(dg *discordgo.Session) *Messenger {
	return &Messenger{dg: dg}
}

func (m *Messenger) Send(channelID string, content *radio.CardContent) (string, error) {
	msg, err := m.dg.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{content.Embed},
		Components: content.Components,
	})
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

func (m *Messenger) Edit(channelID, messageID string, content *radio.CardContent) error {
	embeds := []*discordgo.MessageEmbed{content.Embed}
	_, err := m.dg.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         messageID,
		Channel:    channelID,
		Embeds:     &embeds,
		Components: &content.Components,
	})
	return err
}

func (m *Messenger) Delete(channelID, messageID string) error {
	return m.dg.ChannelMessageDelete(channelID, messageID)
}

func (m *Messenger) LatestMessageID(channelID string) (string, error) {
	msgs, err := m.dg.ChannelMessages(channelID, 1, "", "", "")
	if err != nil {
		return "", err
	}
	if len(msgs) == 0 {
		return "", nil
	}
	return msgs[0].ID, nil
}
