package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// respondEmbedEphemeral sends an ephemeral embed response to an interaction.
func respondEmbedEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags:  discordgo.MessageFlagsEphemeral,
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}

// respondErrorEphemeral reports a command failure to the invoker only. A
// second respond on an already acknowledged interaction fails silently.
func respondErrorEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, cmdErr error) {
	_ = respondEmbedEphemeral(s, i, &discordgo.MessageEmbed{
		Description: fmt.Sprintf("Error running command: %v", cmdErr),
	})
}
