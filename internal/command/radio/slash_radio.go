package radio

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/Cotezzo/leotta-fm/internal/command"
	fm "github.com/Cotezzo/leotta-fm/internal/radio"
	"github.com/Cotezzo/leotta-fm/internal/storage"
)

// BotVoice is the voice-state lookup the Discord bot provides.
type BotVoice interface {
	FindUserVoiceState(guildID, userID string) (channelID string, err error)
}

// RadioCommand exposes the per-guild radio session operations as the /radio
// slash command plus the status card's buttons and station menus.
type RadioCommand struct {
	Bot      BotVoice
	Registry *fm.Registry
}

func (c *RadioCommand) Name() string        { return "radio" }
func (c *RadioCommand) Description() string { return "Listen to internet radio stations" }
func (c *RadioCommand) Category() string    { return "🎵 Music" }

func (c *RadioCommand) SlashDefinition() *discordgo.ApplicationCommand {
	volumeMin := 0.0
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "play",
				Description: "Tune in to a station",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "station",
						Description: "Station name (defaults to the last one played)",
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "pause",
				Description: "Pause playback",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "resume",
				Description: "Resume playback",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "stop",
				Description: "Stop playback and leave the voice channel",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "volume",
				Description: "Set the playback volume",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionNumber,
						Name:        "level",
						Description: "Volume multiplier (1 = normal)",
						Required:    true,
						MinValue:    &volumeMin,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "bind",
				Description: "Move the status card to this channel",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "nowplaying",
				Description: "Repost the status card",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "history",
				Description: "Show recently run commands",
			},
		},
	}
}

func (c *RadioCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*command.SlashContext)
	if !ok {
		return nil
	}

	s := context.Session
	e := context.Event

	if len(e.ApplicationCommandData().Options) == 0 {
		return respondEphemeral(s, e, "Missing subcommand.")
	}
	sub := e.ApplicationCommandData().Options[0]

	switch sub.Name {
	case "play":
		var station string
		for _, opt := range sub.Options {
			if opt.Name == "station" {
				station = opt.StringValue()
			}
		}
		return c.runPlay(context, station)

	case "pause":
		if sess, ok := c.Registry.Get(e.GuildID); ok {
			sess.Pause()
		}
		return respondEphemeral(s, e, "⏸️ Paused.")

	case "resume":
		if sess, ok := c.Registry.Get(e.GuildID); ok {
			sess.Resume()
		}
		return respondEphemeral(s, e, "▶️ Resumed.")

	case "stop":
		if sess, ok := c.Registry.Get(e.GuildID); ok {
			sess.Stop()
		}
		return respondEphemeral(s, e, "⏹️ Playback stopped.")

	case "volume":
		var level float64
		for _, opt := range sub.Options {
			if opt.Name == "level" {
				level = opt.FloatValue()
			}
		}
		if sess, ok := c.Registry.Get(e.GuildID); ok {
			sess.SetVolume(level)
		}
		return respondEphemeral(s, e, fmt.Sprintf("🔊 Volume set to %.2f.", level))

	case "bind":
		sess, ok := c.Registry.Get(e.GuildID)
		if !ok {
			return respondEphemeral(s, e, "Nothing is playing.")
		}
		sess.BindTextChannel(e.ChannelID)
		return respondEphemeral(s, e, "📌 Status card moved to this channel.")

	case "nowplaying":
		sess, ok := c.Registry.Get(e.GuildID)
		if !ok || sess.CurrentStation() == nil {
			return respondEphemeral(s, e, "Nothing is playing.")
		}
		sess.ResendCard()
		return respondEphemeral(s, e, fmt.Sprintf("📻 Now playing: **%s**.", sess.CurrentStation().Name))

	case "history":
		return c.runHistory(context)

	default:
		return respondEphemeral(s, e, fmt.Sprintf("Unknown subcommand: %s", sub.Name))
	}
}

func (c *RadioCommand) runPlay(ctx *command.SlashContext, station string) error {
	s := ctx.Session
	e := ctx.Event

	station = stationOrLast(ctx.Storage, e.GuildID, station)
	if station == "" {
		return respondEphemeral(s, e, "Station name is required the first time around.")
	}

	caller := c.callerFromInteraction(e)
	sess, created := c.Registry.GetOrCreate(e.GuildID)

	playing := sess.PlayStation(caller, station)
	if !playing && created {
		// Don't leave an idle orphan registered after a rejected first play.
		c.Registry.Delete(e.GuildID)
	}

	if !playing {
		return respondEphemeral(s, e, "Nothing changed. Join a voice channel and pick a known station.")
	}
	return respondEphemeral(s, e, fmt.Sprintf("📻 Tuned in to **%s**.", sess.CurrentStation().Name))
}

func (c *RadioCommand) runHistory(ctx *command.SlashContext) error {
	if ctx.Storage == nil {
		return respondEphemeral(ctx.Session, ctx.Event, "No command history available.")
	}

	records, err := ctx.Storage.FetchCommandHistory(ctx.Event.GuildID)
	if err != nil {
		return fmt.Errorf("failed to fetch command history: %w", err)
	}

	return respondEmbedEphemeral(ctx.Session, ctx.Event, &discordgo.MessageEmbed{
		Title:       "Recent commands",
		Description: formatHistory(records),
	})
}

// stationOrLast falls back to the guild's last played station when the
// request names none.
func stationOrLast(store *storage.Storage, guildID, station string) string {
	if station != "" || store == nil {
		return station
	}
	last, err := store.LastStation(guildID)
	if err != nil {
		return ""
	}
	return last
}

// formatHistory renders history records newest-first.
func formatHistory(records []storage.CommandHistoryRecord) string {
	if len(records) == 0 {
		return "No commands on record."
	}

	var b strings.Builder
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		fmt.Fprintf(&b, "`%s` /%s", r.Datetime.Format("2006-01-02 15:04"), r.Command)
		if r.Param != "" {
			fmt.Fprintf(&b, " %s", r.Param)
		}
		fmt.Fprintf(&b, " by %s\n", r.Username)
	}
	return b.String()
}

// callerFromInteraction resolves the invoking member's voice presence; a
// user outside voice yields an empty voice channel, which the session
// rejects as invalid.
func (c *RadioCommand) callerFromInteraction(e *discordgo.InteractionCreate) fm.Caller {
	caller := fm.Caller{TextChannelID: e.ChannelID}
	if e.Member == nil {
		return caller
	}
	caller.UserID = e.Member.User.ID

	channelID, err := c.Bot.FindUserVoiceState(e.GuildID, caller.UserID)
	if err == nil {
		caller.VoiceChannelID = channelID
	}
	return caller
}

func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

func respondEmbedEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags:  discordgo.MessageFlagsEphemeral,
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}
