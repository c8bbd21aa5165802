package discord

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/Cotezzo/leotta-fm/internal/command"
	radiocmd "github.com/Cotezzo/leotta-fm/internal/command/radio"
	"github.com/Cotezzo/leotta-fm/internal/config"
	"github.com/Cotezzo/leotta-fm/internal/radio"
	"github.com/Cotezzo/leotta-fm/internal/storage"
	"github.com/Cotezzo/leotta-fm/internal/transcode"
	"github.com/Cotezzo/leotta-fm/internal/version"
)

// Bot is the Discord front of the radio: it owns the gateway session, the
// per-guild session registry, and the slash command registration.
type Bot struct {
	dg       *discordgo.Session
	cfg      *config.Config
	storage  *storage.Storage
	registry *radio.Registry

	registerOnce sync.Once
}

func NewBot(cfg *config.Config, store *storage.Storage) *Bot {
	return &Bot{cfg: cfg, storage: store}
}

// Run connects to the gateway and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	dg, err := discordgo.New("Bot " + b.cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	b.dg = dg

	b.registry = radio.NewRegistry(radio.Deps{
		Catalog:    radio.DefaultCatalog(),
		Transport:  NewTransport(dg),
		Messenger:  NewMessenger(dg),
		Opener:     transcode.FFmpegOpener{},
		Client:     radio.NewFetchClient(),
		NewSink:    func() radio.Sink { return NewOpusSink() },
		EmbedColor: b.cfg.EmbedColor,
		OnVolumeChange: func(guildID string, volume float64) {
			if err := b.storage.SetDefaultVolume(guildID, volume); err != nil {
				log.Printf("[WARN] Failed to persist volume for guild %s: %v", guildID, err)
			}
		},
		OnStationChange: func(guildID, stationName string) {
			if err := b.storage.SetLastStation(guildID, stationName); err != nil {
				log.Printf("[WARN] Failed to persist station for guild %s: %v", guildID, err)
			}
		},
	}, b.lastDefaultVolume)

	b.configureIntents()
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onInteractionCreate)
	dg.AddHandler(b.onGuildCreate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	<-ctx.Done()
	log.Println("[INFO] ❎ Shutdown signal received. Cleaning up...")
	b.registry.StopAll()
	return nil
}

// configureIntents configures the Discord intents
func (b *Bot) configureIntents() {
	b.dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildVoiceStates
}

// registerRadioCommand wires the radio command into the command registry.
// Safe to attempt from every ready/guild event.
func (b *Bot) registerRadioCommand() {
	b.registerOnce.Do(func() {
		command.RegisterCommand(
			&radiocmd.RadioCommand{Bot: b, Registry: b.registry},
			command.WithGuildOnly(),
			command.WithCommandLogger(),
		)
	})
}

// onReady is called when the bot is ready
func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	botInfo, err := s.User("@me")
	if err != nil {
		log.Println("[WARN] Error retrieving bot user:", err)
		return
	}

	b.registerRadioCommand()

	if err := s.UpdateListeningStatus(version.AppName); err != nil {
		log.Println("[WARN] Failed to set presence:", err)
	}

	if b.cfg.InitSlashCommands {
		for _, g := range r.Guilds {
			if err := b.registerCommands(g.ID); err != nil {
				log.Println("[ERR] Error registering slash commands for guild", g.ID, ":", err)
			}
		}
	} else {
		log.Println("[INFO] Registering slash commands skipped")
	}

	log.Printf("[INFO] ✅ Discord bot %v is running.", botInfo.Username)
}

// onGuildCreate is called when the bot joins a guild
func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	log.Printf("[INFO] Bot added to guild: %s (%s)", g.Guild.ID, g.Guild.Name)

	b.registerRadioCommand()

	if err := b.registerCommands(g.Guild.ID); err != nil {
		log.Printf("[ERR] Failed to register commands for new guild %s: %v", g.Guild.ID, err)
	}
}

// onInteractionCreate dispatches slash commands and card component clicks
func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		cmdName := i.ApplicationCommandData().Name

		cmd, ok := command.GetCommand(cmdName)
		if !ok {
			log.Printf("[WARN] Unknown command: %s\n", cmdName)
			return
		}

		ctx := &command.SlashContext{
			Session: s,
			Event:   i,
			Storage: b.storage,
		}
		if err := cmd.Run(ctx); err != nil {
			log.Println("[ERR] Error running slash command:", err)
			respondErrorEphemeral(s, i, err)
		}

	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID

		var matched command.Command
		for _, cmd := range command.AllCommands() {
			if strings.HasPrefix(customID, cmd.Name()+":") {
				matched = cmd
				break
			}
		}
		if matched == nil {
			log.Printf("[WARN] No matching component for customID: %s\n", customID)
			return
		}

		compHandler, ok := matched.(command.ComponentHandler)
		if !ok {
			log.Printf("[WARN] Command %s does not implement ComponentHandler\n", matched.Name())
			return
		}

		ctx := &command.ComponentContext{
			Session: s,
			Event:   i,
			Storage: b.storage,
		}
		if err := compHandler.Component(ctx); err != nil {
			log.Printf("[ERR] Error running component command %s: %v\n", matched.Name(), err)
		}
	}
}

// registerCommands registers slash commands for a guild
func (b *Bot) registerCommands(guildID string) error {
	appID := b.dg.State.User.ID
	if appID == "" {
		user, err := b.dg.User("@me")
		if err != nil {
			return err
		}
		appID = user.ID
	}

	var wanted []*discordgo.ApplicationCommand
	for _, cmd := range command.AllCommands() {
		slash, ok := cmd.(command.SlashProvider)
		if !ok {
			continue
		}
		if def := slash.SlashDefinition(); def != nil {
			wanted = append(wanted, def)
		}
	}

	if _, err := b.dg.ApplicationCommandBulkOverwrite(appID, guildID, wanted); err != nil {
		return fmt.Errorf("bulk overwrite failed: %w", err)
	}
	log.Printf("[INFO] [%s] Registered %d commands", guildID, len(wanted))
	return nil
}

// FindUserVoiceState finds the voice channel a user currently occupies
func (b *Bot) FindUserVoiceState(guildID, userID string) (string, error) {
	guild, err := b.dg.State.Guild(guildID)
	if err != nil {
		return "", fmt.Errorf("error retrieving guild: %w", err)
	}

	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID {
			return vs.ChannelID, nil
		}
	}
	return "", fmt.Errorf("user not in any voice channel")
}

// lastDefaultVolume feeds persisted volume into freshly created sessions.
func (b *Bot) lastDefaultVolume(guildID string) float64 {
	volume, err := b.storage.DefaultVolume(guildID)
	if err != nil {
		return 0
	}
	return volume
}
