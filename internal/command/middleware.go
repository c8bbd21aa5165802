package command

import (
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/Cotezzo/leotta-fm/internal/storage"
)

type Middleware func(Command) Command

type wrappedCommand struct {
	Command
	wrap func(ctx interface{}) error
}

func (w *wrappedCommand) Run(ctx interface{}) error {
	if w.wrap != nil {
		return w.wrap(ctx)
	}
	return w.Command.Run(ctx)
}

func (w *wrappedCommand) Component(ctx *ComponentContext) error {
	if ch, ok := w.Command.(ComponentHandler); ok {
		return ch.Component(ctx)
	}
	return nil
}

// SlashDefinition surfaces the wrapped command's definition so wrapping does
// not hide it from registration.
func (w *wrappedCommand) SlashDefinition() *discordgo.ApplicationCommand {
	if sp, ok := w.Command.(SlashProvider); ok {
		return sp.SlashDefinition()
	}
	return nil
}

func ApplyMiddlewares(cmd Command, mws ...Middleware) Command {
	for _, mw := range mws {
		cmd = mw(cmd)
	}
	return cmd
}

// WithGuildOnly silently drops invocations from outside a guild (DMs).
func WithGuildOnly() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				if v, ok := ctx.(*SlashContext); ok && v.Event.GuildID == "" {
					return nil
				}
				return cmd.Run(ctx)
			},
		}
	}
}

// WithCommandLogger wraps a command to record its execution in the guild's
// command history.
func WithCommandLogger() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				err := cmd.Run(ctx)

				if v, ok := ctx.(*SlashContext); ok && v.Storage != nil && v.Event.Member != nil {
					user := v.Event.Member.User
					record := storage.CommandHistoryRecord{
						ChannelID: v.Event.ChannelID,
						UserID:    user.ID,
						Username:  user.Username,
						Command:   cmd.Name(),
						Datetime:  time.Now(),
					}
					if e := v.Storage.AppendCommandToHistory(v.Event.GuildID, record); e != nil {
						log.Printf("[WARN] Failed to log command /%s: %v", cmd.Name(), e)
					}
				}

				return err
			},
		}
	}
}
