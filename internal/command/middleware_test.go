package command

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
)

type countingCommand struct {
	name string
	runs int
	err  error
}

func (c *countingCommand) Name() string        { return c.name }
func (c *countingCommand) Description() string { return "test command" }
func (c *countingCommand) Category() string    { return "test" }
func (c *countingCommand) Run(ctx interface{}) error {
	c.runs++
	return c.err
}

func slashCtx(guildID string) *SlashContext {
	return &SlashContext{
		Event: &discordgo.InteractionCreate{
			Interaction: &discordgo.Interaction{GuildID: guildID},
		},
	}
}

func TestWithGuildOnlyDropsDirectMessages(t *testing.T) {
	cmd := &countingCommand{name: "radio"}
	wrapped := ApplyMiddlewares(cmd, WithGuildOnly())

	if err := wrapped.Run(slashCtx("")); err != nil {
		t.Fatalf("dropped invocation returned error: %v", err)
	}
	if cmd.runs != 0 {
		t.Fatalf("DM invocation reached the command")
	}

	if err := wrapped.Run(slashCtx("guild1")); err != nil {
		t.Fatalf("guild invocation failed: %v", err)
	}
	if cmd.runs != 1 {
		t.Fatalf("guild invocation did not reach the command")
	}
}

func TestMiddlewarePreservesCommandError(t *testing.T) {
	wantErr := errors.New("boom")
	cmd := &countingCommand{name: "radio", err: wantErr}
	wrapped := ApplyMiddlewares(cmd, WithGuildOnly(), WithCommandLogger())

	err := wrapped.Run(slashCtx("guild1"))
	if !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want the command's own error", err)
	}
	if cmd.runs != 1 {
		t.Fatalf("command ran %d times, want 1", cmd.runs)
	}
}

func TestRegisterCommandWrapsAndResolvesByName(t *testing.T) {
	cmd := &countingCommand{name: "radio-registry-test"}
	RegisterCommand(cmd, WithGuildOnly())

	got, ok := GetCommand("radio-registry-test")
	if !ok {
		t.Fatalf("registered command not found")
	}
	if got.Name() != cmd.name {
		t.Fatalf("resolved command name = %q", got.Name())
	}

	// The wrapper still enforces the middleware.
	if err := got.Run(slashCtx("")); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if cmd.runs != 0 {
		t.Fatalf("middleware was lost during registration")
	}
}
