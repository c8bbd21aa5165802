package command

import (
	"github.com/bwmarrin/discordgo"

	"github.com/Cotezzo/leotta-fm/internal/storage"
)

// Command is a bot command. Commands register themselves in the registry and
// are dispatched by the Discord front-end.
type Command interface {
	Name() string
	Description() string
	Category() string
	Run(ctx interface{}) error
}

// SlashProvider is implemented by commands registered as slash commands.
type SlashProvider interface {
	SlashDefinition() *discordgo.ApplicationCommand
}

// ComponentHandler is implemented by commands that react to message
// components (buttons, select menus) whose custom ID carries the command
// name as prefix.
type ComponentHandler interface {
	Component(ctx *ComponentContext) error
}

// SlashContext is handed to Run for slash command invocations.
type SlashContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
	Storage *storage.Storage
}

// ComponentContext is handed to Component for component interactions.
type ComponentContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
	Storage *storage.Storage
}
