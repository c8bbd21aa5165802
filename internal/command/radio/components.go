package radio

import (
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/Cotezzo/leotta-fm/internal/command"
	fm "github.com/Cotezzo/leotta-fm/internal/radio"
)

// Component routes the status card's button and menu interactions.
// Every control carries the session token it was rendered with; a token
// minted before the last stop no longer matches, so stale clicks are
// acknowledged and dropped without touching the session.
func (c *RadioCommand) Component(ctx *command.ComponentContext) error {
	s := ctx.Session
	e := ctx.Event
	data := e.MessageComponentData()

	// Cards are edited by the session itself, so the click only needs
	// a silent acknowledgement.
	if err := deferUpdate(s, e); err != nil {
		log.Printf("[WARN] Failed to ack component %s: %v", data.CustomID, err)
	}

	sess, ok := c.Registry.Get(e.GuildID)
	if !ok {
		return nil
	}

	action, token := splitControl(data.CustomID)
	switch action {
	case "pause":
		if sess.CheckToken(token) == nil {
			return nil
		}
		sess.Pause()

	case "resume":
		if sess.CheckToken(token) == nil {
			return nil
		}
		sess.Resume()

	case "stop":
		if sess.CheckToken(token) == nil {
			return nil
		}
		sess.Stop()

	case "station":
		if len(data.Values) == 0 {
			return nil
		}
		key, token, ok := strings.Cut(data.Values[0], ":")
		if !ok || sess.CheckToken(token) == nil {
			return nil
		}
		sess.PlayStation(c.callerFromInteraction(e), key)
	}

	return nil
}

// splitControl decomposes "radio:<action>:<token>" custom IDs. Station
// menus carry a numbered suffix instead of a token and yield an empty one.
func splitControl(customID string) (action, token string) {
	rest, found := strings.CutPrefix(customID, fm.ControlPrefix)
	if !found {
		return "", ""
	}
	action, token, _ = strings.Cut(rest, ":")
	if action == "station" {
		return "station", ""
	}
	return action, token
}

func deferUpdate(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
}
