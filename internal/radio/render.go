package radio

import (
	"strconv"

	"github.com/bwmarrin/discordgo"
)

// Discord caps select menus at 25 options; the catalog spills over into
// multiple paginated menus.
const menuOptionLimit = 25

// Control custom IDs and select values carry the session token so that a
// button rendered before a reset can be rejected as stale.
const (
	ControlPrefix  = "radio:"
	controlPause   = "radio:pause:"
	controlResume  = "radio:resume:"
	controlStop    = "radio:stop:"
	controlStation = "radio:station:"
)

func PauseControlID(token string) string  { return controlPause + token }
func ResumeControlID(token string) string { return controlResume + token }
func StopControlID(token string) string   { return controlStop + token }

// renderLocked is the pure view of the session state: title, current station
// and thumbnail, transport buttons, and the paginated station menus.
func (s *Session) renderLocked() *CardContent {
	paused := s.state == StatePaused

	stationName := ""
	thumbnail := ""
	if s.current != nil {
		stationName = s.current.Name
		thumbnail = s.current.Thumbnail
	}

	embed := &discordgo.MessageEmbed{
		Title:       "LeottaFM Radio Player",
		Description: "You're listening to: **" + stationName + "**",
		Color:       s.deps.EmbedColor,
		Image:       &discordgo.MessageEmbedImage{URL: thumbnail},
	}

	toggle := discordgo.Button{
		Style:    discordgo.SecondaryButton,
		CustomID: PauseControlID(s.token),
		Emoji:    &discordgo.ComponentEmoji{Name: "⏸️"},
	}
	if paused {
		toggle.CustomID = ResumeControlID(s.token)
		toggle.Emoji = &discordgo.ComponentEmoji{Name: "▶️"}
	}

	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			toggle,
			discordgo.Button{
				Style:    discordgo.SecondaryButton,
				CustomID: StopControlID(s.token),
				Emoji:    &discordgo.ComponentEmoji{Name: "⏹️"},
			},
		}},
	}

	components = append(components, stationMenus(s.deps.Catalog, s.token)...)

	return &CardContent{Embed: embed, Components: components}
}

// stationMenus lists every catalog entry in insertion order, chunked into
// select menus of at most menuOptionLimit options each.
func stationMenus(catalog *Catalog, token string) []discordgo.MessageComponent {
	stations := catalog.Stations()
	keys := catalog.Keys()

	var menus []discordgo.MessageComponent
	for start := 0; start < len(stations); start += menuOptionLimit {
		end := start + menuOptionLimit
		if end > len(stations) {
			end = len(stations)
		}

		options := make([]discordgo.SelectMenuOption, 0, end-start)
		for i := start; i < end; i++ {
			options = append(options, discordgo.SelectMenuOption{
				Label: stations[i].Name,
				Value: keys[i] + ":" + token,
			})
		}

		placeholder := "Change station"
		if start > 0 {
			placeholder = "Other stations..."
		}

		menus = append(menus, discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				CustomID:    controlStation + strconv.Itoa(start/menuOptionLimit+1),
				Placeholder: placeholder,
				Options:     options,
			},
		}})
	}
	return menus
}
