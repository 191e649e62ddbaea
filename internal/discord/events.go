package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/fcmerged/pitchbot/internal/calltracker"
)

// voiceEvent converts a gateway voice state update. channelName resolves
// names from state and may return "".
func voiceEvent(v *discordgo.VoiceStateUpdate, channelName func(string) string) calltracker.Event {
	ev := calltracker.Event{
		UserID:         v.UserID,
		GuildID:        v.GuildID,
		AfterChannelID: v.ChannelID,
	}
	if v.BeforeUpdate != nil {
		ev.BeforeChannelID = v.BeforeUpdate.ChannelID
	}
	if ev.BeforeChannelID != "" {
		ev.BeforeChannelName = channelName(ev.BeforeChannelID)
	}
	if ev.AfterChannelID != "" {
		ev.AfterChannelName = channelName(ev.AfterChannelID)
	}
	return ev
}

// presences lists the non-bot members already in voice when a guild arrives.
func presences(g *discordgo.Guild) []calltracker.Presence {
	names := make(map[string]string, len(g.Channels))
	for _, ch := range g.Channels {
		names[ch.ID] = ch.Name
	}
	bots := make(map[string]bool)
	for _, m := range g.Members {
		if m.User != nil && m.User.Bot {
			bots[m.User.ID] = true
		}
	}

	var out []calltracker.Presence
	for _, vs := range g.VoiceStates {
		if vs.ChannelID == "" || bots[vs.UserID] {
			continue
		}
		if vs.Member != nil && vs.Member.User != nil && vs.Member.User.Bot {
			continue
		}
		out = append(out, calltracker.Presence{
			UserID:      vs.UserID,
			ChannelID:   vs.ChannelID,
			ChannelName: names[vs.ChannelID],
		})
	}
	return out
}
