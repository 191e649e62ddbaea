// Package commands holds what the club's slash commands share: the narrow
// view of the guild they act on and the wiring that registers them.
package commands

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/fcmerged/pitchbot/internal/config"
	"github.com/fcmerged/pitchbot/internal/lineup"
	"github.com/fcmerged/pitchbot/internal/roster"
	"github.com/fcmerged/pitchbot/internal/voice"
)

// ErrNotFound is returned by Guild lookups for a channel, member or message
// that does not exist. Commands report it to the invoker.
var ErrNotFound = errors.New("not found")

// Channel is a guild channel.
type Channel struct {
	ID    string
	Name  string
	Voice bool
}

// Guild is what commands need from the chat platform.
type Guild interface {
	Channel(guildID, channelID string) (Channel, error)
	// VoiceMembers lists everyone connected to a voice channel in the guild.
	VoiceMembers(guildID string) ([]voice.Member, error)
	Member(guildID, userID string) (voice.Member, error)
	SendEmbed(channelID string, e *discordgo.MessageEmbed) error
	AddReactions(channelID, messageID string, emojis []string) error
	// PollVotes reads a message's reactions with the display names of the
	// non-bot members behind each one.
	PollVotes(ctx context.Context, guildID, channelID, messageID string) ([]roster.Vote, error)
}

// Mover relocates members in bulk.
type Mover interface {
	MoveAll(ctx context.Context, guildID string, userIDs []string, channelID string) voice.Result
}

// Require checks settings given as key, value pairs, in order.
func Require(kv ...string) error {
	for i := 0; i+1 < len(kv); i += 2 {
		if err := config.Require(kv[i], kv[i+1]); err != nil {
			return err
		}
	}
	return nil
}

// VoiceChannel resolves id and checks it is a voice channel.
func VoiceChannel(g Guild, guildID, id string) (Channel, bool) {
	ch, err := g.Channel(guildID, id)
	if err != nil || !ch.Voice {
		return Channel{}, false
	}
	return ch, true
}

// Present returns the non-bot members connected to channelID.
func Present(members []voice.Member, channelID string) []voice.Member {
	var out []voice.Member
	for _, m := range members {
		if !m.Bot && m.ChannelID == channelID {
			out = append(out, m)
		}
	}
	return out
}

// Players converts members into lineup players keyed by display name.
func Players(members []voice.Member) []lineup.Player {
	out := make([]lineup.Player, len(members))
	for i, m := range members {
		out[i] = lineup.Player{ID: m.UserID, Name: m.DisplayName}
	}
	return out
}

// Mention formats a user mention.
func Mention(userID string) string {
	return "<@" + userID + ">"
}

// Clock defaults to time.Now.
type Clock func() time.Time

func (c Clock) Now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}
