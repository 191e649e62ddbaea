// Package commandstest provides in-memory Guild and Mover fakes.
package commandstest

import (
	"context"
	"slices"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/fcmerged/pitchbot/internal/commands"
	"github.com/fcmerged/pitchbot/internal/roster"
	"github.com/fcmerged/pitchbot/internal/voice"
)

// Sent is an embed posted to a channel.
type Sent struct {
	ChannelID string
	Embed     *discordgo.MessageEmbed
}

// Guild is a fake guild. Channels and Members are read as-is; Votes is keyed
// by message id.
type Guild struct {
	mu        sync.Mutex
	Channels  map[string]commands.Channel
	Members   []voice.Member
	Votes     map[string][]roster.Vote
	Sent      []Sent
	Reactions map[string][]string
}

func NewGuild() *Guild {
	return &Guild{
		Channels:  map[string]commands.Channel{},
		Votes:     map[string][]roster.Vote{},
		Reactions: map[string][]string{},
	}
}

// AddVoice registers a voice channel.
func (g *Guild) AddVoice(id, name string) *Guild {
	g.Channels[id] = commands.Channel{ID: id, Name: name, Voice: true}
	return g
}

// AddText registers a text channel.
func (g *Guild) AddText(id, name string) *Guild {
	g.Channels[id] = commands.Channel{ID: id, Name: name}
	return g
}

// Join puts a member in a voice channel.
func (g *Guild) Join(id, name, channelID string, roles ...string) *Guild {
	g.Members = append(g.Members, voice.Member{UserID: id, DisplayName: name, ChannelID: channelID, Roles: roles})
	return g
}

func (g *Guild) Channel(_, channelID string) (commands.Channel, error) {
	ch, ok := g.Channels[channelID]
	if !ok {
		return commands.Channel{}, commands.ErrNotFound
	}
	return ch, nil
}

func (g *Guild) VoiceMembers(string) ([]voice.Member, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.Members), nil
}

func (g *Guild) Member(_, userID string) (voice.Member, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, m := range g.Members {
		if m.UserID == userID {
			return m, nil
		}
	}
	return voice.Member{}, commands.ErrNotFound
}

func (g *Guild) SendEmbed(channelID string, e *discordgo.MessageEmbed) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Sent = append(g.Sent, Sent{ChannelID: channelID, Embed: e})
	return nil
}

func (g *Guild) AddReactions(_, messageID string, emojis []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Reactions[messageID] = append(g.Reactions[messageID], emojis...)
	return nil
}

func (g *Guild) PollVotes(_ context.Context, _, _, messageID string) ([]roster.Vote, error) {
	votes, ok := g.Votes[messageID]
	if !ok {
		return nil, commands.ErrNotFound
	}
	return votes, nil
}

// Mover moves members inside a Guild. Fail lists user ids whose move fails.
type Mover struct {
	Guild *Guild
	Fail  map[string]bool
	Calls int
}

func (m *Mover) MoveAll(_ context.Context, _ string, userIDs []string, channelID string) voice.Result {
	m.Guild.mu.Lock()
	defer m.Guild.mu.Unlock()
	m.Calls++

	res := voice.Result{Attempted: len(userIDs)}
	for _, id := range userIDs {
		if m.Fail[id] {
			res.Failures = append(res.Failures, voice.Failure{UserID: id, Err: commands.ErrNotFound})
			continue
		}
		for i := range m.Guild.Members {
			if m.Guild.Members[i].UserID == id {
				m.Guild.Members[i].ChannelID = channelID
			}
		}
		res.Moved++
	}
	return res
}

// ChannelOf returns the voice channel a member is in.
func (g *Guild) ChannelOf(userID string) string {
	m, _ := g.Member("", userID)
	return m.ChannelID
}
