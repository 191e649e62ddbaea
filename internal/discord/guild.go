package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/coocood/freecache"
	"github.com/rs/zerolog"

	"github.com/fcmerged/pitchbot/internal/commands"
	"github.com/fcmerged/pitchbot/internal/roster"
	"github.com/fcmerged/pitchbot/internal/voice"
)

const (
	nameCacheSize = 4 * 1024 * 1024
	nameCacheTTL  = 300 // seconds
	reactionLimit = 100
)

// Guild serves commands.Guild from the session state, falling back to REST.
type Guild struct {
	s     *discordgo.Session
	names *nameCache
	log   zerolog.Logger
}

func NewGuild(s *discordgo.Session, logger zerolog.Logger) *Guild {
	return &Guild{
		s:     s,
		names: newNameCache(nameCacheSize, nameCacheTTL),
		log:   logger.With().Str("component", "guild").Logger(),
	}
}

func (g *Guild) Channel(guildID, channelID string) (commands.Channel, error) {
	ch, err := g.s.State.Channel(channelID)
	if err != nil {
		ch, err = g.s.Channel(channelID)
		if err != nil {
			return commands.Channel{}, notFound(err)
		}
	}
	if ch.GuildID != "" && ch.GuildID != guildID {
		return commands.Channel{}, commands.ErrNotFound
	}
	return commands.Channel{ID: ch.ID, Name: ch.Name, Voice: isVoice(ch.Type)}, nil
}

func (g *Guild) VoiceMembers(guildID string) ([]voice.Member, error) {
	guild, err := g.s.State.Guild(guildID)
	if err != nil {
		return nil, fmt.Errorf("guild %s not in state: %w", guildID, err)
	}

	out := make([]voice.Member, 0, len(guild.VoiceStates))
	for _, vs := range guild.VoiceStates {
		if vs.ChannelID == "" {
			continue
		}
		m := vs.Member
		if m == nil {
			m, err = g.member(guildID, vs.UserID)
			if err != nil {
				g.log.Warn().Err(err).Str("user_id", vs.UserID).Msg("skipping voice member")
				continue
			}
		}
		out = append(out, g.toMember(guildID, m, vs.ChannelID))
	}
	return out, nil
}

func (g *Guild) Member(guildID, userID string) (voice.Member, error) {
	m, err := g.member(guildID, userID)
	if err != nil {
		return voice.Member{}, notFound(err)
	}
	channelID := ""
	if vs, err := g.s.State.VoiceState(guildID, userID); err == nil {
		channelID = vs.ChannelID
	}
	return g.toMember(guildID, m, channelID), nil
}

func (g *Guild) SendEmbed(channelID string, e *discordgo.MessageEmbed) error {
	_, err := g.s.ChannelMessageSendEmbed(channelID, e)
	return err
}

func (g *Guild) AddReactions(channelID, messageID string, emojis []string) error {
	for _, emoji := range emojis {
		if err := g.s.MessageReactionAdd(channelID, messageID, emoji); err != nil {
			return fmt.Errorf("react %s: %w", emoji, err)
		}
	}
	return nil
}

// PollVotes reads every reaction on the message. Each emoji is fetched in
// pages of reactionLimit users.
func (g *Guild) PollVotes(ctx context.Context, guildID, channelID, messageID string) ([]roster.Vote, error) {
	msg, err := g.s.ChannelMessage(channelID, messageID)
	if err != nil {
		return nil, notFound(err)
	}

	votes := make([]roster.Vote, 0, len(msg.Reactions))
	for _, r := range msg.Reactions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		emoji := r.Emoji.APIName()
		users, err := g.reactors(channelID, messageID, emoji)
		if err != nil {
			return nil, fmt.Errorf("reactions for %s: %w", emoji, err)
		}

		vote := roster.Vote{Emoji: r.Emoji.Name}
		for _, u := range users {
			if u.Bot {
				continue
			}
			vote.Voters = append(vote.Voters, g.displayName(guildID, u))
		}
		votes = append(votes, vote)
	}
	return votes, nil
}

func (g *Guild) reactors(channelID, messageID, emoji string) ([]*discordgo.User, error) {
	var all []*discordgo.User
	after := ""
	for {
		page, err := g.s.MessageReactions(channelID, messageID, emoji, reactionLimit, "", after)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < reactionLimit {
			return all, nil
		}
		after = page[len(page)-1].ID
	}
}

func (g *Guild) member(guildID, userID string) (*discordgo.Member, error) {
	if m, err := g.s.State.Member(guildID, userID); err == nil {
		return m, nil
	}
	return g.s.GuildMember(guildID, userID)
}

func (g *Guild) toMember(guildID string, m *discordgo.Member, channelID string) voice.Member {
	out := voice.Member{ChannelID: channelID, Roles: m.Roles}
	if m.User != nil {
		out.UserID = m.User.ID
		out.Bot = m.User.Bot
	}
	out.DisplayName = displayName(m, m.User)
	g.names.Set(guildID, out.UserID, out.DisplayName)
	return out
}

// displayName resolves a reactor's server name, which reaction lists omit.
func (g *Guild) displayName(guildID string, u *discordgo.User) string {
	if name, ok := g.names.Get(guildID, u.ID); ok {
		return name
	}
	m, err := g.member(guildID, u.ID)
	if err != nil {
		name := displayName(nil, u)
		g.names.Set(guildID, u.ID, name)
		return name
	}
	name := displayName(m, u)
	g.names.Set(guildID, u.ID, name)
	return name
}

func isVoice(t discordgo.ChannelType) bool {
	return t == discordgo.ChannelTypeGuildVoice || t == discordgo.ChannelTypeGuildStageVoice
}

// notFound maps Discord 404s and state misses to commands.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, discordgo.ErrStateNotFound) {
		return commands.ErrNotFound
	}
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Response != nil && rest.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %w", commands.ErrNotFound, err)
	}
	return err
}

// nameCache remembers display names per guild member.
type nameCache struct {
	cache *freecache.Cache
	ttl   int
}

func newNameCache(size, ttlSeconds int) *nameCache {
	return &nameCache{cache: freecache.NewCache(size), ttl: ttlSeconds}
}

func (c *nameCache) Get(guildID, userID string) (string, bool) {
	v, err := c.cache.Get([]byte(guildID + ":" + userID))
	if err != nil {
		return "", false
	}
	return string(v), true
}

func (c *nameCache) Set(guildID, userID, name string) {
	if userID == "" || name == "" {
		return
	}
	_ = c.cache.Set([]byte(guildID+":"+userID), []byte(name), c.ttl)
}
