// Package coretest provides an in-memory Responder for command tests.
package coretest

import (
	"context"
	"strconv"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/fcmerged/pitchbot/internal/core"
)

// Responder records everything a command sends.
type Responder struct {
	mu       sync.Mutex
	Deferred bool
	Replies  []core.Reply
	Err      error
}

func (r *Responder) Defer(bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Deferred = true
	return r.Err
}

func (r *Responder) Send(reply core.Reply) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return "", r.Err
	}
	r.Replies = append(r.Replies, reply)
	return "msg-" + strconv.Itoa(len(r.Replies)), nil
}

// Last returns the most recent reply, or the zero Reply.
func (r *Responder) Last() core.Reply {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Replies) == 0 {
		return core.Reply{}
	}
	return r.Replies[len(r.Replies)-1]
}

// Option is a slash command option value for NewContext.
type Option struct {
	Name  string
	Type  discordgo.ApplicationCommandOptionType
	Value string
}

// StringOpt builds a string option.
func StringOpt(name, value string) Option {
	return Option{Name: name, Type: discordgo.ApplicationCommandOptionString, Value: value}
}

// UserOpt builds a user option.
func UserOpt(name, id string) Option {
	return Option{Name: name, Type: discordgo.ApplicationCommandOptionUser, Value: id}
}

// ChannelOpt builds a channel option.
func ChannelOpt(name, id string) Option {
	return Option{Name: name, Type: discordgo.ApplicationCommandOptionChannel, Value: id}
}

// NewContext builds a guild command context invoked by user "u1" named
// "Caller". roles lists ids the resolved data should report as roles.
func NewContext(guildID string, opts []Option, roles ...string) (*core.Context, *Responder) {
	raw := make([]*discordgo.ApplicationCommandInteractionDataOption, 0, len(opts))
	for _, o := range opts {
		raw = append(raw, &discordgo.ApplicationCommandInteractionDataOption{Name: o.Name, Type: o.Type, Value: o.Value})
	}
	resolved := &discordgo.ApplicationCommandInteractionDataResolved{Roles: map[string]*discordgo.Role{}}
	for _, id := range roles {
		resolved.Roles[id] = &discordgo.Role{ID: id}
	}

	resp := &Responder{}
	return &core.Context{
		Ctx:       context.Background(),
		GuildID:   guildID,
		ChannelID: "text-1",
		Invoker:   core.Invoker{ID: "u1", DisplayName: "Caller"},
		Options:   core.NewOptions(raw, resolved),
		Reply:     resp,
		Log:       zerolog.Nop(),
	}, resp
}
