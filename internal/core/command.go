package core

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

type Command interface {
	Name() string
	Description() string
	Category() string
	Run(ctx *Context) error
}

// SlashProvider - how this command should be registered with Discord
type SlashProvider interface {
	SlashDefinition() *discordgo.ApplicationCommand
}

// Invoker is the member who ran the command.
type Invoker struct {
	ID          string
	DisplayName string
}

// Reply is one message sent back to the invoker.
type Reply struct {
	Content   string
	Embeds    []*discordgo.MessageEmbed
	Ephemeral bool
}

// Responder answers an interaction. Send edits the deferred response when
// Defer was called, responds when nothing was sent yet and follows up
// otherwise. It returns the id of the message it produced.
type Responder interface {
	Defer(ephemeral bool) error
	Send(r Reply) (messageID string, err error)
}

// Context - what runtime hands you when executing a command
type Context struct {
	Ctx       context.Context
	GuildID   string
	ChannelID string
	Invoker   Invoker
	Options   Options
	Reply     Responder
	Log       zerolog.Logger
}

// Respond sends a plain message.
func (c *Context) Respond(content string) error {
	_, err := c.Reply.Send(Reply{Content: content})
	return err
}

// RespondEphemeral sends a message only the invoker sees.
func (c *Context) RespondEphemeral(content string) error {
	_, err := c.Reply.Send(Reply{Content: content, Ephemeral: true})
	return err
}

// RespondEmbed sends an embed with optional content above it.
func (c *Context) RespondEmbed(content string, e *discordgo.MessageEmbed) error {
	_, err := c.Reply.Send(Reply{Content: content, Embeds: []*discordgo.MessageEmbed{e}})
	return err
}

// Fail reports a user-facing failure. It never returns an error of its own
// so commands can `return ctx.Fail(...)` after a negative lookup.
func (c *Context) Fail(msg string) error {
	if _, err := c.Reply.Send(Reply{Content: "❌ " + msg, Ephemeral: true}); err != nil {
		c.Log.Warn().Err(err).Msg("failed to send failure reply")
	}
	return nil
}
