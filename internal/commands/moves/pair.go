package moves

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/fcmerged/pitchbot/internal/commands"
	"github.com/fcmerged/pitchbot/internal/config"
	"github.com/fcmerged/pitchbot/internal/core"
)

// PairCommand takes the caller and one other member to the pair channel.
type PairCommand struct {
	Guild     commands.Guild
	Mover     commands.Mover
	ChannelID string
}

func (c *PairCommand) Name() string { return "pair" }
func (c *PairCommand) Description() string {
	return "Move you and a tagged user to a private voice channel"
}
func (c *PairCommand) Category() string { return "🔊 Voice" }

func (c *PairCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "user",
				Description: "The user to bring with you",
				Required:    true,
			},
		},
	}
}

func (c *PairCommand) Run(ctx *core.Context) error {
	if err := config.Require("PAIR_VOICE_CHANNEL_ID", c.ChannelID); err != nil {
		return err
	}
	if err := ctx.Reply.Defer(true); err != nil {
		return fmt.Errorf("defer: %w", err)
	}

	other, err := c.Guild.Member(ctx.GuildID, ctx.Options.ID("user"))
	if errors.Is(err, commands.ErrNotFound) {
		return ctx.Fail("User not found in this server.")
	}
	if err != nil {
		return fmt.Errorf("fetch member: %w", err)
	}

	caller, err := c.Guild.Member(ctx.GuildID, ctx.Invoker.ID)
	if err != nil && !errors.Is(err, commands.ErrNotFound) {
		return fmt.Errorf("fetch caller: %w", err)
	}
	if caller.ChannelID == "" {
		return ctx.Fail("You must be in a voice channel to use this command.")
	}
	if other.ChannelID == "" {
		return ctx.Fail(fmt.Sprintf("%s must be in a voice channel.", other.DisplayName))
	}

	dest, ok := commands.VoiceChannel(c.Guild, ctx.GuildID, c.ChannelID)
	if !ok {
		return ctx.Fail("Target voice channel not found.")
	}

	res := c.Mover.MoveAll(ctx.Ctx, ctx.GuildID, []string{caller.UserID, other.UserID}, dest.ID)
	if len(res.Failures) > 0 {
		return ctx.Fail("Failed to move users. Make sure the bot has permission to move members.")
	}
	return ctx.Respond(fmt.Sprintf("✅ Moved you and %s to %s!", other.DisplayName, dest.Name))
}
