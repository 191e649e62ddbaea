package moves

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/fcmerged/pitchbot/internal/commands"
	"github.com/fcmerged/pitchbot/internal/config"
	"github.com/fcmerged/pitchbot/internal/core"
	"github.com/fcmerged/pitchbot/internal/voice"
)

// GatherCommand pulls everyone in voice into the gather channel.
type GatherCommand struct {
	Guild     commands.Guild
	Mover     commands.Mover
	ChannelID string
}

func (c *GatherCommand) Name() string { return "gather" }
func (c *GatherCommand) Description() string {
	return "Move everyone in voice to the gather channel"
}
func (c *GatherCommand) Category() string { return "🔊 Voice" }

func (c *GatherCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *GatherCommand) Run(ctx *core.Context) error {
	if err := config.Require("GATHER_VOICE_CHANNEL_ID", c.ChannelID); err != nil {
		return err
	}
	if err := ctx.Reply.Defer(true); err != nil {
		return fmt.Errorf("defer: %w", err)
	}

	dest, ok := commands.VoiceChannel(c.Guild, ctx.GuildID, c.ChannelID)
	if !ok {
		return ctx.Fail("Target voice channel not found.")
	}
	members, err := c.Guild.VoiceMembers(ctx.GuildID)
	if err != nil {
		return fmt.Errorf("list voice members: %w", err)
	}
	ids := voice.Select(members, dest.ID)
	if len(ids) == 0 {
		return ctx.Fail("No members found in voice channels to move.")
	}

	res := c.Mover.MoveAll(ctx.Ctx, ctx.GuildID, ids, dest.ID)
	return ctx.Respond(fmt.Sprintf("✅ Moved %d/%d members to %s!", res.Moved, res.Attempted, dest.Name))
}
