package moves

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/fcmerged/pitchbot/internal/commands"
	"github.com/fcmerged/pitchbot/internal/core"
	"github.com/fcmerged/pitchbot/internal/voice"
)

var moveMembersPerm int64 = discordgo.PermissionVoiceMoveMembers

type MoveCommand struct {
	Guild commands.Guild
	Mover commands.Mover
}

func (c *MoveCommand) Name() string { return "move" }
func (c *MoveCommand) Description() string {
	return "Move a user, a role, or everyone to a specific voice channel"
}
func (c *MoveCommand) Category() string { return "🔊 Voice" }

func (c *MoveCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:                     c.Name(),
		Description:              c.Description(),
		Type:                     discordgo.ChatApplicationCommand,
		DefaultMemberPermissions: &moveMembersPerm,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionMentionable,
				Name:        "target",
				Description: "The user or role to move",
				Required:    true,
			},
			{
				Type:         discordgo.ApplicationCommandOptionChannel,
				Name:         "channel",
				Description:  "The destination voice channel",
				Required:     true,
				ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildVoice},
			},
		},
	}
}

func (c *MoveCommand) Run(ctx *core.Context) error {
	if err := ctx.Reply.Defer(true); err != nil {
		return fmt.Errorf("defer: %w", err)
	}

	dest, ok := commands.VoiceChannel(c.Guild, ctx.GuildID, ctx.Options.ID("channel"))
	if !ok {
		return ctx.Fail("Destination voice channel not found.")
	}
	target := ctx.Options.ID("target")

	if !ctx.Options.IsRole("target") {
		return c.moveUser(ctx, target, dest)
	}

	members, err := c.Guild.VoiceMembers(ctx.GuildID)
	if err != nil {
		return fmt.Errorf("list voice members: %w", err)
	}
	var ids []string
	if target == ctx.GuildID {
		ids = voice.Select(members, dest.ID)
	} else {
		ids = voice.Select(members, dest.ID, voice.HasRole(target))
	}
	if len(ids) == 0 {
		return ctx.Fail("No members found with that role in other voice channels.")
	}

	res := c.Mover.MoveAll(ctx.Ctx, ctx.GuildID, ids, dest.ID)
	return ctx.Respond(fmt.Sprintf("✅ Moved %d/%d members to %s.", res.Moved, res.Attempted, dest.Name))
}

func (c *MoveCommand) moveUser(ctx *core.Context, userID string, dest commands.Channel) error {
	member, err := c.Guild.Member(ctx.GuildID, userID)
	if errors.Is(err, commands.ErrNotFound) {
		return ctx.Fail("User not found in this guild.")
	}
	if err != nil {
		return fmt.Errorf("fetch member: %w", err)
	}

	switch member.ChannelID {
	case "":
		return ctx.Fail(fmt.Sprintf("%s is not currently in a voice channel.", member.DisplayName))
	case dest.ID:
		return ctx.Fail(fmt.Sprintf("%s is already in %s.", member.DisplayName, dest.Name))
	}

	res := c.Mover.MoveAll(ctx.Ctx, ctx.GuildID, []string{member.UserID}, dest.ID)
	if res.Moved == 0 {
		return ctx.Fail(fmt.Sprintf("Failed to move %s. Make sure the bot has permission to move members.", member.DisplayName))
	}
	return ctx.Respond(fmt.Sprintf("✅ Moved %s to %s.", member.DisplayName, dest.Name))
}
