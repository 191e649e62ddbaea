package matchday

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/fcmerged/pitchbot/internal/commands"
	"github.com/fcmerged/pitchbot/internal/config"
	"github.com/fcmerged/pitchbot/internal/core"
	"github.com/fcmerged/pitchbot/internal/teams"
	"github.com/fcmerged/pitchbot/internal/voice"
)

type TeamsCommand struct {
	Guild     commands.Guild
	Mover     commands.Mover
	Channels  config.Channels
	Team1Name string
	Team2Name string
	Shuffle   teams.Shuffler
	Clock     commands.Clock
}

func (c *TeamsCommand) Name() string        { return "teams" }
func (c *TeamsCommand) Description() string { return "Split players in voice channel into two teams" }
func (c *TeamsCommand) Category() string    { return "⚽ Matchday" }

func (c *TeamsCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *TeamsCommand) Run(ctx *core.Context) error {
	ch := c.Channels
	if err := commands.Require(
		"SOURCE_VOICE_CHANNEL_ID", ch.Source,
		"TEAM1_VOICE_CHANNEL_ID", ch.Team1,
		"TEAM2_VOICE_CHANNEL_ID", ch.Team2,
		"TEAMS_TEXT_CHANNEL_ID", ch.Text,
	); err != nil {
		return err
	}

	if err := ctx.Reply.Defer(false); err != nil {
		return fmt.Errorf("defer: %w", err)
	}

	if _, ok := commands.VoiceChannel(c.Guild, ctx.GuildID, ch.Source); !ok {
		return ctx.Fail("Source voice channel not found.")
	}
	members, err := c.Guild.VoiceMembers(ctx.GuildID)
	if err != nil {
		return fmt.Errorf("list voice members: %w", err)
	}
	present := commands.Present(members, ch.Source)
	if len(present) < 2 {
		return ctx.Fail("Need at least 2 players in the voice channel to create teams.")
	}

	_, ok1 := commands.VoiceChannel(c.Guild, ctx.GuildID, ch.Team1)
	_, ok2 := commands.VoiceChannel(c.Guild, ctx.GuildID, ch.Team2)
	if !ok1 || !ok2 {
		return ctx.Fail("Team voice channels not found.")
	}

	team1, team2 := teams.Split(present, c.Shuffle)
	moved1 := c.Mover.MoveAll(ctx.Ctx, ctx.GuildID, userIDs(team1), ch.Team1)
	moved2 := c.Mover.MoveAll(ctx.Ctx, ctx.GuildID, userIDs(team2), ch.Team2)

	e := TeamsEmbed(c.Team1Name, c.Team2Name, team1, team2, c.Clock)
	if err := c.Guild.SendEmbed(ch.Text, e); err != nil {
		ctx.Log.Warn().Err(err).Str("channel_id", ch.Text).Msg("failed to post teams")
	}

	content := "✅ Teams created and players moved!"
	if failed := len(moved1.Failures) + len(moved2.Failures); failed > 0 {
		content = fmt.Sprintf("⚠️ Teams created, moved %d/%d players.",
			moved1.Moved+moved2.Moved, moved1.Attempted+moved2.Attempted)
	}
	return ctx.RespondEmbed(content, e)
}

// TeamsEmbed renders both sides next to each other.
func TeamsEmbed(name1, name2 string, team1, team2 []voice.Member, clock commands.Clock) *discordgo.MessageEmbed {
	e := core.NewEmbed("⚽ Teams Created!", clock.Now()).
		AddField("🔵 "+name1, core.FieldValue(names(team1), "No players")).
		AddField("🔴 "+name2, core.FieldValue(names(team2), "No players")).
		InlineAllFields().
		SetFooter(fmt.Sprintf("%d players split into teams", len(team1)+len(team2)))
	return e.MessageEmbed
}

func names(members []voice.Member) string {
	out := make([]string, len(members))
	for i, m := range members {
		out[i] = m.DisplayName
	}
	return strings.Join(out, "\n")
}

func userIDs(members []voice.Member) []string {
	out := make([]string, len(members))
	for i, m := range members {
		out[i] = m.UserID
	}
	return out
}
