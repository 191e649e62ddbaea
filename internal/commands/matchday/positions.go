package matchday

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/fcmerged/pitchbot/internal/commands"
	"github.com/fcmerged/pitchbot/internal/config"
	"github.com/fcmerged/pitchbot/internal/core"
	"github.com/fcmerged/pitchbot/internal/lineup"
)

// LineupRecorder counts built lineups.
type LineupRecorder interface {
	LineupBuilt(formation string)
}

type PositionsCommand struct {
	Guild      commands.Guild
	Engine     *lineup.Engine
	Formations []lineup.Formation
	Channels   config.Channels
	Recorder   LineupRecorder
	Clock      commands.Clock
}

func (c *PositionsCommand) Name() string        { return "positions" }
func (c *PositionsCommand) Description() string { return "Assign positions to players based on formation" }
func (c *PositionsCommand) Category() string    { return "⚽ Matchday" }

func (c *PositionsCommand) SlashDefinition() *discordgo.ApplicationCommand {
	var choices []*discordgo.ApplicationCommandOptionChoice
	for _, f := range c.Formations {
		// Discord caps choices at 25.
		if len(choices) == 25 {
			break
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: f.Name, Value: f.Name})
	}
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "formation",
				Description: "The formation to use",
				Required:    true,
				Choices:     choices,
			},
		},
	}
}

func (c *PositionsCommand) Run(ctx *core.Context) error {
	if err := ctx.Reply.Defer(false); err != nil {
		return fmt.Errorf("defer: %w", err)
	}

	formation, ok := config.FindFormation(c.Formations, ctx.Options.String("formation"))
	if !ok {
		return ctx.Fail("Invalid formation selected.")
	}
	if err := config.Require("SOURCE_VOICE_CHANNEL_ID", c.Channels.Source); err != nil {
		return err
	}
	if _, ok := commands.VoiceChannel(c.Guild, ctx.GuildID, c.Channels.Source); !ok {
		return ctx.Fail("Source voice channel not found.")
	}

	members, err := c.Guild.VoiceMembers(ctx.GuildID)
	if err != nil {
		return fmt.Errorf("list voice members: %w", err)
	}
	present := commands.Present(members, c.Channels.Source)
	if len(present) == 0 {
		return ctx.Fail("No players in the voice channel.")
	}

	result := c.Engine.Assign(commands.Players(present), formation)
	if c.Recorder != nil {
		c.Recorder.LineupBuilt(formation.Name)
	}
	ctx.Log.Debug().
		Str("formation", formation.Name).
		Int("assigned", len(result.Assignments)).
		Int("substitutes", len(result.Substitutes)).
		Msg("lineup built")

	e := LineupEmbed(result, len(present), c.Clock)
	if c.Channels.Text != "" {
		if err := c.Guild.SendEmbed(c.Channels.Text, e); err != nil {
			ctx.Log.Warn().Err(err).Str("channel_id", c.Channels.Text).Msg("failed to post lineup")
		}
	}
	return ctx.RespondEmbed("✅ Positions assigned!", e)
}

var tierFields = []struct {
	tier  lineup.Tier
	title string
}{
	{lineup.TierDefense, "🛡️ Defense"},
	{lineup.TierMidfield, "🎯 Midfield"},
	{lineup.TierAttack, "⚡ Attack"},
}

// LineupEmbed lists the back line first and the bench last. Empty groups
// are left out.
func LineupEmbed(r lineup.Result, players int, clock commands.Clock) *discordgo.MessageEmbed {
	e := core.NewEmbed("⚽ Position Assignment - "+r.Formation, clock.Now())

	for _, tf := range tierFields {
		assigned := r.ByTier(tf.tier)
		if len(assigned) == 0 {
			continue
		}
		lines := make([]string, len(assigned))
		for i, a := range assigned {
			lines[i] = fmt.Sprintf("**%s**: %s", a.Slot.Position, commands.Mention(a.Player.ID))
		}
		e.AddField(tf.title, core.FieldValue(strings.Join(lines, "\n"), "-"))
	}

	if len(r.Substitutes) > 0 {
		subs := make([]string, len(r.Substitutes))
		for i, p := range r.Substitutes {
			subs[i] = commands.Mention(p.ID)
		}
		e.AddField("👋 Substitutes", core.FieldValue(strings.Join(subs, "\n"), "-"))
	}

	e.SetFooter(fmt.Sprintf("%d positions assigned | %d players", len(r.Assignments), players))
	return e.MessageEmbed
}
