package players

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/fcmerged/pitchbot/internal/commands"
	"github.com/fcmerged/pitchbot/internal/config"
	"github.com/fcmerged/pitchbot/internal/core"
	"github.com/fcmerged/pitchbot/internal/positions"
	"github.com/fcmerged/pitchbot/internal/roster"
)

const flexLabel = "🔄 *Flex (all positions)*"

type RosterCommand struct {
	Guild     commands.Guild
	Directory *roster.Directory
	Channels  config.Channels
	Clock     commands.Clock
}

func (c *RosterCommand) Name() string        { return "roster" }
func (c *RosterCommand) Description() string { return "Show online players and their possible positions" }
func (c *RosterCommand) Category() string    { return "📋 Roster" }

func (c *RosterCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "show",
				Description: "Players in the voice channel, or everyone saved",
				Required:    false,
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "Online", Value: "online"},
					{Name: "Saved", Value: "saved"},
				},
			},
		},
	}
}

func (c *RosterCommand) Run(ctx *core.Context) error {
	if err := ctx.Reply.Defer(false); err != nil {
		return fmt.Errorf("defer: %w", err)
	}
	if ctx.Options.String("show") == "saved" {
		return c.saved(ctx)
	}

	if err := config.Require("SOURCE_VOICE_CHANNEL_ID", c.Channels.Source); err != nil {
		return err
	}
	source, ok := commands.VoiceChannel(c.Guild, ctx.GuildID, c.Channels.Source)
	if !ok {
		return ctx.Fail("Source voice channel not found.")
	}
	members, err := c.Guild.VoiceMembers(ctx.GuildID)
	if err != nil {
		return fmt.Errorf("list voice members: %w", err)
	}
	present := commands.Present(members, source.ID)
	if len(present) == 0 {
		return ctx.Fail("No players in the voice channel.")
	}

	lines := make([]string, len(present))
	for i, m := range present {
		codes, ok := c.Directory.Lookup(m.DisplayName)
		lines[i] = rosterLine(m.DisplayName, codes, ok)
	}

	e := core.NewEmbed("📋 Current Roster - "+source.Name, c.Clock.Now()).
		SetColor(core.PollColor).
		SetDescription(strings.Join(lines, "\n")).
		AddField("📊 Summary", fmt.Sprintf("**%d** players online", len(present))).
		InlineAllFields().
		SetFooter("Use /positions to assign positions based on formation")
	return ctx.RespondEmbed("", e.MessageEmbed)
}

func (c *RosterCommand) saved(ctx *core.Context) error {
	entries := c.Directory.All()
	if len(entries) == 0 {
		return ctx.Respond("ℹ️ No player positions saved yet. Run `/poll` to collect them.")
	}
	lines := make([]string, len(entries))
	for i, en := range entries {
		lines[i] = rosterLine(en.Name, en.Positions, len(en.Positions) > 0)
	}
	e := core.NewEmbed("📋 Saved Positions", c.Clock.Now()).
		SetColor(core.PollColor).
		SetDescription(strings.Join(lines, "\n")).
		SetFooter(fmt.Sprintf("%d players saved", len(entries)))
	return ctx.RespondEmbed("", e.MessageEmbed)
}

func rosterLine(name string, codes []string, ok bool) string {
	if !ok {
		return fmt.Sprintf("**%s** → %s", name, flexLabel)
	}
	codes = append([]string(nil), codes...)
	positions.SortCodes(codes)
	return fmt.Sprintf("**%s** → %s", name, strings.Join(codes, ", "))
}
