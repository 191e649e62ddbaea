package players

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/fcmerged/pitchbot/internal/commands"
	"github.com/fcmerged/pitchbot/internal/core"
	"github.com/fcmerged/pitchbot/internal/roster"
)

const (
	resetOneColor = 0xffa500
	resetAllColor = 0xff6b6b
)

type ResetPositionsCommand struct {
	Directory *roster.Directory
	Clock     commands.Clock
}

func (c *ResetPositionsCommand) Name() string { return "reset-positions" }
func (c *ResetPositionsCommand) Description() string {
	return "Reset all saved player positions before a new poll"
}
func (c *ResetPositionsCommand) Category() string { return "📋 Roster" }

func (c *ResetPositionsCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "player",
				Description: "Reset a specific player (leave empty to reset ALL)",
				Required:    false,
			},
		},
	}
}

func (c *ResetPositionsCommand) Run(ctx *core.Context) error {
	player := strings.TrimSpace(ctx.Options.String("player"))
	if player != "" {
		return c.resetOne(ctx, player)
	}

	n, err := c.Directory.ResetAll()
	switch {
	case errors.Is(err, roster.ErrRosterEmpty):
		return ctx.Respond("ℹ️ No player positions to reset - database is already empty.")
	case err != nil:
		return fmt.Errorf("reset roster: %w", err)
	}

	e := core.NewEmbed("🗑️ All Positions Reset!", c.Clock.Now()).
		SetColor(resetAllColor).
		SetDescription(fmt.Sprintf("Cleared positions for **%d** players.\n\nRun `/poll` to start a fresh position poll!", n)).
		SetFooter("All player data has been cleared")
	return ctx.RespondEmbed("", e.MessageEmbed)
}

func (c *ResetPositionsCommand) resetOne(ctx *core.Context, player string) error {
	removed, err := c.Directory.Reset(player)
	if errors.Is(err, roster.ErrPlayerNotFound) || errors.Is(err, roster.ErrRosterEmpty) {
		return ctx.Fail(fmt.Sprintf("Player **%s** not found in the database.", player))
	}
	if err != nil {
		return fmt.Errorf("reset player: %w", err)
	}

	e := core.NewEmbed("🗑️ Player Reset", c.Clock.Now()).
		SetColor(resetOneColor).
		SetDescription(fmt.Sprintf("Cleared all positions for **%s**", removed))
	return ctx.RespondEmbed("", e.MessageEmbed)
}
