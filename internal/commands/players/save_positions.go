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

type SavePositionsCommand struct {
	Guild     commands.Guild
	Directory *roster.Directory
	Clock     commands.Clock
}

func (c *SavePositionsCommand) Name() string        { return "save-positions" }
func (c *SavePositionsCommand) Description() string { return "Save player positions from a poll" }
func (c *SavePositionsCommand) Category() string    { return "📋 Roster" }

func (c *SavePositionsCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "message_id",
				Description: "The message ID of the poll (right-click message → Copy ID)",
				Required:    true,
			},
		},
	}
}

func (c *SavePositionsCommand) Run(ctx *core.Context) error {
	if err := ctx.Reply.Defer(false); err != nil {
		return fmt.Errorf("defer: %w", err)
	}

	messageID := strings.TrimSpace(ctx.Options.String("message_id"))
	votes, err := c.Guild.PollVotes(ctx.Ctx, ctx.GuildID, ctx.ChannelID, messageID)
	if errors.Is(err, commands.ErrNotFound) {
		return ctx.Fail("Could not find that message. Make sure you're in the same channel as the poll and the message ID is correct.")
	}
	if err != nil {
		return fmt.Errorf("read poll votes: %w", err)
	}
	if len(votes) == 0 {
		return ctx.Fail("That message has no reactions. Make sure you selected the correct poll message.")
	}

	res, err := c.Directory.Import(votes)
	if err != nil {
		return fmt.Errorf("import poll: %w", err)
	}
	ctx.Log.Info().
		Str("message_id", messageID).
		Int("updated", len(res.Updated)).
		Int("skipped", len(res.Skipped)).
		Msg("poll imported")

	return ctx.RespondEmbed("", c.resultEmbed(res))
}

func (c *SavePositionsCommand) resultEmbed(res roster.ImportResult) *discordgo.MessageEmbed {
	e := core.NewEmbed("✅ Positions Saved!", c.Clock.Now())

	if len(res.Updated) > 0 {
		lines := make([]string, len(res.Updated))
		for i, name := range res.Updated {
			codes, ok := c.Directory.Lookup(name)
			lines[i] = "• " + rosterLine(name, codes, ok)
		}
		e.AddField(fmt.Sprintf("📋 Updated Players (%d)", len(res.Updated)), core.FieldValue(strings.Join(lines, "\n"), "-"))
	} else {
		e.SetDescription("No new player positions were found.")
	}

	if len(res.Skipped) > 0 {
		e.AddField("⚠️ Skipped Reactions", "Unknown emojis: "+strings.Join(res.Skipped, " "))
	}

	e.SetFooter("Player positions saved to database")
	return e.MessageEmbed
}
