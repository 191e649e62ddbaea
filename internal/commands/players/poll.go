package players

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/fcmerged/pitchbot/internal/commands"
	"github.com/fcmerged/pitchbot/internal/core"
	"github.com/fcmerged/pitchbot/internal/positions"
)

const divider = "━━━━━━━━━━━━━━━━━━━━━━━━━━━"

type PollCommand struct {
	Guild commands.Guild
	Clock commands.Clock
}

func (c *PollCommand) Name() string        { return "poll" }
func (c *PollCommand) Description() string { return "Create a position poll for players to select their positions" }
func (c *PollCommand) Category() string    { return "📋 Roster" }

func (c *PollCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *PollCommand) Run(ctx *core.Context) error {
	msgID, err := ctx.Reply.Send(core.Reply{Embeds: []*discordgo.MessageEmbed{PollEmbed(c.Clock)}})
	if err != nil {
		return fmt.Errorf("send poll: %w", err)
	}

	emojis := make([]string, len(positions.Poll))
	for i, p := range positions.Poll {
		emojis[i] = p.Emoji
	}
	if err := c.Guild.AddReactions(ctx.ChannelID, msgID, emojis); err != nil {
		return fmt.Errorf("add poll reactions: %w", err)
	}
	ctx.Log.Info().Str("message_id", msgID).Msg("position poll created")
	return nil
}

var pollGroups = []struct {
	category positions.Category
	title    string
}{
	{positions.CategoryGoalkeeper, "🧤 Goalkeeper"},
	{positions.CategoryDefense, "🛡️ Defense"},
	{positions.CategoryMidfield, "🎯 Midfield"},
	{positions.CategoryAttack, "⚡ Attack"},
}

// PollEmbed explains which reaction stands for which position.
func PollEmbed(clock commands.Clock) *discordgo.MessageEmbed {
	e := core.NewEmbed("🎮 Position Poll", clock.Now()).
		SetColor(core.PollColor).
		SetDescription("**React with the positions you can play!**\n" +
			"Select ALL positions you're comfortable playing.\n\n" + divider)

	for _, g := range pollGroups {
		var lines []string
		for _, p := range positions.Poll {
			if p.Category == g.category {
				lines = append(lines, fmt.Sprintf("%s = **%s**", p.Emoji, p.Code))
			}
		}
		if len(lines) == 0 {
			continue
		}
		e.AddField(g.title, strings.Join(lines, "\n"))
		e.Fields[len(e.Fields)-1].Inline = true
	}

	e.AddField("\u200b", divider+"\n💡 **Tip:** Use `/save-positions` to save reactions to the database!").
		SetFooter("React below to vote for your positions")
	return e.MessageEmbed
}
