package calls

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/fcmerged/pitchbot/internal/calltracker"
	"github.com/fcmerged/pitchbot/internal/commands"
	"github.com/fcmerged/pitchbot/internal/core"
	"github.com/fcmerged/pitchbot/pkg/util"
)

const (
	statsColor       = 0x0099ff
	leaderboardLimit = 10
)

// StatsSource answers aggregate queries over the call history.
type StatsSource interface {
	Stats(guildID string, period calltracker.Period) ([]calltracker.UserStats, error)
}

type CallStatsCommand struct {
	Stats StatsSource
	Clock commands.Clock
}

func (c *CallStatsCommand) Name() string        { return "call-stats" }
func (c *CallStatsCommand) Description() string { return "View voice call statistics" }
func (c *CallStatsCommand) Category() string    { return "🔊 Voice" }

func (c *CallStatsCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "period",
				Description: "Time period for stats",
				Required:    true,
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "Weekly", Value: string(calltracker.Weekly)},
					{Name: "Monthly", Value: string(calltracker.Monthly)},
					{Name: "All Time", Value: string(calltracker.AllTime)},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "user",
				Description: "Filter by specific user",
				Required:    false,
			},
		},
	}
}

func (c *CallStatsCommand) Run(ctx *core.Context) error {
	period, err := calltracker.ParsePeriod(ctx.Options.String("period"))
	if errors.Is(err, calltracker.ErrUnknownPeriod) {
		return ctx.Fail("Unknown period. Use weekly, monthly or all_time.")
	}

	stats, err := c.Stats.Stats(ctx.GuildID, period)
	if err != nil {
		return fmt.Errorf("call stats: %w", err)
	}

	e := core.NewEmbed("Voice Call Statistics - "+period.Label(), c.Clock.Now()).SetColor(statsColor)
	switch userID := ctx.Options.ID("user"); {
	case len(stats) == 0:
		e.SetDescription("No data found for this period.")
	case userID != "":
		us, ok := calltracker.Find(stats, userID)
		if !ok {
			e.SetDescription(fmt.Sprintf("No data found for %s in this period.", commands.Mention(userID)))
			break
		}
		e.SetDescription("Stats for "+commands.Mention(userID)).
			AddField("Total Duration", calltracker.FormatDuration(us.Total)).
			AddField("Sessions", strconv.Itoa(us.Sessions)).
			AddField("Last Seen", lastSeen(us)).
			InlineAllFields()
	default:
		e.SetDescription(Leaderboard(stats))
	}

	return ctx.RespondEmbed("", e.MessageEmbed)
}

// Leaderboard renders the top users, one line each.
func Leaderboard(stats []calltracker.UserStats) string {
	var sb strings.Builder
	for i, us := range calltracker.Leaderboard(stats, leaderboardLimit) {
		fmt.Fprintf(&sb, "%d. %s: **%s** (%d sessions)\n",
			i+1, commands.Mention(us.UserID), calltracker.FormatDuration(us.Total), us.Sessions)
	}
	return sb.String()
}

func lastSeen(us calltracker.UserStats) string {
	if us.LastSeen.IsZero() {
		return "Never"
	}
	return fmt.Sprintf("<t:%d:R>\n%s UTC", us.LastSeen.Unix(), util.FormatDateTpl(us.LastSeen.UTC(), "YYYY-MM-DD hh:mm"))
}
