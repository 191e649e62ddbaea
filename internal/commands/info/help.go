package info

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/fcmerged/pitchbot/internal/config"
	"github.com/fcmerged/pitchbot/internal/core"
)

const AppName = "FC MERGED Bot"

// Lister is the command registry as /help sees it.
type Lister interface {
	All() []core.Command
}

type HelpCommand struct {
	Commands Lister
}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Description() string { return "Get a list of available commands" }
func (c *HelpCommand) Category() string    { return "🕯️ Information" }

func (c *HelpCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *HelpCommand) Run(ctx *core.Context) error {
	e := &discordgo.MessageEmbed{
		Title:       AppName + " Help",
		Description: BuildHelp(c.Commands.All()),
		Color:       core.EmbedColor,
	}
	_, err := ctx.Reply.Send(core.Reply{Embeds: []*discordgo.MessageEmbed{e}, Ephemeral: true})
	return err
}

// BuildHelp lists commands grouped by category, categories ordered by
// config.CategoryWeights and commands by name.
func BuildHelp(cmds []core.Command) string {
	byCategory := make(map[string][]core.Command)
	for _, cmd := range cmds {
		byCategory[cmd.Category()] = append(byCategory[cmd.Category()], cmd)
	}

	cats := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		cats = append(cats, cat)
	}
	sort.Slice(cats, func(i, j int) bool {
		wi, wj := config.CategoryWeights[cats[i]], config.CategoryWeights[cats[j]]
		if wi != wj {
			return wi < wj
		}
		return cats[i] < cats[j]
	})

	var sb strings.Builder
	for _, cat := range cats {
		sb.WriteString(fmt.Sprintf("**%s**\n", cat))
		list := byCategory[cat]
		sort.Slice(list, func(i, j int) bool {
			return list[i].Name() < list[j].Name()
		})
		for _, cmd := range list {
			sb.WriteString(fmt.Sprintf("`/%s` - %s\n", cmd.Name(), cmd.Description()))
		}
		sb.WriteString("\n")
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
