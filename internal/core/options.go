package core

import "github.com/bwmarrin/discordgo"

// Options gives typed access to slash command options by name.
type Options struct {
	values   map[string]*discordgo.ApplicationCommandInteractionDataOption
	resolved *discordgo.ApplicationCommandInteractionDataResolved
}

func NewOptions(opts []*discordgo.ApplicationCommandInteractionDataOption, resolved *discordgo.ApplicationCommandInteractionDataResolved) Options {
	values := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, opt := range opts {
		values[opt.Name] = opt
	}
	return Options{values: values, resolved: resolved}
}

func (o Options) Has(name string) bool {
	_, ok := o.values[name]
	return ok
}

// String returns the option's value, or "" when it was not given.
func (o Options) String(name string) string {
	opt, ok := o.values[name]
	if !ok {
		return ""
	}
	if s, ok := opt.Value.(string); ok {
		return s
	}
	return ""
}

// ID returns the snowflake of a user, role, channel or mentionable option.
// Discord sends all of them as strings.
func (o Options) ID(name string) string {
	return o.String(name)
}

// IsRole reports whether a mentionable option points at a role. @everyone
// is the role whose id equals the guild id.
func (o Options) IsRole(name string) bool {
	id := o.ID(name)
	if id == "" || o.resolved == nil {
		return false
	}
	_, ok := o.resolved.Roles[id]
	return ok
}
