// Package bot assembles the club's slash commands behind the shared
// middleware chain.
package bot

import (
	"github.com/fcmerged/pitchbot/internal/calltracker"
	"github.com/fcmerged/pitchbot/internal/commands"
	"github.com/fcmerged/pitchbot/internal/commands/calls"
	"github.com/fcmerged/pitchbot/internal/commands/info"
	"github.com/fcmerged/pitchbot/internal/commands/jukebox"
	"github.com/fcmerged/pitchbot/internal/commands/matchday"
	"github.com/fcmerged/pitchbot/internal/commands/moves"
	"github.com/fcmerged/pitchbot/internal/commands/players"
	"github.com/fcmerged/pitchbot/internal/config"
	"github.com/fcmerged/pitchbot/internal/core"
	"github.com/fcmerged/pitchbot/internal/lineup"
	"github.com/fcmerged/pitchbot/internal/metrics"
	"github.com/fcmerged/pitchbot/internal/positions"
	"github.com/fcmerged/pitchbot/internal/roster"
)

// Deps is everything the commands act on.
type Deps struct {
	Config    *config.Config
	Guild     commands.Guild
	Mover     commands.Mover
	Directory *roster.Directory
	Stats     calls.StatsSource
	Player    jukebox.Player
	Metrics   metrics.Provider
	Clock     commands.Clock
}

// Commands builds every command, unwrapped.
func Commands(d Deps, reg *core.Registry) []core.Command {
	cfg := d.Config
	engine := lineup.NewEngine(d.Directory, lineup.WithUniverse(positions.Universe()))

	return []core.Command{
		&info.HelpCommand{Commands: reg},

		&matchday.TeamsCommand{
			Guild:     d.Guild,
			Mover:     d.Mover,
			Channels:  cfg.Channels,
			Team1Name: cfg.Team1Name,
			Team2Name: cfg.Team2Name,
			Clock:     d.Clock,
		},
		&matchday.PositionsCommand{
			Guild:      d.Guild,
			Engine:     engine,
			Formations: cfg.Formations,
			Channels:   cfg.Channels,
			Recorder:   d.Metrics,
			Clock:      d.Clock,
		},

		&players.RosterCommand{Guild: d.Guild, Directory: d.Directory, Channels: cfg.Channels, Clock: d.Clock},
		&players.PollCommand{Guild: d.Guild, Clock: d.Clock},
		&players.SavePositionsCommand{Guild: d.Guild, Directory: d.Directory, Clock: d.Clock},
		&players.ResetPositionsCommand{Directory: d.Directory, Clock: d.Clock},

		&moves.MoveCommand{Guild: d.Guild, Mover: d.Mover},
		&moves.GatherCommand{Guild: d.Guild, Mover: d.Mover, ChannelID: cfg.Channels.Gather},
		&moves.PairCommand{Guild: d.Guild, Mover: d.Mover, ChannelID: cfg.Channels.Pair},

		&calls.CallStatsCommand{Stats: d.Stats, Clock: d.Clock},

		&jukebox.PlayCommand{Guild: d.Guild, Player: d.Player, Clock: d.Clock},
		&jukebox.StopCommand{Player: d.Player, Clock: d.Clock},
	}
}

// NewRegistry registers every command wrapped in core.Default.
func NewRegistry(d Deps) *core.Registry {
	if d.Metrics == nil {
		d.Metrics = metrics.Noop{}
	}
	reg := core.NewRegistry()
	mws := core.Default(d.Metrics)
	for _, cmd := range Commands(d, reg) {
		reg.Register(core.ApplyMiddlewares(cmd, mws...))
	}
	return reg
}

var _ calls.StatsSource = (*calltracker.Tracker)(nil)
