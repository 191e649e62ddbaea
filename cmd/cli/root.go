package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/fcmerged/pitchbot/internal/calltracker"
	"github.com/fcmerged/pitchbot/internal/config"
	"github.com/fcmerged/pitchbot/internal/roster"
	"github.com/fcmerged/pitchbot/internal/storage"
)

type options struct {
	dataDir     string
	rosterFile  string
	historyFile string
	formations  string
}

// NewRootCmd builds the offline admin tool. It works on the same data files
// as the bot and never connects to Discord.
func NewRootCmd(logger zerolog.Logger) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "pitchbot-cli",
		Short:         "Inspect and maintain the club bot's data files",
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "data", "directory holding the data files")
	root.PersistentFlags().StringVar(&opts.rosterFile, "roster-file", "player-roles.json", "roster file name")
	root.PersistentFlags().StringVar(&opts.historyFile, "history-file", "call-history.json", "call history file name")

	root.AddCommand(
		newRosterCmd(opts, logger),
		newStatsCmd(opts, logger),
		newFormationsCmd(opts),
	)
	return root
}

func (o *options) open(logger zerolog.Logger) (*storage.Storage, error) {
	return storage.New(o.dataDir, o.rosterFile, o.historyFile, logger)
}

func newRosterCmd(opts *options, logger zerolog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "List or reset saved player positions",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print every saved player and their positions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := opts.open(logger)
			if err != nil {
				return err
			}
			entries := roster.New(store.Roster, logger).All()
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No player positions saved yet.")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(out, "%s\t%s\n", e.Name, strings.Join(e.Positions, ", "))
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset [player]",
		Short: "Clear one player's positions, or everyone's when no player is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.open(logger)
			if err != nil {
				return err
			}
			dir := roster.New(store.Roster, logger)
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				key, err := dir.Reset(args[0])
				if errors.Is(err, roster.ErrPlayerNotFound) || errors.Is(err, roster.ErrRosterEmpty) {
					return fmt.Errorf("player %q not found", args[0])
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Cleared all positions for %s\n", key)
				return nil
			}

			n, err := dir.ResetAll()
			if errors.Is(err, roster.ErrRosterEmpty) {
				fmt.Fprintln(out, "No player positions to reset.")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Cleared positions for %d players\n", n)
			return nil
		},
	})
	return cmd
}

func newStatsCmd(opts *options, logger zerolog.Logger) *cobra.Command {
	var guildID, period, userID string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print voice call statistics for a guild",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := calltracker.ParsePeriod(period)
			if err != nil {
				return err
			}
			store, err := opts.open(logger)
			if err != nil {
				return err
			}
			stats, err := calltracker.New(store.History, logger).Stats(guildID, p)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Voice call statistics - %s\n", p.Label())
			if userID != "" {
				s, ok := calltracker.Find(stats, userID)
				if !ok {
					fmt.Fprintf(out, "No data found for %s in this period.\n", userID)
					return nil
				}
				stats = []calltracker.UserStats{s}
			}
			if len(stats) == 0 {
				fmt.Fprintln(out, "No data found for this period.")
				return nil
			}
			for i, s := range stats {
				fmt.Fprintf(out, "%d. %s\t%s\t%d sessions\n", i+1, s.UserID, calltracker.FormatDuration(s.Total), s.Sessions)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&guildID, "guild", "", "guild id")
	cmd.Flags().StringVar(&period, "period", string(calltracker.AllTime), "weekly, monthly or all_time")
	cmd.Flags().StringVar(&userID, "user", "", "only this user id")
	_ = cmd.MarkFlagRequired("guild")
	return cmd
}

func newFormationsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "formations",
		Short: "Print the available formations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			formations, err := config.LoadFormations(opts.formations)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, f := range formations {
				fmt.Fprintf(out, "%s\t%d slots\t%s\n", f.Name, len(f.Slots), strings.Join(f.Codes(), " "))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.formations, "file", "", "YAML file merged over the built-in formations")
	return cmd
}
