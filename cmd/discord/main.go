// cmd/discord/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fcmerged/pitchbot/internal/bot"
	"github.com/fcmerged/pitchbot/internal/calltracker"
	"github.com/fcmerged/pitchbot/internal/commands/info"
	"github.com/fcmerged/pitchbot/internal/config"
	"github.com/fcmerged/pitchbot/internal/discord"
	"github.com/fcmerged/pitchbot/internal/httpapi"
	"github.com/fcmerged/pitchbot/internal/logging"
	"github.com/fcmerged/pitchbot/internal/metrics"
	"github.com/fcmerged/pitchbot/internal/music"
	"github.com/fcmerged/pitchbot/internal/music/youtube"
	"github.com/fcmerged/pitchbot/internal/roster"
	"github.com/fcmerged/pitchbot/internal/storage"
	"github.com/fcmerged/pitchbot/internal/voice"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger := logging.Setup(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	logger.Info().Msgf("Starting %s...", info.AppName)

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("bot stopped")
	}
	logger.Info().Msg("Discord bot exited cleanly")
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.New(cfg.DataDir, cfg.RosterFile, cfg.HistoryFile, logger)
	if err != nil {
		return err
	}

	m := metrics.New()
	directory := roster.New(store.Roster, logger)
	tracker := calltracker.New(store.History, logger, calltracker.WithRecorder(m))
	m.TrackActiveSessions(tracker.ActiveCount)

	dg, err := discord.NewSession(cfg.DiscordToken)
	if err != nil {
		return err
	}

	yt := youtube.New(logger)
	player := music.NewManager(yt, yt, discord.NewVoice(dg, logger), cfg.MusicIdleTimeout, logger)
	mover := voice.NewMover(discord.NewPlatform(dg), voice.Options{
		Rate:     cfg.MoveRate,
		Workers:  cfg.MoveWorkers,
		Recorder: m,
	}, logger)

	registry := bot.NewRegistry(bot.Deps{
		Config:    cfg,
		Guild:     discord.NewGuild(dg, logger),
		Mover:     mover,
		Directory: directory,
		Stats:     tracker,
		Player:    player,
		Metrics:   m,
	})

	if cfg.HTTPAddr != "" {
		handler := httpapi.NewHandler(tracker, directory, m.Handler(), logger)
		go httpapi.Run(ctx, cfg.HTTPAddr, handler.Router(), logger) //nolint:errcheck
	}

	runErr := discord.New(dg, registry, tracker, cfg.GuildID, logger).Run(ctx)

	player.Shutdown()
	if err := tracker.Flush(); err != nil {
		logger.Error().Err(err).Msg("failed to flush open voice sessions")
	}
	return runErr
}
