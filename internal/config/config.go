package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/gookit/validate"
	"github.com/joho/godotenv"

	"github.com/fcmerged/pitchbot/internal/lineup"
)

var (
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrMissingSetting = errors.New("missing setting")
)

// Channels holds the voice and text channels the club commands act on. Each
// is optional at load time and checked by the command that needs it.
type Channels struct {
	Source string `env:"SOURCE_VOICE_CHANNEL_ID"`
	Team1  string `env:"TEAM1_VOICE_CHANNEL_ID"`
	Team2  string `env:"TEAM2_VOICE_CHANNEL_ID"`
	Text   string `env:"TEAMS_TEXT_CHANNEL_ID"`
	Gather string `env:"GATHER_VOICE_CHANNEL_ID"`
	Pair   string `env:"PAIR_VOICE_CHANNEL_ID"`
}

type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN" validate:"required"`
	GuildID      string `env:"DISCORD_GUILD_ID"`

	Channels Channels

	DataDir        string `env:"DATA_DIR" envDefault:"data" validate:"required"`
	RosterFile     string `env:"ROSTER_FILE" envDefault:"player-roles.json" validate:"required"`
	HistoryFile    string `env:"HISTORY_FILE" envDefault:"call-history.json" validate:"required"`
	FormationsFile string `env:"FORMATIONS_FILE"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"in:debug,info,warn,error"`
	LogFile  string `env:"LOG_FILE"`
	HTTPAddr string `env:"HTTP_ADDR"`

	MusicIdleTimeout time.Duration `env:"MUSIC_IDLE_TIMEOUT" envDefault:"30s"`
	MoveRate         int           `env:"MOVE_RATE" envDefault:"5" validate:"required|min:1"`
	MoveWorkers      int           `env:"MOVE_WORKERS" envDefault:"5" validate:"required|min:1"`

	Team1Name string `env:"TEAM1_NAME" envDefault:"FC MERGED"`
	Team2Name string `env:"TEAM2_NAME" envDefault:"Skhirat FC"`

	// Formations are the built-ins merged with FormationsFile.
	Formations []lineup.Formation
}

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return Parse(env.Options{})
}

// Parse builds a Config from opts. Tests pass opts.Environment instead of
// touching the process environment.
func Parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	v := validate.Struct(&cfg)
	if !v.Validate() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, v.Errors.One())
	}
	if cfg.MusicIdleTimeout <= 0 {
		return nil, fmt.Errorf("%w: MUSIC_IDLE_TIMEOUT must be positive", ErrInvalidConfig)
	}

	formations, err := LoadFormations(cfg.FormationsFile)
	if err != nil {
		return nil, err
	}
	cfg.Formations = formations
	return &cfg, nil
}

// Require reports a missing setting by its environment key.
func Require(key, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s is not configured", ErrMissingSetting, key)
	}
	return nil
}

// Formation returns the formation called name, or the first one when name is
// empty.
func (c *Config) Formation(name string) (lineup.Formation, bool) {
	return FindFormation(c.Formations, name)
}
