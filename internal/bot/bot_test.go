package bot

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fcmerged/pitchbot/internal/calltracker"
	"github.com/fcmerged/pitchbot/internal/commands/commandstest"
	"github.com/fcmerged/pitchbot/internal/config"
	"github.com/fcmerged/pitchbot/internal/core"
	"github.com/fcmerged/pitchbot/internal/core/coretest"
	"github.com/fcmerged/pitchbot/internal/lineup"
	"github.com/fcmerged/pitchbot/internal/music"
	"github.com/fcmerged/pitchbot/internal/roster"
	"github.com/fcmerged/pitchbot/internal/storage"
)

type memStore struct{ doc storage.RosterDocument }

func (m *memStore) Load() storage.RosterDocument { return m.doc }

func (m *memStore) Update(fn func(storage.RosterDocument) (storage.RosterDocument, error)) error {
	doc, err := fn(m.doc)
	if err != nil {
		return err
	}
	m.doc = doc
	return nil
}

type noStats struct{}

func (noStats) Stats(string, calltracker.Period) ([]calltracker.UserStats, error) { return nil, nil }

type noPlayer struct{}

func (noPlayer) Play(context.Context, string, string, string, string) (music.Enqueued, error) {
	return music.Enqueued{}, music.ErrNoResults
}

func (noPlayer) Stop(string) (int, error) { return 0, music.ErrNoQueue }

func testDeps() Deps {
	g := commandstest.NewGuild()
	return Deps{
		Config: &config.Config{
			Team1Name:  "FC MERGED",
			Team2Name:  "Skhirat FC",
			Formations: lineup.Builtin(),
		},
		Guild:     g,
		Mover:     &commandstest.Mover{Guild: g},
		Directory: roster.New(&memStore{doc: storage.RosterDocument{}}, zerolog.Nop()),
		Stats:     noStats{},
		Player:    noPlayer{},
		Clock:     func() time.Time { return time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC) },
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry(testDeps())

	var names []string
	for _, cmd := range reg.All() {
		names = append(names, cmd.Name())
	}
	assert.Equal(t, []string{
		"call-stats", "gather", "help", "move", "pair", "play", "poll",
		"positions", "reset-positions", "roster", "save-positions", "stop", "teams",
	}, names)

	defs := reg.SlashDefinitions()
	require.Len(t, defs, len(names))
	for _, def := range defs {
		assert.NotEmpty(t, def.Description, def.Name)
	}
}

func TestNewRegistry_GuildOnly(t *testing.T) {
	reg := NewRegistry(testDeps())

	ctx, resp := coretest.NewContext("", nil)
	require.NoError(t, reg.Dispatch(ctx, "teams"))
	assert.Equal(t, "❌ This command can only be used in a server.", resp.Last().Content)
}

func TestNewRegistry_MissingSetting(t *testing.T) {
	reg := NewRegistry(testDeps())

	ctx, resp := coretest.NewContext("g1", nil)
	require.NoError(t, reg.Dispatch(ctx, "gather"))
	assert.Contains(t, resp.Last().Content, "GATHER_VOICE_CHANNEL_ID")
}

func TestNewRegistry_Unknown(t *testing.T) {
	reg := NewRegistry(testDeps())
	ctx, _ := coretest.NewContext("g1", nil)
	assert.ErrorIs(t, reg.Dispatch(ctx, "nope"), core.ErrUnknownCommand)
}
