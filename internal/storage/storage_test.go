package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoster_LoadCorruptIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "player-roles.json")
	require.NoError(t, os.WriteFile(path, []byte("[oops"), 0644))

	r, err := NewRoster(path, zerolog.Nop())
	require.NoError(t, err)

	assert.Empty(t, r.Load())
}

func TestRoster_UpdateRoundTrip(t *testing.T) {
	r, err := NewRoster(filepath.Join(t.TempDir(), "player-roles.json"), zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, r.Update(func(doc RosterDocument) (RosterDocument, error) {
		doc["Alice"] = []string{"CB"}
		return doc, nil
	}))

	assert.Equal(t, RosterDocument{"Alice": {"CB"}}, r.Load())
}

func TestRoster_UpdateErrorSkipsWrite(t *testing.T) {
	r, err := NewRoster(filepath.Join(t.TempDir(), "player-roles.json"), zerolog.Nop())
	require.NoError(t, err)

	stop := errors.New("stop")
	err = r.Update(func(doc RosterDocument) (RosterDocument, error) {
		doc["Bob"] = []string{"ST"}
		return nil, stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Empty(t, r.Load())
}

func TestHistory_AppendAndLoad(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, "roles.json", "calls.json", zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, s.History.Append(HistoryEntry{UserID: "u1", Duration: 1000}))
	require.NoError(t, s.History.Append(HistoryEntry{UserID: "u2", Duration: 2000}))
	require.NoError(t, s.History.Append())

	entries, err := s.History.Load()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "u1", entries[0].UserID)
	assert.Equal(t, "u2", entries[1].UserID)
}

func TestHistory_ReadsLegacyFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "call-history.json")
	legacy := `[{"userId":"1","guildId":"g","channelId":"c","channelName":"Lobby","startTime":1000,"endTime":61000,"duration":60000}]`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0644))

	h, err := NewHistory(path, zerolog.Nop())
	require.NoError(t, err)

	entries, err := h.Load()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Lobby", entries[0].ChannelName)
	assert.Equal(t, int64(60000), entries[0].Length().Milliseconds())
	assert.Equal(t, int64(61000), entries[0].End().UnixMilli())
}
