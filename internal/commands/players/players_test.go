package players

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fcmerged/pitchbot/internal/commands/commandstest"
	"github.com/fcmerged/pitchbot/internal/config"
	"github.com/fcmerged/pitchbot/internal/core/coretest"
	"github.com/fcmerged/pitchbot/internal/positions"
	"github.com/fcmerged/pitchbot/internal/roster"
	"github.com/fcmerged/pitchbot/internal/storage"
)

func newDirectory(t *testing.T) *roster.Directory {
	t.Helper()
	store, err := storage.NewRoster(filepath.Join(t.TempDir(), "player-roles.json"), zerolog.Nop())
	require.NoError(t, err)
	return roster.New(store, zerolog.Nop())
}

func TestRoster_Online(t *testing.T) {
	dir := newDirectory(t)
	_, err := dir.Save("amine", "ST")
	require.NoError(t, err)
	_, err = dir.Save("Amine", "CB")
	require.NoError(t, err)

	g := commandstest.NewGuild().AddVoice("src", "Lobby").
		Join("a", "Amine", "src").
		Join("b", "Badr", "src").
		Join("c", "Chafik", "other")
	cmd := &RosterCommand{Guild: g, Directory: dir, Channels: config.Channels{Source: "src"}}

	ctx, resp := coretest.NewContext("g1", nil)
	require.NoError(t, cmd.Run(ctx))

	require.Len(t, resp.Last().Embeds, 1)
	e := resp.Last().Embeds[0]
	assert.Equal(t, "📋 Current Roster - Lobby", e.Title)
	assert.Equal(t, "**Amine** → CB, ST\n**Badr** → "+flexLabel, e.Description)
	require.Len(t, e.Fields, 1)
	assert.Equal(t, "**2** players online", e.Fields[0].Value)
}

func TestRoster_Saved(t *testing.T) {
	dir := newDirectory(t)
	cmd := &RosterCommand{Directory: dir}

	ctx, resp := coretest.NewContext("g1", []coretest.Option{coretest.StringOpt("show", "saved")})
	require.NoError(t, cmd.Run(ctx))
	assert.Contains(t, resp.Last().Content, "No player positions saved yet")

	_, err := dir.Save("Zak", "GK")
	require.NoError(t, err)
	_, err = dir.Save("adam", "LW")
	require.NoError(t, err)

	ctx, resp = coretest.NewContext("g1", []coretest.Option{coretest.StringOpt("show", "saved")})
	require.NoError(t, cmd.Run(ctx))
	e := resp.Last().Embeds[0]
	assert.Equal(t, "**adam** → LW\n**Zak** → GK", e.Description)
	assert.Equal(t, "2 players saved", e.Footer.Text)
}

func TestRoster_RequiresSource(t *testing.T) {
	cmd := &RosterCommand{Directory: newDirectory(t)}
	ctx, _ := coretest.NewContext("g1", nil)
	assert.ErrorIs(t, cmd.Run(ctx), config.ErrMissingSetting)
}

func TestPoll(t *testing.T) {
	g := commandstest.NewGuild()
	cmd := &PollCommand{Guild: g}

	ctx, resp := coretest.NewContext("g1", nil)
	require.NoError(t, cmd.Run(ctx))

	require.Len(t, resp.Replies, 1)
	e := resp.Replies[0].Embeds[0]
	assert.Equal(t, "🎮 Position Poll", e.Title)
	require.Len(t, e.Fields, 5)
	assert.Equal(t, "🧤 Goalkeeper", e.Fields[0].Name)
	assert.Equal(t, "🧤 = **GK**", e.Fields[0].Value)
	assert.True(t, e.Fields[1].Inline)

	reactions := g.Reactions["msg-1"]
	require.Len(t, reactions, len(positions.Poll))
	assert.Equal(t, "🧤", reactions[0])
	assert.Equal(t, "⚡", reactions[len(reactions)-1])
}

func TestSavePositions(t *testing.T) {
	dir := newDirectory(t)
	g := commandstest.NewGuild()
	g.Votes["poll-1"] = []roster.Vote{
		{Emoji: "⚡", Voters: []string{"Amine", "Badr"}},
		{Emoji: "🛡️", Voters: []string{"Badr"}},
		{Emoji: "🍕", Voters: []string{"Amine"}},
	}
	cmd := &SavePositionsCommand{Guild: g, Directory: dir}

	ctx, resp := coretest.NewContext("g1", []coretest.Option{coretest.StringOpt("message_id", " poll-1 ")})
	require.NoError(t, cmd.Run(ctx))

	e := resp.Last().Embeds[0]
	assert.Equal(t, "✅ Positions Saved!", e.Title)
	require.Len(t, e.Fields, 2)
	assert.Equal(t, "📋 Updated Players (2)", e.Fields[0].Name)
	assert.Equal(t, "• **Amine** → ST\n• **Badr** → CB, ST", e.Fields[0].Value)
	assert.Equal(t, "Unknown emojis: 🍕", e.Fields[1].Value)

	codes, ok := dir.Lookup("badr")
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"ST", "CB"}, codes)
}

func TestSavePositions_Errors(t *testing.T) {
	g := commandstest.NewGuild()
	g.Votes["empty"] = nil
	cmd := &SavePositionsCommand{Guild: g, Directory: newDirectory(t)}

	ctx, resp := coretest.NewContext("g1", []coretest.Option{coretest.StringOpt("message_id", "nope")})
	require.NoError(t, cmd.Run(ctx))
	assert.Contains(t, resp.Last().Content, "Could not find that message")

	ctx, resp = coretest.NewContext("g1", []coretest.Option{coretest.StringOpt("message_id", "empty")})
	require.NoError(t, cmd.Run(ctx))
	assert.Contains(t, resp.Last().Content, "has no reactions")
}

func TestResetPositions(t *testing.T) {
	dir := newDirectory(t)
	cmd := &ResetPositionsCommand{Directory: dir}

	ctx, resp := coretest.NewContext("g1", nil)
	require.NoError(t, cmd.Run(ctx))
	assert.Contains(t, resp.Last().Content, "already empty")

	ctx, resp = coretest.NewContext("g1", []coretest.Option{coretest.StringOpt("player", "ghost")})
	require.NoError(t, cmd.Run(ctx))
	assert.Equal(t, "❌ Player **ghost** not found in the database.", resp.Last().Content)

	_, err := dir.Save("Amine", "ST")
	require.NoError(t, err)
	_, err = dir.Save("Badr", "CB")
	require.NoError(t, err)

	ctx, resp = coretest.NewContext("g1", []coretest.Option{coretest.StringOpt("player", "AMINE")})
	require.NoError(t, cmd.Run(ctx))
	assert.Equal(t, "Cleared all positions for **Amine**", resp.Last().Embeds[0].Description)

	ctx, resp = coretest.NewContext("g1", nil)
	require.NoError(t, cmd.Run(ctx))
	assert.Contains(t, resp.Last().Embeds[0].Description, "**1** players")
	assert.Empty(t, dir.All())
}
