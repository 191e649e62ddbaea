package moves

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fcmerged/pitchbot/internal/commands/commandstest"
	"github.com/fcmerged/pitchbot/internal/config"
	"github.com/fcmerged/pitchbot/internal/core/coretest"
)

func voiceGuild() *commandstest.Guild {
	return commandstest.NewGuild().
		AddVoice("lobby", "Lobby").
		AddVoice("pitch", "Pitch").
		AddVoice("dest", "Skhirat").
		AddText("txt", "general").
		Join("u1", "Caller", "lobby", "r-player").
		Join("u2", "Badr", "pitch", "r-player").
		Join("u3", "Chafik", "pitch").
		Join("u4", "Driss", "dest", "r-player")
}

func mentionable(name, id string) coretest.Option {
	return coretest.Option{Name: name, Type: discordgo.ApplicationCommandOptionMentionable, Value: id}
}

func TestMove_Role(t *testing.T) {
	g := voiceGuild()
	cmd := &MoveCommand{Guild: g, Mover: &commandstest.Mover{Guild: g}}

	ctx, resp := coretest.NewContext("g1", []coretest.Option{
		mentionable("target", "r-player"),
		coretest.ChannelOpt("channel", "dest"),
	}, "r-player")
	require.NoError(t, cmd.Run(ctx))

	assert.Equal(t, "✅ Moved 2/2 members to Skhirat.", resp.Last().Content)
	assert.Equal(t, "dest", g.ChannelOf("u1"))
	assert.Equal(t, "dest", g.ChannelOf("u2"))
	assert.Equal(t, "pitch", g.ChannelOf("u3"))
}

func TestMove_Everyone(t *testing.T) {
	g := voiceGuild()
	cmd := &MoveCommand{Guild: g, Mover: &commandstest.Mover{Guild: g, Fail: map[string]bool{"u3": true}}}

	ctx, resp := coretest.NewContext("g1", []coretest.Option{
		mentionable("target", "g1"),
		coretest.ChannelOpt("channel", "dest"),
	}, "g1")
	require.NoError(t, cmd.Run(ctx))
	assert.Equal(t, "✅ Moved 2/3 members to Skhirat.", resp.Last().Content)
}

func TestMove_User(t *testing.T) {
	g := voiceGuild()
	cmd := &MoveCommand{Guild: g, Mover: &commandstest.Mover{Guild: g}}

	ctx, resp := coretest.NewContext("g1", []coretest.Option{
		mentionable("target", "u3"),
		coretest.ChannelOpt("channel", "dest"),
	})
	require.NoError(t, cmd.Run(ctx))
	assert.Equal(t, "✅ Moved Chafik to Skhirat.", resp.Last().Content)
	assert.Equal(t, "dest", g.ChannelOf("u3"))

	ctx, resp = coretest.NewContext("g1", []coretest.Option{
		mentionable("target", "u4"),
		coretest.ChannelOpt("channel", "dest"),
	})
	require.NoError(t, cmd.Run(ctx))
	assert.Equal(t, "❌ Driss is already in Skhirat.", resp.Last().Content)

	ctx, resp = coretest.NewContext("g1", []coretest.Option{
		mentionable("target", "ghost"),
		coretest.ChannelOpt("channel", "dest"),
	})
	require.NoError(t, cmd.Run(ctx))
	assert.Equal(t, "❌ User not found in this guild.", resp.Last().Content)
}

func TestMove_BadDestination(t *testing.T) {
	g := voiceGuild()
	cmd := &MoveCommand{Guild: g, Mover: &commandstest.Mover{Guild: g}}
	ctx, resp := coretest.NewContext("g1", []coretest.Option{
		mentionable("target", "u3"),
		coretest.ChannelOpt("channel", "txt"),
	})
	require.NoError(t, cmd.Run(ctx))
	assert.Contains(t, resp.Last().Content, "Destination voice channel not found")
}

func TestGather(t *testing.T) {
	g := voiceGuild()
	cmd := &GatherCommand{Guild: g, Mover: &commandstest.Mover{Guild: g}, ChannelID: "dest"}

	ctx, resp := coretest.NewContext("g1", nil)
	require.NoError(t, cmd.Run(ctx))
	assert.Equal(t, "✅ Moved 3/3 members to Skhirat!", resp.Last().Content)
	for _, id := range []string{"u1", "u2", "u3", "u4"} {
		assert.Equal(t, "dest", g.ChannelOf(id), id)
	}

	ctx, resp = coretest.NewContext("g1", nil)
	require.NoError(t, cmd.Run(ctx))
	assert.Contains(t, resp.Last().Content, "No members found")
}

func TestGather_NotConfigured(t *testing.T) {
	cmd := &GatherCommand{Guild: voiceGuild()}
	ctx, _ := coretest.NewContext("g1", nil)
	assert.ErrorIs(t, cmd.Run(ctx), config.ErrMissingSetting)
}

func TestPair(t *testing.T) {
	g := voiceGuild()
	mover := &commandstest.Mover{Guild: g}
	cmd := &PairCommand{Guild: g, Mover: mover, ChannelID: "dest"}

	ctx, resp := coretest.NewContext("g1", []coretest.Option{coretest.UserOpt("user", "u2")})
	require.NoError(t, cmd.Run(ctx))
	assert.Equal(t, "✅ Moved you and Badr to Skhirat!", resp.Last().Content)
	assert.Equal(t, "dest", g.ChannelOf("u1"))
	assert.Equal(t, "dest", g.ChannelOf("u2"))
}

func TestPair_CallerNotInVoice(t *testing.T) {
	g := commandstest.NewGuild().AddVoice("dest", "Skhirat").Join("u2", "Badr", "dest")
	cmd := &PairCommand{Guild: g, Mover: &commandstest.Mover{Guild: g}, ChannelID: "dest"}

	ctx, resp := coretest.NewContext("g1", []coretest.Option{coretest.UserOpt("user", "u2")})
	require.NoError(t, cmd.Run(ctx))
	assert.Equal(t, "❌ You must be in a voice channel to use this command.", resp.Last().Content)
}
