package jukebox

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fcmerged/pitchbot/internal/commands/commandstest"
	"github.com/fcmerged/pitchbot/internal/core/coretest"
	"github.com/fcmerged/pitchbot/internal/music"
)

type fakePlayer struct {
	queued  int
	err     error
	channel string
}

func (p *fakePlayer) Play(_ context.Context, _, channelID, query, by string) (music.Enqueued, error) {
	if p.err != nil {
		return music.Enqueued{}, p.err
	}
	p.channel = channelID
	p.queued++
	return music.Enqueued{
		Track:      music.Track{Title: query, URL: "https://youtu.be/x", Duration: 3*time.Minute + 7*time.Second, RequestedBy: by},
		Position:   p.queued,
		NowPlaying: p.queued == 1,
	}, nil
}

func (p *fakePlayer) Stop(string) (int, error) {
	if p.queued == 0 {
		return 0, music.ErrNoQueue
	}
	n := p.queued
	p.queued = 0
	return n, nil
}

func TestPlay(t *testing.T) {
	g := commandstest.NewGuild().AddVoice("vc", "Lobby").Join("u1", "Caller", "vc")
	player := &fakePlayer{}
	cmd := &PlayCommand{Guild: g, Player: player}

	ctx, resp := coretest.NewContext("g1", []coretest.Option{coretest.StringOpt("song", "daft punk")})
	require.NoError(t, cmd.Run(ctx))
	assert.Equal(t, "vc", player.channel)

	e := resp.Last().Embeds[0]
	assert.Equal(t, "🎵 Now Playing", e.Title)
	assert.Equal(t, "**[daft punk](https://youtu.be/x)**", e.Description)
	assert.Equal(t, "3:07", e.Fields[0].Value)
	assert.Equal(t, "Caller", e.Fields[1].Value)

	ctx, resp = coretest.NewContext("g1", []coretest.Option{coretest.StringOpt("song", "around the world")})
	require.NoError(t, cmd.Run(ctx))
	e = resp.Last().Embeds[0]
	assert.Equal(t, "🎵 Added to Queue", e.Title)
	assert.Equal(t, "#2", e.Fields[0].Value)
}

func TestPlay_Errors(t *testing.T) {
	g := commandstest.NewGuild().AddVoice("vc", "Lobby")
	cmd := &PlayCommand{Guild: g, Player: &fakePlayer{}}

	ctx, resp := coretest.NewContext("g1", []coretest.Option{coretest.StringOpt("song", "x")})
	require.NoError(t, cmd.Run(ctx))
	assert.Contains(t, resp.Last().Content, "need to be in a voice channel")

	g.Join("u1", "Caller", "vc")
	cmd.Player = &fakePlayer{err: fmt.Errorf("%w: x", music.ErrNoResults)}
	ctx, resp = coretest.NewContext("g1", []coretest.Option{coretest.StringOpt("song", "x")})
	require.NoError(t, cmd.Run(ctx))
	assert.Equal(t, "❌ No results found for: **x**", resp.Last().Content)

	cmd.Player = &fakePlayer{err: fmt.Errorf("%w: denied", music.ErrConnect)}
	ctx, resp = coretest.NewContext("g1", []coretest.Option{coretest.StringOpt("song", "x")})
	require.NoError(t, cmd.Run(ctx))
	assert.Contains(t, resp.Last().Content, "Failed to connect")
}

func TestStop(t *testing.T) {
	player := &fakePlayer{queued: 3}
	cmd := &StopCommand{Player: player}

	ctx, resp := coretest.NewContext("g1", nil)
	require.NoError(t, cmd.Run(ctx))
	assert.Equal(t, "3", resp.Last().Embeds[0].Fields[0].Value)

	ctx, resp = coretest.NewContext("g1", nil)
	require.NoError(t, cmd.Run(ctx))
	assert.Equal(t, "❌ There is no music playing!", resp.Last().Content)
}

func TestTrackLength(t *testing.T) {
	assert.Equal(t, "Unknown", trackLength(0))
	assert.Equal(t, "0:59", trackLength(59*time.Second))
	assert.Equal(t, "1:02:03", trackLength(time.Hour+2*time.Minute+3*time.Second))
}
