// Package jukebox holds the /play and /stop commands.
package jukebox

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/fcmerged/pitchbot/internal/commands"
	"github.com/fcmerged/pitchbot/internal/core"
	"github.com/fcmerged/pitchbot/internal/music"
)

const (
	queuedColor  = 0x0099ff
	stoppedColor = 0xff6b6b
)

// Player is the per-guild music queue.
type Player interface {
	Play(ctx context.Context, guildID, channelID, query, requestedBy string) (music.Enqueued, error)
	Stop(guildID string) (int, error)
}

type PlayCommand struct {
	Guild  commands.Guild
	Player Player
	Clock  commands.Clock
}

func (c *PlayCommand) Name() string        { return "play" }
func (c *PlayCommand) Description() string { return "Play a song from YouTube" }
func (c *PlayCommand) Category() string    { return "🎵 Music" }

func (c *PlayCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "song",
				Description: "Name of the song to play, or a YouTube link",
				Required:    true,
			},
		},
	}
}

func (c *PlayCommand) Run(ctx *core.Context) error {
	if err := ctx.Reply.Defer(false); err != nil {
		return fmt.Errorf("defer: %w", err)
	}

	caller, err := c.Guild.Member(ctx.GuildID, ctx.Invoker.ID)
	if err != nil && !errors.Is(err, commands.ErrNotFound) {
		return fmt.Errorf("fetch caller: %w", err)
	}
	if caller.ChannelID == "" {
		return ctx.Fail("You need to be in a voice channel to play music!")
	}

	query := ctx.Options.String("song")
	res, err := c.Player.Play(ctx.Ctx, ctx.GuildID, caller.ChannelID, query, ctx.Invoker.DisplayName)
	switch {
	case errors.Is(err, music.ErrNoResults):
		return ctx.Fail(fmt.Sprintf("No results found for: **%s**", query))
	case errors.Is(err, music.ErrConnect):
		return ctx.Fail("Failed to connect to voice channel!")
	case err != nil:
		return fmt.Errorf("play: %w", err)
	}

	return ctx.RespondEmbed("", TrackEmbed(res, c.Clock))
}

// TrackEmbed announces a track that started playing or joined the queue.
func TrackEmbed(res music.Enqueued, clock commands.Clock) *discordgo.MessageEmbed {
	t := res.Track
	duration := trackLength(t.Duration)

	e := core.NewEmbed("🎵 Now Playing", clock.Now())
	if res.NowPlaying {
		e.AddField("Duration", duration).
			AddField("Requested by", core.FieldValue(t.RequestedBy, "Unknown"))
	} else {
		e.SetTitle("🎵 Added to Queue").
			SetColor(queuedColor).
			AddField("Position", "#"+strconv.Itoa(res.Position)).
			AddField("Duration", duration)
	}
	e.SetDescription(fmt.Sprintf("**[%s](%s)**", t.Title, t.URL)).InlineAllFields()
	if t.Thumbnail != "" {
		e.SetThumbnail(t.Thumbnail)
	}
	return e.MessageEmbed
}

// trackLength renders m:ss, or h:mm:ss for long tracks.
func trackLength(d time.Duration) string {
	if d <= 0 {
		return "Unknown"
	}
	secs := int(d.Round(time.Second) / time.Second)
	h, m, sec := secs/3600, secs%3600/60, secs%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}

type StopCommand struct {
	Player Player
	Clock  commands.Clock
}

func (c *StopCommand) Name() string        { return "stop" }
func (c *StopCommand) Description() string { return "Stop playing music and disconnect" }
func (c *StopCommand) Category() string    { return "🎵 Music" }

func (c *StopCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *StopCommand) Run(ctx *core.Context) error {
	n, err := c.Player.Stop(ctx.GuildID)
	if errors.Is(err, music.ErrNoQueue) {
		return ctx.Fail("There is no music playing!")
	}
	if err != nil {
		return fmt.Errorf("stop: %w", err)
	}

	e := core.NewEmbed("⏹️ Music Stopped", c.Clock.Now()).
		SetColor(stoppedColor).
		SetDescription("Disconnected from the voice channel.").
		AddField("Songs cleared", strconv.Itoa(n)).
		InlineAllFields()
	return ctx.RespondEmbed("", e.MessageEmbed)
}
