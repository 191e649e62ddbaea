package discord

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"layeh.com/gopus"

	"github.com/fcmerged/pitchbot/internal/music"
)

const (
	sampleRate = 48000
	channels   = 2
	frameSize  = 960 // 20ms at 48kHz
	maxBytes   = frameSize * channels * 2
	readyWait  = 10 * time.Second
)

// Voice joins voice channels for the music player. It implements
// music.Connector.
type Voice struct {
	s   *discordgo.Session
	log zerolog.Logger
}

func NewVoice(s *discordgo.Session, logger zerolog.Logger) *Voice {
	return &Voice{s: s, log: logger.With().Str("component", "voice-conn").Logger()}
}

func (v *Voice) Connect(ctx context.Context, guildID, channelID string) (music.Connection, error) {
	vc, err := v.s.ChannelVoiceJoin(guildID, channelID, false, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", music.ErrConnect, err)
	}

	deadline := time.NewTimer(readyWait)
	defer deadline.Stop()
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for !vc.Ready {
		select {
		case <-ctx.Done():
			_ = vc.Disconnect()
			return nil, ctx.Err()
		case <-deadline.C:
			_ = vc.Disconnect()
			return nil, fmt.Errorf("%w: voice connection not ready", music.ErrConnect)
		case <-tick.C:
		}
	}

	v.log.Info().Str("guild_id", guildID).Str("channel_id", channelID).Msg("joined voice channel")
	return &voiceConn{vc: vc}, nil
}

type voiceConn struct {
	vc *discordgo.VoiceConnection
}

// Play encodes 20ms PCM frames to opus until pcm ends or ctx is done.
func (c *voiceConn) Play(ctx context.Context, pcm io.Reader) error {
	encoder, err := gopus.NewEncoder(sampleRate, channels, gopus.Audio)
	if err != nil {
		return fmt.Errorf("encoder error: %w", err)
	}

	if err := c.vc.Speaking(true); err != nil {
		return fmt.Errorf("speaking: %w", err)
	}
	defer func() { _ = c.vc.Speaking(false) }()

	pcmBuf := make([]byte, maxBytes)
	samples := make([]int16, frameSize*channels)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := io.ReadFull(pcm, pcmBuf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			return fmt.Errorf("read error: %w", err)
		}
		decodePCM(pcmBuf, samples)

		opus, err := encoder.Encode(samples, frameSize, maxBytes)
		if err != nil {
			return fmt.Errorf("encode error: %w", err)
		}
		select {
		case c.vc.OpusSend <- opus:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *voiceConn) Close() error {
	return c.vc.Disconnect()
}

// decodePCM reads little-endian s16 samples from buf into out.
func decodePCM(buf []byte, out []int16) {
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(buf[i*2 : i*2+2]))
	}
}
