package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"

	"github.com/fcmerged/pitchbot/internal/music"
)

const (
	SampleRate = 48000
	Channels   = 2
)

// Stream downloads the best audio format and pipes it through ffmpeg into
// 48kHz stereo s16le PCM. Closing the reader stops both.
func (s *Source) Stream(ctx context.Context, track music.Track) (io.ReadCloser, error) {
	video, err := s.client.GetVideoContext(ctx, track.URL)
	if err != nil {
		return nil, fmt.Errorf("get video: %w", err)
	}

	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return nil, errors.New("no audio formats found for video")
	}

	src, _, err := s.client.GetStreamContext(ctx, video, &formats[0])
	if err != nil {
		return nil, fmt.Errorf("get stream: %w", err)
	}

	cmd := exec.CommandContext(ctx, s.ffmpeg,
		"-i", "pipe:0",
		"-f", "s16le",
		"-ar", strconv.Itoa(SampleRate),
		"-ac", strconv.Itoa(Channels),
		"-loglevel", "warning",
		"pipe:1",
	)
	cmd.Stdin = src
	out, err := cmd.StdoutPipe()
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("ffmpeg stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		src.Close()
		return nil, fmt.Errorf("ffmpeg start: %w", err)
	}

	return &pcmStream{ReadCloser: out, src: src, cmd: cmd}, nil
}

type pcmStream struct {
	io.ReadCloser
	src io.Closer
	cmd *exec.Cmd
}

func (p *pcmStream) Close() error {
	p.src.Close()
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	_ = p.cmd.Wait()
	return nil
}
