// Package youtube resolves search queries to YouTube videos and streams their
// audio through ffmpeg.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	kkdai "github.com/kkdai/youtube/v2"
	"github.com/rs/zerolog"

	"github.com/fcmerged/pitchbot/internal/music"
)

var (
	ErrNoVideoMatch   = errors.New("no video found for the given query")
	ErrUnsupportedURL = errors.New("only YouTube links are supported")

	videoPattern = regexp.MustCompile(`"url":"/watch\?v=([a-zA-Z0-9_-]{11})`)
)

// Source implements music.Resolver and music.Streamer.
type Source struct {
	BaseURL string
	HTTP    *http.Client
	client  *kkdai.Client
	ffmpeg  string
	log     zerolog.Logger
}

func New(logger zerolog.Logger) *Source {
	httpClient := &http.Client{Timeout: 15 * time.Second}
	return &Source{
		BaseURL: "https://www.youtube.com",
		HTTP:    httpClient,
		client:  &kkdai.Client{HTTPClient: httpClient},
		ffmpeg:  "ffmpeg",
		log:     logger.With().Str("component", "youtube").Logger(),
	}
}

// Resolve accepts a video link or a free-text query. Metadata lookup is best
// effort; a track whose details cannot be fetched keeps the query as title.
func (s *Source) Resolve(ctx context.Context, query string) (music.Track, error) {
	query = strings.TrimSpace(query)

	var link string
	switch {
	case isVideoURL(query):
		link = CleanVideoURL(query)
	case isURL(query):
		return music.Track{}, ErrUnsupportedURL
	default:
		found, err := s.Search(ctx, query)
		if err != nil {
			return music.Track{}, err
		}
		link = found
	}

	track := music.Track{URL: link, Title: query}
	video, err := s.client.GetVideoContext(ctx, link)
	if err != nil {
		s.log.Debug().Err(err).Str("url", link).Msg("video metadata unavailable")
		return track, nil
	}
	track.Title = video.Title
	track.Duration = video.Duration
	if n := len(video.Thumbnails); n > 0 {
		track.Thumbnail = video.Thumbnails[n-1].URL
	}
	return track, nil
}

// Search scrapes the results page and returns the first video link.
func (s *Source) Search(ctx context.Context, query string) (string, error) {
	searchURL := fmt.Sprintf("%s/results?search_query=%s", s.BaseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := s.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("youtube search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("youtube search failed with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	m := videoPattern.FindStringSubmatch(string(body))
	if len(m) < 2 {
		return "", ErrNoVideoMatch
	}
	return "https://www.youtube.com/watch?v=" + m[1], nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func isVideoURL(s string) bool {
	return strings.Contains(s, "youtube.com/watch?v=") || strings.Contains(s, "youtu.be/")
}

// CleanVideoURL drops playlist, timestamp and tracking parameters.
func CleanVideoURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	switch host := u.Hostname(); host {
	case "youtu.be":
		if id := strings.Trim(u.Path, "/"); id != "" {
			return "https://youtu.be/" + id
		}
	case "www.youtube.com", "youtube.com", "music.youtube.com":
		if id := u.Query().Get("v"); u.Path == "/watch" && id != "" {
			return fmt.Sprintf("https://%s/watch?v=%s", host, id)
		}
	}
	return raw
}
