// Package music keeps one playback queue per guild and tears it down after a
// period of inactivity.
package music

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	ErrNoQueue   = errors.New("no music is playing")
	ErrNoResults = errors.New("no results found")
	ErrConnect   = errors.New("failed to connect to voice channel")
)

// Track is a resolved song.
type Track struct {
	URL         string
	Title       string
	Duration    time.Duration
	Thumbnail   string
	RequestedBy string
}

// Resolver turns a search query or link into a track.
type Resolver interface {
	Resolve(ctx context.Context, query string) (Track, error)
}

// Streamer opens a track as 48kHz stereo s16le PCM.
type Streamer interface {
	Stream(ctx context.Context, track Track) (io.ReadCloser, error)
}

// Connector joins a voice channel.
type Connector interface {
	Connect(ctx context.Context, guildID, channelID string) (Connection, error)
}

// Connection plays PCM into a joined voice channel.
type Connection interface {
	// Play blocks until pcm is exhausted or ctx is done.
	Play(ctx context.Context, pcm io.Reader) error
	Close() error
}

// Enqueued describes where a Play request landed.
type Enqueued struct {
	Track Track
	// Position is 1-based and counts the track currently playing.
	Position   int
	NowPlaying bool
}

type queue struct {
	guildID   string
	channelID string
	conn      Connection
	tracks    []Track // tracks[0] is playing
	playing   bool
	stopped   bool
	cancel    context.CancelFunc
	idleTimer *time.Timer
}

type Manager struct {
	resolver  Resolver
	streamer  Streamer
	connector Connector
	idle      time.Duration
	log       zerolog.Logger

	mu     sync.Mutex
	queues map[string]*queue
}

func NewManager(resolver Resolver, streamer Streamer, connector Connector, idle time.Duration, logger zerolog.Logger) *Manager {
	if idle <= 0 {
		idle = 30 * time.Second
	}
	return &Manager{
		resolver:  resolver,
		streamer:  streamer,
		connector: connector,
		idle:      idle,
		log:       logger.With().Str("component", "music").Logger(),
		queues:    make(map[string]*queue),
	}
}

// Play resolves query and appends it to the guild's queue, joining channelID
// when the guild has no queue yet.
func (m *Manager) Play(ctx context.Context, guildID, channelID, query, requestedBy string) (Enqueued, error) {
	track, err := m.resolver.Resolve(ctx, query)
	if err != nil {
		m.log.Warn().Err(err).Str("query", query).Msg("resolve failed")
		return Enqueued{}, fmt.Errorf("%w: %s", ErrNoResults, query)
	}
	track.RequestedBy = requestedBy

	m.mu.Lock()
	if q, ok := m.queues[guildID]; ok {
		q.tracks = append(q.tracks, track)
		res := Enqueued{Track: track, Position: len(q.tracks), NowPlaying: !q.playing && q.conn != nil}
		if q.conn != nil {
			m.startLocked(q)
		}
		m.mu.Unlock()
		return res, nil
	}
	q := &queue{guildID: guildID, channelID: channelID, tracks: []Track{track}}
	m.queues[guildID] = q
	m.mu.Unlock()

	conn, err := m.connector.Connect(ctx, guildID, channelID)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		if m.queues[guildID] == q {
			delete(m.queues, guildID)
		}
		m.log.Error().Err(err).Str("guild_id", guildID).Str("channel_id", channelID).Msg("voice connect failed")
		return Enqueued{}, fmt.Errorf("%w: %w", ErrConnect, err)
	}
	if q.stopped {
		_ = conn.Close()
		return Enqueued{}, ErrNoQueue
	}
	q.conn = conn
	m.startLocked(q)
	return Enqueued{Track: track, Position: 1, NowPlaying: true}, nil
}

// Stop clears the guild's queue and leaves voice. It returns how many tracks
// were cleared, including the one playing.
func (m *Manager) Stop(guildID string) (int, error) {
	m.mu.Lock()
	q, ok := m.queues[guildID]
	if !ok {
		m.mu.Unlock()
		return 0, ErrNoQueue
	}
	n := len(q.tracks)
	m.teardownLocked(q)
	m.mu.Unlock()

	m.log.Info().Str("guild_id", guildID).Int("cleared", n).Msg("music stopped")
	return n, nil
}

// Queue returns a copy of the guild's tracks, the playing one first.
func (m *Manager) Queue(guildID string) ([]Track, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.queues[guildID]
	if !ok {
		return nil, false
	}
	return slices.Clone(q.tracks), true
}

// Shutdown stops every queue.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, q := range m.queues {
		m.teardownLocked(q)
	}
}

func (m *Manager) startLocked(q *queue) {
	if q.playing || q.stopped {
		return
	}
	if q.idleTimer != nil {
		q.idleTimer.Stop()
		q.idleTimer = nil
	}
	q.playing = true
	go m.run(q)
}

func (m *Manager) run(q *queue) {
	for {
		m.mu.Lock()
		if q.stopped {
			m.mu.Unlock()
			return
		}
		if len(q.tracks) == 0 {
			q.playing = false
			q.idleTimer = time.AfterFunc(m.idle, func() { m.expire(q) })
			m.mu.Unlock()
			return
		}
		track := q.tracks[0]
		ctx, cancel := context.WithCancel(context.Background())
		q.cancel = cancel
		conn := q.conn
		m.mu.Unlock()

		if err := m.playTrack(ctx, conn, track); err != nil {
			m.log.Warn().Err(err).Str("guild_id", q.guildID).Str("title", track.Title).Msg("skipping track")
		}
		cancel()

		m.mu.Lock()
		if !q.stopped && len(q.tracks) > 0 {
			q.tracks = q.tracks[1:]
		}
		m.mu.Unlock()
	}
}

func (m *Manager) playTrack(ctx context.Context, conn Connection, track Track) error {
	m.log.Info().Str("title", track.Title).Str("url", track.URL).Msg("now playing")

	pcm, err := m.streamer.Stream(ctx, track)
	if err != nil {
		return fmt.Errorf("open stream: %w", err)
	}
	defer pcm.Close()

	if err := conn.Play(ctx, pcm); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("play: %w", err)
	}
	return nil
}

// expire tears the queue down if it is still idle.
func (m *Manager) expire(q *queue) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.queues[q.guildID] != q || q.playing || len(q.tracks) > 0 {
		return
	}
	m.log.Info().Str("guild_id", q.guildID).Dur("idle", m.idle).Msg("leaving voice after inactivity")
	m.teardownLocked(q)
}

func (m *Manager) teardownLocked(q *queue) {
	q.stopped = true
	q.tracks = nil
	if q.cancel != nil {
		q.cancel()
	}
	if q.idleTimer != nil {
		q.idleTimer.Stop()
		q.idleTimer = nil
	}
	if q.conn != nil {
		if err := q.conn.Close(); err != nil {
			m.log.Warn().Err(err).Str("guild_id", q.guildID).Msg("voice disconnect failed")
		}
	}
	if m.queues[q.guildID] == q {
		delete(m.queues, q.guildID)
	}
}
