// Package calltracker turns voice presence transitions into closed sessions
// and answers time-windowed statistics over the recorded history.
package calltracker

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fcmerged/pitchbot/internal/storage"
)

const unknownChannel = "Unknown"

// Event is one voice state transition. An empty channel id means the user was
// not (or is no longer) in voice.
type Event struct {
	UserID            string
	GuildID           string
	BeforeChannelID   string
	BeforeChannelName string
	AfterChannelID    string
	AfterChannelName  string
}

// Presence is a user found in voice when a guild becomes available.
type Presence struct {
	UserID      string
	ChannelID   string
	ChannelName string
}

// Session is an open voice session.
type Session struct {
	UserID      string
	GuildID     string
	ChannelID   string
	ChannelName string
	Start       time.Time
}

// History is the persisted log closed sessions are written to.
type History interface {
	Load() ([]storage.HistoryEntry, error)
	Append(entries ...storage.HistoryEntry) error
}

// Recorder observes session lifecycle. internal/metrics implements it.
type Recorder interface {
	SessionOpened(guildID string)
	SessionClosed(guildID string, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) SessionOpened(string)                {}
func (nopRecorder) SessionClosed(string, time.Duration) {}

// Tracker owns the open sessions, at most one per user.
type Tracker struct {
	history  History
	log      zerolog.Logger
	now      func() time.Time
	newID    func() string
	recorder Recorder

	mu     sync.Mutex
	active map[string]Session
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithIDGenerator replaces the history entry id source.
func WithIDGenerator(gen func() string) Option {
	return func(t *Tracker) { t.newID = gen }
}

// WithRecorder attaches a session observer.
func WithRecorder(r Recorder) Option {
	return func(t *Tracker) {
		if r != nil {
			t.recorder = r
		}
	}
}

func New(history History, logger zerolog.Logger, opts ...Option) *Tracker {
	t := &Tracker{
		history:  history,
		log:      logger.With().Str("component", "calltracker").Logger(),
		now:      time.Now,
		newID:    uuid.NewString,
		recorder: nopRecorder{},
		active:   make(map[string]Session),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Handle applies one transition. A leave or switch closes the open session,
// a join or switch opens a new one. A join while a session is already open
// closes the stale session first. Transitions without a channel change are
// ignored. The returned error only reports a failed history write; the
// in-memory state is updated regardless.
func (t *Tracker) Handle(ev Event) error {
	if ev.BeforeChannelID == ev.AfterChannelID {
		return nil
	}

	now := t.now()
	var closed []storage.HistoryEntry

	t.mu.Lock()
	if s, ok := t.active[ev.UserID]; ok {
		name := s.ChannelName
		if ev.BeforeChannelID != "" && ev.BeforeChannelID == s.ChannelID && ev.BeforeChannelName != "" {
			name = ev.BeforeChannelName
		}
		s.ChannelName = name
		closed = append(closed, t.closeLocked(s, now))
	}
	if ev.AfterChannelID != "" {
		t.openLocked(Session{
			UserID:      ev.UserID,
			GuildID:     ev.GuildID,
			ChannelID:   ev.AfterChannelID,
			ChannelName: ev.AfterChannelName,
			Start:       now,
		})
	}
	t.mu.Unlock()

	return t.persist(closed)
}

// Seed opens sessions for users already in voice, starting now. Users with an
// open session are left alone.
func (t *Tracker) Seed(guildID string, present []Presence) int {
	now := t.now()
	opened := 0

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range present {
		if _, ok := t.active[p.UserID]; ok || p.ChannelID == "" {
			continue
		}
		t.openLocked(Session{
			UserID:      p.UserID,
			GuildID:     guildID,
			ChannelID:   p.ChannelID,
			ChannelName: p.ChannelName,
			Start:       now,
		})
		opened++
	}
	if opened > 0 {
		t.log.Info().Str("guild_id", guildID).Int("sessions", opened).Msg("seeded voice sessions")
	}
	return opened
}

// Flush closes every open session into history. Used at shutdown.
func (t *Tracker) Flush() error {
	now := t.now()

	t.mu.Lock()
	closed := make([]storage.HistoryEntry, 0, len(t.active))
	for _, s := range t.active {
		closed = append(closed, t.closeLocked(s, now))
	}
	t.mu.Unlock()

	return t.persist(closed)
}

// Open returns the user's open session.
func (t *Tracker) Open(userID string) (Session, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.active[userID]
	return s, ok
}

// ActiveCount returns the number of open sessions.
func (t *Tracker) ActiveCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.active)
}

func (t *Tracker) openLocked(s Session) {
	t.active[s.UserID] = s
	t.recorder.SessionOpened(s.GuildID)
	t.log.Debug().
		Str("user_id", s.UserID).
		Str("guild_id", s.GuildID).
		Str("channel_id", s.ChannelID).
		Msg("session opened")
}

func (t *Tracker) closeLocked(s Session, now time.Time) storage.HistoryEntry {
	delete(t.active, s.UserID)

	end := now
	if end.Before(s.Start) {
		end = s.Start
	}
	name := s.ChannelName
	if name == "" {
		name = unknownChannel
	}
	entry := storage.HistoryEntry{
		ID:          t.newID(),
		UserID:      s.UserID,
		GuildID:     s.GuildID,
		ChannelID:   s.ChannelID,
		ChannelName: name,
		StartTime:   s.Start.UnixMilli(),
		EndTime:     end.UnixMilli(),
	}
	entry.Duration = entry.EndTime - entry.StartTime

	t.recorder.SessionClosed(s.GuildID, entry.Length())
	t.log.Debug().
		Str("user_id", s.UserID).
		Str("guild_id", s.GuildID).
		Str("channel", name).
		Dur("duration", entry.Length()).
		Msg("session closed")
	return entry
}

func (t *Tracker) persist(entries []storage.HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := t.history.Append(entries...); err != nil {
		t.log.Error().Err(err).Int("entries", len(entries)).Msg("failed to write call history")
		return fmt.Errorf("persist sessions: %w", err)
	}
	return nil
}
