// Package storage holds the bot's persisted documents: the player roster and
// the voice call history. Both are whole-file JSON documents that are read in
// full on every access and rewritten in full on every change.
package storage

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/fcmerged/pitchbot/internal/datastore"
)

// RosterDocument maps a display name to the position codes the player fills.
type RosterDocument map[string][]string

// HistoryEntry is one closed voice session. Times are unix milliseconds so the
// file stays compatible with earlier versions of the bot.
type HistoryEntry struct {
	ID          string `json:"id,omitempty"`
	UserID      string `json:"userId"`
	GuildID     string `json:"guildId"`
	ChannelID   string `json:"channelId"`
	ChannelName string `json:"channelName"`
	StartTime   int64  `json:"startTime"`
	EndTime     int64  `json:"endTime"`
	Duration    int64  `json:"duration"`
}

// Start returns the session start time.
func (e HistoryEntry) Start() time.Time { return time.UnixMilli(e.StartTime) }

// End returns the session end time.
func (e HistoryEntry) End() time.Time { return time.UnixMilli(e.EndTime) }

// Length returns the session duration.
func (e HistoryEntry) Length() time.Duration { return time.Duration(e.Duration) * time.Millisecond }

// Storage bundles the documents kept under one data directory.
type Storage struct {
	Roster  *Roster
	History *History
}

// New opens the roster and history documents under dataDir.
func New(dataDir, rosterFile, historyFile string, logger zerolog.Logger) (*Storage, error) {
	roster, err := NewRoster(filepath.Join(dataDir, rosterFile), logger)
	if err != nil {
		return nil, fmt.Errorf("roster store: %w", err)
	}
	history, err := NewHistory(filepath.Join(dataDir, historyFile), logger)
	if err != nil {
		return nil, fmt.Errorf("history store: %w", err)
	}
	return &Storage{Roster: roster, History: history}, nil
}

// Roster is the persisted roster document.
type Roster struct {
	file *datastore.File[RosterDocument]
	log  zerolog.Logger
}

// NewRoster opens the roster document at path.
func NewRoster(path string, logger zerolog.Logger) (*Roster, error) {
	cfg := datastore.DefaultConfig(path)
	cfg.Indent = "    "
	file, err := datastore.NewWithConfig[RosterDocument](cfg)
	if err != nil {
		return nil, err
	}
	return &Roster{file: file, log: logger.With().Str("store", "roster").Logger()}, nil
}

// Load returns the full roster. An unreadable document is reported as empty
// so position commands keep working on a damaged file.
func (r *Roster) Load() RosterDocument {
	doc, err := r.file.Load()
	if err != nil {
		r.log.Warn().Err(err).Str("path", r.file.Path()).Msg("could not load roster, using empty roster")
		return RosterDocument{}
	}
	if doc == nil {
		doc = RosterDocument{}
	}
	return doc
}

// Update applies fn to the current roster and writes the result. fn's error
// aborts the write and is returned unchanged.
func (r *Roster) Update(fn func(doc RosterDocument) (RosterDocument, error)) error {
	err := r.file.Update(func(doc RosterDocument, loadErr error) (RosterDocument, error) {
		if loadErr != nil {
			r.log.Warn().Err(loadErr).Msg("roster unreadable, rewriting from empty")
		}
		if doc == nil {
			doc = RosterDocument{}
		}
		return fn(doc)
	})
	if err != nil {
		return fmt.Errorf("update roster: %w", err)
	}
	return nil
}

// History is the persisted call history log.
type History struct {
	file *datastore.File[[]HistoryEntry]
	log  zerolog.Logger
}

// NewHistory opens the history document at path.
func NewHistory(path string, logger zerolog.Logger) (*History, error) {
	file, err := datastore.New[[]HistoryEntry](path)
	if err != nil {
		return nil, err
	}
	return &History{file: file, log: logger.With().Str("store", "history").Logger()}, nil
}

// Load returns every recorded entry.
func (h *History) Load() ([]HistoryEntry, error) {
	entries, err := h.file.Load()
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return entries, nil
}

// Append adds entries to the end of the log.
func (h *History) Append(entries ...HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	err := h.file.Update(func(current []HistoryEntry, loadErr error) ([]HistoryEntry, error) {
		if loadErr != nil {
			h.log.Warn().Err(loadErr).Msg("history unreadable, previous file kept as backup")
		}
		return append(current, entries...), nil
	})
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}
