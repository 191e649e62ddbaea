// Package roster is the name to positions directory used by the lineup
// engine and the roster commands.
package roster

import (
	"errors"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/fcmerged/pitchbot/internal/positions"
	"github.com/fcmerged/pitchbot/internal/storage"
)

var (
	ErrPlayerNotFound = errors.New("player not found in roster")
	ErrRosterEmpty    = errors.New("roster is empty")
)

// Store is the persisted roster document.
type Store interface {
	Load() storage.RosterDocument
	Update(fn func(doc storage.RosterDocument) (storage.RosterDocument, error)) error
}

// Entry is one player's saved positions.
type Entry struct {
	Name      string   `json:"name"`
	Positions []string `json:"positions"`
}

// Directory reads the store fresh on every call.
type Directory struct {
	store Store
	log   zerolog.Logger
}

func New(store Store, logger zerolog.Logger) *Directory {
	return &Directory{store: store, log: logger.With().Str("component", "roster").Logger()}
}

// Lookup returns the positions saved for name. ok is false when the player
// has no entry or an empty one, meaning the player is flex.
func (d *Directory) Lookup(name string) ([]string, bool) {
	doc := d.store.Load()
	key, found := findKey(doc, name)
	if !found || len(doc[key]) == 0 {
		return nil, false
	}
	return slices.Clone(doc[key]), true
}

// Save adds code to name's positions. added is false when the player already
// had it.
func (d *Directory) Save(name, code string) (added bool, err error) {
	code = positions.Normalize(code)
	err = d.store.Update(func(doc storage.RosterDocument) (storage.RosterDocument, error) {
		added = addCode(doc, name, code)
		return doc, nil
	})
	if err != nil {
		d.log.Error().Err(err).Str("player", name).Str("position", code).Msg("failed to save position")
		return false, err
	}
	return added, nil
}

// Reset removes the first entry matching name and returns the stored key.
func (d *Directory) Reset(name string) (string, error) {
	var removed string
	err := d.store.Update(func(doc storage.RosterDocument) (storage.RosterDocument, error) {
		if len(doc) == 0 {
			return nil, ErrRosterEmpty
		}
		key, ok := findKey(doc, name)
		if !ok {
			return nil, ErrPlayerNotFound
		}
		delete(doc, key)
		removed = key
		return doc, nil
	})
	if err != nil {
		return "", err
	}
	return removed, nil
}

// ResetAll clears the directory and returns how many entries it held.
func (d *Directory) ResetAll() (int, error) {
	var n int
	err := d.store.Update(func(doc storage.RosterDocument) (storage.RosterDocument, error) {
		if len(doc) == 0 {
			return nil, ErrRosterEmpty
		}
		n = len(doc)
		return storage.RosterDocument{}, nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// All returns every entry sorted by name, positions in display order.
func (d *Directory) All() []Entry {
	doc := d.store.Load()
	out := make([]Entry, 0, len(doc))
	for name, codes := range doc {
		codes = slices.Clone(codes)
		positions.SortCodes(codes)
		out = append(out, Entry{Name: name, Positions: codes})
	}
	slices.SortFunc(out, func(a, b Entry) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return out
}

// Vote is one poll reaction and the display names of the members who chose it.
type Vote struct {
	Emoji  string
	Voters []string
}

// ImportResult reports what a poll import changed.
type ImportResult struct {
	Updated []string
	Skipped []string
}

// Import saves every recognised vote in a single write. Unknown emoji are
// reported in Skipped. Updated lists each voter once, in first-seen order,
// whether or not their entry actually changed.
func (d *Directory) Import(votes []Vote) (ImportResult, error) {
	var res ImportResult
	seen := make(map[string]bool)

	err := d.store.Update(func(doc storage.RosterDocument) (storage.RosterDocument, error) {
		for _, v := range votes {
			code, ok := positions.FromEmoji(v.Emoji)
			if !ok {
				res.Skipped = append(res.Skipped, v.Emoji)
				continue
			}
			for _, voter := range v.Voters {
				addCode(doc, voter, code)
				if !seen[voter] {
					seen[voter] = true
					res.Updated = append(res.Updated, voter)
				}
			}
		}
		return doc, nil
	})
	if err != nil {
		d.log.Error().Err(err).Int("votes", len(votes)).Msg("failed to import poll")
		return ImportResult{}, err
	}
	return res, nil
}

func addCode(doc storage.RosterDocument, name, code string) bool {
	key, ok := findKey(doc, name)
	if !ok {
		key = name
	}
	for _, c := range doc[key] {
		if strings.EqualFold(c, code) {
			return false
		}
	}
	doc[key] = append(doc[key], code)
	return true
}

// findKey prefers an exact key, then the first case-insensitive one in
// sorted key order so the choice is stable across map iterations.
func findKey(doc storage.RosterDocument, name string) (string, bool) {
	if _, ok := doc[name]; ok {
		return name, true
	}
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if strings.EqualFold(k, name) {
			return k, true
		}
	}
	return "", false
}
