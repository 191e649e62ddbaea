package calltracker

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Period selects the stats window.
type Period string

const (
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
	AllTime Period = "all_time"
)

var ErrUnknownPeriod = errors.New("unknown period")

// ParsePeriod accepts the period names used by the command and HTTP surfaces.
// An empty string means weekly.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return Weekly, nil
	case Weekly, Monthly, AllTime:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPeriod, s)
	}
}

// Window returns the look-back length; zero means unbounded.
func (p Period) Window() time.Duration {
	switch p {
	case Weekly:
		return 7 * 24 * time.Hour
	case Monthly:
		return 30 * 24 * time.Hour
	default:
		return 0
	}
}

// Label is the human name of the period.
func (p Period) Label() string {
	switch p {
	case Weekly:
		return "Last 7 days"
	case Monthly:
		return "Last 30 days"
	default:
		return "All time"
	}
}

// UserStats aggregates one user's closed sessions.
type UserStats struct {
	UserID   string        `json:"userId"`
	Total    time.Duration `json:"-"`
	TotalMS  int64         `json:"totalDuration"`
	Sessions int           `json:"sessionCount"`
	LastSeen time.Time     `json:"lastSeen"`
}

// Stats aggregates the guild's history entries whose end time falls inside
// the period, sorted by total time descending. Sessions that are still open
// are not counted.
func (t *Tracker) Stats(guildID string, period Period) ([]UserStats, error) {
	entries, err := t.history.Load()
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}

	var cutoff int64
	bounded := period.Window() > 0
	if bounded {
		cutoff = t.now().Add(-period.Window()).UnixMilli()
	}

	byUser := make(map[string]*UserStats)
	for _, e := range entries {
		if e.GuildID != guildID || (bounded && e.EndTime < cutoff) {
			continue
		}
		s, ok := byUser[e.UserID]
		if !ok {
			s = &UserStats{UserID: e.UserID}
			byUser[e.UserID] = s
		}
		s.TotalMS += e.Duration
		s.Sessions++
		if end := e.End(); end.After(s.LastSeen) {
			s.LastSeen = end
		}
	}

	out := make([]UserStats, 0, len(byUser))
	for _, s := range byUser {
		s.Total = time.Duration(s.TotalMS) * time.Millisecond
		out = append(out, *s)
	}
	slices.SortFunc(out, func(a, b UserStats) int {
		if a.TotalMS != b.TotalMS {
			if a.TotalMS > b.TotalMS {
				return -1
			}
			return 1
		}
		return strings.Compare(a.UserID, b.UserID)
	})
	return out, nil
}

// Leaderboard returns at most limit entries from sorted stats.
func Leaderboard(stats []UserStats, limit int) []UserStats {
	if limit <= 0 || len(stats) <= limit {
		return stats
	}
	return stats[:limit]
}

// Find returns the stats for one user.
func Find(stats []UserStats, userID string) (UserStats, bool) {
	for _, s := range stats {
		if s.UserID == userID {
			return s, true
		}
	}
	return UserStats{}, false
}

// FormatDuration renders whole hours and minutes, e.g. "2h 5m" or "45m".
func FormatDuration(d time.Duration) string {
	h := int64(d / time.Hour)
	m := int64((d % time.Hour) / time.Minute)
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
