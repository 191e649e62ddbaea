// Package voice moves members between voice channels in bulk.
package voice

import (
	"context"
	"slices"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/fcmerged/pitchbot/pkg/retrylimit"
	"github.com/fcmerged/pitchbot/pkg/util"
)

// Member is someone currently connected to a voice channel.
type Member struct {
	UserID      string
	DisplayName string
	ChannelID   string
	Roles       []string
	Bot         bool
}

// Platform performs a single move.
type Platform interface {
	MoveMember(ctx context.Context, guildID, userID, channelID string) error
}

// Recorder observes individual move outcomes.
type Recorder interface {
	MoveAttempted(ok bool)
}

// Failure is one member that could not be moved.
type Failure struct {
	UserID string
	Err    error
}

// Result summarises a batch. Partial failure is still a completed batch.
type Result struct {
	Attempted int
	Moved     int
	Failures  []Failure
}

type Mover struct {
	platform Platform
	limiter  *retrylimit.AdaptiveLimiter
	retry    retrylimit.Config
	workers  int
	recorder Recorder
	log      zerolog.Logger
}

type Options struct {
	// Rate is the starting number of moves per second.
	Rate     int
	Workers  int
	Recorder Recorder
}

func NewMover(platform Platform, opts Options, logger zerolog.Logger) *Mover {
	if opts.Rate <= 0 {
		opts.Rate = 5
	}
	if opts.Workers <= 0 {
		opts.Workers = 5
	}
	log := logger.With().Str("component", "voice").Logger()
	retry := retrylimit.DefaultConfig()
	retry.Logger = log

	return &Mover{
		platform: platform,
		limiter:  retrylimit.NewAdaptiveLimiter(rate.Limit(opts.Rate), 1, rate.Limit(opts.Rate*2)),
		retry:    retry,
		workers:  opts.Workers,
		recorder: opts.Recorder,
		log:      log,
	}
}

// MoveAll moves every user to channelID concurrently and waits for all of
// them. One failure neither aborts nor rolls back the others.
func (m *Mover) MoveAll(ctx context.Context, guildID string, userIDs []string, channelID string) Result {
	errs := util.ForEach(ctx, userIDs, m.workers, func(ctx context.Context, userID string) error {
		return retrylimit.Do(ctx, m.limiter, m.retry, func() error {
			return m.platform.MoveMember(ctx, guildID, userID, channelID)
		})
	})

	res := Result{Attempted: len(userIDs)}
	for i, err := range errs {
		if m.recorder != nil {
			m.recorder.MoveAttempted(err == nil)
		}
		if err != nil {
			res.Failures = append(res.Failures, Failure{UserID: userIDs[i], Err: err})
			m.log.Warn().Err(err).Str("user_id", userIDs[i]).Str("channel_id", channelID).Msg("move failed")
			continue
		}
		res.Moved++
	}

	m.log.Info().
		Str("guild_id", guildID).
		Str("channel_id", channelID).
		Int("moved", res.Moved).
		Int("attempted", res.Attempted).
		Msg("bulk move finished")
	return res
}

// Select returns the ids of members that are not already in dest and that
// every predicate accepts. Bots are always skipped.
func Select(members []Member, dest string, keep ...func(Member) bool) []string {
	var ids []string
	for _, mem := range members {
		if mem.Bot || mem.ChannelID == "" || mem.ChannelID == dest {
			continue
		}
		if !slices.ContainsFunc(keep, func(k func(Member) bool) bool { return !k(mem) }) {
			ids = append(ids, mem.UserID)
		}
	}
	return ids
}

// HasRole keeps members holding roleID.
func HasRole(roleID string) func(Member) bool {
	return func(m Member) bool { return slices.Contains(m.Roles, roleID) }
}

// IsUser keeps one member.
func IsUser(userID string) func(Member) bool {
	return func(m Member) bool { return m.UserID == userID }
}

// InChannel keeps members in channelID.
func InChannel(channelID string) func(Member) bool {
	return func(m Member) bool { return m.ChannelID == channelID }
}
