// Package lineup assigns present players to the slots of a formation.
//
// The assignment is greedy and single-pass. Players are shuffled once, tiers
// are filled in TierPriority order, and within a tier each slot takes the
// first eligible player from the shuffled list, preferring players whose
// roster entry names the position over flex players. Slots left open after
// the tier passes are filled from the remaining players regardless of fit.
// Whoever is left over sits on the bench.
package lineup

import (
	"math/rand/v2"
	"slices"

	"github.com/fcmerged/pitchbot/internal/positions"
)

// Player is a member present in the source voice channel.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RoleLookup resolves the positions a player may fill. ok is false for a flex
// player, who may fill any position.
type RoleLookup interface {
	Lookup(name string) (codes []string, ok bool)
}

// Shuffler permutes n elements through swap. rand.Shuffle satisfies it.
type Shuffler func(n int, swap func(i, j int))

// Assignment binds one formation slot to one player.
type Assignment struct {
	Index  int    `json:"index"`
	Slot   Slot   `json:"slot"`
	Player Player `json:"player"`
	// Fallback is set when the player was placed without being eligible.
	Fallback bool `json:"fallback"`
}

// Result is a built lineup.
type Result struct {
	Formation   string       `json:"formation"`
	Assignments []Assignment `json:"assignments"`
	Substitutes []Player     `json:"substitutes"`
}

// ByTier returns the assignments of one tier in display order.
func (r Result) ByTier(t Tier) []Assignment {
	var out []Assignment
	for _, a := range r.Assignments {
		if a.Slot.Tier == t {
			out = append(out, a)
		}
	}
	slices.SortStableFunc(out, func(a, b Assignment) int {
		return positions.Rank(a.Slot.Position) - positions.Rank(b.Slot.Position)
	})
	return out
}

// Engine builds lineups.
type Engine struct {
	roles    RoleLookup
	shuffle  Shuffler
	universe []string
}

// Option configures an Engine.
type Option func(*Engine)

// WithShuffler replaces the default random permutation.
func WithShuffler(s Shuffler) Option {
	return func(e *Engine) { e.shuffle = s }
}

// WithUniverse replaces the position codes a flex player expands to.
func WithUniverse(codes []string) Option {
	return func(e *Engine) { e.universe = codes }
}

// NewEngine returns an Engine resolving eligibility through roles.
func NewEngine(roles RoleLookup, opts ...Option) *Engine {
	e := &Engine{
		roles:    roles,
		shuffle:  rand.Shuffle,
		universe: positions.Universe(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type candidate struct {
	player   Player
	allowed  map[string]struct{}
	flex     bool
	assigned bool
}

func (c *candidate) eligible(code string) bool {
	_, ok := c.allowed[code]
	return ok
}

// Assign builds a lineup for players in formation f. Neither argument is
// modified.
func (e *Engine) Assign(players []Player, f Formation) Result {
	res := Result{Formation: f.Name}

	cands := make([]*candidate, len(players))
	for i, p := range players {
		cands[i] = e.resolve(p, f)
	}

	e.shuffle(len(cands), func(i, j int) {
		cands[i], cands[j] = cands[j], cands[i]
	})

	filled := make([]bool, len(f.Slots))
	for _, tier := range TierPriority {
		for i, s := range f.Slots {
			if s.Tier != tier {
				continue
			}
			c := pick(cands, positions.Normalize(s.Position))
			if c == nil {
				continue
			}
			c.assigned = true
			filled[i] = true
			res.Assignments = append(res.Assignments, Assignment{Index: i, Slot: s, Player: c.player})
		}
	}

	var rest []*candidate
	for _, c := range cands {
		if !c.assigned {
			rest = append(rest, c)
		}
	}
	for i, s := range f.Slots {
		if filled[i] || len(rest) == 0 {
			continue
		}
		c := rest[0]
		rest = rest[1:]
		c.assigned = true
		filled[i] = true
		res.Assignments = append(res.Assignments, Assignment{Index: i, Slot: s, Player: c.player, Fallback: true})
	}

	for _, c := range rest {
		res.Substitutes = append(res.Substitutes, c.player)
	}

	slices.SortFunc(res.Assignments, func(a, b Assignment) int { return a.Index - b.Index })
	return res
}

func (e *Engine) resolve(p Player, f Formation) *candidate {
	c := &candidate{player: p, allowed: make(map[string]struct{})}

	codes, ok := e.roles.Lookup(p.Name)
	if !ok || len(codes) == 0 {
		c.flex = true
		codes = append(slices.Clone(e.universe), f.Codes()...)
	}
	for _, code := range codes {
		c.allowed[positions.Normalize(code)] = struct{}{}
	}
	return c
}

// pick returns the first unassigned specialist for code, falling back to the
// first unassigned flex player.
func pick(cands []*candidate, code string) *candidate {
	var flex *candidate
	for _, c := range cands {
		if c.assigned || !c.eligible(code) {
			continue
		}
		if !c.flex {
			return c
		}
		if flex == nil {
			flex = c
		}
	}
	return flex
}
