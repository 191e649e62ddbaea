package lineup

import (
	"errors"
	"fmt"
	"slices"

	"github.com/fcmerged/pitchbot/internal/positions"
)

// Tier is the role group a slot belongs to.
type Tier string

const (
	TierAttack   Tier = "attack"
	TierMidfield Tier = "midfield"
	TierDefense  Tier = "defense"
)

// TierPriority is the order in which tiers pick players. Attacking slots are
// the most specialised and go first.
var TierPriority = []Tier{TierAttack, TierMidfield, TierDefense}

var ErrInvalidFormation = errors.New("invalid formation")

// Slot is one named position within a formation.
type Slot struct {
	Position string `yaml:"position" json:"position"`
	Tier     Tier   `yaml:"tier" json:"tier"`
}

// Formation is an ordered, immutable list of slots.
type Formation struct {
	Name  string `yaml:"name" json:"name"`
	Slots []Slot `yaml:"slots" json:"slots"`
}

// Codes returns the distinct position codes used by the formation.
func (f Formation) Codes() []string {
	var codes []string
	for _, s := range f.Slots {
		code := positions.Normalize(s.Position)
		if !slices.Contains(codes, code) {
			codes = append(codes, code)
		}
	}
	return codes
}

// Validate checks the formation has a name, at least one slot and only known tiers.
func (f Formation) Validate() error {
	if f.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidFormation)
	}
	if len(f.Slots) == 0 {
		return fmt.Errorf("%w: %s has no slots", ErrInvalidFormation, f.Name)
	}
	for i, s := range f.Slots {
		if positions.Normalize(s.Position) == "" {
			return fmt.Errorf("%w: %s slot %d has no position", ErrInvalidFormation, f.Name, i)
		}
		if !slices.Contains(TierPriority, s.Tier) {
			return fmt.Errorf("%w: %s slot %d has unknown tier %q", ErrInvalidFormation, f.Name, i, s.Tier)
		}
	}
	return nil
}

func slot(tier Tier, position string) Slot {
	return Slot{Position: position, Tier: tier}
}

// Builtin returns the formations the club plays by default. Outfield only.
func Builtin() []Formation {
	return []Formation{
		{
			Name: "4-2-1-3",
			Slots: []Slot{
				slot(TierDefense, "LB"),
				slot(TierDefense, "CB"),
				slot(TierDefense, "CB"),
				slot(TierDefense, "RB"),
				slot(TierMidfield, "CDM"),
				slot(TierMidfield, "CDM"),
				slot(TierAttack, "CAM"),
				slot(TierAttack, "LW"),
				slot(TierAttack, "ST"),
				slot(TierAttack, "RW"),
			},
		},
		{
			Name: "4-1-2-1-2",
			Slots: []Slot{
				slot(TierDefense, "LB"),
				slot(TierDefense, "CB"),
				slot(TierDefense, "CB"),
				slot(TierDefense, "RB"),
				slot(TierMidfield, "CDM"),
				slot(TierMidfield, "RM"),
				slot(TierMidfield, "LM"),
				slot(TierAttack, "CAM"),
				slot(TierAttack, "LS"),
				slot(TierAttack, "RS"),
			},
		},
	}
}
