// Package positions is the catalogue of football position codes the club
// polls for, with their reaction emoji and display grouping.
package positions

import (
	"slices"
	"strings"
)

// Category groups positions for poll and reply layout.
type Category string

const (
	CategoryGoalkeeper Category = "Goalkeeper"
	CategoryDefense    Category = "Defense"
	CategoryMidfield   Category = "Midfield"
	CategoryAttack     Category = "Attack"
)

// Position is one pollable position.
type Position struct {
	Code     string
	Emoji    string
	Category Category
}

// Poll lists the pollable positions in the order they are offered.
var Poll = []Position{
	{Code: "GK", Emoji: "🧤", Category: CategoryGoalkeeper},
	{Code: "CB", Emoji: "🛡️", Category: CategoryDefense},
	{Code: "LB", Emoji: "⬅️", Category: CategoryDefense},
	{Code: "RB", Emoji: "➡️", Category: CategoryDefense},
	{Code: "CDM", Emoji: "🔒", Category: CategoryMidfield},
	{Code: "CM", Emoji: "⚙️", Category: CategoryMidfield},
	{Code: "CAM", Emoji: "🎯", Category: CategoryMidfield},
	{Code: "LM", Emoji: "◀️", Category: CategoryMidfield},
	{Code: "RM", Emoji: "▶️", Category: CategoryMidfield},
	{Code: "LW", Emoji: "🌀", Category: CategoryAttack},
	{Code: "RW", Emoji: "💫", Category: CategoryAttack},
	{Code: "ST", Emoji: "⚡", Category: CategoryAttack},
}

// displayOrder is back line first, strikers last.
var displayOrder = []string{
	"GK", "LB", "LWB", "CB", "RB", "RWB",
	"CDM", "LM", "CM", "RM", "CAM",
	"LW", "RW", "CF", "ST", "LS", "RS",
}

// Universe returns every position code known to the club. A flex player is
// eligible for all of them.
func Universe() []string {
	return slices.Clone(displayOrder)
}

// FromEmoji maps a poll reaction to its position code. Reactions arrive with or
// without the U+FE0F variation selector depending on the client.
func FromEmoji(emoji string) (string, bool) {
	bare := stripVariation(emoji)
	for _, p := range Poll {
		if p.Emoji == emoji || stripVariation(p.Emoji) == bare {
			return p.Code, true
		}
	}
	return "", false
}

// Normalize upper-cases and trims a position code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Rank orders codes for display; unknown codes sort last.
func Rank(code string) int {
	if i := slices.Index(displayOrder, Normalize(code)); i >= 0 {
		return i
	}
	return len(displayOrder)
}

// SortCodes sorts position codes in display order, in place.
func SortCodes(codes []string) {
	slices.SortStableFunc(codes, func(a, b string) int {
		return Rank(a) - Rank(b)
	})
}

func stripVariation(s string) string {
	return strings.ReplaceAll(s, "\uFE0F", "")
}
