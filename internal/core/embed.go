package core

import (
	"time"

	embed "github.com/clinet/discordgo-embed"
)

const (
	EmbedColor   = 0x00ae86
	PollColor    = 0x5865f2
	MusicColor   = 0xff0000
	MaxFieldSize = 1024
)

// NewEmbed starts a club embed stamped with now.
func NewEmbed(title string, now time.Time) *embed.Embed {
	e := embed.NewEmbed().SetTitle(title).SetColor(EmbedColor)
	e.Timestamp = now.Format(time.RFC3339)
	return e
}

// FieldValue clips s to Discord's field limit and substitutes empty for an
// empty string, which Discord rejects.
func FieldValue(s, empty string) string {
	if s == "" {
		return empty
	}
	if r := []rune(s); len(r) > MaxFieldSize {
		return string(r[:MaxFieldSize-1]) + "…"
	}
	return s
}
