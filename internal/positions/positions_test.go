package positions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEmoji(t *testing.T) {
	code, ok := FromEmoji("⚡")
	assert.True(t, ok)
	assert.Equal(t, "ST", code)

	// shield without the variation selector
	code, ok = FromEmoji("\U0001F6E1")
	assert.True(t, ok)
	assert.Equal(t, "CB", code)

	_, ok = FromEmoji("🍕")
	assert.False(t, ok)
}

func TestUniverseCoversPollAndFormationCodes(t *testing.T) {
	u := Universe()
	for _, p := range Poll {
		assert.Contains(t, u, p.Code)
	}
	for _, code := range []string{"LS", "RS"} {
		assert.Contains(t, u, code)
	}
}

func TestSortCodes(t *testing.T) {
	codes := []string{"ST", "XX", "cb", "CAM", "LB"}
	SortCodes(codes)
	assert.Equal(t, []string{"LB", "cb", "CAM", "ST", "XX"}, codes)
}
