package voice

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusErr int

func (s statusErr) Error() string   { return http.StatusText(int(s)) }
func (s statusErr) StatusCode() int { return int(s) }

type fakePlatform struct {
	mu    sync.Mutex
	moved map[string]string
	calls map[string]int
	fail  map[string]error
	// flaky users fail once with a 502 before succeeding.
	flaky map[string]bool
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		moved: map[string]string{},
		calls: map[string]int{},
		fail:  map[string]error{},
		flaky: map[string]bool{},
	}
}

func (f *fakePlatform) MoveMember(_ context.Context, _, userID, channelID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[userID]++
	if err := f.fail[userID]; err != nil {
		return err
	}
	if f.flaky[userID] && f.calls[userID] == 1 {
		return statusErr(http.StatusBadGateway)
	}
	f.moved[userID] = channelID
	return nil
}

type countingRecorder struct {
	mu       sync.Mutex
	ok, fail int
}

func (c *countingRecorder) MoveAttempted(ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ok {
		c.ok++
	} else {
		c.fail++
	}
}

func TestMoveAll_ToleratesFailures(t *testing.T) {
	p := newFakePlatform()
	p.fail["u2"] = errors.New("missing permissions")
	p.flaky["u3"] = true
	rec := &countingRecorder{}

	m := NewMover(p, Options{Rate: 50, Workers: 3, Recorder: rec}, zerolog.Nop())
	m.retry.InitialDelay = 0

	res := m.MoveAll(context.Background(), "g1", []string{"u1", "u2", "u3", "u4"}, "dest")

	assert.Equal(t, 4, res.Attempted)
	assert.Equal(t, 3, res.Moved)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "u2", res.Failures[0].UserID)

	assert.Equal(t, "dest", p.moved["u3"])
	assert.Equal(t, 2, p.calls["u3"])
	assert.Equal(t, 1, p.calls["u2"])
	assert.Equal(t, 3, rec.ok)
	assert.Equal(t, 1, rec.fail)
}

func TestMoveAll_Empty(t *testing.T) {
	m := NewMover(newFakePlatform(), Options{}, zerolog.Nop())
	res := m.MoveAll(context.Background(), "g1", nil, "dest")
	assert.Equal(t, Result{}, res)
}

func TestSelect(t *testing.T) {
	members := []Member{
		{UserID: "a", ChannelID: "c1", Roles: []string{"r1"}},
		{UserID: "b", ChannelID: "dest"},
		{UserID: "c", ChannelID: "c2", Roles: []string{"r1", "r2"}},
		{UserID: "bot", ChannelID: "c1", Bot: true},
		{UserID: "d"},
	}

	assert.Equal(t, []string{"a", "c"}, Select(members, "dest"))
	assert.Equal(t, []string{"c"}, Select(members, "dest", HasRole("r2")))
	assert.Equal(t, []string{"a"}, Select(members, "dest", InChannel("c1")))
	assert.Empty(t, Select(members, "dest", IsUser("b")))
	assert.Equal(t, []string{"c"}, Select(members, "dest", HasRole("r1"), InChannel("c2")))
}
