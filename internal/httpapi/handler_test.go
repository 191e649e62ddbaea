package httpapi

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fcmerged/pitchbot/internal/calltracker"
	"github.com/fcmerged/pitchbot/internal/metrics"
	"github.com/fcmerged/pitchbot/internal/roster"
)

type fakeStats struct {
	stats  []calltracker.UserStats
	err    error
	guild  string
	period calltracker.Period
}

func (f *fakeStats) Stats(guildID string, period calltracker.Period) ([]calltracker.UserStats, error) {
	f.guild, f.period = guildID, period
	return f.stats, f.err
}

func (f *fakeStats) ActiveCount() int { return 2 }

type fakeRoster []roster.Entry

func (f fakeRoster) All() []roster.Entry { return f }

func serve(t *testing.T, h *Handler, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var body map[string]any
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func newHandler(stats *fakeStats) *Handler {
	return NewHandler(stats, fakeRoster{{Name: "Alice", Positions: []string{"CB"}}}, metrics.New().Handler(), zerolog.Nop())
}

func TestHealth(t *testing.T) {
	rec, body := serve(t, newHandler(&fakeStats{}), "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "healthy", data["status"])
	assert.EqualValues(t, 2, data["active_sessions"])
}

func TestGuildStats(t *testing.T) {
	stats := &fakeStats{stats: []calltracker.UserStats{
		{UserID: "a", TotalMS: 3000, Total: 3 * time.Second, Sessions: 2},
		{UserID: "b", TotalMS: 1000, Total: time.Second, Sessions: 1},
	}}

	rec, body := serve(t, newHandler(stats), "/api/guilds/g1/stats?period=monthly&limit=1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "g1", stats.guild)
	assert.Equal(t, calltracker.Monthly, stats.period)

	data := body["data"].(map[string]any)
	users := data["users"].([]any)
	require.Len(t, users, 1)
	assert.Equal(t, "a", users[0].(map[string]any)["userId"])
	assert.EqualValues(t, 3000, users[0].(map[string]any)["totalDuration"])
}

func TestGuildStats_BadInput(t *testing.T) {
	rec, body := serve(t, newHandler(&fakeStats{}), "/api/guilds/g1/stats?period=yearly")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"], "unknown period")

	rec, _ = serve(t, newHandler(&fakeStats{}), "/api/guilds/g1/stats?limit=-3")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGuildStats_StoreFailure(t *testing.T) {
	rec, body := serve(t, newHandler(&fakeStats{err: errors.New("disk")}), "/api/guilds/g1/stats")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal error", body["error"])
}

func TestRosterList(t *testing.T) {
	rec, body := serve(t, newHandler(&fakeStats{}), "/api/roster")
	require.Equal(t, http.StatusOK, rec.Code)
	entries := body["data"].([]any)
	require.Len(t, entries, 1)
	assert.Equal(t, "Alice", entries[0].(map[string]any)["name"])
}

func TestMetricsRoute(t *testing.T) {
	rec, _ := serve(t, newHandler(&fakeStats{}), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
}
