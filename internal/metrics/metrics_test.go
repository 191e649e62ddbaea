package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.CommandHandled("teams", "ok")
	m.CommandHandled("teams", "ok")
	m.CommandHandled("move", "error")
	m.MoveAttempted(true)
	m.MoveAttempted(false)
	m.MoveAttempted(true)
	m.LineupBuilt("4-2-1-3")
	m.SessionOpened("g1")
	m.SessionClosed("g1", 10*time.Minute)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.commands.WithLabelValues("teams", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.commands.WithLabelValues("move", "error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.moves.WithLabelValues("moved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.moves.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.lineups.WithLabelValues("4-2-1-3")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionsOpened))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionsClosed))
}

func TestMetrics_ActiveSessionsGauge(t *testing.T) {
	m := New()
	active := 3
	m.TrackActiveSessions(func() int { return active })

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pitchbot_voice_sessions_active 3")
}

func TestNoop(t *testing.T) {
	var p Provider = Noop{}
	p.CommandHandled("x", "ok")
	p.SessionClosed("g", time.Second)
	p.TrackActiveSessions(func() int { return 1 })

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
