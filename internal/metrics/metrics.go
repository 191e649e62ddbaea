// Package metrics exposes the bot's Prometheus instruments.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Provider interface {
	CommandHandled(command, outcome string)
	SessionOpened(guildID string)
	SessionClosed(guildID string, d time.Duration)
	MoveAttempted(ok bool)
	LineupBuilt(formation string)
	TrackActiveSessions(fn func() int)
	Handler() http.Handler
}

var (
	_ Provider = (*Metrics)(nil)
	_ Provider = Noop{}
)

type Metrics struct {
	reg *prometheus.Registry

	commands        *prometheus.CounterVec
	sessionsOpened  prometheus.Counter
	sessionsClosed  prometheus.Counter
	sessionDuration prometheus.Histogram
	moves           *prometheus.CounterVec
	lineups         *prometheus.CounterVec
}

// New registers every instrument on a private registry, alongside the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		commands: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pitchbot_commands_total",
			Help: "Slash commands handled, by command and outcome",
		}, []string{"command", "outcome"}),
		sessionsOpened: f.NewCounter(prometheus.CounterOpts{
			Name: "pitchbot_voice_sessions_opened_total",
			Help: "Voice sessions opened",
		}),
		sessionsClosed: f.NewCounter(prometheus.CounterOpts{
			Name: "pitchbot_voice_sessions_closed_total",
			Help: "Voice sessions closed into history",
		}),
		sessionDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "pitchbot_voice_session_duration_seconds",
			Help:    "Length of closed voice sessions",
			Buckets: []float64{60, 300, 900, 1800, 3600, 7200, 14400},
		}),
		moves: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pitchbot_member_moves_total",
			Help: "Voice member moves, by outcome",
		}, []string{"outcome"}),
		lineups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pitchbot_lineups_built_total",
			Help: "Lineups built, by formation",
		}, []string{"formation"}),
	}
}

func (m *Metrics) CommandHandled(command, outcome string) {
	m.commands.WithLabelValues(command, outcome).Inc()
}

func (m *Metrics) SessionOpened(string) {
	m.sessionsOpened.Inc()
}

func (m *Metrics) SessionClosed(_ string, d time.Duration) {
	m.sessionsClosed.Inc()
	m.sessionDuration.Observe(d.Seconds())
}

func (m *Metrics) MoveAttempted(ok bool) {
	outcome := "failed"
	if ok {
		outcome = "moved"
	}
	m.moves.WithLabelValues(outcome).Inc()
}

func (m *Metrics) LineupBuilt(formation string) {
	m.lineups.WithLabelValues(formation).Inc()
}

// TrackActiveSessions exports fn as the open session gauge. Call once.
func (m *Metrics) TrackActiveSessions(fn func() int) {
	promauto.With(m.reg).NewGaugeFunc(prometheus.GaugeOpts{
		Name: "pitchbot_voice_sessions_active",
		Help: "Voice sessions currently open",
	}, func() float64 { return float64(fn()) })
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// Noop discards everything. Used when the HTTP surface is disabled.
type Noop struct{}

func (Noop) CommandHandled(string, string)       {}
func (Noop) SessionOpened(string)                {}
func (Noop) SessionClosed(string, time.Duration) {}
func (Noop) MoveAttempted(bool)                  {}
func (Noop) LineupBuilt(string)                  {}
func (Noop) TrackActiveSessions(func() int)      {}
func (Noop) Handler() http.Handler               { return http.NotFoundHandler() }
