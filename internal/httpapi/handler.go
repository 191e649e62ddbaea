// Package httpapi serves health, metrics and read-only club data over HTTP.
package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/fcmerged/pitchbot/internal/calltracker"
	"github.com/fcmerged/pitchbot/internal/roster"
)

// StatsSource answers call statistics queries.
type StatsSource interface {
	Stats(guildID string, period calltracker.Period) ([]calltracker.UserStats, error)
	ActiveCount() int
}

// RosterSource lists saved positions.
type RosterSource interface {
	All() []roster.Entry
}

type Handler struct {
	stats   StatsSource
	roster  RosterSource
	metrics http.Handler
	log     zerolog.Logger
}

func NewHandler(stats StatsSource, rosterSrc RosterSource, metrics http.Handler, logger zerolog.Logger) *Handler {
	return &Handler{
		stats:   stats,
		roster:  rosterSrc,
		metrics: metrics,
		log:     logger.With().Str("component", "http").Logger(),
	}
}

type apiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)
	r.Handle("/metrics", h.metrics)

	r.Route("/api", func(r chi.Router) {
		r.Get("/roster", h.rosterList)
		r.Get("/guilds/{guildID}/stats", h.guildStats)
	})
	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: map[string]any{
		"status":          "healthy",
		"active_sessions": h.stats.ActiveCount(),
	}})
}

func (h *Handler) rosterList(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: h.roster.All()})
}

func (h *Handler) guildStats(w http.ResponseWriter, r *http.Request) {
	guildID := chi.URLParam(r, "guildID")

	period, err := calltracker.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			h.writeError(w, http.StatusBadRequest, errors.New("limit must be a non-negative integer"))
			return
		}
	}

	stats, err := h.stats.Stats(guildID, period)
	if err != nil {
		h.log.Error().Err(err).Str("guild_id", guildID).Msg("stats query failed")
		h.writeError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}

	h.writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: map[string]any{
		"guild_id": guildID,
		"period":   period,
		"users":    calltracker.Leaderboard(stats, limit),
	}})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Warn().Err(err).Msg("failed to write response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, apiResponse{Error: err.Error()})
}
