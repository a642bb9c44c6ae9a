package handlers

import (
	"net/http"
	"time"

	"github.com/isdelr/glossary-be/internal/config"
	"github.com/isdelr/glossary-be/internal/monitoring"
)

// Banner is served at the root path.
const Banner = "Glossary Server v1.0"

// StatsSource supplies the latest host resource sample.
type StatsSource interface {
	Snapshot() monitoring.HostStats
}

// StatusHandler reports liveness and host health.
type StatusHandler struct {
	started  time.Time
	authMode config.AuthMode
	stats    StatsSource
}

// NewStatusHandler creates a new StatusHandler. stats may be nil.
func NewStatusHandler(started time.Time, authMode config.AuthMode, stats StatsSource) *StatusHandler {
	return &StatusHandler{started: started, authMode: authMode, stats: stats}
}

// StatusResponse is the body of GET /api/status.
type StatusResponse struct {
	Status        string                `json:"status"`
	UptimeSeconds int64                 `json:"uptimeSeconds"`
	AuthMode      config.AuthMode       `json:"authMode"`
	Host          *monitoring.HostStats `json:"host,omitempty"`
}

// Banner writes the plain text server banner.
func (h *StatusHandler) Banner(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(Banner))
}

// Status reports uptime, the auth mode and the last host sample.
func (h *StatusHandler) Status(w http.ResponseWriter, _ *http.Request) {
	resp := StatusResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
		AuthMode:      h.authMode,
	}
	if h.stats != nil {
		if snap := h.stats.Snapshot(); !snap.SampledAt.IsZero() {
			resp.Host = &snap
		}
	}
	respondJSON(w, http.StatusOK, resp)
}
