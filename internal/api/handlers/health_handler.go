package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/hlog"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports liveness. It answers 200 even when the database is
// down so the process stays reachable while the store recovers.
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Check handles GET /health.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "connected"
	if err := h.db.PingContext(ctx); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("Database ping failed")
		status = "unavailable"
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "database": status})
}
