package server

import (
	"context"
	"net/http"
	"time"
)

// pingHandler is a bare liveness probe: the process is up.
func (cfg Config) pingHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "pong"})
}

// healthzHandler is a readiness probe: can we reach the database?
func (cfg Config) healthzHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	var one int
	if err := cfg.DB.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
