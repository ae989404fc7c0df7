package http

import (
	"context"
	"database/sql"
	"net/http"
	"time"
)

func HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }
}

// ReadyzHandler reports 503 while the database is unreachable.
func ReadyzHandler(h *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.PingContext(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "not ready", Detail: "database unreachable"})
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
