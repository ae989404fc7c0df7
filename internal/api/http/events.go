package http

import (
	"net/http"
	"strconv"

	"github.com/mind-engage/mindengage-qbank/internal/events"
	"github.com/mind-engage/mindengage-qbank/internal/logger"
)

func parseIntDefault(s string, def int) int {
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return def
}

// GET /events?after=<seq>&limit=<n>
func ListEventsHandler(repo *events.EventRepo, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		after, _ := strconv.ParseInt(r.URL.Query().Get("after"), 10, 64)
		limit := parseIntDefault(r.URL.Query().Get("limit"), 100)
		if limit > 1000 {
			limit = 1000
		}
		evs, err := repo.Since(r.Context(), after, limit)
		if err != nil {
			writeError(w, log, err)
			return
		}
		if evs == nil {
			evs = []events.Event{}
		}
		next := after
		if len(evs) > 0 {
			next = evs[len(evs)-1].Seq
		}
		writeJSON(w, http.StatusOK, map[string]any{"events": evs, "next": next})
	}
}
