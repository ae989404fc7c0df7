package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-qbank/internal/llm"
	"github.com/mind-engage/mindengage-qbank/internal/logger"
	"github.com/mind-engage/mindengage-qbank/internal/qbank"
)

type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, detail string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid input", Detail: detail})
}

// writeError maps domain errors to statuses. Provider errors are checked
// first because they may wrap validation failures of generated content.
func writeError(w http.ResponseWriter, log *logger.Logger, err error) {
	switch {
	case llm.IsProviderError(err):
		log.Warn("generator failed", "err", err)
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "generator failure", Detail: err.Error()})
	case errors.Is(err, qbank.ErrInvalidInput):
		badRequest(w, err.Error())
	case errors.Is(err, qbank.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found", Detail: err.Error()})
	default:
		log.Error("request failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}
