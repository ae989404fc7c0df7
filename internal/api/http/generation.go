package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-qbank/internal/formats"
	"github.com/mind-engage/mindengage-qbank/internal/generation"
	"github.com/mind-engage/mindengage-qbank/internal/logger"
	"github.com/mind-engage/mindengage-qbank/internal/materials"
)

type Generator interface {
	Generate(ctx context.Context, req generation.Request) (generation.Result, error)
}

type Materials interface {
	Get(ctx context.Context, exam, topic string) (materials.Specification, error)
	GetOrGenerate(ctx context.Context, exam, topic string) (materials.Specification, error)
}

// POST /questions/generate {"exam_type","topics","num_questions"}
func GenerateQuestionsHandler(g Generator, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generation.Request
		if err := decode(r, &req); err != nil {
			badRequest(w, "bad json: "+err.Error())
			return
		}
		res, err := g.Generate(r.Context(), req)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusCreated, res)
	}
}

// POST /learning-materials/generate {"exam","topic"}
func GenerateMaterialHandler(m Materials, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Exam  string `json:"exam"`
			Topic string `json:"topic"`
		}
		if err := decode(r, &req); err != nil {
			badRequest(w, "bad json: "+err.Error())
			return
		}
		sp, err := m.GetOrGenerate(r.Context(), req.Exam, req.Topic)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"specification": sp})
	}
}

// GET /learning-materials/{exam}/{topic}
func GetMaterialHandler(m Materials, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sp, err := m.Get(r.Context(), chi.URLParam(r, "exam"), chi.URLParam(r, "topic"))
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"specification": sp})
	}
}

// GET /exams
func ListExamsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"exams": formats.List()})
	}
}
