package http

import (
	"net/http"
	"strings"

	auth "github.com/mind-engage/mindengage-qbank/internal/auth/middleware"
	"github.com/mind-engage/mindengage-qbank/internal/formats"
	"github.com/mind-engage/mindengage-qbank/internal/logger"
	"github.com/mind-engage/mindengage-qbank/internal/qbank"
)

// POST /question-sets {"topics": [...], "num_questions_per_topic": n, "exam_type": optional}
func CreateQuestionSetHandler(e *qbank.Engine, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ExamType             string   `json:"exam_type"`
			Topics               []string `json:"topics"`
			NumQuestionsPerTopic *int     `json:"num_questions_per_topic"`
		}
		if err := decode(r, &req); err != nil {
			badRequest(w, "bad json: "+err.Error())
			return
		}
		if req.NumQuestionsPerTopic == nil || len(req.Topics) == 0 {
			badRequest(w, "topics and num_questions_per_topic are required")
			return
		}
		if req.ExamType != "" {
			if err := formats.ValidateTopics(req.ExamType, req.Topics); err != nil {
				badRequest(w, err.Error())
				return
			}
		} else {
			for _, t := range req.Topics {
				if !formats.KnownTopic(strings.TrimSpace(t)) {
					badRequest(w, "unknown topic: "+t)
					return
				}
			}
		}
		set, err := e.CreateQuestionSet(r.Context(), auth.SubjectFromContext(r.Context()), req.Topics, *req.NumQuestionsPerTopic)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusCreated, set)
	}
}

// GET /question-sets
func ListQuestionSetsHandler(e *qbank.Engine, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sets, err := e.ClassifySets(r.Context(), auth.SubjectFromContext(r.Context()))
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"question_sets": sets})
	}
}

// GET /question-sets/in-progress
func InProgressSetsHandler(e *qbank.Engine, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids, err := e.GetInProgressSets(r.Context(), auth.SubjectFromContext(r.Context()))
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"in_progress_sets": ids})
	}
}

// GET /question-sets/{setID}/unseen
func UnseenQuestionsHandler(e *qbank.Engine, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setID, ok := idParam(r, "setID")
		if !ok {
			badRequest(w, "bad question set id")
			return
		}
		u, err := e.GetUnseenQuestions(r.Context(), auth.SubjectFromContext(r.Context()), setID)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}
