package http

import (
	"net/http"

	auth "github.com/mind-engage/mindengage-qbank/internal/auth/middleware"
	"github.com/mind-engage/mindengage-qbank/internal/logger"
	"github.com/mind-engage/mindengage-qbank/internal/qbank"
)

// GET /questions/{questionID}
func GetQuestionHandler(e *qbank.Engine, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r, "questionID")
		if !ok {
			badRequest(w, "bad question id")
			return
		}
		q, err := e.GetQuestion(r.Context(), id)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

// POST /answers {"question_id": 1, "selected_answer": 1..4}
func RecordAnswerHandler(e *qbank.Engine, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			QuestionID     int64 `json:"question_id"`
			SelectedAnswer *int  `json:"selected_answer"`
		}
		if err := decode(r, &req); err != nil {
			badRequest(w, "bad json: "+err.Error())
			return
		}
		if req.QuestionID <= 0 || req.SelectedAnswer == nil {
			badRequest(w, "question_id and selected_answer are required")
			return
		}
		res, err := e.RecordAnswer(r.Context(), req.QuestionID, auth.SubjectFromContext(r.Context()), *req.SelectedAnswer)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusCreated, res)
	}
}

// GET /questions/{questionID}/answers lists the caller's own answers.
func ListAnswersHandler(e *qbank.Engine, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r, "questionID")
		if !ok {
			badRequest(w, "bad question id")
			return
		}
		logs, err := e.ListAnswers(r.Context(), auth.SubjectFromContext(r.Context()), id)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"answers": logs})
	}
}

// POST /opinions {"question_id": 1, "up": true}
func RecordOpinionHandler(e *qbank.Engine, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			QuestionID int64 `json:"question_id"`
			Up         *bool `json:"up"`
		}
		if err := decode(r, &req); err != nil {
			badRequest(w, "bad json: "+err.Error())
			return
		}
		if req.QuestionID <= 0 || req.Up == nil {
			badRequest(w, "question_id and up are required")
			return
		}
		o, err := e.RecordOpinion(r.Context(), req.QuestionID, auth.SubjectFromContext(r.Context()), *req.Up)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusCreated, o)
	}
}

// GET /questions/{questionID}/opinions
func ListOpinionsHandler(e *qbank.Engine, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r, "questionID")
		if !ok {
			badRequest(w, "bad question id")
			return
		}
		ops, err := e.ListOpinions(r.Context(), id)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"opinions": ops})
	}
}
