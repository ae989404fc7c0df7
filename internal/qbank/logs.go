package qbank

import (
	"context"
	"fmt"

	"github.com/mind-engage/mindengage-qbank/internal/events"
	"github.com/mind-engage/mindengage-qbank/internal/grading"
)

func (e *Engine) GetQuestion(ctx context.Context, id int64) (Question, error) {
	q, err := e.store.GetQuestion(ctx, id)
	if err != nil {
		return Question{}, err
	}
	e.checkExamTypes([]Question{q})
	return q, nil
}

// RecordAnswer appends an answer row and grades it. Repeated answers append
// more rows; the question stays seen.
func (e *Engine) RecordAnswer(ctx context.Context, questionID int64, user string, selected int) (AnswerResult, error) {
	user = normalizeUser(user)
	if user == "" {
		return AnswerResult{}, fmt.Errorf("%w: user required", ErrInvalidInput)
	}
	if selected < 1 || selected > 4 {
		return AnswerResult{}, fmt.Errorf("%w: selected_answer %d outside 1..4", ErrInvalidInput, selected)
	}
	q, err := e.store.GetQuestion(ctx, questionID)
	if err != nil {
		return AnswerResult{}, err
	}
	grade, err := e.grader.Grade(ctx, grading.Q{Type: grading.TypeMCQIndex, Options: 4, Solution: q.Solution}, selected)
	if err != nil {
		return AnswerResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	log, err := e.store.AppendAnswer(ctx, AnswerLog{QuestionID: questionID, UserEmail: user, SelectedAnswer: selected})
	if err != nil {
		return AnswerResult{}, err
	}
	e.emit(ctx, events.AnswerRecorded, log.ID, map[string]any{
		"question_id": questionID, "user_email": user, "correct": grade.Correct,
	})
	return AnswerResult{Log: log, Correct: grade.Correct, Solution: grade.Solution}, nil
}

func (e *Engine) RecordOpinion(ctx context.Context, questionID int64, user string, up bool) (OpinionLog, error) {
	user = normalizeUser(user)
	if user == "" {
		return OpinionLog{}, fmt.Errorf("%w: user required", ErrInvalidInput)
	}
	o, err := e.store.AppendOpinion(ctx, OpinionLog{QuestionID: questionID, UserEmail: user, Up: up})
	if err != nil {
		return OpinionLog{}, err
	}
	e.emit(ctx, events.OpinionRecorded, o.ID, map[string]any{
		"question_id": questionID, "user_email": user, "up": up,
	})
	return o, nil
}

// ListAnswers returns the user's own answers to a question, oldest first.
func (e *Engine) ListAnswers(ctx context.Context, user string, questionID int64) ([]AnswerLog, error) {
	user = normalizeUser(user)
	if user == "" {
		return nil, fmt.Errorf("%w: user required", ErrInvalidInput)
	}
	return e.store.ListAnswers(ctx, user, questionID)
}

func (e *Engine) ListOpinions(ctx context.Context, questionID int64) ([]OpinionLog, error) {
	return e.store.ListOpinions(ctx, questionID)
}
