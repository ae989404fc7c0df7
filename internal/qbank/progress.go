package qbank

import (
	"context"
	"fmt"
)

// GetUnseenQuestions lists the members of set the user has not answered,
// ordered by position. A set with no entries for the user is empty, not an
// error.
func (e *Engine) GetUnseenQuestions(ctx context.Context, user string, setID int64) (Unseen, error) {
	user = normalizeUser(user)
	out := Unseen{QuestionSetID: setID, Questions: []Question{}}
	if user == "" {
		return out, fmt.Errorf("%w: user required", ErrInvalidInput)
	}
	members, err := e.store.SetQuestions(ctx, setID, user)
	if err != nil {
		return out, err
	}
	if len(members) == 0 {
		return out, nil
	}
	answered, err := e.store.AnsweredInSet(ctx, setID, user)
	if err != nil {
		return out, err
	}
	done := make(map[int64]bool, len(answered))
	for _, id := range answered {
		done[id] = true
	}
	for _, q := range members {
		if !done[q.ID] {
			out.Questions = append(out.Questions, q)
		}
	}
	e.checkExamTypes(out.Questions)
	out.TotalQuestions = len(out.Questions)
	out.SetSize = len(members)
	return out, nil
}

// ClassifySets reports every set owned by user with its state.
func (e *Engine) ClassifySets(ctx context.Context, user string) ([]SetProgress, error) {
	user = normalizeUser(user)
	if user == "" {
		return nil, fmt.Errorf("%w: user required", ErrInvalidInput)
	}
	counts, err := e.store.SetCounts(ctx, user)
	if err != nil {
		return nil, err
	}
	out := make([]SetProgress, 0, len(counts))
	for _, c := range counts {
		out = append(out, SetProgress{ID: c.ID, Total: c.Total, Answered: c.Answered, State: classify(c)})
	}
	return out, nil
}

// GetInProgressSets returns ascending ids of sets with some but not all
// questions answered.
func (e *Engine) GetInProgressSets(ctx context.Context, user string) ([]int64, error) {
	sets, err := e.ClassifySets(ctx, user)
	if err != nil {
		return nil, err
	}
	ids := []int64{}
	for _, s := range sets {
		if s.State == SetInProgress {
			ids = append(ids, s.ID)
		}
	}
	return ids, nil
}
