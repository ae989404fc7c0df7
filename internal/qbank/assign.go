package qbank

import (
	"context"
	"fmt"
	"strings"

	"github.com/mind-engage/mindengage-qbank/internal/events"
)

// CreateQuestionSet allocates a fresh set id and, for each topic in order,
// assigns up to perTopic questions the user has never been assigned for that
// topic. All topics are written in one transaction.
func (e *Engine) CreateQuestionSet(ctx context.Context, user string, topics []string, perTopic int) (QuestionSet, error) {
	user = normalizeUser(user)
	if user == "" {
		return QuestionSet{}, fmt.Errorf("%w: user required", ErrInvalidInput)
	}
	if perTopic < 1 {
		return QuestionSet{}, fmt.Errorf("%w: num_questions_per_topic must be >= 1", ErrInvalidInput)
	}
	topics = dedupeTopics(topics)
	if len(topics) == 0 {
		return QuestionSet{}, fmt.Errorf("%w: at least one topic required", ErrInvalidInput)
	}

	var set QuestionSet
	err := e.store.Assign(ctx, user, func(tx LedgerTx) error {
		// Reset on replay.
		set = QuestionSet{Questions: []Question{}}

		id, err := tx.NextQuestionSetID(ctx)
		if err != nil {
			return err
		}
		set.ID = id

		for _, topic := range topics {
			hwm, _, err := tx.HighWaterMark(ctx, user, topic)
			if err != nil {
				return fmt.Errorf("high-water mark %s: %w", topic, err)
			}
			qs, err := tx.QuestionsAfter(ctx, topic, hwm, perTopic)
			if err != nil {
				return fmt.Errorf("select %s: %w", topic, err)
			}
			if len(qs) == 0 {
				continue
			}
			ids := make([]int64, len(qs))
			for i, q := range qs {
				ids[i] = q.ID
			}
			if err := tx.InsertAssignments(ctx, id, user, ids); err != nil {
				return fmt.Errorf("assign %s: %w", topic, err)
			}
			set.Questions = append(set.Questions, qs...)
		}
		return nil
	})
	if err != nil {
		return QuestionSet{}, err
	}

	e.checkExamTypes(set.Questions)
	e.log.Info("question set created", "user", user, "question_set_id", set.ID,
		"topics", len(topics), "questions", len(set.Questions))
	e.emit(ctx, events.QuestionSetCreated, set.ID, map[string]any{
		"user_email": user, "topics": topics, "questions": len(set.Questions),
	})
	return set, nil
}

func dedupeTopics(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
