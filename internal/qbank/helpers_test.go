package qbank

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-qbank/internal/db"
	"github.com/mind-engage/mindengage-qbank/internal/logger"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	h, err := db.Open(context.Background(), db.DriverSQLite, "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *SQLStore) {
	t.Helper()
	store := NewSQLStore(openTestDB(t), db.DriverSQLite)
	return NewEngine(store, logger.Nop(), opts...), store
}

func mkQuestion(topic string, n, solution int) Question {
	return Question{
		ExamType:    "CFA1",
		Topic:       topic,
		TopicNumber: n,
		Question:    fmt.Sprintf("%s question %d", topic, n),
		Answer1:     "a",
		Answer2:     "b",
		Answer3:     "c",
		Answer4:     "d",
		Solution:    solution,
	}
}

// seedBatch inserts one batch with n questions for each topic.
func seedBatch(t *testing.T, s *SQLStore, n int, topics ...string) []Question {
	t.Helper()
	var qs []Question
	for _, topic := range topics {
		for i := 1; i <= n; i++ {
			qs = append(qs, mkQuestion(topic, i, 1+(i-1)%4))
		}
	}
	_, out, err := s.InsertBatch(context.Background(), qs)
	require.NoError(t, err)
	return out
}

func positions(qs []Question) []Position {
	out := make([]Position, len(qs))
	for i, q := range qs {
		out[i] = q.Position()
	}
	return out
}
