package qbank

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mind-engage/mindengage-qbank/internal/events"
	"github.com/mind-engage/mindengage-qbank/internal/logger"
	_ "github.com/mind-engage/mindengage-qbank/internal/formats/cfa"
)

func TestRecordAnswerGrades(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()
	qs := seedBatch(t, s, 1, "economics")
	q := qs[0]

	res, err := e.RecordAnswer(ctx, q.ID, "U@x.io", q.Solution)
	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.Equal(t, q.Solution, res.Solution)
	assert.Equal(t, "u@x.io", res.Log.UserEmail)
	assert.NotZero(t, res.Log.ID)
	assert.NotZero(t, res.Log.Timestamp)

	wrong := q.Solution%4 + 1
	res, err = e.RecordAnswer(ctx, q.ID, "u@x.io", wrong)
	require.NoError(t, err)
	assert.False(t, res.Correct)
}

func TestRecordAnswerErrors(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()
	qs := seedBatch(t, s, 1, "economics")

	_, err := e.RecordAnswer(ctx, 4242, "u@x.io", 1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = e.RecordAnswer(ctx, qs[0].ID, "u@x.io", 5)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.RecordAnswer(ctx, qs[0].ID, "u@x.io", 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRecordOpinion(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()
	qs := seedBatch(t, s, 1, "economics")

	up, err := e.RecordOpinion(ctx, qs[0].ID, "u@x.io", true)
	require.NoError(t, err)
	assert.True(t, up.Up)
	_, err = e.RecordOpinion(ctx, qs[0].ID, "v@x.io", false)
	require.NoError(t, err)

	ops, err := e.ListOpinions(ctx, qs[0].ID)
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.True(t, ops[0].Up)
	assert.False(t, ops[1].Up)

	_, err = e.RecordOpinion(ctx, 999, "u@x.io", true)
	assert.ErrorIs(t, err, ErrNotFound)

	// opinions never mark a question answered
	logs, err := e.ListAnswers(ctx, "u@x.io", qs[0].ID)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestGetQuestion(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()
	qs := seedBatch(t, s, 1, "derivatives")

	got, err := e.GetQuestion(ctx, qs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, qs[0], got)
	assert.Equal(t, got.BatchNumber, got.TestID)

	_, err = e.GetQuestion(ctx, 31337)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInsertBatchValidates(t *testing.T) {
	_, s := newTestEngine(t)
	ctx := context.Background()

	bad := mkQuestion("economics", 1, 7)
	_, _, err := s.InsertBatch(ctx, []Question{bad})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, _, err = s.InsertBatch(ctx, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	dup := []Question{mkQuestion("economics", 1, 1), mkQuestion("economics", 1, 2)}
	_, _, err = s.InsertBatch(ctx, dup)
	assert.ErrorIs(t, err, ErrInvalidInput)

	b1, _, err := s.InsertBatch(ctx, []Question{mkQuestion("economics", 1, 1)})
	require.NoError(t, err)
	b2, _, err := s.InsertBatch(ctx, []Question{mkQuestion("economics", 1, 1)})
	require.NoError(t, err)
	assert.Equal(t, b1+1, b2)
}

func TestEngineEmitsEvents(t *testing.T) {
	h := openTestDB(t)
	ctx := context.Background()
	repo := events.NewEventRepo(h)
	store := NewSQLStore(h, "sqlite")
	e := NewEngine(store, nil, WithEvents(repo))
	seedBatch(t, store, 1, "economics")

	set, err := e.CreateQuestionSet(ctx, "u@x.io", []string{"economics"}, 1)
	require.NoError(t, err)
	_, err = e.RecordAnswer(ctx, set.Questions[0].ID, "u@x.io", 1)
	require.NoError(t, err)
	_, err = e.RecordOpinion(ctx, set.Questions[0].ID, "u@x.io", true)
	require.NoError(t, err)

	evs, err := repo.Since(ctx, 0, 10)
	require.NoError(t, err)
	var types []string
	for _, ev := range evs {
		types = append(types, ev.Type)
	}
	assert.Equal(t, []string{events.QuestionSetCreated, events.AnswerRecorded, events.OpinionRecorded}, types)
}

func TestUnknownExamTypeIsWarnedNotRewritten(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}
	h := openTestDB(t)
	store := NewSQLStore(h, "sqlite")
	e := NewEngine(store, log)
	ctx := context.Background()

	q := mkQuestion("economics", 1, 1)
	q.ExamType = "CFA7"
	_, out, err := store.InsertBatch(ctx, []Question{q})
	require.NoError(t, err)

	got, err := e.GetQuestion(ctx, out[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "CFA7", got.ExamType)
	require.Equal(t, 1, logs.FilterMessage("question has unknown exam type").Len())

	_, err = e.GetQuestion(ctx, out[0].ID)
	require.NoError(t, err)
	seedBatch(t, store, 1, "economics")
	_, err = e.CreateQuestionSet(ctx, "u@x.io", []string{"economics"}, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, logs.FilterMessage("question has unknown exam type").Len(), "CFA1 rows do not warn")
}
