package qbank

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInProgressScenario(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()
	seedBatch(t, s, 3, "economics")

	set, err := e.CreateQuestionSet(ctx, "u@x.io", []string{"economics"}, 3)
	require.NoError(t, err)
	require.Len(t, set.Questions, 3)

	ids, err := e.GetInProgressSets(ctx, "u@x.io")
	require.NoError(t, err)
	assert.Empty(t, ids, "untouched set is not in progress")

	_, err = e.RecordAnswer(ctx, set.Questions[0].ID, "u@x.io", 1)
	require.NoError(t, err)
	ids, err = e.GetInProgressSets(ctx, "u@x.io")
	require.NoError(t, err)
	assert.Equal(t, []int64{set.ID}, ids)

	for _, q := range set.Questions[1:] {
		_, err = e.RecordAnswer(ctx, q.ID, "u@x.io", 2)
		require.NoError(t, err)
	}
	ids, err = e.GetInProgressSets(ctx, "u@x.io")
	require.NoError(t, err)
	assert.Empty(t, ids, "complete set is not in progress")
}

func TestUnseenShrinksAsAnswersArrive(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()
	seedBatch(t, s, 2, "economics", "derivatives")

	set, err := e.CreateQuestionSet(ctx, "u@x.io", []string{"economics", "derivatives"}, 2)
	require.NoError(t, err)

	u, err := e.GetUnseenQuestions(ctx, "u@x.io", set.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, u.TotalQuestions)
	assert.Equal(t, 4, u.SetSize)

	target := set.Questions[1]
	_, err = e.RecordAnswer(ctx, target.ID, "u@x.io", 3)
	require.NoError(t, err)
	_, err = e.RecordAnswer(ctx, target.ID, "u@x.io", 4)
	require.NoError(t, err)

	u, err = e.GetUnseenQuestions(ctx, "u@x.io", set.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, u.TotalQuestions)
	assert.Equal(t, 4, u.SetSize)
	for _, q := range u.Questions {
		assert.NotEqual(t, target.ID, q.ID)
	}
	for i := 1; i < len(u.Questions); i++ {
		prev, cur := u.Questions[i-1].Position(), u.Questions[i].Position()
		assert.False(t, cur.Less(prev), "unseen questions are ordered by position")
	}

	logs, err := e.ListAnswers(ctx, "u@x.io", target.ID)
	require.NoError(t, err)
	assert.Len(t, logs, 2, "repeat answers append rows")
}

func TestUnseenIgnoresOtherUsersAnswers(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()
	seedBatch(t, s, 2, "economics")

	set, err := e.CreateQuestionSet(ctx, "u@x.io", []string{"economics"}, 2)
	require.NoError(t, err)
	_, err = e.RecordAnswer(ctx, set.Questions[0].ID, "other@x.io", 1)
	require.NoError(t, err)

	u, err := e.GetUnseenQuestions(ctx, "u@x.io", set.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, u.TotalQuestions)

	foreign, err := e.GetUnseenQuestions(ctx, "other@x.io", set.ID)
	require.NoError(t, err)
	assert.Empty(t, foreign.Questions, "set belongs to its owner only")
}

func TestUnseenEmptySet(t *testing.T) {
	e, _ := newTestEngine(t)
	u, err := e.GetUnseenQuestions(context.Background(), "u@x.io", 99)
	require.NoError(t, err)
	assert.NotNil(t, u.Questions)
	assert.Empty(t, u.Questions)
	assert.Zero(t, u.TotalQuestions)
	assert.Zero(t, u.SetSize)
}

func TestClassifySets(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()
	seedBatch(t, s, 6, "economics")

	untouched, err := e.CreateQuestionSet(ctx, "u@x.io", []string{"economics"}, 2)
	require.NoError(t, err)
	partial, err := e.CreateQuestionSet(ctx, "u@x.io", []string{"economics"}, 2)
	require.NoError(t, err)
	done, err := e.CreateQuestionSet(ctx, "u@x.io", []string{"economics"}, 2)
	require.NoError(t, err)

	_, err = e.RecordAnswer(ctx, partial.Questions[0].ID, "u@x.io", 1)
	require.NoError(t, err)
	for _, q := range done.Questions {
		_, err = e.RecordAnswer(ctx, q.ID, "u@x.io", 1)
		require.NoError(t, err)
	}

	sets, err := e.ClassifySets(ctx, "u@x.io")
	require.NoError(t, err)
	assert.Equal(t, []SetProgress{
		{ID: untouched.ID, Total: 2, Answered: 0, State: SetNotStarted},
		{ID: partial.ID, Total: 2, Answered: 1, State: SetInProgress},
		{ID: done.ID, Total: 2, Answered: 2, State: SetComplete},
	}, sets)
}

func TestClassifyAnswerBeforeAssignmentCounts(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()
	qs := seedBatch(t, s, 2, "economics")

	// answered outside any set, then assigned
	_, err := e.RecordAnswer(ctx, qs[0].ID, "u@x.io", 1)
	require.NoError(t, err)
	set, err := e.CreateQuestionSet(ctx, "u@x.io", []string{"economics"}, 2)
	require.NoError(t, err)

	ids, err := e.GetInProgressSets(ctx, "u@x.io")
	require.NoError(t, err)
	assert.Equal(t, []int64{set.ID}, ids)
}
