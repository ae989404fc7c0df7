package grading

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCQIndex(t *testing.T) {
	g := NewDefaultGrader()
	ctx := context.Background()
	q := Q{Solution: 3}

	res, err := g.Grade(ctx, q, 3)
	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.Equal(t, 1.0, res.Points)

	res, err = g.Grade(ctx, q, float64(2))
	require.NoError(t, err)
	assert.False(t, res.Correct)
	assert.Equal(t, 3, res.Solution)
	assert.Zero(t, res.Points)
}

func TestMCQIndexRejectsBadResponses(t *testing.T) {
	g := NewDefaultGrader(WithPoints(2))
	ctx := context.Background()
	for _, resp := range []any{0, 5, "2", 2.5, nil} {
		_, err := g.Grade(ctx, Q{Solution: 1}, resp)
		assert.ErrorIs(t, err, ErrBadResponse, "%v", resp)
	}
}

func TestUnknownType(t *testing.T) {
	_, err := NewDefaultGrader().Grade(context.Background(), Q{Type: "essay"}, 1)
	assert.Error(t, err)
}

func TestPointsOption(t *testing.T) {
	res, err := NewDefaultGrader(WithPoints(2)).Grade(context.Background(), Q{Solution: 4}, int64(4))
	require.NoError(t, err)
	assert.Equal(t, 2.0, res.Points)
	assert.Equal(t, 2.0, res.MaxPoints)
}
