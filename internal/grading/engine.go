package grading

import (
	"context"
	"errors"
	"fmt"
)

// Q is the view of a question needed for grading.
type Q struct {
	Type     string
	Options  int // number of answer choices
	Solution int // 1-based index of the correct choice
	Points   float64
}

// Result is the outcome of grading a single response.
type Result struct {
	Correct   bool    `json:"correct"`
	Solution  int     `json:"solution"`
	Points    float64 `json:"points"`
	MaxPoints float64 `json:"max_points"`
}

var ErrBadResponse = errors.New("grading: bad response")

// Strategy grades a single question.
type Strategy interface {
	Grade(ctx context.Context, q Q, response any) (Result, error)
}

// Grader routes by question type to the correct Strategy.
type Grader interface {
	Grade(ctx context.Context, q Q, response any) (Result, error)
}

const TypeMCQIndex = "mcq_index"

type defaultGrader struct {
	strategies map[string]Strategy
}

func (g *defaultGrader) Grade(ctx context.Context, q Q, response any) (Result, error) {
	t := q.Type
	if t == "" {
		t = TypeMCQIndex
	}
	s, ok := g.strategies[t]
	if !ok {
		return Result{}, fmt.Errorf("grading: no strategy for %q", t)
	}
	return s.Grade(ctx, q, response)
}

type Option func(*config)

type config struct {
	Points float64
}

// WithPoints sets the points awarded for a correct answer when the question
// carries none.
func WithPoints(p float64) Option { return func(c *config) { c.Points = p } }

// NewDefaultGrader installs built-in strategies.
func NewDefaultGrader(opts ...Option) Grader {
	cfg := &config{Points: 1}
	for _, o := range opts {
		o(cfg)
	}
	return &defaultGrader{
		strategies: map[string]Strategy{
			TypeMCQIndex: mcqIndexStrategy{points: cfg.Points},
		},
	}
}

type mcqIndexStrategy struct{ points float64 }

func (s mcqIndexStrategy) Grade(_ context.Context, q Q, response any) (Result, error) {
	max := q.Points
	if max == 0 {
		max = s.points
	}
	res := Result{Solution: q.Solution, MaxPoints: max}
	sel, ok := toIndex(response)
	if !ok {
		return res, fmt.Errorf("%w: want choice index, got %T", ErrBadResponse, response)
	}
	options := q.Options
	if options == 0 {
		options = 4
	}
	if sel < 1 || sel > options {
		return res, fmt.Errorf("%w: choice %d outside 1..%d", ErrBadResponse, sel, options)
	}
	if sel == q.Solution {
		res.Correct = true
		res.Points = max
	}
	return res, nil
}

func toIndex(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}
