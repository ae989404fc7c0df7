package qbank

import (
	"context"
	"strconv"
	"strings"

	"github.com/mind-engage/mindengage-qbank/internal/formats"
	"github.com/mind-engage/mindengage-qbank/internal/grading"
	"github.com/mind-engage/mindengage-qbank/internal/logger"
)

// Engine allocates question sets, evaluates progress and records answer and
// opinion logs on top of a Store.
type Engine struct {
	store  Store
	log    *logger.Logger
	grader grading.Grader
	events EventSink
}

type Option func(*Engine)

func WithGrader(g grading.Grader) Option { return func(e *Engine) { e.grader = g } }
func WithEvents(s EventSink) Option      { return func(e *Engine) { e.events = s } }

func NewEngine(store Store, log *logger.Logger, opts ...Option) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	e := &Engine{store: store, log: log, grader: grading.NewDefaultGrader()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// normalizeUser folds the identity used as the ledger owner key.
func normalizeUser(u string) string { return strings.ToLower(strings.TrimSpace(u)) }

func (e *Engine) emit(ctx context.Context, typ string, key int64, payload any) {
	if e.events == nil {
		return
	}
	if err := e.events.Emit(ctx, typ, strconv.FormatInt(key, 10), payload); err != nil {
		e.log.Warn("event append failed", "type", typ, "key", key, "err", err)
	}
}

// checkExamTypes warns about stored rows whose exam type is not in the
// catalog. The row is returned unchanged.
func (e *Engine) checkExamTypes(qs []Question) {
	seen := map[string]bool{}
	for _, q := range qs {
		if seen[q.ExamType] {
			continue
		}
		seen[q.ExamType] = true
		if _, ok := formats.Lookup(q.ExamType); !ok {
			e.log.Warn("question has unknown exam type", "exam_type", q.ExamType, "question_id", q.ID)
		}
	}
}
