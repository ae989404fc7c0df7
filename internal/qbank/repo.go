package qbank

import "context"

// Store is the persistence contract of the question bank. Every method is a
// single logical query; Assign groups the ledger reads and writes of one
// question set into a single transaction.
type Store interface {
	// Assign runs fn inside one write transaction serialized per user.
	// Nothing fn wrote is kept if it returns an error.
	Assign(ctx context.Context, user string, fn func(LedgerTx) error) error

	// InsertBatch allocates a new batch number and stores qs under it.
	// The returned questions carry their ids, batch number and test id.
	InsertBatch(ctx context.Context, qs []Question) (int64, []Question, error)

	GetQuestion(ctx context.Context, id int64) (Question, error)
	// SetQuestions returns the questions assigned to user in set, by position.
	SetQuestions(ctx context.Context, setID int64, user string) ([]Question, error)
	// AnsweredInSet returns distinct ids of set members user has answered.
	AnsweredInSet(ctx context.Context, setID int64, user string) ([]int64, error)
	// SetCounts tallies every set owned by user, ascending by id.
	SetCounts(ctx context.Context, user string) ([]SetCount, error)

	AppendAnswer(ctx context.Context, a AnswerLog) (AnswerLog, error)
	AppendOpinion(ctx context.Context, o OpinionLog) (OpinionLog, error)
	ListAnswers(ctx context.Context, user string, questionID int64) ([]AnswerLog, error)
	ListOpinions(ctx context.Context, questionID int64) ([]OpinionLog, error)
}

// LedgerTx is the view of storage available inside Store.Assign.
type LedgerTx interface {
	NextQuestionSetID(ctx context.Context) (int64, error)
	// HighWaterMark is the greatest position already assigned to user for
	// topic; ok is false when nothing was assigned yet.
	HighWaterMark(ctx context.Context, user, topic string) (pos Position, ok bool, err error)
	// QuestionsAfter lists up to limit questions of topic strictly after
	// pos, ascending. The zero Position lists from the start.
	QuestionsAfter(ctx context.Context, topic string, pos Position, limit int) ([]Question, error)
	InsertAssignments(ctx context.Context, setID int64, user string, questionIDs []int64) error
}

// EventSink receives domain events. Failures never fail the operation.
type EventSink interface {
	Emit(ctx context.Context, typ, key string, payload any) error
}
