package qbank

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mind-engage/mindengage-qbank/internal/db"
)

const questionCols = `q.id, q.test_id, q.exam_type, q.topic, q.topic_number, q.batch_number,
	q.question, q.answer_1, q.answer_2, q.answer_3, q.answer_4, q.solution`

// assignAttempts bounds how often a conflicting assignment transaction is
// replayed.
const assignAttempts = 3

type SQLStore struct {
	db     *sql.DB
	driver db.Driver
	now    func() time.Time
}

func NewSQLStore(h *sql.DB, driver db.Driver) *SQLStore {
	return &SQLStore{db: h, driver: driver, now: time.Now}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestion(r rowScanner) (Question, error) {
	var q Question
	err := r.Scan(&q.ID, &q.TestID, &q.ExamType, &q.Topic, &q.TopicNumber, &q.BatchNumber,
		&q.Question, &q.Answer1, &q.Answer2, &q.Answer3, &q.Answer4, &q.Solution)
	return q, err
}

func collectQuestions(rows *sql.Rows) ([]Question, error) {
	defer rows.Close()
	var out []Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// nextval advances a named sequence inside tx.
func nextval(ctx context.Context, tx *sql.Tx, driver db.Driver, name string) (int64, error) {
	var v int64
	var err error
	switch driver {
	case db.DriverPostgres:
		err = tx.QueryRowContext(ctx, `SELECT nextval('`+name+`_seq')`).Scan(&v)
	default:
		err = tx.QueryRowContext(ctx,
			`UPDATE sequences SET value = value + 1 WHERE name = $1 RETURNING value`, name).Scan(&v)
	}
	if err != nil {
		return 0, fmt.Errorf("sequence %s: %w", name, err)
	}
	return v, nil
}

func (s *SQLStore) Assign(ctx context.Context, user string, fn func(LedgerTx) error) error {
	return db.WithRetryTx(ctx, s.db, nil, assignAttempts, func(tx *sql.Tx) error {
		if s.driver == db.DriverPostgres {
			if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, user); err != nil {
				return fmt.Errorf("lock user: %w", err)
			}
		}
		return fn(&sqlLedger{tx: tx, driver: s.driver})
	})
}

type sqlLedger struct {
	tx     *sql.Tx
	driver db.Driver
}

func (l *sqlLedger) NextQuestionSetID(ctx context.Context) (int64, error) {
	return nextval(ctx, l.tx, l.driver, "question_set_id")
}

func (l *sqlLedger) HighWaterMark(ctx context.Context, user, topic string) (Position, bool, error) {
	var p Position
	err := l.tx.QueryRowContext(ctx, `
		SELECT q.batch_number, q.topic_number
		FROM question_set_assignments s
		JOIN questions q ON q.id = s.question_id
		WHERE s.user_email = $1 AND q.topic = $2
		ORDER BY q.batch_number DESC, q.topic_number DESC
		LIMIT 1`, user, topic).Scan(&p.Batch, &p.Topic)
	if errors.Is(err, sql.ErrNoRows) {
		return Position{}, false, nil
	}
	if err != nil {
		return Position{}, false, err
	}
	return p, true, nil
}

func (l *sqlLedger) QuestionsAfter(ctx context.Context, topic string, pos Position, limit int) ([]Question, error) {
	rows, err := l.tx.QueryContext(ctx, `
		SELECT `+questionCols+`
		FROM questions q
		WHERE q.topic = $1
		  AND (q.batch_number > $2 OR (q.batch_number = $2 AND q.topic_number > $3))
		ORDER BY q.batch_number, q.topic_number
		LIMIT $4`, topic, pos.Batch, pos.Topic, limit)
	if err != nil {
		return nil, err
	}
	return collectQuestions(rows)
}

func (l *sqlLedger) InsertAssignments(ctx context.Context, setID int64, user string, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(`INSERT INTO question_set_assignments (question_set_id, question_id, user_email) VALUES `)
	args := make([]any, 0, len(ids)+2)
	args = append(args, setID, user)
	for i, id := range ids {
		if i > 0 {
			sb.WriteString(",")
		}
		args = append(args, id)
		fmt.Fprintf(&sb, "($1,$%d,$2)", len(args))
	}
	_, err := l.tx.ExecContext(ctx, sb.String(), args...)
	return err
}

func (s *SQLStore) InsertBatch(ctx context.Context, qs []Question) (int64, []Question, error) {
	if len(qs) == 0 {
		return 0, nil, fmt.Errorf("%w: empty batch", ErrInvalidInput)
	}
	for i, q := range qs {
		if err := q.Validate(); err != nil {
			return 0, nil, fmt.Errorf("question %d: %w", i, err)
		}
	}
	out := make([]Question, len(qs))
	copy(out, qs)
	var batch int64
	err := db.WithTx(ctx, s.db, nil, func(tx *sql.Tx) error {
		var err error
		batch, err = nextval(ctx, tx, s.driver, "batch_number")
		if err != nil {
			return err
		}
		created := s.now().Unix()
		for i := range out {
			out[i].BatchNumber = batch
			out[i].TestID = batch
			q := out[i]
			err := tx.QueryRowContext(ctx, `
				INSERT INTO questions (test_id, exam_type, topic, topic_number, batch_number,
					question, answer_1, answer_2, answer_3, answer_4, solution, created_at)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
				RETURNING id`,
				q.TestID, q.ExamType, q.Topic, q.TopicNumber, q.BatchNumber,
				q.Question, q.Answer1, q.Answer2, q.Answer3, q.Answer4, q.Solution, created,
			).Scan(&out[i].ID)
			if err != nil {
				if db.IsUniqueViolation(err) {
					return fmt.Errorf("%w: duplicate position %s/%d", ErrInvalidInput, q.Topic, q.TopicNumber)
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, nil, err
	}
	return batch, out, nil
}

func (s *SQLStore) GetQuestion(ctx context.Context, id int64) (Question, error) {
	q, err := scanQuestion(s.db.QueryRowContext(ctx,
		`SELECT `+questionCols+` FROM questions q WHERE q.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Question{}, fmt.Errorf("question %d: %w", id, ErrNotFound)
	}
	return q, err
}

func (s *SQLStore) SetQuestions(ctx context.Context, setID int64, user string) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+questionCols+`
		FROM question_set_assignments s
		JOIN questions q ON q.id = s.question_id
		WHERE s.question_set_id = $1 AND s.user_email = $2
		ORDER BY q.batch_number, q.topic_number, q.topic, q.id`, setID, user)
	if err != nil {
		return nil, err
	}
	return collectQuestions(rows)
}

func (s *SQLStore) AnsweredInSet(ctx context.Context, setID int64, user string) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT a.question_id
		FROM answer_logs a
		JOIN question_set_assignments s
		  ON s.question_id = a.question_id AND s.user_email = a.user_email
		WHERE s.question_set_id = $1 AND s.user_email = $2`, setID, user)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (s *SQLStore) SetCounts(ctx context.Context, user string) ([]SetCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.question_set_id, COUNT(DISTINCT s.question_id), COUNT(DISTINCT a.question_id)
		FROM question_set_assignments s
		LEFT JOIN answer_logs a
		  ON a.question_id = s.question_id AND a.user_email = s.user_email
		WHERE s.user_email = $1
		GROUP BY s.question_set_id
		ORDER BY s.question_set_id`, user)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SetCount
	for rows.Next() {
		var c SetCount
		if err := rows.Scan(&c.ID, &c.Total, &c.Answered); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLStore) questionExists(ctx context.Context, id int64) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM questions WHERE id = $1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("question %d: %w", id, ErrNotFound)
	}
	return err
}

func (s *SQLStore) AppendAnswer(ctx context.Context, a AnswerLog) (AnswerLog, error) {
	if err := s.questionExists(ctx, a.QuestionID); err != nil {
		return AnswerLog{}, err
	}
	if a.Timestamp == 0 {
		a.Timestamp = s.now().Unix()
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO answer_logs (question_id, user_email, selected_answer, timestamp)
		VALUES ($1,$2,$3,$4) RETURNING id`,
		a.QuestionID, a.UserEmail, a.SelectedAnswer, a.Timestamp).Scan(&a.ID)
	if err != nil {
		return AnswerLog{}, err
	}
	return a, nil
}

func (s *SQLStore) AppendOpinion(ctx context.Context, o OpinionLog) (OpinionLog, error) {
	if err := s.questionExists(ctx, o.QuestionID); err != nil {
		return OpinionLog{}, err
	}
	if o.Timestamp == 0 {
		o.Timestamp = s.now().Unix()
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO opinion_logs (question_id, user_email, up, timestamp)
		VALUES ($1,$2,$3,$4) RETURNING id`,
		o.QuestionID, o.UserEmail, o.Up, o.Timestamp).Scan(&o.ID)
	if err != nil {
		return OpinionLog{}, err
	}
	return o, nil
}

func (s *SQLStore) ListAnswers(ctx context.Context, user string, questionID int64) ([]AnswerLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, question_id, user_email, selected_answer, timestamp
		FROM answer_logs
		WHERE user_email = $1 AND question_id = $2
		ORDER BY id`, user, questionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []AnswerLog{}
	for rows.Next() {
		var a AnswerLog
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.UserEmail, &a.SelectedAnswer, &a.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) ListOpinions(ctx context.Context, questionID int64) ([]OpinionLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, question_id, user_email, up, timestamp
		FROM opinion_logs
		WHERE question_id = $1
		ORDER BY id`, questionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []OpinionLog{}
	for rows.Next() {
		var o OpinionLog
		if err := rows.Scan(&o.ID, &o.QuestionID, &o.UserEmail, &o.Up, &o.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
