package qbank

import (
	"fmt"
	"strings"
)

// Position orders questions inside a topic: batch first, then the
// 1-based sequence number within the batch.
type Position struct {
	Batch int64 `json:"batch_number"`
	Topic int   `json:"topic_number"`
}

func (p Position) Less(o Position) bool {
	if p.Batch != o.Batch {
		return p.Batch < o.Batch
	}
	return p.Topic < o.Topic
}

func (p Position) IsZero() bool { return p.Batch == 0 && p.Topic == 0 }

type Question struct {
	ID          int64  `json:"id"`
	TestID      int64  `json:"test_id"`
	ExamType    string `json:"exam_type"`
	Topic       string `json:"topic"`
	TopicNumber int    `json:"topic_number"`
	BatchNumber int64  `json:"batch_number"`
	Question    string `json:"question"`
	Answer1     string `json:"answer_1"`
	Answer2     string `json:"answer_2"`
	Answer3     string `json:"answer_3"`
	Answer4     string `json:"answer_4"`
	Solution    int    `json:"solution"`
}

func (q Question) Position() Position {
	return Position{Batch: q.BatchNumber, Topic: q.TopicNumber}
}

// Validate checks the fields a generated question must carry before it
// is stored. Batch and test ids are assigned by the store.
func (q Question) Validate() error {
	switch {
	case strings.TrimSpace(q.ExamType) == "":
		return fmt.Errorf("%w: exam_type required", ErrInvalidInput)
	case strings.TrimSpace(q.Topic) == "":
		return fmt.Errorf("%w: topic required", ErrInvalidInput)
	case q.TopicNumber < 1:
		return fmt.Errorf("%w: topic_number must be >= 1", ErrInvalidInput)
	case strings.TrimSpace(q.Question) == "":
		return fmt.Errorf("%w: question text required", ErrInvalidInput)
	case q.Solution < 1 || q.Solution > 4:
		return fmt.Errorf("%w: solution %d outside 1..4", ErrInvalidInput, q.Solution)
	}
	for i, a := range []string{q.Answer1, q.Answer2, q.Answer3, q.Answer4} {
		if strings.TrimSpace(a) == "" {
			return fmt.Errorf("%w: answer_%d required", ErrInvalidInput, i+1)
		}
	}
	return nil
}

type Assignment struct {
	QuestionSetID int64  `json:"question_set_id"`
	QuestionID    int64  `json:"question_id"`
	UserEmail     string `json:"user_email"`
}

type AnswerLog struct {
	ID             int64  `json:"id"`
	QuestionID     int64  `json:"question_id"`
	UserEmail      string `json:"user_email"`
	SelectedAnswer int    `json:"selected_answer"`
	Timestamp      int64  `json:"timestamp"`
}

type OpinionLog struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"question_id"`
	UserEmail  string `json:"user_email"`
	Up         bool   `json:"up"`
	Timestamp  int64  `json:"timestamp"`
}

type SetState string

const (
	SetNotStarted SetState = "not_started"
	SetInProgress SetState = "in_progress"
	SetComplete   SetState = "complete"
)

// SetCount is the raw per-set tally read from storage.
type SetCount struct {
	ID       int64
	Total    int
	Answered int
}

type SetProgress struct {
	ID       int64    `json:"question_set_id"`
	Total    int      `json:"total"`
	Answered int      `json:"answered"`
	State    SetState `json:"state"`
}

func classify(c SetCount) SetState {
	switch {
	case c.Answered == 0:
		return SetNotStarted
	case c.Answered < c.Total:
		return SetInProgress
	default:
		return SetComplete
	}
}

type QuestionSet struct {
	ID        int64      `json:"question_set_id"`
	Questions []Question `json:"questions"`
}

type Unseen struct {
	QuestionSetID  int64      `json:"question_set_id"`
	Questions      []Question `json:"questions"`
	TotalQuestions int        `json:"total_questions"`
	SetSize        int        `json:"set_size"`
}

// AnswerResult is a stored answer plus its grading.
type AnswerResult struct {
	Log      AnswerLog `json:"log"`
	Correct  bool      `json:"correct"`
	Solution int       `json:"solution"`
}
