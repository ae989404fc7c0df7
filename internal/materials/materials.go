package materials

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/mind-engage/mindengage-qbank/internal/db"
	"github.com/mind-engage/mindengage-qbank/internal/formats"
	"github.com/mind-engage/mindengage-qbank/internal/llm"
	"github.com/mind-engage/mindengage-qbank/internal/logger"
	"github.com/mind-engage/mindengage-qbank/internal/qbank"
	"github.com/mind-engage/mindengage-qbank/internal/storage"
)

// Specification is the study outline for one exam topic. It is generated at
// most once per (exam, topic) and then served from the database.
type Specification struct {
	ID            int64  `json:"id"`
	Exam          string `json:"exam"`
	Topic         string `json:"topic"`
	Specification string `json:"specification"`
	CreatedAt     int64  `json:"created_at"`
}

type Service struct {
	db       *sql.DB
	provider llm.Provider
	blobs    storage.BlobStore
	log      *logger.Logger
}

func NewService(h *sql.DB, p llm.Provider, blobs storage.BlobStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{db: h, provider: p, blobs: blobs, log: log}
}

func validate(exam, topic string) error {
	if err := formats.ValidateTopics(exam, []string{topic}); err != nil {
		return fmt.Errorf("%w: %v", qbank.ErrInvalidInput, err)
	}
	return nil
}

// Get returns the stored specification or qbank.ErrNotFound.
func (s *Service) Get(ctx context.Context, exam, topic string) (Specification, error) {
	if err := validate(exam, topic); err != nil {
		return Specification{}, err
	}
	var sp Specification
	err := s.db.QueryRowContext(ctx,
		`SELECT id, exam, topic, specification, created_at FROM specifications WHERE exam=$1 AND topic=$2`,
		exam, topic).Scan(&sp.ID, &sp.Exam, &sp.Topic, &sp.Specification, &sp.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Specification{}, fmt.Errorf("learning material %s/%s: %w", exam, topic, qbank.ErrNotFound)
	}
	return sp, err
}

// GetOrGenerate returns the stored specification, generating and storing
// it first when missing.
func (s *Service) GetOrGenerate(ctx context.Context, exam, topic string) (Specification, error) {
	sp, err := s.Get(ctx, exam, topic)
	if err == nil || !errors.Is(err, qbank.ErrNotFound) {
		return sp, err
	}

	text, err := s.generate(ctx, exam, topic)
	if err != nil {
		return Specification{}, err
	}
	sp = Specification{Exam: exam, Topic: topic, Specification: text, CreatedAt: time.Now().Unix()}
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO specifications (exam, topic, specification, created_at) VALUES ($1,$2,$3,$4) RETURNING id`,
		sp.Exam, sp.Topic, sp.Specification, sp.CreatedAt).Scan(&sp.ID)
	if db.IsUniqueViolation(err) {
		// lost a race with a concurrent generator; theirs wins
		return s.Get(ctx, exam, topic)
	}
	if err != nil {
		return Specification{}, err
	}
	s.log.Info("learning material generated", "exam", exam, "topic", topic, "id", sp.ID)
	return sp, nil
}

var specSchema = &llm.Schema{
	Name: "qbank-specification",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"specification": map[string]any{"type": "string", "minLength": 1},
		},
		"required":             []any{"specification"},
		"additionalProperties": false,
	},
}

func (s *Service) generate(ctx context.Context, exam, topic string) (string, error) {
	p, _ := formats.Lookup(exam)
	title := topic
	for _, t := range p.Topics {
		if t.ID == topic {
			title = t.Title
		}
	}
	prompt := fmt.Sprintf("Write a detailed study specification for the %s exam topic %q: the learning outcomes, key concepts and formulas a candidate must master.", p.Title, title)

	var atts []llm.Attachment
	if s.blobs != nil && llm.AcceptsAttachments(s.provider) {
		if rc, err := s.blobs.Get(storage.SourceKey(exam, topic)); err == nil {
			data, err := io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return "", fmt.Errorf("read source: %w", err)
			}
			atts = append(atts, llm.Attachment{Name: storage.SourceKey(exam, topic), MIMEType: "application/pdf", Data: data})
			prompt += " Base it on the attached exam content."
		} else if !errors.Is(err, storage.ErrNotFound) {
			return "", fmt.Errorf("load source: %w", err)
		}
	}

	resp, err := s.provider.Generate(llm.WithPurpose(ctx, "learning-material"), llm.Request{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		Attachments: atts,
		Schema:      specSchema,
		MaxTokens:   8192,
	})
	if err != nil {
		return "", err
	}
	var out struct {
		Specification string `json:"specification"`
	}
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return "", &llm.ErrInvalidResponse{Content: resp.Content, Err: err}
	}
	return out.Specification, nil
}
