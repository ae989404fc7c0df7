package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mind-engage/mindengage-qbank/internal/events"
	"github.com/mind-engage/mindengage-qbank/internal/formats"
	"github.com/mind-engage/mindengage-qbank/internal/llm"
	"github.com/mind-engage/mindengage-qbank/internal/logger"
	"github.com/mind-engage/mindengage-qbank/internal/qbank"
	"github.com/mind-engage/mindengage-qbank/internal/storage"
)

// BatchWriter persists one generation call as a batch.
type BatchWriter interface {
	InsertBatch(ctx context.Context, qs []qbank.Question) (int64, []qbank.Question, error)
}

type Options struct {
	Concurrency          int
	MaxQuestionsPerTopic int
	MaxTokens            int
}

// Orchestrator calls the generator once per topic and stores everything a
// call produced under a single new batch number.
type Orchestrator struct {
	provider llm.Provider
	store    BatchWriter
	blobs    storage.BlobStore
	log      *logger.Logger
	events   qbank.EventSink
	opts     Options
}

func NewOrchestrator(p llm.Provider, store BatchWriter, blobs storage.BlobStore, log *logger.Logger, sink qbank.EventSink, opts Options) *Orchestrator {
	if log == nil {
		log = logger.Nop()
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 4
	}
	if opts.MaxQuestionsPerTopic < 1 {
		opts.MaxQuestionsPerTopic = 20
	}
	if opts.MaxTokens < 1 {
		opts.MaxTokens = 8192
	}
	return &Orchestrator{provider: p, store: store, blobs: blobs, log: log, events: sink, opts: opts}
}

type Request struct {
	ExamType     string   `json:"exam_type"`
	Topics       []string `json:"topics"`
	NumQuestions int      `json:"num_questions"`
}

type Result struct {
	GenerationID   string           `json:"generation_id"`
	TestID         int64            `json:"test_id"`
	ExamType       string           `json:"exam_type"`
	Questions      []qbank.Question `json:"questions"`
	TotalQuestions int              `json:"total_questions"`
}

func (o *Orchestrator) validate(req *Request) (formats.Profile, error) {
	if req.NumQuestions < 1 || req.NumQuestions > o.opts.MaxQuestionsPerTopic {
		return formats.Profile{}, fmt.Errorf("%w: num_questions must be in 1..%d", qbank.ErrInvalidInput, o.opts.MaxQuestionsPerTopic)
	}
	seen := map[string]bool{}
	topics := req.Topics[:0:0]
	for _, t := range req.Topics {
		t = strings.TrimSpace(t)
		if t != "" && !seen[t] {
			seen[t] = true
			topics = append(topics, t)
		}
	}
	if len(topics) == 0 {
		return formats.Profile{}, fmt.Errorf("%w: at least one topic required", qbank.ErrInvalidInput)
	}
	req.Topics = topics
	if err := formats.ValidateTopics(req.ExamType, topics); err != nil {
		return formats.Profile{}, fmt.Errorf("%w: %v", qbank.ErrInvalidInput, err)
	}
	p, _ := formats.Lookup(req.ExamType)
	return p, nil
}

// Generate produces req.NumQuestions questions per topic. Either every topic
// succeeds and the whole batch is stored, or nothing is.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (Result, error) {
	profile, err := o.validate(&req)
	if err != nil {
		return Result{}, err
	}
	genID := uuid.NewString()
	log := o.log.With("generation_id", genID, "exam_type", req.ExamType)
	ctx = llm.WithPurpose(ctx, "question-gen")

	perTopic := make([][]qbank.Question, len(req.Topics))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.Concurrency)
	for i, id := range req.Topics {
		topic := formats.Topic{ID: id, Title: id}
		for _, t := range profile.Topics {
			if t.ID == id {
				topic = t
			}
		}
		g.Go(func() error {
			qs, err := o.generateTopic(gctx, profile, topic, req.NumQuestions)
			if err != nil {
				return fmt.Errorf("generate %s: %w", id, err)
			}
			perTopic[i] = qs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("generation failed", "err", err)
		return Result{}, err
	}

	var all []qbank.Question
	for _, qs := range perTopic {
		all = append(all, qs...)
	}
	batch, stored, err := o.store.InsertBatch(ctx, all)
	if err != nil {
		return Result{}, fmt.Errorf("store batch: %w", err)
	}
	log.Info("batch generated", "batch_number", batch, "topics", len(req.Topics), "questions", len(stored))
	if o.events != nil {
		payload := map[string]any{"generation_id": genID, "exam_type": req.ExamType, "topics": req.Topics, "questions": len(stored)}
		if err := o.events.Emit(ctx, events.BatchGenerated, strconv.FormatInt(batch, 10), payload); err != nil {
			log.Warn("event append failed", "err", err)
		}
	}
	return Result{
		GenerationID:   genID,
		TestID:         batch,
		ExamType:       req.ExamType,
		Questions:      stored,
		TotalQuestions: len(stored),
	}, nil
}

func (o *Orchestrator) generateTopic(ctx context.Context, p formats.Profile, t formats.Topic, n int) ([]qbank.Question, error) {
	var atts []llm.Attachment
	if llm.AcceptsAttachments(o.provider) {
		pdf, err := o.loadSource(p.Key, t.ID)
		if err != nil {
			return nil, err
		}
		if pdf != nil {
			atts = append(atts, llm.Attachment{Name: storage.SourceKey(p.Key, t.ID), MIMEType: "application/pdf", Data: pdf})
		}
	}

	resp, err := o.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: userPrompt(p, t, n, len(atts) > 0)}},
		Attachments: atts,
		Schema:      questionSchema,
		MaxTokens:   o.opts.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	var out generated
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: err}
	}
	if len(out.Questions) == 0 {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: errors.New("no questions returned")}
	}
	if len(out.Questions) > n {
		out.Questions = out.Questions[:n]
	}
	qs := make([]qbank.Question, len(out.Questions))
	for i, g := range out.Questions {
		qs[i] = qbank.Question{
			ExamType:    p.Key,
			Topic:       t.ID,
			TopicNumber: i + 1,
			Question:    g.Question,
			Answer1:     g.Answer1,
			Answer2:     g.Answer2,
			Answer3:     g.Answer3,
			Answer4:     g.Answer4,
			Solution:    g.Solution,
		}
		if err := qs[i].Validate(); err != nil {
			return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: err}
		}
	}
	return qs, nil
}

// loadSource returns the topic PDF, or nil when none is stored.
func (o *Orchestrator) loadSource(exam, topic string) ([]byte, error) {
	if o.blobs == nil {
		return nil, nil
	}
	rc, err := o.blobs.Get(storage.SourceKey(exam, topic))
	if errors.Is(err, storage.ErrNotFound) {
		o.log.Debug("no source material", "exam_type", exam, "topic", topic)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load source: %w", err)
	}
	defer rc.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rc); err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	return buf.Bytes(), nil
}
