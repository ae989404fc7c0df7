package llm

import (
	"context"
	"time"

	"github.com/mind-engage/mindengage-qbank/internal/logger"
)

// LoggingProvider logs every LLM request with latency and token usage.
type LoggingProvider struct {
	inner Provider
	log   *logger.Logger
}

func WithLogging(p Provider, log *logger.Logger) Provider {
	if log == nil {
		log = logger.Nop()
	}
	return &LoggingProvider{inner: p, log: log}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)

	kv := []interface{}{
		"model", l.inner.ModelID(),
		"purpose", PurposeFrom(ctx),
		"latency_ms", time.Since(start).Milliseconds(),
		"attachments", len(req.Attachments),
	}
	if resp != nil {
		kv = append(kv, "input_tokens", resp.Usage.InputTokens, "output_tokens", resp.Usage.OutputTokens)
	}
	if err != nil {
		l.log.Warn("llm request failed", append(kv, "err", err)...)
	} else {
		l.log.Debug("llm request", kv...)
	}
	return resp, err
}

func (l *LoggingProvider) ModelID() string { return l.inner.ModelID() }

func (l *LoggingProvider) AcceptsAttachments() bool { return AcceptsAttachments(l.inner) }
