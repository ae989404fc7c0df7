package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mind-engage/mindengage-qbank/internal/config"
	"github.com/mind-engage/mindengage-qbank/internal/db"
	"github.com/mind-engage/mindengage-qbank/internal/llm"
	"github.com/mind-engage/mindengage-qbank/internal/logger"
)

type app struct {
	cfg    config.Config
	log    *logger.Logger
	db     *sql.DB
	driver db.Driver
}

// bootstrap loads config, builds the logger and opens (and migrates) the
// database. Callers must call close.
func bootstrap(cmd *cobra.Command) (*app, error) {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		if err := os.Setenv("QBANK_CONFIG", p); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(logger.Options{
		Mode:     cfg.LogMode,
		Level:    cfg.LogLevel,
		Redact:   cfg.LogRedact,
		HashSalt: cfg.AuthHMACSecret,
	})
	if err != nil {
		return nil, err
	}
	driver, err := db.ParseDriver(cfg.DBDriver)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()
	h, err := db.Open(ctx, driver, cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	return &app{cfg: cfg, log: log, db: h, driver: driver}, nil
}

func (a *app) close() {
	_ = a.db.Close()
	a.log.Sync()
}

func llmConfig(c config.LLM) llm.Config {
	out := llm.DefaultConfig()
	out.Provider = c.Provider
	if c.Timeout > 0 {
		out.Timeout = c.Timeout
	}
	out.Gemini = llm.GeminiConfig{APIKey: c.GeminiAPIKey, Model: c.GeminiModel}
	out.OpenAI = llm.OpenAIConfig{APIKey: c.OpenAIAPIKey, Model: c.OpenAIModel, BaseURL: c.OpenAIBaseURL}
	out.Anthropic = llm.AnthropicConfig{APIKey: c.AnthropicAPIKey, Model: c.AnthropicModel}
	if c.RetryAttempts > 0 {
		out.Retry.MaxAttempts = c.RetryAttempts
	}
	return out
}

func (a *app) provider(ctx context.Context) (llm.Provider, error) {
	return llm.NewProvider(ctx, llmConfig(a.cfg.LLM), a.log)
}
