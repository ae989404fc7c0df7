package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mind-engage/mindengage-qbank/internal/events"
	"github.com/mind-engage/mindengage-qbank/internal/generation"
	"github.com/mind-engage/mindengage-qbank/internal/qbank"
	"github.com/mind-engage/mindengage-qbank/internal/storage"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one batch of questions and store it",
	RunE: func(cmd *cobra.Command, args []string) error {
		exam, _ := cmd.Flags().GetString("exam")
		topics, _ := cmd.Flags().GetStringSlice("topic")
		n, _ := cmd.Flags().GetInt("num")

		a, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		p, err := a.provider(cmd.Context())
		if err != nil {
			return err
		}
		blobs, err := storage.NewFSStore(a.cfg.BlobBasePath)
		if err != nil {
			return err
		}
		g := a.cfg.Generation
		orch := generation.NewOrchestrator(p, qbank.NewSQLStore(a.db, a.driver), blobs, a.log, events.NewEventRepo(a.db), generation.Options{
			Concurrency:          g.Concurrency,
			MaxQuestionsPerTopic: g.MaxQuestionsPerTopic,
			MaxTokens:            g.MaxTokens,
		})
		res, err := orch.Generate(cmd.Context(), generation.Request{ExamType: exam, Topics: topics, NumQuestions: n})
		if err != nil {
			return fmt.Errorf("generate: %w", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

func init() {
	generateCmd.Flags().String("exam", "CFA1", "Exam type")
	generateCmd.Flags().StringSlice("topic", nil, "Topic id (repeatable)")
	generateCmd.Flags().Int("num", 5, "Questions per topic")
	_ = generateCmd.MarkFlagRequired("topic")
}
