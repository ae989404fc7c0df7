package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mind-engage/mindengage-qbank/internal/config"
	"github.com/mind-engage/mindengage-qbank/internal/formats"
	"github.com/mind-engage/mindengage-qbank/internal/storage"
)

var uploadSourceCmd = &cobra.Command{
	Use:   "upload-source <exam> <topic> <file.pdf>",
	Short: "Store a topic's source PDF used to ground generation",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		exam, topic, path := args[0], args[1], args[2]
		if err := formats.ValidateTopics(exam, []string{topic}); err != nil {
			return err
		}
		if p, _ := cmd.Flags().GetString("config"); p != "" {
			if err := os.Setenv("QBANK_CONFIG", p); err != nil {
				return err
			}
		}
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		blobs, err := storage.NewFSStore(cfg.BlobBasePath)
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		key, err := blobs.Put(storage.SourceKey(exam, topic), f)
		if err != nil {
			return err
		}
		fmt.Printf("stored %s\n", key)
		return nil
	},
}
