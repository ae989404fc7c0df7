package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/mind-engage/mindengage-qbank/internal/formats/cfa"
)

var rootCmd = &cobra.Command{
	Use:           "qbank",
	Short:         "Question bank service",
	Long:          "qbank generates exam questions per topic and serves per-user question sets with progress tracking.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file (overrides QBANK_CONFIG)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(uploadSourceCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
