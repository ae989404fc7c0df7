package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mind-engage/mindengage-qbank/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		// Open already migrates; running again is a no-op that reports errors plainly.
		if err := db.Migrate(cmd.Context(), a.db, a.driver); err != nil {
			return err
		}
		fmt.Printf("schema up to date (%s)\n", a.driver)
		return nil
	},
}
