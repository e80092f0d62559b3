package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"alfredoptarigan/resume-matcher/internal/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg := config.Load()

		db, err := config.OpenDatabase(cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := config.Migrate(db); err != nil {
			return err
		}

		log.Println("✅ Database migrated")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
