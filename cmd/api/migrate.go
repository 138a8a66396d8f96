package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/resume-analyzer/internal/infra/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the analyses table in the configured database",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := cfg.NewLogger(os.Stderr)

		store, err := db.Open(cmd.Context(), cfg.Database.URL)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Store.Migrate(cmd.Context()); err != nil {
			return err
		}
		log.Info("migration complete", "driver", store.Driver)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
