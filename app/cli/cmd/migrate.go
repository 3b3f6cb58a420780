package cmd

import (
	"techshop/pkg/database"
	"techshop/pkg/logger"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update every table the service owns",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, closeDB, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB()

		if err := database.Migrate(db); err != nil {
			return err
		}

		logger.Info("migration finished", "tables", len(database.Models()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
