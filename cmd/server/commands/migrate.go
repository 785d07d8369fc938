// cmd/server/commands/migrate.go
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bangazon/bangazon-backend/internal/database"
)

var withSeed bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Long: `Create or update tables and indexes for every model.

Examples:
  server migrate          # Apply the schema
  server migrate --seed   # Apply the schema and load seed data`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Initialize(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer database.Close(db)

		if err := database.RunMigrations(db); err != nil {
			return err
		}
		if withSeed {
			return database.SeedInitialData(db)
		}
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&withSeed, "seed", false, "Load seed data after migrating")
}
