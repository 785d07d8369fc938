// cmd/server/commands/seed.go
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bangazon/bangazon-backend/internal/database"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load product types and demo accounts",
	Long: `Load the default product types and, on an empty database, a demo seller
with products and a demo shopper with payment types and an open cart.

Running it again does not create duplicates.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Initialize(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer database.Close(db)

		if err := database.RunMigrations(db); err != nil {
			return err
		}
		return database.SeedInitialData(db)
	},
}
