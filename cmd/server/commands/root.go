// cmd/server/commands/root.go
package commands

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bangazon/bangazon-backend/internal/config"
	"github.com/bangazon/bangazon-backend/internal/i18n"
)

// cfg is loaded once before any subcommand runs
var cfg *config.Config

// rootCmd runs the API server when no subcommand is given
var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Bangazon marketplace API",
	Long: `Bangazon marketplace API server.

Configuration is read from the environment and an optional .env file.

Subcommands:
  serve    - Run the HTTP API (default)
  migrate  - Apply the database schema
  seed     - Load product types and demo accounts`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		configureLogging(cfg.Log, cfg.IsProduction())

		if err := i18n.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize i18n: %w", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.WithError(err).Error("Command failed")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

func configureLogging(logCfg config.LogConfig, production bool) {
	if logCfg.Format == "json" || (logCfg.Format == "" && production) {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(logCfg.Level)
	if err != nil {
		logrus.WithField("level", logCfg.Level).Warn("Unknown log level, using info")
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}
