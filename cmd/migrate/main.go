package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Rrens/chatbot-api/internal/config"
	"github.com/Rrens/chatbot-api/internal/logger"
	"github.com/Rrens/chatbot-api/internal/repository/mongo"
)

var (
	cfg       *config.Config
	logCloser io.Closer
	source    string
)

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage MongoDB indexes for the chatbot API",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load .env file if it exists
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logCloser, err = logger.Setup(cfg.Logging, cfg.Server.IsProduction())
		if err != nil {
			return fmt.Errorf("set up logger: %w", err)
		}

		if source == "" {
			source = cfg.Migrations.Source
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	},
	SilenceUsage: true,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log.Info().Str("database", cfg.Mongo.Database).Str("source", source).Msg("Applying migrations")
		return mongo.RunMigrations(cfg.Mongo.URI, cfg.Mongo.Database, source)
	},
}

var downCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Roll back migrations (default 1 step)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps := 1
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid steps %q: %w", args[0], err)
			}
			steps = n
		}

		log.Info().Str("database", cfg.Mongo.Database).Int("steps", steps).Msg("Rolling back migrations")
		return mongo.RollbackMigrations(cfg.Mongo.URI, cfg.Mongo.Database, source, steps)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&source, "source", "", "migration source URL (defaults to migrations.source)")

	rootCmd.AddCommand(upCmd)
	rootCmd.AddCommand(downCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
