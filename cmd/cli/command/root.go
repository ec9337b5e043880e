package command

// root.go defines the root command of the operator CLI and the shared config loading.

import (
	"fmt"
	"log/slog"
	"os"

	"foodgram/internal/config"
	"foodgram/internal/logger"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "foodgram-cli",
	Short: "foodgram-cli - Foodgram operator tooling",
	Long: `foodgram-cli runs maintenance tasks against a Foodgram deployment:
- apply or roll back database migrations
- check the environment configuration
- prune expired API tokens

Configuration is read from .env and the environment, the same way the API server does.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		color.Red("✗ %v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(tokensCmd)
}

// loadConfig loads and validates the configuration for commands that touch the database.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("could not load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	log := logger.NewWithWriter(logger.Config{Level: "warn", Format: cfg.LogFormat}, os.Stderr)
	return cfg, log, nil
}
