package command

import (
	"context"
	"fmt"
	"time"

	"foodgram/database"
	"foodgram/internal/microservices/http-api/repository"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "API token maintenance",
}

var tokensPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete expired and revoked tokens from the postgres token store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.TokenStore != "postgres" {
			color.Yellow("TOKEN_STORE is %q: redis expires tokens on its own.", cfg.TokenStore)
			return nil
		}

		// the CLI never migrates implicitly
		cfg.AutoMigrate = false
		db, err := database.ConnectDB(cfg, log)
		if err != nil {
			return err
		}
		defer database.Close(db)

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		n, err := repository.NewAuthTokenRepository(db).DeleteExpired(ctx)
		if err != nil {
			return fmt.Errorf("failed to prune tokens: %w", err)
		}
		color.Green("✓ Removed %d token(s).", n)
		return nil
	},
}

func init() {
	tokensCmd.AddCommand(tokensPruneCmd)
}
