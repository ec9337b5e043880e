package command

import (
	"fmt"

	"foodgram/internal/config"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Load and validate the configuration without starting anything",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("could not load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		color.Green("✓ Configuration is valid.")
		fmt.Printf("Environment:   %s\n", cfg.GoEnv)
		fmt.Printf("Listen:        %s\n", cfg.Addr())
		fmt.Printf("Token store:   %s\n", cfg.TokenStore)
		fmt.Printf("Image storage: %s\n", cfg.ImageStorage)
		fmt.Printf("Page size:     %d\n", cfg.PageSize)
		fmt.Printf("Migrations:    %s (auto: %t)\n", cfg.MigrationsPath, cfg.AutoMigrate)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configCheckCmd)
}
