package command

import (
	"errors"
	"fmt"
	"strconv"

	"foodgram/database"

	"github.com/fatih/color"
	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"
)

var migrateDownAll bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Database schema migrations",
	Long:  `Apply, roll back and inspect the SQL migrations under MIGRATIONS_PATH`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply every pending migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newMigrator()
		if err != nil {
			return err
		}
		defer m.Close()

		if err := m.Up(); err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				color.Yellow("Schema is already up to date.")
				return nil
			}
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
		color.Green("✓ Migrations applied.")
		return printVersion(m)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down [n]",
	Short: "Roll back the last n migrations (default 1)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps := 1
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return fmt.Errorf("invalid step count %q", args[0])
			}
			steps = n
		}

		m, err := newMigrator()
		if err != nil {
			return err
		}
		defer m.Close()

		if migrateDownAll {
			err = m.Down()
		} else {
			err = m.Steps(-steps)
		}
		if err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				color.Yellow("Nothing to roll back.")
				return nil
			}
			return fmt.Errorf("failed to roll back migrations: %w", err)
		}
		color.Green("✓ Migrations rolled back.")
		return printVersion(m)
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newMigrator()
		if err != nil {
			return err
		}
		defer m.Close()
		return printVersion(m)
	},
}

func newMigrator() (*migrate.Migrate, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return database.NewMigrator(cfg)
}

func printVersion(m *migrate.Migrate) error {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Println("No migrations applied.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	fmt.Printf("Schema version: %d\n", version)
	if dirty {
		color.Red("Schema is dirty: a migration failed halfway and needs manual repair.")
	}
	return nil
}

func init() {
	migrateDownCmd.Flags().BoolVar(&migrateDownAll, "all", false, "roll back every migration")

	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateVersionCmd)
}
