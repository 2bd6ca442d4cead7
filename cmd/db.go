package cmd

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"github.com/mkobayashi/ytingest/internal/config"
)

// dbCmd represents the db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database operations",
	Long:  `Operations for managing the ytingest database schema.`,
}

// dbMigrateCmd applies pending schema migrations
var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	Long:  `Apply pending SQL migrations to the configured database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Load configuration
		cfg, err := config.NewConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		migrationsPath, _ := cmd.Flags().GetString("path")

		m, err := migrate.New("file://"+migrationsPath, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to initialize migrations: %w", err)
		}
		defer m.Close()

		if err := m.Up(); err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				fmt.Println("Database schema is already up to date.")
				return nil
			}
			return fmt.Errorf("failed to apply migrations: %w", err)
		}

		fmt.Println("Migrations applied successfully.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbMigrateCmd)

	dbMigrateCmd.Flags().String("path", "migrations", "Path to the migrations directory")
}
