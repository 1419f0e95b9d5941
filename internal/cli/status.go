package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/vietddude/catalog/internal/core/config"
	"github.com/vietddude/catalog/internal/core/domain"
	"github.com/vietddude/catalog/internal/infra/storage/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Run:   runMigrate,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the database schema version and product count",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(statusCmd)
}

func openDB(ctx context.Context, cfg *config.AppConfig) *postgres.DB {
	if cfg.Database.URL == "" {
		slog.Error("database.url is not configured")
		os.Exit(1)
	}

	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	return db
}

func runMigrate(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	db := openDB(ctx, loadConfig())
	defer func() {
		_ = db.Close()
	}()

	if err := db.Migrate(ctx); err != nil {
		slog.Error("Failed to migrate database", "error", err)
		os.Exit(1)
	}

	version, err := db.MigrationVersion(ctx)
	if err != nil {
		slog.Error("Failed to read migration version", "error", err)
		os.Exit(1)
	}
	slog.Info("Database migrated", "version", version)
}

func runStatus(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	db := openDB(ctx, loadConfig())
	defer func() {
		_ = db.Close()
	}()

	version, err := db.MigrationVersion(ctx)
	if err != nil {
		slog.Error("Failed to read migration version", "error", err)
		os.Exit(1)
	}

	_, total, err := postgres.NewProductRepo(db).FindAll(ctx, domain.PageRequest{Index: 0, Size: 1})
	if err != nil {
		slog.Error("Failed to count products", "error", err)
		os.Exit(1)
	}

	stats := db.Stats()
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Property", "Value")
	table.Append([]string{"Schema version", fmt.Sprintf("%d", version)})
	table.Append([]string{"Products", fmt.Sprintf("%d", total)})
	table.Append([]string{"Open connections", fmt.Sprintf("%d", stats.OpenConnections)})
	table.Render()
}
