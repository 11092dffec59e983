// cmd/glucoguide/root.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"mcp-glucoguide/internal/config"
	"mcp-glucoguide/internal/fooddb"
	"mcp-glucoguide/internal/glycemic"
	"mcp-glucoguide/internal/logging"
	"mcp-glucoguide/internal/models"
	"mcp-glucoguide/internal/storage"
)

var (
	configPath string
	logLevel   string
	dbPath     string
)

var rootCmd = &cobra.Command{
	Use:   "glucoguide",
	Short: "GlucoGuide - effective glycemic load and glucose risk scoring",
	Long: `GlucoGuide estimates how strongly a food portion raises blood glucose.

It computes an effective glycemic load (eGL) that accounts for the fiber,
protein and fat eaten with the carbohydrate, and adjusts it into a risk score
for a user's health profile. Results are available from the command line and
as MCP tools over HTTP.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("glucoguide version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ./glucoguide.toml or ~/.glucoguide/glucoguide.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides storage.db_path)")
}

// loadConfig applies the persistent flag overrides on top of the file and
// environment configuration.
func loadConfig() (*config.Config, error) {
	result, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	cfg := result.Config
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if dbPath != "" {
		cfg.Storage.DBPath = dbPath
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logging.NewLogger(os.Stderr, logging.LevelFromString(cfg.Logging.Level), cfg.Logging.Format)
}

// openStore opens the database and seeds the embedded food table into it
// when seeding is enabled and the database is empty.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*storage.SQLiteStorage, error) {
	stor, err := storage.NewSQLiteStorage(cfg.Storage.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	if !cfg.Storage.Seed {
		return stor, nil
	}

	table, err := fooddb.Default()
	if err != nil {
		stor.Close()
		return nil, err
	}
	n, err := stor.SeedFoods(ctx, table.Foods())
	if err != nil {
		stor.Close()
		return nil, fmt.Errorf("failed to seed foods: %w", err)
	}
	if n > 0 {
		logger.Info("seeded food database", "foods", n, "path", cfg.Storage.DBPath)
	}
	return stor, nil
}

// foodCatalog is where read-only commands look foods up.
type foodCatalog interface {
	glycemic.Resolver
	SearchFoods(ctx context.Context, query string, limit int) ([]models.Food, error)
	Categories(ctx context.Context) ([]string, error)
	Close() error
}

// builtinCatalog serves the embedded food table when no database is usable.
type builtinCatalog struct {
	*fooddb.Table
}

func (b builtinCatalog) SearchFoods(_ context.Context, query string, limit int) ([]models.Food, error) {
	return b.Search(query, limit), nil
}

func (b builtinCatalog) Categories(_ context.Context) ([]string, error) {
	return b.Table.Categories(), nil
}

func (builtinCatalog) Close() error { return nil }

// openCatalog prefers the database. It falls back to the built-in table when
// the database cannot be opened, or when seeding is off and it holds no foods.
func openCatalog(ctx context.Context, cfg *config.Config, logger *slog.Logger) (foodCatalog, error) {
	stor, err := openStore(ctx, cfg, logger)
	if err == nil && !cfg.Storage.Seed {
		n, cerr := stor.CountFoods(ctx)
		if cerr == nil && n == 0 {
			stor.Close()
			err = fmt.Errorf("database %s has no foods and seeding is disabled", cfg.Storage.DBPath)
		}
	}
	if err == nil {
		return stor, nil
	}

	table, terr := fooddb.Default()
	if terr != nil {
		return nil, err
	}
	logger.Warn("food database unavailable, using built-in food table",
		"path", cfg.Storage.DBPath, "foods", table.Len(), "error", err)
	return builtinCatalog{Table: table}, nil
}

func newCalculator(cfg *config.Config) *glycemic.Calculator {
	if cfg.Engine.UseDefaultGI {
		return glycemic.NewCalculator(glycemic.WithDefaultGI(cfg.Engine.DefaultGI))
	}
	return glycemic.NewCalculator()
}
