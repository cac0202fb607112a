// Package main is the entry point for the Bookaway trip scraper.
// Its sole responsibility is wiring dependencies together and driving one
// run: load catalog → fetch (bounded parallel) → bulk-replace the table.
// No business logic belongs here.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver for goose
	"github.com/pressly/goose/v3"

	"github.com/farepoint/bookaway-scraper/internal/bookaway"
	"github.com/farepoint/bookaway-scraper/internal/catalog"
	"github.com/farepoint/bookaway-scraper/internal/config"
	"github.com/farepoint/bookaway-scraper/internal/repo"
	"github.com/farepoint/bookaway-scraper/internal/scraper"
	"github.com/farepoint/bookaway-scraper/migrations"
)

func main() {
	start := time.Now()

	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// JSON handler for machine-readable output; every line of a run carries
	// the same run_id so interleaved runs can be told apart in aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})).With("run_id", uuid.NewString())
	slog.SetDefault(logger)

	// --- Route catalog ----------------------------------------------------
	routes, err := catalog.Load(cfg.RoutesFile)
	if err != nil {
		logger.Error("route catalog error", "file", cfg.RoutesFile, "error", err)
		os.Exit(1)
	}
	logger.Info("route catalog loaded", "file", cfg.RoutesFile, "routes", len(routes))

	// --- Database ---------------------------------------------------------
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the store is reachable before spending time on network fetches.
	if err := pool.Ping(ctx); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("database connection established")

	if err := migrate(ctx, cfg.DatabaseURL); err != nil {
		logger.Error("migration error", "error", err)
		os.Exit(1)
	}

	// --- Fetch phase ------------------------------------------------------
	client := bookaway.NewClient(logger, cfg.HTTPTimeout)
	s := scraper.New(client, logger, cfg.Days, cfg.Concurrency)

	records, stats := s.Run(ctx, routes)

	// A run where every unit failed must not wipe the table.
	if len(records) == 0 {
		logger.Error("no records scraped, leaving bookaway_trips untouched",
			"units", stats.Units, "failed_units", len(stats.FailedUnits))
		os.Exit(1)
	}

	// --- Load phase -------------------------------------------------------
	store := repo.NewTripStore(pool, cfg.ChunkSize, logger)

	imported, err := store.ReplaceAll(ctx, records)
	if err != nil {
		logger.Error("bulk load failed", "rows_committed", imported, "error", err)
		os.Exit(1)
	}

	elapsed := time.Since(start)
	logger.Info("import completed",
		"records", imported,
		"units", stats.Units,
		"failed_units", len(stats.FailedUnits),
		"skipped_entries", stats.SkippedEntries,
		"elapsed_seconds", elapsed.Seconds())
	fmt.Printf("Imported %s records in %.2f seconds.\n", humanize.Comma(int64(imported)), elapsed.Seconds())
}

// migrate applies any pending migrations. The scraper owns bookaway_trips,
// so the binary keeps the schema current itself rather than assuming an
// external migration step.
func migrate(ctx context.Context, databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("create goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
