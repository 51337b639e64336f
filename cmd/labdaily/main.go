package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/jbreda/labdaily/internal/platform/config"
	"github.com/jbreda/labdaily/internal/platform/dates"
	"github.com/jbreda/labdaily/internal/report"
	"github.com/jbreda/labdaily/internal/storage"
	"github.com/jbreda/labdaily/internal/summary"
	"github.com/jbreda/labdaily/internal/summary/cache"
)

func main() {
	mode := flag.String("mode", "fetch", "Run mode (fetch, refresh)")
	animals := flag.String("animals", "", "Comma-separated animal IDs (required)")
	from := flag.String("from", "", "Range start, YYYY-MM-DD")
	to := flag.String("to", "", "Range end, YYYY-MM-DD (defaults to today)")
	daysBack := flag.Int("days-back", 0, "Fetch the last N days instead of --from/--to")
	verbose := flag.Bool("verbose", false, "Log per-row fallback diagnostics")
	save := flag.Bool("save", true, "Persist fetched rows to the cache file")
	cachePath := flag.String("cache", "", "Cache file path (overrides CACHE_PATH)")
	migrate := flag.Bool("migrate", false, "Run schema migrations first (local and test databases only)")
	csvOut := flag.String("csv", "", "Write the table as CSV to this file instead of stdout")

	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := newLogger(cfg.AppEnv)

	animalIDs := splitAnimals(*animals)
	if len(animalIDs) == 0 {
		logger.Fatal().Msg("--animals is required")
	}

	r, err := resolveRange(*from, *to, *daysBack)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid date range")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	poolOpts := storage.PoolOptions{
		MaxConns:          cfg.DBMaxConnections,
		MinConns:          cfg.DBMinConnections,
		MaxConnIdleTime:   cfg.DBMaxConnIdleTime,
		MaxConnLifetime:   cfg.DBMaxConnLifetime,
		HealthCheckPeriod: cfg.DBHealthCheckPeriod,
	}

	database, err := storage.NewWithOptions(ctx, cfg.LabDSN, poolOpts, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to lab database")
	}
	defer database.Close()

	// the lab database is consumed read-only; migrations only stand up
	// local and test databases
	if *migrate {
		if err := database.Migrate(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	path := cfg.CachePath
	if *cachePath != "" {
		path = *cachePath
	}

	store, err := cache.Open(path)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open summary cache")
	}
	defer store.Close()

	assembler := summary.NewAssembler(database, summary.DefaultPolicy(), &logger, *verbose || cfg.Verbose)
	loader := summary.NewLazyLoader(store, assembler, &logger)

	opts := summary.LoadOptions{
		ForceRefetch: *mode == "refresh",
		SaveOut:      *save,
	}

	if *mode != "fetch" && *mode != "refresh" {
		logger.Fatal().Str("mode", *mode).Msg("unknown mode")
	}

	table, err := loader.Load(ctx, animalIDs, r, opts)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info().Msg("stopped")
			return
		}

		logger.Fatal().Err(err).Msg("failed to load daily summaries")
	}

	if err := writeOutput(table, *csvOut); err != nil {
		logger.Fatal().Err(err).Msg("failed to write output")
	}

	logger.Info().
		Int("rows", table.Len()).
		Str("from", r.Min.String()).
		Str("to", r.Max.String()).
		Msg("done")
}

func newLogger(appEnv string) zerolog.Logger {
	if appEnv == "local" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func splitAnimals(raw string) []string {
	var ids []string

	for _, part := range strings.Split(raw, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}

	return ids
}

func resolveRange(from, to string, daysBack int) (dates.Range, error) {
	if daysBack > 0 {
		if from != "" || to != "" {
			return dates.Range{}, errors.New("--days-back cannot be combined with --from/--to")
		}

		return dates.Window(dates.Today(), daysBack), nil
	}

	if from == "" {
		return dates.Range{}, errors.New("either --from or --days-back is required")
	}

	if to == "" {
		to = dates.Today().String()
	}

	return dates.ParseRange(from, to)
}

func writeOutput(table summary.Table, csvPath string) error {
	if csvPath == "" {
		return report.WriteText(os.Stdout, table)
	}

	f, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}

	if err := report.WriteCSV(f, table); err != nil {
		_ = f.Close()

		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close csv file: %w", err)
	}

	return nil
}
