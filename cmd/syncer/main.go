package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/tinker/quotesync/internal/config"
	"github.com/tinker/quotesync/internal/database"
	"github.com/tinker/quotesync/internal/model"
	"github.com/tinker/quotesync/internal/provider"
	"github.com/tinker/quotesync/internal/registry"
	"github.com/tinker/quotesync/internal/store"
	"github.com/tinker/quotesync/internal/syncer"
	"github.com/tinker/quotesync/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/syncer.yaml", "path to config file")
	days := flag.Int("days", 0, "lookback days override (1-28, 0 = use config)")
	logFile := flag.String("log-file", "", "log file path override")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	// .env is optional; config expands ${VAR} references from the environment.
	_ = godotenv.Load()

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	// Flag overrides
	if *days != 0 {
		cfg.Sync.LookbackDays = *days
	}
	if *logFile != "" {
		cfg.Logging.File = *logFile
	}
	if *debug {
		cfg.Logging.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid config:", err)
		os.Exit(1)
	}

	logger, closeLog, err := setupLogging(cfg.Logging)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to set up logging:", err)
		os.Exit(1)
	}
	defer closeLog()
	slog.SetDefault(logger)

	logger.Info("starting quote syncer",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
		"lookback_days", cfg.Sync.LookbackDays,
		"tickers", len(cfg.Sync.Tickers),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	logger.Info("connecting to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Name,
	)

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	logger.Info("database connected")

	client := provider.NewClient(
		cfg.Provider.BaseURL,
		provider.WithLogger(logger),
		provider.WithTimeout(cfg.Provider.Timeout),
		provider.WithRetries(cfg.Provider.MaxRetries, cfg.Provider.RetryBackoff),
	)

	quoteStore := store.New(pool, logger)
	tickerRegistry := registry.New(quoteStore, client, logger)

	orchestrator := syncer.New(
		syncer.Config{
			LookbackDays: cfg.Sync.LookbackDays,
			Tickers:      cfg.Sync.Tickers,
		},
		tickerRegistry,
		client,
		quoteStore,
		pool,
		logger,
	)

	summary, err := orchestrator.Run(ctx)
	report(logger, summary)
	if err != nil {
		logger.Error("run aborted", "error", err)
		os.Exit(1)
	}
}

// report logs the per-ticker outcome block. Every configured ticker appears
// exactly once, either with its counts or with its failure reason.
func report(logger *slog.Logger, summary model.RunSummary) {
	logger.Info("sync summary", "run_id", summary.RunID)
	for _, r := range summary.Results {
		if r.Failed() {
			logger.Error("ticker failed",
				"ticker", r.Symbol,
				"inserted", r.Inserted,
				"skipped", r.Skipped,
				"reason", r.Err,
			)
			continue
		}
		logger.Info("ticker complete",
			"ticker", r.Symbol,
			"inserted", r.Inserted,
			"skipped", r.Skipped,
		)
	}
	logger.Info("run complete",
		"tickers", len(summary.Results),
		"failed", summary.FailedCount(),
		"inserted", summary.TotalInserted(),
		"skipped", summary.TotalSkipped(),
	)
}

// setupLogging builds the slog logger: text handler on stdout, optionally
// teeing into a log file. The returned closer is a no-op when no file is set.
func setupLogging(cfg config.LoggingConfig) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if cfg.Level == "debug" {
		level = slog.LevelDebug
	}

	var w io.Writer = os.Stdout
	closeLog := func() {}

	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = io.MultiWriter(os.Stdout, f)
		closeLog = func() { f.Close() }
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	return logger, closeLog, nil
}
