package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tinker/quotesync/internal/chunk"
	"github.com/tinker/quotesync/internal/model"
	"github.com/tinker/quotesync/internal/provider"
	"github.com/tinker/quotesync/internal/registry"
)

// Registry resolves symbols to ticker identities.
type Registry interface {
	Resolve(ctx context.Context, symbol string) (model.Ticker, error)
}

// BarSource fetches raw minute bars for one window.
type BarSource interface {
	FetchMinuteBars(ctx context.Context, symbol string, start, end time.Time) ([]provider.Bar, error)
}

// Persister writes one chunk of observations idempotently.
type Persister interface {
	Persist(ctx context.Context, ticker model.Ticker, observations []model.Observation) (model.ChunkSummary, error)
}

// Pinger checks that the database connection is still usable. Optional.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds orchestrator settings.
type Config struct {
	LookbackDays int
	Tickers      []string
}

// Orchestrator runs the per-ticker sync pipeline.
type Orchestrator struct {
	cfg      Config
	registry Registry
	bars     BarSource
	store    Persister
	pinger   Pinger
	logger   *slog.Logger

	// now is injected for deterministic window planning in tests.
	now func() time.Time
}

// New creates an Orchestrator. pinger may be nil.
func New(cfg Config, registry Registry, bars BarSource, store Persister, pinger Pinger, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		cfg:      cfg,
		registry: registry,
		bars:     bars,
		store:    store,
		pinger:   pinger,
		logger:   logger,
		now:      time.Now,
	}
}

// Run synchronizes every configured ticker and returns the run summary.
// Every ticker appears in the summary exactly once. Run fails outright only
// on invalid configuration or when the database connection has become
// unusable; individual ticker failures are recorded and the run continues.
func (o *Orchestrator) Run(ctx context.Context) (model.RunSummary, error) {
	summary := model.RunSummary{
		RunID:     uuid.New(),
		StartedAt: o.now(),
	}
	log := o.logger.With("run_id", summary.RunID)

	windows, err := chunk.Plan(o.now(), o.cfg.LookbackDays)
	if err != nil {
		return summary, err
	}

	log.Info("starting quote sync",
		"lookback_days", o.cfg.LookbackDays,
		"tickers", len(o.cfg.Tickers),
		"windows", len(windows),
	)

	for _, symbol := range o.cfg.Tickers {
		result, storeFailed := o.syncTicker(ctx, log, symbol, windows)
		summary.Results = append(summary.Results, result)

		if storeFailed && o.pinger != nil {
			if err := o.pinger.Ping(ctx); err != nil {
				return summary, fmt.Errorf("database connection lost: %w", err)
			}
		}
	}

	log.Info("quote sync finished",
		"inserted", summary.TotalInserted(),
		"skipped", summary.TotalSkipped(),
		"failed", summary.FailedCount(),
		"duration", time.Since(summary.StartedAt),
	)

	return summary, nil
}

// syncTicker runs one ticker through resolve, fetch, and persist across all
// windows. storeFailed is true when the ticker failed on a store-backed
// operation (resolution or persistence), which prompts a connection health
// check before the next ticker.
func (o *Orchestrator) syncTicker(ctx context.Context, log *slog.Logger, symbol string, windows []model.ChunkWindow) (result model.TickerResult, storeFailed bool) {
	start := time.Now()
	result = model.TickerResult{Symbol: symbol}

	log.Info("syncing ticker", "ticker", symbol)

	ticker, err := o.registry.Resolve(ctx, symbol)
	if err != nil {
		result.Err = err
		log.Error("ticker resolution failed", "ticker", symbol, "err", err)
		// Resolution touches the store, so anything other than a rejected
		// symbol may mean the connection is gone.
		return result, !errors.Is(err, registry.ErrUnknownTicker)
	}

	for _, w := range windows {
		bars, err := o.bars.FetchMinuteBars(ctx, ticker.Symbol, w.Start, w.End)
		if err != nil {
			// Empty windows (holidays, halts) and transient provider errors
			// are handled the same way: skip this window, keep going.
			log.Warn("window fetch failed, skipping",
				"ticker", symbol,
				"window_start", w.Start,
				"window_end", w.End,
				"err", err,
			)
			continue
		}

		chunkSummary, err := o.store.Persist(ctx, ticker, normalize(bars))
		result.Inserted += chunkSummary.Inserted
		result.Skipped += chunkSummary.Skipped
		if err != nil {
			result.Err = fmt.Errorf("persist window %s: %w", w.Start.Format(time.DateOnly), err)
			log.Error("persist failed, aborting ticker",
				"ticker", symbol,
				"window_start", w.Start,
				"err", err,
			)
			return result, true
		}
	}

	log.Info("ticker synced",
		"ticker", symbol,
		"inserted", result.Inserted,
		"skipped", result.Skipped,
		"duration", time.Since(start),
	)
	return result, false
}

// normalize converts provider bars to canonical observations: unix seconds
// become UTC timestamps truncated to the minute, float closes become
// decimals.
func normalize(bars []provider.Bar) []model.Observation {
	observations := make([]model.Observation, 0, len(bars))
	for _, b := range bars {
		observations = append(observations, model.Observation{
			Timestamp: time.Unix(b.Timestamp, 0).UTC().Truncate(time.Minute),
			Price:     decimal.NewFromFloat(b.Close),
		})
	}
	return observations
}
