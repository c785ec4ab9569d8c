package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/tinker/quotesync/internal/model"
)

// Querier is the subset of pgxpool.Pool the store needs.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store reads and writes the stocks and quotes tables.
type Store struct {
	db     Querier
	logger *slog.Logger
}

// New creates a Store.
func New(db Querier, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// FindTickerBySymbol looks up a registered ticker. The second return value is
// false when the symbol is not registered.
func (s *Store) FindTickerBySymbol(ctx context.Context, symbol string) (model.Ticker, bool, error) {
	var (
		t    model.Ticker
		name *string
	)
	err := s.db.QueryRow(ctx,
		`SELECT id, ticker, name, last_update FROM stocks WHERE ticker = $1`,
		symbol,
	).Scan(&t.ID, &t.Symbol, &name, &t.Watermark)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Ticker{}, false, nil
	}
	if err != nil {
		return model.Ticker{}, false, fmt.Errorf("find ticker %s: %w", symbol, err)
	}
	if name != nil {
		t.Name = *name
	}
	return t, true, nil
}

// InsertTicker registers a new symbol with a nil watermark. A concurrent
// registration of the same symbol surfaces as model.ErrAlreadyExists; the
// caller re-reads the winning row.
func (s *Store) InsertTicker(ctx context.Context, symbol, name string) (model.Ticker, error) {
	var id int64
	err := s.db.QueryRow(ctx,
		`INSERT INTO stocks (ticker, name) VALUES ($1, $2)
		 ON CONFLICT (ticker) DO NOTHING
		 RETURNING id`,
		symbol, name,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Ticker{}, fmt.Errorf("insert ticker %s: %w", symbol, model.ErrAlreadyExists)
	}
	if err != nil {
		return model.Ticker{}, fmt.Errorf("insert ticker %s: %w", symbol, err)
	}
	return model.Ticker{ID: id, Symbol: symbol, Name: name}, nil
}

// UpdateTickerWatermark advances a ticker's watermark to ts. The update is
// monotonic: a ts at or below the stored watermark leaves the row untouched.
func (s *Store) UpdateTickerWatermark(ctx context.Context, tickerID int64, ts time.Time) error {
	_, err := s.db.Exec(ctx,
		`UPDATE stocks SET last_update = $2
		 WHERE id = $1 AND (last_update IS NULL OR last_update < $2)`,
		tickerID, ts,
	)
	if err != nil {
		return fmt.Errorf("update watermark for ticker %d: %w", tickerID, err)
	}
	return nil
}

// FindObservation reports whether an observation exists for (ticker, ts).
func (s *Store) FindObservation(ctx context.Context, tickerID int64, ts time.Time) (bool, error) {
	var id int64
	err := s.db.QueryRow(ctx,
		`SELECT id FROM quotes WHERE stock = $1 AND "timestamp" = $2`,
		tickerID, ts,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("find observation: %w", err)
	}
	return true, nil
}

// InsertObservation writes one observation, with the price rendered as
// two-decimal text. A uniqueness conflict on (stock, timestamp) is returned
// as model.ErrAlreadyExists.
func (s *Store) InsertObservation(ctx context.Context, tickerID int64, ts time.Time, price decimal.Decimal) error {
	tag, err := s.db.Exec(ctx,
		`INSERT INTO quotes (stock, price, "timestamp") VALUES ($1, $2, $3)
		 ON CONFLICT (stock, "timestamp") DO NOTHING`,
		tickerID, price.StringFixed(2), ts,
	)
	if err != nil {
		return fmt.Errorf("insert observation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrAlreadyExists
	}
	return nil
}

// Persist writes one chunk of observations idempotently and advances the
// ticker's watermark past the newest inserted row. Observations already
// present are counted as skipped.
func (s *Store) Persist(ctx context.Context, ticker model.Ticker, observations []model.Observation) (model.ChunkSummary, error) {
	start := time.Now()

	var (
		summary model.ChunkSummary
		maxTS   time.Time
	)

	for _, obs := range observations {
		exists, err := s.FindObservation(ctx, ticker.ID, obs.Timestamp)
		if err != nil {
			return summary, err
		}
		if exists {
			summary.Skipped++
			continue
		}

		err = s.InsertObservation(ctx, ticker.ID, obs.Timestamp, obs.Price)
		if errors.Is(err, model.ErrAlreadyExists) {
			// Lost a race between the existence check and the insert.
			summary.Skipped++
			continue
		}
		if err != nil {
			return summary, err
		}

		summary.Inserted++
		if obs.Timestamp.After(maxTS) {
			maxTS = obs.Timestamp
		}
	}

	if summary.Inserted > 0 {
		if err := s.UpdateTickerWatermark(ctx, ticker.ID, maxTS); err != nil {
			return summary, err
		}
	}

	s.logger.Debug("chunk persisted",
		"ticker", ticker.Symbol,
		"inserted", summary.Inserted,
		"skipped", summary.Skipped,
		"duration", time.Since(start),
	)

	return summary, nil
}
