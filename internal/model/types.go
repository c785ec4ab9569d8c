package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrAlreadyExists is returned by store inserts that hit a uniqueness
// constraint. Callers treat it as a benign outcome, not a failure.
var ErrAlreadyExists = errors.New("already exists")

// -----------------------------------------------------------------------------
// Relational Types
// -----------------------------------------------------------------------------

// Ticker is a registered security with its sync watermark.
type Ticker struct {
	ID        int64      // Primary key, assigned on first registration
	Symbol    string     // Unique, upper-cased symbol (e.g., "AAPL")
	Name      string     // Display name captured at registration, may be empty
	Watermark *time.Time // Most recent synchronized observation, nil until first sync
}

// Observation is one minute-bar price point for a ticker.
type Observation struct {
	Timestamp time.Time       // Minute resolution, UTC
	Price     decimal.Decimal // Close price; stored as two-decimal text
}

// PriceText renders the price in the persisted form: exactly two fractional
// digits, e.g. "187.40". The quotes table stores prices as text, so every
// writer must go through this one formatting rule.
func (o Observation) PriceText() string {
	return o.Price.StringFixed(2)
}

// -----------------------------------------------------------------------------
// Transient Types
// -----------------------------------------------------------------------------

// ChunkWindow is one bounded time span submitted as a single fetch request.
type ChunkWindow struct {
	Start time.Time
	End   time.Time
}

// Span returns the window's duration.
func (w ChunkWindow) Span() time.Duration {
	return w.End.Sub(w.Start)
}

// ChunkSummary counts the outcome of persisting one chunk.
type ChunkSummary struct {
	Inserted int // New rows written
	Skipped  int // Observations already present
}

// TickerResult is the aggregate outcome for one ticker across all windows.
type TickerResult struct {
	Symbol   string
	Inserted int
	Skipped  int
	Err      error // Non-nil when the ticker failed (resolution or persistence)
}

// Failed reports whether the ticker's sync ended in failure.
func (r TickerResult) Failed() bool {
	return r.Err != nil
}

// RunSummary is the outcome of one full sync run. Every configured ticker
// appears in Results exactly once.
type RunSummary struct {
	RunID     uuid.UUID
	StartedAt time.Time
	Results   []TickerResult
}

// TotalInserted sums inserted counts across all tickers.
func (s RunSummary) TotalInserted() int {
	var n int
	for _, r := range s.Results {
		n += r.Inserted
	}
	return n
}

// TotalSkipped sums skipped counts across all tickers.
func (s RunSummary) TotalSkipped() int {
	var n int
	for _, r := range s.Results {
		n += r.Skipped
	}
	return n
}

// FailedCount returns how many tickers failed.
func (s RunSummary) FailedCount() int {
	var n int
	for _, r := range s.Results {
		if r.Failed() {
			n++
		}
	}
	return n
}
