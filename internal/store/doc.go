// Package store persists tickers and minute-bar observations.
//
// All queries are parameterized. Observation inserts rely on the
// unique(stock, timestamp) constraint via ON CONFLICT DO NOTHING: a conflict
// is reported as model.ErrAlreadyExists and counted as a skip, never as a
// failure. Rows are insert-only; the only update is the per-ticker watermark,
// which is guarded in SQL so it can never move backwards.
package store
