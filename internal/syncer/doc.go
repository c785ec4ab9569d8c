// Package syncer drives one run of quote synchronization.
//
// Tickers are processed strictly sequentially, and within a ticker the
// planned windows run oldest-first so watermarks only ever advance. Failures
// are contained at the smallest useful scope: a window fetch failure skips
// that window, an unknown ticker fails that ticker, and only an unusable
// database connection aborts the run.
package syncer
