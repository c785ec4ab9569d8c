// Package model defines the domain types shared across the quote syncer.
//
// Relational types (Ticker, Observation) mirror the database schema in schema.sql:
//   - stocks(id, ticker unique, name, last_update nullable)
//   - quotes(id, stock, price two-decimal text, timestamp, unique(stock, timestamp))
//
// Transient types (ChunkWindow, ChunkSummary, TickerResult, RunSummary) exist
// only for the duration of a single sync run.
package model
