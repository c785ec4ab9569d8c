// Package provider implements the HTTP client for the upstream quote service.
//
// Endpoints used:
//   - /v8/finance/chart/{symbol}?period1=&period2=&interval=1m — minute bars
//     for a bounded window (the provider caps the span at 8 days)
//   - the same endpoint with interval=1d&range=1d doubles as symbol validation:
//     unknown symbols come back as 404 / chart-level errors
//
// The client retries 5xx and 429 responses with jittered exponential backoff.
package provider
