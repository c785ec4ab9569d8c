// Package registry resolves ticker symbols to their stored identities,
// registering previously unseen symbols after validating them upstream.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tinker/quotesync/internal/model"
)

// ErrUnknownTicker is returned when a symbol is neither registered nor
// verifiable against the provider.
var ErrUnknownTicker = errors.New("unknown ticker")

// TickerStore is the persistence surface the registry needs.
type TickerStore interface {
	FindTickerBySymbol(ctx context.Context, symbol string) (model.Ticker, bool, error)
	InsertTicker(ctx context.Context, symbol, name string) (model.Ticker, error)
}

// SymbolValidator checks a symbol against the provider. ok=false means the
// provider does not recognize the symbol; err is reserved for transport
// failures.
type SymbolValidator interface {
	ValidateSymbol(ctx context.Context, symbol string) (name string, ok bool, err error)
}

// Registry resolves symbols to ticker identities.
type Registry struct {
	store     TickerStore
	validator SymbolValidator
	logger    *slog.Logger
}

// New creates a Registry.
func New(store TickerStore, validator SymbolValidator, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{store: store, validator: validator, logger: logger}
}

// Resolve returns the stored identity for symbol, registering it first if the
// provider confirms it denotes a tradable instrument. Registered symbols
// resolve from the store alone, with no provider call.
func (r *Registry) Resolve(ctx context.Context, symbol string) (model.Ticker, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	t, ok, err := r.store.FindTickerBySymbol(ctx, symbol)
	if err != nil {
		return model.Ticker{}, err
	}
	if ok {
		return t, nil
	}

	r.logger.Debug("validating unregistered symbol", "ticker", symbol)
	name, valid, err := r.validator.ValidateSymbol(ctx, symbol)
	if err != nil {
		return model.Ticker{}, fmt.Errorf("%w: %s: validation failed: %v", ErrUnknownTicker, symbol, err)
	}
	if !valid {
		return model.Ticker{}, fmt.Errorf("%w: %s: not listed by provider", ErrUnknownTicker, symbol)
	}

	t, err = r.store.InsertTicker(ctx, symbol, name)
	if errors.Is(err, model.ErrAlreadyExists) {
		// Another run registered the symbol between our lookup and insert.
		t, ok, err = r.store.FindTickerBySymbol(ctx, symbol)
		if err != nil {
			return model.Ticker{}, err
		}
		if !ok {
			return model.Ticker{}, fmt.Errorf("ticker %s vanished after duplicate insert", symbol)
		}
		return t, nil
	}
	if err != nil {
		return model.Ticker{}, err
	}

	r.logger.Info("registered new ticker",
		"ticker", symbol,
		"name", name,
		"id", t.ID,
	)
	return t, nil
}
