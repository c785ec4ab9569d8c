package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinker/quotesync/internal/model"
)

type fakeStore struct {
	tickers map[string]model.Ticker
	nextID  int64

	insertErr   error
	missFinds   int // initial Find calls that miss, to simulate races
	findCalls   int
	insertCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{tickers: make(map[string]model.Ticker), nextID: 1}
}

func (f *fakeStore) FindTickerBySymbol(_ context.Context, symbol string) (model.Ticker, bool, error) {
	f.findCalls++
	if f.missFinds > 0 {
		f.missFinds--
		return model.Ticker{}, false, nil
	}
	t, ok := f.tickers[symbol]
	return t, ok, nil
}

func (f *fakeStore) InsertTicker(_ context.Context, symbol, name string) (model.Ticker, error) {
	f.insertCalls++
	if f.insertErr != nil {
		return model.Ticker{}, f.insertErr
	}
	if _, ok := f.tickers[symbol]; ok {
		return model.Ticker{}, model.ErrAlreadyExists
	}
	t := model.Ticker{ID: f.nextID, Symbol: symbol, Name: name}
	f.nextID++
	f.tickers[symbol] = t
	return t, nil
}

type fakeValidator struct {
	names map[string]string // symbol → display name; absent = invalid
	err   error
	calls int
}

func (f *fakeValidator) ValidateSymbol(_ context.Context, symbol string) (string, bool, error) {
	f.calls++
	if f.err != nil {
		return "", false, f.err
	}
	name, ok := f.names[symbol]
	return name, ok, nil
}

func TestResolve_RegisteredSymbolSkipsValidation(t *testing.T) {
	st := newFakeStore()
	wm := time.Date(2024, 1, 12, 20, 59, 0, 0, time.UTC)
	st.tickers["AAPL"] = model.Ticker{ID: 7, Symbol: "AAPL", Watermark: &wm}
	v := &fakeValidator{}

	r := New(st, v, nil)
	got, err := r.Resolve(context.Background(), "AAPL")

	require.NoError(t, err)
	assert.Equal(t, int64(7), got.ID)
	require.NotNil(t, got.Watermark)
	assert.Equal(t, wm, *got.Watermark)
	assert.Zero(t, v.calls, "registered symbol must not hit the provider")
}

func TestResolve_NormalizesSymbol(t *testing.T) {
	st := newFakeStore()
	st.tickers["AAPL"] = model.Ticker{ID: 7, Symbol: "AAPL"}

	r := New(st, &fakeValidator{}, nil)
	got, err := r.Resolve(context.Background(), "  aapl ")

	require.NoError(t, err)
	assert.Equal(t, int64(7), got.ID)
}

func TestResolve_RegistersValidUnknownSymbol(t *testing.T) {
	st := newFakeStore()
	v := &fakeValidator{names: map[string]string{"SHOP": "Shopify Inc."}}

	r := New(st, v, nil)
	got, err := r.Resolve(context.Background(), "SHOP")

	require.NoError(t, err)
	assert.Equal(t, "SHOP", got.Symbol)
	assert.Equal(t, "Shopify Inc.", got.Name)
	assert.Nil(t, got.Watermark, "new tickers start with no watermark")
	assert.Equal(t, 1, st.insertCalls)
}

func TestResolve_InvalidSymbolCreatesNothing(t *testing.T) {
	st := newFakeStore()
	v := &fakeValidator{names: map[string]string{}}

	r := New(st, v, nil)
	_, err := r.Resolve(context.Background(), "ZZZZ")

	require.ErrorIs(t, err, ErrUnknownTicker)
	assert.Zero(t, st.insertCalls, "invalid symbols must not be inserted")
	assert.Empty(t, st.tickers)
}

func TestResolve_ValidationTransportFailureIsUnknownTicker(t *testing.T) {
	st := newFakeStore()
	v := &fakeValidator{err: errors.New("connection refused")}

	r := New(st, v, nil)
	_, err := r.Resolve(context.Background(), "AAPL")

	require.ErrorIs(t, err, ErrUnknownTicker)
	assert.Zero(t, st.insertCalls)
}

func TestResolve_DuplicateInsertRaceRereadsExistingRow(t *testing.T) {
	st := newFakeStore()
	v := &fakeValidator{names: map[string]string{"AMD": "Advanced Micro Devices, Inc."}}

	// The initial lookup misses, the insert reports a uniqueness conflict as
	// if a concurrent run won the registration race, and the winning row is
	// then visible to the re-read.
	st.missFinds = 1
	st.insertErr = model.ErrAlreadyExists
	st.tickers["AMD"] = model.Ticker{ID: 42, Symbol: "AMD"}

	r := New(st, v, nil)
	got, err := r.Resolve(context.Background(), "AMD")

	require.NoError(t, err)
	assert.Equal(t, int64(42), got.ID)
	assert.Equal(t, 2, st.findCalls, "expected re-read after conflict")
}

func TestResolve_StoreInsertFailurePropagates(t *testing.T) {
	st := newFakeStore()
	st.insertErr = errors.New("connection reset")
	v := &fakeValidator{names: map[string]string{"KO": "The Coca-Cola Company"}}

	r := New(st, v, nil)
	_, err := r.Resolve(context.Background(), "KO")

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnknownTicker)
}
