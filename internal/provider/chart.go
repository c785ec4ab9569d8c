package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrNoData is returned when the provider has no bars for the requested
// window, e.g. a span that falls entirely on non-trading days.
var ErrNoData = errors.New("no data for window")

// FetchMinuteBars fetches per-minute bars for symbol over [start, end).
// Callers must keep end-start within the provider's span cap; the chunk
// planner guarantees that.
func (c *Client) FetchMinuteBars(ctx context.Context, symbol string, start, end time.Time) ([]Bar, error) {
	query := url.Values{}
	query.Set("period1", strconv.FormatInt(start.Unix(), 10))
	query.Set("period2", strconv.FormatInt(end.Unix(), 10))
	query.Set("interval", "1m")
	query.Set("includePrePost", "false")

	var resp chartResponse
	if err := c.get(ctx, "/v8/finance/chart/"+url.PathEscape(symbol), query, &resp); err != nil {
		return nil, fmt.Errorf("fetch minute bars %s: %w", symbol, err)
	}

	result, err := resp.result()
	if err != nil {
		return nil, fmt.Errorf("fetch minute bars %s: %w", symbol, err)
	}

	bars := make([]Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(result.Indicators.Quote[0].Close) {
			break
		}
		px := result.Indicators.Quote[0].Close[i]
		if px == nil {
			// Null bars mark gaps (halts, holidays); nothing to store.
			continue
		}
		bars = append(bars, Bar{Timestamp: ts, Close: *px})
	}

	if len(bars) == 0 {
		return nil, fmt.Errorf("fetch minute bars %s: %w", symbol, ErrNoData)
	}

	return bars, nil
}

// ValidateSymbol checks whether symbol denotes an actively quoted instrument.
// It returns the instrument's display name when known. A symbol the provider
// does not recognize yields ok=false with a nil error; err is reserved for
// transport-level failures.
func (c *Client) ValidateSymbol(ctx context.Context, symbol string) (name string, ok bool, err error) {
	query := url.Values{}
	query.Set("interval", "1d")
	query.Set("range", "1d")

	var resp chartResponse
	if err := c.get(ctx, "/v8/finance/chart/"+url.PathEscape(symbol), query, &resp); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return "", false, nil
		}
		return "", false, fmt.Errorf("validate symbol %s: %w", symbol, err)
	}

	result, err := resp.result()
	if err != nil {
		return "", false, nil
	}
	if result.Meta.Symbol == "" {
		return "", false, nil
	}

	name = result.Meta.LongName
	if name == "" {
		name = result.Meta.ShortName
	}
	return name, true, nil
}

// result unwraps the chart envelope, surfacing chart-level errors and
// empty payloads.
func (r *chartResponse) result() (*chartResult, error) {
	if r.Chart.Error != nil {
		return nil, fmt.Errorf("chart error %s: %s", r.Chart.Error.Code, r.Chart.Error.Description)
	}
	if len(r.Chart.Result) == 0 {
		return nil, ErrNoData
	}
	result := &r.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, ErrNoData
	}
	return result, nil
}
