// Package chunk plans the fetch windows for one sync run.
//
// The provider rejects intraday history requests spanning more than 8 days,
// so the planner slices the lookback into 7-day windows to leave margin.
package chunk

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/tinker/quotesync/internal/model"
)

const (
	// SpanDays is the fixed chunk size. Kept strictly inside the provider's
	// 8-day intraday request cap.
	SpanDays = 7

	// MaxLookbackDays is the provider's maximum intraday history depth.
	MaxLookbackDays = 28
)

// ErrInvalidLookback is returned when the requested lookback is outside
// [1, MaxLookbackDays].
var ErrInvalidLookback = errors.New("invalid lookback")

// Plan slices the interval [ref - lookbackDays, ref] into contiguous,
// non-overlapping windows of at most SpanDays each, ordered oldest-first so
// that watermarks advance monotonically as chunks are processed in order.
//
// When lookbackDays is not a multiple of SpanDays, the earliest window is the
// short one. Plan is pure: the reference instant is an explicit argument.
func Plan(ref time.Time, lookbackDays int) ([]model.ChunkWindow, error) {
	if lookbackDays < 1 || lookbackDays > MaxLookbackDays {
		return nil, fmt.Errorf("%w: lookback days must be between 1 and %d, got %d",
			ErrInvalidLookback, MaxLookbackDays, lookbackDays)
	}

	earliest := ref.AddDate(0, 0, -lookbackDays)

	windows := make([]model.ChunkWindow, 0, (lookbackDays+SpanDays-1)/SpanDays)
	end := ref
	for end.After(earliest) {
		start := end.AddDate(0, 0, -SpanDays)
		if start.Before(earliest) {
			start = earliest
		}
		windows = append(windows, model.ChunkWindow{Start: start, End: end})
		end = start
	}

	slices.Reverse(windows)
	return windows, nil
}
