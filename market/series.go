package market

import (
	"context"
	"errors"
	"sort"
	"time"
)

// ErrNoData indicates that no bars were available for any requested symbol,
// or that a date filter left nothing to replay. It is the only fatal data
// condition; a single missing symbol is skipped, not surfaced.
var ErrNoData = errors.New("market: no bar data available")

// BarSource loads ordered bar history for a set of symbols.
// A symbol with no data is skipped; implementations return ErrNoData only
// when zero symbols could be loaded.
type BarSource interface {
	LoadSymbols(ctx context.Context, symbols []string) ([]Bar, error)
}

// SortBars orders bars by timestamp, then symbol, which is the order the
// engine replays a merged multi-symbol stream in.
func SortBars(bars []Bar) {
	sort.SliceStable(bars, func(i, j int) bool {
		if !bars[i].Time.Equal(bars[j].Time) {
			return bars[i].Time.Before(bars[j].Time)
		}
		return bars[i].Symbol < bars[j].Symbol
	})
}

// InOrder reports whether bars are in non-decreasing timestamp order.
func InOrder(bars []Bar) bool {
	for i := 1; i < len(bars); i++ {
		if bars[i].Time.Before(bars[i-1].Time) {
			return false
		}
	}
	return true
}

// LatestTime returns the maximum timestamp present, or the zero time for an
// empty slice.
func LatestTime(bars []Bar) time.Time {
	var latest time.Time
	for _, b := range bars {
		if b.Time.After(latest) {
			latest = b.Time
		}
	}
	return latest
}

// Window returns the bars with start <= t <= end. Both bounds are inclusive.
func Window(bars []Bar, start, end time.Time) []Bar {
	out := make([]Bar, 0, len(bars))
	for _, b := range bars {
		if b.Time.Before(start) || b.Time.After(end) {
			continue
		}
		out = append(out, b)
	}
	return out
}
