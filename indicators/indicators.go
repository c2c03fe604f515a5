// Package indicators provides streaming technical indicator state for the
// backtest engine.
//
// Each indicator consumes one closing price at a time, keeps O(1) (or
// bounded) memory, and is deterministic: the same price sequence always
// produces the same values. Indicators never fail; "not yet warmed up" is a
// boolean the caller queries, not an error.
package indicators

// Indicator is the minimal streaming contract shared by indicator states.
type Indicator interface {
	// Name returns a stable identifier like "MACD(12,26,9)" or "RSI(14)".
	Name() string

	// Reset clears all internal state. A state must be reset (or rebuilt)
	// between independent runs; it is never reset mid-run.
	Reset()
}
