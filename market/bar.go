// Package market defines the bar data model consumed by the backtest engine.
package market

import "time"

// Bar is one OHLCV observation for a symbol over a fixed interval.
// Bars are immutable once produced.
type Bar struct {
	Symbol string
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}
