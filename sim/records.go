package sim

import (
	"time"

	"github.com/quantedge/quant/strategies"
)

// Direction of a closed round trip.
type Direction string

const (
	Long  Direction = "LONG"
	Short Direction = "SHORT"
)

// Position is the per-symbol ledger state. Quantity is signed: positive long,
// negative short. AvgPrice is zero and EntryTime is the zero time whenever
// Quantity is zero.
type Position struct {
	Quantity  int64
	AvgPrice  float64
	EntryTime time.Time
}

// Fill is the immutable record of a single executed order leg, including the
// ledger state immediately after it.
type Fill struct {
	ID               string
	Time             time.Time
	Symbol           string
	Action           strategies.Action
	Quantity         int64
	Price            float64
	CashAfter        float64
	MarketValueAfter float64
	EquityAfter      float64
	Reason           string
	TradeType        strategies.TradeType
	PositionAfter    int64
}

// ClosedTrade pairs an entry with its exit. It is created only when a
// position's quantity moves toward or through zero.
type ClosedTrade struct {
	Symbol     string
	Direction  Direction
	Quantity   int64
	EntryPrice float64
	ExitPrice  float64
	EntryTime  time.Time
	ExitTime   time.Time
	PnL        float64
}

// EquityPoint marks all open positions to market at the end of one bar.
// Equity == Cash + MarketValue exactly, by construction.
type EquityPoint struct {
	Time        time.Time
	Cash        float64
	MarketValue float64
	Equity      float64
}
