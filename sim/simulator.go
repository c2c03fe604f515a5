// Package sim owns the cash/position ledger for one backtest run.
//
// A Simulator instance is single-owner and single-threaded: it serves exactly
// one run, bars are applied strictly in order, and independent runs must use
// independent instances. There is no locking because there is no concurrent
// access within a run.
package sim

import (
	"math"
	"time"

	"github.com/quantedge/quant/pkg/id"
	"github.com/quantedge/quant/strategies"
)

type Simulator struct {
	cash       float64
	commission float64

	positions map[string]*Position
	latest    map[string]float64

	fills    []Fill
	closed   []ClosedTrade
	curve    []EquityPoint
	realized float64
}

// New creates a simulator with the given starting cash and flat commission
// per executed order leg.
func New(initialCash, commission float64) *Simulator {
	return &Simulator{
		cash:       initialCash,
		commission: commission,
		positions:  make(map[string]*Position),
		latest:     make(map[string]float64),
	}
}

func (s *Simulator) Cash() float64 { return s.cash }

func (s *Simulator) RealizedPnL() float64 { return s.realized }

func (s *Simulator) Fills() []Fill { return s.fills }

func (s *Simulator) ClosedTrades() []ClosedTrade { return s.closed }

func (s *Simulator) EquityCurve() []EquityPoint { return s.curve }

// EnsureSymbol creates an empty position slot for the symbol if absent.
func (s *Simulator) EnsureSymbol(symbol string) {
	s.slot(symbol)
}

func (s *Simulator) slot(symbol string) *Position {
	pos, ok := s.positions[symbol]
	if !ok {
		pos = &Position{}
		s.positions[symbol] = pos
	}
	return pos
}

// Position returns a copy of the symbol's position state.
func (s *Simulator) Position(symbol string) Position {
	if pos, ok := s.positions[symbol]; ok {
		return *pos
	}
	return Position{}
}

// SetPrice records the latest observed price for a symbol, used to mark open
// positions to market.
func (s *Simulator) SetPrice(symbol string, price float64) {
	s.latest[symbol] = price
}

// MarketValue sums position quantity times latest price over all symbols,
// falling back to cost basis for symbols with no observed price yet.
func (s *Simulator) MarketValue() float64 {
	total := 0.0
	for symbol, pos := range s.positions {
		price, ok := s.latest[symbol]
		if !ok {
			price = pos.AvgPrice
		}
		total += float64(pos.Quantity) * price
	}
	return total
}

// Equity is cash plus mark-to-market value of all open positions.
func (s *Simulator) Equity() float64 {
	return s.cash + s.MarketValue()
}

// Open executes an opening order leg: a BUY when flat or long, a SELL when
// flat or short. A BUY that cannot be funded is silently skipped with no
// ledger mutation and no fill record.
func (s *Simulator) Open(symbol string, ts time.Time, price float64, qty int64, action strategies.Action, reason string, tradeType strategies.TradeType) {
	if qty <= 0 {
		return
	}
	pos := s.slot(symbol)

	if action == strategies.Buy {
		cost := float64(qty)*price + s.commission
		if s.cash < cost {
			return
		}
		s.cash -= cost

		newQty := pos.Quantity + qty
		if pos.Quantity >= 0 {
			totalCost := pos.AvgPrice*float64(pos.Quantity) + price*float64(qty)
			pos.AvgPrice = totalCost / float64(max64(newQty, 1))
		} else {
			pos.AvgPrice = price
		}
		pos.Quantity = newQty
		pos.EntryTime = ts
	} else {
		proceeds := float64(qty)*price - s.commission
		s.cash += proceeds

		newQty := pos.Quantity - qty
		if pos.Quantity <= 0 {
			totalCost := math.Abs(pos.AvgPrice*float64(pos.Quantity)) + price*float64(qty)
			pos.AvgPrice = totalCost / float64(max64(abs64(newQty), 1))
		} else {
			pos.AvgPrice = price
		}
		pos.Quantity = newQty
		if newQty < 0 {
			pos.EntryTime = ts
		}
	}

	// quantity == 0 always means no basis and no entry time.
	if pos.Quantity == 0 {
		pos.AvgPrice = 0
		pos.EntryTime = time.Time{}
	}

	s.recordFill(ts, symbol, action, qty, price, reason, tradeType)
}

// Close reduces the symbol's position by up to qty shares, realizing P&L.
// Requests beyond the open quantity close only what exists.
func (s *Simulator) Close(symbol string, ts time.Time, price float64, qty int64, reason string) {
	pos := s.slot(symbol)
	if qty <= 0 || pos.Quantity == 0 {
		return
	}

	direction := Long
	if pos.Quantity < 0 {
		direction = Short
	}

	qtyToClose := min64(abs64(pos.Quantity), qty)
	avgPrice := pos.AvgPrice
	entryTime := pos.EntryTime

	var realized float64
	var action strategies.Action
	if direction == Long {
		s.cash += float64(qtyToClose)*price - s.commission
		realized = (price - avgPrice) * float64(qtyToClose)
		pos.Quantity -= qtyToClose
		action = strategies.Sell
	} else {
		s.cash -= float64(qtyToClose)*price + s.commission
		realized = (avgPrice - price) * float64(qtyToClose)
		pos.Quantity += qtyToClose
		action = strategies.Buy
	}

	if pos.Quantity == 0 {
		pos.AvgPrice = 0
		pos.EntryTime = time.Time{}
	}

	s.realized += realized
	s.closed = append(s.closed, ClosedTrade{
		Symbol:     symbol,
		Direction:  direction,
		Quantity:   qtyToClose,
		EntryPrice: avgPrice,
		ExitPrice:  price,
		EntryTime:  entryTime,
		ExitTime:   ts,
		PnL:        realized,
	})

	s.recordFill(ts, symbol, action, qtyToClose, price, reason, strategies.TradeClose)
}

// MarkToMarket appends one equity point for the bar that just finished.
func (s *Simulator) MarkToMarket(ts time.Time) {
	marketValue := s.MarketValue()
	s.curve = append(s.curve, EquityPoint{
		Time:        ts,
		Cash:        s.cash,
		MarketValue: marketValue,
		Equity:      s.cash + marketValue,
	})
}

func (s *Simulator) recordFill(ts time.Time, symbol string, action strategies.Action, qty int64, price float64, reason string, tradeType strategies.TradeType) {
	marketValue := s.MarketValue()
	s.fills = append(s.fills, Fill{
		ID:               id.New(),
		Time:             ts,
		Symbol:           symbol,
		Action:           action,
		Quantity:         qty,
		Price:            price,
		CashAfter:        s.cash,
		MarketValueAfter: marketValue,
		EquityAfter:      s.cash + marketValue,
		Reason:           reason,
		TradeType:        tradeType,
		PositionAfter:    s.positions[symbol].Quantity,
	})
}

func abs64(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
