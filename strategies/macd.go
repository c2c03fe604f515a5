package strategies

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	macdStopLossPct   = 0.03
	macdMinConfidence = 0.1
	macdConfidenceCap = 0.8

	// Histogram magnitude that maps to the confidence cap. Fixed on purpose;
	// it is not calibrated to instrument volatility.
	macdConfidenceScale = 0.3
)

func init() {
	Register("MACD", func() Strategy { return NewMACDStrategy() })
}

// MACDStrategy trades MACD histogram zero crossings.
//
// It enters only on a cross, reverses on an opposite cross (close then open
// within the same bar) and never pyramids an existing position.
type MACDStrategy struct {
	timeframeMinutes int

	// last holds the previous bar's macd/hist per symbol so a cross can be
	// detected relative to the immediately preceding bar.
	last map[string]macdMemory
}

type macdMemory struct {
	macd float64
	hist float64
}

func NewMACDStrategy() *MACDStrategy {
	return &MACDStrategy{
		timeframeMinutes: 5,
		last:             make(map[string]macdMemory),
	}
}

func (s *MACDStrategy) Name() string { return "MACD" }

func (s *MACDStrategy) Reset() {
	s.last = make(map[string]macdMemory)
}

// Configure recognizes TIMEFRAME (bar width in minutes). Bad values keep the
// previous setting.
func (s *MACDStrategy) Configure(opts map[string]string) {
	raw, ok := opts["TIMEFRAME"]
	if !ok {
		return
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value <= 0 {
		return
	}
	s.timeframeMinutes = value
}

// Timeframe returns the configured bar width in minutes.
func (s *MACDStrategy) Timeframe() int { return s.timeframeMinutes }

// analyzeCross produces the raw crossover signal before any position context
// is applied. It always records the current values as the next bar's memory.
func (s *MACDStrategy) analyzeCross(symbol string, macd, signalLine, hist, price float64) Signal {
	prev := s.last[symbol]
	s.last[symbol] = macdMemory{macd: macd, hist: hist}

	confidence := math.Min(macdConfidenceCap, math.Abs(hist)/macdConfidenceScale)

	bullish := hist > 0 && prev.hist <= 0 && macd > signalLine && macd > prev.macd
	bearish := hist < 0 && prev.hist >= 0 && macd < signalLine && macd < prev.macd

	switch {
	case bullish:
		return Signal{
			Action:     Buy,
			Reason:     "histogram turned positive (bullish cross)",
			EntryPrice: price,
			StopLoss:   price * (1 - macdStopLossPct),
			Confidence: confidence,
			TradeType:  TradeOpen,
		}
	case bearish:
		return Signal{
			Action:     Sell,
			Reason:     "histogram turned negative (bearish cross)",
			EntryPrice: price,
			StopLoss:   price * (1 + macdStopLossPct),
			Confidence: confidence,
			TradeType:  TradeOpen,
		}
	}

	return Signal{
		Action:     Hold,
		Reason:     "no crossover",
		EntryPrice: price,
		Confidence: 0,
		TradeType:  TradeNone,
	}
}

// Analyze escalates the raw cross signal against the current position: flat
// positions open, opposing positions close-and-reverse, same-direction
// positions are never added to.
func (s *MACDStrategy) Analyze(symbol string, macd, signalLine, hist, price float64, pos PositionSnapshot) Signal {
	sig := s.analyzeCross(symbol, macd, signalLine, hist, price)
	if sig.Action == Hold {
		return sig
	}

	qty := pos.Quantity
	if qty == 0 {
		return sig
	}

	if sig.Action == Buy {
		if qty < 0 {
			return Signal{
				Action:        Buy,
				Reason:        fmt.Sprintf("close short (%d shares) and reverse long: %s", -qty, sig.Reason),
				EntryPrice:    price,
				StopLoss:      price * (1 - macdStopLossPct),
				Confidence:    sig.Confidence,
				TradeType:     TradeCloseAndReverse,
				CloseQuantity: -qty,
			}
		}
		return Signal{
			Action:     Hold,
			Reason:     fmt.Sprintf("already long (%d shares), no pyramiding", qty),
			EntryPrice: price,
			Confidence: 0,
			TradeType:  TradeNone,
		}
	}

	// SELL signal with an existing position.
	if qty > 0 {
		return Signal{
			Action:        Sell,
			Reason:        fmt.Sprintf("close long (%d shares) and reverse short: %s", qty, sig.Reason),
			EntryPrice:    price,
			StopLoss:      price * (1 + macdStopLossPct),
			Confidence:    sig.Confidence,
			TradeType:     TradeCloseAndReverse,
			CloseQuantity: qty,
		}
	}
	return Signal{
		Action:     Hold,
		Reason:     fmt.Sprintf("already short (%d shares), no pyramiding", -qty),
		EntryPrice: price,
		Confidence: 0,
		TradeType:  TradeNone,
	}
}

// ShouldTrade rejects low-confidence signals and same-direction additions.
func (s *MACDStrategy) ShouldTrade(sig Signal, pos PositionSnapshot) Decision {
	if sig.Confidence < macdMinConfidence {
		return Decision{
			ShouldTrade:     false,
			Reason:          fmt.Sprintf("confidence too low (%.2f < %.2f)", sig.Confidence, macdMinConfidence),
			Confidence:      sig.Confidence,
			CurrentPosition: pos.Quantity,
		}
	}

	if sig.Action == Buy && pos.Quantity > 0 {
		return Decision{
			ShouldTrade:     false,
			Reason:          fmt.Sprintf("already long %d shares, not adding", pos.Quantity),
			Confidence:      sig.Confidence,
			CurrentPosition: pos.Quantity,
		}
	}
	if sig.Action == Sell && pos.Quantity < 0 {
		return Decision{
			ShouldTrade:     false,
			Reason:          fmt.Sprintf("already short %d shares, not adding", -pos.Quantity),
			Confidence:      sig.Confidence,
			CurrentPosition: pos.Quantity,
		}
	}

	return Decision{
		ShouldTrade:     true,
		Reason:          "passed trade checks",
		Confidence:      sig.Confidence,
		CurrentPosition: pos.Quantity,
	}
}
