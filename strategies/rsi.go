package strategies

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/quantedge/quant/indicators"
)

const (
	rsiStopLossPct        = 0.05
	rsiEntryMinConfidence = 0.6
)

func init() {
	Register("RSI", func() Strategy { return NewRSIStrategy() })
}

// RSIStrategy trades oversold/overbought extremes: it enters at the extreme
// and exits the full position when RSI recovers through the exit level.
type RSIStrategy struct {
	timeframeMinutes int
	period           int

	oversold       float64
	overbought     float64
	exitOversold   float64
	exitOverbought float64

	states map[string]*indicators.RSIState
}

func NewRSIStrategy() *RSIStrategy {
	return &RSIStrategy{
		timeframeMinutes: 5,
		period:           14,
		oversold:         30,
		overbought:       70,
		exitOversold:     50,
		exitOverbought:   50,
		states:           make(map[string]*indicators.RSIState),
	}
}

func (s *RSIStrategy) Name() string { return "RSI" }

func (s *RSIStrategy) Reset() {
	s.states = make(map[string]*indicators.RSIState)
}

// Configure recognizes TIMEFRAME, RSI_PERIOD, OVERSOLD_THRESHOLD,
// OVERBOUGHT_THRESHOLD, EXIT_OVERSOLD and EXIT_OVERBOUGHT. Out-of-range
// values are silently ignored in favor of the previous setting.
func (s *RSIStrategy) Configure(opts map[string]string) {
	if raw, ok := opts["TIMEFRAME"]; ok {
		if v, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && v > 0 {
			s.timeframeMinutes = v
		}
	}
	if raw, ok := opts["RSI_PERIOD"]; ok {
		if v, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && v >= 2 && v <= 100 {
			s.period = v
		}
	}
	if v, ok := parseInRange(opts, "OVERSOLD_THRESHOLD", 0, 50); ok {
		s.oversold = v
	}
	if v, ok := parseInRange(opts, "OVERBOUGHT_THRESHOLD", 50, 100); ok {
		s.overbought = v
	}
	if v, ok := parseInRange(opts, "EXIT_OVERSOLD", 0, 100); ok {
		s.exitOversold = v
	}
	if v, ok := parseInRange(opts, "EXIT_OVERBOUGHT", 0, 100); ok {
		s.exitOverbought = v
	}
}

func parseInRange(opts map[string]string, key string, lo, hi float64) (float64, bool) {
	raw, ok := opts[key]
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v < lo || v > hi {
		return 0, false
	}
	return v, true
}

func (s *RSIStrategy) state(symbol string) *indicators.RSIState {
	st, ok := s.states[symbol]
	if !ok || st.Period() != s.period {
		st = indicators.NewRSI(s.period)
		s.states[symbol] = st
	}
	return st
}

// Analyze feeds the close into the symbol's RSI window and maps the value to
// an entry or exit signal. The MACD inputs are ignored by this variant.
func (s *RSIStrategy) Analyze(symbol string, macd, signalLine, hist, price float64, pos PositionSnapshot) Signal {
	rsi := s.state(symbol).Update(price)
	qty := pos.Quantity

	switch {
	case qty == 0 && rsi <= s.oversold:
		return Signal{
			Action:     Buy,
			Reason:     fmt.Sprintf("RSI oversold: %.2f <= %.0f", rsi, s.oversold),
			EntryPrice: price,
			StopLoss:   price * (1 - rsiStopLossPct),
			Confidence: math.Min(1.0, (s.oversold-rsi)/10.0+0.5),
			TradeType:  TradeOpen,
		}

	case qty == 0 && rsi >= s.overbought:
		return Signal{
			Action:     Sell,
			Reason:     fmt.Sprintf("RSI overbought: %.2f >= %.0f", rsi, s.overbought),
			EntryPrice: price,
			StopLoss:   price * (1 + rsiStopLossPct),
			Confidence: math.Min(1.0, (rsi-s.overbought)/10.0+0.5),
			TradeType:  TradeOpen,
		}

	case qty > 0 && rsi >= s.exitOversold:
		return Signal{
			Action:        Sell,
			Reason:        fmt.Sprintf("exit long: RSI recovered to %.2f", rsi),
			EntryPrice:    price,
			StopLoss:      price * (1 + rsiStopLossPct),
			Confidence:    1.0,
			TradeType:     TradeClose,
			CloseQuantity: qty,
		}

	case qty < 0 && rsi <= s.exitOverbought:
		return Signal{
			Action:        Buy,
			Reason:        fmt.Sprintf("exit short: RSI recovered to %.2f", rsi),
			EntryPrice:    price,
			StopLoss:      price * (1 - rsiStopLossPct),
			Confidence:    1.0,
			TradeType:     TradeClose,
			CloseQuantity: -qty,
		}
	}

	return Signal{
		Action:     Hold,
		Reason:     fmt.Sprintf("RSI: %.2f", rsi),
		EntryPrice: price,
		Confidence: 0,
		TradeType:  TradeNone,
	}
}

// ShouldTrade always accepts exit signals; entries need enough confidence.
func (s *RSIStrategy) ShouldTrade(sig Signal, pos PositionSnapshot) Decision {
	if sig.TradeType == TradeClose {
		return Decision{
			ShouldTrade:     true,
			Reason:          "exit signal",
			Confidence:      sig.Confidence,
			CurrentPosition: pos.Quantity,
		}
	}

	entry := sig.Action == Buy || sig.Action == Sell
	accept := entry && sig.Confidence >= rsiEntryMinConfidence

	reason := fmt.Sprintf("RSI signal confidence: %.2f", sig.Confidence)
	if entry && !accept {
		reason += fmt.Sprintf(" (below threshold %.2f)", rsiEntryMinConfidence)
	}

	return Decision{
		ShouldTrade:     accept,
		Reason:          reason,
		Confidence:      sig.Confidence,
		CurrentPosition: pos.Quantity,
	}
}
