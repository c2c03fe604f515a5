// Package backtest replays a strategy against historical bars and produces a
// deterministic result: executed fills, closed trades, an equity curve and
// summary statistics.
package backtest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/quantedge/quant/indicators"
	"github.com/quantedge/quant/market"
	"github.com/quantedge/quant/risk"
	"github.com/quantedge/quant/sim"
	"github.com/quantedge/quant/strategies"
)

const DefaultInitialCapital = 100_000.0

// Engine drives one backtest: indicator updates, strategy evaluation, risk
// sizing and ledger mutation, bar by bar in timestamp order.
type Engine struct {
	Strategy strategies.Strategy
	Options  map[string]string
	Source   market.BarSource
	Sizer    *risk.Sizer

	InitialCapital float64
	Commission     float64

	// WarmupBars gates actionable signals until the symbol's MACD state has
	// seen this many bars. The strategy is still called on every bar so its
	// own memory stays continuous.
	WarmupBars int

	// Verbose prints skipped sizings and rejected decisions.
	Verbose bool
}

// New returns an engine with the default capital, commission, sizing limits
// and warmup.
func New(strategy strategies.Strategy, source market.BarSource) *Engine {
	return &Engine{
		Strategy:       strategy,
		Source:         source,
		Sizer:          risk.NewSizer(),
		InitialCapital: DefaultInitialCapital,
		Commission:     0,
		WarmupBars:     indicators.MACDWarmupBars,
	}
}

// Run replays the requested symbols between start and end (inclusive; the
// zero time means "unset": start defaults to two years before the latest
// available bar, end to the latest bar). It fails only when no bar data
// survives loading and filtering; every other condition is folded into the
// result.
func (e *Engine) Run(ctx context.Context, symbols []string, start, end time.Time) (*Result, error) {
	if e.Strategy == nil {
		return nil, fmt.Errorf("backtest: Strategy is required")
	}
	if e.Source == nil {
		return nil, fmt.Errorf("backtest: Source is required")
	}
	if e.Sizer == nil {
		e.Sizer = risk.NewSizer()
	}

	e.Strategy.Configure(e.Options)
	e.Strategy.Reset()

	ledger := sim.New(e.InitialCapital, e.Commission)
	for _, symbol := range symbols {
		ledger.EnsureSymbol(strings.ToUpper(symbol))
	}

	bars, err := e.Source.LoadSymbols(ctx, symbols)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, market.ErrNoData
	}
	market.SortBars(bars)

	latest := market.LatestTime(bars)
	if start.IsZero() {
		start = latest.AddDate(-2, 0, 0)
	}
	if end.IsZero() {
		end = latest
	}

	bars = market.Window(bars, start, end)
	if len(bars) == 0 {
		return nil, fmt.Errorf("backtest: window %s..%s: %w",
			start.Format("2006-01-02"), end.Format("2006-01-02"), market.ErrNoData)
	}

	// Seed each symbol's first close so market value is defined from bar one.
	seeded := make(map[string]bool)
	for _, b := range bars {
		if !seeded[b.Symbol] {
			ledger.SetPrice(b.Symbol, b.Close)
			seeded[b.Symbol] = true
		}
	}

	macdStates := make(map[string]*indicators.MACDState)

	for _, b := range bars {
		symbol := strings.ToUpper(b.Symbol)
		price := b.Close

		ledger.EnsureSymbol(symbol)
		ledger.SetPrice(symbol, price)

		state, ok := macdStates[symbol]
		if !ok {
			state = indicators.NewMACD(
				indicators.MACDFastPeriod, indicators.MACDSlowPeriod,
				indicators.MACDSignalPeriod, e.WarmupBars)
			macdStates[symbol] = state
		}
		macd, signalLine, hist := state.Update(price)

		pos := ledger.Position(symbol)
		snapshot := strategies.PositionSnapshot{Quantity: pos.Quantity, AvgPrice: pos.AvgPrice}

		signal := e.Strategy.Analyze(symbol, macd, signalLine, hist, price, snapshot)
		decision := e.Strategy.ShouldTrade(signal, snapshot)

		actionable := decision.ShouldTrade &&
			(signal.Action == strategies.Buy || signal.Action == strategies.Sell)

		if actionable && !state.WarmedUp() {
			if e.Verbose {
				fmt.Printf("%s %s skipped: indicator warming up (%d bars)\n",
					b.Time.Format(time.RFC3339), symbol, state.BarCount())
			}
			actionable = false
		}

		if actionable {
			e.execute(ledger, b.Time, symbol, price, signal, snapshot)
		}

		ledger.MarkToMarket(b.Time)
	}

	return e.buildResult(ledger), nil
}

// execute applies one accepted trade decision: the closing leg first for
// CLOSE and CLOSE_AND_REVERSE, then the sized opening leg for OPEN and the
// reverse half of CLOSE_AND_REVERSE.
func (e *Engine) execute(ledger *sim.Simulator, ts time.Time, symbol string, price float64, signal strategies.Signal, snapshot strategies.PositionSnapshot) {
	tradeType := signal.TradeType
	if tradeType == "" || tradeType == strategies.TradeNone {
		tradeType = strategies.TradeOpen
	}

	openAfter := tradeType != strategies.TradeClose

	if tradeType == strategies.TradeClose || tradeType == strategies.TradeCloseAndReverse {
		closeQty := signal.CloseQuantity
		if closeQty == 0 {
			closeQty = snapshot.Quantity
			if closeQty < 0 {
				closeQty = -closeQty
			}
		}
		if closeQty > 0 {
			ledger.Close(symbol, ts, price, closeQty, signal.Reason)
		}
		openAfter = tradeType == strategies.TradeCloseAndReverse
	}

	if !openAfter {
		return
	}

	// Size the new leg against the account as it stands after any close.
	acct := risk.Account{
		NetLiquidation: ledger.Equity(),
		AvailableFunds: ledger.Cash(),
		BuyingPower:    ledger.Cash(),
	}
	sized := e.Sizer.Size(acct, signal)
	if !sized.Valid || sized.Quantity <= 0 {
		if e.Verbose {
			fmt.Printf("%s %s sizing skipped: %s\n", ts.Format(time.RFC3339), symbol, sized.Reason)
		}
		return
	}

	ledger.Open(symbol, ts, price, sized.Quantity, signal.Action, signal.Reason, tradeType)
}
