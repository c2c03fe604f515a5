package backtest

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/quantedge/quant/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func point(ts time.Time, equity float64) sim.EquityPoint {
	return sim.EquityPoint{Time: ts, Cash: equity, Equity: equity}
}

func TestDedupeByTime(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	t1 := t0.Add(5 * time.Minute)

	curve := []sim.EquityPoint{
		point(t0, 100),
		point(t0, 200),
		point(t1, 300),
		point(t1, 400),
	}

	out := dedupeByTime(curve)
	require.Len(t, out, 2)
	// The first point per timestamp wins.
	assert.Equal(t, 100.0, out[0].Equity)
	assert.Equal(t, 300.0, out[1].Equity)
}

func TestMaxDrawdown(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	at := func(i int, equity float64) sim.EquityPoint {
		return point(t0.Add(time.Duration(i)*time.Hour), equity)
	}

	t.Run("single trough", func(t *testing.T) {
		curve := []sim.EquityPoint{at(0, 100), at(1, 120), at(2, 90), at(3, 130)}
		assert.InDelta(t, 0.25, maxDrawdown(curve), 1e-9)
	})

	t.Run("monotonic rise has none", func(t *testing.T) {
		curve := []sim.EquityPoint{at(0, 100), at(1, 110), at(2, 120)}
		assert.Equal(t, 0.0, maxDrawdown(curve))
	})

	t.Run("zero peak points are skipped", func(t *testing.T) {
		curve := []sim.EquityPoint{at(0, 0), at(1, 100), at(2, 80)}
		assert.InDelta(t, 0.2, maxDrawdown(curve), 1e-9)
	})
}

func TestBuildResultAnnualization(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("sub-day runs use one day", func(t *testing.T) {
		ledger := sim.New(100_000, 0)
		ledger.MarkToMarket(t0)
		ledger.MarkToMarket(t0.Add(10 * time.Minute))

		e := &Engine{InitialCapital: 100_000}
		r := e.buildResult(ledger)

		assert.Equal(t, 0.0, r.ReturnPct)
		assert.Equal(t, 0.0, r.AnnualizedReturn)
		assert.Equal(t, t0, r.Start)
	})

	t.Run("compounds over the elapsed days", func(t *testing.T) {
		ledger := sim.New(100_000, 0)
		ledger.MarkToMarket(t0)
		ledger.MarkToMarket(t0.AddDate(0, 0, 73))

		e := &Engine{InitialCapital: 90_000}
		r := e.buildResult(ledger)

		// 100000/90000 over 73 days compounds at (1+r)^(365/73)-1.
		wantReturn := 10_000.0 / 90_000.0
		assert.InDelta(t, wantReturn, r.ReturnPct, 1e-9)
		assert.InDelta(t, math.Pow(1+wantReturn, 5)-1, r.AnnualizedReturn, 1e-9)
	})
}

func TestBuildSummariesOrder(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	closed := []sim.ClosedTrade{
		{Symbol: "MSFT", Quantity: 10, PnL: 100, ExitTime: t0},
		{Symbol: "AAPL", Quantity: 5, PnL: -50, ExitTime: t0},
		{Symbol: "MSFT", Quantity: 10, PnL: -20, ExitTime: t0},
	}

	e := &Engine{InitialCapital: 10_000}
	summaries := e.buildSummaries(closed)

	require.Len(t, summaries, 2)
	// First-seen order, not alphabetical.
	assert.Equal(t, "MSFT", summaries[0].Symbol)
	assert.Equal(t, 2, summaries[0].TotalTrades)
	assert.InDelta(t, 80.0, summaries[0].NetPnL, 1e-9)
	assert.Equal(t, 0.5, summaries[0].WinRate)

	assert.Equal(t, "AAPL", summaries[1].Symbol)
	assert.InDelta(t, -0.005, summaries[1].ReturnPct, 1e-9)
	assert.Equal(t, 0.0, summaries[1].WinRate)
}

func TestPrintResult(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	r := &Result{
		Start:          t0,
		End:            t0.AddDate(0, 1, 0),
		InitialCapital: 100_000,
		EndingEquity:   100_600,
		NetProfit:      600,
		ReturnPct:      0.006,
		ClosedTrades:   []sim.ClosedTrade{{Symbol: "AAPL", PnL: 600}},
		Summaries:      []Summary{{Symbol: "AAPL", TotalTrades: 1, NetPnL: 600, WinRate: 1}},
	}

	var buf bytes.Buffer
	PrintResult(&buf, r)

	out := buf.String()
	assert.Contains(t, out, "Net Profit:      $600.00")
	assert.Contains(t, out, "Win Rate:        100.00% (1/1)")
	assert.Contains(t, out, "AAPL: trades=1")
}
