package journal

import (
	"testing"
	"time"

	"github.com/quantedge/quant/backtest"
	"github.com/quantedge/quant/sim"
	"github.com/quantedge/quant/strategies"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memJournal struct {
	runs   []RunRecord
	fills  []FillRecord
	trades []TradeRecord
	equity []EquitySnapshot
}

func (m *memJournal) RecordRun(r RunRecord) error {
	m.runs = append(m.runs, r)
	return nil
}

func (m *memJournal) RecordFill(f FillRecord) error {
	m.fills = append(m.fills, f)
	return nil
}

func (m *memJournal) RecordTrade(t TradeRecord) error {
	m.trades = append(m.trades, t)
	return nil
}

func (m *memJournal) RecordEquity(e EquitySnapshot) error {
	m.equity = append(m.equity, e)
	return nil
}

func (m *memJournal) Close() error { return nil }

func TestWriteResult(t *testing.T) {
	ts := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	result := &backtest.Result{
		Start:          ts,
		End:            ts.Add(5 * time.Minute),
		InitialCapital: 100_000,
		EndingEquity:   100_600,
		NetProfit:      600,
		ReturnPct:      0.006,
		Fills: []sim.Fill{
			{ID: "f1", Time: ts, Symbol: "AAPL", Action: strategies.Buy, Quantity: 400, Price: 100, TradeType: strategies.TradeOpen, PositionAfter: 400},
			{ID: "f2", Time: ts.Add(5 * time.Minute), Symbol: "AAPL", Action: strategies.Sell, Quantity: 400, Price: 101.5, TradeType: strategies.TradeClose},
		},
		ClosedTrades: []sim.ClosedTrade{
			{Symbol: "AAPL", Direction: sim.Long, Quantity: 400, EntryPrice: 100, ExitPrice: 101.5, EntryTime: ts, ExitTime: ts.Add(5 * time.Minute), PnL: 600},
		},
		EquityCurve: []sim.EquityPoint{
			{Time: ts, Cash: 60_000, MarketValue: 40_000, Equity: 100_000},
			{Time: ts.Add(5 * time.Minute), Cash: 100_600, Equity: 100_600},
		},
	}

	j := &memJournal{}
	require.NoError(t, WriteResult(j, "run-1", "MACD", "AAPL", result))

	require.Len(t, j.runs, 1)
	run := j.runs[0]
	assert.Equal(t, "run-1", run.RunID)
	assert.Equal(t, "MACD", run.Strategy)
	assert.Equal(t, "AAPL", run.Symbols)
	assert.Equal(t, 600.0, run.NetProfit)
	assert.Equal(t, 2, run.Fills)
	assert.Equal(t, 1, run.ClosedTrades)

	require.Len(t, j.fills, 2)
	assert.Equal(t, "run-1", j.fills[0].RunID)
	assert.Equal(t, "f1", j.fills[0].FillID)
	assert.Equal(t, "BUY", j.fills[0].Action)

	require.Len(t, j.trades, 1)
	assert.Equal(t, "LONG", j.trades[0].Direction)
	assert.Equal(t, 600.0, j.trades[0].PnL)

	require.Len(t, j.equity, 2)
	assert.Equal(t, 100_600.0, j.equity[1].Equity)
}
