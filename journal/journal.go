// Package journal persists finished backtest runs: fills, closed trades,
// equity points and a run summary row. Nothing is written during the hot
// replay loop; a run's records are dumped from the result after it completes.
package journal

import (
	"time"

	"github.com/quantedge/quant/backtest"
)

// FillRecord is one executed order leg.
type FillRecord struct {
	RunID            string
	FillID           string
	Time             time.Time
	Symbol           string
	Action           string
	Quantity         int64
	Price            float64
	CashAfter        float64
	MarketValueAfter float64
	EquityAfter      float64
	Reason           string
	TradeType        string
	PositionAfter    int64
}

// TradeRecord is one closed round trip.
type TradeRecord struct {
	RunID      string
	Symbol     string
	Direction  string
	Quantity   int64
	EntryPrice float64
	ExitPrice  float64
	EntryTime  time.Time
	ExitTime   time.Time
	PnL        float64
}

// EquitySnapshot is one end-of-bar mark of the ledger.
type EquitySnapshot struct {
	RunID       string
	Time        time.Time
	Cash        float64
	MarketValue float64
	Equity      float64
}

// RunRecord summarizes one backtest run.
type RunRecord struct {
	RunID            string
	Created          time.Time
	Strategy         string
	Symbols          string
	Start            time.Time
	End              time.Time
	InitialCapital   float64
	EndingEquity     float64
	NetProfit        float64
	ReturnPct        float64
	AnnualizedReturn float64
	MaxDrawdown      float64
	Fills            int
	ClosedTrades     int
}

type Journal interface {
	RecordRun(RunRecord) error
	RecordFill(FillRecord) error
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// WriteResult dumps a finished run to the journal.
func WriteResult(j Journal, runID, strategy, symbols string, r *backtest.Result) error {
	if err := j.RecordRun(RunRecord{
		RunID:            runID,
		Created:          time.Now().UTC(),
		Strategy:         strategy,
		Symbols:          symbols,
		Start:            r.Start,
		End:              r.End,
		InitialCapital:   r.InitialCapital,
		EndingEquity:     r.EndingEquity,
		NetProfit:        r.NetProfit,
		ReturnPct:        r.ReturnPct,
		AnnualizedReturn: r.AnnualizedReturn,
		MaxDrawdown:      r.MaxDrawdown,
		Fills:            len(r.Fills),
		ClosedTrades:     len(r.ClosedTrades),
	}); err != nil {
		return err
	}

	for _, f := range r.Fills {
		if err := j.RecordFill(FillRecord{
			RunID:            runID,
			FillID:           f.ID,
			Time:             f.Time,
			Symbol:           f.Symbol,
			Action:           string(f.Action),
			Quantity:         f.Quantity,
			Price:            f.Price,
			CashAfter:        f.CashAfter,
			MarketValueAfter: f.MarketValueAfter,
			EquityAfter:      f.EquityAfter,
			Reason:           f.Reason,
			TradeType:        string(f.TradeType),
			PositionAfter:    f.PositionAfter,
		}); err != nil {
			return err
		}
	}

	for _, t := range r.ClosedTrades {
		if err := j.RecordTrade(TradeRecord{
			RunID:      runID,
			Symbol:     t.Symbol,
			Direction:  string(t.Direction),
			Quantity:   t.Quantity,
			EntryPrice: t.EntryPrice,
			ExitPrice:  t.ExitPrice,
			EntryTime:  t.EntryTime,
			ExitTime:   t.ExitTime,
			PnL:        t.PnL,
		}); err != nil {
			return err
		}
	}

	for _, p := range r.EquityCurve {
		if err := j.RecordEquity(EquitySnapshot{
			RunID:       runID,
			Time:        p.Time,
			Cash:        p.Cash,
			MarketValue: p.MarketValue,
			Equity:      p.Equity,
		}); err != nil {
			return err
		}
	}

	return nil
}
