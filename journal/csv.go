package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

// CSVJournal writes fills, closed trades and equity points to three headered
// CSV files. Run summary rows have no CSV home and are dropped.
type CSVJournal struct {
	fills  *csv.Writer
	trades *csv.Writer
	equity *csv.Writer

	ff, tf, ef *os.File
}

func NewCSV(fillsPath, tradesPath, equityPath string) (*CSVJournal, error) {
	ff, err := os.Create(fillsPath)
	if err != nil {
		return nil, err
	}
	tf, err := os.Create(tradesPath)
	if err != nil {
		ff.Close()
		return nil, err
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		ff.Close()
		tf.Close()
		return nil, err
	}

	j := &CSVJournal{
		fills:  csv.NewWriter(ff),
		trades: csv.NewWriter(tf),
		equity: csv.NewWriter(ef),
		ff:     ff,
		tf:     tf,
		ef:     ef,
	}

	headers := []struct {
		w   *csv.Writer
		row []string
	}{
		{j.fills, []string{"run_id", "fill_id", "time", "symbol", "action", "quantity", "price", "cash_after", "market_value_after", "equity_after", "reason", "trade_type", "position_after"}},
		{j.trades, []string{"run_id", "symbol", "direction", "quantity", "entry_price", "exit_price", "entry_time", "exit_time", "pnl"}},
		{j.equity, []string{"run_id", "time", "cash", "market_value", "equity"}},
	}
	for _, h := range headers {
		if err := h.w.Write(h.row); err != nil {
			j.Close()
			return nil, err
		}
		h.w.Flush()
		if err := h.w.Error(); err != nil {
			j.Close()
			return nil, err
		}
	}

	return j, nil
}

func (j *CSVJournal) RecordRun(r RunRecord) error {
	return nil
}

func (j *CSVJournal) RecordFill(f FillRecord) error {
	if err := j.fills.Write([]string{
		f.RunID,
		f.FillID,
		f.Time.Format(time.RFC3339),
		f.Symbol,
		f.Action,
		strconv.FormatInt(f.Quantity, 10),
		fmtF(f.Price),
		fmtF(f.CashAfter),
		fmtF(f.MarketValueAfter),
		fmtF(f.EquityAfter),
		f.Reason,
		f.TradeType,
		strconv.FormatInt(f.PositionAfter, 10),
	}); err != nil {
		return err
	}
	j.fills.Flush()
	return j.fills.Error()
}

func (j *CSVJournal) RecordTrade(t TradeRecord) error {
	if err := j.trades.Write([]string{
		t.RunID,
		t.Symbol,
		t.Direction,
		strconv.FormatInt(t.Quantity, 10),
		fmtF(t.EntryPrice),
		fmtF(t.ExitPrice),
		t.EntryTime.Format(time.RFC3339),
		t.ExitTime.Format(time.RFC3339),
		fmtF(t.PnL),
	}); err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSVJournal) RecordEquity(e EquitySnapshot) error {
	if err := j.equity.Write([]string{
		e.RunID,
		e.Time.Format(time.RFC3339),
		fmtF(e.Cash),
		fmtF(e.MarketValue),
		fmtF(e.Equity),
	}); err != nil {
		return err
	}
	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSVJournal) Close() error {
	j.fills.Flush()
	j.trades.Flush()
	j.equity.Flush()
	for _, w := range []*csv.Writer{j.fills, j.trades, j.equity} {
		if err := w.Error(); err != nil {
			return err
		}
	}
	for _, f := range []*os.File{j.ff, j.tf, j.ef} {
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}

func fmtF(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
