package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordRun(r RunRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO runs
		(run_id, created, strategy, symbols, start_time, end_time,
		 initial_capital, ending_equity, net_profit, return_pct,
		 annualized_return, max_drawdown, fills, closed_trades)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created, r.Strategy, r.Symbols, r.Start, r.End,
		r.InitialCapital, r.EndingEquity, r.NetProfit, r.ReturnPct,
		r.AnnualizedReturn, r.MaxDrawdown, r.Fills, r.ClosedTrades,
	)
	return err
}

func (j *SQLiteJournal) RecordFill(f FillRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO fills
		(fill_id, run_id, time, symbol, action, quantity, price,
		 cash_after, market_value_after, equity_after, reason, trade_type, position_after)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.FillID, f.RunID, f.Time, f.Symbol, f.Action, f.Quantity, f.Price,
		f.CashAfter, f.MarketValueAfter, f.EquityAfter, f.Reason, f.TradeType, f.PositionAfter,
	)
	return err
}

func (j *SQLiteJournal) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(run_id, symbol, direction, quantity, entry_price, exit_price, entry_time, exit_time, pnl)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.RunID, t.Symbol, t.Direction, t.Quantity, t.EntryPrice,
		t.ExitPrice, t.EntryTime, t.ExitTime, t.PnL,
	)
	return err
}

func (j *SQLiteJournal) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(run_id, time, cash, market_value, equity)
		VALUES (?, ?, ?, ?, ?)`,
		e.RunID, e.Time, e.Cash, e.MarketValue, e.Equity,
	)
	return err
}

// GetRun loads one run summary by ID.
func (j *SQLiteJournal) GetRun(runID string) (RunRecord, error) {
	var r RunRecord
	err := j.db.QueryRow(`
		SELECT run_id, created, strategy, symbols, start_time, end_time,
		       initial_capital, ending_equity, net_profit, return_pct,
		       annualized_return, max_drawdown, fills, closed_trades
		FROM runs WHERE run_id = ?`, runID).Scan(
		&r.RunID, &r.Created, &r.Strategy, &r.Symbols, &r.Start, &r.End,
		&r.InitialCapital, &r.EndingEquity, &r.NetProfit, &r.ReturnPct,
		&r.AnnualizedReturn, &r.MaxDrawdown, &r.Fills, &r.ClosedTrades,
	)
	if err != nil {
		return RunRecord{}, fmt.Errorf("get run %q: %w", runID, err)
	}
	return r, nil
}

// ListTradesByRun returns a run's closed trades ordered by exit time.
func (j *SQLiteJournal) ListTradesByRun(runID string) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, symbol, direction, quantity, entry_price, exit_price,
		       entry_time, exit_time, pnl
		FROM trades WHERE run_id = ? ORDER BY exit_time`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var t TradeRecord
		if err := rows.Scan(&t.RunID, &t.Symbol, &t.Direction, &t.Quantity,
			&t.EntryPrice, &t.ExitPrice, &t.EntryTime, &t.ExitTime, &t.PnL); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListFillsByRun returns a run's fills ordered by time.
func (j *SQLiteJournal) ListFillsByRun(runID string) ([]FillRecord, error) {
	rows, err := j.db.Query(`
		SELECT fill_id, run_id, time, symbol, action, quantity, price,
		       cash_after, market_value_after, equity_after, reason, trade_type, position_after
		FROM fills WHERE run_id = ? ORDER BY time, fill_id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FillRecord
	for rows.Next() {
		var f FillRecord
		if err := rows.Scan(&f.FillID, &f.RunID, &f.Time, &f.Symbol, &f.Action,
			&f.Quantity, &f.Price, &f.CashAfter, &f.MarketValueAfter,
			&f.EquityAfter, &f.Reason, &f.TradeType, &f.PositionAfter); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
