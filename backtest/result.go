package backtest

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/quantedge/quant/sim"
)

// Summary is the per-symbol aggregate built from closed trades.
type Summary struct {
	Symbol      string
	TotalTrades int
	NetPnL      float64
	ReturnPct   float64
	WinRate     float64
}

// Result is the aggregate outcome of one run. All slices are append-only
// records owned by the result once the run completes.
type Result struct {
	Start            time.Time
	End              time.Time
	InitialCapital   float64
	EndingEquity     float64
	NetProfit        float64
	ReturnPct        float64
	AnnualizedReturn float64
	MaxDrawdown      float64

	Fills        []sim.Fill
	ClosedTrades []sim.ClosedTrade
	EquityCurve  []sim.EquityPoint
	Summaries    []Summary
}

func (e *Engine) buildResult(ledger *sim.Simulator) *Result {
	curve := dedupeByTime(ledger.EquityCurve())

	first := curve[0]
	last := curve[len(curve)-1]

	endingEquity := last.Equity
	netProfit := endingEquity - e.InitialCapital

	returnPct := 0.0
	if e.InitialCapital != 0 {
		returnPct = netProfit / e.InitialCapital
	}

	numDays := int(last.Time.Sub(first.Time).Hours() / 24)
	if numDays < 1 {
		numDays = 1
	}
	annualized := math.Pow(1+returnPct, 365.0/float64(numDays)) - 1

	return &Result{
		Start:            first.Time,
		End:              last.Time,
		InitialCapital:   e.InitialCapital,
		EndingEquity:     endingEquity,
		NetProfit:        netProfit,
		ReturnPct:        returnPct,
		AnnualizedReturn: annualized,
		MaxDrawdown:      maxDrawdown(curve),
		Fills:            ledger.Fills(),
		ClosedTrades:     ledger.ClosedTrades(),
		EquityCurve:      curve,
		Summaries:        e.buildSummaries(ledger.ClosedTrades()),
	}
}

// dedupeByTime keeps the first equity point per timestamp. The input is
// already ascending because bars are replayed in order.
func dedupeByTime(curve []sim.EquityPoint) []sim.EquityPoint {
	out := make([]sim.EquityPoint, 0, len(curve))
	for i, p := range curve {
		if i > 0 && p.Time.Equal(out[len(out)-1].Time) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// maxDrawdown is the largest peak-to-trough equity decline as a positive
// ratio. Points observed while the running peak is zero have no defined
// ratio and are excluded.
func maxDrawdown(curve []sim.EquityPoint) float64 {
	peak := math.Inf(-1)
	worst := 0.0
	for _, p := range curve {
		if p.Equity > peak {
			peak = p.Equity
		}
		if peak == 0 {
			continue
		}
		dd := (p.Equity - peak) / peak
		if dd < worst {
			worst = dd
		}
	}
	return math.Abs(worst)
}

// buildSummaries groups closed trades by symbol in first-seen order.
func (e *Engine) buildSummaries(closed []sim.ClosedTrade) []Summary {
	if len(closed) == 0 {
		return nil
	}

	order := make([]string, 0)
	bySymbol := make(map[string][]sim.ClosedTrade)
	for _, trade := range closed {
		if _, ok := bySymbol[trade.Symbol]; !ok {
			order = append(order, trade.Symbol)
		}
		bySymbol[trade.Symbol] = append(bySymbol[trade.Symbol], trade)
	}

	summaries := make([]Summary, 0, len(order))
	for _, symbol := range order {
		trades := bySymbol[symbol]
		pnl := 0.0
		wins := 0
		for _, trade := range trades {
			pnl += trade.PnL
			if trade.PnL > 0 {
				wins++
			}
		}
		returnPct := 0.0
		if e.InitialCapital != 0 {
			returnPct = pnl / e.InitialCapital
		}
		summaries = append(summaries, Summary{
			Symbol:      symbol,
			TotalTrades: len(trades),
			NetPnL:      pnl,
			ReturnPct:   returnPct,
			WinRate:     float64(wins) / float64(len(trades)),
		})
	}
	return summaries
}

// PrintResult writes a human-readable run report.
func PrintResult(w io.Writer, r *Result) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Backtest Result")
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintf(w, "Period:          %s -> %s\n",
		r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
	fmt.Fprintf(w, "Initial Capital: $%.2f\n", r.InitialCapital)
	fmt.Fprintf(w, "Ending Equity:   $%.2f\n", r.EndingEquity)
	fmt.Fprintf(w, "Net Profit:      $%.2f\n", r.NetProfit)
	fmt.Fprintf(w, "Return:          %.2f%%\n", r.ReturnPct*100)
	fmt.Fprintf(w, "Annualized:      %.2f%%\n", r.AnnualizedReturn*100)
	fmt.Fprintf(w, "Max Drawdown:    %.2f%%\n", r.MaxDrawdown*100)
	fmt.Fprintf(w, "Fills:           %d\n", len(r.Fills))

	if len(r.ClosedTrades) > 0 {
		wins := 0
		for _, trade := range r.ClosedTrades {
			if trade.PnL > 0 {
				wins++
			}
		}
		winRate := float64(wins) / float64(len(r.ClosedTrades))
		fmt.Fprintf(w, "Win Rate:        %.2f%% (%d/%d)\n", winRate*100, wins, len(r.ClosedTrades))
	}

	for _, s := range r.Summaries {
		fmt.Fprintf(w, "\n - %s: trades=%d | pnl=$%.2f | return=%.2f%% | win-rate=%.2f%%\n",
			s.Symbol, s.TotalTrades, s.NetPnL, s.ReturnPct*100, s.WinRate*100)
	}

	fmt.Fprintln(w)
}
