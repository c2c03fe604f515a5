package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "backtester",
	Short: "A deterministic equity strategy backtester",
	Long: `Backtester replays historical bar data through a trading strategy
and produces a full execution and performance record.

It provides tools for:
  - Backtesting MACD and RSI strategies against CSV bar history
  - Risk-based position sizing with per-trade and per-position caps
  - A cash-settled execution ledger with mark-to-market equity tracking
  - Per-symbol and aggregate performance summaries
  - Journaling fills, trades and equity curves to CSV or SQLite`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
