package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/quantedge/quant/backtest"
	"github.com/quantedge/quant/config"
	"github.com/quantedge/quant/journal"
	"github.com/quantedge/quant/market"
	"github.com/quantedge/quant/pkg/id"
	"github.com/quantedge/quant/strategies"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a backtest over historical bar data",
	Long: `Replay CSV bar history through a strategy and print the run report.

Settings come from a config file, with flags overriding individual values.
With no config file the defaults apply.

Supported strategies: ` + strings.Join(strategies.Names(), ", ") + `

Examples:
  backtester run --config run.yaml
  backtester run --symbols AAPL,MSFT --strategy RSI --data-dir ./market_data
  backtester run --symbols AAPL --start 2024-01-02 --end 2024-06-28 --journal sqlite`,
	RunE: runRun,
}

var (
	runConfigPath string
	runSymbols    []string
	runStrategy   string
	runStart      string
	runEnd        string
	runDataDir    string
	runTimeframe  string
	runCapital    float64
	runCommission float64
	runJournal    string
	runDBPath     string
	runVerbose    bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "path to YAML or JSON config file")
	runCmd.Flags().StringSliceVarP(&runSymbols, "symbols", "S", nil, "symbols to replay (comma separated)")
	runCmd.Flags().StringVarP(&runStrategy, "strategy", "s", "", "strategy name")
	runCmd.Flags().StringVar(&runStart, "start", "", "replay start date (2006-01-02, inclusive)")
	runCmd.Flags().StringVar(&runEnd, "end", "", "replay end date (2006-01-02, inclusive)")
	runCmd.Flags().StringVarP(&runDataDir, "data-dir", "d", "", "directory containing <SYMBOL>_<timeframe>_bars.csv files")
	runCmd.Flags().StringVar(&runTimeframe, "timeframe", "", "bar timeframe suffix in data filenames (e.g. 5m)")
	runCmd.Flags().Float64Var(&runCapital, "capital", 0, "starting cash")
	runCmd.Flags().Float64Var(&runCommission, "commission", -1, "commission per fill")
	runCmd.Flags().StringVarP(&runJournal, "journal", "j", "", "journal type (none, csv, sqlite)")
	runCmd.Flags().StringVar(&runDBPath, "db", "", "path to SQLite journal DB")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "print rejected signals and skipped sizings")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig()
	if err != nil {
		return err
	}

	strat, err := strategies.New(cfg.Strategy.Name)
	if err != nil {
		return err
	}

	start, err := parseDate(cfg.Backtest.Start)
	if err != nil {
		return fmt.Errorf("start date: %w", err)
	}
	end, err := parseDate(cfg.Backtest.End)
	if err != nil {
		return fmt.Errorf("end date: %w", err)
	}

	source := market.NewCSVSource(cfg.Data.Dir, cfg.Data.Timeframe)

	engine := backtest.New(strat, source)
	engine.Options = cfg.Strategy.Options
	engine.InitialCapital = cfg.Account.InitialCapital
	engine.Commission = cfg.Account.CommissionPerTrade
	engine.Sizer.MaxRiskPerTrade = cfg.Risk.MaxRiskPerTrade
	engine.Sizer.MaxPositionRatio = cfg.Risk.MaxPositionRatio
	engine.Verbose = runVerbose

	fmt.Printf("Running %s backtest\n", cfg.Strategy.Name)
	fmt.Printf("  Symbols: %s\n", strings.Join(cfg.Backtest.Symbols, ", "))
	fmt.Printf("  Data: %s\n\n", cfg.Data.Dir)

	result, err := engine.Run(context.Background(), cfg.Backtest.Symbols, start, end)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	backtest.PrintResult(os.Stdout, result)

	return writeJournal(cfg, result)
}

// loadRunConfig merges the config file, defaults and flag overrides.
func loadRunConfig() (*config.Config, error) {
	cfg := config.Default()
	if runConfigPath != "" {
		loaded, err := config.LoadFromFile(runConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	if len(runSymbols) > 0 {
		cfg.Backtest.Symbols = runSymbols
	}
	if runStrategy != "" {
		cfg.Strategy.Name = runStrategy
	}
	if runStart != "" {
		cfg.Backtest.Start = runStart
	}
	if runEnd != "" {
		cfg.Backtest.End = runEnd
	}
	if runDataDir != "" {
		cfg.Data.Dir = runDataDir
	}
	if runTimeframe != "" {
		cfg.Data.Timeframe = runTimeframe
	}
	if runCapital > 0 {
		cfg.Account.InitialCapital = runCapital
	}
	if runCommission >= 0 {
		cfg.Account.CommissionPerTrade = runCommission
	}
	if runJournal != "" {
		cfg.Journal.Type = runJournal
	}
	if runDBPath != "" {
		cfg.Journal.DBPath = runDBPath
	}

	switch cfg.Journal.Type {
	case "csv":
		if cfg.Journal.FillsFile == "" {
			cfg.Journal.FillsFile = "fills.csv"
		}
		if cfg.Journal.TradesFile == "" {
			cfg.Journal.TradesFile = "trades.csv"
		}
		if cfg.Journal.EquityFile == "" {
			cfg.Journal.EquityFile = "equity.csv"
		}
	case "sqlite":
		if cfg.Journal.DBPath == "" {
			cfg.Journal.DBPath = "./backtest.sqlite"
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}

func writeJournal(cfg *config.Config, result *backtest.Result) error {
	j, err := openJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	if j == nil {
		return nil
	}
	defer j.Close()

	runID := id.New()
	symbols := strings.Join(cfg.Backtest.Symbols, ",")
	if err := journal.WriteResult(j, runID, cfg.Strategy.Name, symbols, result); err != nil {
		return fmt.Errorf("write journal: %w", err)
	}

	fmt.Printf("\nJournaled run %s (%s)\n", runID, cfg.Journal.Type)
	return nil
}

func openJournal(jc config.JournalConfig) (journal.Journal, error) {
	switch strings.ToLower(strings.TrimSpace(jc.Type)) {
	case "", "none":
		return nil, nil
	case "csv":
		return journal.NewCSV(jc.FillsFile, jc.TradesFile, jc.EquityFile)
	case "sqlite":
		return journal.NewSQLite(jc.DBPath)
	default:
		return nil, fmt.Errorf("unknown journal type %q (supported: none, csv, sqlite)", jc.Type)
	}
}
