// Package config loads and validates backtest run configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the complete configuration for one backtest run.
type Config struct {
	Account  AccountConfig  `json:"account" yaml:"account"`
	Risk     RiskConfig     `json:"risk" yaml:"risk"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Data     DataConfig     `json:"data" yaml:"data"`
	Backtest BacktestConfig `json:"backtest" yaml:"backtest"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
}

// AccountConfig contains the simulated account parameters.
type AccountConfig struct {
	InitialCapital     float64 `json:"initial_capital" yaml:"initial_capital"`
	CommissionPerTrade float64 `json:"commission_per_trade" yaml:"commission_per_trade"`
}

// RiskConfig bounds position sizing.
type RiskConfig struct {
	MaxRiskPerTrade  float64 `json:"max_risk_per_trade" yaml:"max_risk_per_trade"`
	MaxPositionRatio float64 `json:"max_position_ratio" yaml:"max_position_ratio"`
}

// StrategyConfig names the strategy variant and its free-form options.
// Option values are tolerant-parsed by the strategy itself.
type StrategyConfig struct {
	Name    string            `json:"name" yaml:"name"`
	Options map[string]string `json:"options,omitempty" yaml:"options,omitempty"`
}

// DataConfig locates the bar history.
type DataConfig struct {
	Dir       string `json:"dir" yaml:"dir"`
	Timeframe string `json:"timeframe" yaml:"timeframe"`
}

// BacktestConfig selects symbols and the replay window. Start and End are
// inclusive dates (2006-01-02); empty means the engine default.
type BacktestConfig struct {
	Symbols []string `json:"symbols" yaml:"symbols"`
	Start   string   `json:"start,omitempty" yaml:"start,omitempty"`
	End     string   `json:"end,omitempty" yaml:"end,omitempty"`
}

// JournalConfig selects where run records are persisted.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	FillsFile  string `json:"fills_file,omitempty" yaml:"fills_file,omitempty"`
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", jsonErr)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration as YAML (.yaml/.yml) or JSON.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the file-level configuration. Strategy option values are
// not validated here; strategies tolerant-parse them.
func (c *Config) Validate() error {
	if c.Account.InitialCapital <= 0 {
		return fmt.Errorf("account.initial_capital must be positive")
	}
	if c.Account.CommissionPerTrade < 0 {
		return fmt.Errorf("account.commission_per_trade must not be negative")
	}
	if c.Risk.MaxRiskPerTrade <= 0 || c.Risk.MaxRiskPerTrade > 1 {
		return fmt.Errorf("risk.max_risk_per_trade must be between 0 and 1")
	}
	if c.Risk.MaxPositionRatio <= 0 || c.Risk.MaxPositionRatio > 1 {
		return fmt.Errorf("risk.max_position_ratio must be between 0 and 1")
	}
	if c.Strategy.Name == "" {
		return fmt.Errorf("strategy.name is required")
	}
	if c.Data.Dir == "" {
		return fmt.Errorf("data.dir is required")
	}
	if c.Data.Timeframe == "" {
		return fmt.Errorf("data.timeframe is required")
	}
	if len(c.Backtest.Symbols) == 0 {
		return fmt.Errorf("backtest.symbols must not be empty")
	}
	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.FillsFile == "" || c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal fills_file, trades_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}
	return nil
}

// Default returns a configuration with the canonical defaults.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			InitialCapital:     100_000,
			CommissionPerTrade: 0,
		},
		Risk: RiskConfig{
			MaxRiskPerTrade:  0.02,
			MaxPositionRatio: 0.20,
		},
		Strategy: StrategyConfig{
			Name: "MACD",
			Options: map[string]string{
				"TIMEFRAME": "5",
			},
		},
		Data: DataConfig{
			Dir:       "./market_data",
			Timeframe: "5m",
		},
		Backtest: BacktestConfig{
			Symbols: []string{"AAPL"},
		},
		Journal: JournalConfig{
			Type: "none",
		},
	}
}
