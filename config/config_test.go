package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlConfig = `
account:
  initial_capital: 250000
  commission_per_trade: 1.5
risk:
  max_risk_per_trade: 0.01
  max_position_ratio: 0.25
strategy:
  name: RSI
  options:
    RSI_PERIOD: "21"
data:
  dir: ./data
  timeframe: 15m
backtest:
  symbols: [AAPL, MSFT]
  start: "2024-01-02"
journal:
  type: sqlite
  db_path: ./runs.sqlite
`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile(t *testing.T) {
	t.Run("yaml", func(t *testing.T) {
		cfg, err := LoadFromFile(writeConfig(t, "run.yaml", yamlConfig))
		require.NoError(t, err)

		assert.Equal(t, 250_000.0, cfg.Account.InitialCapital)
		assert.Equal(t, 1.5, cfg.Account.CommissionPerTrade)
		assert.Equal(t, 0.01, cfg.Risk.MaxRiskPerTrade)
		assert.Equal(t, "RSI", cfg.Strategy.Name)
		assert.Equal(t, "21", cfg.Strategy.Options["RSI_PERIOD"])
		assert.Equal(t, []string{"AAPL", "MSFT"}, cfg.Backtest.Symbols)
		assert.Equal(t, "sqlite", cfg.Journal.Type)
	})

	t.Run("json", func(t *testing.T) {
		content := `{
  "account": {"initial_capital": 50000, "commission_per_trade": 0},
  "risk": {"max_risk_per_trade": 0.02, "max_position_ratio": 0.2},
  "strategy": {"name": "MACD"},
  "data": {"dir": "./data", "timeframe": "5m"},
  "backtest": {"symbols": ["AAPL"]},
  "journal": {"type": "none"}
}`
		cfg, err := LoadFromFile(writeConfig(t, "run.json", content))
		require.NoError(t, err)
		assert.Equal(t, 50_000.0, cfg.Account.InitialCapital)
		assert.Equal(t, "MACD", cfg.Strategy.Name)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})

	t.Run("invalid content fails validation", func(t *testing.T) {
		_, err := LoadFromFile(writeConfig(t, "bad.yaml", "account:\n  initial_capital: -10\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid config")
	})
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := Default()
	cfg.Backtest.Symbols = []string{"TSLA"}

	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"zero capital", func(c *Config) { c.Account.InitialCapital = 0 }, "initial_capital"},
		{"negative commission", func(c *Config) { c.Account.CommissionPerTrade = -1 }, "commission_per_trade"},
		{"risk out of range", func(c *Config) { c.Risk.MaxRiskPerTrade = 1.5 }, "max_risk_per_trade"},
		{"ratio out of range", func(c *Config) { c.Risk.MaxPositionRatio = 0 }, "max_position_ratio"},
		{"no strategy", func(c *Config) { c.Strategy.Name = "" }, "strategy.name"},
		{"no data dir", func(c *Config) { c.Data.Dir = "" }, "data.dir"},
		{"no timeframe", func(c *Config) { c.Data.Timeframe = "" }, "data.timeframe"},
		{"no symbols", func(c *Config) { c.Backtest.Symbols = nil }, "symbols"},
		{"csv journal without files", func(c *Config) { c.Journal.Type = "csv" }, "fills_file"},
		{"sqlite journal without path", func(c *Config) { c.Journal.Type = "sqlite" }, "db_path"},
		{"unknown journal", func(c *Config) { c.Journal.Type = "kafka" }, "journal.type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	assert.NoError(t, Default().Validate())
}
