package risk

import (
	"testing"

	"github.com/quantedge/quant/strategies"
	"github.com/stretchr/testify/assert"
)

func TestSizerSize(t *testing.T) {
	sizer := NewSizer()
	acct := Account{
		NetLiquidation: 100_000,
		AvailableFunds: 100_000,
		BuyingPower:    100_000,
	}

	t.Run("all three ceilings are reported", func(t *testing.T) {
		// Risk ceiling 2000/5 = 400, cash ceiling 100000/100 = 1000,
		// exposure ceiling 20000/100 = 200.
		res := sizer.Size(acct, strategies.Signal{EntryPrice: 100, StopLoss: 95})

		assert.True(t, res.Valid)
		assert.Equal(t, int64(400), res.RiskConstraint)
		assert.Equal(t, int64(1000), res.CashConstraint)
		assert.Equal(t, int64(200), res.RatioConstraint)
		assert.Equal(t, int64(200), res.Quantity)
	})

	t.Run("wide stop shifts the binding ceiling", func(t *testing.T) {
		// Risk: 2000/20 = 100 shares, below both other ceilings.
		res := sizer.Size(acct, strategies.Signal{EntryPrice: 100, StopLoss: 80})

		assert.True(t, res.Valid)
		assert.Equal(t, int64(100), res.Quantity)
		assert.InDelta(t, 2000.0, res.RiskAmount, 1e-9)
		assert.InDelta(t, 10_000.0, res.PositionValue, 1e-9)
	})

	t.Run("tight stop is bounded by exposure", func(t *testing.T) {
		// Risk ceiling alone would allow 4000 shares; the 20% position
		// ratio caps it at 200.
		res := sizer.Size(acct, strategies.Signal{EntryPrice: 100, StopLoss: 99.5})

		assert.True(t, res.Valid)
		assert.Equal(t, int64(200), res.Quantity)
	})

	t.Run("usable funds is the lesser of available and buying power", func(t *testing.T) {
		tight := Account{NetLiquidation: 100_000, AvailableFunds: 5_000, BuyingPower: 100_000}
		res := sizer.Size(tight, strategies.Signal{EntryPrice: 100, StopLoss: 80})

		assert.True(t, res.Valid)
		// Cash ceiling 5000/100 = 50 binds under the 100-share risk ceiling.
		assert.Equal(t, int64(50), res.Quantity)
	})

	t.Run("short signals size the same", func(t *testing.T) {
		res := sizer.Size(acct, strategies.Signal{EntryPrice: 100, StopLoss: 105, Action: strategies.Sell})

		assert.True(t, res.Valid)
		assert.Equal(t, int64(200), res.Quantity)
	})

	t.Run("larger capital never sizes smaller", func(t *testing.T) {
		sig := strategies.Signal{EntryPrice: 50, StopLoss: 45}
		small := sizer.Size(Account{NetLiquidation: 10_000, AvailableFunds: 10_000, BuyingPower: 10_000}, sig)
		large := sizer.Size(Account{NetLiquidation: 50_000, AvailableFunds: 50_000, BuyingPower: 50_000}, sig)

		assert.True(t, small.Valid)
		assert.True(t, large.Valid)
		assert.GreaterOrEqual(t, large.Quantity, small.Quantity)
	})
}

func TestSizerRejects(t *testing.T) {
	sizer := NewSizer()
	acct := Account{NetLiquidation: 100_000, AvailableFunds: 100_000, BuyingPower: 100_000}

	tests := []struct {
		name   string
		acct   Account
		sig    strategies.Signal
		reason string
	}{
		{
			"missing stop",
			acct,
			strategies.Signal{EntryPrice: 100},
			"missing entry or stop loss price",
		},
		{
			"missing entry",
			acct,
			strategies.Signal{StopLoss: 95},
			"missing entry or stop loss price",
		},
		{
			"stop equals entry",
			acct,
			strategies.Signal{EntryPrice: 100, StopLoss: 100},
			"invalid stop loss price",
		},
		{
			"zero net liquidation",
			Account{AvailableFunds: 1000, BuyingPower: 1000},
			strategies.Signal{EntryPrice: 100, StopLoss: 95},
			"net liquidation value is invalid",
		},
		{
			"no usable funds",
			Account{NetLiquidation: 100_000, AvailableFunds: 0, BuyingPower: 100_000},
			strategies.Signal{EntryPrice: 100, StopLoss: 95},
			"insufficient capital",
		},
		{
			"entry above every ceiling",
			Account{NetLiquidation: 100, AvailableFunds: 100, BuyingPower: 100},
			strategies.Signal{EntryPrice: 500, StopLoss: 475},
			"calculated position size is zero",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := sizer.Size(tt.acct, tt.sig)
			assert.False(t, res.Valid)
			assert.Equal(t, int64(0), res.Quantity)
			assert.Contains(t, res.Reason, tt.reason)
		})
	}
}

func TestUsableFunds(t *testing.T) {
	a := Account{AvailableFunds: 500, BuyingPower: 900}
	assert.Equal(t, 500.0, a.UsableFunds())

	b := Account{AvailableFunds: 900, BuyingPower: 500}
	assert.Equal(t, 500.0, b.UsableFunds())
}
