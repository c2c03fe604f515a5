// Package risk computes bounded order sizes from account capital and a
// proposed trade.
package risk

import (
	"fmt"
	"math"

	"github.com/quantedge/quant/strategies"
)

// Default sizing limits.
const (
	DefaultMaxRiskPerTrade  = 0.02
	DefaultMaxPositionRatio = 0.20
)

// Account is the caller-supplied account snapshot used for one sizing call.
type Account struct {
	NetLiquidation float64
	AvailableFunds float64
	BuyingPower    float64
}

// UsableFunds bounds how much capital a new position may consume.
func (a Account) UsableFunds() float64 {
	return math.Min(a.AvailableFunds, a.BuyingPower)
}

// SizeResult is a structured sizing outcome. Valid=false is a recoverable
// skip with a reason, never an error.
type SizeResult struct {
	Quantity      int64
	RiskAmount    float64
	PositionValue float64
	Valid         bool
	Reason        string

	// Per-constraint share ceilings, kept for diagnostics.
	RiskConstraint  int64
	CashConstraint  int64
	RatioConstraint int64
}

// Sizer bounds order quantity by risk per trade, usable capital, and maximum
// position exposure.
type Sizer struct {
	MaxRiskPerTrade  float64
	MaxPositionRatio float64
}

func NewSizer() *Sizer {
	return &Sizer{
		MaxRiskPerTrade:  DefaultMaxRiskPerTrade,
		MaxPositionRatio: DefaultMaxPositionRatio,
	}
}

func invalid(reason string) SizeResult {
	return SizeResult{Valid: false, Reason: reason}
}

// Size computes the bounded share count for a signal: the minimum of the
// risk, capital and exposure ceilings, each floored to an integer, with a
// floor of one share when that minimum is positive.
func (s *Sizer) Size(acct Account, sig strategies.Signal) SizeResult {
	entry := sig.EntryPrice
	stop := sig.StopLoss

	if entry == 0 || stop == 0 {
		return invalid("missing entry or stop loss price")
	}

	riskPerShare := math.Abs(entry - stop)
	if riskPerShare <= 0 {
		return invalid("invalid stop loss price")
	}

	if acct.NetLiquidation <= 0 {
		return invalid("net liquidation value is invalid")
	}

	usable := acct.UsableFunds()
	if usable <= 0 {
		return invalid(fmt.Sprintf(
			"insufficient capital: available $%.2f, buying power $%.2f",
			acct.AvailableFunds, acct.BuyingPower))
	}

	maxRiskAmount := acct.NetLiquidation * s.MaxRiskPerTrade
	qtyRisk := int64(math.Floor(maxRiskAmount / riskPerShare))
	qtyCash := int64(math.Floor(usable / entry))
	qtyRatio := int64(math.Floor(acct.NetLiquidation * s.MaxPositionRatio / entry))

	quantity := min3(qtyRisk, qtyCash, qtyRatio)
	if quantity <= 0 {
		return invalid("calculated position size is zero")
	}

	positionValue := float64(quantity) * entry
	if positionValue > usable {
		// Defensive re-check; the cash ceiling should already prevent this.
		return invalid(fmt.Sprintf(
			"required capital $%.2f exceeds available funds $%.2f",
			positionValue, usable))
	}

	return SizeResult{
		Quantity:      quantity,
		RiskAmount:    float64(quantity) * riskPerShare,
		PositionValue: positionValue,
		Valid:         true,
		Reason: fmt.Sprintf(
			"position sizing constraints: risk %d shares, capital %d shares, position ratio %d shares",
			qtyRisk, qtyCash, qtyRatio),
		RiskConstraint:  qtyRisk,
		CashConstraint:  qtyCash,
		RatioConstraint: qtyRatio,
	}
}

func min3(a, b, c int64) int64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
