package indicators

import "fmt"

// RSIState maintains a bounded window of recent closes and computes a
// relative strength index over it.
//
// The averaging deliberately divides both the gain and the loss sums by the
// total number of price changes in the window, not by the count of gains or
// losses respectively. This diverges from Wilder's smoothing but matches the
// behavior this engine reproduces; do not "fix" it.
type RSIState struct {
	period int
	prices []float64
}

func NewRSI(period int) *RSIState {
	return &RSIState{
		period: period,
		prices: make([]float64, 0, period+1),
	}
}

func (r *RSIState) Name() string {
	return fmt.Sprintf("RSI(%d)", r.period)
}

func (r *RSIState) Period() int { return r.period }

func (r *RSIState) Reset() {
	r.prices = r.prices[:0]
}

// Update consumes one closing price and returns the current RSI.
// It returns 50 while fewer than two prices are available, 100 when the
// window shows gains and no losses, and 50 when the window has no movement.
func (r *RSIState) Update(close float64) float64 {
	r.prices = append(r.prices, close)
	if len(r.prices) > r.period+1 {
		r.prices = r.prices[len(r.prices)-(r.period+1):]
	}

	if len(r.prices) < 2 {
		return 50.0
	}

	changes := make([]float64, 0, len(r.prices)-1)
	for i := 1; i < len(r.prices); i++ {
		changes = append(changes, r.prices[i]-r.prices[i-1])
	}
	if len(changes) > r.period {
		changes = changes[len(changes)-r.period:]
	}

	var gainSum, lossSum float64
	hasGain, hasLoss := false, false
	for _, change := range changes {
		switch {
		case change > 0:
			gainSum += change
			hasGain = true
		case change < 0:
			lossSum += -change
			hasLoss = true
		}
	}

	if !hasGain && !hasLoss {
		return 50.0
	}

	// Divisor is the total change count, not the gain/loss count.
	avgGain := gainSum / float64(len(changes))
	avgLoss := lossSum / float64(len(changes))

	if avgLoss == 0 {
		return 100.0
	}

	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
