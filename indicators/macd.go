package indicators

import "fmt"

// Canonical MACD parameters.
const (
	MACDFastPeriod   = 12
	MACDSlowPeriod   = 26
	MACDSignalPeriod = 9
	MACDWarmupBars   = 30
)

// MACDState maintains the incremental MACD recurrence for one symbol.
//
// The first observed close initializes both EMAs to that close and the signal
// line to zero, so the first histogram is always zero and not a usable
// signal. Callers should treat output as non-actionable until WarmedUp()
// reports true, regardless of the raw recurrence values.
type MACDState struct {
	fast, slow, signalPeriod int

	aFast   float64
	aSlow   float64
	aSignal float64

	emaFast float64
	emaSlow float64
	signal  float64

	warmup   int
	barCount int
}

// NewMACD creates a MACD state with the given EMA periods and warmup bar
// count. Smoothing factors follow the standard 2/(n+1) convention.
func NewMACD(fast, slow, signalPeriod, warmup int) *MACDState {
	return &MACDState{
		fast:         fast,
		slow:         slow,
		signalPeriod: signalPeriod,
		aFast:        2.0 / float64(fast+1),
		aSlow:        2.0 / float64(slow+1),
		aSignal:      2.0 / float64(signalPeriod+1),
		warmup:       warmup,
	}
}

// DefaultMACD returns a MACD(12,26,9) state with the default 30-bar warmup.
func DefaultMACD() *MACDState {
	return NewMACD(MACDFastPeriod, MACDSlowPeriod, MACDSignalPeriod, MACDWarmupBars)
}

func (m *MACDState) Name() string {
	return fmt.Sprintf("MACD(%d,%d,%d)", m.fast, m.slow, m.signalPeriod)
}

func (m *MACDState) Reset() {
	m.emaFast = 0
	m.emaSlow = 0
	m.signal = 0
	m.barCount = 0
}

// Update consumes one closing price and returns the (macd, signal, hist)
// triple. The recurrence is a pure function of prior state and the current
// price, so a fixed price sequence is bit-reproducible across runs.
func (m *MACDState) Update(close float64) (macd, signal, hist float64) {
	m.barCount++

	if m.barCount == 1 {
		m.emaFast = close
		m.emaSlow = close
		macd = 0.0
		m.signal = macd
	} else {
		m.emaFast = m.aFast*close + (1-m.aFast)*m.emaFast
		m.emaSlow = m.aSlow*close + (1-m.aSlow)*m.emaSlow
		macd = m.emaFast - m.emaSlow
		m.signal = m.aSignal*macd + (1-m.aSignal)*m.signal
	}

	hist = macd - m.signal
	return macd, m.signal, hist
}

// WarmedUp reports whether enough bars have been observed for the output to
// be actionable.
func (m *MACDState) WarmedUp() bool {
	return m.barCount >= m.warmup
}

// BarCount returns the number of closes consumed so far.
func (m *MACDState) BarCount() int {
	return m.barCount
}
