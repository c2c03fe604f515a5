package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRSIState(t *testing.T) {
	t.Run("neutral until two prices", func(t *testing.T) {
		r := NewRSI(14)
		assert.Equal(t, 50.0, r.Update(100))
	})

	t.Run("all gains", func(t *testing.T) {
		r := NewRSI(14)
		r.Update(100)
		assert.Equal(t, 100.0, r.Update(101))
	})

	t.Run("all losses", func(t *testing.T) {
		r := NewRSI(14)
		r.Update(100)
		assert.Equal(t, 0.0, r.Update(99))
	})

	t.Run("no movement is neutral", func(t *testing.T) {
		r := NewRSI(14)
		r.Update(100)
		r.Update(100)
		assert.Equal(t, 50.0, r.Update(100))
	})

	t.Run("divides by the change count", func(t *testing.T) {
		// Changes are +2, -1, +2. Both averages use the full count of 3, so
		// rs = (4/3)/(1/3) = 4 and rsi = 80. Wilder's per-side divisor would
		// give 66.67 here instead.
		r := NewRSI(3)
		r.Update(100)
		r.Update(102)
		r.Update(101)
		assert.InDelta(t, 80.0, r.Update(103), 1e-9)
	})

	t.Run("window drops old prices", func(t *testing.T) {
		r := NewRSI(2)
		r.Update(100)
		r.Update(110)
		r.Update(100)
		r.Update(101)
		// Only the last two changes (+1, +1) remain in the window.
		assert.Equal(t, 100.0, r.Update(102))
	})

	t.Run("reset clears the window", func(t *testing.T) {
		r := NewRSI(5)
		r.Update(100)
		r.Update(105)
		r.Reset()
		assert.Equal(t, 50.0, r.Update(100))
	})

	t.Run("name and period", func(t *testing.T) {
		r := NewRSI(7)
		assert.Equal(t, "RSI(7)", r.Name())
		assert.Equal(t, 7, r.Period())
	})
}
