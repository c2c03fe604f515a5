package strategies

// Action is what a signal asks the engine to do this bar.
type Action string

const (
	Buy  Action = "BUY"
	Sell Action = "SELL"
	Hold Action = "HOLD"
)

// TradeType tags how a BUY/SELL signal mutates the position.
type TradeType string

const (
	TradeOpen            TradeType = "OPEN"
	TradeClose           TradeType = "CLOSE"
	TradeCloseAndReverse TradeType = "CLOSE_AND_REVERSE"
	TradeNone            TradeType = "NONE"
)

// Signal is produced fresh on every bar. StopLoss of 0 means no stop was
// set; the sizing layer rejects such signals explicitly.
type Signal struct {
	Action     Action
	Reason     string
	EntryPrice float64
	StopLoss   float64
	Confidence float64 // in [0, 1]
	TradeType  TradeType

	// CloseQuantity is the number of shares the closing leg must cover.
	// Only meaningful for TradeClose and TradeCloseAndReverse.
	CloseQuantity int64
}

// Decision is the accept/reject verdict for a signal against the current
// position. It is a structured value, never an error.
type Decision struct {
	ShouldTrade bool
	Reason      string

	Confidence      float64
	CurrentPosition int64
}

// PositionSnapshot is the engine's view of a position handed to a strategy.
// Quantity is signed: positive long, negative short.
type PositionSnapshot struct {
	Quantity int64
	AvgPrice float64
}
