// Package strategies implements the signal-generating strategy variants and
// the decision state machine they share.
package strategies

import (
	"fmt"
	"sort"
	"strings"
)

// Strategy is the contract every variant implements. A strategy instance
// keeps per-symbol memory (last indicator values, price windows) that must be
// reset between independent runs; Reset discards it.
type Strategy interface {
	Name() string

	// Configure applies recognized option keys. Out-of-range or unparseable
	// values are silently ignored in favor of the previous value; this is a
	// tolerant-parse policy, never an error.
	Configure(opts map[string]string)

	// Analyze evaluates the current indicator values, price and position for
	// one symbol and emits a signal.
	Analyze(symbol string, macd, signalLine, hist, price float64, pos PositionSnapshot) Signal

	// ShouldTrade decides whether a signal is trade-worthy given the current
	// position.
	ShouldTrade(sig Signal, pos PositionSnapshot) Decision

	// Reset clears all per-symbol memory.
	Reset()
}

var registry = map[string]func() Strategy{}

// Register makes a strategy constructor available by name.
func Register(name string, create func() Strategy) {
	registry[strings.ToUpper(name)] = create
}

// New builds a fresh strategy instance by name (case-insensitive).
func New(name string) (Strategy, error) {
	create, ok := registry[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (supported: %s)", name, strings.Join(Names(), ", "))
	}
	return create(), nil
}

// Names lists the registered strategy names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
