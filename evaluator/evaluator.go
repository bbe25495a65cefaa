// Package evaluator defines the policy/value source consulted by the search at
// newly discovered states, and a few implementations of it.
package evaluator

import (
	"context"

	"zeroplay/game"
)

// Example is one labelled training position. Outcome is relative to the player
// to move at Board, which is canonical.
type Example struct {
	Board   game.Board
	Policy  []float64
	Outcome float64
}

// Evaluator maps a canonical board to a prior policy over the whole action space
// and a value in [-1, 1] for the player to move. Implementations shared between
// goroutines must be safe for concurrent use.
type Evaluator interface {
	Predict(board game.Board) (policy []float64, value float64, err error)
	Train(ctx context.Context, examples []Example) error
}

// Snapshotter is implemented by evaluators that can produce an independent copy
// of their current parameters.
type Snapshotter interface {
	Snapshot() Evaluator
}
