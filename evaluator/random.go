package evaluator

import (
	"context"
	"math"
	"sync"

	"zeroplay/game"

	"golang.org/x/exp/rand"
)

// Random predicts a normalized |gaussian| policy over the whole action space and
// a uniform value in [-1, 1). It ignores the board.
type Random struct {
	mu         sync.Mutex
	r          *rand.Rand
	actionSize int
}

func NewRandom(actionSize int, seed uint64) *Random {
	return &Random{
		r:          rand.New(rand.NewSource(seed)),
		actionSize: actionSize,
	}
}

func (e *Random) Predict(board game.Board) ([]float64, float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	policy := make([]float64, e.actionSize)
	sum := 0.0
	for a := range policy {
		policy[a] = math.Abs(e.r.NormFloat64())
		sum += policy[a]
	}
	if sum > 0 {
		for a := range policy {
			policy[a] /= sum
		}
	}
	return policy, 2*e.r.Float64() - 1, nil
}

func (e *Random) Train(ctx context.Context, examples []Example) error {
	return ctx.Err()
}
