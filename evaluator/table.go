package evaluator

import (
	"context"
	"sync"

	"zeroplay/game"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type entry struct {
	policy []float64
	value  float64
	count  int
}

// Table learns the running mean of the policy and outcome targets seen for each
// canonical state. Unseen states predict a uniform legal policy and value 0.
type Table struct {
	mu      sync.RWMutex
	game    game.Game
	entries map[game.Key]*entry
}

func NewTable(g game.Game) *Table {
	return &Table{
		game:    g,
		entries: make(map[game.Key]*entry),
	}
}

func (t *Table) Predict(board game.Board) ([]float64, float64, error) {
	key := t.game.StateKey(board)

	t.mu.RLock()
	defer t.mu.RUnlock()

	e, ok := t.entries[key]
	if !ok {
		return game.UniformPolicy(t.game.LegalMask(board)), 0, nil
	}
	policy := make([]float64, len(e.policy))
	copy(policy, e.policy)
	return policy, e.value, nil
}

func (t *Table) Train(ctx context.Context, examples []Example) error {
	actionSize := t.game.ActionSize()

	t.mu.Lock()
	defer t.mu.Unlock()

	for i, ex := range examples {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if len(ex.Policy) != actionSize {
			return errors.Errorf("example %d has policy length %d, want %d", i, len(ex.Policy), actionSize)
		}

		key := t.game.StateKey(ex.Board)
		e, ok := t.entries[key]
		if !ok {
			e = &entry{policy: make([]float64, actionSize)}
			t.entries[key] = e
		}
		e.count++
		rate := 1 / float64(e.count)
		for a, p := range ex.Policy {
			e.policy[a] += rate * (p - e.policy[a])
		}
		e.value += rate * (ex.Outcome - e.value)
	}

	log.Debug().Msgf("trained table on %d examples, %d states known", len(examples), len(t.entries))
	return nil
}

// Len returns the number of states with learned targets.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.entries)
}

func (t *Table) Snapshot() Evaluator {
	t.mu.RLock()
	defer t.mu.RUnlock()

	entries := make(map[game.Key]*entry, len(t.entries))
	for key, e := range t.entries {
		policy := make([]float64, len(e.policy))
		copy(policy, e.policy)
		entries[key] = &entry{policy: policy, value: e.value, count: e.count}
	}
	return &Table{game: t.game, entries: entries}
}
