package arena

import (
	"context"
	"testing"

	"zeroplay/evaluator"
	"zeroplay/game"
	"zeroplay/game/tictactoe"
	"zeroplay/searcher"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type failingEvaluator struct {
	err error
}

func (f failingEvaluator) Predict(board game.Board) ([]float64, float64, error) {
	return nil, 0, f.err
}

func (f failingEvaluator) Train(ctx context.Context, examples []evaluator.Example) error {
	return nil
}

func TestCompete(t *testing.T) {
	g := tictactoe.New(3)
	ctx := context.Background()

	t.Run("accounting for every game", func(t *testing.T) {
		config := Config{Games: 6, Workers: 3, Seed: 1, SearchOptions: []searcher.Option{searcher.WithSimulations(10)}}

		stats, err := Compete(ctx, g, evaluator.NewRandom(9, 1), evaluator.NewUniform(g), config)

		require.NoError(t, err)
		require.Equal(t, 6, stats.Games)
		require.Equal(t, stats.Games, stats.CandidateWins+stats.IncumbentWins+stats.Draws)
	})

	t.Run("splitting paired games between equal evaluators", func(t *testing.T) {
		for seed := uint64(0); seed < 5; seed++ {
			e := evaluator.NewUniform(g)
			config := Config{Games: 8, Workers: 4, Seed: seed, SearchOptions: []searcher.Option{searcher.WithSimulations(5)}}

			stats, err := Compete(ctx, g, e, e, config)

			require.NoError(t, err)
			require.Equal(t, stats.CandidateWins, stats.IncumbentWins, "Swapping seats should mirror every result")
		}
	})

	t.Run("playing nothing for an empty match", func(t *testing.T) {
		stats, err := Compete(ctx, g, evaluator.NewUniform(g), evaluator.NewUniform(g), Config{})

		require.NoError(t, err)
		require.Zero(t, stats.Games)
	})

	t.Run("propagating evaluator errors", func(t *testing.T) {
		boom := errors.New("boom")

		_, err := Compete(ctx, g, evaluator.NewUniform(g), failingEvaluator{err: boom}, Config{Games: 2, Workers: 2})

		require.True(t, errors.Is(err, boom))
	})

	t.Run("stopping on cancellation", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := Compete(cancelled, g, evaluator.NewUniform(g), evaluator.NewUniform(g), Config{Games: 2})

		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestAccept(t *testing.T) {
	tests := []struct {
		name      string
		stats     Stats
		threshold float64
		expected  bool
	}{
		{"rejecting an empty match", Stats{}, 0, false},
		{"accepting at exactly the threshold", Stats{Games: 10, CandidateWins: 5, Draws: 5}, 0.5, true},
		{"rejecting below the threshold", Stats{Games: 10, CandidateWins: 5, IncumbentWins: 1, Draws: 4}, 0.55, false},
		{"counting draws as not won", Stats{Games: 4, Draws: 4}, 0.1, false},
		{"accepting anything at threshold zero", Stats{Games: 3, IncumbentWins: 3}, 0, true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expected, Accept(test.stats, test.threshold))
		})
	}
}
