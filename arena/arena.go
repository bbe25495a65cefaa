// Package arena pits two evaluators against each other through greedy tree
// search and decides whether a retrained evaluator replaces the incumbent.
package arena

import (
	"context"
	"runtime"

	"zeroplay/evaluator"
	"zeroplay/game"
	"zeroplay/searcher"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	Games int
	// Workers bounds the games played at once. Zero uses every CPU.
	Workers       int
	Seed          uint64
	SearchOptions []searcher.Option
}

type Stats struct {
	Games         int
	CandidateWins int
	IncumbentWins int
	Draws         int
}

// WinRate is the share of games the candidate won. Draws count as not won.
func (s Stats) WinRate() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.CandidateWins) / float64(s.Games)
}

// Accept reports whether the candidate won at least threshold of the games.
// An empty match never accepts.
func Accept(stats Stats, threshold float64) bool {
	return stats.Games > 0 && stats.WinRate() >= threshold
}

type outcome int

const (
	draw outcome = iota
	candidateWin
	incumbentWin
)

// Compete plays config.Games games between candidate and incumbent. The
// candidate moves first in even-indexed games. Games 2k and 2k+1 give each
// seat the same search seed, so equal evaluators split every pair.
func Compete(ctx context.Context, g game.Game, candidate, incumbent evaluator.Evaluator, config Config) (Stats, error) {
	if config.Games <= 0 {
		return Stats{}, nil
	}
	workers := config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	outcomes := make([]outcome, config.Games)
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for i := 0; i < config.Games; i++ {
		i := i // per-iteration copy; module targets go 1.21 loop semantics
		group.Go(func() error {
			first, second := candidate, incumbent
			if i%2 == 1 {
				first, second = incumbent, candidate
			}
			seed := config.Seed + uint64(i/2)*2
			winner, err := playGame(ctx, g, first, second, seed, config.SearchOptions)
			if err != nil {
				return errors.WithMessagef(err, "arena game %d", i)
			}
			candidateFirst := i%2 == 0
			switch {
			case winner == 0:
				outcomes[i] = draw
			case (winner == game.First) == candidateFirst:
				outcomes[i] = candidateWin
			default:
				outcomes[i] = incumbentWin
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return Stats{}, err
	}

	stats := Stats{Games: config.Games}
	for _, o := range outcomes {
		switch o {
		case candidateWin:
			stats.CandidateWins++
		case incumbentWin:
			stats.IncumbentWins++
		default:
			stats.Draws++
		}
	}
	log.Info().Msgf("arena: candidate %d, incumbent %d, draws %d", stats.CandidateWins, stats.IncumbentWins, stats.Draws)
	return stats, nil
}

// playGame plays one greedy game and returns the winning seat, 0 for a draw.
func playGame(ctx context.Context, g game.Game, first, second evaluator.Evaluator, seed uint64, options []searcher.Option) (game.Player, error) {
	seat := func(e evaluator.Evaluator, seed uint64) *searcher.MCTS {
		return searcher.NewMCTS(g, e, append([]searcher.Option{searcher.WithSeed(seed)}, options...)...)
	}
	players := map[game.Player]*searcher.MCTS{
		game.First:  seat(first, seed),
		game.Second: seat(second, seed+1),
	}

	board, mover := g.InitBoard(), game.First
	result := g.TerminalResult(board, mover)
	for ply := 0; !result.IsTerminal(); ply++ {
		probs, _, err := players[mover].ActionProbs(ctx, g.Canonicalize(board, mover), 0)
		if err != nil {
			return 0, errors.WithMessagef(err, "search failed at ply %d", ply)
		}
		board, mover, err = g.Apply(board, mover, greedy(probs))
		if err != nil {
			return 0, err
		}
		result = g.TerminalResult(board, mover)
	}

	switch result {
	case game.Win:
		return mover, nil
	case game.Loss:
		return mover.Opponent(), nil
	}
	return 0, nil
}

func greedy(probs []float64) int {
	best := 0
	for a, p := range probs {
		if p > probs[best] {
			best = a
		}
	}
	return best
}
