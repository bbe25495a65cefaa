// Package selfplay plays whole games of the current evaluator against itself,
// guided by tree search, and labels every position with the final outcome.
package selfplay

import (
	"context"
	"time"

	"zeroplay/evaluator"
	"zeroplay/game"
	"zeroplay/metrics"
	"zeroplay/searcher"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

const (
	DefaultTemperature   = 1.0
	DefaultTempThreshold = 15
)

// ErrEpisodeTooLong is returned when a game is still running after the ply cap.
var ErrEpisodeTooLong = errors.New("episode exceeded the ply limit")

type Option func(d *Driver)

// Driver plays episodes one at a time. It is not safe for concurrent use; run
// one Driver per goroutine.
type Driver struct {
	game          game.Game
	evaluator     evaluator.Evaluator
	temperature   float64
	tempThreshold int
	searchOptions []searcher.Option
	symmetries    bool
	reuseTree     bool
	maxPlies      int
	rand          *rand.Rand
	mcts          *searcher.MCTS
}

// WithSeed seeds move sampling and the searches of the driver.
func WithSeed(seed uint64) Option {
	return func(d *Driver) {
		d.rand = rand.New(rand.NewSource(seed))
	}
}

// WithTemperature sets the temperature used while exploring.
func WithTemperature(temperature float64) Option {
	return func(d *Driver) {
		if temperature >= 0 {
			d.temperature = temperature
		}
	}
}

// WithTempThreshold sets the number of opening plies sampled at the exploring
// temperature. Later plies are played greedily.
func WithTempThreshold(plies int) Option {
	return func(d *Driver) {
		if plies >= 0 {
			d.tempThreshold = plies
		}
	}
}

func WithSearchOptions(options ...searcher.Option) Option {
	return func(d *Driver) {
		d.searchOptions = append(d.searchOptions, options...)
	}
}

// WithSymmetries augments every recorded position with its symmetric variants.
func WithSymmetries() Option {
	return func(d *Driver) {
		d.symmetries = true
	}
}

// WithTreeReuse keeps search statistics across episodes of the same driver.
func WithTreeReuse() Option {
	return func(d *Driver) {
		d.reuseTree = true
	}
}

// WithMaxPlies aborts episodes longer than plies. Zero means no limit.
func WithMaxPlies(plies int) Option {
	return func(d *Driver) {
		if plies >= 0 {
			d.maxPlies = plies
		}
	}
}

func NewDriver(g game.Game, e evaluator.Evaluator, options ...Option) *Driver {
	if g == nil || e == nil {
		panic("driver needs a game and an evaluator")
	}
	d := &Driver{
		game:          g,
		evaluator:     e,
		temperature:   DefaultTemperature,
		tempThreshold: DefaultTempThreshold,
		rand:          rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
	}
	for _, option := range options {
		option(d)
	}
	return d
}

// Play runs one episode from the initial board with First to move.
func (d *Driver) Play(ctx context.Context) (*Episode, error) {
	return d.PlayFrom(ctx, d.game.InitBoard(), game.First)
}

// PlayFrom runs one episode from board with mover to act.
func (d *Driver) PlayFrom(ctx context.Context, board game.Board, mover game.Player) (*Episode, error) {
	mcts := d.search()
	degenerate := mcts.DegeneratePolicies()

	steps := []step{}
	moves := []metrics.MoveMetric{}
	result := d.game.TerminalResult(board, mover)
	for ply := 0; !result.IsTerminal(); ply++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if d.maxPlies > 0 && ply >= d.maxPlies {
			return nil, errors.Wrapf(ErrEpisodeTooLong, "%d plies", ply)
		}

		canonical := d.game.Canonicalize(board, mover)
		if !game.HasLegalMove(d.game.LegalMask(canonical)) {
			return nil, errors.Wrapf(game.ErrNoLegalMoves, "ply %d is not terminal", ply)
		}

		temperature := 0.0
		if ply < d.tempThreshold {
			temperature = d.temperature
		}
		probs, metric, err := mcts.ActionProbs(ctx, canonical, temperature)
		if err != nil {
			return nil, errors.WithMessagef(err, "search failed at ply %d", ply)
		}
		action := sample(probs, d.rand)
		if action < 0 {
			return nil, errors.Errorf("no action to sample at ply %d", ply)
		}
		steps = append(steps, step{board: canonical, mover: mover, policy: probs})
		moves = append(moves, metrics.MoveMetric{
			Step:         ply + 1,
			Player:       int(mover),
			Action:       action,
			Temperature:  temperature,
			SearchMetric: metric,
		})

		// Actions are chosen on the canonical board, where they index the same cells
		board, mover, err = d.game.Apply(board, mover, action)
		if err != nil {
			return nil, errors.WithMessagef(err, "failed to play sampled action %d", action)
		}
		result = d.game.TerminalResult(board, mover)
	}

	episode := d.finalize(steps, mover, result)
	episode.Moves = moves
	episode.DegeneratePolicies = mcts.DegeneratePolicies() - degenerate
	log.Debug().Int("plies", episode.Steps).Int("winner", int(episode.Winner)).Msg("episode finished")
	return episode, nil
}

func (d *Driver) search() *searcher.MCTS {
	if d.reuseTree && d.mcts != nil {
		return d.mcts
	}
	options := append([]searcher.Option{searcher.WithSeed(d.rand.Uint64())}, d.searchOptions...)
	mcts := searcher.NewMCTS(d.game, d.evaluator, options...)
	if d.reuseTree {
		d.mcts = mcts
	}
	return mcts
}

// sample draws an action from probs. Actions without mass are never drawn; the
// last action with mass absorbs rounding error.
func sample(probs []float64, r *rand.Rand) int {
	sampled := r.Float64()
	cumulative := 0.0
	last := -1
	for a, p := range probs {
		if p <= 0 {
			continue
		}
		last = a
		cumulative += p
		if sampled < cumulative {
			return a
		}
	}
	return last
}
