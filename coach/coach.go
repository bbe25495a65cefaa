// Package coach runs the learning loop: self-play under the current evaluator,
// training on a rolling history of examples and an arena gate on the result.
package coach

import (
	"context"
	"time"

	"zeroplay/arena"
	"zeroplay/config"
	"zeroplay/evaluator"
	"zeroplay/game"
	"zeroplay/metrics"
	"zeroplay/searcher"
	"zeroplay/selfplay"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
)

// ErrNotSnapshotter is returned when the arena gate is on but the evaluator
// cannot keep a copy of its previous parameters.
var ErrNotSnapshotter = errors.New("evaluator does not support snapshots")

// Seeds of different iterations are spaced so their episodes never share one.
const iterationSeedStride = 1_000_003

type Option func(c *Coach)

// WithWriter appends iteration and move records to w.
func WithWriter(w *metrics.Writer) Option {
	return func(c *Coach) {
		c.writer = w
	}
}

type Coach struct {
	game      game.Game
	evaluator evaluator.Evaluator
	config    config.Config
	history   [][]evaluator.Example // One entry per iteration, oldest first
	rand      *rand.Rand
	writer    *metrics.Writer
}

func New(g game.Game, e evaluator.Evaluator, c config.Config, options ...Option) *Coach {
	if g == nil || e == nil {
		panic("coach needs a game and an evaluator")
	}
	coach := &Coach{
		game:      g,
		evaluator: e,
		config:    c,
		rand:      rand.New(rand.NewSource(c.Learning.Seed)),
	}
	for _, option := range options {
		option(coach)
	}
	return coach
}

// Evaluator is the best evaluator so far.
func (c *Coach) Evaluator() evaluator.Evaluator {
	return c.evaluator
}

// Learn runs the configured number of iterations.
func (c *Coach) Learn(ctx context.Context) error {
	for i := 1; i <= c.config.Learning.Iterations; i++ {
		record, err := c.Iterate(ctx, i)
		if err != nil {
			return errors.WithMessagef(err, "iteration %d", i)
		}
		log.Info().
			Int("iteration", i).
			Int("examples", record.TrainingExamples).
			Bool("accepted", record.IsAccepted).
			Dur("duration", record.Duration).
			Msg("iteration finished")
	}
	return nil
}

// Iterate plays one batch of episodes, trains on the history and keeps the
// trained evaluator only if it passes the arena.
func (c *Coach) Iterate(ctx context.Context, iteration int) (metrics.IterationRecord, error) {
	record := metrics.IterationRecord{Iteration: iteration, StartTime: time.Now()}

	var previous evaluator.Evaluator
	if c.config.Arena.Games > 0 {
		snapshotter, ok := c.evaluator.(evaluator.Snapshotter)
		if !ok {
			return record, errors.Wrapf(ErrNotSnapshotter, "%T", c.evaluator)
		}
		previous = snapshotter.Snapshot()
	}

	episodes, err := c.selfPlay(ctx, iteration)
	if err != nil {
		return record, err
	}
	examples := []evaluator.Example{}
	moves := []metrics.MoveRecord{}
	for i, episode := range episodes {
		examples = append(examples, episode.Examples...)
		record.DegeneratePolicies += int(episode.DegeneratePolicies)
		for _, move := range episode.Moves {
			moves = append(moves, metrics.MoveRecord{Iteration: iteration, Episode: i, MoveMetric: move})
		}
	}
	record.Episodes = len(episodes)
	record.Examples = len(examples)

	c.remember(examples)
	training := c.trainingSet()
	record.TrainingExamples = len(training)
	record.HistoryIterations = len(c.history)

	if err := c.evaluator.Train(ctx, training); err != nil {
		return record, errors.WithMessage(err, "failed to train evaluator")
	}

	record.IsAccepted = true
	if previous != nil {
		stats, err := arena.Compete(ctx, c.game, c.evaluator, previous, arena.Config{
			Games:         c.config.Arena.Games,
			Workers:       c.config.Arena.Workers,
			Seed:          c.config.Learning.Seed + uint64(iteration)*iterationSeedStride,
			SearchOptions: c.searchOptions(),
		})
		if err != nil {
			return record, errors.WithMessage(err, "arena failed")
		}
		record.ArenaGames = stats.Games
		record.CandidateWins = stats.CandidateWins
		record.IncumbentWins = stats.IncumbentWins
		record.Draws = stats.Draws
		record.IsAccepted = arena.Accept(stats, c.config.Arena.Threshold)
		if !record.IsAccepted {
			log.Info().Msgf("rejecting trained evaluator with win rate %.2f", stats.WinRate())
			c.evaluator = previous
		}
	}
	record.Duration = time.Since(record.StartTime)

	if c.writer != nil {
		if err := c.writer.WriteIteration(record); err != nil {
			return record, err
		}
		if err := c.writer.WriteMoves(moves); err != nil {
			return record, err
		}
	}
	return record, nil
}

// selfPlay splits the episodes statically over the workers so that results
// only depend on the seed. Each worker owns one driver.
func (c *Coach) selfPlay(ctx context.Context, iteration int) ([]*selfplay.Episode, error) {
	total := c.config.Learning.Episodes
	workers := min(c.config.Learning.Workers, total)
	episodes := make([]*selfplay.Episode, total)

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w // per-iteration copy; module targets go 1.21 loop semantics
		seed := c.config.Learning.Seed + uint64(iteration)*iterationSeedStride + uint64(w)
		driver := selfplay.NewDriver(c.game, c.evaluator, c.driverOptions(seed)...)
		g.Go(func() error {
			for i := w; i < total; i += workers {
				episode, err := driver.Play(ctx)
				if err != nil {
					return errors.WithMessagef(err, "episode %d", i)
				}
				episodes[i] = episode
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return episodes, nil
}

func (c *Coach) driverOptions(seed uint64) []selfplay.Option {
	options := []selfplay.Option{
		selfplay.WithSeed(seed),
		selfplay.WithTemperature(c.config.SelfPlay.Temperature),
		selfplay.WithTempThreshold(c.config.SelfPlay.TempThreshold),
		selfplay.WithMaxPlies(c.config.SelfPlay.MaxPlies),
		selfplay.WithSearchOptions(c.searchOptions()...),
	}
	if c.config.SelfPlay.Symmetries {
		options = append(options, selfplay.WithSymmetries())
	}
	if c.config.SelfPlay.ReuseTree {
		options = append(options, selfplay.WithTreeReuse())
	}
	if c.writer != nil {
		options = append(options, selfplay.WithSearchOptions(searcher.WithMetrics()))
	}
	return options
}

func (c *Coach) searchOptions() []searcher.Option {
	options := []searcher.Option{
		searcher.WithSimulations(c.config.Search.Simulations),
		searcher.WithExploration(c.config.Search.Exploration),
		searcher.WithGoroutines(c.config.Search.Goroutines),
	}
	if c.config.Search.Duration > 0 {
		options = append(options, searcher.WithDuration(c.config.Search.Duration))
	}
	return options
}

// remember appends the examples of one iteration and drops the oldest
// iterations beyond the history length.
func (c *Coach) remember(examples []evaluator.Example) {
	c.history = append(c.history, examples)
	if excess := len(c.history) - c.config.Learning.HistoryIterations; excess > 0 {
		log.Warn().Msgf("dropping the examples of the %d oldest iterations", excess)
		c.history = c.history[excess:]
	}
}

// trainingSet is the whole history in a seeded random order.
func (c *Coach) trainingSet() []evaluator.Example {
	training := []evaluator.Example{}
	for _, examples := range c.history {
		training = append(training, examples...)
	}
	c.rand.Shuffle(len(training), func(i, j int) {
		training[i], training[j] = training[j], training[i]
	})
	return training
}
