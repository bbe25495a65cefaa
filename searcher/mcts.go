package searcher

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"zeroplay/evaluator"
	"zeroplay/game"
	"zeroplay/metrics"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
)

// ErrTerminalRoot is returned when action probabilities are requested for a finished game.
var ErrTerminalRoot = errors.New("root state is terminal")

type Option func(m *MCTS)

// MCTS refines evaluator priors into action probabilities by repeated
// simulations over a statistics table it owns. An MCTS must not be used by
// several goroutines at once; WithGoroutines parallelizes a single search.
type MCTS struct {
	game        game.Game
	evaluator   evaluator.Evaluator
	simulations int
	exploration float64
	goroutines  int
	duration    time.Duration
	rand        *rand.Rand
	tree        *Tree
	metrics     metrics.Collector
}

func WithSimulations(simulations int) Option {
	return func(m *MCTS) {
		if simulations > 0 {
			m.simulations = simulations
		}
	}
}

func WithExploration(c float64) Option {
	return func(m *MCTS) {
		if c >= 0 {
			m.exploration = c
		}
	}
}

func WithGoroutines(goroutines int) Option {
	return func(m *MCTS) {
		if goroutines > 0 {
			m.goroutines = goroutines
		}
	}
}

// WithDuration bounds the wall-clock time of each search. Counts gathered
// before the deadline are used.
func WithDuration(duration time.Duration) Option {
	return func(m *MCTS) {
		if duration > 0 {
			m.duration = duration
		}
	}
}

// WithSeed seeds the tie-breaking of temperature 0 selections.
func WithSeed(seed uint64) Option {
	return func(m *MCTS) {
		m.rand = rand.New(rand.NewSource(seed))
	}
}

func WithMetrics() Option {
	return func(m *MCTS) {
		m.metrics = metrics.NewCollector()
	}
}

func NewMCTS(g game.Game, e evaluator.Evaluator, options ...Option) *MCTS {
	if g == nil || e == nil {
		panic("MCTS needs a game and an evaluator")
	}
	m := &MCTS{ // Default values
		game:        g,
		evaluator:   e,
		simulations: DefaultSimulations,
		exploration: DefaultExploration,
		goroutines:  1,
		rand:        rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
		tree:        newTree(),
		metrics:     metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(m)
	}
	return m
}

// Reset discards all statistics.
func (m *MCTS) Reset() {
	m.tree = newTree()
}

func (m *MCTS) Tree() *Tree {
	return m.tree
}

// DegeneratePolicies counts expansions where the evaluator gave legal actions
// no mass and a uniform prior was used instead.
func (m *MCTS) DegeneratePolicies() int64 {
	return m.tree.degenerate.Load()
}

// Stats returns the statistics of an already expanded canonical board.
func (m *MCTS) Stats(board game.Board) (StateStats, bool) {
	r, ok := m.tree.find(m.game.StateKey(board))
	if !ok {
		return StateStats{}, false
	}
	r.Lock()
	defer r.Unlock()
	if !r.expanded {
		return StateStats{}, false
	}
	return r.snapshot(), true
}

// ActionProbs runs the configured number of simulations from a canonical board
// and converts the root visit counts into action probabilities.
func (m *MCTS) ActionProbs(ctx context.Context, board game.Board, temperature float64) ([]float64, metrics.SearchMetric, error) {
	if temperature < 0 || math.IsNaN(temperature) {
		return nil, metrics.SearchMetric{}, errors.Errorf("invalid temperature %v", temperature)
	}
	m.metrics.Start(m.goroutines)

	key := m.game.StateKey(board)
	root, err := m.expandRoot(board, key)
	if err != nil {
		return nil, m.metrics.Complete(), err
	}

	searchCtx := ctx
	if m.duration > 0 {
		var cancel context.CancelFunc
		searchCtx, cancel = context.WithTimeout(ctx, m.duration)
		defer cancel()
	}

	if m.goroutines > 1 {
		err = m.iterate(searchCtx, board)
	} else {
		err = m.sequence(searchCtx, board)
	}
	if err != nil {
		return nil, m.metrics.Complete(), err
	}
	if err := ctx.Err(); err != nil {
		return nil, m.metrics.Complete(), err
	}
	if searchCtx.Err() != nil {
		m.metrics.SetTimedOut()
	}

	root.Lock()
	counts := make([]float64, len(root.edges))
	total := 0
	for a, e := range root.edges {
		counts[a] = float64(e.visits)
		total += e.visits
	}
	if total == 0 { // Budget ran out before any simulation
		copy(counts, root.prior)
	}
	root.Unlock()

	probs := distribution(counts, temperature, m.rand)
	metric := m.metrics.Complete()
	log.Debug().Msgf("searched %d simulations in %s over %d states", total, metric.Duration, m.tree.Len())
	return probs, metric, nil
}

// expandRoot makes sure the root has a prior before simulations are counted.
func (m *MCTS) expandRoot(board game.Board, key game.Key) (*record, error) {
	root := m.tree.lookup(key)
	root.Lock()
	expanded := root.expanded
	root.Unlock()
	m.metrics.SetTreeReset(!expanded)

	if !expanded {
		if _, err := m.simulate(board); err != nil {
			return nil, err
		}
	}

	root.Lock()
	defer root.Unlock()
	if root.terminal.IsTerminal() {
		return nil, errors.Wrapf(ErrTerminalRoot, "result %v", root.terminal)
	}
	return root, nil
}

func (m *MCTS) sequence(ctx context.Context, board game.Board) error {
	for i := 0; i < m.simulations; i++ {
		if ctx.Err() != nil {
			return nil
		}
		if _, err := m.simulate(board); err != nil {
			return err
		}
		m.metrics.AddSimulation()
	}
	return nil
}

func (m *MCTS) iterate(ctx context.Context, board game.Board) error {
	var remaining atomic.Int64
	remaining.Store(int64(m.simulations))

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < m.goroutines; i++ {
		g.Go(func() error {
			for remaining.Add(-1) >= 0 {
				if ctx.Err() != nil {
					return nil
				}
				if _, err := m.simulate(board); err != nil {
					return err
				}
				m.metrics.AddSimulation()
			}
			return nil
		})
	}
	return g.Wait()
}

// simulate descends from a canonical board to a terminal or new state and
// returns the value of board for the player who moved into it.
func (m *MCTS) simulate(board game.Board) (float64, error) {
	key := m.game.StateKey(board)
	r := m.tree.lookup(key)

	r.Lock()
	if !r.checked {
		r.terminal = m.game.TerminalResult(board, game.First)
		r.checked = true
	}
	if terminal := r.terminal; terminal.IsTerminal() {
		r.Unlock()
		m.metrics.AddTerminal()
		return -float64(terminal), nil
	}

	if !r.expanded {
		// Holding the lock keeps concurrent simulations from querying the evaluator twice
		defer r.Unlock()
		return m.expand(r, board, key)
	}

	action := m.selectAction(r)
	if action < 0 {
		r.Unlock()
		return 0, errors.Wrapf(game.ErrNoLegalMoves, "state %q", key)
	}
	parallel := m.goroutines > 1
	if parallel {
		r.addVirtualLoss(action)
	}
	r.Unlock()

	v, err := m.descend(board, action)

	r.Lock()
	defer r.Unlock()
	if parallel {
		r.reverseVirtualLoss(action)
	}
	if err != nil {
		return 0, err
	}
	r.backup(action, v)
	return -v, nil
}

func (m *MCTS) descend(board game.Board, action int) (float64, error) {
	next, mover, err := m.game.Apply(board, game.First, action)
	if err != nil {
		return 0, errors.WithMessagef(err, "failed to apply selected action %d", action)
	}
	return m.simulate(m.game.Canonicalize(next, mover))
}

// expand caches the masked prior of a new state and returns its negated value.
func (m *MCTS) expand(r *record, board game.Board, key game.Key) (float64, error) {
	valid := m.game.LegalMask(board)
	if !game.HasLegalMove(valid) {
		return 0, errors.Wrapf(game.ErrNoLegalMoves, "state %q", key)
	}

	policy, value, err := m.evaluator.Predict(board)
	if err != nil {
		return 0, errors.WithMessage(err, "evaluator failed to predict")
	}
	if len(policy) != len(valid) {
		return 0, errors.Errorf("evaluator returned %d priors for %d actions", len(policy), len(valid))
	}

	prior := make([]float64, len(valid))
	sum := 0.0
	for a, legal := range valid {
		if legal && policy[a] > 0 {
			prior[a] = policy[a]
			sum += prior[a]
		}
	}
	if sum > 0 {
		for a := range prior {
			prior[a] /= sum
		}
	} else {
		prior = game.UniformPolicy(valid)
		m.tree.degenerate.Add(1)
		m.metrics.AddDegeneratePolicy()
		log.Warn().Int("legal", game.LegalCount(valid)).Msg("evaluator gave legal actions no mass, using a uniform prior")
	}

	r.valid = valid
	r.prior = prior
	r.visits = 0
	r.edges = make([]edge, len(valid))
	r.expanded = true
	m.metrics.AddExpansion()

	return -value, nil
}

// selectAction picks the legal action with the highest score, the lowest index on ties.
func (m *MCTS) selectAction(r *record) int {
	parentVisits := float64(r.visits + r.virtual)

	best := -1
	bestScore := math.Inf(-1)
	for a, legal := range r.valid {
		if !legal {
			continue
		}
		if score := puct(m.exploration, r.prior[a], parentVisits, r.edges[a]); score > bestScore {
			bestScore = score
			best = a
		}
	}
	return best
}
