package searcher

import (
	"sync"
	"sync/atomic"

	"zeroplay/game"
)

type edge struct {
	visits  int
	q       float64
	virtual int // Simulations currently in flight through this edge
}

// record holds the statistics of one canonical state. Fields other than the
// terminal check are only meaningful once expanded is set.
type record struct {
	sync.Mutex
	checked  bool
	terminal game.Result
	expanded bool
	valid    []bool
	prior    []float64
	visits   int
	virtual  int
	edges    []edge
}

func (r *record) addVirtualLoss(action int) {
	r.edges[action].virtual++
	r.virtual++
}

func (r *record) reverseVirtualLoss(action int) {
	r.edges[action].virtual--
	r.virtual--
}

// backup folds value v into the running mean of the edge.
func (r *record) backup(action int, v float64) {
	e := &r.edges[action]
	e.q = (float64(e.visits)*e.q + v) / float64(e.visits+1)
	e.visits++
	r.visits++
}

// Tree is the statistics table of one search, keyed by canonical state.
type Tree struct {
	mu         sync.Mutex
	records    map[game.Key]*record
	degenerate atomic.Int64
}

func newTree() *Tree {
	return &Tree{records: make(map[game.Key]*record)}
}

// lookup returns the record for key, creating an empty one on first sight.
func (t *Tree) lookup(key game.Key) *record {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.records[key]
	if !ok {
		r = &record{}
		t.records[key] = r
	}
	return r
}

func (t *Tree) find(key game.Key) (*record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.records[key]
	return r, ok
}

// Len is the number of distinct states seen.
func (t *Tree) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.records)
}

// StateStats is a copy of the statistics of one expanded state.
type StateStats struct {
	Terminal   game.Result
	Visits     int
	Valid      []bool
	Prior      []float64
	EdgeVisits []int
	Q          []float64
}

func (r *record) snapshot() StateStats {
	stats := StateStats{
		Terminal:   r.terminal,
		Visits:     r.visits,
		Valid:      append([]bool(nil), r.valid...),
		Prior:      append([]float64(nil), r.prior...),
		EdgeVisits: make([]int, len(r.edges)),
		Q:          make([]float64, len(r.edges)),
	}
	for a, e := range r.edges {
		stats.EdgeVisits[a] = e.visits
		stats.Q[a] = e.q
	}
	return stats
}
