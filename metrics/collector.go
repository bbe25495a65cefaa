package metrics

import (
	"sync/atomic"
	"time"
)

type SearchMetric struct {
	Goroutines         int
	Simulations        int
	Expansions         int
	TerminalHits       int
	DegeneratePolicies int
	Duration           time.Duration
	IsTimedOut         bool
	IsTreeReset        bool
}

type MoveMetric struct {
	Step        int
	Player      int // game.Player
	Action      int
	Temperature float64
	SearchMetric
}

type Collector interface {
	Start(goroutines int)
	SetTreeReset(value bool)
	SetTimedOut()
	AddSimulation()
	AddExpansion()
	AddTerminal()
	AddDegeneratePolicy()
	Complete() SearchMetric
}

type collector struct {
	goroutines  int
	startTime   time.Time
	simulations atomic.Int32
	expansions  atomic.Int32
	terminals   atomic.Int32
	degenerate  atomic.Int32
	isTimedOut  atomic.Bool
	isTreeReset atomic.Bool
}

func NewCollector() Collector {
	return &collector{}
}

// Start resets the per-search counters; the tree reset flag survives.
func (m *collector) Start(goroutines int) {
	m.startTime = time.Now()
	m.goroutines = goroutines
	m.simulations.Store(0)
	m.expansions.Store(0)
	m.terminals.Store(0)
	m.degenerate.Store(0)
	m.isTimedOut.Store(false)
}

func (m *collector) SetTreeReset(value bool) {
	m.isTreeReset.Store(value)
}

func (m *collector) SetTimedOut() {
	m.isTimedOut.Store(true)
}

func (m *collector) AddSimulation() {
	m.simulations.Add(1)
}

func (m *collector) AddExpansion() {
	m.expansions.Add(1)
}

func (m *collector) AddTerminal() {
	m.terminals.Add(1)
}

func (m *collector) AddDegeneratePolicy() {
	m.degenerate.Add(1)
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Goroutines:         m.goroutines,
		Simulations:        int(m.simulations.Load()),
		Expansions:         int(m.expansions.Load()),
		TerminalHits:       int(m.terminals.Load()),
		DegeneratePolicies: int(m.degenerate.Load()),
		Duration:           time.Since(m.startTime),
		IsTimedOut:         m.isTimedOut.Load(),
		IsTreeReset:        m.isTreeReset.Load(),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(goroutines int)    {}
func (m *dummyCollector) SetTreeReset(value bool) {}
func (m *dummyCollector) SetTimedOut()            {}
func (m *dummyCollector) AddSimulation()          {}
func (m *dummyCollector) AddExpansion()           {}
func (m *dummyCollector) AddTerminal()            {}
func (m *dummyCollector) AddDegeneratePolicy()    {}
func (m *dummyCollector) Complete() SearchMetric  { return SearchMetric{} }
