package metrics

import "time"

type IterationRecord struct {
	Iteration          int
	Episodes           int
	Examples           int // New examples generated this iteration
	TrainingExamples   int // Examples in the shuffled training set
	HistoryIterations  int
	DegeneratePolicies int
	ArenaGames         int
	CandidateWins      int
	IncumbentWins      int
	Draws              int
	IsAccepted         bool
	StartTime          time.Time
	Duration           time.Duration
}

type MoveRecord struct {
	Iteration int
	Episode   int
	MoveMetric
}

// AgentConfig describes the search settings of one agent in an experiment.
type AgentConfig struct {
	ID          int
	Goroutines  int
	Simulations int
	Duration    time.Duration
}

type ThroughputRecord struct {
	Agent       int // AgentConfig.ID
	Episodes    int
	Moves       int
	Simulations int
	Duration    time.Duration // Total search time
}

// SimulationsPerSecond is zero when no search time was recorded.
func (r ThroughputRecord) SimulationsPerSecond() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return float64(r.Simulations) / r.Duration.Seconds()
}
