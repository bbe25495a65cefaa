package metrics

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
)

var iterationHeader = []string{
	"iteration", "episodes", "examples", "training_examples", "history_iterations", "degenerate_policies",
	"arena_games", "candidate_wins", "incumbent_wins", "draws", "is_accepted", "start_time", "duration",
}

var moveHeader = []string{
	"iteration", "episode", "step", "player", "action", "temperature", "simulations", "expansions",
	"terminal_hits", "degenerate_policies", "duration", "is_timed_out", "is_tree_reset",
}

var agentConfigHeader = []string{"id", "goroutines", "simulations", "duration"}

var throughputHeader = []string{"agent", "episodes", "moves", "simulations", "duration", "simulations_per_second"}

// Writer appends records as CSV rows under a timestamped run directory.
type Writer struct {
	mu      sync.Mutex
	baseDir string
}

func NewWriter(root string) (*Writer, error) {
	// Create a subfolder named by current timestamp
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	baseDir := filepath.Join(root, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create directory")
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) WriteIteration(record IterationRecord) error {
	row := []string{
		strconv.Itoa(record.Iteration),
		strconv.Itoa(record.Episodes),
		strconv.Itoa(record.Examples),
		strconv.Itoa(record.TrainingExamples),
		strconv.Itoa(record.HistoryIterations),
		strconv.Itoa(record.DegeneratePolicies),
		strconv.Itoa(record.ArenaGames),
		strconv.Itoa(record.CandidateWins),
		strconv.Itoa(record.IncumbentWins),
		strconv.Itoa(record.Draws),
		strconv.FormatBool(record.IsAccepted),
		record.StartTime.Format(time.RFC3339),
		record.Duration.String(),
	}
	return w.append("iterations.csv", iterationHeader, [][]string{row})
}

func (w *Writer) WriteMoves(records []MoveRecord) error {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.Iteration),
			strconv.Itoa(record.Episode),
			strconv.Itoa(record.Step),
			strconv.Itoa(record.Player),
			strconv.Itoa(record.Action),
			strconv.FormatFloat(record.Temperature, 'g', -1, 64),
			strconv.Itoa(record.Simulations),
			strconv.Itoa(record.Expansions),
			strconv.Itoa(record.TerminalHits),
			strconv.Itoa(record.DegeneratePolicies),
			record.Duration.String(),
			strconv.FormatBool(record.IsTimedOut),
			strconv.FormatBool(record.IsTreeReset),
		})
	}
	return w.append("moves.csv", moveHeader, rows)
}

func (w *Writer) WriteAgentConfigs(configs []AgentConfig) error {
	rows := make([][]string, 0, len(configs))
	for _, config := range configs {
		rows = append(rows, []string{
			strconv.Itoa(config.ID),
			strconv.Itoa(config.Goroutines),
			strconv.Itoa(config.Simulations),
			config.Duration.String(),
		})
	}
	return w.append("agent_configs.csv", agentConfigHeader, rows)
}

func (w *Writer) WriteThroughput(records []ThroughputRecord) error {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.Agent),
			strconv.Itoa(record.Episodes),
			strconv.Itoa(record.Moves),
			strconv.Itoa(record.Simulations),
			record.Duration.String(),
			strconv.FormatFloat(record.SimulationsPerSecond(), 'f', 1, 64),
		})
	}
	return w.append("throughput.csv", throughputHeader, rows)
}

// append writes the header first when the file is new.
func (w *Writer) append(name string, header []string, rows [][]string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	path := filepath.Join(w.baseDir, name)
	_, statErr := os.Stat(path)
	isNew := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", name)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if isNew {
		if err := writer.Write(header); err != nil {
			return errors.Wrapf(err, "failed to write %s header", name)
		}
	}
	if err := writer.WriteAll(rows); err != nil {
		return errors.Wrapf(err, "failed to write %s rows", name)
	}
	return nil
}
