package metrics

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	t.Run("counting concurrently", func(t *testing.T) {
		c := NewCollector()
		c.Start(4)

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 25; j++ {
					c.AddSimulation()
					c.AddExpansion()
				}
			}()
		}
		wg.Wait()
		c.AddDegeneratePolicy()
		c.AddTerminal()
		c.SetTimedOut()

		got := c.Complete()
		require.Equal(t, 4, got.Goroutines)
		require.Equal(t, 100, got.Simulations)
		require.Equal(t, 100, got.Expansions)
		require.Equal(t, 1, got.DegeneratePolicies)
		require.Equal(t, 1, got.TerminalHits)
		require.True(t, got.IsTimedOut)
	})

	t.Run("restarting counters but keeping tree reset", func(t *testing.T) {
		c := NewCollector()
		c.SetTreeReset(true)
		c.Start(1)
		c.AddSimulation()
		c.SetTimedOut()

		c.Start(1)
		got := c.Complete()

		require.Equal(t, 0, got.Simulations, "Start should reset counters")
		require.False(t, got.IsTimedOut, "Start should reset the timeout flag")
		require.True(t, got.IsTreeReset, "Start should keep the tree reset flag")
	})

	t.Run("ignoring everything in the dummy collector", func(t *testing.T) {
		c := NewDummyCollector()
		c.Start(2)
		c.AddSimulation()

		require.Equal(t, SearchMetric{}, c.Complete())
	})
}

func readCSV(t *testing.T, path string) [][]string {
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriter(t *testing.T) {
	t.Run("appending iteration rows under one header", func(t *testing.T) {
		w, err := NewWriter(t.TempDir())
		require.NoError(t, err)

		require.NoError(t, w.WriteIteration(IterationRecord{Iteration: 1, Episodes: 2, IsAccepted: true, StartTime: time.Now()}))
		require.NoError(t, w.WriteIteration(IterationRecord{Iteration: 2, Episodes: 2}))

		rows := readCSV(t, filepath.Join(w.Dir(), "iterations.csv"))
		require.Len(t, rows, 3, "Should write a header and two rows")
		require.Equal(t, iterationHeader, rows[0])
		require.Equal(t, "1", rows[1][0])
		require.Equal(t, "true", rows[1][10])
		require.Equal(t, "2", rows[2][0])
	})

	t.Run("writing move rows", func(t *testing.T) {
		w, err := NewWriter(t.TempDir())
		require.NoError(t, err)

		err = w.WriteMoves([]MoveRecord{
			{Iteration: 1, Episode: 3, MoveMetric: MoveMetric{Step: 0, Player: 1, Action: 4, Temperature: 1}},
			{Iteration: 1, Episode: 3, MoveMetric: MoveMetric{Step: 1, Player: -1, Action: 0}},
		})
		require.NoError(t, err)

		rows := readCSV(t, filepath.Join(w.Dir(), "moves.csv"))
		require.Len(t, rows, 3)
		require.Equal(t, []string{"1", "3", "1", "-1", "0", "0"}, rows[2][:6])
	})
}

func TestThroughputRecord(t *testing.T) {
	t.Run("dividing simulations by search time", func(t *testing.T) {
		r := ThroughputRecord{Simulations: 500, Duration: 250 * time.Millisecond}

		require.Equal(t, 2000.0, r.SimulationsPerSecond())
		require.Zero(t, ThroughputRecord{Simulations: 3}.SimulationsPerSecond(), "No time means no rate")
	})

	t.Run("writing experiment rows", func(t *testing.T) {
		w, err := NewWriter(t.TempDir())
		require.NoError(t, err)

		require.NoError(t, w.WriteAgentConfigs([]AgentConfig{{ID: 1, Goroutines: 4, Simulations: 100}}))
		require.NoError(t, w.WriteThroughput([]ThroughputRecord{{Agent: 1, Episodes: 2, Moves: 10, Simulations: 1000, Duration: time.Second}}))

		configs := readCSV(t, filepath.Join(w.Dir(), "agent_configs.csv"))
		require.Equal(t, []string{"1", "4", "100", "0s"}, configs[1])
		throughput := readCSV(t, filepath.Join(w.Dir(), "throughput.csv"))
		require.Equal(t, throughputHeader, throughput[0])
		require.Equal(t, "1000.0", throughput[1][5])
	})
}
