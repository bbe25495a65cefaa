package experiments

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"zeroplay/evaluator"
	"zeroplay/game/tictactoe"
	"zeroplay/metrics"

	"github.com/stretchr/testify/require"
)

func TestRunThroughput(t *testing.T) {
	g := tictactoe.New(3)

	t.Run("measuring every agent", func(t *testing.T) {
		w, err := metrics.NewWriter(t.TempDir())
		require.NoError(t, err)
		configs := []metrics.AgentConfig{
			{ID: 1, Goroutines: 1, Simulations: 20},
			{ID: 2, Goroutines: 4, Simulations: 20},
		}

		records, err := RunThroughput(context.Background(), g, evaluator.NewUniform(g), configs, 2, 1, w)

		require.NoError(t, err)
		require.Len(t, records, 2)
		for i, record := range records {
			require.Equal(t, configs[i].ID, record.Agent)
			require.Equal(t, 2, record.Episodes)
			require.Positive(t, record.Moves)
			require.Equal(t, 20*record.Moves, record.Simulations, "Each move should run the configured simulations")
		}
		for _, name := range []string{"agent_configs.csv", "throughput.csv"} {
			_, err := os.Stat(filepath.Join(w.Dir(), name))
			require.NoError(t, err, "%s should be written", name)
		}
	})

	t.Run("searching until the time budget", func(t *testing.T) {
		configs := []metrics.AgentConfig{{ID: 1, Goroutines: 2, Duration: 2 * time.Millisecond}}

		records, err := RunThroughput(context.Background(), g, evaluator.NewUniform(g), configs, 1, 1, nil)

		require.NoError(t, err)
		require.Positive(t, records[0].Simulations)
		require.Positive(t, records[0].Duration)
	})
}
