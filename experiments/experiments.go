// Package experiments measures how search settings affect self-play throughput.
package experiments

import (
	"context"
	"math"
	"time"

	"zeroplay/evaluator"
	"zeroplay/game"
	"zeroplay/metrics"
	"zeroplay/searcher"
	"zeroplay/selfplay"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const TimeBudget = 10 * time.Millisecond

var ParallelConfigs = []metrics.AgentConfig{
	{ID: 1, Goroutines: 1, Duration: TimeBudget},
	{ID: 2, Goroutines: 2, Duration: TimeBudget},
	{ID: 3, Goroutines: 4, Duration: TimeBudget},
	{ID: 4, Goroutines: 8, Duration: TimeBudget},
	{ID: 5, Goroutines: 16, Duration: TimeBudget},
}

// RunThroughput plays episodes of self-play with each agent config and
// records the simulations it manages per second of search. Records are
// written when w is not nil.
func RunThroughput(ctx context.Context, g game.Game, e evaluator.Evaluator, configs []metrics.AgentConfig, episodes int, seed uint64, w *metrics.Writer) ([]metrics.ThroughputRecord, error) {
	log.Info().Msgf("starting throughput experiment with %d agents...", len(configs))

	records := []metrics.ThroughputRecord{}
	for ci, config := range configs {
		log.Info().Msgf("starting agent %d of %d: %+v", ci+1, len(configs), config)

		driver := selfplay.NewDriver(g, e, selfplay.WithSeed(seed), selfplay.WithSearchOptions(searchOptions(config)...))
		record := metrics.ThroughputRecord{Agent: config.ID}
		for i := 0; i < episodes; i++ {
			episode, err := driver.Play(ctx)
			if err != nil {
				return nil, errors.WithMessagef(err, "agent %d episode %d", config.ID, i)
			}
			record.Episodes++
			for _, move := range episode.Moves {
				record.Moves++
				record.Simulations += move.Simulations
				record.Duration += move.Duration
			}
		}
		records = append(records, record)

		log.Info().Msgf("completed agent %d with %.0f simulations per second", config.ID, record.SimulationsPerSecond())
	}
	log.Info().Msg("completed throughput experiment")

	if w == nil {
		return records, nil
	}
	if err := w.WriteAgentConfigs(configs); err != nil {
		return nil, errors.WithMessage(err, "failed to store agent configs")
	}
	if err := w.WriteThroughput(records); err != nil {
		return nil, errors.WithMessage(err, "failed to store throughput records")
	}
	log.Info().Msgf("stored throughput records in %s", w.Dir())
	return records, nil
}

func searchOptions(config metrics.AgentConfig) []searcher.Option {
	options := []searcher.Option{searcher.WithGoroutines(config.Goroutines), searcher.WithMetrics()}

	simulations := config.Simulations
	if simulations == 0 && config.Duration > 0 {
		// Only the time budget bounds the search
		simulations = math.MaxInt32
	}
	if simulations > 0 {
		options = append(options, searcher.WithSimulations(simulations))
	}
	if config.Duration > 0 {
		options = append(options, searcher.WithDuration(config.Duration))
	}
	return options
}
