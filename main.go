package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"zeroplay/coach"
	"zeroplay/config"
	"zeroplay/evaluator"
	"zeroplay/experiments"
	"zeroplay/game/tictactoe"
	"zeroplay/metrics"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "", "YAML config file, defaults are used when empty")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	pretty := flag.Bool("pretty", false, "Human readable console logs")
	noRecords := flag.Bool("no-records", false, "Do not write CSV records")
	experiment := flag.String("experiment", "", "Run an experiment instead of learning (throughput)")
	episodes := flag.Int("episodes", 5, "Episodes per agent in experiments")
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid log level")
	}
	zerolog.SetGlobalLevel(level)
	if *pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	c := config.Default()
	if *configPath != "" {
		if c, err = config.Load(*configPath); err != nil {
			log.Fatal().Err(err).Msg("failed to load config")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g := tictactoe.New(c.Game.Size)
	var writer *metrics.Writer
	if !*noRecords {
		if writer, err = metrics.NewWriter(c.OutputDir); err != nil {
			log.Fatal().Err(err).Msg("failed to create record writer")
		}
		log.Info().Msgf("writing records to %s", writer.Dir())
	}

	switch *experiment {
	case "":
	case "throughput":
		_, err := experiments.RunThroughput(ctx, g, evaluator.NewUniform(g), experiments.ParallelConfigs, *episodes, c.Learning.Seed, writer)
		if err != nil {
			log.Fatal().Err(err).Msg("experiment failed")
		}
		return
	default:
		log.Fatal().Msgf("unknown experiment %q", *experiment)
	}

	options := []coach.Option{}
	if writer != nil {
		options = append(options, coach.WithWriter(writer))
	}

	table := evaluator.NewTable(g)
	log.Info().Msgf("learning %dx%d tic-tac-toe for %d iterations", c.Game.Size, c.Game.Size, c.Learning.Iterations)
	if err := coach.New(g, table, c, options...).Learn(ctx); err != nil {
		log.Fatal().Err(err).Msg("learning failed")
	}
	log.Info().Msg("learning finished")
}
