// Package config loads the settings of a learning run from YAML.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Game      GameConfig     `yaml:"game"`
	Search    SearchConfig   `yaml:"search"`
	SelfPlay  SelfPlayConfig `yaml:"selfplay"`
	Arena     ArenaConfig    `yaml:"arena"`
	Learning  LearningConfig `yaml:"learning"`
	OutputDir string         `yaml:"output_dir"`
}

type GameConfig struct {
	Size int `yaml:"size"`
}

type SearchConfig struct {
	Simulations int     `yaml:"simulations"`
	Exploration float64 `yaml:"exploration"`
	Goroutines  int     `yaml:"goroutines"`
	// Duration bounds each search when non-zero, e.g. "250ms".
	Duration time.Duration `yaml:"duration"`
}

type SelfPlayConfig struct {
	Temperature   float64 `yaml:"temperature"`
	TempThreshold int     `yaml:"temp_threshold"`
	Symmetries    bool    `yaml:"symmetries"`
	ReuseTree     bool    `yaml:"reuse_tree"`
	MaxPlies      int     `yaml:"max_plies"`
}

type ArenaConfig struct {
	// Games is the match length of the acceptance gate. Zero accepts every
	// trained evaluator without a match.
	Games     int     `yaml:"games"`
	Threshold float64 `yaml:"threshold"`
	Workers   int     `yaml:"workers"`
}

type LearningConfig struct {
	Iterations        int    `yaml:"iterations"`
	Episodes          int    `yaml:"episodes"`
	HistoryIterations int    `yaml:"history_iterations"`
	Workers           int    `yaml:"workers"`
	Seed              uint64 `yaml:"seed"`
}

func Default() Config {
	return Config{
		Game: GameConfig{Size: 3},
		Search: SearchConfig{
			Simulations: 25,
			Exploration: 1.0,
			Goroutines:  1,
		},
		SelfPlay: SelfPlayConfig{
			Temperature:   1.0,
			TempThreshold: 15,
		},
		Arena: ArenaConfig{
			Games:     20,
			Threshold: 0.55,
			Workers:   4,
		},
		Learning: LearningConfig{
			Iterations:        10,
			Episodes:          50,
			HistoryIterations: 20,
			Workers:           4,
			Seed:              1,
		},
		OutputDir: "results",
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "failed to read config %s", path)
	}
	config, err := Parse(data)
	if err != nil {
		return Config{}, errors.WithMessagef(err, "config %s", path)
	}
	return config, nil
}

// Parse decodes YAML over the defaults and validates the result. Keys the
// document leaves out keep their default.
func Parse(data []byte) (Config, error) {
	config := Default()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode config")
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c Config) Validate() error {
	switch {
	case c.Game.Size < 1:
		return errors.Errorf("game.size must be positive, got %d", c.Game.Size)
	case c.Search.Simulations < 1:
		return errors.Errorf("search.simulations must be positive, got %d", c.Search.Simulations)
	case c.Search.Exploration < 0:
		return errors.Errorf("search.exploration must not be negative, got %v", c.Search.Exploration)
	case c.Search.Goroutines < 1:
		return errors.Errorf("search.goroutines must be positive, got %d", c.Search.Goroutines)
	case c.Search.Duration < 0:
		return errors.Errorf("search.duration must not be negative, got %s", c.Search.Duration)
	case c.SelfPlay.Temperature < 0:
		return errors.Errorf("selfplay.temperature must not be negative, got %v", c.SelfPlay.Temperature)
	case c.SelfPlay.TempThreshold < 0:
		return errors.Errorf("selfplay.temp_threshold must not be negative, got %d", c.SelfPlay.TempThreshold)
	case c.SelfPlay.MaxPlies < 0:
		return errors.Errorf("selfplay.max_plies must not be negative, got %d", c.SelfPlay.MaxPlies)
	case c.Arena.Games < 0:
		return errors.Errorf("arena.games must not be negative, got %d", c.Arena.Games)
	case c.Arena.Threshold < 0 || c.Arena.Threshold > 1:
		return errors.Errorf("arena.threshold must be within [0, 1], got %v", c.Arena.Threshold)
	case c.Arena.Workers < 0:
		return errors.Errorf("arena.workers must not be negative, got %d", c.Arena.Workers)
	case c.Learning.Iterations < 1:
		return errors.Errorf("learning.iterations must be positive, got %d", c.Learning.Iterations)
	case c.Learning.Episodes < 1:
		return errors.Errorf("learning.episodes must be positive, got %d", c.Learning.Episodes)
	case c.Learning.HistoryIterations < 1:
		return errors.Errorf("learning.history_iterations must be positive, got %d", c.Learning.HistoryIterations)
	case c.Learning.Workers < 1:
		return errors.Errorf("learning.workers must be positive, got %d", c.Learning.Workers)
	}
	return nil
}
