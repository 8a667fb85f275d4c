package solver

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultTimeout           = 300 * time.Second
	DefaultProgressEvery     = 100
	DefaultDistanceThreshold = 2.0
)

// DefaultWeights are the soft-constraint weights applied by the scorer
var DefaultWeights = Weights{
	Gap:          10,
	Balance:      5,
	Early:        3,
	Late:         3,
	RoomDistance: 8,
}

// Default undesirable timeslot sets: the first and last slot of each day
var (
	DefaultEarlySlots = []string{"TS0", "TS4", "TS8", "TS12", "TS16"}
	DefaultLateSlots  = []string{"TS3", "TS7", "TS11", "TS15", "TS19"}
)

// SolverConfig controls one solve call. OnProgress, when set, is invoked
// every ProgressEvery decision steps with a read-only snapshot
type SolverConfig struct {
	Timeout       time.Duration
	Seed          int64 // 0 seeds the value-ordering shuffle from the clock
	ProgressEvery uint64
	OnProgress    func(Progress)
}

func DefaultSolverConfig() SolverConfig {
	return SolverConfig{
		Timeout:       DefaultTimeout,
		ProgressEvery: DefaultProgressEvery,
	}
}

type Weights struct {
	Gap          float64 `yaml:"gap"`
	Balance      float64 `yaml:"balance"`
	Early        float64 `yaml:"early"`
	Late         float64 `yaml:"late"`
	RoomDistance float64 `yaml:"roomDistance"`
}

// ScoreConfig parameterizes the quality scorer
type ScoreConfig struct {
	Weights           Weights  `yaml:"weights"`
	EarlySlots        []string `yaml:"earlySlots"`
	LateSlots         []string `yaml:"lateSlots"`
	DistanceThreshold float64  `yaml:"distanceThreshold"`
}

func DefaultScoreConfig() ScoreConfig {
	return ScoreConfig{
		Weights:           DefaultWeights,
		EarlySlots:        DefaultEarlySlots,
		LateSlots:         DefaultLateSlots,
		DistanceThreshold: DefaultDistanceThreshold,
	}
}

// LoadScoreConfig reads a YAML file of overrides on top of the defaults
func LoadScoreConfig(file string) (ScoreConfig, error) {
	config := DefaultScoreConfig()

	bytes, err := os.ReadFile(file)
	if err != nil {
		return ScoreConfig{}, err
	}
	if err := yaml.Unmarshal(bytes, &config); err != nil {
		return ScoreConfig{}, fmt.Errorf("cannot parse score config: %w", err)
	}

	return config, nil
}
