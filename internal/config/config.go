// Package config loads run configuration from embedded defaults, an optional
// YAML file and GENOMAZE_* environment overrides.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

const EnvPrefix = "GENOMAZE_"

type Config struct {
	Maze      MazeConfig      `yaml:"maze"`
	Evolution EvolutionConfig `yaml:"evolution"`
	Strategy  StrategyConfig  `yaml:"strategy"`
	Store     StoreConfig     `yaml:"store"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	Log       LogConfig       `yaml:"log"`
	HTTP      HTTPConfig      `yaml:"http"`
}

type MazeConfig struct {
	Path          string  `yaml:"path"`
	EdgePolicy    string  `yaml:"edge_policy"`
	MaxDist       float64 `yaml:"max_dist"`
	LengthPenalty float64 `yaml:"length_penalty"`
}

type EvolutionConfig struct {
	PopulationSize int     `yaml:"population_size"`
	GenomeLength   int     `yaml:"genome_length"`
	Generations    int     `yaml:"generations"`
	FitnessGoal    float64 `yaml:"fitness_goal"`
	EliteCount     int     `yaml:"elite_count"`
	Workers        int     `yaml:"workers"`
	Seed           int64   `yaml:"seed"`
	TopCount       int     `yaml:"top_count"`
}

type StrategyConfig struct {
	Selection        string  `yaml:"selection"`
	EliteSelectCount int     `yaml:"elite_select_count"`
	TournamentSize   int     `yaml:"tournament_size"`
	Crossover        string  `yaml:"crossover"`
	CrossoverRate    float64 `yaml:"crossover_rate"`
	TossProbability  float64 `yaml:"toss_probability"`
	Mutation         string  `yaml:"mutation"`
	MutationRate     float64 `yaml:"mutation_rate"`
	MutationSigma    float64 `yaml:"mutation_sigma"`
}

type StoreConfig struct {
	Kind string `yaml:"kind"`
	Path string `yaml:"path"`
}

type ArtifactsConfig struct {
	Dir  string `yaml:"dir"`
	Plot bool   `yaml:"plot"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the embedded defaults.
func Default() Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load merges path (when non-empty) over the embedded defaults, applies
// GENOMAZE_* overrides from the process environment and envFile, and
// validates the result.
func Load(path, envFile string) (Config, error) {
	lookup, err := DotEnvLookup(envFile)
	if err != nil {
		return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
	}
	return LoadWithEnv(path, lookup)
}

func LoadWithEnv(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DotEnvLookup reads a .env file and returns a lookup that prefers the
// process environment over the file. An empty path or a missing file yields
// the process environment alone.
func DotEnvLookup(path string) (func(string) (string, bool), error) {
	if path == "" {
		return os.LookupEnv, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return os.LookupEnv, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, err
	}
	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := values[key]
		return v, ok
	}, nil
}

// ApplyEnv overrides fields from GENOMAZE_* variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		return nil
	}

	var errs *multierror.Error
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(EnvPrefix + key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = multierror.Append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = n
		}
	}
	float := func(key string, dst *float64) {
		if v, ok := lookup(EnvPrefix + key); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				errs = multierror.Append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = f
		}
	}

	str("MAZE", &c.Maze.Path)
	str("EDGE_POLICY", &c.Maze.EdgePolicy)
	float("LENGTH_PENALTY", &c.Maze.LengthPenalty)
	integer("POPULATION", &c.Evolution.PopulationSize)
	integer("GENOME_LENGTH", &c.Evolution.GenomeLength)
	integer("GENERATIONS", &c.Evolution.Generations)
	float("FITNESS_GOAL", &c.Evolution.FitnessGoal)
	integer("WORKERS", &c.Evolution.Workers)
	if v, ok := lookup(EnvPrefix + "SEED"); ok {
		seed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%sSEED: %w", EnvPrefix, err))
		} else {
			c.Evolution.Seed = seed
		}
	}
	str("SELECTION", &c.Strategy.Selection)
	str("CROSSOVER", &c.Strategy.Crossover)
	str("MUTATION", &c.Strategy.Mutation)
	str("STORE", &c.Store.Kind)
	str("DB_PATH", &c.Store.Path)
	str("ARTIFACTS_DIR", &c.Artifacts.Dir)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("HTTP_ADDR", &c.HTTP.Addr)
	return errs.ErrorOrNil()
}

// Validate reports every out-of-range field at once.
func (c Config) Validate() error {
	var errs *multierror.Error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = multierror.Append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Evolution.PopulationSize > 0, "evolution.population_size must be > 0, got %d", c.Evolution.PopulationSize)
	check(c.Evolution.GenomeLength > 0, "evolution.genome_length must be > 0, got %d", c.Evolution.GenomeLength)
	check(c.Evolution.Generations > 0, "evolution.generations must be > 0, got %d", c.Evolution.Generations)
	check(c.Evolution.EliteCount >= 0 && c.Evolution.EliteCount <= c.Evolution.PopulationSize,
		"evolution.elite_count must be in [0, population_size], got %d", c.Evolution.EliteCount)
	check(c.Evolution.Workers >= 0, "evolution.workers must be >= 0, got %d", c.Evolution.Workers)
	check(c.Maze.MaxDist >= 0, "maze.max_dist must be >= 0, got %g", c.Maze.MaxDist)
	check(c.Maze.LengthPenalty >= 0, "maze.length_penalty must be >= 0, got %g", c.Maze.LengthPenalty)
	check(inUnit(c.Strategy.CrossoverRate), "strategy.crossover_rate must be in [0,1], got %g", c.Strategy.CrossoverRate)
	check(inUnit(c.Strategy.TossProbability), "strategy.toss_probability must be in [0,1], got %g", c.Strategy.TossProbability)
	check(inUnit(c.Strategy.MutationRate), "strategy.mutation_rate must be in [0,1], got %g", c.Strategy.MutationRate)
	switch c.Log.Format {
	case "", "auto", "text", "json":
	default:
		check(false, "log.format must be auto, text or json, got %q", c.Log.Format)
	}
	return errs.ErrorOrNil()
}

// ResolveFitnessGoal maps a configured goal onto a concrete threshold for a
// maze whose best score is maxDist: 0 means maxDist and a negative goal
// disables early stopping (ok is false).
func ResolveFitnessGoal(goal, maxDist float64) (float64, bool) {
	switch {
	case goal < 0:
		return 0, false
	case goal == 0:
		return maxDist, true
	default:
		return goal, true
	}
}

func inUnit(v float64) bool {
	return v >= 0 && v <= 1
}
