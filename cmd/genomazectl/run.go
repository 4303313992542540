package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"genomaze/internal/config"
	"genomaze/internal/maze"
	"genomaze/internal/render"
	"genomaze/pkg/genomaze"
)

func runRun(ctx context.Context, args []string) error {
	def := config.Default()
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	s := bindSettings(fs, true)
	mazePath := fs.String("maze", def.Maze.Path, "maze file path (empty uses the built-in maze)")
	edgePolicy := fs.String("edge-policy", def.Maze.EdgePolicy, "edge policy: inclusive|legacy")
	maxDist := fs.Float64("max-dist", def.Maze.MaxDist, "fitness ceiling (0 uses rows+cols)")
	lengthPenalty := fs.Float64("length-penalty", def.Maze.LengthPenalty, "fitness penalty per path step")
	population := fs.Int("pop", def.Evolution.PopulationSize, "population size")
	genomeLength := fs.Int("genome-length", def.Evolution.GenomeLength, "genes per genome")
	generations := fs.Int("gens", def.Evolution.Generations, "generation cap")
	fitnessGoal := fs.Float64("fitness-goal", def.Evolution.FitnessGoal, "early-stop goal (0 uses max-dist, <0 disables)")
	eliteCount := fs.Int("elite", def.Evolution.EliteCount, "elites copied unchanged into the next generation")
	workers := fs.Int("workers", def.Evolution.Workers, "evaluation workers")
	seed := fs.Int64("seed", def.Evolution.Seed, "rng seed")
	topCount := fs.Int("top", def.Evolution.TopCount, "top genomes to persist")
	selection := fs.String("selection", def.Strategy.Selection, "parent selection: elite|roulette|tournament")
	tournamentSize := fs.Int("tournament-size", def.Strategy.TournamentSize, "tournament size for selection=tournament")
	crossover := fs.String("crossover", def.Strategy.Crossover, "crossover: single_point|uniform")
	crossoverRate := fs.Float64("crossover-rate", def.Strategy.CrossoverRate, "crossover rate")
	toss := fs.Float64("toss", def.Strategy.TossProbability, "uniform crossover gene toss probability")
	mutation := fs.String("mutation", def.Strategy.Mutation, "mutation: gaussian|substitute")
	mutationRate := fs.Float64("mutation-rate", def.Strategy.MutationRate, "per-gene mutation rate")
	mutationSigma := fs.Float64("mutation-sigma", def.Strategy.MutationSigma, "gaussian mutation sigma")
	plot := fs.Bool("plot", def.Artifacts.Plot, "write fitness.png next to the run artifacts")
	renderFrames := fs.Bool("render", false, "print an ASCII frame of the maze while evolving")
	renderEvery := fs.Int("render-every", 1, "render every N generations")
	reset := fs.Bool("reset", false, "drop everything the store holds before running")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *renderEvery <= 0 {
		return fmt.Errorf("render-every must be > 0")
	}

	cfg, logger, err := s.load()
	if err != nil {
		return err
	}

	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})
	overrideFromFlags(&cfg, setFlags, map[string]any{
		"maze":            *mazePath,
		"edge-policy":     *edgePolicy,
		"max-dist":        *maxDist,
		"length-penalty":  *lengthPenalty,
		"pop":             *population,
		"genome-length":   *genomeLength,
		"gens":            *generations,
		"fitness-goal":    *fitnessGoal,
		"elite":           *eliteCount,
		"workers":         *workers,
		"seed":            *seed,
		"top":             *topCount,
		"selection":       *selection,
		"tournament-size": *tournamentSize,
		"crossover":       *crossover,
		"crossover-rate":  *crossoverRate,
		"toss":            *toss,
		"mutation":        *mutation,
		"mutation-rate":   *mutationRate,
		"mutation-sigma":  *mutationSigma,
		"plot":            *plot,
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	client, err := newClient(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if *reset {
		if err := client.Reset(ctx); err != nil {
			return fmt.Errorf("reset store: %w", err)
		}
	}

	req := genomaze.RunRequestFromConfig(cfg)
	if *renderFrames {
		grid, err := maze.Load(cfg.Maze.Path)
		if err != nil {
			return err
		}
		every := *renderEvery
		req.OnGeneration = func(frame render.Frame) {
			if frame.Generation != 1 && frame.Generation%every != 0 {
				return
			}
			if err := render.WriteASCII(os.Stdout, grid, frame); err != nil {
				logger.Warn("render frame", "generation", frame.Generation, "error", err)
			}
		}
	}

	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("run_id=%s generations=%s evaluations=%s best=%.6f max_dist=%g goal_reached=%t stopped_early=%t elapsed=%s\n",
		summary.RunID,
		humanize.Comma(int64(summary.Generations)),
		humanize.Comma(int64(summary.Evaluations)),
		summary.FinalBestFitness,
		summary.MaxDist,
		summary.GoalReached,
		summary.StopReached,
		summary.Duration.Round(time.Millisecond),
	)
	fmt.Printf("best_genome=%s path_length=%d\n", summary.BestGenome.ID, len(summary.BestPath))
	fmt.Printf("artifacts=%s\n", summary.ArtifactsDir)
	if summary.ChartPath != "" {
		fmt.Printf("chart=%s\n", summary.ChartPath)
	}
	return nil
}

// overrideFromFlags copies explicitly set flags over the loaded config so a
// YAML file or environment value only loses to a flag the user typed.
func overrideFromFlags(cfg *config.Config, set map[string]bool, flagValue map[string]any) {
	for name := range set {
		v, ok := flagValue[name]
		if !ok {
			continue
		}
		switch name {
		case "maze":
			cfg.Maze.Path = v.(string)
		case "edge-policy":
			cfg.Maze.EdgePolicy = v.(string)
		case "max-dist":
			cfg.Maze.MaxDist = v.(float64)
		case "length-penalty":
			cfg.Maze.LengthPenalty = v.(float64)
		case "pop":
			cfg.Evolution.PopulationSize = v.(int)
		case "genome-length":
			cfg.Evolution.GenomeLength = v.(int)
		case "gens":
			cfg.Evolution.Generations = v.(int)
		case "fitness-goal":
			cfg.Evolution.FitnessGoal = v.(float64)
		case "elite":
			cfg.Evolution.EliteCount = v.(int)
		case "workers":
			cfg.Evolution.Workers = v.(int)
		case "seed":
			cfg.Evolution.Seed = v.(int64)
		case "top":
			cfg.Evolution.TopCount = v.(int)
		case "selection":
			cfg.Strategy.Selection = v.(string)
		case "tournament-size":
			cfg.Strategy.TournamentSize = v.(int)
		case "crossover":
			cfg.Strategy.Crossover = v.(string)
		case "crossover-rate":
			cfg.Strategy.CrossoverRate = v.(float64)
		case "toss":
			cfg.Strategy.TossProbability = v.(float64)
		case "mutation":
			cfg.Strategy.Mutation = v.(string)
		case "mutation-rate":
			cfg.Strategy.MutationRate = v.(float64)
		case "mutation-sigma":
			cfg.Strategy.MutationSigma = v.(float64)
		case "plot":
			cfg.Artifacts.Plot = v.(bool)
		}
	}
}
