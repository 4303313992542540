package evo

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"strings"

	"github.com/sourcegraph/conc/pool"
	"gonum.org/v1/gonum/stat"

	"genomaze/internal/logging"
	"genomaze/internal/model"
	"genomaze/internal/scape"
)

type ScoredGenome struct {
	Genome  model.Genome
	Fitness float64
	Trace   scape.Trace
}

type RunResult struct {
	BestByGeneration      []float64
	GenerationDiagnostics []model.GenerationDiagnostics
	FinalPopulation       []ScoredGenome
	Lineage               []model.LineageRecord
	Generations           int
	Evaluations           int
	// StopReached is set when the stop condition ended the run before the
	// generation cap.
	StopReached bool
}

// GenerationObserver sees every ranked generation before the next one is bred.
// It must not retain or modify ranked.
type GenerationObserver func(generation int, ranked []ScoredGenome)

type MonitorConfig struct {
	Scape          scape.Scape
	Selector       Selector
	Crossover      Crossover
	Mutation       Mutation
	Stop           StopCondition
	Observer       GenerationObserver
	PopulationSize int
	EliteCount     int
	// Generations caps the run regardless of Stop.
	Generations int
	Workers     int
	Seed        int64
	// IDPrefix qualifies the ids of seeded and bred genomes.
	IDPrefix string
	Logger   *slog.Logger
}

type PopulationMonitor struct {
	cfg MonitorConfig
	rng *rand.Rand
	log *slog.Logger
}

func NewPopulationMonitor(cfg MonitorConfig) (*PopulationMonitor, error) {
	if cfg.Scape == nil {
		return nil, fmt.Errorf("scape is required")
	}
	if cfg.Mutation == nil {
		return nil, fmt.Errorf("mutation operator is required")
	}
	if cfg.Crossover == nil {
		return nil, fmt.Errorf("crossover operator is required")
	}
	if cfg.PopulationSize <= 0 {
		return nil, fmt.Errorf("population size must be > 0")
	}
	if cfg.EliteCount < 0 || cfg.EliteCount > cfg.PopulationSize {
		return nil, fmt.Errorf("elite count must be in [0, population size]")
	}
	if cfg.Generations <= 0 {
		return nil, fmt.Errorf("generations must be > 0")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Selector == nil {
		cfg.Selector = RouletteSelector{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &PopulationMonitor{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
		log: logger.With("scape", cfg.Scape.Name()),
	}, nil
}

// Seed draws the initial population from the monitor's random source.
func (m *PopulationMonitor) Seed(genomeLength int) []model.Genome {
	return RandomPopulation(m.rng, m.cfg.IDPrefix, m.cfg.PopulationSize, genomeLength)
}

func (m *PopulationMonitor) Run(ctx context.Context, initial []model.Genome) (RunResult, error) {
	if len(initial) != m.cfg.PopulationSize {
		return RunResult{}, fmt.Errorf("initial population mismatch: got=%d want=%d", len(initial), m.cfg.PopulationSize)
	}

	population := make([]model.Genome, len(initial))
	for i := range initial {
		population[i] = CloneGenome(initial[i])
	}

	result := RunResult{
		BestByGeneration:      make([]float64, 0, m.cfg.Generations),
		GenerationDiagnostics: make([]model.GenerationDiagnostics, 0, m.cfg.Generations),
		Lineage:               make([]model.LineageRecord, 0, len(initial)),
	}
	for _, genome := range population {
		result.Lineage = append(result.Lineage, model.LineageRecord{
			GenomeID:   genome.ID,
			Generation: 0,
			Operation:  "seed",
		})
	}

	for gen := 1; gen <= m.cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return RunResult{}, err
		}

		scored, err := m.evaluatePopulation(ctx, population)
		if err != nil {
			return RunResult{}, fmt.Errorf("generation %d: %w", gen, err)
		}
		sort.SliceStable(scored, func(i, j int) bool {
			return scored[i].Fitness > scored[j].Fitness
		})

		diagnostics := summarizeGeneration(scored, gen)
		result.BestByGeneration = append(result.BestByGeneration, scored[0].Fitness)
		result.GenerationDiagnostics = append(result.GenerationDiagnostics, diagnostics)
		result.FinalPopulation = scored
		result.Generations = gen
		result.Evaluations += len(scored)

		m.log.Debug("generation evaluated",
			"generation", gen,
			"best", diagnostics.BestFitness,
			"mean", diagnostics.MeanFitness,
			"goal_reached", diagnostics.GoalReached,
		)
		if diagnostics.DomainViolations > 0 {
			m.log.Warn("genome values outside [0,1) absorbed by decoder",
				"generation", gen,
				"violations", diagnostics.DomainViolations,
			)
		}
		if m.cfg.Observer != nil {
			m.cfg.Observer(gen, scored)
		}

		if m.cfg.Stop != nil && m.cfg.Stop(scored[0].Fitness, gen, scored) {
			result.StopReached = true
			break
		}
		if gen == m.cfg.Generations {
			break
		}

		var lineage []model.LineageRecord
		population, lineage, err = m.nextGeneration(ctx, scored, gen)
		if err != nil {
			return RunResult{}, err
		}
		result.Lineage = append(result.Lineage, lineage...)
	}

	return result, nil
}

func (m *PopulationMonitor) evaluatePopulation(ctx context.Context, population []model.Genome) ([]ScoredGenome, error) {
	workers := m.cfg.Workers
	if workers > len(population) {
		workers = len(population)
	}

	scored := make([]ScoredGenome, len(population))
	p := pool.New().
		WithMaxGoroutines(workers).
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError()
	for i := range population {
		p.Go(func(ctx context.Context) error {
			genome := population[i]
			fitness, trace, err := m.cfg.Scape.Evaluate(ctx, genomeAgent{genome: genome})
			if err != nil {
				return err
			}
			scored[i] = ScoredGenome{Genome: genome, Fitness: float64(fitness), Trace: trace}
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return scored, nil
}

func (m *PopulationMonitor) nextGeneration(ctx context.Context, ranked []ScoredGenome, generation int) ([]model.Genome, []model.LineageRecord, error) {
	next := make([]model.Genome, 0, m.cfg.PopulationSize)
	lineage := make([]model.LineageRecord, 0, m.cfg.PopulationSize)
	nextGeneration := generation + 1

	for i := 0; i < m.cfg.EliteCount; i++ {
		next = append(next, CloneGenome(ranked[i].Genome))
		lineage = append(lineage, model.LineageRecord{
			GenomeID:   ranked[i].Genome.ID,
			ParentIDs:  []string{ranked[i].Genome.ID},
			Generation: nextGeneration,
			Operation:  "elite_clone",
		})
	}

	operation := strings.Join([]string{m.cfg.Crossover.Name(), m.cfg.Mutation.Name()}, "+")
	for len(next) < m.cfg.PopulationSize {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		a, err := m.cfg.Selector.PickParent(m.rng, ranked)
		if err != nil {
			return nil, nil, err
		}
		b, err := m.cfg.Selector.PickParent(m.rng, ranked)
		if err != nil {
			return nil, nil, err
		}
		genes, err := m.cfg.Crossover.Cross(m.rng, a.Genes, b.Genes)
		if err != nil {
			return nil, nil, fmt.Errorf("crossover %s x %s: %w", a.ID, b.ID, err)
		}
		genes = m.cfg.Mutation.Mutate(m.rng, genes)

		child := NewGenome(genomeID(m.cfg.IDPrefix, nextGeneration, len(next)), genes)
		next = append(next, child)
		lineage = append(lineage, model.LineageRecord{
			GenomeID:   child.ID,
			ParentIDs:  []string{a.ID, b.ID},
			Generation: nextGeneration,
			Operation:  operation,
		})
	}
	return next, lineage, nil
}

func summarizeGeneration(scored []ScoredGenome, generation int) model.GenerationDiagnostics {
	if len(scored) == 0 {
		return model.GenerationDiagnostics{Generation: generation}
	}

	fitness := make([]float64, len(scored))
	pathLengths := make([]float64, len(scored))
	out := model.GenerationDiagnostics{
		Generation:  generation,
		BestFitness: scored[0].Fitness,
		MinFitness:  scored[0].Fitness,
	}
	for i, item := range scored {
		fitness[i] = item.Fitness
		if item.Fitness < out.MinFitness {
			out.MinFitness = item.Fitness
		}
		pathLengths[i] = float64(traceInt(item.Trace, "path_length"))
		if traceBool(item.Trace, "reached_goal") {
			out.GoalReached++
		}
		if traceBool(item.Trace, "dead_end") {
			out.DeadEnds++
		}
		out.DomainViolations += traceInt(item.Trace, "domain_violations")
	}

	out.MeanFitness = stat.Mean(fitness, nil)
	if len(fitness) > 1 {
		out.StdDevFitness = stat.StdDev(fitness, nil)
	}
	out.MeanPathLength = stat.Mean(pathLengths, nil)
	return out
}

func traceInt(trace scape.Trace, key string) int {
	switch v := trace[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

func traceBool(trace scape.Trace, key string) bool {
	v, _ := trace[key].(bool)
	return v
}

type genomeAgent struct {
	genome model.Genome
}

func (a genomeAgent) ID() string {
	return a.genome.ID
}

func (a genomeAgent) Genes() []float64 {
	return a.genome.Genes
}
