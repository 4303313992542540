package platform

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"genomaze/internal/evo"
	"genomaze/internal/logging"
	"genomaze/internal/model"
	"genomaze/internal/scape"
	"genomaze/internal/storage"
)

const defaultTopCount = 5

type Config struct {
	Store  storage.Store
	Logger *slog.Logger
}

type EvolutionConfig struct {
	RunID          string
	ScapeName      string
	PopulationSize int
	GenomeLength   int
	Generations    int
	EliteCount     int
	Workers        int
	Seed           int64
	// FitnessGoal adds a best >= goal stop condition when > 0.
	FitnessGoal float64
	TopCount    int
	Selector    evo.Selector
	Crossover   evo.Crossover
	Mutation    evo.Mutation
	Stop        evo.StopCondition
	Observer    evo.GenerationObserver
	// Initial replaces the seeded population when set.
	Initial []model.Genome
}

type EvolutionResult struct {
	RunID                 string
	BestByGeneration      []float64
	GenerationDiagnostics []model.GenerationDiagnostics
	BestFinalFitness      float64
	TopFinal              []evo.ScoredGenome
	Lineage               []model.LineageRecord
	Generations           int
	Evaluations           int
	StopReached           bool
}

// preflighter is implemented by scapes that can reject a run before any
// genome is evaluated.
type preflighter interface {
	Preflight(genomeLength int) error
}

type describer interface {
	Describe() string
}

type Polis struct {
	store storage.Store
	log   *slog.Logger

	mu      sync.RWMutex
	scapes  map[string]scape.Scape
	started bool
}

func NewPolis(cfg Config) *Polis {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Polis{
		store:  cfg.Store,
		log:    logger,
		scapes: make(map[string]scape.Scape),
	}
}

func (p *Polis) Init(ctx context.Context) error {
	if p.store == nil {
		return fmt.Errorf("store is required")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return nil
	}
	if err := p.store.Init(ctx); err != nil {
		return err
	}
	p.started = true
	return nil
}

// Reset drops registered scapes and, when the store supports it, all
// persisted state.
func (p *Polis) Reset(ctx context.Context) error {
	p.mu.Lock()
	p.scapes = make(map[string]scape.Scape)
	p.started = false
	p.mu.Unlock()

	if resetter, ok := p.store.(storage.Resetter); ok {
		if err := resetter.Reset(ctx); err != nil {
			return err
		}
	}
	return p.Init(ctx)
}

func (p *Polis) Store() storage.Store {
	return p.store
}

func (p *Polis) RegisterScape(s scape.Scape) error {
	if s == nil {
		return fmt.Errorf("scape is nil")
	}

	name := s.Name()
	if name == "" {
		return fmt.Errorf("scape name is required")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return fmt.Errorf("polis is not initialized")
	}
	p.scapes[name] = s
	return nil
}

func (p *Polis) RunEvolution(ctx context.Context, cfg EvolutionConfig) (EvolutionResult, error) {
	if cfg.ScapeName == "" {
		return EvolutionResult{}, fmt.Errorf("scape name is required")
	}
	if cfg.Initial == nil && cfg.GenomeLength <= 0 {
		return EvolutionResult{}, fmt.Errorf("genome length must be > 0")
	}
	if cfg.TopCount <= 0 {
		cfg.TopCount = defaultTopCount
	}

	p.mu.RLock()
	targetScape, ok := p.scapes[cfg.ScapeName]
	started := p.started
	p.mu.RUnlock()

	if !started {
		return EvolutionResult{}, fmt.Errorf("polis is not initialized")
	}
	if !ok {
		return EvolutionResult{}, fmt.Errorf("scape not registered: %s", cfg.ScapeName)
	}

	genomeLength := cfg.GenomeLength
	if len(cfg.Initial) > 0 {
		genomeLength = len(cfg.Initial[0].Genes)
	}
	if check, ok := targetScape.(preflighter); ok {
		if err := check.Preflight(genomeLength); err != nil {
			return EvolutionResult{}, fmt.Errorf("scape %s: %w", cfg.ScapeName, err)
		}
	}

	runID := cfg.RunID
	if runID == "" {
		runID = fmt.Sprintf("evo:%s:%d", cfg.ScapeName, cfg.Seed)
	}
	log := p.log.With("run_id", runID)

	stop := cfg.Stop
	if cfg.FitnessGoal > 0 {
		stop = evo.AnyOf(stop, evo.FitnessGoal(cfg.FitnessGoal))
	}

	monitor, err := evo.NewPopulationMonitor(evo.MonitorConfig{
		Scape:          targetScape,
		Selector:       cfg.Selector,
		Crossover:      cfg.Crossover,
		Mutation:       cfg.Mutation,
		Stop:           stop,
		Observer:       cfg.Observer,
		PopulationSize: cfg.PopulationSize,
		EliteCount:     cfg.EliteCount,
		Generations:    cfg.Generations,
		Workers:        cfg.Workers,
		Seed:           cfg.Seed,
		IDPrefix:       runID,
		Logger:         log,
	})
	if err != nil {
		return EvolutionResult{}, err
	}

	initial := cfg.Initial
	if initial == nil {
		initial = monitor.Seed(cfg.GenomeLength)
	}
	log.Info("evolution started",
		"scape", cfg.ScapeName,
		"population", cfg.PopulationSize,
		"genome_length", genomeLength,
		"generations", cfg.Generations,
	)

	result, err := monitor.Run(ctx, initial)
	if err != nil {
		return EvolutionResult{}, err
	}

	ranked := result.FinalPopulation
	bestFinal := 0.0
	if len(ranked) > 0 {
		bestFinal = ranked[0].Fitness
	}
	topCount := cfg.TopCount
	if len(ranked) < topCount {
		topCount = len(ranked)
	}
	topFinal := append([]evo.ScoredGenome(nil), ranked[:topCount]...)

	if err := p.persistRun(ctx, runID, result, topFinal); err != nil {
		return EvolutionResult{}, fmt.Errorf("persist run %s: %w", runID, err)
	}
	if err := p.updateScapeSummary(ctx, targetScape, bestFinal); err != nil {
		return EvolutionResult{}, err
	}

	log.Info("evolution finished",
		"generations", result.Generations,
		"evaluations", result.Evaluations,
		"best", bestFinal,
		"stop_reached", result.StopReached,
	)
	return EvolutionResult{
		RunID:                 runID,
		BestByGeneration:      result.BestByGeneration,
		GenerationDiagnostics: result.GenerationDiagnostics,
		BestFinalFitness:      bestFinal,
		TopFinal:              topFinal,
		Lineage:               result.Lineage,
		Generations:           result.Generations,
		Evaluations:           result.Evaluations,
		StopReached:           result.StopReached,
	}, nil
}

func (p *Polis) persistRun(ctx context.Context, runID string, result evo.RunResult, top []evo.ScoredGenome) error {
	population := model.Population{
		VersionedRecord: model.CurrentVersion(),
		ID:              runID,
		GenomeIDs:       make([]string, 0, len(result.FinalPopulation)),
		Generation:      result.Generations,
	}
	for _, scored := range result.FinalPopulation {
		if err := p.store.SaveGenome(ctx, scored.Genome); err != nil {
			return err
		}
		population.GenomeIDs = append(population.GenomeIDs, scored.Genome.ID)
	}
	if err := p.store.SavePopulation(ctx, population); err != nil {
		return err
	}
	if err := p.store.SaveFitnessHistory(ctx, runID, result.BestByGeneration); err != nil {
		return err
	}
	if err := p.store.SaveGenerationDiagnostics(ctx, runID, result.GenerationDiagnostics); err != nil {
		return err
	}
	if err := p.store.SaveTopGenomes(ctx, runID, ToTopGenomeRecords(top)); err != nil {
		return err
	}
	return p.store.SaveLineage(ctx, runID, result.Lineage)
}

func ToTopGenomeRecords(top []evo.ScoredGenome) []model.TopGenomeRecord {
	out := make([]model.TopGenomeRecord, 0, len(top))
	for i, item := range top {
		out = append(out, model.TopGenomeRecord{
			Rank:    i + 1,
			Fitness: item.Fitness,
			Genome:  evo.CloneGenome(item.Genome),
		})
	}
	return out
}

func (p *Polis) updateScapeSummary(ctx context.Context, s scape.Scape, fitness float64) error {
	summary, ok, err := p.store.GetScapeSummary(ctx, s.Name())
	if err != nil {
		return err
	}
	if !ok {
		summary = model.ScapeSummary{
			VersionedRecord: model.CurrentVersion(),
			Name:            s.Name(),
			BestFitness:     fitness,
		}
	}
	summary.Description = fmt.Sprintf("best observed fitness for scape %s", s.Name())
	if d, ok := s.(describer); ok {
		summary.Description = d.Describe()
	}
	if fitness > summary.BestFitness {
		summary.BestFitness = fitness
	}
	return p.store.SaveScapeSummary(ctx, summary)
}
