package genomaze

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"genomaze/internal/config"
	"genomaze/internal/evo"
	"genomaze/internal/logging"
	"genomaze/internal/maze"
	"genomaze/internal/model"
	"genomaze/internal/platform"
	"genomaze/internal/render"
	"genomaze/internal/scape"
	"genomaze/internal/stats"
	"genomaze/internal/storage"
	"genomaze/internal/walk"
)

const (
	defaultBenchmarksDir = "benchmarks"
	defaultExportsDir    = "exports"
	defaultDBPath        = "genomaze.db"
	defaultRunsLimit     = 20
)

var (
	ErrNoRuns      = errors.New("no runs available")
	// ErrRunNotFound wraps lookups of a run id with nothing persisted.
	ErrRunNotFound = errors.New("run not found")
)

type Options struct {
	StoreKind     string
	DBPath        string
	BenchmarksDir string
	ExportsDir    string
	Logger        *slog.Logger
}

type Client struct {
	store storage.Store
	polis *platform.Polis
	log   *slog.Logger

	storeKind     string
	benchmarksDir string
	exportsDir    string
	now           func() time.Time
}

type RunRequest struct {
	// MazePath is ignored when Grid is set; both empty selects the built-in maze.
	MazePath      string
	Grid          *maze.Grid
	EdgePolicy    string
	MaxDist       float64
	LengthPenalty float64

	Population   int
	GenomeLength int
	Generations  int
	// FitnessGoal of 0 stops at the maze's max_dist; negative never stops early.
	FitnessGoal float64
	EliteCount  int
	Workers     int
	Seed        int64
	TopCount    int

	Selection        string
	EliteSelectCount int
	TournamentSize   int
	Crossover        string
	CrossoverRate    float64
	TossProbability  float64
	Mutation         string
	MutationRate     float64
	MutationSigma    float64

	Plot bool
	// OnGeneration receives a frame for every ranked generation.
	OnGeneration func(render.Frame)
}

type RunSummary struct {
	RunID            string
	ArtifactsDir     string
	ChartPath        string
	BestByGeneration []float64
	FinalBestFitness float64
	MaxDist          float64
	Generations      int
	Evaluations      int
	GoalReached      bool
	StopReached      bool
	Duration         time.Duration
	BestGenome       model.Genome
	BestPath         walk.Path
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID            string
	CreatedAtUTC     string
	Scape            string
	MazePath         string
	Seed             int64
	Population       int
	GenomeLength     int
	Generations      int
	MaxDist          float64
	FinalBestFitness float64
	GoalReached      bool
}

// RunRef names a persisted run either by id or as the most recent one.
type RunRef struct {
	RunID  string
	Latest bool
	Limit  int
}

type ExportRequest struct {
	RunID  string
	Latest bool
	OutDir string
}

type ExportSummary struct {
	RunID     string
	Directory string
}

type PlotRequest struct {
	RunID  string
	Latest bool
	// OutPath defaults to fitness.png inside the run's artifacts directory.
	OutPath string
}

type DecodeRequest struct {
	MazePath   string
	Grid       *maze.Grid
	EdgePolicy string
	Genome     []float64
}

type DecodeResult struct {
	Path             walk.Path
	DeadEnd          bool
	DomainViolations int
	Clamped          int
}

type EvaluateResult struct {
	DecodeResult
	Fitness  float64
	MaxDist  float64
	Distance int
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	benchmarksDir := opts.BenchmarksDir
	if benchmarksDir == "" {
		benchmarksDir = defaultBenchmarksDir
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:         store,
		log:           logger,
		storeKind:     storeKind,
		benchmarksDir: benchmarksDir,
		exportsDir:    exportsDir,
		now:           time.Now,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	_, err := c.ensurePolis(ctx)
	return err
}

// Reset drops everything the store holds. Artifacts on disk are kept, so
// queries still find earlier runs through them.
func (c *Client) Reset(ctx context.Context) error {
	p, err := c.ensurePolis(ctx)
	if err != nil {
		return err
	}
	return p.Reset(ctx)
}

// RunRequestFromConfig maps a loaded configuration onto a run request.
func RunRequestFromConfig(cfg config.Config) RunRequest {
	return RunRequest{
		MazePath:         cfg.Maze.Path,
		EdgePolicy:       cfg.Maze.EdgePolicy,
		MaxDist:          cfg.Maze.MaxDist,
		LengthPenalty:    cfg.Maze.LengthPenalty,
		Population:       cfg.Evolution.PopulationSize,
		GenomeLength:     cfg.Evolution.GenomeLength,
		Generations:      cfg.Evolution.Generations,
		FitnessGoal:      cfg.Evolution.FitnessGoal,
		EliteCount:       cfg.Evolution.EliteCount,
		Workers:          cfg.Evolution.Workers,
		Seed:             cfg.Evolution.Seed,
		TopCount:         cfg.Evolution.TopCount,
		Selection:        cfg.Strategy.Selection,
		EliteSelectCount: cfg.Strategy.EliteSelectCount,
		TournamentSize:   cfg.Strategy.TournamentSize,
		Crossover:        cfg.Strategy.Crossover,
		CrossoverRate:    cfg.Strategy.CrossoverRate,
		TossProbability:  cfg.Strategy.TossProbability,
		Mutation:         cfg.Strategy.Mutation,
		MutationRate:     cfg.Strategy.MutationRate,
		MutationSigma:    cfg.Strategy.MutationSigma,
		Plot:             cfg.Artifacts.Plot,
	}
}

// applyDefaults fills zero fields from the embedded configuration defaults.
func (req RunRequest) applyDefaults() RunRequest {
	def := RunRequestFromConfig(config.Default())
	if req.EdgePolicy == "" {
		req.EdgePolicy = def.EdgePolicy
	}
	if req.Population <= 0 {
		req.Population = def.Population
	}
	if req.GenomeLength <= 0 {
		req.GenomeLength = def.GenomeLength
	}
	if req.Generations <= 0 {
		req.Generations = def.Generations
	}
	if req.Workers <= 0 {
		req.Workers = def.Workers
	}
	if req.TopCount <= 0 {
		req.TopCount = def.TopCount
	}
	if req.Selection == "" {
		req.Selection = def.Selection
	}
	if req.TournamentSize <= 0 {
		req.TournamentSize = def.TournamentSize
	}
	if req.Crossover == "" {
		req.Crossover = def.Crossover
		if req.CrossoverRate == 0 {
			req.CrossoverRate = def.CrossoverRate
		}
		if req.TossProbability == 0 {
			req.TossProbability = def.TossProbability
		}
	}
	if req.Mutation == "" {
		req.Mutation = def.Mutation
		if req.MutationRate == 0 {
			req.MutationRate = def.MutationRate
		}
	}
	if req.MutationSigma <= 0 {
		req.MutationSigma = def.MutationSigma
	}
	return req
}

func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	req = req.applyDefaults()
	if req.EliteCount < 0 || req.EliteCount > req.Population {
		return RunSummary{}, fmt.Errorf("elite count must be in [0, population], got %d", req.EliteCount)
	}

	grid, err := resolveGrid(req.Grid, req.MazePath)
	if err != nil {
		return RunSummary{}, err
	}
	policy, err := maze.ParseEdgePolicy(req.EdgePolicy)
	if err != nil {
		return RunSummary{}, err
	}
	mazeScape, err := scape.NewMazeScape(grid, scape.MazeOptions{
		Policy:        policy,
		MaxDist:       req.MaxDist,
		LengthPenalty: req.LengthPenalty,
	})
	if err != nil {
		return RunSummary{}, err
	}

	params := evo.StrategyParams{
		EliteSelectCount: req.EliteSelectCount,
		TournamentSize:   req.TournamentSize,
		CrossoverRate:    req.CrossoverRate,
		TossProbability:  req.TossProbability,
		MutationRate:     req.MutationRate,
		MutationSigma:    req.MutationSigma,
	}
	selector, err := evo.SelectorFromName(req.Selection, params)
	if err != nil {
		return RunSummary{}, err
	}
	crossover, err := evo.CrossoverFromName(req.Crossover, params)
	if err != nil {
		return RunSummary{}, err
	}
	mutation, err := evo.MutationFromName(req.Mutation, params)
	if err != nil {
		return RunSummary{}, err
	}

	p, err := c.ensurePolis(ctx)
	if err != nil {
		return RunSummary{}, err
	}
	if err := p.RegisterScape(mazeScape); err != nil {
		return RunSummary{}, err
	}

	goal, ok := config.ResolveFitnessGoal(req.FitnessGoal, mazeScape.MaxDist())
	switch {
	case !ok:
		goal = -1
	case req.FitnessGoal == 0 && req.LengthPenalty > 0:
		best, reachable := mazeScape.BestAchievable(req.GenomeLength)
		if !reachable {
			c.log.Warn("maze goal is out of reach for this genome length, the run will stop at the generation cap",
				"genome_length", req.GenomeLength,
			)
		}
		goal = best
	}

	var observer evo.GenerationObserver
	if req.OnGeneration != nil {
		state := render.State{Grid: grid, Decoder: walk.Decoder{Policy: policy}}
		observer = func(generation int, ranked []evo.ScoredGenome) {
			frame, err := render.Update(state, generation, ranked)
			if err != nil {
				c.log.Warn("render frame", "generation", generation, "error", err)
				return
			}
			req.OnGeneration(frame)
		}
	}

	runID := uuid.NewString()
	started := c.now()
	result, err := p.RunEvolution(ctx, platform.EvolutionConfig{
		RunID:          runID,
		ScapeName:      mazeScape.Name(),
		PopulationSize: req.Population,
		GenomeLength:   req.GenomeLength,
		Generations:    req.Generations,
		EliteCount:     req.EliteCount,
		Workers:        req.Workers,
		Seed:           req.Seed,
		FitnessGoal:    goal,
		TopCount:       req.TopCount,
		Selector:       selector,
		Crossover:      crossover,
		Mutation:       mutation,
		Observer:       observer,
	})
	if err != nil {
		return RunSummary{}, err
	}
	elapsed := c.now().Sub(started)

	runConfig := stats.RunConfig{
		RunID:           runID,
		Scape:           mazeScape.Name(),
		MazePath:        mazePathForRecord(req),
		MazeRows:        grid.Rows(),
		MazeCols:        grid.Cols(),
		EdgePolicy:      policy.String(),
		MaxDist:         mazeScape.MaxDist(),
		LengthPenalty:   req.LengthPenalty,
		PopulationSize:  req.Population,
		GenomeLength:    req.GenomeLength,
		Generations:     req.Generations,
		FitnessGoal:     goal,
		EliteCount:      req.EliteCount,
		Workers:         req.Workers,
		Seed:            req.Seed,
		Selection:       selector.Name(),
		TournamentSize:  req.TournamentSize,
		Crossover:       crossover.Name(),
		CrossoverRate:   req.CrossoverRate,
		TossProbability: req.TossProbability,
		Mutation:        mutation.Name(),
		MutationRate:    req.MutationRate,
		MutationSigma:   req.MutationSigma,
		StoreKind:       c.storeKind,
	}
	if req.Grid != nil {
		runConfig.MazeLines = grid.Lines()
	}
	runDir, err := stats.WriteRunArtifacts(c.benchmarksDir, stats.RunArtifacts{
		Config:                runConfig,
		BestByGeneration:      result.BestByGeneration,
		GenerationDiagnostics: result.GenerationDiagnostics,
		FinalBestFitness:      result.BestFinalFitness,
		TopGenomes:            platform.ToTopGenomeRecords(result.TopFinal),
		Lineage:               result.Lineage,
	})
	if err != nil {
		return RunSummary{}, err
	}

	summary := RunSummary{
		RunID:            runID,
		ArtifactsDir:     filepath.Clean(runDir),
		BestByGeneration: append([]float64(nil), result.BestByGeneration...),
		FinalBestFitness: result.BestFinalFitness,
		MaxDist:          mazeScape.MaxDist(),
		Generations:      result.Generations,
		Evaluations:      result.Evaluations,
		StopReached:      result.StopReached,
		Duration:         elapsed,
	}
	if len(result.TopFinal) > 0 {
		summary.BestGenome = evo.CloneGenome(result.TopFinal[0].Genome)
		summary.BestPath = mazeScape.Path(summary.BestGenome.Genes)
		last, ok := summary.BestPath.Last()
		summary.GoalReached = ok && last == grid.End()
	}

	if req.Plot {
		chartPath := filepath.Join(runDir, stats.FitnessChartFile)
		err := stats.PlotFitnessHistory(chartPath, result.BestByGeneration, result.GenerationDiagnostics, stats.PlotOptions{
			Title: fmt.Sprintf("maze %dx%d (%s)", grid.Rows(), grid.Cols(), policy),
			Goal:  mazeScape.MaxDist(),
		})
		if err != nil {
			return RunSummary{}, fmt.Errorf("plot fitness history: %w", err)
		}
		summary.ChartPath = chartPath
	}

	if err := stats.AppendRunIndex(c.benchmarksDir, stats.RunIndexEntry{
		RunID:            runID,
		Scape:            mazeScape.Name(),
		MazePath:         runConfig.MazePath,
		PopulationSize:   req.Population,
		GenomeLength:     req.GenomeLength,
		Generations:      result.Generations,
		Seed:             req.Seed,
		Workers:          req.Workers,
		EliteCount:       req.EliteCount,
		MaxDist:          mazeScape.MaxDist(),
		FinalBestFitness: result.BestFinalFitness,
		GoalReached:      summary.GoalReached,
		CreatedAtUTC:     started.UTC().Format(time.RFC3339Nano),
	}); err != nil {
		return RunSummary{}, err
	}

	c.log.Info("run complete",
		"run_id", runID,
		"best", result.BestFinalFitness,
		"max_dist", mazeScape.MaxDist(),
		"generations", result.Generations,
		"elapsed", elapsed,
	)
	return summary, nil
}

func (c *Client) Runs(_ context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = defaultRunsLimit
	}

	entries, err := stats.ListRunIndex(c.benchmarksDir)
	if err != nil {
		return nil, err
	}
	if len(entries) > req.Limit {
		entries = entries[:req.Limit]
	}

	out := make([]RunItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, RunItem{
			RunID:            e.RunID,
			CreatedAtUTC:     e.CreatedAtUTC,
			Scape:            e.Scape,
			MazePath:         e.MazePath,
			Seed:             e.Seed,
			Population:       e.PopulationSize,
			GenomeLength:     e.GenomeLength,
			Generations:      e.Generations,
			MaxDist:          e.MaxDist,
			FinalBestFitness: e.FinalBestFitness,
			GoalReached:      e.GoalReached,
		})
	}
	return out, nil
}

func (c *Client) Export(_ context.Context, req ExportRequest) (ExportSummary, error) {
	runID, err := c.resolveRunID(RunRef{RunID: req.RunID, Latest: req.Latest}, "export")
	if err != nil {
		return ExportSummary{}, err
	}
	if req.OutDir == "" {
		req.OutDir = c.exportsDir
	}

	exportedDir, err := stats.ExportRunArtifacts(c.benchmarksDir, runID, req.OutDir)
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{RunID: runID, Directory: filepath.Clean(exportedDir)}, nil
}

// Plot renders the fitness chart of a persisted run from its artifacts.
func (c *Client) Plot(_ context.Context, req PlotRequest) (string, error) {
	runID, err := c.resolveRunID(RunRef{RunID: req.RunID, Latest: req.Latest}, "plot")
	if err != nil {
		return "", err
	}
	artifacts, ok, err := stats.ReadRunArtifacts(c.benchmarksDir, runID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("artifacts for run id %s: %w", runID, ErrRunNotFound)
	}

	outPath := req.OutPath
	if outPath == "" {
		outPath = filepath.Join(c.benchmarksDir, runID, stats.FitnessChartFile)
	}
	err = stats.PlotFitnessHistory(outPath, artifacts.BestByGeneration, artifacts.GenerationDiagnostics, stats.PlotOptions{
		Title: fmt.Sprintf("run %s", runID),
		Goal:  artifacts.Config.MaxDist,
	})
	if err != nil {
		return "", err
	}
	return filepath.Clean(outPath), nil
}

func (c *Client) FitnessHistory(ctx context.Context, ref RunRef) ([]float64, error) {
	runID, err := c.resolveRef(ctx, ref, "fitness history")
	if err != nil {
		return nil, err
	}
	history, ok, err := c.store.GetFitnessHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		artifacts, found, err := stats.ReadRunArtifacts(c.benchmarksDir, runID)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("fitness history for run id %s: %w", runID, ErrRunNotFound)
		}
		history = artifacts.BestByGeneration
	}
	return limit(append([]float64(nil), history...), ref.Limit), nil
}

func (c *Client) Diagnostics(ctx context.Context, ref RunRef) ([]model.GenerationDiagnostics, error) {
	runID, err := c.resolveRef(ctx, ref, "diagnostics")
	if err != nil {
		return nil, err
	}
	diagnostics, ok, err := c.store.GetGenerationDiagnostics(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		artifacts, found, err := stats.ReadRunArtifacts(c.benchmarksDir, runID)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("diagnostics for run id %s: %w", runID, ErrRunNotFound)
		}
		diagnostics = artifacts.GenerationDiagnostics
	}
	return limit(append([]model.GenerationDiagnostics(nil), diagnostics...), ref.Limit), nil
}

func (c *Client) TopGenomes(ctx context.Context, ref RunRef) ([]model.TopGenomeRecord, error) {
	runID, err := c.resolveRef(ctx, ref, "top genomes")
	if err != nil {
		return nil, err
	}
	top, ok, err := c.store.GetTopGenomes(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		artifacts, found, err := stats.ReadRunArtifacts(c.benchmarksDir, runID)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("top genomes for run id %s: %w", runID, ErrRunNotFound)
		}
		top = artifacts.TopGenomes
	}
	return limit(append([]model.TopGenomeRecord(nil), top...), ref.Limit), nil
}

// Lineage lists how every genome of a run was produced, generation by
// generation.
func (c *Client) Lineage(ctx context.Context, ref RunRef) ([]model.LineageRecord, error) {
	runID, err := c.resolveRef(ctx, ref, "lineage")
	if err != nil {
		return nil, err
	}
	lineage, ok, err := c.store.GetLineage(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		artifacts, found, err := stats.ReadRunArtifacts(c.benchmarksDir, runID)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("lineage for run id %s: %w", runID, ErrRunNotFound)
		}
		lineage = artifacts.Lineage
	}
	return limit(append([]model.LineageRecord(nil), lineage...), ref.Limit), nil
}

// Decode walks a genome through a maze without scoring it.
func (c *Client) Decode(_ context.Context, req DecodeRequest) (DecodeResult, error) {
	grid, policy, err := resolveMaze(req.Grid, req.MazePath, req.EdgePolicy)
	if err != nil {
		return DecodeResult{}, err
	}
	res := walk.Decoder{Policy: policy}.Walk(req.Genome, grid, grid.Start())
	return toDecodeResult(res), nil
}

// Evaluate decodes and scores a genome. A genome that never leaves the start
// cell yields scape.ErrEmptyPath.
func (c *Client) Evaluate(_ context.Context, req DecodeRequest, lengthPenalty float64) (EvaluateResult, error) {
	grid, policy, err := resolveMaze(req.Grid, req.MazePath, req.EdgePolicy)
	if err != nil {
		return EvaluateResult{}, err
	}
	mazeScape, err := scape.NewMazeScape(grid, scape.MazeOptions{Policy: policy, LengthPenalty: lengthPenalty})
	if err != nil {
		return EvaluateResult{}, err
	}
	fitness, res, err := mazeScape.Score(req.Genome)
	if err != nil {
		return EvaluateResult{}, err
	}
	last, _ := res.Path.Last()
	return EvaluateResult{
		DecodeResult: toDecodeResult(res),
		Fitness:      fitness,
		MaxDist:      mazeScape.MaxDist(),
		Distance:     maze.Manhattan(last, grid.End()),
	}, nil
}

// Frame re-decodes the persisted top genomes of a run on the maze it was run
// against.
func (c *Client) Frame(ctx context.Context, ref RunRef) (render.Frame, *maze.Grid, error) {
	runID, err := c.resolveRef(ctx, ref, "frame")
	if err != nil {
		return render.Frame{}, nil, err
	}
	artifacts, ok, err := stats.ReadRunArtifacts(c.benchmarksDir, runID)
	if err != nil {
		return render.Frame{}, nil, err
	}
	if !ok {
		return render.Frame{}, nil, fmt.Errorf("artifacts for run id %s: %w", runID, ErrRunNotFound)
	}

	var grid *maze.Grid
	if len(artifacts.Config.MazeLines) > 0 {
		grid, err = maze.FromStrings(artifacts.Config.MazeLines...)
	} else {
		grid, err = maze.Load(artifacts.Config.MazePath)
	}
	if err != nil {
		return render.Frame{}, nil, fmt.Errorf("load maze for run %s: %w", runID, err)
	}
	policy, err := maze.ParseEdgePolicy(artifacts.Config.EdgePolicy)
	if err != nil {
		return render.Frame{}, nil, err
	}

	top, err := c.TopGenomes(ctx, RunRef{RunID: runID})
	if err != nil {
		return render.Frame{}, nil, err
	}
	ranked := make([]evo.ScoredGenome, 0, len(top))
	seen := make(map[string]bool, len(top))
	for _, record := range top {
		ranked = append(ranked, evo.ScoredGenome{Genome: record.Genome, Fitness: record.Fitness})
		seen[record.Genome.ID] = true
	}
	// The store keeps the whole final population; artifacts only the top.
	population, ok, err := c.finalPopulation(ctx, runID)
	if err != nil {
		return render.Frame{}, nil, err
	}
	if ok {
		for _, genome := range population {
			if !seen[genome.ID] {
				ranked = append(ranked, evo.ScoredGenome{Genome: genome})
			}
		}
	}
	frame, err := render.Update(render.State{Grid: grid, Decoder: walk.Decoder{Policy: policy}}, len(artifacts.BestByGeneration), ranked)
	if err != nil {
		return render.Frame{}, nil, err
	}
	return frame, grid, nil
}

// finalPopulation loads the last generation of a run from the store. ok is
// false when the store does not hold the run.
func (c *Client) finalPopulation(ctx context.Context, runID string) ([]model.Genome, bool, error) {
	population, ok, err := c.store.GetPopulation(ctx, runID)
	if err != nil || !ok {
		return nil, false, err
	}
	genomes := make([]model.Genome, 0, len(population.GenomeIDs))
	for _, id := range population.GenomeIDs {
		genome, found, err := c.store.GetGenome(ctx, id)
		if err != nil {
			return nil, false, err
		}
		if !found {
			return nil, false, fmt.Errorf("genome %s of run %s: %w", id, runID, ErrRunNotFound)
		}
		genomes = append(genomes, genome)
	}
	return genomes, true, nil
}

func (c *Client) ensurePolis(ctx context.Context) (*platform.Polis, error) {
	if c.polis != nil {
		return c.polis, nil
	}
	p := platform.NewPolis(platform.Config{Store: c.store, Logger: c.log})
	if err := p.Init(ctx); err != nil {
		return nil, err
	}
	c.polis = p
	return c.polis, nil
}

func (c *Client) resolveRef(ctx context.Context, ref RunRef, what string) (string, error) {
	if ref.Limit < 0 {
		return "", errors.New("limit must be >= 0")
	}
	runID, err := c.resolveRunID(ref, what)
	if err != nil {
		return "", err
	}
	if _, err := c.ensurePolis(ctx); err != nil {
		return "", err
	}
	return runID, nil
}

func (c *Client) resolveRunID(ref RunRef, what string) (string, error) {
	if ref.RunID != "" && ref.Latest {
		return "", errors.New("use either run id or latest")
	}
	if !ref.Latest {
		if ref.RunID == "" {
			return "", fmt.Errorf("%s requires run id or latest", what)
		}
		if err := stats.ValidateRunID(ref.RunID); err != nil {
			return "", err
		}
		return ref.RunID, nil
	}
	entries, err := stats.ListRunIndex(c.benchmarksDir)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", ErrNoRuns
	}
	return entries[0].RunID, nil
}

func resolveGrid(grid *maze.Grid, path string) (*maze.Grid, error) {
	if grid != nil {
		return grid, nil
	}
	return maze.Load(path)
}

func resolveMaze(grid *maze.Grid, path, policyName string) (*maze.Grid, maze.EdgePolicy, error) {
	g, err := resolveGrid(grid, path)
	if err != nil {
		return nil, 0, err
	}
	policy, err := maze.ParseEdgePolicy(policyName)
	if err != nil {
		return nil, 0, err
	}
	return g, policy, nil
}

func mazePathForRecord(req RunRequest) string {
	if req.Grid != nil {
		return ""
	}
	return req.MazePath
}

func toDecodeResult(res walk.Result) DecodeResult {
	return DecodeResult{
		Path:             res.Path,
		DeadEnd:          res.DeadEnd,
		DomainViolations: res.DomainViolations,
		Clamped:          res.Clamped,
	}
}

func limit[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}
