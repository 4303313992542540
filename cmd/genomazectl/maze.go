package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"genomaze/internal/maze"
	"genomaze/internal/render"
	"genomaze/pkg/genomaze"
)

type genomeFlags struct {
	mazePath   *string
	edgePolicy *string
	genome     *string
	genomeFile *string
	jsonOut    *bool
	render     *bool
}

func bindGenomeFlags(fs *flag.FlagSet) genomeFlags {
	return genomeFlags{
		mazePath:   fs.String("maze", "", "maze file path (default from config, then the built-in maze)"),
		edgePolicy: fs.String("edge-policy", "", "edge policy: inclusive|legacy (default from config)"),
		genome:     fs.String("genome", "", "comma or space separated genes"),
		genomeFile: fs.String("genome-file", "", "file holding a JSON array or separated list of genes"),
		jsonOut:    fs.Bool("json", false, "emit the result as JSON"),
		render:     fs.Bool("render", false, "draw the decoded path on the maze"),
	}
}

// request resolves maze and policy against the loaded config and reads the
// genome from whichever flag was given.
func (f genomeFlags) request(command, cfgMaze, cfgPolicy string) (genomaze.DecodeRequest, error) {
	if *f.genome != "" && *f.genomeFile != "" {
		return genomaze.DecodeRequest{}, errors.New("use either --genome or --genome-file, not both")
	}
	if *f.genome == "" && *f.genomeFile == "" {
		return genomaze.DecodeRequest{}, fmt.Errorf("%s requires --genome or --genome-file", command)
	}

	var genes []float64
	var err error
	if *f.genomeFile != "" {
		genes, err = readGenomeFile(*f.genomeFile)
	} else {
		genes, err = parseGenome(*f.genome)
	}
	if err != nil {
		return genomaze.DecodeRequest{}, err
	}

	req := genomaze.DecodeRequest{
		MazePath:   cfgMaze,
		EdgePolicy: cfgPolicy,
		Genome:     genes,
	}
	if *f.mazePath != "" {
		req.MazePath = *f.mazePath
	}
	if *f.edgePolicy != "" {
		req.EdgePolicy = *f.edgePolicy
	}
	return req, nil
}

func runDecode(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	s := bindSettings(fs, false)
	gf := bindGenomeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, cfg, err := openClient(s)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	req, err := gf.request("decode", cfg.Maze.Path, cfg.Maze.EdgePolicy)
	if err != nil {
		return err
	}
	res, err := client.Decode(ctx, req)
	if err != nil {
		return err
	}
	if *gf.jsonOut {
		return printJSON(decodeOutput(res))
	}

	fmt.Printf("path_length=%d dead_end=%t domain_violations=%d clamped=%d\n",
		len(res.Path), res.DeadEnd, res.DomainViolations, res.Clamped)
	fmt.Printf("path=%s\n", formatPath(res.Path))
	if *gf.render {
		return drawPath(req.MazePath, res.Path)
	}
	return nil
}

func runEvaluate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("evaluate", flag.ContinueOnError)
	s := bindSettings(fs, false)
	gf := bindGenomeFlags(fs)
	lengthPenalty := fs.Float64("length-penalty", -1, "fitness penalty per path step (<0 uses config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, cfg, err := openClient(s)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	req, err := gf.request("evaluate", cfg.Maze.Path, cfg.Maze.EdgePolicy)
	if err != nil {
		return err
	}
	penalty := cfg.Maze.LengthPenalty
	if *lengthPenalty >= 0 {
		penalty = *lengthPenalty
	}
	res, err := client.Evaluate(ctx, req, penalty)
	if err != nil {
		return err
	}
	if *gf.jsonOut {
		return printJSON(struct {
			decodeJSON
			Fitness  float64 `json:"fitness"`
			MaxDist  float64 `json:"max_dist"`
			Distance int     `json:"distance"`
		}{decodeOutput(res.DecodeResult), res.Fitness, res.MaxDist, res.Distance})
	}

	fmt.Printf("fitness=%.6f max_dist=%g distance=%d path_length=%d domain_violations=%d\n",
		res.Fitness, res.MaxDist, res.Distance, len(res.Path), res.DomainViolations)
	if *gf.render {
		return drawPath(req.MazePath, res.Path)
	}
	return nil
}

func runMazeInfo(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("maze-info", flag.ContinueOnError)
	s := bindSettings(fs, false)
	mazePath := fs.String("maze", "", "maze file path (default from config, then the built-in maze)")
	edgePolicy := fs.String("edge-policy", "", "edge policy: inclusive|legacy (default from config)")
	jsonOut := fs.Bool("json", false, "emit the analysis as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, _, err := s.load()
	if err != nil {
		return err
	}
	if *mazePath != "" {
		cfg.Maze.Path = *mazePath
	}
	if *edgePolicy != "" {
		cfg.Maze.EdgePolicy = *edgePolicy
	}

	grid, err := maze.Load(cfg.Maze.Path)
	if err != nil {
		var malformed *maze.MalformedMazeError
		if !errors.As(err, &malformed) {
			return err
		}
		problems := malformed.Problems()
		for _, problem := range problems {
			fmt.Printf("problem: %v\n", problem)
		}
		return fmt.Errorf("maze %s has %d problems: %w", cfg.Maze.Path, len(problems), maze.ErrMalformedMaze)
	}
	policy, err := maze.ParseEdgePolicy(cfg.Maze.EdgePolicy)
	if err != nil {
		return err
	}
	analysis := maze.Analyze(grid, policy)
	if *jsonOut {
		return printJSON(struct {
			maze.Analysis
			Start   maze.Position `json:"start"`
			Goal    maze.Position `json:"goal"`
			MaxDist float64       `json:"max_dist"`
			Lines   []string      `json:"lines"`
		}{analysis, grid.Start(), grid.End(), grid.MaxDist(), grid.Lines()})
	}

	fmt.Printf("rows=%d cols=%d start=%s goal=%s max_dist=%g policy=%s\n",
		grid.Rows(), grid.Cols(), grid.Start(), grid.End(), grid.MaxDist(), analysis.Policy)
	fmt.Printf("open_cells=%d reachable_cells=%d goal_reachable=%t shortest_path=%d\n",
		analysis.OpenCells, analysis.ReachableCells, analysis.Reachable, analysis.ShortestPath)
	fmt.Print(grid.String())
	return nil
}

func runFrame(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("frame", flag.ContinueOnError)
	s := bindSettings(fs, true)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "draw the most recent run from run index")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ref, err := runRef("frame", *runID, *latest)
	if err != nil {
		return err
	}

	client, _, err := openClient(s)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	frame, grid, err := client.Frame(ctx, ref)
	if err != nil {
		return err
	}
	return render.WriteASCII(os.Stdout, grid, frame)
}

type decodeJSON struct {
	Path             []maze.Position `json:"path"`
	DeadEnd          bool            `json:"dead_end"`
	DomainViolations int             `json:"domain_violations"`
	Clamped          int             `json:"clamped"`
}

func decodeOutput(res genomaze.DecodeResult) decodeJSON {
	path := []maze.Position(res.Path)
	if path == nil {
		path = []maze.Position{}
	}
	return decodeJSON{
		Path:             path,
		DeadEnd:          res.DeadEnd,
		DomainViolations: res.DomainViolations,
		Clamped:          res.Clamped,
	}
}

func drawPath(mazePath string, path []maze.Position) error {
	grid, err := maze.Load(mazePath)
	if err != nil {
		return err
	}
	return render.WriteASCII(os.Stdout, grid, render.Frame{BestPath: path})
}

func formatPath(path []maze.Position) string {
	if len(path) == 0 {
		return "-"
	}
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = p.String()
	}
	return strings.Join(parts, " ")
}

func parseGenome(raw string) ([]float64, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	genes := make([]float64, 0, len(fields))
	for i, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("gene %d: %w", i, err)
		}
		genes = append(genes, v)
	}
	return genes, nil
}

func readGenomeFile(path string) ([]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var genes []float64
		if err := json.Unmarshal([]byte(trimmed), &genes); err != nil {
			return nil, fmt.Errorf("decode genome file %s: %w", path, err)
		}
		return genes, nil
	}
	return parseGenome(trimmed)
}
