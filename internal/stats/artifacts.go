package stats

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"genomaze/internal/model"
)

const (
	runIndexFile          = "run_index.json"
	configFile            = "config.json"
	fitnessHistoryFile    = "fitness_history.json"
	topGenomesFile        = "top_genomes.json"
	diagnosticsFile       = "generation_diagnostics.json"
	lineageFile           = "lineage.json"
	fitnessSeriesFile     = "fitness_series.csv"
	FitnessChartFile      = "fitness.png"
	defaultArtifactsPerms = 0o755
)

// ErrInvalidRunID rejects run ids that cannot name a directory directly under
// the artifacts directory.
var ErrInvalidRunID = errors.New("invalid run id")

// ValidateRunID accepts ids that are a single path element without "..".
func ValidateRunID(runID string) error {
	if runID == "" || runID == "." || strings.Contains(runID, "..") || strings.ContainsAny(runID, `/\`) || filepath.Base(runID) != runID {
		return fmt.Errorf("%w: %q", ErrInvalidRunID, runID)
	}
	return nil
}

// RunConfig is the effective configuration a run was started with.
type RunConfig struct {
	RunID           string   `json:"run_id"`
	Scape           string   `json:"scape"`
	MazePath        string   `json:"maze_path,omitempty"`
	MazeLines       []string `json:"maze_lines,omitempty"`
	MazeRows        int      `json:"maze_rows"`
	MazeCols        int      `json:"maze_cols"`
	EdgePolicy      string   `json:"edge_policy"`
	MaxDist         float64  `json:"max_dist"`
	LengthPenalty   float64  `json:"length_penalty,omitempty"`
	PopulationSize  int      `json:"population_size"`
	GenomeLength    int      `json:"genome_length"`
	Generations     int      `json:"generations"`
	FitnessGoal     float64  `json:"fitness_goal"`
	EliteCount      int      `json:"elite_count"`
	Workers         int      `json:"workers"`
	Seed            int64    `json:"seed"`
	Selection       string   `json:"selection"`
	TournamentSize  int      `json:"tournament_size,omitempty"`
	Crossover       string   `json:"crossover"`
	CrossoverRate   float64  `json:"crossover_rate"`
	TossProbability float64  `json:"toss_probability"`
	Mutation        string   `json:"mutation"`
	MutationRate    float64  `json:"mutation_rate"`
	MutationSigma   float64  `json:"mutation_sigma,omitempty"`
	StoreKind       string   `json:"store_kind"`
}

type FitnessHistory struct {
	BestByGeneration []float64      `json:"best_by_generation"`
	FinalBestFitness float64        `json:"final_best_fitness"`
	Summary          FitnessSummary `json:"summary"`
}

type RunArtifacts struct {
	Config                RunConfig                     `json:"config"`
	BestByGeneration      []float64                     `json:"best_by_generation"`
	GenerationDiagnostics []model.GenerationDiagnostics `json:"generation_diagnostics,omitempty"`
	FinalBestFitness      float64                       `json:"final_best_fitness"`
	TopGenomes            []model.TopGenomeRecord       `json:"top_genomes"`
	Lineage               []model.LineageRecord         `json:"lineage"`
}

type RunIndexEntry struct {
	RunID            string  `json:"run_id"`
	Scape            string  `json:"scape"`
	MazePath         string  `json:"maze_path,omitempty"`
	PopulationSize   int     `json:"population_size"`
	GenomeLength     int     `json:"genome_length"`
	Generations      int     `json:"generations"`
	Seed             int64   `json:"seed"`
	Workers          int     `json:"workers"`
	EliteCount       int     `json:"elite_count"`
	MaxDist          float64 `json:"max_dist"`
	FinalBestFitness float64 `json:"final_best_fitness"`
	GoalReached      bool    `json:"goal_reached"`
	CreatedAtUTC     string  `json:"created_at_utc"`
}

// WriteRunArtifacts writes one JSON file per artifact plus a CSV of the best
// fitness series under baseDir/<run id> and returns that directory.
func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if err := ValidateRunID(artifacts.Config.RunID); err != nil {
		return "", err
	}

	runDir := filepath.Join(baseDir, artifacts.Config.RunID)
	if err := os.MkdirAll(runDir, defaultArtifactsPerms); err != nil {
		return "", err
	}

	history := FitnessHistory{
		BestByGeneration: artifacts.BestByGeneration,
		FinalBestFitness: artifacts.FinalBestFitness,
		Summary:          SummarizeFitness(artifacts.BestByGeneration),
	}
	files := []struct {
		name  string
		value any
	}{
		{configFile, artifacts.Config},
		{fitnessHistoryFile, history},
		{topGenomesFile, nonNil(artifacts.TopGenomes)},
		{diagnosticsFile, nonNil(artifacts.GenerationDiagnostics)},
		{lineageFile, nonNil(artifacts.Lineage)},
	}
	for _, file := range files {
		if err := writeJSON(filepath.Join(runDir, file.name), file.value); err != nil {
			return "", fmt.Errorf("write %s: %w", file.name, err)
		}
	}
	if err := writeFitnessSeries(filepath.Join(runDir, fitnessSeriesFile), artifacts.BestByGeneration); err != nil {
		return "", err
	}
	return runDir, nil
}

// ReadRunArtifacts loads what WriteRunArtifacts wrote. ok is false when the run
// directory does not exist.
func ReadRunArtifacts(baseDir, runID string) (RunArtifacts, bool, error) {
	if err := ValidateRunID(runID); err != nil {
		return RunArtifacts{}, false, err
	}
	runDir := filepath.Join(baseDir, runID)
	if _, err := os.Stat(runDir); err != nil {
		if os.IsNotExist(err) {
			return RunArtifacts{}, false, nil
		}
		return RunArtifacts{}, false, err
	}

	var (
		out     RunArtifacts
		history FitnessHistory
	)
	files := []struct {
		name  string
		value any
	}{
		{configFile, &out.Config},
		{fitnessHistoryFile, &history},
		{topGenomesFile, &out.TopGenomes},
		{diagnosticsFile, &out.GenerationDiagnostics},
		{lineageFile, &out.Lineage},
	}
	for _, file := range files {
		if err := readJSON(filepath.Join(runDir, file.name), file.value); err != nil {
			return RunArtifacts{}, false, fmt.Errorf("read %s: %w", file.name, err)
		}
	}
	out.BestByGeneration = history.BestByGeneration
	out.FinalBestFitness = history.FinalBestFitness
	return out, true, nil
}

func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if err := ValidateRunID(entry.RunID); err != nil {
		return err
	}
	if err := os.MkdirAll(baseDir, defaultArtifactsPerms); err != nil {
		return err
	}

	index, err := readRunIndex(baseDir)
	if err != nil {
		return err
	}
	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}
	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

// ListRunIndex returns index entries newest first. Entries with equal
// timestamps keep the later append first.
func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	entries, err := readRunIndex(baseDir)
	if err != nil {
		return nil, err
	}

	type indexedEntry struct {
		entry RunIndexEntry
		idx   int
	}
	indexed := make([]indexedEntry, len(entries))
	for i := range entries {
		indexed[i] = indexedEntry{entry: entries[i], idx: i}
	}
	sort.Slice(indexed, func(i, j int) bool {
		if indexed[i].entry.CreatedAtUTC == indexed[j].entry.CreatedAtUTC {
			return indexed[i].idx > indexed[j].idx
		}
		return indexed[i].entry.CreatedAtUTC > indexed[j].entry.CreatedAtUTC
	})

	sorted := make([]RunIndexEntry, 0, len(indexed))
	for _, item := range indexed {
		sorted = append(sorted, item.entry)
	}
	return sorted, nil
}

func readRunIndex(baseDir string) ([]RunIndexEntry, error) {
	var entries []RunIndexEntry
	if err := readJSON(filepath.Join(baseDir, runIndexFile), &entries); err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}
	return entries, nil
}

// ExportRunArtifacts copies a run directory to outDir/<run id>. The chart is
// copied only when one was rendered.
func ExportRunArtifacts(baseDir, runID, outDir string) (string, error) {
	if err := ValidateRunID(runID); err != nil {
		return "", err
	}

	src := filepath.Join(baseDir, runID)
	if _, err := os.Stat(src); err != nil {
		return "", err
	}
	dst := filepath.Join(outDir, runID)
	if err := os.MkdirAll(dst, defaultArtifactsPerms); err != nil {
		return "", err
	}

	required := []string{configFile, fitnessHistoryFile, topGenomesFile, diagnosticsFile, lineageFile}
	for _, file := range required {
		if err := copyFile(filepath.Join(src, file), filepath.Join(dst, file)); err != nil {
			return "", err
		}
	}
	for _, file := range []string{fitnessSeriesFile, FitnessChartFile} {
		if _, err := os.Stat(filepath.Join(src, file)); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", err
		}
		if err := copyFile(filepath.Join(src, file), filepath.Join(dst, file)); err != nil {
			return "", err
		}
	}
	return dst, nil
}

func writeFitnessSeries(path string, series []float64) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"generation", "best_fitness"}); err != nil {
		return err
	}
	for i, value := range series {
		record := []string{strconv.Itoa(i + 1), strconv.FormatFloat(value, 'g', -1, 64)}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

func readJSON(path string, value any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, value)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
