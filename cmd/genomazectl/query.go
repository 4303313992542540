package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"genomaze/internal/stats"
	"genomaze/pkg/genomaze"
)

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	s := bindSettings(fs, true)
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, _, err := openClient(s)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	items, err := client.Runs(ctx, genomaze.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("no runs found")
		return nil
	}
	if *jsonOut {
		type runsItem struct {
			RunID            string  `json:"run_id"`
			CreatedAtUTC     string  `json:"created_at_utc"`
			Scape            string  `json:"scape"`
			MazePath         string  `json:"maze_path,omitempty"`
			Seed             int64   `json:"seed"`
			Population       int     `json:"population_size"`
			GenomeLength     int     `json:"genome_length"`
			Generations      int     `json:"generations"`
			MaxDist          float64 `json:"max_dist"`
			FinalBestFitness float64 `json:"final_best_fitness"`
			GoalReached      bool    `json:"goal_reached"`
		}
		out := make([]runsItem, 0, len(items))
		for _, item := range items {
			out = append(out, runsItem(item))
		}
		return printJSON(out)
	}

	for _, item := range items {
		fmt.Printf("run_id=%s created=%s scape=%s seed=%d pop=%d genome_length=%s gens=%s best=%.6f max_dist=%g goal_reached=%t\n",
			item.RunID,
			createdAgo(item.CreatedAtUTC),
			item.Scape,
			item.Seed,
			item.Population,
			humanize.Comma(int64(item.GenomeLength)),
			humanize.Comma(int64(item.Generations)),
			item.FinalBestFitness,
			item.MaxDist,
			item.GoalReached,
		)
	}
	return nil
}

func runTop(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("top", flag.ContinueOnError)
	s := bindSettings(fs, true)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show top genomes for the most recent run from run index")
	limit := fs.Int("limit", 5, "max top genomes to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit top genomes as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ref, err := runRef("top", *runID, *latest)
	if err != nil {
		return err
	}
	if *limit > 0 {
		ref.Limit = *limit
	}

	client, _, err := openClient(s)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	top, err := client.TopGenomes(ctx, ref)
	if err != nil {
		return err
	}
	if len(top) == 0 {
		fmt.Println("no top genomes")
		return nil
	}
	if *jsonOut {
		return printJSON(top)
	}

	for _, item := range top {
		fmt.Printf("rank=%d fitness=%.6f genome_id=%s genes=%s\n",
			item.Rank,
			item.Fitness,
			item.Genome.ID,
			humanize.Comma(int64(len(item.Genome.Genes))),
		)
	}
	return nil
}

func runLineage(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("lineage", flag.ContinueOnError)
	s := bindSettings(fs, true)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show lineage for the most recent run from run index")
	limit := fs.Int("limit", 0, "max records to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit lineage as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ref, err := runRef("lineage", *runID, *latest)
	if err != nil {
		return err
	}
	if *limit > 0 {
		ref.Limit = *limit
	}

	client, _, err := openClient(s)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	lineage, err := client.Lineage(ctx, ref)
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(lineage)
	}

	for _, record := range lineage {
		parents := "-"
		if len(record.ParentIDs) > 0 {
			parents = strings.Join(record.ParentIDs, ",")
		}
		fmt.Printf("generation=%d genome_id=%s operation=%s parents=%s\n",
			record.Generation, record.GenomeID, record.Operation, parents)
	}
	return nil
}

func runFitness(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fitness", flag.ContinueOnError)
	s := bindSettings(fs, true)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show fitness history for the most recent run from run index")
	limit := fs.Int("limit", 0, "max generations to print (<=0 for all)")
	goal := fs.Float64("goal", 0, "also report the first generation reaching this fitness (<=0 skips)")
	jsonOut := fs.Bool("json", false, "emit history and summary as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ref, err := runRef("fitness", *runID, *latest)
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

	history, err := client.FitnessHistory(ctx, ref)
	if err != nil {
		return err
	}
	summary := stats.SummarizeFitness(history)
	if *limit > 0 && len(history) > *limit {
		history = history[:*limit]
	}
	if *jsonOut {
		return printJSON(stats.FitnessHistory{
			BestByGeneration: history,
			FinalBestFitness: summary.Last,
			Summary:          summary,
		})
	}

	for i, best := range history {
		fmt.Printf("generation=%d best_fitness=%.6f\n", i+1, best)
	}
	fmt.Printf("summary generations=%s best=%.6f best_generation=%d mean=%.6f stddev=%.6f improvement=%.6f\n",
		humanize.Comma(int64(summary.Generations)),
		summary.Best,
		summary.BestGeneration,
		summary.Mean,
		summary.StdDev,
		summary.Improvement,
	)
	if *goal > 0 {
		fmt.Printf("goal=%g first_generation=%d\n", *goal, stats.GoalGeneration(history, *goal))
	}
	return nil
}

func runDiagnostics(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("diagnostics", flag.ContinueOnError)
	s := bindSettings(fs, true)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show diagnostics for the most recent run from run index")
	limit := fs.Int("limit", 0, "max generations to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit diagnostics as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ref, err := runRef("diagnostics", *runID, *latest)
	if err != nil {
		return err
	}
	if *limit > 0 {
		ref.Limit = *limit
	}

	client, _, err := openClient(s)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	diagnostics, err := client.Diagnostics(ctx, ref)
	if err != nil {
		return err
	}
	if len(diagnostics) == 0 {
		fmt.Println("no diagnostics")
		return nil
	}
	if *jsonOut {
		return printJSON(diagnostics)
	}

	for _, d := range diagnostics {
		fmt.Printf("generation=%d best=%.6f mean=%.6f min=%.6f stddev=%.6f mean_path_length=%.2f goal_reached=%d dead_ends=%d domain_violations=%d\n",
			d.Generation,
			d.BestFitness,
			d.MeanFitness,
			d.MinFitness,
			d.StdDevFitness,
			d.MeanPathLength,
			d.GoalReached,
			d.DeadEnds,
			d.DomainViolations,
		)
	}
	return nil
}

func runPlot(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("plot", flag.ContinueOnError)
	s := bindSettings(fs, true)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "plot the most recent run from run index")
	out := fs.String("out", "", "PNG output path (default: fitness.png in the run's artifacts)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ref, err := runRef("plot", *runID, *latest)
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

	path, err := client.Plot(ctx, genomaze.PlotRequest{RunID: ref.RunID, Latest: ref.Latest, OutPath: *out})
	if err != nil {
		return err
	}
	fmt.Printf("plotted to=%s\n", path)
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	s := bindSettings(fs, true)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "export the most recent run from run index")
	outDir := fs.String("out", exportsDir, "export output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ref, err := runRef("export", *runID, *latest)
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

	exported, err := client.Export(ctx, genomaze.ExportRequest{RunID: ref.RunID, Latest: ref.Latest, OutDir: *outDir})
	if err != nil {
		return err
	}
	fmt.Printf("exported run_id=%s to=%s\n", exported.RunID, exported.Directory)
	return nil
}

func createdAgo(createdAtUTC string) string {
	t, err := time.Parse(time.RFC3339Nano, createdAtUTC)
	if err != nil {
		return createdAtUTC
	}
	return humanize.Time(t)
}
