package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"genomaze/internal/config"
	"genomaze/internal/logging"
	"genomaze/pkg/genomaze"
)

const exportsDir = "exports"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "run":
		return runRun(ctx, args[1:])
	case "decode":
		return runDecode(ctx, args[1:])
	case "evaluate":
		return runEvaluate(ctx, args[1:])
	case "maze-info":
		return runMazeInfo(ctx, args[1:])
	case "frame":
		return runFrame(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "top":
		return runTop(ctx, args[1:])
	case "fitness":
		return runFitness(ctx, args[1:])
	case "lineage":
		return runLineage(ctx, args[1:])
	case "diagnostics":
		return runDiagnostics(ctx, args[1:])
	case "plot":
		return runPlot(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	case "serve":
		return runServe(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

// settings are the flags every subcommand shares. Empty values leave the
// loaded configuration untouched.
type settings struct {
	configPath   string
	envFile      string
	logLevel     string
	storeKind    string
	dbPath       string
	artifactsDir string
}

func bindSettings(fs *flag.FlagSet, withStore bool) *settings {
	s := &settings{}
	fs.StringVar(&s.configPath, "config", "", "optional YAML config path")
	fs.StringVar(&s.envFile, "env-file", ".env", "optional dotenv file with GENOMAZE_* overrides")
	fs.StringVar(&s.logLevel, "log-level", "", "log level: debug|info|warn|error")
	if withStore {
		fs.StringVar(&s.storeKind, "store", "", "store backend: memory|sqlite")
		fs.StringVar(&s.dbPath, "db-path", "", "sqlite database path")
		fs.StringVar(&s.artifactsDir, "artifacts-dir", "", "run artifacts directory")
	}
	return s
}

func (s *settings) load() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(s.configPath, s.envFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	if s.logLevel != "" {
		cfg.Log.Level = s.logLevel
	}
	if s.storeKind != "" {
		cfg.Store.Kind = s.storeKind
	}
	if s.dbPath != "" {
		cfg.Store.Path = s.dbPath
	}
	if s.artifactsDir != "" {
		cfg.Artifacts.Dir = s.artifactsDir
	}

	logger, err := logging.New(os.Stderr, logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

func newClient(cfg config.Config, logger *slog.Logger) (*genomaze.Client, error) {
	return genomaze.New(genomaze.Options{
		StoreKind:     cfg.Store.Kind,
		DBPath:        cfg.Store.Path,
		BenchmarksDir: cfg.Artifacts.Dir,
		ExportsDir:    exportsDir,
		Logger:        logger,
	})
}

// openClient loads settings and returns a client the caller must close.
func openClient(s *settings) (*genomaze.Client, config.Config, error) {
	cfg, logger, err := s.load()
	if err != nil {
		return nil, config.Config{}, err
	}
	client, err := newClient(cfg, logger)
	if err != nil {
		return nil, config.Config{}, err
	}
	return client, cfg, nil
}

func runRef(command, runID string, latest bool) (genomaze.RunRef, error) {
	if runID != "" && latest {
		return genomaze.RunRef{}, fmt.Errorf("use either --run-id or --latest, not both")
	}
	if runID == "" && !latest {
		return genomaze.RunRef{}, fmt.Errorf("%s requires --run-id or --latest", command)
	}
	return genomaze.RunRef{RunID: runID, Latest: latest}, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: genomazectl <run|decode|evaluate|maze-info|frame|runs|top|fitness|lineage|diagnostics|plot|export|serve> [flags]", msg)
}
