package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"creditprep/internal/config"
	"creditprep/internal/dataset"
	"creditprep/internal/infrastructure"
	"creditprep/internal/runstore"
)

var (
	configFile string
	dataDir    string
	outputDir  string
	split      string
	logLevel   string
	extraFiles []string
	runsLimit  int
)

var rootCmd = &cobra.Command{
	Use:   "dataprep",
	Short: "Prepare flat model-ready tables from raw credit application data",
	Long: `dataprep reads the normalized credit application tables (application,
bureau, bureau balance, previous application and installment records),
aggregates each client's history into per-client features, joins them onto
the application rows and writes one cleaned CSV per split.`,
	SilenceUsage: true,
	RunE:         run,
}

var runsCmd = &cobra.Command{
	Use:          "runs",
	Short:        "Show recent pipeline runs",
	SilenceUsage: true,
	RunE:         showRuns,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: config.yaml or configs/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error (overrides config)")
	rootCmd.Flags().StringVar(&dataDir, "dir", "", "directory holding the raw input tables (overrides config)")
	rootCmd.Flags().StringVar(&outputDir, "out", "", "directory for the cleaned output tables (overrides config)")
	rootCmd.Flags().StringVar(&split, "split", "both", "which split to prepare: train, test or both")
	rootCmd.Flags().StringSliceVar(&extraFiles, "extra-features", nil, "additional per-client feature files to join, relative to the data directory")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "number of runs to show")
	rootCmd.AddCommand(runsCmd)
}

// loadConfig layers the file and environment configuration, then applies
// command-line overrides on top. Overridden paths are taken relative to
// the working directory like any other command-line path.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if dataDir != "" {
		cfg.Data.Dir = absolute(dataDir)
	}
	if outputDir != "" {
		cfg.Output.Dir = absolute(outputDir)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if len(extraFiles) > 0 {
		cfg.Data.ExtraFeatureFiles = extraFiles
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.ResolvePaths(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func absolute(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

func run(cmd *cobra.Command, args []string) error {
	splits, err := parseSplits(split)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer infrastructure.CloseLogFile()

	var store *runstore.Store
	if cfg.RunStore.Enabled {
		store, err = runstore.Open(cfg.RunStore.Path, infrastructure.WithComponent(logger, "runstore"))
		if err != nil {
			return err
		}
		defer store.Close()
	}

	preparer := dataset.NewPreparer(infrastructure.WithComponent(logger, "preparer"), dataset.Config{
		BaseDir:           cfg.Data.Dir,
		ExtraFeatureFiles: cfg.Data.ExtraFeatureFiles,
	})

	for _, s := range splits {
		if err := prepareSplit(cmd.Context(), logger, store, preparer, cfg, s); err != nil {
			return err
		}
	}
	return nil
}

// prepareSplit runs one split end to end: record the run, prepare the
// table, write it out, record the outcome. The run ID travels in the
// context so every log line of the run carries it.
func prepareSplit(ctx context.Context, logger *slog.Logger, store *runstore.Store, preparer *dataset.Preparer, cfg *config.Config, s dataset.Split) error {
	var run *runstore.Run
	if store != nil {
		var err error
		run, err = store.Begin(ctx, string(s))
		if err != nil {
			return err
		}
		ctx = infrastructure.WithRunID(ctx, run.ID)
	} else {
		ctx = infrastructure.ContextWithRunID(ctx)
	}

	result, err := preparer.Prepare(ctx, s)
	if err == nil {
		err = result.WriteCSV(outputPath(cfg, s))
	}

	if store != nil {
		rows, columns := 0, 0
		if result != nil {
			rows, columns = result.Rows(), len(result.Columns())
		}
		if finishErr := store.Finish(ctx, run, rows, columns, err); finishErr != nil {
			infrastructure.WithError(logger, finishErr).WarnContext(ctx, "recording run outcome failed")
		}
	}

	if err != nil {
		infrastructure.WithError(logger, err).ErrorContext(ctx, "preparation failed",
			slog.String("split", string(s)))
		return err
	}
	logger.InfoContext(ctx, "split written",
		slog.String("split", string(s)),
		slog.String("path", outputPath(cfg, s)),
		slog.Int("rows", result.Rows()),
		slog.Int("columns", len(result.Columns())))
	return nil
}

func outputPath(cfg *config.Config, s dataset.Split) string {
	if s == dataset.Test {
		return cfg.TestOutputPath()
	}
	return cfg.TrainOutputPath()
}

func parseSplits(value string) ([]dataset.Split, error) {
	if value == "" || value == "both" {
		return []dataset.Split{dataset.Train, dataset.Test}, nil
	}
	s, err := dataset.ParseSplit(value)
	if err != nil {
		return nil, err
	}
	return []dataset.Split{s}, nil
}

func showRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.RunStore.Enabled {
		return fmt.Errorf("run store is disabled in configuration")
	}

	store, err := runstore.Open(cfg.RunStore.Path, slog.Default())
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List(cmd.Context(), runsLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded")
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-36s  %-5s  %-20s  %-9s  %7s  %7s  %s\n",
		"ID", "SPLIT", "STARTED", "STATUS", "ROWS", "COLS", "ERROR")
	for _, run := range runs {
		fmt.Fprintf(out, "%-36s  %-5s  %-20s  %-9s  %7d  %7d  %s\n",
			run.ID, run.Split, run.StartedAt.Format(time.RFC3339), run.Status,
			run.Rows, run.Columns, run.Error)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
