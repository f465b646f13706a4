package dataset

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"creditprep/internal/features"
	"creditprep/internal/table"
)

// Input file names expected under the base directory.
const (
	TrainFile         = "application_train.csv"
	TestFile          = "application_test.csv"
	BureauFile        = "bureau.csv"
	BureauBalanceFile = "bureau_balance.csv"
	PreviousFile      = "previous_application.csv"
	InstallmentsFile  = "installments_payments.csv"
)

// Split selects which primary application file a run prepares. Aggregation
// is identical for both splits; only the primary file differs.
type Split string

const (
	Train Split = "train"
	Test  Split = "test"
)

// ParseSplit converts a flag value into a Split.
func ParseSplit(s string) (Split, error) {
	switch Split(s) {
	case Train, Test:
		return Split(s), nil
	}
	return "", fmt.Errorf("unknown split %q (want %q or %q)", s, Train, Test)
}

func (s Split) primaryFile() (string, error) {
	switch s {
	case Train:
		return TrainFile, nil
	case Test:
		return TestFile, nil
	}
	return "", fmt.Errorf("unknown split %q", s)
}

// Config configures a Preparer.
type Config struct {
	// BaseDir is the directory holding the input tables.
	BaseDir string
	// ExtraFeatureFiles lists optional additional feature tables, each a
	// file under BaseDir keyed uniquely by client identifier, left-joined
	// after the built-in aggregators in the order given.
	ExtraFeatureFiles []string
}

// Preparer orchestrates one full pipeline run per call: load the input
// tables, aggregate, merge, clean. All feature policy lives in the
// aggregators and the cleaner; nothing here decides anything beyond
// sequencing.
type Preparer struct {
	logger       *slog.Logger
	config       Config
	bureau       *features.BureauAggregator
	previous     *features.PreviousAggregator
	installments *features.InstallmentsAggregator
	cleaner      *features.Cleaner
}

// NewPreparer creates a preparer. A nil logger falls back to slog.Default().
func NewPreparer(logger *slog.Logger, config Config) *Preparer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Preparer{
		logger:       logger,
		config:       config,
		bureau:       features.NewBureauAggregator(logger),
		previous:     features.NewPreviousAggregator(logger),
		installments: features.NewInstallmentsAggregator(logger),
		cleaner:      features.NewCleaner(logger),
	}
}

// Prepare runs the pipeline for one split and returns the cleaned flat
// table: one row per application record, the client identifier kept as an
// ordinary column. Any error aborts the run; there is no partial output.
func (p *Preparer) Prepare(ctx context.Context, split Split) (*table.Table, error) {
	primaryFile, err := split.primaryFile()
	if err != nil {
		return nil, err
	}

	p.logger.InfoContext(ctx, "preparing dataset",
		slog.String("split", string(split)),
		slog.String("dir", p.config.BaseDir))

	app, err := table.Load(p.config.BaseDir, primaryFile)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", primaryFile, err)
	}

	// The three aggregators have no data dependency on each other, so
	// they run concurrently. Each lands in its own slot and the merge
	// order below stays fixed no matter which finishes first.
	var bureauFeatures, previousFeatures, installmentFeatures *features.FeatureTable
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		bureau, err := table.Load(p.config.BaseDir, BureauFile)
		if err != nil {
			return fmt.Errorf("loading %s: %w", BureauFile, err)
		}
		balance, err := table.Load(p.config.BaseDir, BureauBalanceFile)
		if err != nil {
			return fmt.Errorf("loading %s: %w", BureauBalanceFile, err)
		}
		bureauFeatures, err = p.bureau.Aggregate(gctx, bureau, balance)
		return err
	})
	g.Go(func() error {
		previous, err := table.Load(p.config.BaseDir, PreviousFile)
		if err != nil {
			return fmt.Errorf("loading %s: %w", PreviousFile, err)
		}
		previousFeatures, err = p.previous.Aggregate(gctx, previous)
		return err
	})
	g.Go(func() error {
		installments, err := table.Load(p.config.BaseDir, InstallmentsFile)
		if err != nil {
			return fmt.Errorf("loading %s: %w", InstallmentsFile, err)
		}
		installmentFeatures, err = p.installments.Aggregate(gctx, installments)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	featureTables := []*features.FeatureTable{bureauFeatures, previousFeatures, installmentFeatures}
	for _, file := range p.config.ExtraFeatureFiles {
		extra, err := p.loadExtraFeatures(file)
		if err != nil {
			return nil, err
		}
		featureTables = append(featureTables, extra)
	}

	merged, err := features.MergeFeatures(app, featureTables...)
	if err != nil {
		return nil, err
	}
	if err := p.cleaner.Clean(ctx, merged); err != nil {
		return nil, err
	}

	p.logger.InfoContext(ctx, "dataset prepared",
		slog.String("split", string(split)),
		slog.Int("rows", merged.Rows()),
		slog.Int("columns", len(merged.Columns())))
	return merged, nil
}

// loadExtraFeatures admits a caller-supplied feature file through the
// duplicate-key check before it may join the merge list.
func (p *Preparer) loadExtraFeatures(file string) (*features.FeatureTable, error) {
	extra, err := table.Load(p.config.BaseDir, file)
	if err != nil {
		return nil, fmt.Errorf("loading extra features %s: %w", file, err)
	}
	ft, err := features.FeatureTableFromTable(extra, features.ClientIDColumn)
	if err != nil {
		return nil, fmt.Errorf("converting extra features %s: %w", file, err)
	}
	return ft, nil
}
