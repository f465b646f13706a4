package features

import (
	"fmt"
	"log/slog"
	"math"

	"creditprep/internal/table"
)

// MergeFeatures left-joins each feature table onto the application table
// in the order given, keyed by the client identifier column. The
// application table is extended in place and returned.
//
// Row identity is preserved: the output has exactly the input's rows,
// clients absent from a feature table get missing values in its columns,
// and because FeatureTable keys are structurally unique no join can
// multiply rows. Join order only affects column order, which the fixed
// argument order keeps deterministic.
func MergeFeatures(app *table.Table, tables ...*FeatureTable) (*table.Table, error) {
	clientIDs, err := app.Ints(ClientIDColumn)
	if err != nil {
		return nil, err
	}

	for _, ft := range tables {
		matched := 0
		for _, id := range clientIDs {
			if _, ok := ft.Lookup(id); ok {
				matched++
			}
		}

		for j, name := range ft.Columns() {
			column := make([]float64, len(clientIDs))
			for i, id := range clientIDs {
				if vec, ok := ft.Lookup(id); ok {
					column[i] = vec[j]
				} else {
					column[i] = math.NaN()
				}
			}
			if err := app.AddNumeric(name, column); err != nil {
				return nil, fmt.Errorf("merging %s features: %w", ft.Name(), err)
			}
		}

		slog.Debug("merged feature table",
			slog.String("features", ft.Name()),
			slog.Int("columns", len(ft.Columns())),
			slog.Int("matched_rows", matched),
			slog.Int("total_rows", len(clientIDs)))
	}
	return app, nil
}
