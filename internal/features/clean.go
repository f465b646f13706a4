package features

import (
	"context"
	"log/slog"
	"math"

	"creditprep/internal/table"
)

// Cleaner finalizes the merged table: missing numeric cells are imputed
// with the column median and two-value categorical columns are encoded as
// integers. Running it again on its own output changes nothing.
type Cleaner struct {
	logger *slog.Logger
}

// NewCleaner creates a cleaner. A nil logger falls back to slog.Default().
func NewCleaner(logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{logger: logger}
}

// Clean mutates t in place. For every numeric column, missing cells take
// the median of the column's own present values; the table is its own
// imputation reference, nothing external leaks in. For every text column
// with exactly two distinct observed values, cells are replaced by codes 0
// and 1 in first-seen order, with missing cells coded -1. Text columns of
// any other cardinality are left untouched. No rows are added or removed.
func (c *Cleaner) Clean(ctx context.Context, t *table.Table) error {
	imputedColumns := 0
	imputedCells := 0
	encodedColumns := 0

	for _, col := range t.Columns() {
		switch col.Kind {
		case table.Numeric:
			if n := imputeMedian(col); n > 0 {
				imputedColumns++
				imputedCells += n
			}
		case table.Text:
			encoded, err := encodeBinary(t, col)
			if err != nil {
				return err
			}
			if encoded {
				encodedColumns++
			}
		}
	}

	c.logger.InfoContext(ctx, "cleaned merged table",
		slog.Int("rows", t.Rows()),
		slog.Int("imputed_columns", imputedColumns),
		slog.Int("imputed_cells", imputedCells),
		slog.Int("encoded_columns", encodedColumns))
	return nil
}

// imputeMedian fills missing cells with the column median and returns how
// many cells changed. A column with no present values has no median and
// stays missing.
func imputeMedian(col *table.Column) int {
	median := calculateMedian(col.Floats)
	if math.IsNaN(median) {
		return 0
	}
	filled := 0
	for i, v := range col.Floats {
		if math.IsNaN(v) {
			col.Floats[i] = median
			filled++
		}
	}
	return filled
}

// encodeBinary replaces a two-value categorical column with integer codes
// assigned in first-seen order. Missing cells code to -1, keeping them
// distinguishable after the column turns numeric.
func encodeBinary(t *table.Table, col *table.Column) (bool, error) {
	var first, second string
	tooMany := false
	for _, s := range col.Texts {
		if s == "" || s == first || s == second {
			continue
		}
		switch {
		case first == "":
			first = s
		case second == "":
			second = s
		default:
			tooMany = true
		}
		if tooMany {
			break
		}
	}
	if tooMany || second == "" {
		return false, nil
	}

	codes := make([]float64, len(col.Texts))
	for i, s := range col.Texts {
		switch s {
		case "":
			codes[i] = -1
		case first:
			codes[i] = 0
		default:
			codes[i] = 1
		}
	}
	return true, t.ReplaceNumeric(col.Name, codes)
}
