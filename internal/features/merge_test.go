package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"creditprep/internal/errors"
	"creditprep/internal/table"
)

func applicationFixture(t *testing.T, clientIDs ...float64) *table.Table {
	t.Helper()
	app := table.New("application_train.csv", len(clientIDs))
	require.NoError(t, app.AddNumeric("SK_ID_CURR", clientIDs))
	target := make([]float64, len(clientIDs))
	require.NoError(t, app.AddNumeric("TARGET", target))
	return app
}

func TestMergeFeatures_PreservesRowsAndFillsMissing(t *testing.T) {
	app := applicationFixture(t, 1, 2, 3)

	bureau := newFeatureTable("bureau", []string{"DEBT_CREDIT_RATIO"})
	bureau.rows[1] = []float64{0.125}
	bureau.rows[3] = []float64{0.5}

	prev := newFeatureTable("previous applications", []string{"PREV_CREDIT_TO_APPLICATION_RATIO"})
	prev.rows[2] = []float64{0.9}
	prev.rows[7] = []float64{0.1} // not an applicant; the left join drops it

	merged, err := MergeFeatures(app, bureau, prev)
	require.NoError(t, err)

	assert.Equal(t, 3, merged.Rows())
	assert.Equal(t, []string{
		"SK_ID_CURR", "TARGET",
		"DEBT_CREDIT_RATIO",
		"PREV_CREDIT_TO_APPLICATION_RATIO",
	}, merged.ColumnNames())

	ratio, err := merged.Numeric("DEBT_CREDIT_RATIO")
	require.NoError(t, err)
	assert.InDelta(t, 0.125, ratio[0], 1e-12)
	assert.True(t, math.IsNaN(ratio[1]), "client 2 has no bureau features")
	assert.InDelta(t, 0.5, ratio[2], 1e-12)

	prevRatio, err := merged.Numeric("PREV_CREDIT_TO_APPLICATION_RATIO")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(prevRatio[0]))
	assert.InDelta(t, 0.9, prevRatio[1], 1e-12)
	assert.True(t, math.IsNaN(prevRatio[2]))
}

func TestMergeFeatures_EmptyFeatureTable(t *testing.T) {
	app := applicationFixture(t, 1, 2)

	installments := newFeatureTable("installments", []string{"INSTALL_AMT_PAYMENT_SUM"})

	merged, err := MergeFeatures(app, installments)
	require.NoError(t, err)

	assert.Equal(t, 2, merged.Rows())
	sums, err := merged.Numeric("INSTALL_AMT_PAYMENT_SUM")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(sums[0]))
	assert.True(t, math.IsNaN(sums[1]))
}

func TestMergeFeatures_MissingKeyColumn(t *testing.T) {
	app := table.New("application_train.csv", 1)
	require.NoError(t, app.AddNumeric("TARGET", []float64{0}))

	_, err := MergeFeatures(app, newFeatureTable("bureau", nil))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeSchema))
}

func TestFeatureTableFromTable(t *testing.T) {
	tbl := table.New("extra_features.csv", 2)
	require.NoError(t, tbl.AddNumeric("SK_ID_CURR", []float64{1, 2}))
	require.NoError(t, tbl.AddNumeric("EXT_SCORE", []float64{0.4, 0.7}))

	ft, err := FeatureTableFromTable(tbl, "SK_ID_CURR")
	require.NoError(t, err)

	assert.Equal(t, []string{"EXT_SCORE"}, ft.Columns())
	assert.Equal(t, 2, ft.Clients())
	assert.InDelta(t, 0.7, feature(t, ft, 2, "EXT_SCORE"), 1e-12)
}

func TestFeatureTableFromTable_DuplicateKey(t *testing.T) {
	tbl := table.New("extra_features.csv", 3)
	require.NoError(t, tbl.AddNumeric("SK_ID_CURR", []float64{1, 2, 1}))
	require.NoError(t, tbl.AddNumeric("EXT_SCORE", []float64{0.4, 0.7, 0.9}))

	// A duplicate key must be rejected here, before the table can reach a
	// left join and silently multiply application rows there.
	_, err := FeatureTableFromTable(tbl, "SK_ID_CURR")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeDuplicateKey))
	assert.Contains(t, err.Error(), "client 1 appears in 2 rows")
}

func TestFeatureTableFromTable_RejectsTextColumns(t *testing.T) {
	tbl := table.New("extra_features.csv", 1)
	require.NoError(t, tbl.AddNumeric("SK_ID_CURR", []float64{1}))
	require.NoError(t, tbl.AddText("GRADE", []string{"A"}))

	_, err := FeatureTableFromTable(tbl, "SK_ID_CURR")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeSchema))
}

func TestMergeFeatures_AdmitsConvertedTable(t *testing.T) {
	app := applicationFixture(t, 1, 2)

	tbl := table.New("extra_features.csv", 1)
	require.NoError(t, tbl.AddNumeric("SK_ID_CURR", []float64{2}))
	require.NoError(t, tbl.AddNumeric("EXT_SCORE", []float64{0.7}))
	ft, err := FeatureTableFromTable(tbl, "SK_ID_CURR")
	require.NoError(t, err)

	merged, err := MergeFeatures(app, ft)
	require.NoError(t, err)

	scores, err := merged.Numeric("EXT_SCORE")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(scores[0]))
	assert.InDelta(t, 0.7, scores[1], 1e-12)
}
