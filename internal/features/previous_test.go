package features

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"creditprep/internal/errors"
	"creditprep/internal/shared/testutil"
	"creditprep/internal/table"
)

func TestPreviousAggregator_Summaries(t *testing.T) {
	agg := NewPreviousAggregator(testutil.DiscardLogger())

	records := []PreviousApplication{
		{ClientID: 1, PreviousID: 100, Application: 200, Credit: 180, DownPayment: 20, Annuity: 10, PaymentCount: 12, DaysDecision: -300},
		{ClientID: 2, PreviousID: 101, Application: 1000, Credit: 800, DownPayment: math.NaN(), Annuity: 40, PaymentCount: 24, DaysDecision: -100},
		{ClientID: 2, PreviousID: 102, Application: 500, Credit: 400, DownPayment: 50, Annuity: 60, PaymentCount: 36, DaysDecision: -500},
	}

	ft := agg.AggregateRecords(context.Background(), records)

	require.Equal(t, 2, ft.Clients())
	assert.Equal(t, []string{
		"PREV_AMT_APPLICATION_MEAN", "PREV_AMT_APPLICATION_SUM",
		"PREV_AMT_CREDIT_MEAN", "PREV_AMT_CREDIT_SUM",
		"PREV_AMT_DOWN_PAYMENT_MEAN", "PREV_AMT_ANNUITY_MEAN",
		"PREV_CNT_PAYMENT_MEAN", "PREV_DAYS_DECISION_MEAN",
		"PREV_SK_ID_PREV_COUNT",
		"PREV_CREDIT_TO_APPLICATION_RATIO",
	}, ft.Columns())

	assert.InDelta(t, 200, feature(t, ft, 1, "PREV_AMT_APPLICATION_MEAN"), 1e-12)
	assert.InDelta(t, 0.9, feature(t, ft, 1, "PREV_CREDIT_TO_APPLICATION_RATIO"), 1e-12)
	assert.Equal(t, 1.0, feature(t, ft, 1, "PREV_SK_ID_PREV_COUNT"))

	assert.InDelta(t, 750, feature(t, ft, 2, "PREV_AMT_APPLICATION_MEAN"), 1e-12)
	assert.InDelta(t, 1500, feature(t, ft, 2, "PREV_AMT_APPLICATION_SUM"), 1e-12)
	assert.InDelta(t, 1200, feature(t, ft, 2, "PREV_AMT_CREDIT_SUM"), 1e-12)
	assert.InDelta(t, 50, feature(t, ft, 2, "PREV_AMT_DOWN_PAYMENT_MEAN"), 1e-12, "unreported down payment is skipped, not zeroed")
	assert.InDelta(t, 0.8, feature(t, ft, 2, "PREV_CREDIT_TO_APPLICATION_RATIO"), 1e-12)
	assert.Equal(t, 2.0, feature(t, ft, 2, "PREV_SK_ID_PREV_COUNT"))
}

func TestPreviousAggregator_RatioMissingOnZeroApplication(t *testing.T) {
	tests := []struct {
		name    string
		records []PreviousApplication
	}{
		{
			name: "zero requested amount",
			records: []PreviousApplication{
				{ClientID: 1, PreviousID: 100, Application: 0, Credit: 500},
			},
		},
		{
			name: "unreported requested amounts",
			records: []PreviousApplication{
				{ClientID: 1, PreviousID: 100, Application: math.NaN(), Credit: 500},
			},
		},
		{
			name: "zero requested and zero approved",
			records: []PreviousApplication{
				{ClientID: 1, PreviousID: 100, Application: 0, Credit: 0},
			},
		},
	}

	agg := NewPreviousAggregator(testutil.DiscardLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft := agg.AggregateRecords(context.Background(), tt.records)

			// A zero summed request amount means the data is unreported,
			// so the ratio stays missing rather than taking a fallback.
			ratio := feature(t, ft, 1, "PREV_CREDIT_TO_APPLICATION_RATIO")
			assert.True(t, math.IsNaN(ratio), "expected missing, got %v", ratio)
		})
	}
}

func TestPreviousAggregator_Aggregate_FromTable(t *testing.T) {
	prev := table.New("previous_application.csv", 1)
	require.NoError(t, prev.AddNumeric("SK_ID_CURR", []float64{1}))
	require.NoError(t, prev.AddNumeric("SK_ID_PREV", []float64{100}))
	require.NoError(t, prev.AddNumeric("AMT_APPLICATION", []float64{200}))
	require.NoError(t, prev.AddNumeric("AMT_CREDIT", []float64{180}))
	require.NoError(t, prev.AddNumeric("AMT_DOWN_PAYMENT", []float64{20}))
	require.NoError(t, prev.AddNumeric("AMT_ANNUITY", []float64{10}))
	require.NoError(t, prev.AddNumeric("CNT_PAYMENT", []float64{12}))
	require.NoError(t, prev.AddNumeric("DAYS_DECISION", []float64{-300}))

	agg := NewPreviousAggregator(testutil.DiscardLogger())
	ft, err := agg.Aggregate(context.Background(), prev)
	require.NoError(t, err)

	assert.InDelta(t, 0.9, feature(t, ft, 1, "PREV_CREDIT_TO_APPLICATION_RATIO"), 1e-12)
}

func TestPreviousAggregator_Aggregate_SchemaError(t *testing.T) {
	prev := table.New("previous_application.csv", 1)
	require.NoError(t, prev.AddNumeric("SK_ID_CURR", []float64{1}))
	require.NoError(t, prev.AddNumeric("SK_ID_PREV", []float64{100}))
	require.NoError(t, prev.AddNumeric("AMT_APPLICATION", []float64{200}))
	// AMT_CREDIT is absent.

	agg := NewPreviousAggregator(testutil.DiscardLogger())
	_, err := agg.Aggregate(context.Background(), prev)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeSchema))
	assert.Contains(t, err.Error(), "AMT_CREDIT")
}
