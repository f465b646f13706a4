package features

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"creditprep/internal/table"
)

// InstallmentsAggregator condenses historical installment payment behavior
// into per-client summary features, prefixed INSTALL_.
type InstallmentsAggregator struct {
	logger *slog.Logger
}

// NewInstallmentsAggregator creates an installment aggregator. A nil
// logger falls back to slog.Default().
func NewInstallmentsAggregator(logger *slog.Logger) *InstallmentsAggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &InstallmentsAggregator{logger: logger}
}

// Aggregate extracts typed records from the installment-payments table and
// aggregates them.
func (a *InstallmentsAggregator) Aggregate(ctx context.Context, installments *table.Table) (*FeatureTable, error) {
	records, err := installmentRecords(installments)
	if err != nil {
		return nil, fmt.Errorf("extracting installment records: %w", err)
	}
	return a.AggregateRecords(ctx, records), nil
}

// AggregateRecords derives per-row payment behavior and reduces it to one
// feature row per client.
func (a *InstallmentsAggregator) AggregateRecords(ctx context.Context, records []Installment) *FeatureTable {
	type group struct {
		delay, ratio []float64
		missed, paid []float64
	}
	groups := make(map[int64]*group)
	for _, r := range records {
		g := groups[r.ClientID]
		if g == nil {
			g = &group{}
			groups[r.ClientID] = g
		}

		// PAYMENT_DELAY: positive means late. Missing on either side
		// propagates to missing.
		g.delay = append(g.delay, r.DaysPaid-r.DaysScheduled)

		// PAYMENT_RATIO maps a zero scheduled amount (±Inf) to missing.
		// Negative ratios from refunds or adjustments are kept as-is.
		ratio := r.AmountPaid / r.AmountScheduled
		if math.IsInf(ratio, 0) {
			ratio = math.NaN()
		}
		g.ratio = append(g.ratio, ratio)

		// MISSED_PAYMENT: never paid, or paid exactly zero. Negative
		// amounts are payments, not misses.
		missed := 0.0
		if math.IsNaN(r.AmountPaid) || r.AmountPaid == 0 {
			missed = 1
		}
		g.missed = append(g.missed, missed)
		g.paid = append(g.paid, r.AmountPaid)
	}

	columns := []string{
		"INSTALL_PAYMENT_DELAY_MEAN", "INSTALL_PAYMENT_DELAY_MAX",
		"INSTALL_PAYMENT_RATIO_MEAN",
		"INSTALL_MISSED_PAYMENT_SUM",
		"INSTALL_AMT_PAYMENT_SUM",
	}

	ft := newFeatureTable("installments", columns)
	for clientID, g := range groups {
		ft.rows[clientID] = []float64{
			calculateMean(g.delay), calculateMax(g.delay),
			calculateMean(g.ratio),
			calculateSum(g.missed),
			calculateSum(g.paid),
		}
	}

	a.logger.InfoContext(ctx, "aggregated installment features",
		slog.Int("records", len(records)),
		slog.Int("clients", ft.Clients()))
	return ft
}

func installmentRecords(t *table.Table) ([]Installment, error) {
	clientIDs, err := t.Ints(ClientIDColumn)
	if err != nil {
		return nil, err
	}
	daysScheduled, err := t.Numeric("DAYS_INSTALMENT")
	if err != nil {
		return nil, err
	}
	daysPaid, err := t.Numeric("DAYS_ENTRY_PAYMENT")
	if err != nil {
		return nil, err
	}
	amountScheduled, err := t.Numeric("AMT_INSTALMENT")
	if err != nil {
		return nil, err
	}
	amountPaid, err := t.Numeric("AMT_PAYMENT")
	if err != nil {
		return nil, err
	}

	records := make([]Installment, t.Rows())
	for i := range records {
		records[i] = Installment{
			ClientID:        clientIDs[i],
			DaysScheduled:   daysScheduled[i],
			DaysPaid:        daysPaid[i],
			AmountScheduled: amountScheduled[i],
			AmountPaid:      amountPaid[i],
		}
	}
	return records, nil
}
