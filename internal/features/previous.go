package features

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"creditprep/internal/table"
)

// PreviousAggregator condenses a client's prior loan applications into
// per-client summary features. All output columns carry the PREV_ prefix
// so they cannot collide with another aggregator's namespace.
type PreviousAggregator struct {
	logger *slog.Logger
}

// NewPreviousAggregator creates a previous-application aggregator. A nil
// logger falls back to slog.Default().
func NewPreviousAggregator(logger *slog.Logger) *PreviousAggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &PreviousAggregator{logger: logger}
}

// Aggregate extracts typed records from the previous-application table and
// aggregates them.
func (a *PreviousAggregator) Aggregate(ctx context.Context, prev *table.Table) (*FeatureTable, error) {
	records, err := previousApplications(prev)
	if err != nil {
		return nil, fmt.Errorf("extracting previous applications: %w", err)
	}
	return a.AggregateRecords(ctx, records), nil
}

// AggregateRecords computes one feature row per client present in the
// records.
func (a *PreviousAggregator) AggregateRecords(ctx context.Context, records []PreviousApplication) *FeatureTable {
	type group struct {
		application, credit        []float64
		downPayment, annuity       []float64
		paymentCount, daysDecision []float64
	}
	groups := make(map[int64]*group)
	for _, r := range records {
		g := groups[r.ClientID]
		if g == nil {
			g = &group{}
			groups[r.ClientID] = g
		}
		g.application = append(g.application, r.Application)
		g.credit = append(g.credit, r.Credit)
		g.downPayment = append(g.downPayment, r.DownPayment)
		g.annuity = append(g.annuity, r.Annuity)
		g.paymentCount = append(g.paymentCount, r.PaymentCount)
		g.daysDecision = append(g.daysDecision, r.DaysDecision)
	}

	columns := []string{
		"PREV_AMT_APPLICATION_MEAN", "PREV_AMT_APPLICATION_SUM",
		"PREV_AMT_CREDIT_MEAN", "PREV_AMT_CREDIT_SUM",
		"PREV_AMT_DOWN_PAYMENT_MEAN", "PREV_AMT_ANNUITY_MEAN",
		"PREV_CNT_PAYMENT_MEAN", "PREV_DAYS_DECISION_MEAN",
		"PREV_SK_ID_PREV_COUNT",
		"PREV_CREDIT_TO_APPLICATION_RATIO",
	}

	ft := newFeatureTable("previous applications", columns)
	for clientID, g := range groups {
		applicationSum := calculateSum(g.application)
		creditSum := calculateSum(g.credit)

		// PREV_CREDIT_TO_APPLICATION_RATIO leaves the zero-denominator
		// case missing: a zero summed request amount signals unreported
		// data, so no numeric fallback is invented for it. This is the
		// opposite resolution from DEBT_CREDIT_RATIO, on purpose.
		ratio := math.NaN()
		if applicationSum != 0 {
			ratio = creditSum / applicationSum
		}

		ft.rows[clientID] = []float64{
			calculateMean(g.application), applicationSum,
			calculateMean(g.credit), creditSum,
			calculateMean(g.downPayment), calculateMean(g.annuity),
			calculateMean(g.paymentCount), calculateMean(g.daysDecision),
			float64(len(g.application)),
			ratio,
		}
	}

	a.logger.InfoContext(ctx, "aggregated previous-application features",
		slog.Int("records", len(records)),
		slog.Int("clients", ft.Clients()))
	return ft
}

func previousApplications(t *table.Table) ([]PreviousApplication, error) {
	clientIDs, err := t.Ints(ClientIDColumn)
	if err != nil {
		return nil, err
	}
	previousIDs, err := t.Ints(PreviousIDColumn)
	if err != nil {
		return nil, err
	}

	numeric := map[string][]float64{}
	for _, name := range []string{
		"AMT_APPLICATION", "AMT_CREDIT", "AMT_DOWN_PAYMENT",
		"AMT_ANNUITY", "CNT_PAYMENT", "DAYS_DECISION",
	} {
		values, err := t.Numeric(name)
		if err != nil {
			return nil, err
		}
		numeric[name] = values
	}

	records := make([]PreviousApplication, t.Rows())
	for i := range records {
		records[i] = PreviousApplication{
			ClientID:     clientIDs[i],
			PreviousID:   previousIDs[i],
			Application:  numeric["AMT_APPLICATION"][i],
			Credit:       numeric["AMT_CREDIT"][i],
			DownPayment:  numeric["AMT_DOWN_PAYMENT"][i],
			Annuity:      numeric["AMT_ANNUITY"][i],
			PaymentCount: numeric["CNT_PAYMENT"][i],
			DaysDecision: numeric["DAYS_DECISION"][i],
		}
	}
	return records, nil
}
