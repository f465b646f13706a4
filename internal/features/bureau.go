package features

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"creditprep/internal/table"
)

// BureauAggregator condenses external credit-bureau records and their
// monthly status history into per-client summary features.
type BureauAggregator struct {
	logger *slog.Logger
}

// NewBureauAggregator creates a bureau aggregator. A nil logger falls back
// to slog.Default().
func NewBureauAggregator(logger *slog.Logger) *BureauAggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &BureauAggregator{logger: logger}
}

// Aggregate extracts typed records from the bureau and bureau-balance
// tables and aggregates them. Schema problems surface here, before any
// arithmetic starts.
func (a *BureauAggregator) Aggregate(ctx context.Context, bureau, balance *table.Table) (*FeatureTable, error) {
	records, err := bureauRecords(bureau)
	if err != nil {
		return nil, fmt.Errorf("extracting bureau records: %w", err)
	}
	history, err := bureauBalanceRecords(balance)
	if err != nil {
		return nil, fmt.Errorf("extracting bureau balance records: %w", err)
	}
	return a.AggregateRecords(ctx, records, history), nil
}

// AggregateRecords computes one feature row per client present in the
// bureau records. Clients with no bureau records are absent here; filling
// them with missing values is the merge's left join's job, not this
// aggregator's.
func (a *BureauAggregator) AggregateRecords(ctx context.Context, records []BureauRecord, history []BureauBalanceRecord) *FeatureTable {
	statuses := observedStatuses(history)
	perBureau := statusFractions(history, statuses)

	type group struct {
		credit, debt, days []float64
		months             []float64
		perStatus          [][]float64
	}
	groups := make(map[int64]*group)
	for _, r := range records {
		g := groups[r.ClientID]
		if g == nil {
			g = &group{perStatus: make([][]float64, len(statuses))}
			groups[r.ClientID] = g
		}
		g.credit = append(g.credit, r.Credit)
		g.debt = append(g.debt, r.Debt)
		g.days = append(g.days, r.DaysCredit)

		// Bureau records without balance history contribute nothing to the
		// status columns; the client-level mean runs over the records that
		// have history, and is missing when none do.
		if bh, ok := perBureau[r.BureauID]; ok {
			g.months = append(g.months, bh.monthsMean)
			for s := range statuses {
				g.perStatus[s] = append(g.perStatus[s], bh.fractions[s])
			}
		}
	}

	columns := []string{
		"AMT_CREDIT_SUM_mean", "AMT_CREDIT_SUM_sum",
		"AMT_CREDIT_SUM_DEBT_mean", "AMT_CREDIT_SUM_DEBT_sum",
		"DAYS_CREDIT_mean", "SK_ID_BUREAU_count",
		"DEBT_CREDIT_RATIO", "MONTHS_BALANCE",
	}
	for _, s := range statuses {
		columns = append(columns, "STATUS_"+s)
	}

	ft := newFeatureTable("bureau", columns)
	for clientID, g := range groups {
		creditSum := calculateSum(g.credit)
		debtSum := calculateSum(g.debt)

		// DEBT_CREDIT_RATIO falls back to 0 when the summed credit is
		// zero, whatever the debt: zero exposure is a real state here, not
		// an unknown.
		ratio := 0.0
		if creditSum != 0 {
			ratio = debtSum / creditSum
		}

		row := []float64{
			calculateMean(g.credit), creditSum,
			calculateMean(g.debt), debtSum,
			calculateMean(g.days), float64(len(g.credit)),
			ratio, calculateMean(g.months),
		}
		for s := range statuses {
			row = append(row, calculateMean(g.perStatus[s]))
		}
		ft.rows[clientID] = row
	}

	a.logger.InfoContext(ctx, "aggregated bureau features",
		slog.Int("records", len(records)),
		slog.Int("history_rows", len(history)),
		slog.Int("clients", ft.Clients()),
		slog.Int("statuses", len(statuses)))
	return ft
}

type bureauHistory struct {
	monthsMean float64
	fractions  []float64 // aligned with the observed status list
}

// observedStatuses returns the distinct non-missing status codes in
// lexicographic order, which fixes the status column order across runs.
func observedStatuses(history []BureauBalanceRecord) []string {
	seen := make(map[string]struct{})
	for _, h := range history {
		if h.Status != "" {
			seen[h.Status] = struct{}{}
		}
	}
	statuses := make([]string, 0, len(seen))
	for s := range seen {
		statuses = append(statuses, s)
	}
	sort.Strings(statuses)
	return statuses
}

// statusFractions reduces each bureau record's monthly history to the
// fraction of months spent in each status plus the mean month index.
// Months with a missing status count toward the denominator but toward no
// status.
func statusFractions(history []BureauBalanceRecord, statuses []string) map[int64]*bureauHistory {
	index := make(map[string]int, len(statuses))
	for i, s := range statuses {
		index[s] = i
	}

	type counts struct {
		months    []float64
		perStatus []int
		total     int
	}
	byBureau := make(map[int64]*counts)
	for _, h := range history {
		c := byBureau[h.BureauID]
		if c == nil {
			c = &counts{perStatus: make([]int, len(statuses))}
			byBureau[h.BureauID] = c
		}
		c.months = append(c.months, h.MonthsBalance)
		c.total++
		if i, ok := index[h.Status]; ok {
			c.perStatus[i]++
		}
	}

	result := make(map[int64]*bureauHistory, len(byBureau))
	for bureauID, c := range byBureau {
		fractions := make([]float64, len(statuses))
		for i, n := range c.perStatus {
			fractions[i] = float64(n) / float64(c.total)
		}
		result[bureauID] = &bureauHistory{
			monthsMean: calculateMean(c.months),
			fractions:  fractions,
		}
	}
	return result
}

func bureauRecords(t *table.Table) ([]BureauRecord, error) {
	clientIDs, err := t.Ints(ClientIDColumn)
	if err != nil {
		return nil, err
	}
	bureauIDs, err := t.Ints(BureauIDColumn)
	if err != nil {
		return nil, err
	}
	credit, err := t.Numeric("AMT_CREDIT_SUM")
	if err != nil {
		return nil, err
	}
	debt, err := t.Numeric("AMT_CREDIT_SUM_DEBT")
	if err != nil {
		return nil, err
	}
	days, err := t.Numeric("DAYS_CREDIT")
	if err != nil {
		return nil, err
	}

	records := make([]BureauRecord, t.Rows())
	for i := range records {
		records[i] = BureauRecord{
			ClientID:   clientIDs[i],
			BureauID:   bureauIDs[i],
			Credit:     credit[i],
			Debt:       debt[i],
			DaysCredit: days[i],
		}
	}
	return records, nil
}

func bureauBalanceRecords(t *table.Table) ([]BureauBalanceRecord, error) {
	bureauIDs, err := t.Ints(BureauIDColumn)
	if err != nil {
		return nil, err
	}
	months, err := t.Numeric("MONTHS_BALANCE")
	if err != nil {
		return nil, err
	}
	// STATUS codes are usually letters but an all-digit subset loads as a
	// numeric column; Cell renders both the same way.
	statusCol, err := t.Column("STATUS")
	if err != nil {
		return nil, err
	}

	records := make([]BureauBalanceRecord, t.Rows())
	for i := range records {
		records[i] = BureauBalanceRecord{
			BureauID:      bureauIDs[i],
			MonthsBalance: months[i],
			Status:        statusCol.Cell(i),
		}
	}
	return records, nil
}
