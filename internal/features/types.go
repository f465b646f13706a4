package features

import (
	"sort"

	"creditprep/internal/errors"
	"creditprep/internal/table"
)

// Key column names shared across the input tables.
const (
	// ClientIDColumn keys every aggregation and the primary table.
	ClientIDColumn = "SK_ID_CURR"
	// BureauIDColumn links bureau balance history to bureau records.
	BureauIDColumn = "SK_ID_BUREAU"
	// PreviousIDColumn identifies one prior application.
	PreviousIDColumn = "SK_ID_PREV"
)

// BureauRecord is one external credit-bureau entry for a client: a loan or
// credit line reported by a third party. A client commonly has many.
type BureauRecord struct {
	ClientID   int64
	BureauID   int64
	Credit     float64 // reported credit amount, NaN when unreported
	Debt       float64 // current debt on that credit, NaN when unreported
	DaysCredit float64 // days since the credit was opened (negative)
}

// BureauBalanceRecord is one month of status history for a bureau record.
// It reaches a client only transitively, through the bureau record.
type BureauBalanceRecord struct {
	BureauID      int64
	MonthsBalance float64 // month index relative to application (negative)
	Status        string  // categorical status code, "" when unreported
}

// PreviousApplication is one prior loan application by a client.
type PreviousApplication struct {
	ClientID     int64
	PreviousID   int64
	Application  float64 // requested amount
	Credit       float64 // approved amount
	DownPayment  float64
	Annuity      float64
	PaymentCount float64
	DaysDecision float64
}

// Installment is one scheduled installment payment for a client's prior
// credit, with the scheduled and actual day and amount.
type Installment struct {
	ClientID        int64
	DaysScheduled   float64 // scheduled installment day
	DaysPaid        float64 // actual payment day, NaN when never paid
	AmountScheduled float64
	AmountPaid      float64 // NaN when never paid
}

// FeatureTable is the keyed output of one aggregator: one row of derived
// numeric features per client. The map representation makes key uniqueness
// structural. A FeatureTable cannot hold two rows for one client, which
// is exactly the precondition the merge's left joins rely on to keep the
// primary table's row count intact.
type FeatureTable struct {
	name    string
	columns []string
	rows    map[int64][]float64
}

func newFeatureTable(name string, columns []string) *FeatureTable {
	return &FeatureTable{
		name:    name,
		columns: columns,
		rows:    make(map[int64][]float64),
	}
}

// Name identifies the producing aggregator in logs and errors.
func (ft *FeatureTable) Name() string { return ft.name }

// Columns returns the feature column names in output order.
func (ft *FeatureTable) Columns() []string { return ft.columns }

// Clients returns the number of distinct clients in the table.
func (ft *FeatureTable) Clients() int { return len(ft.rows) }

// Lookup returns a client's feature vector, positionally aligned with
// Columns, and whether the client is present.
func (ft *FeatureTable) Lookup(clientID int64) ([]float64, bool) {
	values, ok := ft.rows[clientID]
	return values, ok
}

// ClientIDs returns every client identifier in ascending order.
func (ft *FeatureTable) ClientIDs() []int64 {
	ids := make([]int64, 0, len(ft.rows))
	for id := range ft.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// FeatureTableFromTable converts a generic table into a FeatureTable keyed
// by keyColumn. Every column other than the key must be numeric. A client
// appearing in more than one row fails with a DUPLICATE_KEY error before
// the table can reach a join and multiply rows there.
func FeatureTableFromTable(t *table.Table, keyColumn string) (*FeatureTable, error) {
	keys, err := t.Ints(keyColumn)
	if err != nil {
		return nil, err
	}

	var names []string
	var values [][]float64
	for _, col := range t.Columns() {
		if col.Name == keyColumn {
			continue
		}
		if col.Kind != table.Numeric {
			return nil, errors.NewSchemaError(t.Name(), col.Name, "is not numeric")
		}
		names = append(names, col.Name)
		values = append(values, col.Floats)
	}

	ft := newFeatureTable(t.Name(), names)
	for i, key := range keys {
		if _, dup := ft.rows[key]; dup {
			occurrences := 0
			for _, k := range keys {
				if k == key {
					occurrences++
				}
			}
			return nil, errors.NewDuplicateKeyError(t.Name(), key, occurrences)
		}
		vec := make([]float64, len(names))
		for j := range names {
			vec[j] = values[j][i]
		}
		ft.rows[key] = vec
	}
	return ft, nil
}
