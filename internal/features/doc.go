// Package features holds the feature-engineering core: per-client
// aggregation of the auxiliary credit tables, the left-join merge onto the
// application table, and the final cleaning pass.
//
// # Components
//
// Three aggregators reduce the auxiliary tables to one FeatureTable each:
//
//  1. BureauAggregator: external bureau records plus their monthly status
//     history (joined through the bureau-record identifier)
//  2. PreviousAggregator: the client's prior loan applications
//  3. InstallmentsAggregator: historical installment payment behavior
//
// MergeFeatures then left-joins the feature tables onto the application
// table without disturbing its row count, and Cleaner imputes missing
// numeric cells with column medians and encodes two-value categoricals.
//
// # Edge-case policies
//
// The two ratio features resolve a zero denominator differently, and the
// difference is deliberate:
//
//   - DEBT_CREDIT_RATIO: zero summed credit yields 0. No exposure is a
//     real state, not an unknown.
//   - PREV_CREDIT_TO_APPLICATION_RATIO: zero summed request amount yields
//     a missing value. Here a zero total signals unreported data.
//
// Each policy lives inline at its derivation; there is intentionally no
// shared fallback helper that would flatten the distinction.
//
// # Key uniqueness
//
// FeatureTable is keyed by client identifier, so an aggregator cannot emit
// two rows for one client and the merge cannot multiply application rows.
// Tables arriving from outside the aggregators are admitted only through
// FeatureTableFromTable, which rejects duplicate keys.
package features
