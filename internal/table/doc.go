// Package table provides the in-memory tabular model shared by every
// pipeline stage: ordered named columns, a fixed numeric-or-text kind per
// column, and explicit missing-cell semantics (NaN for numeric cells,
// empty string for text cells).
//
// Tables are loaded wholesale from CSV files (with an .xlsx sibling
// fallback for analyst-delivered workbooks) and written back as CSV.
// Column access is typed and fail-fast: asking for an absent or
// wrongly-typed column returns a SCHEMA error naming the table and
// column, so malformed inputs surface at load time rather than somewhere
// in the middle of an aggregation.
package table
