// Package dataset wires the loading, aggregation, merging and cleaning
// stages into a single pipeline run.
//
// A Preparer produces one flat table per call from a directory of input
// files: the primary application table for the chosen split plus the
// bureau, bureau balance, previous application and installment tables.
// The three aggregators run concurrently; their outputs are merged onto
// the application table in a fixed order so the output column layout
// never depends on scheduling. The whole run is in memory and either
// returns a complete table or an error, never a partial result.
package dataset
