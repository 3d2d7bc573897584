// Package dataprocessing turns raw participant-wise open interest files into
// canonical snapshots and derives positioning metrics from them.
//
// The package has three layers, matching the flow of the pipeline:
//
//   - parser.go loads one raw CSV file into a domain.Snapshot, tolerating the
//     column-set drift between report eras.
//   - window.go walks the trading calendar backward to assemble the most
//     recent N loadable snapshots, skipping dates that fail to fetch or parse.
//   - analytics.go computes sentiment, delta, and activity metrics from one
//     or two snapshots, plus the multi-day sentiment trend series.
//
// All metric computations are pure functions over immutable snapshots; the
// engine never writes derived values back onto a Snapshot.
package dataprocessing
