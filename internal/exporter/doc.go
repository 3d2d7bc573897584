// Package exporter writes positioning reports to files: the dashboard tables
// as CSV for downstream tooling, and the activity narrative as an xlsx
// workbook for manual review. Rendering stays out of the metrics engine; the
// exporter consumes the same Dashboard contract the HTTP layer does.
package exporter
