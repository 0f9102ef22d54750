// Package metrics provides internal metrics utilities for quill.
package metrics

import "github.com/arloliu/quill/types"

// NopMetrics is a no-op metrics collector that discards all metrics.
//
// This is used as the default metrics collector when no collector is configured,
// avoiding nil checks throughout the codebase.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements types.MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNopMetrics creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A collector that discards all metrics
func NewNopMetrics() *NopMetrics {
	return &NopMetrics{}
}

// ----------------------
// Execution
// ----------------------

// IncExecuteTotal discards the metric.
func (m *NopMetrics) IncExecuteTotal(_ types.StatementKind) {}

// IncExecuteError discards the metric.
func (m *NopMetrics) IncExecuteError(_ types.StatementKind) {}

// ObserveExecuteDuration discards the metric.
func (m *NopMetrics) ObserveExecuteDuration(_ types.StatementKind, _ float64) {}

// IncBuildError discards the metric.
func (m *NopMetrics) IncBuildError(_ types.StatementKind) {}

// ----------------------
// Paging
// ----------------------

// IncContinuationTotal discards the metric.
func (m *NopMetrics) IncContinuationTotal(_ types.StatementKind) {}

// ObservePageRows discards the metric.
func (m *NopMetrics) ObservePageRows(_ int) {}

// IncPagingExhausted discards the metric.
func (m *NopMetrics) IncPagingExhausted() {}

// ----------------------
// Tracing
// ----------------------

// IncTracedTotal discards the metric.
func (m *NopMetrics) IncTracedTotal() {}

// IncTraceFetchTotal discards the metric.
func (m *NopMetrics) IncTraceFetchTotal() {}

// IncTraceFetchError discards the metric.
func (m *NopMetrics) IncTraceFetchError() {}

// ObserveTraceFetchAttempts discards the metric.
func (m *NopMetrics) ObserveTraceFetchAttempts(_ int) {}

// ----------------------
// Journal
// ----------------------

// IncJournalRecorded discards the metric.
func (m *NopMetrics) IncJournalRecorded() {}

// IncJournalError discards the metric.
func (m *NopMetrics) IncJournalError() {}
