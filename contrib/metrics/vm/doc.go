// Package vm provides a VictoriaMetrics-based implementation of the MetricsCollector interface.
//
// This package uses github.com/VictoriaMetrics/metrics for lightweight,
// Prometheus-compatible metrics collection.
//
// # Basic Usage
//
// Create a collector with default prefix "quill":
//
//	collector := vm.New()
//	session, _ := quill.NewSession(v1.WrapSession(gocqlSession),
//	    quill.WithMetrics(collector),
//	)
//
// # Custom Prefix
//
// Use WithPrefix to customize the metric name prefix:
//
//	collector := vm.New(vm.WithPrefix("myapp"))
//
// This produces metrics like:
//   - myapp_execute_total{kind="select"}
//   - myapp_execute_duration_seconds{kind="alter_table_drop"}
//
// # Exposing Metrics
//
// Use the Handler method to expose metrics via HTTP:
//
//	http.HandleFunc("/metrics", collector.Handler)
//	http.ListenAndServe(":8080", nil)
//
// Or use WritePrometheus to write metrics to a custom writer:
//
//	collector.WritePrometheus(w)
//
// # Metrics Provided
//
// Execution:
//   - {prefix}_execute_total{kind} - Counter of executed statements
//   - {prefix}_execute_errors_total{kind} - Counter of failed statements
//   - {prefix}_execute_duration_seconds{kind} - Histogram of round trip latencies
//   - {prefix}_build_errors_total{kind} - Counter of locally rejected requests
//
// Paging:
//   - {prefix}_continuation_total{kind} - Counter of executions resuming from a paging state
//   - {prefix}_page_rows - Histogram of rows per page
//   - {prefix}_paging_exhausted_total - Counter of results without a paging state
//
// Tracing:
//   - {prefix}_traced_total - Counter of executions that requested a trace
//   - {prefix}_trace_fetch_total - Counter of trace fetches
//   - {prefix}_trace_fetch_errors_total - Counter of failed trace fetches
//   - {prefix}_trace_fetch_attempts - Histogram of polls per trace fetch
//
// Journal:
//   - {prefix}_journal_recorded_total - Counter of recorded statements
//   - {prefix}_journal_errors_total - Counter of failed records
//
// # Performance Notes
//
// Series for the built-in statement kinds are pre-created at initialization
// using the NewXXX pattern, so the hot path does no registry lookups.
package vm
