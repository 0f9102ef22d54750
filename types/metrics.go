package types

// MetricsCollector defines methods for collecting operational metrics.
//
// Execution methods accept a StatementKind for labeling.
// Implementations should be thread-safe as methods may be called concurrently.
//
// Example usage with VictoriaMetrics (via contrib/metrics/vm):
//
//	import vmmetrics "github.com/arloliu/quill/contrib/metrics/vm"
//
//	collector := vmmetrics.New(vmmetrics.WithPrefix("myapp"))
//	session, _ := quill.NewSession(v1.WrapSession(gocqlSession),
//	    quill.WithMetrics(collector),
//	)
//
//	// Expose metrics via HTTP
//	http.HandleFunc("/metrics", collector.Handler)
type MetricsCollector interface {
	// ----------------------
	// Execution
	// ----------------------

	// IncExecuteTotal increments the executed statements counter.
	IncExecuteTotal(kind StatementKind)

	// IncExecuteError increments the failed statements counter.
	IncExecuteError(kind StatementKind)

	// ObserveExecuteDuration records a statement round trip in seconds.
	ObserveExecuteDuration(kind StatementKind, seconds float64)

	// IncBuildError increments the locally rejected requests counter.
	IncBuildError(kind StatementKind)

	// ----------------------
	// Paging
	// ----------------------

	// IncContinuationTotal increments the counter of executions that
	// carried a paging state.
	IncContinuationTotal(kind StatementKind)

	// ObservePageRows records the number of rows returned in one page.
	ObservePageRows(rows int)

	// IncPagingExhausted increments the counter of results that returned
	// no paging state.
	IncPagingExhausted()

	// ----------------------
	// Tracing
	// ----------------------

	// IncTracedTotal increments the counter of executions that requested
	// a trace.
	IncTracedTotal()

	// IncTraceFetchTotal increments the trace fetch counter.
	IncTraceFetchTotal()

	// IncTraceFetchError increments the failed trace fetch counter.
	IncTraceFetchError()

	// ObserveTraceFetchAttempts records how many polls a trace fetch took.
	ObserveTraceFetchAttempts(attempts int)

	// ----------------------
	// Journal
	// ----------------------

	// IncJournalRecorded increments the recorded statements counter.
	IncJournalRecorded()

	// IncJournalError increments the failed record counter.
	IncJournalError()
}
