package testutil

import (
	"sync"

	"github.com/arloliu/quill/types"
)

// TestMetricsCollector is a test implementation of types.MetricsCollector
// that tracks method calls for assertion in tests.
type TestMetricsCollector struct {
	mu sync.RWMutex

	// Execution
	ExecuteTotal    map[types.StatementKind]int64
	ExecuteErrors   map[types.StatementKind]int64
	ExecuteDuration map[types.StatementKind][]float64
	BuildErrors     map[types.StatementKind]int64

	// Paging
	Continuations   map[types.StatementKind]int64
	PageRows        []int
	PagingExhausted int64

	// Tracing
	TracedTotal        int64
	TraceFetchTotal    int64
	TraceFetchErrors   int64
	TraceFetchAttempts []int

	// Journal
	JournalRecorded int64
	JournalErrors   int64
}

// Compile-time assertion that TestMetricsCollector implements types.MetricsCollector.
var _ types.MetricsCollector = (*TestMetricsCollector)(nil)

// NewTestMetricsCollector creates a new test metrics collector.
func NewTestMetricsCollector() *TestMetricsCollector {
	return &TestMetricsCollector{
		ExecuteTotal:    make(map[types.StatementKind]int64),
		ExecuteErrors:   make(map[types.StatementKind]int64),
		ExecuteDuration: make(map[types.StatementKind][]float64),
		BuildErrors:     make(map[types.StatementKind]int64),
		Continuations:   make(map[types.StatementKind]int64),
	}
}

// ----------------------
// Execution
// ----------------------

// IncExecuteTotal records an executed statement.
func (m *TestMetricsCollector) IncExecuteTotal(kind types.StatementKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ExecuteTotal[kind]++
}

// IncExecuteError records a failed statement.
func (m *TestMetricsCollector) IncExecuteError(kind types.StatementKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ExecuteErrors[kind]++
}

// ObserveExecuteDuration records execution latency.
func (m *TestMetricsCollector) ObserveExecuteDuration(kind types.StatementKind, seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ExecuteDuration[kind] = append(m.ExecuteDuration[kind], seconds)
}

// IncBuildError records a statement rejected before execution.
func (m *TestMetricsCollector) IncBuildError(kind types.StatementKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BuildErrors[kind]++
}

// ----------------------
// Paging
// ----------------------

// IncContinuationTotal records a statement that carried a paging state.
func (m *TestMetricsCollector) IncContinuationTotal(kind types.StatementKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Continuations[kind]++
}

// ObservePageRows records the row count of a page.
func (m *TestMetricsCollector) ObservePageRows(rows int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PageRows = append(m.PageRows, rows)
}

// IncPagingExhausted records a pager reaching its last page.
func (m *TestMetricsCollector) IncPagingExhausted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PagingExhausted++
}

// ----------------------
// Tracing
// ----------------------

// IncTracedTotal records a traced statement.
func (m *TestMetricsCollector) IncTracedTotal() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TracedTotal++
}

// IncTraceFetchTotal records a trace fetch.
func (m *TestMetricsCollector) IncTraceFetchTotal() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TraceFetchTotal++
}

// IncTraceFetchError records a failed trace fetch.
func (m *TestMetricsCollector) IncTraceFetchError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TraceFetchErrors++
}

// ObserveTraceFetchAttempts records how many polls a trace fetch took.
func (m *TestMetricsCollector) ObserveTraceFetchAttempts(attempts int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TraceFetchAttempts = append(m.TraceFetchAttempts, attempts)
}

// ----------------------
// Journal
// ----------------------

// IncJournalRecorded records a journaled statement.
func (m *TestMetricsCollector) IncJournalRecorded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.JournalRecorded++
}

// IncJournalError records a failed journal write.
func (m *TestMetricsCollector) IncJournalError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.JournalErrors++
}

// ----------------------
// Accessors
// ----------------------

// Executions returns the execute count for kind.
func (m *TestMetricsCollector) Executions(kind types.StatementKind) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.ExecuteTotal[kind]
}

// Errors returns the execute error count for kind.
func (m *TestMetricsCollector) Errors(kind types.StatementKind) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.ExecuteErrors[kind]
}

// Snapshot returns a copy of the counters safe to read without locking.
func (m *TestMetricsCollector) Snapshot() TestMetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pageRows := make([]int, len(m.PageRows))
	copy(pageRows, m.PageRows)

	return TestMetricsSnapshot{
		PageRows:         pageRows,
		PagingExhausted:  m.PagingExhausted,
		TracedTotal:      m.TracedTotal,
		TraceFetchTotal:  m.TraceFetchTotal,
		TraceFetchErrors: m.TraceFetchErrors,
		JournalRecorded:  m.JournalRecorded,
		JournalErrors:    m.JournalErrors,
	}
}

// TestMetricsSnapshot is a point-in-time copy of the scalar counters.
type TestMetricsSnapshot struct {
	PageRows         []int
	PagingExhausted  int64
	TracedTotal      int64
	TraceFetchTotal  int64
	TraceFetchErrors int64
	JournalRecorded  int64
	JournalErrors    int64
}
