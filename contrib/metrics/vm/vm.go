package vm

import (
	"fmt"
	"io"
	"net/http"

	"github.com/VictoriaMetrics/metrics"

	"github.com/arloliu/quill/types"
)

// Compile-time assertion that Collector implements types.MetricsCollector.
var _ types.MetricsCollector = (*Collector)(nil)

// knownKinds are pre-created at initialization.
var knownKinds = []types.StatementKind{
	types.KindRaw,
	types.KindCreateTable,
	types.KindAlterTableAdd,
	types.KindAlterTableDrop,
	types.KindAlterTableRename,
	types.KindDropTable,
	types.KindSelect,
	types.KindInsert,
	types.KindUpdate,
	types.KindDelete,
}

// Option configures a Collector.
type Option func(*Collector)

// WithPrefix sets the metric name prefix.
//
// Default: "quill"
//
// Parameters:
//   - prefix: The prefix to use for all metric names
//
// Returns:
//   - Option: A configuration option
func WithPrefix(prefix string) Option {
	return func(c *Collector) {
		c.prefix = prefix
	}
}

// WithMetricsSet sets the metrics set to use.
//
// If provided, the collector will register metrics with this set instead of
// creating a new one. The caller is responsible for exposing this set
// (e.g., via metrics.WritePrometheus or a custom handler).
//
// Parameters:
//   - set: The metrics set to use
//
// Returns:
//   - Option: A configuration option
func WithMetricsSet(set *metrics.Set) Option {
	return func(c *Collector) {
		c.set = set
	}
}

// kindMetrics holds the per statement kind series.
type kindMetrics struct {
	executeTotal    *metrics.Counter
	executeErrors   *metrics.Counter
	executeDuration *metrics.Histogram
	buildErrors     *metrics.Counter
	continuations   *metrics.Counter
}

// Collector implements types.MetricsCollector using VictoriaMetrics.
//
// Series for the built-in statement kinds are pre-created at initialization.
// Thread-safe for concurrent use.
type Collector struct {
	set    *metrics.Set
	prefix string

	// kinds is read-only after initMetrics.
	kinds map[types.StatementKind]*kindMetrics

	// Paging metrics
	pageRows        *metrics.Histogram
	pagingExhausted *metrics.Counter

	// Tracing metrics
	tracedTotal        *metrics.Counter
	traceFetchTotal    *metrics.Counter
	traceFetchErrors   *metrics.Counter
	traceFetchAttempts *metrics.Histogram

	// Journal metrics
	journalRecorded *metrics.Counter
	journalErrors   *metrics.Counter
}

// New creates a new VictoriaMetrics-based metrics collector.
//
// The collector creates its own metrics.Set and registers it globally
// unless WithMetricsSet is given.
//
// Parameters:
//   - opts: Configuration options (e.g., WithPrefix)
//
// Returns:
//   - *Collector: A new metrics collector ready for use
//
// Example:
//
//	collector := vm.New(vm.WithPrefix("myapp"))
//	session, _ := quill.NewSession(v1.WrapSession(gocqlSession),
//	    quill.WithMetrics(collector),
//	)
func New(opts ...Option) *Collector {
	c := &Collector{
		prefix: "quill",
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.set == nil {
		c.set = metrics.NewSet()
		metrics.RegisterSet(c.set)
	}

	c.initMetrics()

	return c
}

func (c *Collector) initMetrics() {
	p := c.prefix

	c.kinds = make(map[types.StatementKind]*kindMetrics, len(knownKinds))
	for _, kind := range knownKinds {
		c.kinds[kind] = &kindMetrics{
			executeTotal:    c.set.NewCounter(c.kindName("execute_total", kind)),
			executeErrors:   c.set.NewCounter(c.kindName("execute_errors_total", kind)),
			executeDuration: c.set.NewHistogram(c.kindName("execute_duration_seconds", kind)),
			buildErrors:     c.set.NewCounter(c.kindName("build_errors_total", kind)),
			continuations:   c.set.NewCounter(c.kindName("continuation_total", kind)),
		}
	}

	// Paging metrics
	c.pageRows = c.set.NewHistogram(p + "_page_rows")
	c.pagingExhausted = c.set.NewCounter(p + "_paging_exhausted_total")

	// Tracing metrics
	c.tracedTotal = c.set.NewCounter(p + "_traced_total")
	c.traceFetchTotal = c.set.NewCounter(p + "_trace_fetch_total")
	c.traceFetchErrors = c.set.NewCounter(p + "_trace_fetch_errors_total")
	c.traceFetchAttempts = c.set.NewHistogram(p + "_trace_fetch_attempts")

	// Journal metrics
	c.journalRecorded = c.set.NewCounter(p + "_journal_recorded_total")
	c.journalErrors = c.set.NewCounter(p + "_journal_errors_total")
}

func (c *Collector) kindName(metric string, kind types.StatementKind) string {
	return fmt.Sprintf(`%s_%s{kind=%q}`, c.prefix, metric, string(kind))
}

// forKind returns the pre-created series, or a lazily registered set for
// kinds added after this collector was built.
func (c *Collector) forKind(kind types.StatementKind) *kindMetrics {
	if kind == "" {
		kind = types.KindRaw
	}
	if m, ok := c.kinds[kind]; ok {
		return m
	}

	return &kindMetrics{
		executeTotal:    c.set.GetOrCreateCounter(c.kindName("execute_total", kind)),
		executeErrors:   c.set.GetOrCreateCounter(c.kindName("execute_errors_total", kind)),
		executeDuration: c.set.GetOrCreateHistogram(c.kindName("execute_duration_seconds", kind)),
		buildErrors:     c.set.GetOrCreateCounter(c.kindName("build_errors_total", kind)),
		continuations:   c.set.GetOrCreateCounter(c.kindName("continuation_total", kind)),
	}
}

// Set returns the underlying metrics set.
func (c *Collector) Set() *metrics.Set {
	return c.set
}

// Handler returns an HTTP handler that exposes metrics in Prometheus format.
//
// Example:
//
//	http.HandleFunc("/metrics", collector.Handler)
func (c *Collector) Handler(w http.ResponseWriter, _ *http.Request) {
	c.set.WritePrometheus(w)
}

// WritePrometheus writes all metrics in Prometheus format to the given writer.
//
// Parameters:
//   - w: The writer to write metrics to
func (c *Collector) WritePrometheus(w io.Writer) {
	c.set.WritePrometheus(w)
}

// ----------------------
// Execution
// ----------------------

// IncExecuteTotal increments the executed statements counter.
func (c *Collector) IncExecuteTotal(kind types.StatementKind) {
	c.forKind(kind).executeTotal.Inc()
}

// IncExecuteError increments the failed statements counter.
func (c *Collector) IncExecuteError(kind types.StatementKind) {
	c.forKind(kind).executeErrors.Inc()
}

// ObserveExecuteDuration records a statement round trip in seconds.
func (c *Collector) ObserveExecuteDuration(kind types.StatementKind, seconds float64) {
	c.forKind(kind).executeDuration.Update(seconds)
}

// IncBuildError increments the locally rejected requests counter.
func (c *Collector) IncBuildError(kind types.StatementKind) {
	c.forKind(kind).buildErrors.Inc()
}

// ----------------------
// Paging
// ----------------------

// IncContinuationTotal increments the counter of executions that carried
// a paging state.
func (c *Collector) IncContinuationTotal(kind types.StatementKind) {
	c.forKind(kind).continuations.Inc()
}

// ObservePageRows records the number of rows returned in one page.
func (c *Collector) ObservePageRows(rows int) {
	c.pageRows.Update(float64(rows))
}

// IncPagingExhausted increments the exhausted results counter.
func (c *Collector) IncPagingExhausted() {
	c.pagingExhausted.Inc()
}

// ----------------------
// Tracing
// ----------------------

// IncTracedTotal increments the traced executions counter.
func (c *Collector) IncTracedTotal() {
	c.tracedTotal.Inc()
}

// IncTraceFetchTotal increments the trace fetch counter.
func (c *Collector) IncTraceFetchTotal() {
	c.traceFetchTotal.Inc()
}

// IncTraceFetchError increments the failed trace fetch counter.
func (c *Collector) IncTraceFetchError() {
	c.traceFetchErrors.Inc()
}

// ObserveTraceFetchAttempts records how many polls a trace fetch took.
func (c *Collector) ObserveTraceFetchAttempts(attempts int) {
	c.traceFetchAttempts.Update(float64(attempts))
}

// ----------------------
// Journal
// ----------------------

// IncJournalRecorded increments the recorded statements counter.
func (c *Collector) IncJournalRecorded() {
	c.journalRecorded.Inc()
}

// IncJournalError increments the failed record counter.
func (c *Collector) IncJournalError() {
	c.journalErrors.Inc()
}
