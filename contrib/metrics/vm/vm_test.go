package vm_test

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"

	"github.com/VictoriaMetrics/metrics"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/quill"
	"github.com/arloliu/quill/contrib/metrics/vm"
	"github.com/arloliu/quill/test/testutil"
	"github.com/arloliu/quill/types"
)

func newCollector(t *testing.T, opts ...vm.Option) *vm.Collector {
	t.Helper()

	set := metrics.NewSet()
	c := vm.New(append([]vm.Option{vm.WithMetricsSet(set)}, opts...)...)
	require.Same(t, set, c.Set())

	return c
}

func exposition(c *vm.Collector) string {
	var buf bytes.Buffer
	c.WritePrometheus(&buf)

	return buf.String()
}

func TestCollectorExecution(t *testing.T) {
	c := newCollector(t)

	c.IncExecuteTotal(types.KindSelect)
	c.IncExecuteTotal(types.KindSelect)
	c.IncExecuteError(types.KindAlterTableDrop)
	c.IncBuildError("")
	c.ObserveExecuteDuration(types.KindInsert, 0.002)
	c.IncContinuationTotal(types.KindSelect)

	out := exposition(c)
	require.Contains(t, out, `quill_execute_total{kind="select"} 2`)
	require.Contains(t, out, `quill_execute_errors_total{kind="alter_table_drop"} 1`)
	require.Contains(t, out, `quill_build_errors_total{kind="raw"} 1`)
	require.Contains(t, out, `quill_execute_duration_seconds_count{kind="insert"} 1`)
	require.Contains(t, out, `quill_continuation_total{kind="select"} 1`)
}

func TestCollectorUnknownKind(t *testing.T) {
	c := newCollector(t)

	c.IncExecuteTotal("batch")
	c.IncExecuteTotal("batch")

	require.Contains(t, exposition(c), `quill_execute_total{kind="batch"} 2`)
}

func TestCollectorPagingTracingJournal(t *testing.T) {
	c := newCollector(t, vm.WithPrefix("app"))

	c.ObservePageRows(20)
	c.ObservePageRows(5)
	c.IncPagingExhausted()
	c.IncTracedTotal()
	c.IncTraceFetchTotal()
	c.IncTraceFetchError()
	c.ObserveTraceFetchAttempts(3)
	c.IncJournalRecorded()
	c.IncJournalError()

	out := exposition(c)
	require.Contains(t, out, "app_page_rows_count 2")
	require.Contains(t, out, "app_page_rows_sum 25")
	require.Contains(t, out, "app_paging_exhausted_total 1")
	require.Contains(t, out, "app_traced_total 1")
	require.Contains(t, out, "app_trace_fetch_total 1")
	require.Contains(t, out, "app_trace_fetch_errors_total 1")
	require.Contains(t, out, "app_trace_fetch_attempts_count 1")
	require.Contains(t, out, "app_journal_recorded_total 1")
	require.Contains(t, out, "app_journal_errors_total 1")
	require.NotContains(t, out, "quill_")
}

func TestCollectorHandler(t *testing.T) {
	c := newCollector(t)
	c.IncTracedTotal()

	rec := httptest.NewRecorder()
	c.Handler(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Contains(t, rec.Body.String(), "quill_traced_total 1")
}

func TestCollectorWithSession(t *testing.T) {
	c := newCollector(t)
	mock := testutil.NewMockSession()
	rows := make([][]any, 30)
	for i := range rows {
		rows[i] = []any{"a", i}
	}
	mock.SetRows("SELECT k, v FROM ks.test WHERE k = ?", []string{"k", "v"}, rows...)

	session, err := quill.NewSession(mock, quill.WithMetrics(c))
	require.NoError(t, err)
	defer session.Close()

	ctx := context.Background()
	stmt := quill.NewStatement("SELECT k, v FROM ks.test WHERE k = ?", "a").WithPageSize(20)
	res, err := session.Execute(ctx, stmt)
	require.NoError(t, err)
	next, err := quill.NextPage(stmt, res)
	require.NoError(t, err)
	_, err = session.Execute(ctx, next)
	require.NoError(t, err)

	out := exposition(c)
	require.Contains(t, out, `quill_execute_total{kind="raw"} 2`)
	require.Contains(t, out, `quill_continuation_total{kind="raw"} 1`)
	require.Contains(t, out, "quill_page_rows_sum 30")
}
