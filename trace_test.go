package quill_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/quill"
	"github.com/arloliu/quill/test/testutil"
	"github.com/arloliu/quill/types"
)

func TestTracedResultFetchesTrace(t *testing.T) {
	collector := testutil.NewTestMetricsCollector()
	session, mock := newSession(t, quill.WithMetrics(collector))
	seedRows(mock, 3)

	res, err := session.Execute(t.Context(), quill.NewStatement(selectRows, "test").WithTracing(true))
	require.NoError(t, err)

	id, ok := res.TracingID()
	require.True(t, ok)
	require.EqualValues(t, 1, id.Version())

	call := mock.CallsFor(selectRows)[0]
	require.True(t, call.Traced)
	require.Equal(t, id[:], call.TraceID)

	trace, err := res.QueryTrace(t.Context())
	require.NoError(t, err)
	require.Equal(t, id, trace.TraceID)
	require.Equal(t, "127.0.0.1", trace.Coordinator)
	require.Equal(t, 250*time.Microsecond, trace.Duration)
	require.Equal(t, selectRows, trace.Parameters["query"])
	require.NotEmpty(t, trace.Events)

	want, ok := mock.Trace(id)
	require.True(t, ok)
	require.Len(t, trace.Events, len(want.Events))
	for i, ev := range trace.Events {
		require.Equal(t, want.Events[i].ID, ev.ID)
		require.Equal(t, want.Events[i].Activity, ev.Activity)
		require.Equal(t, want.Events[i].SourceElapsed, ev.SourceElapsed)
		require.False(t, ev.Time.IsZero())
	}

	snap := collector.Snapshot()
	require.Equal(t, int64(1), snap.TracedTotal)
	require.Equal(t, int64(1), snap.TraceFetchTotal)
	require.Zero(t, snap.TraceFetchErrors)
}

func TestUntracedResultHasNoTrace(t *testing.T) {
	session, mock := newSession(t)
	seedRows(mock, 1)

	res, err := session.Execute(t.Context(), quill.NewStatement(selectRows, "test"))
	require.NoError(t, err)

	_, ok := res.TracingID()
	require.False(t, ok)

	_, err = res.QueryTrace(t.Context())
	require.ErrorIs(t, err, types.ErrNoTracingID)
}

func TestTraceIgnoredByServer(t *testing.T) {
	session, mock := newSession(t)
	mock.TraceIgnored = true
	seedRows(mock, 1)

	res, err := session.Execute(t.Context(), quill.NewStatement(selectRows, "test").WithTracing(true))
	require.NoError(t, err)

	_, ok := res.TracingID()
	require.False(t, ok)

	_, err = res.QueryTrace(t.Context())
	require.ErrorIs(t, err, types.ErrNoTracingID)
}

func TestTracePollsUntilComplete(t *testing.T) {
	collector := testutil.NewTestMetricsCollector()
	session, mock := newSession(t,
		quill.WithMetrics(collector),
		quill.WithTraceFetch(5, time.Millisecond),
	)
	mock.TracePending = 2
	seedRows(mock, 1)

	res, err := session.Execute(t.Context(), quill.NewStatement(selectRows, "test").WithTracing(true))
	require.NoError(t, err)

	trace, err := res.QueryTrace(t.Context())
	require.NoError(t, err)
	require.NotEmpty(t, trace.Events)
	require.Equal(t, []int{3}, collector.TraceFetchAttempts)
}

func TestTraceNeverCompletes(t *testing.T) {
	collector := testutil.NewTestMetricsCollector()
	session, mock := newSession(t,
		quill.WithMetrics(collector),
		quill.WithTraceFetch(3, time.Millisecond),
	)
	mock.TracePending = -1
	seedRows(mock, 1)

	res, err := session.Execute(t.Context(), quill.NewStatement(selectRows, "test").WithTracing(true))
	require.NoError(t, err)

	trace, err := res.QueryTrace(t.Context())
	require.ErrorIs(t, err, types.ErrTraceUnavailable)
	require.Nil(t, trace, "partial traces are never returned")
	require.Equal(t, []int{3}, collector.TraceFetchAttempts)
	require.Equal(t, int64(1), collector.Snapshot().TraceFetchErrors)
}

func TestTraceFetchHonorsContext(t *testing.T) {
	session, mock := newSession(t, quill.WithTraceFetch(100, time.Second))
	mock.TracePending = -1
	seedRows(mock, 1)

	res, err := session.Execute(t.Context(), quill.NewStatement(selectRows, "test").WithTracing(true))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()

	_, err = res.QueryTrace(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFetchTraceInvalidID(t *testing.T) {
	session, _ := newSession(t)

	_, err := session.FetchTrace(t.Context(), nil)
	require.ErrorIs(t, err, types.ErrNoTracingID)

	_, err = session.FetchTrace(t.Context(), []byte{1, 2, 3})
	require.ErrorIs(t, err, types.ErrInvalidArgument)
}
