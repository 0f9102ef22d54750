package quill_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/quill"
	"github.com/arloliu/quill/bind"
	"github.com/arloliu/quill/query"
	"github.com/arloliu/quill/test/testutil"
	"github.com/arloliu/quill/types"
)

const selectRows = "SELECT k, v FROM ks.test WHERE k = ?"

// seedRows registers n rows (k="test", v=0..n-1) for selectRows.
func seedRows(mock *testutil.MockSession, n int) {
	rows := make([][]any, n)
	for i := range rows {
		rows[i] = []any{"test", i}
	}
	mock.SetRows(selectRows, []string{"k", "v"}, rows...)
}

func newSession(t *testing.T, opts ...quill.Option) (*quill.Session, *testutil.MockSession) {
	t.Helper()

	mock := testutil.NewMockSession()
	session, err := quill.NewSession(mock, opts...)
	require.NoError(t, err)
	t.Cleanup(session.Close)

	return session, mock
}

func TestNewSessionNil(t *testing.T) {
	session, err := quill.NewSession(nil)
	require.ErrorIs(t, err, types.ErrNilSession)
	require.Nil(t, session)
}

func TestExecuteReturnsOnePage(t *testing.T) {
	session, mock := newSession(t)
	seedRows(mock, 100)

	stmt := quill.NewStatement(selectRows, "test").WithPageSize(20)
	res, err := session.Execute(t.Context(), stmt)
	require.NoError(t, err)

	require.Equal(t, 20, res.AvailableWithoutFetching())
	require.True(t, res.HasMorePages())

	rows := res.All()
	require.Len(t, rows, 20)
	for i, row := range rows {
		v, err := quill.Value[int](row, "v")
		require.NoError(t, err)
		require.Equal(t, i, v)
	}

	// Reaching the end of the page does not fetch the next one.
	_, ok := res.Next()
	require.False(t, ok)
	require.Len(t, mock.CallsFor(selectRows), 1)
}

func TestExecuteAlwaysSendsPagingState(t *testing.T) {
	session, mock := newSession(t)
	seedRows(mock, 3)

	_, err := session.Execute(t.Context(), quill.NewStatement(selectRows, "test"))
	require.NoError(t, err)

	call, ok := mock.LastCall()
	require.True(t, ok)
	require.True(t, call.PageStateSet)
	require.Nil(t, call.PageState)
	require.Zero(t, call.PageSize)
}

func TestExecuteAppliesOptions(t *testing.T) {
	session, mock := newSession(t,
		quill.WithDefaultPageSize(50),
		quill.WithDefaultConsistency(quill.LocalQuorum),
		quill.WithTimestampProvider(func() int64 { return 42 }),
	)

	_, err := session.Execute(t.Context(), quill.NewStatement("INSERT INTO ks.t (k) VALUES (?)", "a"))
	require.NoError(t, err)

	call, _ := mock.LastCall()
	require.Equal(t, 50, call.PageSize)
	require.NotNil(t, call.Consistency)
	require.Equal(t, quill.LocalQuorum, *call.Consistency)
	require.Nil(t, call.SerialConsistency)
	require.NotNil(t, call.Timestamp)
	require.Equal(t, int64(42), *call.Timestamp)
	require.False(t, call.Idempotent)

	stmt := quill.NewStatement("INSERT INTO ks.t (k) VALUES (?) IF NOT EXISTS", "a").
		WithPageSize(5).
		WithConsistency(quill.One).
		WithSerialConsistency(quill.LocalSerial).
		WithTimestamp(7).
		WithIdempotent(true)
	_, err = session.Execute(t.Context(), stmt)
	require.NoError(t, err)

	call, _ = mock.LastCall()
	require.Equal(t, 5, call.PageSize)
	require.Equal(t, quill.One, *call.Consistency)
	require.Equal(t, quill.LocalSerial, *call.SerialConsistency)
	require.Equal(t, int64(7), *call.Timestamp)
	require.True(t, call.Idempotent)
}

func TestExecuteWithoutTimestampProvider(t *testing.T) {
	session, mock := newSession(t)

	_, err := session.ExecuteText(t.Context(), "TRUNCATE ks.t")
	require.NoError(t, err)

	call, _ := mock.LastCall()
	require.Nil(t, call.Timestamp, "server assigns the timestamp")
	require.Nil(t, call.Consistency)
}

func TestExecutePositionalNulls(t *testing.T) {
	session, mock := newSession(t)
	mock.SetRows("SELECT a, b, c FROM ks.t", []string{"a", "b", "c"},
		[]any{"x", nil, 3},
	)

	insert := quill.NewStatement("INSERT INTO ks.t (a, b, c) VALUES (?, ?, ?)", "x", bind.Null, 3)
	_, err := session.Execute(t.Context(), insert)
	require.NoError(t, err)

	call, _ := mock.LastCall()
	require.Equal(t, []any{"x", nil, 3}, call.Values)

	res, err := session.ExecuteText(t.Context(), "SELECT a, b, c FROM ks.t")
	require.NoError(t, err)
	row, ok := res.One()
	require.True(t, ok)
	require.False(t, row.IsNullAt(0))
	require.True(t, row.IsNullAt(1))
	require.False(t, row.IsNullAt(2))
	require.True(t, row.IsNull("b"))
}

func TestExecuteNamedValues(t *testing.T) {
	session, mock := newSession(t)

	vals, err := bind.NamedOf(
		bind.Pair{Name: "k", Value: "test"},
		bind.Pair{Name: "v", Value: nil},
	)
	require.NoError(t, err)

	_, err = session.Execute(t.Context(), quill.NewNamedStatement("INSERT INTO ks.t (k, v) VALUES (:k, :v)", vals))
	require.NoError(t, err)

	call, _ := mock.LastCall()
	require.Equal(t, []any{
		types.NamedValue{Name: "k", Value: "test"},
		types.NamedValue{Name: "v", Value: nil},
	}, call.Values)
}

func TestExecuteSurfacesServerErrorsUnchanged(t *testing.T) {
	session, mock := newSession(t)

	serverErr := errors.New("unconfigured table nope")
	mock.SetQueryError("SELECT * FROM ks.nope", serverErr)

	_, err := session.ExecuteText(t.Context(), "SELECT * FROM ks.nope")
	require.Same(t, serverErr, err)

	// Bind count mismatches are left to the server.
	_, err = session.ExecuteText(t.Context(), "INSERT INTO ks.t (k, v) VALUES (?, ?)", "only-one")
	require.Error(t, err)
	require.NotErrorIs(t, err, types.ErrInvalidArgument)
}

func TestExecuteRejectsUnusableStatements(t *testing.T) {
	collector := testutil.NewTestMetricsCollector()
	session, mock := newSession(t, quill.WithMetrics(collector))

	_, err := session.Execute(t.Context(), quill.NewStatement(""))
	require.ErrorIs(t, err, types.ErrInvalidArgument)

	_, err = session.Execute(t.Context(), quill.NewStatement("SELECT * FROM ks.t").WithPageSize(-1))
	var argErr *types.InvalidArgumentError
	require.ErrorAs(t, err, &argErr)
	require.Equal(t, "pageSize", argErr.Arg)

	require.Empty(t, mock.Calls(), "nothing reaches the transport")
	require.Equal(t, int64(2), collector.BuildErrors[types.KindRaw])
}

func TestExecuteIntent(t *testing.T) {
	session, mock := newSession(t)

	intent, err := query.Alter().Table("ks", "t").DropColumn("a", "b").Build()
	require.NoError(t, err)

	_, err = session.ExecuteIntent(t.Context(), intent)
	require.NoError(t, err)

	call, _ := mock.LastCall()
	require.Equal(t, "ALTER TABLE ks.t DROP (a, b)", call.Statement)

	_, err = session.ExecuteIntent(t.Context(), nil)
	require.ErrorIs(t, err, types.ErrInvalidArgument)
}

func TestSessionClose(t *testing.T) {
	mock := testutil.NewMockSession()
	session, err := quill.NewSession(mock)
	require.NoError(t, err)

	session.Close()
	session.Close()
	require.True(t, session.IsClosed())
	require.True(t, mock.IsClosed())

	_, err = session.ExecuteText(context.Background(), "SELECT * FROM ks.t")
	require.ErrorIs(t, err, types.ErrSessionClosed)

	_, err = session.FetchTrace(context.Background(), make([]byte, 16))
	require.ErrorIs(t, err, types.ErrSessionClosed)
}

func TestExecuteMetrics(t *testing.T) {
	collector := testutil.NewTestMetricsCollector()
	session, mock := newSession(t, quill.WithMetrics(collector))
	seedRows(mock, 30)

	stmt := quill.NewStatement(selectRows, "test").WithPageSize(20)
	res, err := session.Execute(t.Context(), stmt)
	require.NoError(t, err)

	next, err := quill.NextPage(stmt, res)
	require.NoError(t, err)
	_, err = session.Execute(t.Context(), next)
	require.NoError(t, err)

	mock.SetQueryError("SELECT broken", errors.New("boom"))
	_, err = session.ExecuteText(t.Context(), "SELECT broken")
	require.Error(t, err)

	require.Equal(t, int64(3), collector.Executions(types.KindRaw))
	require.Equal(t, int64(1), collector.Errors(types.KindRaw))
	require.Equal(t, int64(1), collector.Continuations[types.KindRaw])
	require.Equal(t, []int{20, 10}, collector.Snapshot().PageRows)
	require.Len(t, collector.ExecuteDuration[types.KindRaw], 3)
}

func TestExecuteHonorsContext(t *testing.T) {
	mock := testutil.NewMockSession()
	slow := &testutil.SlowCQLSession{Session: mock, Delay: time.Second}
	session, err := quill.NewSession(slow)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
	defer cancel()

	_, err = session.ExecuteText(ctx, "SELECT * FROM ks.t")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Empty(t, mock.Calls())
}

func TestExecuteWarnings(t *testing.T) {
	session, mock := newSession(t)
	mock.SetDataset("SELECT * FROM ks.big ALLOW FILTERING", testutil.Dataset{
		Columns:  []string{"k"},
		Rows:     [][]any{{"a"}},
		Warnings: []string{"Read 1 live rows and 5000 tombstone cells"},
	})

	res, err := session.ExecuteText(t.Context(), "SELECT * FROM ks.big ALLOW FILTERING")
	require.NoError(t, err)
	require.Equal(t, []string{"Read 1 live rows and 5000 tombstone cells"}, res.Warnings())
	require.Equal(t, "k", res.Columns()[0].Name)
}

func TestSessionConcurrentExecute(t *testing.T) {
	session, mock := newSession(t)
	seedRows(mock, 50)

	stmt := quill.NewStatement(selectRows, "test").WithPageSize(10)
	errs := make(chan error, 8)
	for range 8 {
		go func() {
			res, err := session.Execute(context.Background(), stmt)
			if err == nil && res.AvailableWithoutFetching() != 10 {
				err = fmt.Errorf("unexpected page size %d", res.AvailableWithoutFetching())
			}
			errs <- err
		}()
	}
	for range 8 {
		require.NoError(t, <-errs)
	}
	require.Len(t, mock.CallsFor(selectRows), 8)
}
