package quill_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/quill"
	"github.com/arloliu/quill/test/testutil"
	"github.com/arloliu/quill/types"
)

func rowValues(t *testing.T, res *quill.Result) []int {
	t.Helper()

	var out []int
	for row, ok := res.Next(); ok; row, ok = res.Next() {
		v, err := quill.Value[int](row, "v")
		require.NoError(t, err)
		out = append(out, v)
	}

	return out
}

func TestPagingWalksEveryRowOnce(t *testing.T) {
	session, mock := newSession(t)
	seedRows(mock, 100)

	stmt := quill.NewStatement(selectRows, "test").WithPageSize(20)

	var seen []int
	pages := 0
	for {
		res, err := session.Execute(t.Context(), stmt)
		require.NoError(t, err)
		pages++

		require.LessOrEqual(t, res.AvailableWithoutFetching(), 20)
		seen = append(seen, rowValues(t, res)...)

		stmt, err = quill.NextPage(stmt, res)
		if errors.Is(err, types.ErrPagingExhausted) {
			break
		}
		require.NoError(t, err)
	}

	require.Equal(t, 5, pages)
	require.Len(t, seen, 100)
	for i, v := range seen {
		require.Equal(t, i, v)
	}
}

func TestPagingOriginalStatementReplaysFirstPage(t *testing.T) {
	session, mock := newSession(t)
	seedRows(mock, 30)

	first := quill.NewStatement(selectRows, "test").WithPageSize(10)
	res, err := session.Execute(t.Context(), first)
	require.NoError(t, err)

	second, err := quill.NextPage(first, res)
	require.NoError(t, err)
	res2, err := session.Execute(t.Context(), second)
	require.NoError(t, err)
	require.Equal(t, []int{10, 11, 12, 13, 14, 15, 16, 17, 18, 19}, rowValues(t, res2))

	again, err := session.Execute(t.Context(), first)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, rowValues(t, again))

	// The same continuation can be executed twice.
	res3, err := session.Execute(t.Context(), second)
	require.NoError(t, err)
	require.Equal(t, []int{10, 11, 12, 13, 14, 15, 16, 17, 18, 19}, rowValues(t, res3))
	require.True(t, res3.Statement().Copy(nil).Equal(first))
}

func TestNextPageExhausted(t *testing.T) {
	session, mock := newSession(t)
	seedRows(mock, 10)

	stmt := quill.NewStatement(selectRows, "test").WithPageSize(10)
	res, err := session.Execute(t.Context(), stmt)
	require.NoError(t, err)
	require.Equal(t, 10, res.AvailableWithoutFetching())
	require.False(t, res.HasMorePages())
	require.Nil(t, res.PagingState())

	_, err = quill.NextPage(stmt, res)
	require.ErrorIs(t, err, types.ErrPagingExhausted)

	_, err = quill.NextPage(stmt, nil)
	require.ErrorIs(t, err, types.ErrPagingExhausted)
}

func TestPagingRejectsForeignState(t *testing.T) {
	session, mock := newSession(t)
	seedRows(mock, 10)

	stmt := quill.NewStatement(selectRows, "test").WithPagingState([]byte("garbage"))
	_, err := session.Execute(t.Context(), stmt)
	require.ErrorIs(t, err, testutil.ErrMockPagingState)
}

func TestPagerPhases(t *testing.T) {
	collector := testutil.NewTestMetricsCollector()
	session, mock := newSession(t, quill.WithMetrics(collector))
	seedRows(mock, 25)

	pager := session.Pager(quill.NewStatement(selectRows, "test").WithPageSize(10))
	require.Equal(t, quill.PhaseFresh, pager.Phase())
	require.Equal(t, "fresh", pager.Phase().String())

	var total int
	for !pager.Done() {
		res, err := pager.Next(t.Context())
		require.NoError(t, err)
		total += len(res.All())
		if !pager.Done() {
			require.Equal(t, quill.PhasePaged, pager.Phase())
		}
	}

	require.Equal(t, 25, total)
	require.Equal(t, 3, pager.Pages())
	require.Equal(t, quill.PhaseExhausted, pager.Phase())
	require.Equal(t, int64(1), collector.Snapshot().PagingExhausted)

	_, err := pager.Next(t.Context())
	require.ErrorIs(t, err, types.ErrPagingExhausted)
	require.Len(t, mock.CallsFor(selectRows), 3, "an exhausted pager sends nothing")
}

func TestPagerRetriesAfterError(t *testing.T) {
	session, mock := newSession(t)
	seedRows(mock, 20)

	pager := session.Pager(quill.NewStatement(selectRows, "test").WithPageSize(10))
	_, err := pager.Next(t.Context())
	require.NoError(t, err)
	before := pager.Statement()

	failing := errors.New("read timeout")
	mock.OnQuery = func(testutil.QueryCall) (*testutil.Dataset, error) { return nil, failing }

	_, err = pager.Next(t.Context())
	require.ErrorIs(t, err, failing)
	require.Equal(t, quill.PhasePaged, pager.Phase())
	require.Equal(t, 1, pager.Pages())
	require.True(t, before.Equal(pager.Statement()))

	mock.OnQuery = nil
	res, err := pager.Next(t.Context())
	require.NoError(t, err)
	require.Equal(t, []int{10, 11, 12, 13, 14, 15, 16, 17, 18, 19}, rowValues(t, res))
	require.True(t, pager.Done())
}

func TestPagerResumesFromStatement(t *testing.T) {
	session, mock := newSession(t)
	seedRows(mock, 30)

	pager := session.Pager(quill.NewStatement(selectRows, "test").WithPageSize(10))
	_, err := pager.Next(t.Context())
	require.NoError(t, err)

	resumed := quill.NewPager(session, pager.Statement())
	res, err := resumed.Next(t.Context())
	require.NoError(t, err)
	require.Equal(t, 10, rowValues(t, res)[0])
}

func TestPagerNilExecutor(t *testing.T) {
	pager := quill.NewPager(nil, quill.NewStatement("SELECT * FROM ks.t"))
	_, err := pager.Next(context.Background())
	require.ErrorIs(t, err, types.ErrNilSession)
	require.Equal(t, quill.PhaseFresh, pager.Phase())
}
