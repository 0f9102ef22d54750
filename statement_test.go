package quill_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/quill"
	"github.com/arloliu/quill/bind"
	"github.com/arloliu/quill/query"
	"github.com/arloliu/quill/types"
)

func TestStatementWithMethodsDoNotMutate(t *testing.T) {
	base := quill.NewStatement("SELECT * FROM ks.t WHERE k = ?", "a")

	paged := base.WithPageSize(10).
		WithPagingState([]byte("token")).
		WithTracing(true).
		WithTimestamp(100).
		WithConsistency(quill.Quorum).
		WithSerialConsistency(quill.Serial).
		WithIdempotent(true)

	require.Zero(t, base.PageSize())
	require.Nil(t, base.PagingState())
	require.False(t, base.Tracing())
	require.False(t, base.Idempotent())
	_, ok := base.Timestamp()
	require.False(t, ok)
	_, ok = base.Consistency()
	require.False(t, ok)
	_, ok = base.SerialConsistency()
	require.False(t, ok)

	require.Equal(t, 10, paged.PageSize())
	require.Equal(t, []byte("token"), paged.PagingState())
	require.True(t, paged.Tracing())
	require.True(t, paged.Idempotent())
	ts, ok := paged.Timestamp()
	require.True(t, ok)
	require.Equal(t, int64(100), ts)
	cl, ok := paged.Consistency()
	require.True(t, ok)
	require.Equal(t, quill.Quorum, cl)
	serial, ok := paged.SerialConsistency()
	require.True(t, ok)
	require.Equal(t, quill.Serial, serial)
}

func TestStatementPagingStateIsCopied(t *testing.T) {
	state := []byte("abc")
	stmt := quill.NewStatement("SELECT * FROM ks.t").WithPagingState(state)

	state[0] = 'x'
	require.Equal(t, []byte("abc"), stmt.PagingState())

	got := stmt.PagingState()
	got[0] = 'y'
	require.Equal(t, []byte("abc"), stmt.PagingState())
}

func TestStatementBlobValueIsCopied(t *testing.T) {
	blob := []byte("payload")
	stmt := quill.NewStatement("INSERT INTO ks.t (k, b) VALUES (?, ?)", "a", blob)

	blob[0] = 'X'

	v, _ := stmt.Values().At(1)
	require.Equal(t, []byte("payload"), v)
}

func TestStatementCopy(t *testing.T) {
	base := quill.NewStatement("SELECT * FROM ks.t WHERE k = ?", "a").
		WithPageSize(20).
		WithConsistency(quill.One)

	next := base.Copy([]byte("page-2"))
	require.Equal(t, []byte("page-2"), next.PagingState())
	require.Nil(t, base.PagingState())

	require.Equal(t, base.Text(), next.Text())
	require.Equal(t, base.PageSize(), next.PageSize())
	require.True(t, next.Copy(nil).Equal(base))
}

func TestStatementDerive(t *testing.T) {
	base := quill.NewStatement("SELECT * FROM ks.t WHERE k = ?", "a").
		WithPageSize(20).
		WithPagingState([]byte("p"))

	size := 5
	tracing := true
	level := quill.LocalOne
	vals := bind.Of("b")

	derived := quill.Derive(base, quill.Overrides{
		PageSize:    &size,
		Tracing:     &tracing,
		Consistency: &level,
		Values:      &vals,
	})
	require.Equal(t, 5, derived.PageSize())
	require.True(t, derived.Tracing())
	require.Equal(t, []byte("p"), derived.PagingState(), "unset fields keep the base value")
	v, _ := derived.Values().At(0)
	require.Equal(t, "b", v)

	first := quill.Derive(base, quill.Overrides{FirstPage: true, PagingState: []byte("ignored")})
	require.Nil(t, first.PagingState())

	idempotent := true
	marked := quill.Derive(base, quill.Overrides{Idempotent: &idempotent})
	require.True(t, marked.Idempotent())
	require.Equal(t, 20, marked.PageSize())

	require.Equal(t, 20, base.PageSize())
	require.False(t, base.Tracing())
	require.False(t, base.Idempotent())
}

func TestStatementEqual(t *testing.T) {
	a := quill.NewStatement("SELECT * FROM ks.t WHERE k = ?", "a").WithTimestamp(1)
	b := quill.NewStatement("SELECT * FROM ks.t WHERE k = ?", "a").WithTimestamp(1)
	require.True(t, a.Equal(b))

	require.False(t, a.Equal(b.WithTimestamp(2)))
	require.False(t, a.Equal(b.WithValues("b")))
	require.False(t, a.Equal(b.WithPagingState([]byte{1})))
	require.False(t, a.Equal(quill.NewStatement("SELECT * FROM ks.t WHERE k = ?", "a")))
}

func TestStatementFor(t *testing.T) {
	intent, err := query.Select("k", "v").
		From("ks", "t").
		Where(query.Eq("k", "test")).
		Build()
	require.NoError(t, err)

	stmt := quill.StatementFor(intent)
	require.Equal(t, types.KindSelect, stmt.Kind())
	require.Same(t, intent, stmt.Intent())
	require.Equal(t, "SELECT k, v FROM ks.t WHERE k = ?", stmt.Text())
	require.Equal(t, []any{"test"}, stmt.Values().Slice())

	empty := quill.StatementFor(nil)
	require.Equal(t, types.KindRaw, empty.Kind())
	require.Empty(t, empty.Text())
}

func TestNewNamedStatement(t *testing.T) {
	vals, err := bind.FromMap(map[string]any{"v": nil, "k": "test"})
	require.NoError(t, err)

	stmt := quill.NewNamedStatement("INSERT INTO ks.t (k, v) VALUES (:k, :v)", vals)
	require.Equal(t, bind.Named, stmt.Values().Mode())
	require.Equal(t, []string{"k", "v"}, stmt.Values().Names())
	require.True(t, stmt.Values().IsNullNamed("v"))
	require.Equal(t, types.KindRaw, stmt.Kind())
	require.Nil(t, stmt.Intent())
}

func TestStatementOptionsIsACopy(t *testing.T) {
	stmt := quill.NewStatement("SELECT * FROM ks.t").WithConsistency(quill.All)

	opts := stmt.Options()
	*opts.Consistency = quill.One

	cl, _ := stmt.Consistency()
	require.Equal(t, quill.All, cl)
}
