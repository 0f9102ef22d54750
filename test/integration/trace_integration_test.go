package integration_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/quill"
	"github.com/arloliu/quill/types"
)

func TestTracingIntegration(t *testing.T) {
	// system_traces is written asynchronously; give the server time.
	session := getSession(t, quill.WithTraceFetch(50, 100*time.Millisecond))
	table := createTable(t, "tracing", kvTableSchema)
	ctx := t.Context()

	_, err := session.ExecuteText(ctx, "INSERT INTO "+testKeyspace+"."+table+" (k, v) VALUES (?, ?)", "t", 1)
	require.NoError(t, err)

	res, err := session.Execute(ctx,
		quill.NewStatement("SELECT k, v FROM "+testKeyspace+"."+table+" WHERE k = ?", "t").WithTracing(true))
	require.NoError(t, err)
	require.Len(t, res.All(), 1)

	id, ok := res.TracingID()
	if !ok {
		t.Log("backend returned no tracing id for a traced request")
		return
	}

	trace, err := res.QueryTrace(ctx)
	require.NoError(t, err)
	require.Equal(t, id, trace.TraceID)
	require.NotEmpty(t, trace.Events)
}

func TestUntracedIntegration(t *testing.T) {
	session := getSession(t)
	table := createTable(t, "untraced", kvTableSchema)
	ctx := t.Context()

	res, err := session.ExecuteText(ctx, "SELECT k, v FROM "+testKeyspace+"."+table)
	require.NoError(t, err)

	_, ok := res.TracingID()
	require.False(t, ok)

	_, err = res.QueryTrace(ctx)
	require.ErrorIs(t, err, types.ErrNoTracingID)
}
