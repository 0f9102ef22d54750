package journal_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/quill"
	"github.com/arloliu/quill/journal"
	"github.com/arloliu/quill/test/testutil"
	"github.com/arloliu/quill/types"
)

func record(i int) types.StatementRecord {
	return types.StatementRecord{
		ID:     fmt.Sprintf("rec-%d", i),
		Kind:   types.KindInsert,
		Query:  "INSERT INTO ks.t (k, v) VALUES (?, ?)",
		Mode:   types.BindPositional,
		Values: []any{"k", i},
	}
}

func TestMemoryJournalRecordAndReplay(t *testing.T) {
	j := journal.NewMemoryJournal()
	ctx := context.Background()

	for i := range 3 {
		require.NoError(t, j.Record(ctx, record(i)))
	}

	require.Equal(t, 3, j.Len())
	require.Equal(t, journal.DefaultMemoryCapacity, j.Cap())

	recs, err := j.Replay(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, "rec-0", recs[0].ID)
	require.Equal(t, "rec-1", recs[1].ID)

	all, err := j.Replay(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestMemoryJournalOverwritesOldest(t *testing.T) {
	j := journal.NewMemoryJournal(journal.WithCapacity(3))
	ctx := context.Background()

	for i := range 5 {
		require.NoError(t, j.Record(ctx, record(i)))
	}

	recs := j.Records()
	require.Len(t, recs, 3)
	require.Equal(t, []string{"rec-2", "rec-3", "rec-4"}, []string{recs[0].ID, recs[1].ID, recs[2].ID})
	require.Equal(t, int64(2), j.Dropped())
}

func TestMemoryJournalCopiesRecords(t *testing.T) {
	j := journal.NewMemoryJournal()
	ctx := context.Background()

	rec := record(1)
	require.NoError(t, j.Record(ctx, rec))
	rec.Values[0] = "changed"

	got := j.Records()[0]
	require.Equal(t, "k", got.Values[0])

	got.Values[0] = "changed again"
	require.Equal(t, "k", j.Records()[0].Values[0])
}

func TestMemoryJournalClose(t *testing.T) {
	j := journal.NewMemoryJournal()
	ctx := context.Background()

	require.NoError(t, j.Record(ctx, record(0)))
	require.NoError(t, j.Close())
	require.NoError(t, j.Close())
	require.True(t, j.IsClosed())

	require.ErrorIs(t, j.Record(ctx, record(1)), types.ErrSessionClosed)
	require.Len(t, j.Records(), 1, "records stay readable after Close")
}

func TestMemoryJournalConcurrentRecord(t *testing.T) {
	j := journal.NewMemoryJournal(journal.WithCapacity(50))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = j.Record(ctx, record(i))
		}()
	}
	wg.Wait()

	require.Equal(t, 50, j.Len())
	require.Equal(t, int64(50), j.Dropped())
}

func TestMemoryJournalAsRecorder(t *testing.T) {
	mock := testutil.NewMockSession()
	j := journal.NewMemoryJournal()
	session, err := quill.NewSession(mock, quill.WithRecorder(j))
	require.NoError(t, err)
	defer session.Close()

	ctx := context.Background()
	stmt := quill.NewStatement("INSERT INTO ks.t (k, v) VALUES (?, ?)", "a", nil).
		WithConsistency(quill.LocalQuorum)
	_, err = session.Execute(ctx, stmt)
	require.NoError(t, err)

	recs := j.Records()
	require.Len(t, recs, 1)
	require.Equal(t, types.KindRaw, recs[0].Kind)
	require.Equal(t, []any{"a", nil}, recs[0].Values)

	rebuilt, err := quill.StatementFromRecord(recs[0])
	require.NoError(t, err)
	require.True(t, stmt.Equal(rebuilt))
}
