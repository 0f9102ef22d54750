package journal

import (
	"testing"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tinylib/msgp/msgp"

	"github.com/arloliu/quill/types"
)

func TestRecordCodec(t *testing.T) {
	ts := int64(1_700_000_000_000_000)
	cl := types.LocalQuorum
	serial := types.LocalSerial
	id := uuid.New()

	rec := types.StatementRecord{
		ID:                "rec-1",
		Kind:              types.KindUpdate,
		Query:             "UPDATE ks.t SET v = :v WHERE k = :k IF EXISTS",
		Mode:              types.BindNamed,
		Names:             []string{"v", "k"},
		Values:            []any{nil, id},
		PageSize:          20,
		PagingState:       []byte{0x01, 0x02},
		Tracing:           true,
		Idempotent:        true,
		Timestamp:         &ts,
		Consistency:       &cl,
		SerialConsistency: &serial,
		RecordedAt:        ts + 5,
		Rows:              1,
		Error:             "",
	}

	data, err := marshalRecord(nil, rec)
	require.NoError(t, err)

	got, err := unmarshalRecord(data)
	require.NoError(t, err)

	require.Equal(t, rec.ID, got.ID)
	require.Equal(t, rec.Kind, got.Kind)
	require.Equal(t, rec.Query, got.Query)
	require.Equal(t, rec.Mode, got.Mode)
	require.Equal(t, rec.Names, got.Names)
	require.Nil(t, got.Values[0])
	require.Equal(t, id[:], got.Values[1], "uuids come back as bytes")
	require.Equal(t, rec.PageSize, got.PageSize)
	require.Equal(t, rec.PagingState, got.PagingState)
	require.True(t, got.Tracing)
	require.True(t, got.Idempotent)
	require.Equal(t, ts, *got.Timestamp)
	require.Equal(t, cl, *got.Consistency)
	require.Equal(t, serial, *got.SerialConsistency)
	require.Equal(t, rec.RecordedAt, got.RecordedAt)
	require.Equal(t, 1, got.Rows)
}

func TestRecordCodecOptionalFields(t *testing.T) {
	rec := types.StatementRecord{ID: "rec-2", Kind: types.KindRaw, Query: "TRUNCATE ks.t", Error: "timeout"}

	data, err := marshalRecord(nil, rec)
	require.NoError(t, err)

	got, err := unmarshalRecord(data)
	require.NoError(t, err)
	require.Nil(t, got.Timestamp)
	require.Nil(t, got.Consistency)
	require.Nil(t, got.SerialConsistency)
	require.Nil(t, got.PagingState)
	require.Nil(t, got.Values)
	require.Nil(t, got.Names)
	require.Equal(t, "timeout", got.Error)
}

func TestRecordCodecValueTypes(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	values := []any{
		"text",
		int64(42),
		3.5,
		true,
		[]byte("blob"),
		now,
		[]any{"a", "b"},
		map[string]any{"x": int64(1)},
	}

	data, err := marshalRecord(nil, types.StatementRecord{Query: "q", Mode: types.BindPositional, Values: values})
	require.NoError(t, err)

	got, err := unmarshalRecord(data)
	require.NoError(t, err)
	require.Len(t, got.Values, len(values))
	require.Equal(t, "text", got.Values[0])
	require.Equal(t, int64(42), got.Values[1])
	require.InDelta(t, 3.5, got.Values[2], 0)
	require.Equal(t, true, got.Values[3])
	require.Equal(t, []byte("blob"), got.Values[4])
	require.True(t, now.Equal(got.Values[5].(time.Time)))
	require.Equal(t, []any{"a", "b"}, got.Values[6])
	require.Equal(t, map[string]any{"x": int64(1)}, got.Values[7])
}

func TestRecordCodecRejectsUnset(t *testing.T) {
	_, err := marshalRecord(nil, types.StatementRecord{Query: "q", Values: []any{types.Unset}})
	require.Error(t, err)
}

func TestRecordCodecSkipsUnknownKeys(t *testing.T) {
	b := msgp.AppendMapHeader(nil, 2)
	b = msgp.AppendString(b, "future_field")
	b = msgp.AppendArrayHeader(b, 2)
	b = msgp.AppendInt(b, 1)
	b = msgp.AppendString(b, "x")
	b = msgp.AppendString(b, keyQuery)
	b = msgp.AppendString(b, "SELECT 1")

	got, err := unmarshalRecord(b)
	require.NoError(t, err)
	require.Equal(t, "SELECT 1", got.Query)
}

func TestRecordCodecMalformed(t *testing.T) {
	_, err := unmarshalRecord([]byte{0xc1})
	require.Error(t, err)

	data, err := marshalRecord(nil, types.StatementRecord{Query: "q"})
	require.NoError(t, err)
	_, err = unmarshalRecord(data[:len(data)-3])
	require.Error(t, err)
}

func TestAsUUID(t *testing.T) {
	t.Run("google uuid", func(t *testing.T) {
		id := uuid.New()
		got, ok := asUUID(id)
		require.True(t, ok)
		require.Equal(t, UUID(id), got)
		require.Equal(t, id.String(), got.String())
	})

	t.Run("gocql uuid", func(t *testing.T) {
		id := gocql.TimeUUID()
		got, ok := asUUID(id)
		require.True(t, ok)
		require.Equal(t, UUID(id), got)
	})

	t.Run("array pointer", func(t *testing.T) {
		var b [16]byte
		copy(b[:], "1234567890123456")
		got, ok := asUUID(&b)
		require.True(t, ok)
		require.Equal(t, UUID(b), got)
	})

	t.Run("nil pointer", func(t *testing.T) {
		var p *[16]byte
		_, ok := asUUID(p)
		require.False(t, ok)
	})

	t.Run("other types", func(t *testing.T) {
		for _, v := range []any{nil, "not a uuid", []byte("1234567890123456"), [8]byte{}} {
			_, ok := asUUID(v)
			require.False(t, ok, "%T", v)
		}
	})
}
