package journal

import (
	"errors"
	"fmt"
	"math"

	"github.com/tinylib/msgp/msgp"

	"github.com/arloliu/quill/types"
)

// Record field keys. Unknown keys are skipped on decode, so fields can be
// added without breaking older readers.
const (
	keyID                = "id"
	keyKind              = "kind"
	keyQuery             = "query"
	keyMode              = "mode"
	keyNames             = "names"
	keyValues            = "values"
	keyPageSize          = "page_size"
	keyPagingState       = "paging_state"
	keyTracing           = "tracing"
	keyIdempotent        = "idempotent"
	keyTimestamp         = "timestamp"
	keyConsistency       = "consistency"
	keySerialConsistency = "serial_consistency"
	keyRecordedAt        = "recorded_at"
	keyRows              = "rows"
	keyError             = "error"

	recordFields = 16
)

var errTooManyValues = errors.New("quill: too many values to encode")

// marshalRecord appends the MessagePack form of rec to b.
func marshalRecord(b []byte, rec types.StatementRecord) ([]byte, error) {
	b = msgp.AppendMapHeader(b, recordFields)

	b = msgp.AppendString(b, keyID)
	b = msgp.AppendString(b, rec.ID)
	b = msgp.AppendString(b, keyKind)
	b = msgp.AppendString(b, string(rec.Kind))
	b = msgp.AppendString(b, keyQuery)
	b = msgp.AppendString(b, rec.Query)
	b = msgp.AppendString(b, keyMode)
	b = msgp.AppendUint8(b, uint8(rec.Mode))

	b = msgp.AppendString(b, keyNames)
	if len(rec.Names) > math.MaxUint32 {
		return nil, errTooManyValues
	}
	b = msgp.AppendArrayHeader(b, uint32(len(rec.Names))) //nolint:gosec // bounded above
	for _, name := range rec.Names {
		b = msgp.AppendString(b, name)
	}

	b = msgp.AppendString(b, keyValues)
	b, err := appendValues(b, rec.Values)
	if err != nil {
		return nil, err
	}

	b = msgp.AppendString(b, keyPageSize)
	b = msgp.AppendInt(b, rec.PageSize)
	b = msgp.AppendString(b, keyPagingState)
	b = appendBytesOrNil(b, rec.PagingState)
	b = msgp.AppendString(b, keyTracing)
	b = msgp.AppendBool(b, rec.Tracing)
	b = msgp.AppendString(b, keyIdempotent)
	b = msgp.AppendBool(b, rec.Idempotent)

	b = msgp.AppendString(b, keyTimestamp)
	if rec.Timestamp == nil {
		b = msgp.AppendNil(b)
	} else {
		b = msgp.AppendInt64(b, *rec.Timestamp)
	}
	b = msgp.AppendString(b, keyConsistency)
	b = appendConsistency(b, rec.Consistency)
	b = msgp.AppendString(b, keySerialConsistency)
	b = appendConsistency(b, rec.SerialConsistency)

	b = msgp.AppendString(b, keyRecordedAt)
	b = msgp.AppendInt64(b, rec.RecordedAt)
	b = msgp.AppendString(b, keyRows)
	b = msgp.AppendInt(b, rec.Rows)
	b = msgp.AppendString(b, keyError)
	b = msgp.AppendString(b, rec.Error)

	return b, nil
}

// unmarshalRecord decodes a record written by marshalRecord.
func unmarshalRecord(b []byte) (types.StatementRecord, error) {
	var rec types.StatementRecord

	sz, b, err := msgp.ReadMapHeaderBytes(b)
	if err != nil {
		return rec, fmt.Errorf("quill: failed to read record header: %w", err)
	}

	for range sz {
		var key []byte
		key, b, err = msgp.ReadMapKeyZC(b)
		if err != nil {
			return rec, fmt.Errorf("quill: failed to read record key: %w", err)
		}

		b, err = decodeField(&rec, string(key), b)
		if err != nil {
			return rec, fmt.Errorf("quill: failed to decode %q: %w", key, err)
		}
	}

	return rec, nil
}

func decodeField(rec *types.StatementRecord, key string, b []byte) ([]byte, error) {
	var err error

	switch key {
	case keyID:
		rec.ID, b, err = msgp.ReadStringBytes(b)
	case keyKind:
		var kind string
		kind, b, err = msgp.ReadStringBytes(b)
		rec.Kind = types.StatementKind(kind)
	case keyQuery:
		rec.Query, b, err = msgp.ReadStringBytes(b)
	case keyMode:
		var mode uint8
		mode, b, err = msgp.ReadUint8Bytes(b)
		rec.Mode = types.BindMode(mode)
	case keyNames:
		rec.Names, b, err = readNames(b)
	case keyValues:
		rec.Values, b, err = readValues(b)
	case keyPageSize:
		rec.PageSize, b, err = msgp.ReadIntBytes(b)
	case keyPagingState:
		rec.PagingState, b, err = readBytesOrNil(b)
	case keyTracing:
		rec.Tracing, b, err = msgp.ReadBoolBytes(b)
	case keyIdempotent:
		rec.Idempotent, b, err = msgp.ReadBoolBytes(b)
	case keyTimestamp:
		if msgp.IsNil(b) {
			b, err = msgp.ReadNilBytes(b)
			break
		}
		var ts int64
		ts, b, err = msgp.ReadInt64Bytes(b)
		rec.Timestamp = &ts
	case keyConsistency:
		rec.Consistency, b, err = readConsistency(b)
	case keySerialConsistency:
		rec.SerialConsistency, b, err = readConsistency(b)
	case keyRecordedAt:
		rec.RecordedAt, b, err = msgp.ReadInt64Bytes(b)
	case keyRows:
		rec.Rows, b, err = msgp.ReadIntBytes(b)
	case keyError:
		rec.Error, b, err = msgp.ReadStringBytes(b)
	default:
		b, err = msgp.Skip(b)
	}

	return b, err
}

// appendValues encodes bound values as an array. 16 byte arrays are written
// as UUID extensions; everything else goes through msgp.AppendIntf.
func appendValues(b []byte, values []any) ([]byte, error) {
	if len(values) > math.MaxUint32 {
		return nil, errTooManyValues
	}

	b = msgp.AppendArrayHeader(b, uint32(len(values))) //nolint:gosec // bounded above
	for i, v := range values {
		var err error
		b, err = appendValue(b, v)
		if err != nil {
			return nil, fmt.Errorf("quill: failed to encode value %d: %w", i, err)
		}
	}

	return b, nil
}

func appendValue(b []byte, v any) ([]byte, error) {
	switch tv := v.(type) {
	case types.UnsetValue:
		return nil, errors.New("unset values cannot be journaled")
	case types.NamedValue:
		return nil, fmt.Errorf("named value %q must be recorded by name", tv.Name)
	}

	if u, ok := asUUID(v); ok {
		return msgp.AppendExtension(b, &u)
	}

	return msgp.AppendIntf(b, v)
}

func readValues(b []byte) ([]any, []byte, error) {
	sz, b, err := msgp.ReadArrayHeaderBytes(b)
	if err != nil {
		return nil, b, err
	}
	if sz == 0 {
		return nil, b, nil
	}

	values := make([]any, sz)
	for i := range values {
		var v any
		v, b, err = msgp.ReadIntfBytes(b)
		if err != nil {
			return nil, b, fmt.Errorf("value %d: %w", i, err)
		}
		if u, ok := v.(*UUID); ok {
			v = u.Bytes()
		}
		values[i] = v
	}

	return values, b, nil
}

func readNames(b []byte) ([]string, []byte, error) {
	sz, b, err := msgp.ReadArrayHeaderBytes(b)
	if err != nil || sz == 0 {
		return nil, b, err
	}

	names := make([]string, sz)
	for i := range names {
		names[i], b, err = msgp.ReadStringBytes(b)
		if err != nil {
			return nil, b, err
		}
	}

	return names, b, nil
}

func appendBytesOrNil(b, v []byte) []byte {
	if v == nil {
		return msgp.AppendNil(b)
	}

	return msgp.AppendBytes(b, v)
}

func readBytesOrNil(b []byte) ([]byte, []byte, error) {
	if msgp.IsNil(b) {
		b, err := msgp.ReadNilBytes(b)
		return nil, b, err
	}

	return msgp.ReadBytesBytes(b, nil)
}

func appendConsistency(b []byte, c *types.Consistency) []byte {
	if c == nil {
		return msgp.AppendNil(b)
	}

	return msgp.AppendUint16(b, uint16(*c))
}

func readConsistency(b []byte) (*types.Consistency, []byte, error) {
	if msgp.IsNil(b) {
		b, err := msgp.ReadNilBytes(b)
		return nil, b, err
	}

	v, b, err := msgp.ReadUint16Bytes(b)
	if err != nil {
		return nil, b, err
	}
	c := types.Consistency(v)

	return &c, b, nil
}
