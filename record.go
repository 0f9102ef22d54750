package quill

import (
	"bytes"

	"github.com/arloliu/quill/bind"
	"github.com/arloliu/quill/types"
)

// recordOf converts a statement to its journal form without outcome fields.
func recordOf(stmt Statement) StatementRecord {
	return StatementRecord{
		Kind:              stmt.Kind(),
		Query:             stmt.text,
		Mode:              stmt.values.Mode(),
		Names:             stmt.values.Names(),
		Values:            stmt.values.Slice(),
		PageSize:          stmt.opts.PageSize,
		PagingState:       bytes.Clone(stmt.opts.PagingState),
		Tracing:           stmt.opts.Tracing,
		Idempotent:        stmt.opts.Idempotent,
		Timestamp:         clonePtr(stmt.opts.Timestamp),
		Consistency:       clonePtr(stmt.opts.Consistency),
		SerialConsistency: clonePtr(stmt.opts.SerialConsistency),
	}
}

// StatementFromRecord rebuilds the statement a record was made from.
//
// The rebuilt statement sends the same text, values and options. The intent
// is not kept by records, so Intent returns nil.
//
// Parameters:
//   - rec: A record produced by a Recorder
//
// Returns:
//   - Statement: The equivalent statement
//   - error: *types.InvalidArgumentError for an inconsistent record
func StatementFromRecord(rec StatementRecord) (Statement, error) {
	if rec.Query == "" {
		return Statement{}, types.NewInvalidArgument("quill.StatementFromRecord", "query", "must not be empty")
	}

	values, err := bind.Restore(rec.Mode, rec.Names, rec.Values)
	if err != nil {
		return Statement{}, err
	}

	kind := rec.Kind
	if kind == "" {
		kind = types.KindRaw
	}

	return Statement{
		text:   rec.Query,
		kind:   kind,
		values: values,
		opts: Options{
			PageSize:          rec.PageSize,
			PagingState:       bytes.Clone(rec.PagingState),
			Tracing:           rec.Tracing,
			Idempotent:        rec.Idempotent,
			Timestamp:         clonePtr(rec.Timestamp),
			Consistency:       clonePtr(rec.Consistency),
			SerialConsistency: clonePtr(rec.SerialConsistency),
		},
	}, nil
}

// Record returns the journal form of the statement.
//
// ID, RecordedAt and the outcome fields are left empty.
func (s Statement) Record() StatementRecord {
	return recordOf(s)
}
