// Package types provides shared types and errors for the quill library.
//
// This is a "leaf" package with no imports from other quill packages,
// allowing it to be imported by any package without causing import cycles.
package types

import (
	"errors"
)

// Consistency represents the Cassandra consistency level.
//
// Values are passed to the driver untouched; quill never validates or
// tunes them.
type Consistency uint16

// Common consistency levels matching gocql.
const (
	Any         Consistency = 0x00
	One         Consistency = 0x01
	Two         Consistency = 0x02
	Three       Consistency = 0x03
	Quorum      Consistency = 0x04
	All         Consistency = 0x05
	LocalQuorum Consistency = 0x06
	EachQuorum  Consistency = 0x07
	Serial      Consistency = 0x08
	LocalSerial Consistency = 0x09
	LocalOne    Consistency = 0x0A
)

var consistencyNames = map[Consistency]string{
	Any:         "ANY",
	One:         "ONE",
	Two:         "TWO",
	Three:       "THREE",
	Quorum:      "QUORUM",
	All:         "ALL",
	LocalQuorum: "LOCAL_QUORUM",
	EachQuorum:  "EACH_QUORUM",
	Serial:      "SERIAL",
	LocalSerial: "LOCAL_SERIAL",
	LocalOne:    "LOCAL_ONE",
}

// String returns the CQL name of the consistency level.
func (c Consistency) String() string {
	if name, ok := consistencyNames[c]; ok {
		return name
	}

	return "UNKNOWN"
}

// ParseConsistency returns the consistency level for a CQL name such as
// "LOCAL_QUORUM".
//
// Parameters:
//   - name: Upper-case CQL consistency name
//
// Returns:
//   - Consistency: The parsed level
//   - bool: false if the name is unknown
func ParseConsistency(name string) (Consistency, bool) {
	for c, n := range consistencyNames {
		if n == name {
			return c, true
		}
	}

	return 0, false
}

// StatementKind labels the shape of an executed statement.
//
// It is used for metrics labels and journal records.
type StatementKind string

const (
	// KindRaw is caller-supplied CQL text.
	KindRaw StatementKind = "raw"
	// KindCreateTable is CREATE TABLE.
	KindCreateTable StatementKind = "create_table"
	// KindAlterTableAdd is ALTER TABLE ... ADD.
	KindAlterTableAdd StatementKind = "alter_table_add"
	// KindAlterTableDrop is ALTER TABLE ... DROP.
	KindAlterTableDrop StatementKind = "alter_table_drop"
	// KindAlterTableRename is ALTER TABLE ... RENAME.
	KindAlterTableRename StatementKind = "alter_table_rename"
	// KindDropTable is DROP TABLE.
	KindDropTable StatementKind = "drop_table"
	// KindSelect is SELECT.
	KindSelect StatementKind = "select"
	// KindInsert is INSERT.
	KindInsert StatementKind = "insert"
	// KindUpdate is UPDATE.
	KindUpdate StatementKind = "update"
	// KindDelete is DELETE.
	KindDelete StatementKind = "delete"
)

// BindMode is the binding mode of a parameter set.
type BindMode uint8

const (
	// BindNone means no values are bound.
	BindNone BindMode = iota
	// BindPositional means values are bound by placeholder position.
	BindPositional
	// BindNamed means values are bound by parameter name.
	BindNamed
)

// String returns the mode name.
func (m BindMode) String() string {
	switch m {
	case BindPositional:
		return "positional"
	case BindNamed:
		return "named"
	case BindNone:
		return "none"
	}

	return "unknown"
}

// NamedValue is a bound value addressed by parameter name.
//
// Transport adapters translate it into the driver's named value type.
type NamedValue struct {
	Name  string
	Value any
}

// UnsetValue marks a parameter that is deliberately left unset.
//
// Unset differs from null: a null overwrites the column, an unset value
// leaves it untouched (protocol v4 and later).
type UnsetValue struct{}

// Unset is the unset marker passed to transport adapters.
var Unset = UnsetValue{}

// StatementRecord is the journal form of an executed statement.
//
// It holds everything needed to rebuild an equivalent statement and the
// outcome of the execution.
type StatementRecord struct {
	// ID uniquely identifies the record.
	ID string

	// Kind is the statement shape.
	Kind StatementKind

	// Query is the rendered CQL text.
	Query string

	// Mode is the binding mode of Values.
	Mode BindMode

	// Names holds the parameter names for BindNamed, parallel to Values.
	Names []string

	// Values are the bound values. nil entries are nulls.
	Values []any

	// PageSize is the requested page size, 0 for the default.
	PageSize int

	// PagingState is the continuation token the statement carried.
	PagingState []byte

	// Tracing reports whether a trace was requested.
	Tracing bool

	// Idempotent reports whether the statement carried the idempotent hint.
	Idempotent bool

	// Timestamp is the explicit write timestamp in microseconds, if any.
	Timestamp *int64

	// Consistency is the explicit consistency level, if any.
	Consistency *Consistency

	// SerialConsistency is the explicit serial consistency level, if any.
	SerialConsistency *Consistency

	// RecordedAt is the execution time in Unix microseconds.
	RecordedAt int64

	// Rows is the number of rows returned in the page.
	Rows int

	// Error is the error text, empty on success.
	Error string
}

// Sentinel errors for common failure scenarios.
var (
	// ErrInvalidArgument indicates a structurally impossible request that was
	// rejected locally, before any network call.
	ErrInvalidArgument = errors.New("quill: invalid argument")

	// ErrSessionClosed indicates an operation was attempted on a closed session.
	ErrSessionClosed = errors.New("quill: session is closed")

	// ErrNilSession indicates that a nil session was provided.
	ErrNilSession = errors.New("quill: session cannot be nil")

	// ErrPagingExhausted indicates a continuation was requested from a
	// result that carries no paging state.
	ErrPagingExhausted = errors.New("quill: paging exhausted")

	// ErrNoTracingID indicates a trace was requested for a result that
	// carries no tracing id.
	ErrNoTracingID = errors.New("quill: result has no tracing id")

	// ErrTraceUnavailable indicates the server did not finish writing the
	// trace within the configured attempts.
	ErrTraceUnavailable = errors.New("quill: trace is not available")
)

// InvalidArgumentError describes a locally rejected argument.
//
// It matches ErrInvalidArgument with errors.Is.
type InvalidArgumentError struct {
	// Op is the operation that rejected the argument.
	Op string

	// Arg names the offending argument.
	Arg string

	// Reason describes the violated constraint.
	Reason string
}

// Error implements the error interface.
func (e *InvalidArgumentError) Error() string {
	return "quill: invalid argument " + e.Arg + " for " + e.Op + ": " + e.Reason
}

// Unwrap returns ErrInvalidArgument for errors.Is compatibility.
func (e *InvalidArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

// NewInvalidArgument creates an InvalidArgumentError.
//
// Parameters:
//   - op: Operation name, e.g. "alter.DropColumn"
//   - arg: Argument name
//   - reason: Violated constraint
//
// Returns:
//   - error: An *InvalidArgumentError
func NewInvalidArgument(op, arg, reason string) error {
	return &InvalidArgumentError{Op: op, Arg: arg, Reason: reason}
}
