// Package cql provides CQL-specific adapter interfaces for different gocql versions.
package cql

import (
	"context"

	"github.com/arloliu/quill/types"
)

// Type aliases for convenience - re-export from types package.
type (
	Consistency = types.Consistency
	NamedValue  = types.NamedValue
)

// Re-export consistency level constants for convenience.
const (
	Any         = types.Any
	One         = types.One
	Two         = types.Two
	Three       = types.Three
	Quorum      = types.Quorum
	All         = types.All
	LocalQuorum = types.LocalQuorum
	EachQuorum  = types.EachQuorum
	Serial      = types.Serial
	LocalSerial = types.LocalSerial
	LocalOne    = types.LocalOne
)

// Session represents a raw CQL session from the underlying driver.
//
// This interface is implemented by adapters for gocql v1 and v2.
// It provides the low-level operations that quill drives.
type Session interface {
	// Query creates a new query for the given statement.
	//
	// Values may contain types.NamedValue entries for named binding and
	// types.Unset for unset parameters; adapters translate both into the
	// driver's own representation.
	//
	// Parameters:
	//   - stmt: CQL statement with ? or :name placeholders
	//   - values: Values to bind to placeholders
	//
	// Returns:
	//   - Query: A query builder
	Query(stmt string, values ...any) Query

	// Close terminates the session.
	Close()
}

// Query represents a raw CQL query from the underlying driver.
type Query interface {
	// WithContext associates a context with the query.
	// Deprecated: Use ExecContext, ScanContext or IterContext instead.
	WithContext(ctx context.Context) Query

	// Consistency sets the consistency level.
	Consistency(c Consistency) Query

	// SerialConsistency sets the consistency level for the serial phase of
	// lightweight transactions. Valid values are Serial or LocalSerial.
	SerialConsistency(c Consistency) Query

	// PageSize sets the page size.
	PageSize(n int) Query

	// PageState sets the pagination state.
	//
	// Setting a state, including nil, pins the query to a single page:
	// the iterator never fetches the next page on its own.
	PageState(state []byte) Query

	// WithTimestamp sets the write timestamp.
	WithTimestamp(ts int64) Query

	// Idempotent marks the query as safe to retry at the driver level.
	Idempotent(value bool) Query

	// Trace enables server-side tracing and reports the trace id to tracer.
	Trace(tracer Tracer) Query

	// Exec executes the query.
	Exec() error

	// ExecContext executes the query with context.
	ExecContext(ctx context.Context) error

	// Scan executes and scans a single row.
	Scan(dest ...any) error

	// ScanContext executes and scans a single row with context.
	ScanContext(ctx context.Context, dest ...any) error

	// Iter returns an iterator for results.
	Iter() Iter

	// IterContext returns an iterator for results with context.
	IterContext(ctx context.Context) Iter

	// Statement returns the CQL statement.
	Statement() string

	// Values returns the bound values.
	Values() []any

	// Release returns the query to a pool (if applicable).
	Release()
}

// Iter represents a raw CQL iterator from the underlying driver.
type Iter interface {
	// Scan reads the next row.
	Scan(dest ...any) bool

	// ScanValues reads the next row as one value per column.
	//
	// A null column is returned as an untyped nil, distinct from the zero
	// value of the column type.
	ScanValues() ([]any, bool)

	// Close closes the iterator and returns the query error, if any.
	Close() error

	// PageState returns the pagination token.
	PageState() []byte

	// NumRows returns the number of rows in the current page.
	NumRows() int

	// Columns returns metadata about the columns in the result set.
	Columns() []ColumnInfo

	// Warnings returns any warnings from the Cassandra server.
	Warnings() []string
}

// Tracer receives the server trace id of a traced query.
//
// The driver calls Trace synchronously once the response arrives. The id is
// the 16 byte session_id of system_traces.sessions.
type Tracer interface {
	Trace(traceID []byte)
}

// TracerFunc adapts a function to Tracer.
type TracerFunc func(traceID []byte)

// Trace calls f(traceID).
func (f TracerFunc) Trace(traceID []byte) {
	f(traceID)
}

// ColumnInfo holds metadata about a column in query results.
type ColumnInfo struct {
	Keyspace string
	Table    string
	Name     string
	TypeInfo any
}
