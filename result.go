package quill

import (
	"bytes"
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/arloliu/quill/adapter/cql"
	"github.com/arloliu/quill/types"
)

// ColumnInfo holds metadata about a result column.
type ColumnInfo = cql.ColumnInfo

// Row is one result row.
//
// A Row is always present once returned; whether a column is null is a
// separate question answered by IsNull.
type Row struct {
	columns []string
	values  []any
}

// NewRow creates a row from parallel column names and values.
//
// nil values are nulls. Both slices are copied.
func NewRow(columns []string, values []any) Row {
	return Row{columns: slices.Clone(columns), values: slices.Clone(values)}
}

// Len returns the number of columns.
func (r Row) Len() int { return len(r.values) }

// Columns returns a copy of the column names.
func (r Row) Columns() []string { return slices.Clone(r.columns) }

// Values returns a copy of the column values in column order.
func (r Row) Values() []any { return slices.Clone(r.values) }

// Has reports whether the row has a column called name.
func (r Row) Has(name string) bool { return r.index(name) >= 0 }

// Get returns the value of column name. Null columns return (nil, true).
func (r Row) Get(name string) (any, bool) {
	return r.GetAt(r.index(name))
}

// GetAt returns the value of column i.
func (r Row) GetAt(i int) (any, bool) {
	if i < 0 || i >= len(r.values) {
		return nil, false
	}

	return r.values[i], true
}

// IsNull reports whether column name is present and null.
func (r Row) IsNull(name string) bool {
	return r.IsNullAt(r.index(name))
}

// IsNullAt reports whether column i is present and null.
func (r Row) IsNullAt(i int) bool {
	v, ok := r.GetAt(i)

	return ok && v == nil
}

// Map returns the row as a column name to value map.
func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r.values))
	for i, v := range r.values {
		m[r.columns[i]] = v
	}

	return m
}

func (r Row) index(name string) int {
	return slices.Index(r.columns, name)
}

// Value returns column name of row as a T.
//
// A null column returns the zero value of T and no error; use Row.IsNull to
// tell it apart from a stored zero value.
//
// Returns:
//   - T: The column value
//   - error: *types.InvalidArgumentError for a missing column or a value
//     that is not a T
//
// Example:
//
//	v, err := quill.Value[int](row, "v")
func Value[T any](row Row, name string) (T, error) {
	var zero T

	raw, ok := row.Get(name)
	if !ok {
		return zero, types.NewInvalidArgument("quill.Value", name, "no such column")
	}
	if raw == nil {
		return zero, nil
	}

	v, ok := raw.(T)
	if !ok {
		return zero, types.NewInvalidArgument("quill.Value", name, fmt.Sprintf("column holds %T, not %T", raw, zero))
	}

	return v, nil
}

// Result is one page of an executed statement.
//
// The rows are fully buffered when Execute returns: iterating never touches
// the network, and reaching the end of the page never fetches the next one.
// Continue explicitly with NextPage or a Pager. A Result is not safe for
// concurrent use.
type Result struct {
	stmt        Statement
	columns     []ColumnInfo
	rows        []Row
	pos         int
	pagingState []byte
	traceID     []byte
	warnings    []string
	tracer      traceFetcher
}

type traceFetcher interface {
	FetchTrace(ctx context.Context, traceID []byte) (*QueryTrace, error)
}

// Statement returns the statement that produced the result.
func (r *Result) Statement() Statement { return r.stmt }

// Columns returns a copy of the column metadata.
func (r *Result) Columns() []ColumnInfo { return slices.Clone(r.columns) }

// AvailableWithoutFetching returns the number of rows left in the page.
//
// It never exceeds the requested page size.
func (r *Result) AvailableWithoutFetching() int { return len(r.rows) - r.pos }

// Next returns the next buffered row.
//
// It returns false at the end of the page, even when more pages exist.
func (r *Result) Next() (Row, bool) {
	if r.pos >= len(r.rows) {
		return Row{}, false
	}
	row := r.rows[r.pos]
	r.pos++

	return row, true
}

// One returns the next row, or false if the page is exhausted.
//
// It is a readability alias of Next for single-row queries.
func (r *Result) One() (Row, bool) { return r.Next() }

// All returns the remaining rows of the page and consumes them.
func (r *Result) All() []Row {
	rows := slices.Clone(r.rows[r.pos:])
	r.pos = len(r.rows)

	return rows
}

// PagingState returns a copy of the continuation token.
//
// nil means the result is the last page.
func (r *Result) PagingState() []byte { return bytes.Clone(r.pagingState) }

// HasMorePages reports whether the server returned a continuation token.
func (r *Result) HasMorePages() bool { return len(r.pagingState) > 0 }

// TracingID returns the server trace id, if the server traced the request.
//
// A traced statement may still come back without an id.
func (r *Result) TracingID() (uuid.UUID, bool) {
	id, err := uuid.FromBytes(r.traceID)
	if err != nil {
		return uuid.Nil, false
	}

	return id, true
}

// Warnings returns a copy of the server warnings.
func (r *Result) Warnings() []string { return slices.Clone(r.warnings) }

// QueryTrace fetches the trace of the request from the server.
//
// Returns:
//   - *QueryTrace: The trace with its events
//   - error: types.ErrNoTracingID if the result has no trace id,
//     types.ErrTraceUnavailable if the trace never completed
func (r *Result) QueryTrace(ctx context.Context) (*QueryTrace, error) {
	if len(r.traceID) == 0 {
		return nil, types.ErrNoTracingID
	}
	if r.tracer == nil {
		return nil, types.ErrNilSession
	}

	return r.tracer.FetchTrace(ctx, r.traceID)
}

// String summarizes the result for logs.
func (r *Result) String() string {
	return fmt.Sprintf("quill.Result{kind: %s, rows: %d, available: %d, more: %t}",
		r.stmt.Kind(), len(r.rows), r.AvailableWithoutFetching(), r.HasMorePages())
}

// columnNames returns the row column names for a page.
//
// Drivers expand tuple columns into several row values; when the counts
// disagree the names fall back to positional labels.
func columnNames(columns []ColumnInfo, width int) []string {
	names := make([]string, width)
	for i := range names {
		if width == len(columns) {
			names[i] = columns[i].Name
		} else {
			names[i] = fmt.Sprintf("[%d]", i)
		}
	}

	return names
}
