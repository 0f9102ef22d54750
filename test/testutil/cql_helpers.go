package testutil

import (
	"context"
	"time"

	"github.com/arloliu/quill/adapter/cql"
)

// SlowCQLSession wraps a CQL session and adds artificial delay to all operations.
// This is useful for testing latency metrics and context deadlines.
type SlowCQLSession struct {
	Session cql.Session
	Delay   time.Duration
}

// Compile-time assertion that SlowCQLSession implements cql.Session.
var _ cql.Session = (*SlowCQLSession)(nil)

// Query returns a query that adds delay before execution.
func (s *SlowCQLSession) Query(stmt string, values ...any) cql.Query {
	return &SlowCQLQuery{
		Query: s.Session.Query(stmt, values...),
		Delay: s.Delay,
	}
}

// Close closes the wrapped session.
func (s *SlowCQLSession) Close() {
	s.Session.Close()
}

// SlowCQLQuery wraps a CQL query and delays every execution.
//
// The context variants stop waiting when the context is done and return the
// context error instead of executing.
type SlowCQLQuery struct {
	Query cql.Query
	Delay time.Duration
}

// Compile-time assertion that SlowCQLQuery implements cql.Query.
var _ cql.Query = (*SlowCQLQuery)(nil)

// WithContext sets the context for the query.
func (q *SlowCQLQuery) WithContext(ctx context.Context) cql.Query {
	q.Query = q.Query.WithContext(ctx)
	return q
}

// Consistency sets the consistency level.
func (q *SlowCQLQuery) Consistency(c cql.Consistency) cql.Query {
	q.Query = q.Query.Consistency(c)
	return q
}

// SerialConsistency sets the serial consistency level.
func (q *SlowCQLQuery) SerialConsistency(c cql.Consistency) cql.Query {
	q.Query = q.Query.SerialConsistency(c)
	return q
}

// PageSize sets the page size.
func (q *SlowCQLQuery) PageSize(n int) cql.Query {
	q.Query = q.Query.PageSize(n)
	return q
}

// PageState sets the page state for pagination.
func (q *SlowCQLQuery) PageState(state []byte) cql.Query {
	q.Query = q.Query.PageState(state)
	return q
}

// WithTimestamp sets the timestamp for the query.
func (q *SlowCQLQuery) WithTimestamp(ts int64) cql.Query {
	q.Query = q.Query.WithTimestamp(ts)
	return q
}

// Idempotent sets the idempotent flag.
func (q *SlowCQLQuery) Idempotent(value bool) cql.Query {
	q.Query = q.Query.Idempotent(value)
	return q
}

// Trace enables tracing.
func (q *SlowCQLQuery) Trace(tracer cql.Tracer) cql.Query {
	q.Query = q.Query.Trace(tracer)
	return q
}

// Exec executes the query with artificial delay.
func (q *SlowCQLQuery) Exec() error {
	time.Sleep(q.Delay)
	return q.Query.Exec()
}

// ExecContext executes the query with context and artificial delay.
func (q *SlowCQLQuery) ExecContext(ctx context.Context) error {
	if err := q.wait(ctx); err != nil {
		return err
	}

	return q.Query.ExecContext(ctx)
}

// Scan executes the query and scans the result with artificial delay.
func (q *SlowCQLQuery) Scan(dest ...any) error {
	time.Sleep(q.Delay)
	return q.Query.Scan(dest...)
}

// ScanContext executes and scans a single row with context.
func (q *SlowCQLQuery) ScanContext(ctx context.Context, dest ...any) error {
	if err := q.wait(ctx); err != nil {
		return err
	}

	return q.Query.ScanContext(ctx, dest...)
}

// Iter returns an iterator for the query results with artificial delay.
func (q *SlowCQLQuery) Iter() cql.Iter {
	time.Sleep(q.Delay)
	return q.Query.Iter()
}

// IterContext returns an iterator for the query results with context.
func (q *SlowCQLQuery) IterContext(ctx context.Context) cql.Iter {
	if err := q.wait(ctx); err != nil {
		return NewErrorIter(err)
	}

	return q.Query.IterContext(ctx)
}

// Statement returns the CQL statement.
func (q *SlowCQLQuery) Statement() string {
	return q.Query.Statement()
}

// Values returns the bound values.
func (q *SlowCQLQuery) Values() []any {
	return q.Query.Values()
}

// Release returns the query to a pool (if applicable).
func (q *SlowCQLQuery) Release() {
	q.Query.Release()
}

func (q *SlowCQLQuery) wait(ctx context.Context) error {
	timer := time.NewTimer(q.Delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
