package quill

import (
	"bytes"
	"context"
	"slices"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/arloliu/quill/adapter/cql"
	"github.com/arloliu/quill/query"
	"github.com/arloliu/quill/types"
)

// Executor runs one statement and returns one page of results.
//
// Session implements Executor. Pager and schema.Mutator depend on this
// interface only.
type Executor interface {
	Execute(ctx context.Context, stmt Statement) (*Result, error)
}

// Recorder receives a record of every executed statement.
//
// Implementations must be safe for concurrent use. See the journal package.
type Recorder interface {
	Record(ctx context.Context, rec StatementRecord) error
}

// Session executes statements over a CQL driver session.
//
// Session is safe for concurrent use. It keeps no per-request state: every
// Execute call sends exactly one request and buffers exactly one page.
type Session struct {
	session cql.Session
	config  *Config
	closed  atomic.Bool
}

var (
	_ Executor     = (*Session)(nil)
	_ traceFetcher = (*Session)(nil)
)

// NewSession creates a Session over a driver session.
//
// Parameters:
//   - session: Driver session (v1.NewSession, v2.NewSession or a test fake)
//   - opts: Configuration options
//
// Returns:
//   - *Session: The session
//   - error: types.ErrNilSession if session is nil
//
// Example:
//
//	cluster := gocql.NewCluster("127.0.0.1")
//	raw, _ := cluster.CreateSession()
//	session, err := quill.NewSession(v1.NewSession(raw),
//	    quill.WithDefaultPageSize(500),
//	    quill.WithSlogLogger(slog.Default()),
//	)
func NewSession(session cql.Session, opts ...Option) (*Session, error) {
	if session == nil {
		return nil, types.ErrNilSession
	}

	config := DefaultConfig()
	for _, opt := range opts {
		opt(config)
	}
	config.normalize()

	return &Session{
		session: session,
		config:  config,
	}, nil
}

// Execute sends stmt and returns the first page it addresses.
//
// The statement's paging state is always sent (nil for the first page),
// which keeps the driver from fetching further pages on its own. Errors from
// the driver or the server are returned unchanged.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - stmt: The statement to execute
//
// Returns:
//   - *Result: One buffered page
//   - error: types.ErrSessionClosed, *types.InvalidArgumentError for an
//     unusable statement, or the driver error
func (s *Session) Execute(ctx context.Context, stmt Statement) (*Result, error) {
	if s.closed.Load() {
		return nil, types.ErrSessionClosed
	}

	kind := stmt.Kind()
	if err := stmt.validate("quill.Execute"); err != nil {
		s.config.Metrics.IncBuildError(kind)
		return nil, err
	}

	start := time.Now()
	s.config.Metrics.IncExecuteTotal(kind)
	if len(stmt.opts.PagingState) > 0 {
		s.config.Metrics.IncContinuationTotal(kind)
	}

	var traceID []byte
	q := s.prepare(stmt, &traceID)
	defer q.Release()

	iter := q.IterContext(ctx)
	columns := iter.Columns()
	rows := drainPage(iter, columns)
	pagingState := bytes.Clone(iter.PageState())
	warnings := slices.Clone(iter.Warnings())
	err := iter.Close()

	s.config.Metrics.ObserveExecuteDuration(kind, time.Since(start).Seconds())
	if err != nil {
		s.config.Metrics.IncExecuteError(kind)
		s.config.Logger.Debug("quill: statement failed",
			"kind", string(kind),
			"statement", stmt.text,
			"error", err.Error(),
		)
		s.record(ctx, stmt, 0, err)

		return nil, err
	}

	s.config.Metrics.ObservePageRows(len(rows))
	if stmt.opts.Tracing {
		s.config.Metrics.IncTracedTotal()
	}
	for _, w := range warnings {
		s.config.Logger.Warn("quill: server warning", "kind", string(kind), "warning", w)
	}
	s.record(ctx, stmt, len(rows), nil)

	return &Result{
		stmt:        stmt,
		columns:     columns,
		rows:        rows,
		pagingState: pagingState,
		traceID:     traceID,
		warnings:    warnings,
		tracer:      s,
	}, nil
}

// ExecuteText executes CQL text with positional values.
//
// Example:
//
//	res, err := session.ExecuteText(ctx, "SELECT k, v FROM ks.t WHERE k = ?", "test")
func (s *Session) ExecuteText(ctx context.Context, text string, values ...any) (*Result, error) {
	return s.Execute(ctx, NewStatement(text, values...))
}

// ExecuteIntent executes a built intent with default options.
func (s *Session) ExecuteIntent(ctx context.Context, intent query.Intent) (*Result, error) {
	if intent == nil {
		return nil, types.NewInvalidArgument("quill.ExecuteIntent", "intent", "must not be nil")
	}

	return s.Execute(ctx, StatementFor(intent))
}

// Pager returns a pager that walks stmt page by page through this session.
func (s *Session) Pager(stmt Statement) *Pager {
	p := NewPager(s, stmt)
	p.metrics = s.config.Metrics

	return p
}

// Close closes the session and the underlying driver session.
//
// Close is idempotent. Every later call returns types.ErrSessionClosed.
func (s *Session) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	s.session.Close()
}

// IsClosed reports whether Close has been called.
func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

func (s *Session) prepare(stmt Statement, traceID *[]byte) cql.Query {
	opts := stmt.opts
	q := s.session.Query(stmt.text, stmt.values.Encode()...)

	pageSize := opts.PageSize
	if pageSize == 0 {
		pageSize = s.config.DefaultPageSize
	}
	if pageSize > 0 {
		q = q.PageSize(pageSize)
	}
	q = q.PageState(bytes.Clone(opts.PagingState))

	switch {
	case opts.Consistency != nil:
		q = q.Consistency(*opts.Consistency)
	case s.config.DefaultConsistency != nil:
		q = q.Consistency(*s.config.DefaultConsistency)
	}
	if opts.SerialConsistency != nil {
		q = q.SerialConsistency(*opts.SerialConsistency)
	}

	switch {
	case opts.Timestamp != nil:
		q = q.WithTimestamp(*opts.Timestamp)
	case s.config.TimestampProvider != nil:
		q = q.WithTimestamp(s.config.TimestampProvider())
	}

	if opts.Idempotent {
		q = q.Idempotent(true)
	}
	if opts.Tracing {
		q = q.Trace(cql.TracerFunc(func(id []byte) {
			*traceID = bytes.Clone(id)
		}))
	}

	return q
}

// drainPage reads the rows of the current page.
//
// The read is bounded by the page's row count, so it never crosses into a
// page the driver has not been asked for.
func drainPage(iter cql.Iter, columns []ColumnInfo) []Row {
	n := iter.NumRows()
	if n <= 0 {
		return nil
	}

	rows := make([]Row, 0, n)
	var names []string
	for range n {
		values, ok := iter.ScanValues()
		if !ok {
			break
		}
		if names == nil || len(names) != len(values) {
			names = columnNames(columns, len(values))
		}
		rows = append(rows, Row{columns: names, values: values})
	}

	return rows
}

func (s *Session) record(ctx context.Context, stmt Statement, rows int, execErr error) {
	if s.config.Recorder == nil {
		return
	}

	rec := recordOf(stmt)
	rec.ID = uuid.NewString()
	rec.RecordedAt = time.Now().UnixMicro()
	rec.Rows = rows
	if execErr != nil {
		rec.Error = execErr.Error()
	}

	if err := s.config.Recorder.Record(context.WithoutCancel(ctx), rec); err != nil {
		s.config.Metrics.IncJournalError()
		s.config.Logger.Warn("quill: failed to record statement",
			"kind", string(rec.Kind),
			"statement", rec.Query,
			"error", err.Error(),
		)

		return
	}
	s.config.Metrics.IncJournalRecorded()
}
