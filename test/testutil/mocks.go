package testutil

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arloliu/quill/adapter/cql"
	"github.com/arloliu/quill/types"
)

// Errors returned by MockSession in place of server errors.
var (
	// ErrMockBindMismatch is returned when the number of positional values
	// differs from the number of ? markers.
	ErrMockBindMismatch = errors.New("testutil: bind marker count mismatch")

	// ErrMockPagingState is returned for a paging state MockSession did not issue.
	ErrMockPagingState = errors.New("testutil: invalid paging state")

	// ErrMockNotFound is returned by Query.Scan when there is no row.
	ErrMockNotFound = errors.New("testutil: not found")
)

// pagingStatePrefix marks paging states issued by MockSession.
const pagingStatePrefix = "mock-page:"

// Dataset is the canned result of a statement.
type Dataset struct {
	Columns  []string
	Rows     [][]any
	Warnings []string
}

// QueryCall records one executed query and the options it carried.
type QueryCall struct {
	Statement         string
	Values            []any
	PageSize          int
	PageState         []byte
	PageStateSet      bool
	Consistency       *cql.Consistency
	SerialConsistency *cql.Consistency
	Timestamp         *int64
	Idempotent        bool
	Traced            bool
	TraceID           []byte
}

// MockTrace is the system_traces content registered for a trace id.
type MockTrace struct {
	Coordinator string
	Request     string
	Duration    time.Duration
	StartedAt   time.Time
	Parameters  map[string]string
	Events      []MockTraceEvent

	// pending is the number of session reads that see an incomplete row.
	pending int
}

// MockTraceEvent is one system_traces.events row.
type MockTraceEvent struct {
	ID            uuid.UUID
	Activity      string
	Source        string
	SourceElapsed time.Duration
	Thread        string
}

// MockSession is an in-memory implementation of cql.Session.
//
// It serves canned datasets keyed by statement text with real paging:
// page size limits each page, and the paging state it returns encodes the
// next offset. A paging state from anywhere else is rejected, so stale or
// corrupt tokens surface as an error. Traced queries get a version 1 trace
// id and matching system_traces rows.
type MockSession struct {
	mu       sync.Mutex
	closed   bool
	datasets map[string]*Dataset
	errs     map[string]error
	traces   map[uuid.UUID]*MockTrace
	calls    []QueryCall

	// TraceIgnored makes traced queries return no trace id, as some
	// backends do.
	TraceIgnored bool

	// TracePending is the number of reads of a new trace's session row that
	// return an incomplete row before it completes. Negative never completes.
	TracePending int

	// OnQuery, when set, overrides dataset lookup for every statement except
	// system_traces reads.
	OnQuery func(call QueryCall) (*Dataset, error)

	// OnClose is called when the session is closed.
	OnClose func()
}

// Compile-time assertion that MockSession implements cql.Session.
var _ cql.Session = (*MockSession)(nil)

// NewMockSession creates an empty mock session.
func NewMockSession() *MockSession {
	return &MockSession{
		datasets: make(map[string]*Dataset),
		errs:     make(map[string]error),
		traces:   make(map[uuid.UUID]*MockTrace),
	}
}

// SetRows registers the result of stmt.
func (m *MockSession) SetRows(stmt string, columns []string, rows ...[]any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.datasets[stmt] = &Dataset{Columns: slices.Clone(columns), Rows: cloneRows(rows)}
}

// SetDataset registers a full dataset for stmt.
func (m *MockSession) SetDataset(stmt string, ds Dataset) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.datasets[stmt] = &Dataset{
		Columns:  slices.Clone(ds.Columns),
		Rows:     cloneRows(ds.Rows),
		Warnings: slices.Clone(ds.Warnings),
	}
}

// SetQueryError configures stmt to fail with err.
func (m *MockSession) SetQueryError(stmt string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.errs[stmt] = err
}

// Calls returns the executed queries in order.
func (m *MockSession) Calls() []QueryCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.calls)
}

// CallsFor returns the executed queries with the given statement text.
func (m *MockSession) CallsFor(stmt string) []QueryCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []QueryCall
	for _, c := range m.calls {
		if c.Statement == stmt {
			out = append(out, c)
		}
	}

	return out
}

// LastCall returns the most recent query.
func (m *MockSession) LastCall() (QueryCall, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.calls) == 0 {
		return QueryCall{}, false
	}

	return m.calls[len(m.calls)-1], true
}

// Trace returns the trace registered for id.
func (m *MockSession) Trace(id uuid.UUID) (MockTrace, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tr, ok := m.traces[id]
	if !ok {
		return MockTrace{}, false
	}

	return *tr, true
}

// Query creates a new query for the given statement.
func (m *MockSession) Query(stmt string, values ...any) cql.Query {
	return &MockQuery{
		session: m,
		call: QueryCall{
			Statement: stmt,
			Values:    slices.Clone(values),
		},
	}
}

// Close marks the session as closed.
func (m *MockSession) Close() {
	m.mu.Lock()
	m.closed = true
	onClose := m.OnClose
	m.mu.Unlock()

	if onClose != nil {
		onClose()
	}
}

// IsClosed returns whether the session has been closed.
func (m *MockSession) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.closed
}

func (m *MockSession) run(ctx context.Context, q *MockQuery) *MockIter {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return &MockIter{err: err}
		}
	}

	call := q.call
	call.PageState = bytes.Clone(call.PageState)

	var traceID uuid.UUID
	if call.Traced && !m.TraceIgnored {
		traceID = uuid.Must(uuid.NewUUID())
		call.TraceID = traceID[:]
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return &MockIter{err: types.ErrSessionClosed}
	}
	m.calls = append(m.calls, call)
	if call.TraceID != nil {
		m.traces[traceID] = newMockTrace(call, m.TracePending)
	}
	m.mu.Unlock()

	if call.TraceID != nil && q.tracer != nil {
		q.tracer.Trace(bytes.Clone(call.TraceID))
	}

	ds, err := m.resolve(call)
	if err != nil {
		return &MockIter{err: err}
	}

	return pageOf(ds, call)
}

func (m *MockSession) resolve(call QueryCall) (*Dataset, error) {
	if err := checkBindCount(call.Statement, call.Values); err != nil {
		return nil, err
	}

	if strings.Contains(call.Statement, "system_traces.sessions") {
		return m.traceSession(call)
	}
	if strings.Contains(call.Statement, "system_traces.events") {
		return m.traceEvents(call)
	}

	m.mu.Lock()
	onQuery := m.OnQuery
	m.mu.Unlock()
	if onQuery != nil {
		return onQuery(call)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.errs[call.Statement]; ok {
		return nil, err
	}
	if ds, ok := m.datasets[call.Statement]; ok {
		return ds, nil
	}

	return &Dataset{}, nil
}

func (m *MockSession) traceSession(call QueryCall) (*Dataset, error) {
	cols := []string{"coordinator", "duration", "request", "started_at", "parameters"}
	id, ok := traceKey(call.Values)
	if !ok {
		return &Dataset{Columns: cols}, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	tr, ok := m.traces[id]
	if !ok {
		return &Dataset{Columns: cols}, nil
	}
	if tr.pending != 0 {
		if tr.pending > 0 {
			tr.pending--
		}
		// The session row exists before the duration is written.
		return &Dataset{Columns: cols, Rows: [][]any{{tr.Coordinator, nil, tr.Request, tr.StartedAt, nil}}}, nil
	}

	return &Dataset{Columns: cols, Rows: [][]any{{
		tr.Coordinator,
		int32(tr.Duration.Microseconds()),
		tr.Request,
		tr.StartedAt,
		maps.Clone(tr.Parameters),
	}}}, nil
}

func (m *MockSession) traceEvents(call QueryCall) (*Dataset, error) {
	ds := &Dataset{Columns: []string{"event_id", "activity", "source", "source_elapsed", "thread"}}
	id, ok := traceKey(call.Values)
	if !ok {
		return ds, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	tr, ok := m.traces[id]
	if !ok || tr.pending != 0 {
		return ds, nil
	}
	for _, ev := range tr.Events {
		ds.Rows = append(ds.Rows, []any{
			ev.ID, ev.Activity, ev.Source, int32(ev.SourceElapsed.Microseconds()), ev.Thread,
		})
	}

	return ds, nil
}

func newMockTrace(call QueryCall, pending int) *MockTrace {
	now := time.Now().UTC().Truncate(time.Millisecond)
	events := []MockTraceEvent{
		{Activity: "Parsing " + call.Statement, SourceElapsed: 40 * time.Microsecond},
		{Activity: "Preparing statement", SourceElapsed: 90 * time.Microsecond},
		{Activity: "Request complete", SourceElapsed: 210 * time.Microsecond},
	}
	for i := range events {
		events[i].ID = uuid.Must(uuid.NewUUID())
		events[i].Source = "127.0.0.1"
		events[i].Thread = "Native-Transport-Requests-1"
	}

	return &MockTrace{
		Coordinator: "127.0.0.1",
		Request:     "Execute CQL3 query",
		Duration:    250 * time.Microsecond,
		StartedAt:   now,
		Parameters:  map[string]string{"query": call.Statement},
		Events:      events,
		pending:     pending,
	}
}

func traceKey(values []any) (uuid.UUID, bool) {
	if len(values) != 1 {
		return uuid.Nil, false
	}
	raw, ok := values[0].([]byte)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.FromBytes(raw)

	return id, err == nil
}

// checkBindCount rejects positional binds whose count differs from the
// number of ? markers, the way a server rejects them.
func checkBindCount(stmt string, values []any) error {
	for _, v := range values {
		if _, named := v.(types.NamedValue); named {
			return nil
		}
	}

	markers := strings.Count(stmt, "?")
	if markers != len(values) {
		return fmt.Errorf("%w: statement has %d markers, got %d values", ErrMockBindMismatch, markers, len(values))
	}

	return nil
}

func pageOf(ds *Dataset, call QueryCall) *MockIter {
	offset := 0
	if len(call.PageState) > 0 {
		var err error
		offset, err = decodePagingState(call.PageState)
		if err != nil || offset > len(ds.Rows) {
			return &MockIter{err: ErrMockPagingState}
		}
	}

	end := len(ds.Rows)
	if call.PageSize > 0 {
		end = min(offset+call.PageSize, len(ds.Rows))
	}

	var next []byte
	if end < len(ds.Rows) {
		next = encodePagingState(end)
	}

	cols := make([]cql.ColumnInfo, len(ds.Columns))
	for i, name := range ds.Columns {
		cols[i] = cql.ColumnInfo{Name: name}
	}

	return &MockIter{
		columns:   cols,
		rows:      cloneRows(ds.Rows[offset:end]),
		pageState: next,
		warnings:  slices.Clone(ds.Warnings),
	}
}

func encodePagingState(offset int) []byte {
	buf := []byte(pagingStatePrefix)

	return binary.BigEndian.AppendUint32(buf, uint32(offset))
}

func decodePagingState(state []byte) (int, error) {
	rest, ok := bytes.CutPrefix(state, []byte(pagingStatePrefix))
	if !ok || len(rest) != 4 {
		return 0, ErrMockPagingState
	}

	return int(binary.BigEndian.Uint32(rest)), nil
}

// MockQuery is the cql.Query returned by MockSession.
type MockQuery struct {
	session *MockSession
	call    QueryCall
	ctx     context.Context
	tracer  cql.Tracer
}

// Compile-time assertion that MockQuery implements cql.Query.
var _ cql.Query = (*MockQuery)(nil)

// WithContext sets the context.
func (q *MockQuery) WithContext(ctx context.Context) cql.Query {
	q.ctx = ctx
	return q
}

// Consistency sets the consistency level.
func (q *MockQuery) Consistency(c cql.Consistency) cql.Query {
	q.call.Consistency = &c
	return q
}

// SerialConsistency sets the serial consistency level.
func (q *MockQuery) SerialConsistency(c cql.Consistency) cql.Query {
	q.call.SerialConsistency = &c
	return q
}

// PageSize sets the page size.
func (q *MockQuery) PageSize(n int) cql.Query {
	q.call.PageSize = n
	return q
}

// PageState sets the paging state.
func (q *MockQuery) PageState(state []byte) cql.Query {
	q.call.PageState = bytes.Clone(state)
	q.call.PageStateSet = true
	return q
}

// WithTimestamp sets the write timestamp.
func (q *MockQuery) WithTimestamp(ts int64) cql.Query {
	q.call.Timestamp = &ts
	return q
}

// Idempotent sets the idempotent flag.
func (q *MockQuery) Idempotent(value bool) cql.Query {
	q.call.Idempotent = value
	return q
}

// Trace enables tracing.
func (q *MockQuery) Trace(tracer cql.Tracer) cql.Query {
	q.tracer = tracer
	q.call.Traced = tracer != nil
	return q
}

// Exec executes the query.
func (q *MockQuery) Exec() error {
	return q.session.run(q.ctx, q).Close()
}

// ExecContext executes the query with context.
func (q *MockQuery) ExecContext(ctx context.Context) error {
	return q.session.run(ctx, q).Close()
}

// Scan executes the query and scans the first row.
func (q *MockQuery) Scan(dest ...any) error {
	return q.ScanContext(q.ctx, dest...)
}

// ScanContext executes the query and scans the first row with context.
func (q *MockQuery) ScanContext(ctx context.Context, dest ...any) error {
	iter := q.session.run(ctx, q)
	found := iter.Scan(dest...)
	if err := iter.Close(); err != nil {
		return err
	}
	if !found {
		return ErrMockNotFound
	}

	return nil
}

// Iter executes the query.
func (q *MockQuery) Iter() cql.Iter {
	return q.session.run(q.ctx, q)
}

// IterContext executes the query with context.
func (q *MockQuery) IterContext(ctx context.Context) cql.Iter {
	return q.session.run(ctx, q)
}

// Statement returns the statement text.
func (q *MockQuery) Statement() string {
	return q.call.Statement
}

// Values returns the bound values.
func (q *MockQuery) Values() []any {
	return q.call.Values
}

// Release is a no-op.
func (q *MockQuery) Release() {}

// MockIter iterates over one page of a Dataset.
type MockIter struct {
	columns   []cql.ColumnInfo
	rows      [][]any
	pos       int
	pageState []byte
	warnings  []string
	err       error
}

// Compile-time assertion that MockIter implements cql.Iter.
var _ cql.Iter = (*MockIter)(nil)

// NewMockIter creates an iterator over rows.
func NewMockIter(columns []string, rows [][]any, pageState []byte) *MockIter {
	cols := make([]cql.ColumnInfo, len(columns))
	for i, name := range columns {
		cols[i] = cql.ColumnInfo{Name: name}
	}

	return &MockIter{columns: cols, rows: cloneRows(rows), pageState: bytes.Clone(pageState)}
}

// NewErrorIter creates an iterator that fails with err on Close.
func NewErrorIter(err error) *MockIter {
	return &MockIter{err: err}
}

// Scan copies the next row into dest pointers.
func (i *MockIter) Scan(dest ...any) bool {
	if i.err != nil || i.pos >= len(i.rows) {
		return false
	}
	row := i.rows[i.pos]
	i.pos++

	for idx, d := range dest {
		if idx >= len(row) {
			break
		}
		assign(d, row[idx])
	}

	return true
}

// ScanValues returns the next row.
func (i *MockIter) ScanValues() ([]any, bool) {
	if i.err != nil || i.pos >= len(i.rows) {
		return nil, false
	}
	row := slices.Clone(i.rows[i.pos])
	i.pos++

	return row, true
}

// Close returns the query error, if any.
func (i *MockIter) Close() error {
	return i.err
}

// PageState returns the paging state for the next page.
func (i *MockIter) PageState() []byte {
	return bytes.Clone(i.pageState)
}

// NumRows returns the number of rows in the page.
func (i *MockIter) NumRows() int {
	return len(i.rows)
}

// Columns returns column metadata.
func (i *MockIter) Columns() []cql.ColumnInfo {
	return slices.Clone(i.columns)
}

// Warnings returns the dataset warnings.
func (i *MockIter) Warnings() []string {
	return slices.Clone(i.warnings)
}

func assign(dest, value any) {
	dv := reflect.ValueOf(dest)
	if dv.Kind() != reflect.Pointer || dv.IsNil() {
		return
	}
	target := dv.Elem()
	if value == nil {
		target.Set(reflect.Zero(target.Type()))
		return
	}

	vv := reflect.ValueOf(value)
	switch {
	case vv.Type().AssignableTo(target.Type()):
		target.Set(vv)
	case vv.Type().ConvertibleTo(target.Type()):
		target.Set(vv.Convert(target.Type()))
	}
}

func cloneRows(rows [][]any) [][]any {
	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = slices.Clone(r)
	}

	return out
}
