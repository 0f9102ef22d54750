package quill

import (
	"bytes"
	"reflect"
	"slices"

	"github.com/arloliu/quill/bind"
	"github.com/arloliu/quill/query"
	"github.com/arloliu/quill/types"
)

// Options holds per-statement execution settings.
//
// Consistency, SerialConsistency and Idempotent are passed to the driver
// untouched.
type Options struct {
	// PageSize is the requested rows per page. Zero uses the session or
	// server default.
	PageSize int

	// PagingState is the opaque continuation token. nil requests the first page.
	PagingState []byte

	// Tracing asks the server to trace the request.
	Tracing bool

	// Timestamp is the write timestamp in microseconds. nil leaves it to the
	// session's timestamp provider or the server.
	Timestamp *int64

	Consistency       *Consistency
	SerialConsistency *Consistency
	Idempotent        bool
}

func (o Options) clone() Options {
	c := o
	c.PagingState = bytes.Clone(o.PagingState)
	c.Timestamp = clonePtr(o.Timestamp)
	c.Consistency = clonePtr(o.Consistency)
	c.SerialConsistency = clonePtr(o.SerialConsistency)

	return c
}

// Statement is an immutable, executable CQL statement.
//
// Every With method returns a new Statement and leaves the receiver
// unchanged, so a Statement can be shared between goroutines and used as a
// template for concurrent continuations.
type Statement struct {
	text   string
	kind   StatementKind
	intent query.Intent
	values bind.Values
	opts   Options
}

// NewStatement creates a statement from CQL text and positional values.
//
// Parameters:
//   - text: CQL text with ? placeholders
//   - values: Values in placeholder order; nil and bind.Null are nulls
//
// Returns:
//   - Statement: The statement
//
// Example:
//
//	stmt := quill.NewStatement("INSERT INTO ks.t (k, v) VALUES (?, ?)", "test", nil)
func NewStatement(text string, values ...any) Statement {
	return Statement{
		text:   text,
		kind:   types.KindRaw,
		values: bind.Of(values...),
	}
}

// NewNamedStatement creates a statement from CQL text and a prepared value set.
//
// Parameters:
//   - text: CQL text with :name placeholders (or ? for positional values)
//   - values: Named or positional values
//
// Returns:
//   - Statement: The statement
//
// Example:
//
//	vals, _ := bind.NamedOf(bind.Pair{Name: "k", Value: "test"}, bind.Pair{Name: "v", Value: bind.Null})
//	stmt := quill.NewNamedStatement("INSERT INTO ks.t (k, v) VALUES (:k, :v)", vals)
func NewNamedStatement(text string, values bind.Values) Statement {
	return Statement{
		text:   text,
		kind:   types.KindRaw,
		values: values,
	}
}

// StatementFor creates a statement from a built intent.
//
// The text and positional values come from intent.Render.
//
// Example:
//
//	intent, err := query.Alter().Table("ks", "t").DropColumn("v").Build()
//	if err != nil {
//	    return err
//	}
//	stmt := quill.StatementFor(intent)
func StatementFor(intent query.Intent) Statement {
	if intent == nil {
		return Statement{kind: types.KindRaw}
	}

	text, values := intent.Render()

	return Statement{
		text:   text,
		kind:   intent.Kind(),
		intent: intent,
		values: bind.Of(values...),
	}
}

// Text returns the CQL text.
func (s Statement) Text() string { return s.text }

// Kind returns the statement shape, types.KindRaw for text statements.
func (s Statement) Kind() StatementKind {
	if s.kind == "" {
		return types.KindRaw
	}

	return s.kind
}

// Intent returns the intent the statement was built from, or nil.
func (s Statement) Intent() query.Intent { return s.intent }

// Values returns the bound values.
func (s Statement) Values() bind.Values { return s.values }

// Options returns a copy of the execution options.
func (s Statement) Options() Options { return s.opts.clone() }

// PageSize returns the requested page size, 0 for the default.
func (s Statement) PageSize() int { return s.opts.PageSize }

// PagingState returns a copy of the paging state, nil for the first page.
func (s Statement) PagingState() []byte { return bytes.Clone(s.opts.PagingState) }

// Tracing reports whether tracing is requested.
func (s Statement) Tracing() bool { return s.opts.Tracing }

// Timestamp returns the explicit write timestamp, if any.
func (s Statement) Timestamp() (int64, bool) { return derefPtr(s.opts.Timestamp) }

// Consistency returns the explicit consistency level, if any.
func (s Statement) Consistency() (Consistency, bool) { return derefPtr(s.opts.Consistency) }

// SerialConsistency returns the explicit serial consistency level, if any.
func (s Statement) SerialConsistency() (Consistency, bool) {
	return derefPtr(s.opts.SerialConsistency)
}

// Idempotent reports whether the statement is marked idempotent.
func (s Statement) Idempotent() bool { return s.opts.Idempotent }

// WithPageSize returns a copy with the given page size. Zero restores the default.
func (s Statement) WithPageSize(n int) Statement {
	c := s.clone()
	c.opts.PageSize = n

	return c
}

// WithPagingState returns a copy that continues from state.
//
// state is copied; nil restarts from the first page.
func (s Statement) WithPagingState(state []byte) Statement {
	c := s.clone()
	c.opts.PagingState = bytes.Clone(state)

	return c
}

// WithTracing returns a copy with tracing switched on or off.
func (s Statement) WithTracing(enabled bool) Statement {
	c := s.clone()
	c.opts.Tracing = enabled

	return c
}

// WithTimestamp returns a copy with an explicit write timestamp in microseconds.
func (s Statement) WithTimestamp(ts int64) Statement {
	c := s.clone()
	c.opts.Timestamp = &ts

	return c
}

// WithConsistency returns a copy with an explicit consistency level.
func (s Statement) WithConsistency(level Consistency) Statement {
	c := s.clone()
	c.opts.Consistency = &level

	return c
}

// WithSerialConsistency returns a copy with an explicit serial consistency level.
func (s Statement) WithSerialConsistency(level Consistency) Statement {
	c := s.clone()
	c.opts.SerialConsistency = &level

	return c
}

// WithIdempotent returns a copy with the idempotent hint set.
func (s Statement) WithIdempotent(value bool) Statement {
	c := s.clone()
	c.opts.Idempotent = value

	return c
}

// WithValues returns a copy bound to the given positional values.
func (s Statement) WithValues(values ...any) Statement {
	c := s.clone()
	c.values = bind.Of(values...)

	return c
}

// WithNamedValues returns a copy bound to values.
func (s Statement) WithNamedValues(values bind.Values) Statement {
	c := s.clone()
	c.values = values

	return c
}

// Copy returns a statement identical to s except for its paging state.
//
// The receiver is never modified, so re-executing s still yields its own page.
func (s Statement) Copy(pagingState []byte) Statement {
	return s.WithPagingState(pagingState)
}

// Overrides lists the settings Derive replaces. nil fields keep the base value.
type Overrides struct {
	PageSize          *int
	PagingState       []byte
	FirstPage         bool
	Tracing           *bool
	Idempotent        *bool
	Timestamp         *int64
	Consistency       *Consistency
	SerialConsistency *Consistency
	Values            *bind.Values
}

// Derive returns a copy of base with the non-nil fields of o applied.
//
// A non-nil o.PagingState replaces the paging state; o.FirstPage clears it.
//
// Example:
//
//	size := 10
//	next := quill.Derive(stmt, quill.Overrides{PageSize: &size, FirstPage: true})
func Derive(base Statement, o Overrides) Statement {
	c := base.clone()
	if o.PageSize != nil {
		c.opts.PageSize = *o.PageSize
	}
	if o.FirstPage {
		c.opts.PagingState = nil
	} else if o.PagingState != nil {
		c.opts.PagingState = bytes.Clone(o.PagingState)
	}
	if o.Tracing != nil {
		c.opts.Tracing = *o.Tracing
	}
	if o.Idempotent != nil {
		c.opts.Idempotent = *o.Idempotent
	}
	if o.Timestamp != nil {
		c.opts.Timestamp = clonePtr(o.Timestamp)
	}
	if o.Consistency != nil {
		c.opts.Consistency = clonePtr(o.Consistency)
	}
	if o.SerialConsistency != nil {
		c.opts.SerialConsistency = clonePtr(o.SerialConsistency)
	}
	if o.Values != nil {
		c.values = *o.Values
	}

	return c
}

// Equal reports whether s and other would send the same request.
func (s Statement) Equal(other Statement) bool {
	if s.text != other.text || s.Kind() != other.Kind() {
		return false
	}
	if s.values.Mode() != other.values.Mode() ||
		!slices.Equal(s.values.Names(), other.values.Names()) ||
		!reflect.DeepEqual(s.values.Slice(), other.values.Slice()) {
		return false
	}

	a, b := s.opts, other.opts

	return a.PageSize == b.PageSize &&
		bytes.Equal(a.PagingState, b.PagingState) &&
		a.Tracing == b.Tracing &&
		a.Idempotent == b.Idempotent &&
		ptrEqual(a.Timestamp, b.Timestamp) &&
		ptrEqual(a.Consistency, b.Consistency) &&
		ptrEqual(a.SerialConsistency, b.SerialConsistency)
}

func (s Statement) validate(op string) error {
	if s.text == "" {
		return types.NewInvalidArgument(op, "text", "must not be empty")
	}
	if s.opts.PageSize < 0 {
		return types.NewInvalidArgument(op, "pageSize", "must not be negative")
	}

	return nil
}

// clone copies the options. Values and intents are immutable and shared.
func (s Statement) clone() Statement {
	c := s
	c.opts = s.opts.clone()

	return c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p

	return &v
}

func derefPtr[T any](p *T) (T, bool) {
	if p == nil {
		var zero T
		return zero, false
	}

	return *p, true
}

func ptrEqual[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}
