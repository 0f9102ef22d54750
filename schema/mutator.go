// Package schema applies table-level schema changes through a quill.Executor.
//
// Each Mutator method checks its required lists locally, builds the DDL
// with the query package and executes it. A rejected call never reaches
// the server.
//
//	m, _ := schema.NewMutator(session)
//	err := m.DropColumns(ctx, "ks", "users", []string{"nickname"})
package schema

import (
	"context"

	"github.com/arloliu/quill"
	"github.com/arloliu/quill/query"
	"github.com/arloliu/quill/types"
)

// Table describes a table to create.
type Table struct {
	Keyspace string
	Name     string

	// Columns lists every column including the primary key columns, which
	// are marked with query.PartitionCol and query.ClusteringCol.
	Columns []query.Column

	ClusteringOrder []query.Ordering
	IfNotExists     bool

	// DefaultTTL is default_time_to_live in seconds; nil leaves the server default.
	DefaultTTL *int32
	Comment    string
}

// Mutator executes schema changes.
//
// Mutator is safe for concurrent use when its Executor is.
type Mutator struct {
	exec    quill.Executor
	options []func(quill.Statement) quill.Statement
}

// MutatorOption configures a Mutator.
type MutatorOption func(*Mutator)

// WithConsistency executes every schema change at level.
func WithConsistency(level types.Consistency) MutatorOption {
	return func(m *Mutator) {
		m.options = append(m.options, func(s quill.Statement) quill.Statement {
			return s.WithConsistency(level)
		})
	}
}

// WithTracing requests a trace for every schema change.
func WithTracing(enabled bool) MutatorOption {
	return func(m *Mutator) {
		m.options = append(m.options, func(s quill.Statement) quill.Statement {
			return s.WithTracing(enabled)
		})
	}
}

// NewMutator creates a Mutator.
//
// Parameters:
//   - exec: The executor, usually a *quill.Session
//   - opts: Statement options applied to every change
//
// Returns:
//   - *Mutator: The mutator
//   - error: types.ErrNilSession if exec is nil
func NewMutator(exec quill.Executor, opts ...MutatorOption) (*Mutator, error) {
	if exec == nil {
		return nil, types.ErrNilSession
	}

	m := &Mutator{exec: exec}
	for _, opt := range opts {
		opt(m)
	}

	return m, nil
}

// CreateTable creates a table.
//
// Returns:
//   - *quill.Result: The server response
//   - error: *types.InvalidArgumentError when columns is empty or the
//     definition is inconsistent, or the server error
func (m *Mutator) CreateTable(ctx context.Context, table Table) (*quill.Result, error) {
	if len(table.Columns) == 0 {
		return nil, types.NewInvalidArgument("schema.CreateTable", "columns", "must contain at least one element")
	}

	b := query.Create().Table(table.Keyspace, table.Name).Columns(table.Columns...)
	for _, o := range table.ClusteringOrder {
		b = b.ClusteringOrder(o.Column, o.Order)
	}
	if table.IfNotExists {
		b = b.IfNotExists()
	}
	if table.DefaultTTL != nil {
		b = b.DefaultTTL(*table.DefaultTTL)
	}
	if table.Comment != "" {
		b = b.Comment(table.Comment)
	}

	intent, err := b.Build()
	if err != nil {
		return nil, err
	}

	return m.execute(ctx, intent)
}

// DropTable drops keyspace.table. With ifExists a missing table is not an error.
func (m *Mutator) DropTable(ctx context.Context, keyspace, table string, ifExists bool) (*quill.Result, error) {
	b := query.Drop().Table(keyspace, table)
	if ifExists {
		b = b.IfExists()
	}

	intent, err := b.Build()
	if err != nil {
		return nil, err
	}

	return m.execute(ctx, intent)
}

// AddColumns adds regular or static columns to keyspace.table.
//
// Returns:
//   - *quill.Result: The server response
//   - error: *types.InvalidArgumentError when toAdd is empty, or the server error
func (m *Mutator) AddColumns(ctx context.Context, keyspace, table string, toAdd []query.Column) (*quill.Result, error) {
	if len(toAdd) == 0 {
		return nil, types.NewInvalidArgument("schema.AddColumns", "toAdd", "must contain at least one element")
	}

	intent, err := query.Alter().Table(keyspace, table).AddColumn(toAdd...).Build()
	if err != nil {
		return nil, err
	}

	return m.execute(ctx, intent)
}

// DropColumns drops columns from keyspace.table.
//
// Returns:
//   - *quill.Result: The server response
//   - error: *types.InvalidArgumentError when toDrop is empty, or the server error
func (m *Mutator) DropColumns(ctx context.Context, keyspace, table string, toDrop []string) (*quill.Result, error) {
	if len(toDrop) == 0 {
		return nil, types.NewInvalidArgument("schema.DropColumns", "toDrop", "must contain at least one element")
	}

	intent, err := query.Alter().Table(keyspace, table).DropColumn(toDrop...).Build()
	if err != nil {
		return nil, err
	}

	return m.execute(ctx, intent)
}

// RenameColumns renames primary key columns of keyspace.table in one statement.
func (m *Mutator) RenameColumns(ctx context.Context, keyspace, table string, renames []query.Rename) (*quill.Result, error) {
	if len(renames) == 0 {
		return nil, types.NewInvalidArgument("schema.RenameColumns", "renames", "must contain at least one element")
	}

	b := query.Alter().Table(keyspace, table).RenameColumn(renames[0].From, renames[0].To)
	for _, r := range renames[1:] {
		b = b.And(r.From, r.To)
	}

	intent, err := b.Build()
	if err != nil {
		return nil, err
	}

	return m.execute(ctx, intent)
}

func (m *Mutator) execute(ctx context.Context, intent query.Intent) (*quill.Result, error) {
	stmt := quill.StatementFor(intent)
	for _, apply := range m.options {
		stmt = apply(stmt)
	}

	return m.exec.Execute(ctx, stmt)
}
