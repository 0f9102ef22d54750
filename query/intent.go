// Package query builds typed CQL statements from structural intent.
//
// Builders are values: every chaining call returns a new builder and never
// shares slices with its receiver, so a partially built statement can be
// reused as a template. A terminal Build call validates the request and
// returns an immutable intent, or the first *types.InvalidArgumentError
// found. Builders never touch the network.
//
//	drop, err := query.Alter().Table("shop", "orders").DropColumn("note", "legacy_id").Build()
//	if err != nil {
//	    return err // errors.Is(err, types.ErrInvalidArgument)
//	}
//	text, values := drop.Render()
//	// ALTER TABLE shop.orders DROP (note, legacy_id)
package query

import (
	"github.com/arloliu/quill/types"
)

// Kind is the shape of an intent.
type Kind = types.StatementKind

// Intent is a validated, immutable statement description.
type Intent interface {
	// Kind returns the statement shape.
	Kind() Kind

	// Keyspace returns the target keyspace.
	Keyspace() string

	// Table returns the target table.
	Table() string

	// Render returns CQL text with ? markers and the values for those
	// markers in order. Each call returns a fresh values slice.
	Render() (string, []any)
}

// Compile-time assertions that every intent implements Intent.
var (
	_ Intent = (*CreateTable)(nil)
	_ Intent = (*AlterTableAdd)(nil)
	_ Intent = (*AlterTableDrop)(nil)
	_ Intent = (*AlterTableRename)(nil)
	_ Intent = (*DropTable)(nil)
	_ Intent = (*SelectIntent)(nil)
	_ Intent = (*InsertIntent)(nil)
	_ Intent = (*UpdateIntent)(nil)
	_ Intent = (*DeleteIntent)(nil)
)

type target struct {
	keyspace string
	table    string
}

// Keyspace returns the target keyspace.
func (t target) Keyspace() string { return t.keyspace }

// Table returns the target table.
func (t target) Table() string { return t.table }

func (t target) qualified() string {
	return QuoteIdent(t.keyspace) + "." + QuoteIdent(t.table)
}

func (t target) validate(op string) error {
	if t.keyspace == "" {
		return invalid(op, "keyspace", "must not be empty")
	}
	if t.table == "" {
		return invalid(op, "table", "must not be empty")
	}

	return nil
}

func invalid(op, arg, reason string) error {
	return types.NewInvalidArgument(op, arg, reason)
}

// firstErr keeps the first error seen by a builder chain.
func firstErr(current, next error) error {
	if current != nil {
		return current
	}

	return next
}

func checkNames(op, arg string, names []string) error {
	if len(names) == 0 {
		return invalid(op, arg, "must contain at least one element")
	}
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n == "" {
			return invalid(op, arg, "column name must not be empty")
		}
		if _, dup := seen[n]; dup {
			return invalid(op, n, "duplicate column")
		}
		seen[n] = struct{}{}
	}

	return nil
}
