package query

import "strings"

// Operator is a relation operator in a WHERE or IF clause.
type Operator string

// Supported relation operators.
const (
	OpEq          Operator = "="
	OpNe          Operator = "!="
	OpLt          Operator = "<"
	OpLte         Operator = "<="
	OpGt          Operator = ">"
	OpGte         Operator = ">="
	OpIn          Operator = "IN"
	OpContains    Operator = "CONTAINS"
	OpContainsKey Operator = "CONTAINS KEY"
)

// Condition is a single relation. Its values are always bound, never inlined.
type Condition struct {
	Column string
	Op     Operator
	Values []any
}

// Eq returns column = value.
func Eq(column string, value any) Condition { return rel(column, OpEq, value) }

// Ne returns column != value. Valid only in IF clauses.
func Ne(column string, value any) Condition { return rel(column, OpNe, value) }

// Lt returns column < value.
func Lt(column string, value any) Condition { return rel(column, OpLt, value) }

// Lte returns column <= value.
func Lte(column string, value any) Condition { return rel(column, OpLte, value) }

// Gt returns column > value.
func Gt(column string, value any) Condition { return rel(column, OpGt, value) }

// Gte returns column >= value.
func Gte(column string, value any) Condition { return rel(column, OpGte, value) }

// Contains returns column CONTAINS value.
func Contains(column string, value any) Condition { return rel(column, OpContains, value) }

// ContainsKey returns column CONTAINS KEY value.
func ContainsKey(column string, value any) Condition { return rel(column, OpContainsKey, value) }

// In returns column IN (values...). At least one value is required.
func In(column string, values ...any) Condition {
	return Condition{Column: column, Op: OpIn, Values: append([]any(nil), values...)}
}

func rel(column string, op Operator, value any) Condition {
	return Condition{Column: column, Op: op, Values: []any{value}}
}

func (c Condition) validate(op string) error {
	if c.Column == "" {
		return invalid(op, "column", "must not be empty")
	}
	if len(c.Values) == 0 {
		return invalid(op, c.Column, "relation needs at least one value")
	}
	if c.Op != OpIn && len(c.Values) != 1 {
		return invalid(op, c.Column, "relation takes exactly one value")
	}

	return nil
}

func (c Condition) render() string {
	if c.Op == OpIn {
		return QuoteIdent(c.Column) + " IN (" + markers(len(c.Values)) + ")"
	}

	return QuoteIdent(c.Column) + " " + string(c.Op) + " ?"
}

func renderConditions(conds []Condition, values []any) (string, []any) {
	parts := make([]string, len(conds))
	for i, c := range conds {
		parts[i] = c.render()
		values = append(values, c.Values...)
	}

	return strings.Join(parts, " AND "), values
}

func copyConditions(conds []Condition) []Condition {
	if conds == nil {
		return nil
	}
	out := make([]Condition, len(conds))
	for i, c := range conds {
		out[i] = Condition{Column: c.Column, Op: c.Op, Values: append([]any(nil), c.Values...)}
	}

	return out
}

type assignKind uint8

const (
	assignSet assignKind = iota
	assignAdd
	assignSubtract
	assignPrepend
	assignKey
)

// Assignment is one SET clause entry of an UPDATE.
type Assignment struct {
	Column string
	kind   assignKind
	key    any
	value  any
}

// Set returns column = value.
func Set(column string, value any) Assignment {
	return Assignment{Column: column, kind: assignSet, value: value}
}

// Increment returns column = column + delta, for counters.
func Increment(column string, delta int64) Assignment {
	return Assignment{Column: column, kind: assignAdd, value: delta}
}

// Decrement returns column = column - delta, for counters.
func Decrement(column string, delta int64) Assignment {
	return Assignment{Column: column, kind: assignSubtract, value: delta}
}

// AppendTo returns column = column + value, for lists, sets and maps.
func AppendTo(column string, value any) Assignment {
	return Assignment{Column: column, kind: assignAdd, value: value}
}

// PrependTo returns column = value + column, for lists.
func PrependTo(column string, value any) Assignment {
	return Assignment{Column: column, kind: assignPrepend, value: value}
}

// RemoveFrom returns column = column - value, for collections.
func RemoveFrom(column string, value any) Assignment {
	return Assignment{Column: column, kind: assignSubtract, value: value}
}

// SetKey returns column[key] = value, for maps and lists.
func SetKey(column string, key, value any) Assignment {
	return Assignment{Column: column, kind: assignKey, key: key, value: value}
}

func (a Assignment) render(values []any) (string, []any) {
	col := QuoteIdent(a.Column)
	switch a.kind {
	case assignAdd:
		return col + " = " + col + " + ?", append(values, a.value)
	case assignSubtract:
		return col + " = " + col + " - ?", append(values, a.value)
	case assignPrepend:
		return col + " = ? + " + col, append(values, a.value)
	case assignKey:
		return col + "[?] = ?", append(values, a.key, a.value)
	case assignSet:
	}

	return col + " = ?", append(values, a.value)
}
