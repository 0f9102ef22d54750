package query

import (
	"slices"
	"strings"

	"github.com/arloliu/quill/types"
)

// SelectBuilder is the SELECT entry point.
type SelectBuilder struct {
	columns []string
}

// Select starts a SELECT statement. No columns selects *.
func Select(columns ...string) SelectBuilder {
	return SelectBuilder{columns: slices.Clone(columns)}
}

// From scopes the statement to keyspace.table.
func (b SelectBuilder) From(keyspace, table string) SelectFromBuilder {
	return SelectFromBuilder{target: target{keyspace: keyspace, table: table}, columns: b.columns}
}

// SelectFromBuilder assembles a SELECT.
type SelectFromBuilder struct {
	target
	columns           []string
	selectors         []string
	where             []Condition
	orderBy           []Ordering
	limit             int
	perPartitionLimit int
	allowFiltering    bool
	err               error
}

// Columns adds selected columns.
func (b SelectFromBuilder) Columns(names ...string) SelectFromBuilder {
	b.columns = append(slices.Clip(b.columns), names...)

	return b
}

// Selector adds a raw selector expression such as "COUNT(*)" or
// "WRITETIME(v)". It is emitted verbatim.
func (b SelectFromBuilder) Selector(expr string) SelectFromBuilder {
	if expr == "" {
		b.err = firstErr(b.err, invalid("select.Selector", "expr", "must not be empty"))
	}
	b.selectors = append(slices.Clip(b.selectors), expr)

	return b
}

// Where adds relations joined with AND.
func (b SelectFromBuilder) Where(conds ...Condition) SelectFromBuilder {
	b.where = append(slices.Clip(b.where), copyConditions(conds)...)

	return b
}

// OrderBy adds a result ordering on a clustering column.
func (b SelectFromBuilder) OrderBy(column string, order Order) SelectFromBuilder {
	b.orderBy = append(slices.Clip(b.orderBy), Ordering{Column: column, Order: order})

	return b
}

// Limit caps the total number of rows. It is independent of page size.
func (b SelectFromBuilder) Limit(n int) SelectFromBuilder {
	if n <= 0 {
		b.err = firstErr(b.err, invalid("select.Limit", "n", "must be positive"))
	}
	b.limit = n

	return b
}

// PerPartitionLimit caps the rows returned per partition.
func (b SelectFromBuilder) PerPartitionLimit(n int) SelectFromBuilder {
	if n <= 0 {
		b.err = firstErr(b.err, invalid("select.PerPartitionLimit", "n", "must be positive"))
	}
	b.perPartitionLimit = n

	return b
}

// AllowFiltering appends ALLOW FILTERING.
func (b SelectFromBuilder) AllowFiltering() SelectFromBuilder {
	b.allowFiltering = true

	return b
}

// Build validates and returns the intent.
func (b SelectFromBuilder) Build() (*SelectIntent, error) {
	const op = "select"
	if err := firstErr(b.err, b.validate(op)); err != nil {
		return nil, err
	}
	for _, c := range b.columns {
		if c == "" {
			return nil, invalid(op, "columns", "column name must not be empty")
		}
	}
	for _, c := range b.where {
		if err := c.validate(op); err != nil {
			return nil, err
		}
	}
	for _, o := range b.orderBy {
		if o.Column == "" || (o.Order != Asc && o.Order != Desc) {
			return nil, invalid(op, "order by", "needs a column and ASC or DESC")
		}
	}

	return &SelectIntent{
		target:            b.target,
		columns:           slices.Clone(b.columns),
		selectors:         slices.Clone(b.selectors),
		where:             copyConditions(b.where),
		orderBy:           slices.Clone(b.orderBy),
		limit:             b.limit,
		perPartitionLimit: b.perPartitionLimit,
		allowFiltering:    b.allowFiltering,
	}, nil
}

// SelectIntent is a SELECT intent.
type SelectIntent struct {
	target
	columns           []string
	selectors         []string
	where             []Condition
	orderBy           []Ordering
	limit             int
	perPartitionLimit int
	allowFiltering    bool
}

// Kind returns types.KindSelect.
func (s *SelectIntent) Kind() Kind { return types.KindSelect }

// Columns returns the selected column names.
func (s *SelectIntent) Columns() []string { return slices.Clone(s.columns) }

// Where returns the relations.
func (s *SelectIntent) Where() []Condition { return copyConditions(s.where) }

// Render returns the SELECT text and the relation values.
func (s *SelectIntent) Render() (string, []any) {
	var sb strings.Builder
	var values []any

	sb.WriteString("SELECT ")
	sel := append(quoteAll(s.columns), s.selectors...)
	if len(sel) == 0 {
		sb.WriteString("*")
	} else {
		sb.WriteString(strings.Join(sel, ", "))
	}
	sb.WriteString(" FROM ")
	sb.WriteString(s.qualified())

	if len(s.where) > 0 {
		var clause string
		clause, values = renderConditions(s.where, values)
		sb.WriteString(" WHERE ")
		sb.WriteString(clause)
	}
	if len(s.orderBy) > 0 {
		parts := make([]string, len(s.orderBy))
		for i, o := range s.orderBy {
			parts[i] = QuoteIdent(o.Column) + " " + string(o.Order)
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(parts, ", "))
	}
	if s.perPartitionLimit > 0 {
		sb.WriteString(" PER PARTITION LIMIT ?")
		values = append(values, s.perPartitionLimit)
	}
	if s.limit > 0 {
		sb.WriteString(" LIMIT ?")
		values = append(values, s.limit)
	}
	if s.allowFiltering {
		sb.WriteString(" ALLOW FILTERING")
	}

	return sb.String(), values
}

// writeOptions holds the USING clause shared by INSERT, UPDATE and DELETE.
type writeOptions struct {
	ttl       *int
	timestamp *int64
}

func (w writeOptions) render(values []any) (string, []any) {
	var parts []string
	if w.ttl != nil {
		parts = append(parts, "TTL ?")
		values = append(values, *w.ttl)
	}
	if w.timestamp != nil {
		parts = append(parts, "TIMESTAMP ?")
		values = append(values, *w.timestamp)
	}
	if len(parts) == 0 {
		return "", values
	}

	return " USING " + strings.Join(parts, " AND "), values
}

// InsertBuilder is the INSERT entry point.
type InsertBuilder struct{}

// Insert starts an INSERT statement.
func Insert() InsertBuilder { return InsertBuilder{} }

// Into scopes the statement to keyspace.table.
func (InsertBuilder) Into(keyspace, table string) InsertIntoBuilder {
	return InsertIntoBuilder{target: target{keyspace: keyspace, table: table}}
}

// InsertIntoBuilder assembles an INSERT.
type InsertIntoBuilder struct {
	target
	columns     []string
	values      []any
	ifNotExists bool
	using       writeOptions
	err         error
}

// Value binds a column. A nil value writes null.
func (b InsertIntoBuilder) Value(column string, value any) InsertIntoBuilder {
	b.columns = append(slices.Clip(b.columns), column)
	b.values = append(slices.Clip(b.values), value)

	return b
}

// IfNotExists makes the insert a lightweight transaction.
func (b InsertIntoBuilder) IfNotExists() InsertIntoBuilder {
	b.ifNotExists = true

	return b
}

// TTL sets the time to live in seconds.
func (b InsertIntoBuilder) TTL(seconds int) InsertIntoBuilder {
	if seconds < 0 {
		b.err = firstErr(b.err, invalid("insert.TTL", "seconds", "must not be negative"))
	}
	b.using.ttl = &seconds

	return b
}

// Timestamp sets the write timestamp in microseconds.
func (b InsertIntoBuilder) Timestamp(micros int64) InsertIntoBuilder {
	b.using.timestamp = &micros

	return b
}

// Build validates and returns the intent.
func (b InsertIntoBuilder) Build() (*InsertIntent, error) {
	const op = "insert"
	if err := firstErr(b.err, b.validate(op)); err != nil {
		return nil, err
	}
	if err := checkNames(op, "values", b.columns); err != nil {
		return nil, err
	}

	return &InsertIntent{
		target:      b.target,
		columns:     slices.Clone(b.columns),
		values:      slices.Clone(b.values),
		ifNotExists: b.ifNotExists,
		using:       b.using,
	}, nil
}

// InsertIntent is an INSERT intent.
type InsertIntent struct {
	target
	columns     []string
	values      []any
	ifNotExists bool
	using       writeOptions
}

// Kind returns types.KindInsert.
func (i *InsertIntent) Kind() Kind { return types.KindInsert }

// Columns returns the inserted columns in order.
func (i *InsertIntent) Columns() []string { return slices.Clone(i.columns) }

// Render returns the INSERT text and its values.
func (i *InsertIntent) Render() (string, []any) {
	values := slices.Clone(i.values)

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(i.qualified())
	sb.WriteString(" (")
	sb.WriteString(strings.Join(quoteAll(i.columns), ", "))
	sb.WriteString(") VALUES (")
	sb.WriteString(markers(len(i.columns)))
	sb.WriteString(")")
	if i.ifNotExists {
		sb.WriteString(" IF NOT EXISTS")
	}
	using, values := i.using.render(values)
	sb.WriteString(using)

	return sb.String(), values
}

// UpdateBuilder is the UPDATE entry point.
type UpdateBuilder struct{}

// Update starts an UPDATE statement.
func Update() UpdateBuilder { return UpdateBuilder{} }

// Table scopes the statement to keyspace.table.
func (UpdateBuilder) Table(keyspace, table string) UpdateTableBuilder {
	return UpdateTableBuilder{target: target{keyspace: keyspace, table: table}}
}

// UpdateTableBuilder assembles an UPDATE.
type UpdateTableBuilder struct {
	target
	assignments []Assignment
	where       []Condition
	ifExists    bool
	ifConds     []Condition
	using       writeOptions
	err         error
}

// Set adds assignments.
func (b UpdateTableBuilder) Set(assignments ...Assignment) UpdateTableBuilder {
	b.assignments = append(slices.Clip(b.assignments), assignments...)

	return b
}

// Where adds relations identifying the rows.
func (b UpdateTableBuilder) Where(conds ...Condition) UpdateTableBuilder {
	b.where = append(slices.Clip(b.where), copyConditions(conds)...)

	return b
}

// IfExists makes the update conditional on the row existing.
func (b UpdateTableBuilder) IfExists() UpdateTableBuilder {
	b.ifExists = true

	return b
}

// If adds lightweight transaction conditions.
func (b UpdateTableBuilder) If(conds ...Condition) UpdateTableBuilder {
	b.ifConds = append(slices.Clip(b.ifConds), copyConditions(conds)...)

	return b
}

// TTL sets the time to live in seconds.
func (b UpdateTableBuilder) TTL(seconds int) UpdateTableBuilder {
	if seconds < 0 {
		b.err = firstErr(b.err, invalid("update.TTL", "seconds", "must not be negative"))
	}
	b.using.ttl = &seconds

	return b
}

// Timestamp sets the write timestamp in microseconds.
func (b UpdateTableBuilder) Timestamp(micros int64) UpdateTableBuilder {
	b.using.timestamp = &micros

	return b
}

// Build validates and returns the intent.
func (b UpdateTableBuilder) Build() (*UpdateIntent, error) {
	const op = "update"
	if err := firstErr(b.err, b.validate(op)); err != nil {
		return nil, err
	}
	if len(b.assignments) == 0 {
		return nil, invalid(op, "assignments", "must contain at least one element")
	}
	for _, a := range b.assignments {
		if a.Column == "" {
			return nil, invalid(op, "assignments", "column name must not be empty")
		}
	}
	if err := validateWhere(op, b.where, b.ifExists, b.ifConds); err != nil {
		return nil, err
	}

	return &UpdateIntent{
		target:      b.target,
		assignments: slices.Clone(b.assignments),
		where:       copyConditions(b.where),
		ifExists:    b.ifExists,
		ifConds:     copyConditions(b.ifConds),
		using:       b.using,
	}, nil
}

// UpdateIntent is an UPDATE intent.
type UpdateIntent struct {
	target
	assignments []Assignment
	where       []Condition
	ifExists    bool
	ifConds     []Condition
	using       writeOptions
}

// Kind returns types.KindUpdate.
func (u *UpdateIntent) Kind() Kind { return types.KindUpdate }

// Render returns the UPDATE text and its values.
func (u *UpdateIntent) Render() (string, []any) {
	var sb strings.Builder
	var values []any

	sb.WriteString("UPDATE ")
	sb.WriteString(u.qualified())
	using, values := u.using.render(values)
	sb.WriteString(using)

	sets := make([]string, len(u.assignments))
	for i, a := range u.assignments {
		sets[i], values = a.render(values)
	}
	sb.WriteString(" SET ")
	sb.WriteString(strings.Join(sets, ", "))

	clause, values := renderConditions(u.where, values)
	sb.WriteString(" WHERE ")
	sb.WriteString(clause)

	cond, values := renderIf(u.ifExists, u.ifConds, values)
	sb.WriteString(cond)

	return sb.String(), values
}

// DeleteBuilder is the DELETE entry point.
type DeleteBuilder struct {
	columns []string
}

// Delete starts a DELETE statement. Columns limit the deletion to those
// cells; none deletes whole rows.
func Delete(columns ...string) DeleteBuilder {
	return DeleteBuilder{columns: slices.Clone(columns)}
}

// From scopes the statement to keyspace.table.
func (b DeleteBuilder) From(keyspace, table string) DeleteFromBuilder {
	return DeleteFromBuilder{target: target{keyspace: keyspace, table: table}, columns: b.columns}
}

// DeleteFromBuilder assembles a DELETE.
type DeleteFromBuilder struct {
	target
	columns  []string
	where    []Condition
	ifExists bool
	ifConds  []Condition
	using    writeOptions
}

// Where adds relations identifying the rows.
func (b DeleteFromBuilder) Where(conds ...Condition) DeleteFromBuilder {
	b.where = append(slices.Clip(b.where), copyConditions(conds)...)

	return b
}

// IfExists makes the delete conditional on the row existing.
func (b DeleteFromBuilder) IfExists() DeleteFromBuilder {
	b.ifExists = true

	return b
}

// If adds lightweight transaction conditions.
func (b DeleteFromBuilder) If(conds ...Condition) DeleteFromBuilder {
	b.ifConds = append(slices.Clip(b.ifConds), copyConditions(conds)...)

	return b
}

// Timestamp sets the deletion timestamp in microseconds.
func (b DeleteFromBuilder) Timestamp(micros int64) DeleteFromBuilder {
	b.using.timestamp = &micros

	return b
}

// Build validates and returns the intent.
func (b DeleteFromBuilder) Build() (*DeleteIntent, error) {
	const op = "delete"
	if err := b.validate(op); err != nil {
		return nil, err
	}
	if len(b.columns) > 0 {
		if err := checkNames(op, "columns", b.columns); err != nil {
			return nil, err
		}
	}
	if err := validateWhere(op, b.where, b.ifExists, b.ifConds); err != nil {
		return nil, err
	}

	return &DeleteIntent{
		target:   b.target,
		columns:  slices.Clone(b.columns),
		where:    copyConditions(b.where),
		ifExists: b.ifExists,
		ifConds:  copyConditions(b.ifConds),
		using:    b.using,
	}, nil
}

// DeleteIntent is a DELETE intent.
type DeleteIntent struct {
	target
	columns  []string
	where    []Condition
	ifExists bool
	ifConds  []Condition
	using    writeOptions
}

// Kind returns types.KindDelete.
func (d *DeleteIntent) Kind() Kind { return types.KindDelete }

// Render returns the DELETE text and its values.
func (d *DeleteIntent) Render() (string, []any) {
	var sb strings.Builder
	var values []any

	sb.WriteString("DELETE ")
	if len(d.columns) > 0 {
		sb.WriteString(strings.Join(quoteAll(d.columns), ", "))
		sb.WriteString(" ")
	}
	sb.WriteString("FROM ")
	sb.WriteString(d.qualified())
	using, values := d.using.render(values)
	sb.WriteString(using)

	clause, values := renderConditions(d.where, values)
	sb.WriteString(" WHERE ")
	sb.WriteString(clause)

	cond, values := renderIf(d.ifExists, d.ifConds, values)
	sb.WriteString(cond)

	return sb.String(), values
}

func validateWhere(op string, where []Condition, ifExists bool, ifConds []Condition) error {
	if len(where) == 0 {
		return invalid(op, "where", "must contain at least one element")
	}
	for _, c := range where {
		if err := c.validate(op); err != nil {
			return err
		}
	}
	if ifExists && len(ifConds) > 0 {
		return invalid(op, "if", "IF EXISTS cannot be combined with IF conditions")
	}
	for _, c := range ifConds {
		if err := c.validate(op); err != nil {
			return err
		}
	}

	return nil
}

func renderIf(ifExists bool, conds []Condition, values []any) (string, []any) {
	if ifExists {
		return " IF EXISTS", values
	}
	if len(conds) == 0 {
		return "", values
	}
	clause, values := renderConditions(conds, values)

	return " IF " + clause, values
}
