package query

import (
	"slices"
	"strconv"
	"strings"

	"github.com/arloliu/quill/types"
)

// CreateBuilder is the CREATE entry point.
type CreateBuilder struct{}

// Create starts a CREATE statement.
func Create() CreateBuilder { return CreateBuilder{} }

// Table scopes the statement to keyspace.table.
func (CreateBuilder) Table(keyspace, table string) CreateTableBuilder {
	return CreateTableBuilder{target: target{keyspace: keyspace, table: table}}
}

// CreateTableBuilder assembles a CREATE TABLE statement.
type CreateTableBuilder struct {
	target
	columns     []Column
	ordering    []Ordering
	ifNotExists bool
	defaultTTL  *int32
	comment     string
	err         error
}

// Column adds a regular column.
func (b CreateTableBuilder) Column(name, typ string) CreateTableBuilder {
	return b.Columns(Col(name, typ))
}

// PartitionKey adds a partition key column. Call order sets key order.
func (b CreateTableBuilder) PartitionKey(name, typ string) CreateTableBuilder {
	return b.Columns(PartitionCol(name, typ))
}

// ClusteringKey adds a clustering column. Call order sets key order.
func (b CreateTableBuilder) ClusteringKey(name, typ string) CreateTableBuilder {
	return b.Columns(ClusteringCol(name, typ))
}

// StaticColumn adds a static column.
func (b CreateTableBuilder) StaticColumn(name, typ string) CreateTableBuilder {
	return b.Columns(StaticCol(name, typ))
}

// Columns adds column definitions.
func (b CreateTableBuilder) Columns(cols ...Column) CreateTableBuilder {
	b.columns = append(slices.Clip(b.columns), cols...)

	return b
}

// ClusteringOrder sets the on-disk order of a clustering column.
func (b CreateTableBuilder) ClusteringOrder(column string, order Order) CreateTableBuilder {
	b.ordering = append(slices.Clip(b.ordering), Ordering{Column: column, Order: order})

	return b
}

// IfNotExists makes creating an existing table a no-op.
func (b CreateTableBuilder) IfNotExists() CreateTableBuilder {
	b.ifNotExists = true

	return b
}

// DefaultTTL sets default_time_to_live in seconds.
func (b CreateTableBuilder) DefaultTTL(seconds int32) CreateTableBuilder {
	if seconds < 0 {
		b.err = firstErr(b.err, invalid("create.DefaultTTL", "seconds", "must not be negative"))
	}
	b.defaultTTL = &seconds

	return b
}

// Comment sets the table comment.
func (b CreateTableBuilder) Comment(comment string) CreateTableBuilder {
	b.comment = comment

	return b
}

// Build validates and returns the intent.
func (b CreateTableBuilder) Build() (*CreateTable, error) {
	const op = "create.Table"
	if err := firstErr(b.err, b.validate(op)); err != nil {
		return nil, err
	}

	names := make([]string, len(b.columns))
	for i, c := range b.columns {
		names[i] = c.Name
	}
	if err := checkNames(op, "columns", names); err != nil {
		return nil, err
	}

	var partition, clustering []string
	for _, c := range b.columns {
		if c.Type == "" {
			return nil, invalid(op, c.Name, "column type must not be empty")
		}
		switch c.Kind {
		case PartitionKey:
			partition = append(partition, c.Name)
		case ClusteringKey:
			clustering = append(clustering, c.Name)
		case Regular, Static:
		}
	}
	if len(partition) == 0 {
		return nil, invalid(op, "partition key", "must contain at least one element")
	}
	for _, o := range b.ordering {
		if !slices.Contains(clustering, o.Column) {
			return nil, invalid(op, o.Column, "clustering order refers to a non-clustering column")
		}
		if o.Order != Asc && o.Order != Desc {
			return nil, invalid(op, o.Column, "order must be ASC or DESC")
		}
	}

	return &CreateTable{
		target:      b.target,
		columns:     slices.Clone(b.columns),
		partition:   partition,
		clustering:  clustering,
		ordering:    slices.Clone(b.ordering),
		ifNotExists: b.ifNotExists,
		defaultTTL:  b.defaultTTL,
		comment:     b.comment,
	}, nil
}

// CreateTable is a CREATE TABLE intent.
type CreateTable struct {
	target
	columns     []Column
	partition   []string
	clustering  []string
	ordering    []Ordering
	ifNotExists bool
	defaultTTL  *int32
	comment     string
}

// Kind returns types.KindCreateTable.
func (c *CreateTable) Kind() Kind { return types.KindCreateTable }

// Columns returns the column definitions in declaration order.
func (c *CreateTable) Columns() []Column { return slices.Clone(c.columns) }

// PartitionKey returns the partition key columns in order.
func (c *CreateTable) PartitionKey() []string { return slices.Clone(c.partition) }

// ClusteringKey returns the clustering columns in order.
func (c *CreateTable) ClusteringKey() []string { return slices.Clone(c.clustering) }

// IfNotExists reports whether IF NOT EXISTS is set.
func (c *CreateTable) IfNotExists() bool { return c.ifNotExists }

// Render returns the CREATE TABLE text. It binds no values.
func (c *CreateTable) Render() (string, []any) {
	var sb strings.Builder
	sb.WriteString("CREATE TABLE ")
	if c.ifNotExists {
		sb.WriteString("IF NOT EXISTS ")
	}
	sb.WriteString(c.qualified())
	sb.WriteString(" (")
	for _, col := range c.columns {
		sb.WriteString(col.render())
		sb.WriteString(", ")
	}
	sb.WriteString("PRIMARY KEY (")
	pk := strings.Join(quoteAll(c.partition), ", ")
	if len(c.partition) > 1 {
		pk = "(" + pk + ")"
	}
	sb.WriteString(pk)
	for _, name := range c.clustering {
		sb.WriteString(", ")
		sb.WriteString(QuoteIdent(name))
	}
	sb.WriteString("))")

	var opts []string
	if len(c.ordering) > 0 {
		parts := make([]string, len(c.ordering))
		for i, o := range c.ordering {
			parts[i] = QuoteIdent(o.Column) + " " + string(o.Order)
		}
		opts = append(opts, "CLUSTERING ORDER BY ("+strings.Join(parts, ", ")+")")
	}
	if c.defaultTTL != nil {
		opts = append(opts, "default_time_to_live = "+strconv.FormatInt(int64(*c.defaultTTL), 10))
	}
	if c.comment != "" {
		opts = append(opts, "comment = '"+strings.ReplaceAll(c.comment, "'", "''")+"'")
	}
	if len(opts) > 0 {
		sb.WriteString(" WITH ")
		sb.WriteString(strings.Join(opts, " AND "))
	}

	return sb.String(), nil
}

// AlterBuilder is the ALTER entry point.
type AlterBuilder struct{}

// Alter starts an ALTER statement.
func Alter() AlterBuilder { return AlterBuilder{} }

// Table scopes the statement to keyspace.table.
func (AlterBuilder) Table(keyspace, table string) AlterTableBuilder {
	return AlterTableBuilder{target: target{keyspace: keyspace, table: table}}
}

// AlterTableBuilder selects the ALTER TABLE operation.
type AlterTableBuilder struct {
	target
}

// AddColumn starts an ADD operation with the given definitions.
func (b AlterTableBuilder) AddColumn(cols ...Column) AlterTableAddBuilder {
	return AlterTableAddBuilder{target: b.target, columns: slices.Clone(cols)}
}

// DropColumn starts a DROP operation for the named columns.
//
// Example:
//
//	intent, err := query.Alter().Table("ks", "users").DropColumn("nickname").Build()
func (b AlterTableBuilder) DropColumn(names ...string) AlterTableDropBuilder {
	return AlterTableDropBuilder{target: b.target, columns: slices.Clone(names)}
}

// RenameColumn starts a RENAME operation.
func (b AlterTableBuilder) RenameColumn(from, to string) AlterTableRenameBuilder {
	return AlterTableRenameBuilder{target: b.target, renames: []Rename{{From: from, To: to}}}
}

// AlterTableAddBuilder assembles ALTER TABLE ... ADD.
type AlterTableAddBuilder struct {
	target
	columns []Column
}

// AddColumn adds more definitions.
func (b AlterTableAddBuilder) AddColumn(cols ...Column) AlterTableAddBuilder {
	b.columns = append(slices.Clip(b.columns), cols...)

	return b
}

// Build validates and returns the intent.
func (b AlterTableAddBuilder) Build() (*AlterTableAdd, error) {
	const op = "alter.AddColumn"
	if err := b.validate(op); err != nil {
		return nil, err
	}

	names := make([]string, len(b.columns))
	for i, c := range b.columns {
		names[i] = c.Name
		if c.Type == "" {
			return nil, invalid(op, c.Name, "column type must not be empty")
		}
		if c.Kind == PartitionKey || c.Kind == ClusteringKey {
			return nil, invalid(op, c.Name, "primary key columns cannot be added")
		}
	}
	if err := checkNames(op, "columns", names); err != nil {
		return nil, err
	}

	return &AlterTableAdd{target: b.target, columns: slices.Clone(b.columns)}, nil
}

// AlterTableAdd is an ALTER TABLE ... ADD intent.
type AlterTableAdd struct {
	target
	columns []Column
}

// Kind returns types.KindAlterTableAdd.
func (a *AlterTableAdd) Kind() Kind { return types.KindAlterTableAdd }

// Columns returns the added definitions in order.
func (a *AlterTableAdd) Columns() []Column { return slices.Clone(a.columns) }

// Render returns the ALTER TABLE text. It binds no values.
func (a *AlterTableAdd) Render() (string, []any) {
	defs := make([]string, len(a.columns))
	for i, c := range a.columns {
		defs[i] = c.render()
	}
	if len(defs) == 1 {
		return "ALTER TABLE " + a.qualified() + " ADD " + defs[0], nil
	}

	return "ALTER TABLE " + a.qualified() + " ADD (" + strings.Join(defs, ", ") + ")", nil
}

// AlterTableDropBuilder assembles ALTER TABLE ... DROP.
type AlterTableDropBuilder struct {
	target
	columns []string
}

// DropColumn adds more columns to drop.
func (b AlterTableDropBuilder) DropColumn(names ...string) AlterTableDropBuilder {
	b.columns = append(slices.Clip(b.columns), names...)

	return b
}

// Build validates and returns the intent.
//
// An empty column list is rejected with *types.InvalidArgumentError.
func (b AlterTableDropBuilder) Build() (*AlterTableDrop, error) {
	const op = "alter.DropColumn"
	if err := b.validate(op); err != nil {
		return nil, err
	}
	if err := checkNames(op, "columns", b.columns); err != nil {
		return nil, err
	}

	return &AlterTableDrop{target: b.target, columns: slices.Clone(b.columns)}, nil
}

// AlterTableDrop is an ALTER TABLE ... DROP intent.
type AlterTableDrop struct {
	target
	columns []string
}

// Kind returns types.KindAlterTableDrop.
func (a *AlterTableDrop) Kind() Kind { return types.KindAlterTableDrop }

// Columns returns the dropped columns in the order given.
func (a *AlterTableDrop) Columns() []string { return slices.Clone(a.columns) }

// Render returns the ALTER TABLE text. It binds no values.
func (a *AlterTableDrop) Render() (string, []any) {
	cols := quoteAll(a.columns)
	if len(cols) == 1 {
		return "ALTER TABLE " + a.qualified() + " DROP " + cols[0], nil
	}

	return "ALTER TABLE " + a.qualified() + " DROP (" + strings.Join(cols, ", ") + ")", nil
}

// AlterTableRenameBuilder assembles ALTER TABLE ... RENAME.
type AlterTableRenameBuilder struct {
	target
	renames []Rename
}

// And adds another rename to the same statement.
func (b AlterTableRenameBuilder) And(from, to string) AlterTableRenameBuilder {
	b.renames = append(slices.Clip(b.renames), Rename{From: from, To: to})

	return b
}

// Build validates and returns the intent.
func (b AlterTableRenameBuilder) Build() (*AlterTableRename, error) {
	const op = "alter.RenameColumn"
	if err := b.validate(op); err != nil {
		return nil, err
	}
	if len(b.renames) == 0 {
		return nil, invalid(op, "renames", "must contain at least one element")
	}

	from := make([]string, len(b.renames))
	to := make([]string, len(b.renames))
	for i, r := range b.renames {
		from[i], to[i] = r.From, r.To
		if r.From == r.To {
			return nil, invalid(op, r.From, "rename target equals source")
		}
	}
	if err := checkNames(op, "from", from); err != nil {
		return nil, err
	}
	if err := checkNames(op, "to", to); err != nil {
		return nil, err
	}

	return &AlterTableRename{target: b.target, renames: slices.Clone(b.renames)}, nil
}

// AlterTableRename is an ALTER TABLE ... RENAME intent.
type AlterTableRename struct {
	target
	renames []Rename
}

// Kind returns types.KindAlterTableRename.
func (a *AlterTableRename) Kind() Kind { return types.KindAlterTableRename }

// Renames returns the renames in order.
func (a *AlterTableRename) Renames() []Rename { return slices.Clone(a.renames) }

// Render returns the ALTER TABLE text. It binds no values.
func (a *AlterTableRename) Render() (string, []any) {
	parts := make([]string, len(a.renames))
	for i, r := range a.renames {
		parts[i] = QuoteIdent(r.From) + " TO " + QuoteIdent(r.To)
	}

	return "ALTER TABLE " + a.qualified() + " RENAME " + strings.Join(parts, " AND "), nil
}

// DropBuilder is the DROP entry point.
type DropBuilder struct{}

// Drop starts a DROP statement.
func Drop() DropBuilder { return DropBuilder{} }

// Table scopes the statement to keyspace.table.
func (DropBuilder) Table(keyspace, table string) DropTableBuilder {
	return DropTableBuilder{target: target{keyspace: keyspace, table: table}}
}

// DropTableBuilder assembles DROP TABLE.
type DropTableBuilder struct {
	target
	ifExists bool
}

// IfExists makes dropping a missing table a no-op.
func (b DropTableBuilder) IfExists() DropTableBuilder {
	b.ifExists = true

	return b
}

// Build validates and returns the intent.
func (b DropTableBuilder) Build() (*DropTable, error) {
	if err := b.validate("drop.Table"); err != nil {
		return nil, err
	}

	return &DropTable{target: b.target, ifExists: b.ifExists}, nil
}

// DropTable is a DROP TABLE intent.
type DropTable struct {
	target
	ifExists bool
}

// Kind returns types.KindDropTable.
func (d *DropTable) Kind() Kind { return types.KindDropTable }

// IfExists reports whether IF EXISTS is set.
func (d *DropTable) IfExists() bool { return d.ifExists }

// Render returns the DROP TABLE text. It binds no values.
func (d *DropTable) Render() (string, []any) {
	if d.ifExists {
		return "DROP TABLE IF EXISTS " + d.qualified(), nil
	}

	return "DROP TABLE " + d.qualified(), nil
}
