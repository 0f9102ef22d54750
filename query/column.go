package query

import "strings"

// Common CQL native types.
const (
	ASCII     = "ascii"
	BigInt    = "bigint"
	Blob      = "blob"
	Boolean   = "boolean"
	Counter   = "counter"
	Date      = "date"
	Decimal   = "decimal"
	Double    = "double"
	Duration  = "duration"
	Float     = "float"
	Inet      = "inet"
	Int       = "int"
	SmallInt  = "smallint"
	Text      = "text"
	Time      = "time"
	Timestamp = "timestamp"
	TimeUUID  = "timeuuid"
	TinyInt   = "tinyint"
	UUID      = "uuid"
	Varchar   = "varchar"
	Varint    = "varint"
)

// ListOf returns the type list<elem>.
func ListOf(elem string) string { return "list<" + elem + ">" }

// SetOf returns the type set<elem>.
func SetOf(elem string) string { return "set<" + elem + ">" }

// MapOf returns the type map<key, value>.
func MapOf(key, value string) string { return "map<" + key + ", " + value + ">" }

// TupleOf returns the type tuple<elems...>.
func TupleOf(elems ...string) string { return "tuple<" + strings.Join(elems, ", ") + ">" }

// Frozen returns the type frozen<inner>.
func Frozen(inner string) string { return "frozen<" + inner + ">" }

// ColumnKind is the role of a column in a table definition.
type ColumnKind uint8

const (
	// Regular is a non-key column.
	Regular ColumnKind = iota
	// PartitionKey is a partition key column.
	PartitionKey
	// ClusteringKey is a clustering column.
	ClusteringKey
	// Static is a column shared by every row of a partition.
	Static
)

// String returns the kind name.
func (k ColumnKind) String() string {
	switch k {
	case PartitionKey:
		return "partition_key"
	case ClusteringKey:
		return "clustering"
	case Static:
		return "static"
	case Regular:
		return "regular"
	}

	return "unknown"
}

// Column is a column definition.
type Column struct {
	Name string
	Type string
	Kind ColumnKind
}

// Col returns a regular column definition.
func Col(name, typ string) Column {
	return Column{Name: name, Type: typ, Kind: Regular}
}

// PartitionCol returns a partition key column definition.
func PartitionCol(name, typ string) Column {
	return Column{Name: name, Type: typ, Kind: PartitionKey}
}

// ClusteringCol returns a clustering column definition.
func ClusteringCol(name, typ string) Column {
	return Column{Name: name, Type: typ, Kind: ClusteringKey}
}

// StaticCol returns a static column definition.
func StaticCol(name, typ string) Column {
	return Column{Name: name, Type: typ, Kind: Static}
}

func (c Column) render() string {
	s := QuoteIdent(c.Name) + " " + c.Type
	if c.Kind == Static {
		s += " STATIC"
	}

	return s
}

// Order is a clustering or result ordering direction.
type Order string

const (
	// Asc orders ascending.
	Asc Order = "ASC"
	// Desc orders descending.
	Desc Order = "DESC"
)

// Ordering pairs a column with a direction.
type Ordering struct {
	Column string
	Order  Order
}

// Rename is one column rename.
type Rename struct {
	From string
	To   string
}
