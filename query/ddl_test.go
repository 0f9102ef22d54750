package query_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/quill/query"
	"github.com/arloliu/quill/types"
)

func TestAlterTableDropPreservesColumns(t *testing.T) {
	lists := [][]string{
		{"a"},
		{"b", "a"},
		{"z", "y", "x", "w"},
		{"Mixed", "lower", "order"},
	}

	for _, cols := range lists {
		t.Run(fmt.Sprint(cols), func(t *testing.T) {
			intent, err := query.Alter().Table("ks", "tbl").DropColumn(cols...).Build()
			require.NoError(t, err)
			require.Equal(t, cols, intent.Columns())
			require.Equal(t, types.KindAlterTableDrop, intent.Kind())
			require.Equal(t, "ks", intent.Keyspace())
			require.Equal(t, "tbl", intent.Table())
		})
	}
}

func TestAlterTableDropEmptyIsInvalid(t *testing.T) {
	intent, err := query.Alter().Table("ks", "tbl").DropColumn().Build()
	require.Nil(t, intent)
	require.ErrorIs(t, err, types.ErrInvalidArgument)

	var argErr *types.InvalidArgumentError
	require.True(t, errors.As(err, &argErr))
	require.Equal(t, "columns", argErr.Arg)
	require.Contains(t, argErr.Reason, "at least one element")
}

func TestAlterTableDropRender(t *testing.T) {
	one, err := query.Alter().Table("ks", "tbl").DropColumn("v").Build()
	require.NoError(t, err)
	text, values := one.Render()
	require.Equal(t, "ALTER TABLE ks.tbl DROP v", text)
	require.Empty(t, values)

	many, err := query.Alter().Table("ks", "Tbl").DropColumn("v", "userId").DropColumn("order").Build()
	require.NoError(t, err)
	text, _ = many.Render()
	require.Equal(t, `ALTER TABLE ks."Tbl" DROP (v, "userId", "order")`, text)
}

func TestAlterTableDropRejects(t *testing.T) {
	tests := []struct {
		name    string
		builder query.AlterTableDropBuilder
	}{
		{"empty keyspace", query.Alter().Table("", "t").DropColumn("a")},
		{"empty table", query.Alter().Table("ks", "").DropColumn("a")},
		{"empty column", query.Alter().Table("ks", "t").DropColumn("a", "")},
		{"duplicate column", query.Alter().Table("ks", "t").DropColumn("a", "a")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder.Build()
			require.ErrorIs(t, err, types.ErrInvalidArgument)
		})
	}
}

func TestBuilderIsPure(t *testing.T) {
	build := func() *query.AlterTableDrop {
		intent, err := query.Alter().Table("ks", "t").DropColumn("a", "b").Build()
		require.NoError(t, err)

		return intent
	}
	require.Equal(t, build(), build())

	base := query.Alter().Table("ks", "t").DropColumn("a")
	left, err := base.DropColumn("b").Build()
	require.NoError(t, err)
	right, err := base.DropColumn("c").Build()
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, left.Columns())
	require.Equal(t, []string{"a", "c"}, right.Columns())

	cols := left.Columns()
	cols[0] = "mutated"
	require.Equal(t, []string{"a", "b"}, left.Columns())
}

func TestCreateTableRender(t *testing.T) {
	intent, err := query.Create().Table("ks", "test").
		PartitionKey("k", query.Text).
		ClusteringKey("v", query.Int).
		Build()
	require.NoError(t, err)

	text, values := intent.Render()
	require.Equal(t, "CREATE TABLE ks.test (k text, v int, PRIMARY KEY (k, v))", text)
	require.Nil(t, values)
	require.Equal(t, []string{"k"}, intent.PartitionKey())
	require.Equal(t, []string{"v"}, intent.ClusteringKey())
}

func TestCreateTableWithOptions(t *testing.T) {
	intent, err := query.Create().Table("ks", "events").
		IfNotExists().
		PartitionKey("tenant", query.Text).
		PartitionKey("day", query.Date).
		ClusteringKey("at", query.TimeUUID).
		StaticColumn("owner", query.Text).
		Column("tags", query.Frozen(query.SetOf(query.Text))).
		Column("attrs", query.MapOf(query.Text, query.Text)).
		ClusteringOrder("at", query.Desc).
		DefaultTTL(86400).
		Comment("tenant's events").
		Build()
	require.NoError(t, err)
	require.True(t, intent.IfNotExists())

	text, _ := intent.Render()
	require.Equal(t,
		"CREATE TABLE IF NOT EXISTS ks.events (tenant text, day date, at timeuuid, owner text STATIC, "+
			"tags frozen<set<text>>, attrs map<text, text>, PRIMARY KEY ((tenant, day), at)) "+
			"WITH CLUSTERING ORDER BY (at DESC) AND default_time_to_live = 86400 AND comment = 'tenant''s events'",
		text)
}

func TestCreateTableRejects(t *testing.T) {
	tests := []struct {
		name    string
		builder query.CreateTableBuilder
	}{
		{"no columns", query.Create().Table("ks", "t")},
		{"no partition key", query.Create().Table("ks", "t").Column("a", query.Int)},
		{"missing type", query.Create().Table("ks", "t").PartitionKey("a", "")},
		{"duplicate", query.Create().Table("ks", "t").PartitionKey("a", query.Int).Column("a", query.Text)},
		{"order on regular", query.Create().Table("ks", "t").PartitionKey("a", query.Int).Column("b", query.Int).ClusteringOrder("b", query.Asc)},
		{"negative ttl", query.Create().Table("ks", "t").PartitionKey("a", query.Int).DefaultTTL(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder.Build()
			require.ErrorIs(t, err, types.ErrInvalidArgument)
		})
	}
}

func TestAlterTableAdd(t *testing.T) {
	one, err := query.Alter().Table("ks", "t").AddColumn(query.Col("email", query.Text)).Build()
	require.NoError(t, err)
	text, _ := one.Render()
	require.Equal(t, "ALTER TABLE ks.t ADD email text", text)

	many, err := query.Alter().Table("ks", "t").
		AddColumn(query.Col("a", query.Int)).
		AddColumn(query.StaticCol("b", query.ListOf(query.Text))).
		Build()
	require.NoError(t, err)
	text, _ = many.Render()
	require.Equal(t, "ALTER TABLE ks.t ADD (a int, b list<text> STATIC)", text)
	require.Len(t, many.Columns(), 2)

	_, err = query.Alter().Table("ks", "t").AddColumn().Build()
	require.ErrorIs(t, err, types.ErrInvalidArgument)

	_, err = query.Alter().Table("ks", "t").AddColumn(query.PartitionCol("p", query.Int)).Build()
	require.ErrorIs(t, err, types.ErrInvalidArgument)
}

func TestAlterTableRename(t *testing.T) {
	intent, err := query.Alter().Table("ks", "t").RenameColumn("k", "key").And("c", "Clustering").Build()
	require.NoError(t, err)
	text, _ := intent.Render()
	require.Equal(t, `ALTER TABLE ks.t RENAME k TO "key" AND c TO "Clustering"`, text)
	require.Equal(t, []query.Rename{{From: "k", To: "key"}, {From: "c", To: "Clustering"}}, intent.Renames())

	_, err = query.Alter().Table("ks", "t").RenameColumn("a", "a").Build()
	require.ErrorIs(t, err, types.ErrInvalidArgument)

	_, err = query.Alter().Table("ks", "t").RenameColumn("", "b").Build()
	require.ErrorIs(t, err, types.ErrInvalidArgument)
}

func TestDropTable(t *testing.T) {
	intent, err := query.Drop().Table("ks", "t").Build()
	require.NoError(t, err)
	text, _ := intent.Render()
	require.Equal(t, "DROP TABLE ks.t", text)
	require.False(t, intent.IfExists())

	intent, err = query.Drop().Table("ks", "t").IfExists().Build()
	require.NoError(t, err)
	text, _ = intent.Render()
	require.Equal(t, "DROP TABLE IF EXISTS ks.t", text)

	_, err = query.Drop().Table("ks", "").Build()
	require.ErrorIs(t, err, types.ErrInvalidArgument)
}

func TestQuoteIdent(t *testing.T) {
	require.Equal(t, "user_id", query.QuoteIdent("user_id"))
	require.Equal(t, `"userId"`, query.QuoteIdent("userId"))
	require.Equal(t, `"select"`, query.QuoteIdent("select"))
	require.Equal(t, `"1st"`, query.QuoteIdent("1st"))
	require.Equal(t, `"a""b"`, query.QuoteIdent(`a"b`))

	for _, word := range []string{"materialized", "mbean", "mbeans"} {
		require.Equal(t, `"`+word+`"`, query.QuoteIdent(word), word)
	}
}

func TestAlterTableDropQuotesReservedWords(t *testing.T) {
	intent, err := query.Alter().Table("ks", "t").DropColumn("materialized", "x").Build()
	require.NoError(t, err)

	text, _ := intent.Render()
	require.Equal(t, `ALTER TABLE ks.t DROP ("materialized", x)`, text)
}
