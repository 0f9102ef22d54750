package query

import (
	"regexp"
	"strings"
)

var unquotedIdent = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// reservedWords are CQL keywords that cannot be used as bare identifiers.
var reservedWords = map[string]struct{}{
	"add": {}, "allow": {}, "alter": {}, "and": {}, "apply": {}, "asc": {},
	"authorize": {}, "batch": {}, "begin": {}, "by": {}, "columnfamily": {},
	"create": {}, "delete": {}, "desc": {}, "describe": {}, "drop": {},
	"entries": {}, "execute": {}, "from": {}, "full": {}, "grant": {}, "if": {},
	"in": {}, "index": {}, "infinity": {}, "insert": {}, "into": {},
	"keyspace": {}, "limit": {}, "materialized": {}, "mbean": {}, "mbeans": {},
	"modify": {}, "nan": {}, "norecursive": {},
	"not": {}, "null": {}, "of": {}, "on": {}, "or": {}, "order": {},
	"primary": {}, "rename": {}, "replace": {}, "revoke": {}, "schema": {},
	"select": {}, "set": {}, "table": {}, "to": {}, "token": {}, "truncate": {},
	"unlogged": {}, "update": {}, "use": {}, "using": {}, "view": {},
	"where": {}, "with": {},
}

// QuoteIdent renders a keyspace, table or column name.
//
// Lower-case names that are not reserved words are emitted bare. Anything
// else is double-quoted with embedded quotes doubled, which keeps its case.
//
// Example:
//
//	query.QuoteIdent("user_id") // user_id
//	query.QuoteIdent("userId")  // "userId"
//	query.QuoteIdent("order")   // "order"
func QuoteIdent(name string) string {
	if unquotedIdent.MatchString(name) {
		if _, reserved := reservedWords[name]; !reserved {
			return name
		}
	}

	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = QuoteIdent(n)
	}

	return out
}

func markers(n int) string {
	if n <= 0 {
		return ""
	}

	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
