package v2

import (
	gocql "github.com/apache/cassandra-gocql-driver/v2"

	"github.com/arloliu/quill/adapter/cql"
	"github.com/arloliu/quill/types"
)

// ToGocqlConsistency converts a quill Consistency to gocql.Consistency.
//
// The v2 driver uses the same type for regular and serial consistency.
//
// Example:
//
//	cluster := gocql.NewCluster("127.0.0.1")
//	cluster.Consistency = v2.ToGocqlConsistency(cql.Quorum)
func ToGocqlConsistency(c cql.Consistency) gocql.Consistency {
	return gocql.Consistency(c)
}

// FromGocqlConsistency converts a gocql.Consistency to quill Consistency.
func FromGocqlConsistency(c gocql.Consistency) cql.Consistency {
	return cql.Consistency(c)
}

// ToDriverValues translates quill binding markers into driver values.
//
// types.NamedValue becomes gocql.NamedValue and types.Unset becomes
// gocql.UnsetValue. The input slice is never modified.
func ToDriverValues(values []any) []any {
	out := values
	copied := false
	for i, v := range values {
		converted, changed := toDriverValue(v)
		if !changed {
			continue
		}
		if !copied {
			out = make([]any, len(values))
			copy(out, values)
			copied = true
		}
		out[i] = converted
	}

	return out
}

func toDriverValue(v any) (any, bool) {
	switch tv := v.(type) {
	case types.NamedValue:
		inner, _ := toDriverValue(tv.Value)
		return gocql.NamedValue(tv.Name, inner), true
	case types.UnsetValue:
		return gocql.UnsetValue, true
	default:
		return v, false
	}
}

// UnwrapSession returns the underlying gocql.Session from a quill Session adapter.
func UnwrapSession(s *Session) *gocql.Session {
	return s.session
}
