package v1

import (
	"github.com/gocql/gocql"

	"github.com/arloliu/quill/adapter/cql"
	"github.com/arloliu/quill/types"
)

// ToGocqlConsistency converts a quill Consistency to gocql.Consistency.
//
// Example:
//
//	cluster := gocql.NewCluster("127.0.0.1")
//	cluster.Consistency = v1.ToGocqlConsistency(cql.Quorum)
func ToGocqlConsistency(c cql.Consistency) gocql.Consistency {
	return gocql.Consistency(c)
}

// FromGocqlConsistency converts a gocql.Consistency to quill Consistency.
func FromGocqlConsistency(c gocql.Consistency) cql.Consistency {
	return cql.Consistency(c)
}

// ToGocqlSerialConsistency converts a quill Consistency to gocql.SerialConsistency.
//
// Parameters:
//   - c: Quill consistency level (should be Serial or LocalSerial)
//
// Returns:
//   - gocql.SerialConsistency: The equivalent gocql serial consistency level
func ToGocqlSerialConsistency(c cql.Consistency) gocql.SerialConsistency {
	return gocql.SerialConsistency(c)
}

// ToDriverValues translates quill binding markers into gocql values.
//
// The input slice is never modified. A slice without markers is returned as is.
func ToDriverValues(values []any) []any {
	var out []any
	for i, v := range values {
		converted, changed := toDriverValue(v)
		if !changed {
			if out != nil {
				out[i] = v
			}
			continue
		}
		if out == nil {
			out = make([]any, len(values))
			copy(out, values[:i])
		}
		out[i] = converted
	}
	if out == nil {
		return values
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
//
// Example:
//
//	gocqlSession := v1.UnwrapSession(session)
//	keyspaceMeta, _ := gocqlSession.KeyspaceMetadata("my_keyspace")
func UnwrapSession(s *Session) *gocql.Session {
	return s.session
}
