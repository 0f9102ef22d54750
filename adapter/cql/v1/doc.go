// Package v1 provides an adapter for gocql v1.x to work with the quill library.
//
// This adapter wraps gocql sessions, queries, and iterators to implement
// the quill CQL interfaces.
//
// # Usage
//
// Create a gocql session and wrap it with the v1 adapter:
//
//	cluster := gocql.NewCluster("127.0.0.1", "127.0.0.2")
//	cluster.Keyspace = "my_keyspace"
//	cluster.Consistency = gocql.Quorum
//
//	gocqlSession, err := cluster.CreateSession()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	session, err := quill.NewSession(v1.NewSession(gocqlSession))
//
// # Values
//
// Bound values pass through to gocql unchanged, except for two markers:
// types.NamedValue becomes gocql.NamedValue and types.Unset becomes
// gocql.UnsetValue.
//
// # Rows
//
// Iter.ScanValues reads a row through gocql's RowData and scans every
// column into a pointer-to-pointer, so null columns come back as nil rather
// than as the zero value of the column type.
//
// # Thread Safety
//
// Session is safe for concurrent use. Query and Iter values are not.
package v1
