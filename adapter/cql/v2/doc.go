// Package v2 provides an adapter for gocql v2 (github.com/apache/cassandra-gocql-driver).
//
// This adapter wraps the Apache Cassandra gocql driver v2 to implement
// the quill CQL interfaces.
//
// # Usage
//
//	import (
//	    gocql "github.com/apache/cassandra-gocql-driver/v2"
//	    v2 "github.com/arloliu/quill/adapter/cql/v2"
//	)
//
//	cluster := gocql.NewCluster("127.0.0.1", "127.0.0.2")
//	cluster.Keyspace = "my_keyspace"
//
//	gocqlSession, err := cluster.CreateSession()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	session, err := quill.NewSession(v2.NewSession(gocqlSession))
//
// # Differences from v1
//
//   - Query.WithContext is gone from the driver; the adapter keeps the
//     context and passes it to ExecContext, ScanContext and IterContext.
//   - Serial consistency shares the gocql.Consistency type.
//   - Queries are not pooled, so Release is a no-op.
//
// Behavior seen through quill is the same for both adapters.
package v2
