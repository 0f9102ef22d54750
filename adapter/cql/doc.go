// Package cql provides adapter interfaces and implementations for CQL (Cassandra Query Language)
// database drivers.
//
// This package defines the transport boundary of quill: the narrow set of
// driver operations that statement execution needs. It allows quill to work
// with different versions of gocql or with an in-memory fake in tests.
//
// # Interfaces
//
// The package defines interfaces that mirror the gocql API:
//
//   - Session: Wraps a database session for executing queries
//   - Query: Represents a CQL query with bind parameters and options
//   - Iter: Iterates over one page of results
//   - Tracer: Receives the trace id of a traced query
//
// # Adapters
//
// Driver-specific adapters are provided in subpackages:
//
//   - [github.com/arloliu/quill/adapter/cql/v1]: Adapter for gocql v1.x
//   - [github.com/arloliu/quill/adapter/cql/v2]: Adapter for apache/cassandra-gocql-driver v2.x
//
// # Usage
//
// Import the appropriate adapter for your gocql version:
//
//	import (
//	    "github.com/arloliu/quill"
//	    "github.com/arloliu/quill/adapter/cql/v1"
//	    "github.com/gocql/gocql"
//	)
//
//	// Create gocql cluster and session
//	cluster := gocql.NewCluster("127.0.0.1")
//	gocqlSession, _ := cluster.CreateSession()
//
//	// Wrap with quill adapter
//	session, _ := quill.NewSession(v1.NewSession(gocqlSession))
package cql
