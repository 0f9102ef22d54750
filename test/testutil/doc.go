// Package testutil provides test utilities and mock implementations for quill testing.
//
// # Mock Implementations
//
//   - [MockSession]: In-memory cql.Session with canned datasets, real paging
//     tokens, bind count checks and system_traces rows for traced queries
//   - [MockQuery]: The cql.Query returned by MockSession
//   - [MockIter]: One page of results
//   - [SlowCQLSession]: Wraps any cql.Session and delays every execution
//   - [TestMetricsCollector]: Records every metrics call for assertions
//
// # Usage
//
//	mock := testutil.NewMockSession()
//	mock.SetRows("SELECT k, v FROM ks.t", []string{"k", "v"},
//	    []any{"a", 1},
//	    []any{"b", nil},
//	)
//
//	session, _ := quill.NewSession(mock)
//	res, _ := session.ExecuteText(ctx, "SELECT k, v FROM ks.t")
//
// # Integration Test Helpers
//
//   - StartEmbeddedNATS: Starts an embedded NATS server for journal testing
//   - StartCQLCluster: Starts a ScyllaDB or Cassandra container (requires Docker)
package testutil
