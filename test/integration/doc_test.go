// Package integration_test provides end-to-end integration tests for the quill library.
//
// These tests execute statements against a real CQL server.
//
// # Running Integration Tests
//
// Integration tests are skipped by default when using -short flag:
//
//	go test -short ./...           # Skips integration tests
//	go test ./test/integration/... # Runs integration tests
//
// Setting SKIP_INTEGRATION_TESTS=1 also skips them.
//
// # CQL Tests
//
// The tests require Docker and use testcontainers to start one ScyllaDB
// or Cassandra instance shared by every test. Each test creates its own
// uniquely named tables.
package integration_test
