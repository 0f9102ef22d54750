package integration_test

import (
	"context"
	"flag"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/quill"
	"github.com/arloliu/quill/adapter/cql"
	cqlv1 "github.com/arloliu/quill/adapter/cql/v1"
	"github.com/arloliu/quill/test/testutil"
)

const testKeyspace = "quill_test"

// sharedCluster is started once in TestMain.
var sharedCluster *testutil.CQLCluster

// TestMain sets up shared test infrastructure for all CQL integration tests.
// This avoids the overhead of starting a container for each individual test.
// Prefers ScyllaDB for faster startup, falls back to Cassandra if AIO is unavailable.
func TestMain(m *testing.M) {
	flag.Parse()

	if testing.Short() {
		return
	}

	// Check if we should skip container setup (for unit tests or CI without Docker)
	if os.Getenv("SKIP_INTEGRATION_TESTS") == "1" {
		fmt.Println("Skipping integration tests (SKIP_INTEGRATION_TESTS=1)")

		return
	}

	ctx := context.Background()
	fmt.Println("Starting shared CQL cluster for integration tests...")

	cluster, err := testutil.StartCQLCluster(ctx, testutil.DefaultCQLClusterOptions(testKeyspace))
	if err != nil {
		fmt.Printf("Failed to setup shared cluster: %v\n", err)

		return
	}
	sharedCluster = cluster
	fmt.Printf("Shared cluster ready! (using %s)\n", cluster.Type)

	code := m.Run()

	fmt.Println("Cleaning up shared CQL cluster...")
	_ = sharedCluster.Terminate(ctx)

	os.Exit(code)
}

// getSession returns a quill session over the shared gocql v1 session.
// Closing it does not close the shared driver session.
func getSession(t *testing.T, opts ...quill.Option) *quill.Session {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if sharedCluster == nil {
		t.Skip("shared cluster not available (run with -short=false and Docker)")
	}

	session, err := quill.NewSession(unclosable{cqlv1.WrapSession(sharedCluster.Session)}, opts...)
	require.NoError(t, err)
	t.Cleanup(session.Close)

	return session
}

// unclosable keeps a quill session from closing the shared driver session.
type unclosable struct {
	cql.Session
}

func (unclosable) Close() {}

// createTable creates a uniquely named table from a schema template with a
// %s placeholder for the qualified table name, and drops it after the test.
func createTable(t *testing.T, suffix, schema string) string {
	t.Helper()

	if sharedCluster == nil {
		t.Skip("shared cluster not available (run with -short=false and Docker)")
	}

	table := fmt.Sprintf("test_%s_%d", suffix, time.Now().UnixNano())
	qualified := testKeyspace + "." + table

	if err := sharedCluster.Session.Query(fmt.Sprintf(schema, qualified)).Exec(); err != nil {
		t.Fatalf("failed to create table %s: %v", qualified, err)
	}

	t.Cleanup(func() {
		_ = sharedCluster.Session.Query("DROP TABLE IF EXISTS " + qualified).Exec()
	})

	return table
}

// Table schema templates with %s placeholder for the qualified table name.
const (
	kvTableSchema = `
		CREATE TABLE IF NOT EXISTS %s (
			k TEXT,
			v INT,
			PRIMARY KEY (k, v)
		)
	`
	usersTableSchema = `
		CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			name TEXT,
			email TEXT,
			age INT,
			created_at TIMESTAMP
		)
	`
)
