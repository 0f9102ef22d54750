// Package quill builds and executes CQL statements with explicit paging,
// typed parameter binding and on-demand query tracing.
//
// quill sits between application code and a CQL driver. It turns structural
// intent ("drop these columns from this table") into correct CQL through the
// query package, binds positional or named parameters (nulls included)
// through the bind package, and executes statements one page at a time.
//
// # Key Features
//
//   - Typed Builders: CREATE/ALTER/DROP TABLE and SELECT/INSERT/UPDATE/DELETE
//   - Immutable Statements: every option setter returns a new Statement
//   - Explicit Paging: a Result is exactly one page; continuation is a new
//     Statement carrying the server's opaque paging state
//   - Tracing: request a trace id per statement and fetch the trace on demand
//   - Journal: optional recording of executed statements for audit and replay
//   - Driver Agnostic: adapters for gocql v1 and the Apache v2 driver
//
// # Basic Usage
//
//	cluster := gocql.NewCluster("127.0.0.1")
//	raw, err := cluster.CreateSession()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	session, err := quill.NewSession(v1.NewSession(raw))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer session.Close()
//
//	stmt := quill.NewStatement("SELECT k, v FROM ks.t WHERE k = ?", "test").
//	    WithPageSize(20)
//
//	res, err := session.Execute(ctx, stmt)
//	for row, ok := res.Next(); ok; row, ok = res.Next() {
//	    v, _ := quill.Value[int](row, "v")
//	    fmt.Println(v)
//	}
//
// # Paging
//
// Execute never fetches more than the page the statement addresses.
// Continue with NextPage, or let a Pager track the state:
//
//	pager := session.Pager(stmt)
//	for !pager.Done() {
//	    res, err := pager.Next(ctx)
//	    if err != nil {
//	        return err
//	    }
//	    consume(res.All())
//	}
//
// A Statement is immutable, so the statement of page one can be re-executed
// at any time and yields page one again.
//
// # Building Statements
//
//	intent, err := query.Alter().Table("ks", "t").DropColumn("a", "b").Build()
//	if err != nil {
//	    // types.ErrInvalidArgument: rejected locally, nothing was sent
//	}
//	_, err = session.ExecuteIntent(ctx, intent)
//
// # Error Handling
//
// Local validation failures match types.ErrInvalidArgument and carry a
// *types.InvalidArgumentError with the operation and argument. Errors from
// the driver or the server are returned unchanged, so driver error types
// keep working with errors.As.
//
// # Sentinel Errors
//
//   - types.ErrSessionClosed: Operation attempted on a closed session
//   - types.ErrNilSession: Nil driver session provided
//   - types.ErrPagingExhausted: Continuation requested after the last page
//   - types.ErrNoTracingID: Trace requested for an untraced result
//   - types.ErrTraceUnavailable: The server never completed the trace
//
// # Thread Safety
//
// Builders, values and statements are immutable and safe to share. Session
// is safe for concurrent use. Result and Pager belong to one goroutine.
package quill
