// Package types provides shared types and error definitions for the quill library.
//
// This is a leaf package with zero quill imports to prevent import cycles.
// All packages in quill can safely import this package.
//
// # Types
//
// Consistency levels mirror gocql consistency levels and are passed through
// to the driver:
//
//	const (
//	    Any         Consistency = 0x00
//	    One         Consistency = 0x01
//	    Quorum      Consistency = 0x04
//	    LocalQuorum Consistency = 0x06
//	    LocalOne    Consistency = 0x0A
//	)
//
// NamedValue and Unset are the transport-neutral forms of a named bind
// value and of an unset parameter. StatementRecord is the journal form of
// an executed statement.
//
// # Errors
//
// Sentinel errors are provided for local failure scenarios:
//
//   - ErrInvalidArgument: A structurally impossible request was rejected locally
//   - ErrNilSession: A nil session was provided
//   - ErrSessionClosed: The session has been closed
//   - ErrPagingExhausted: A continuation was requested after the last page
//   - ErrNoTracingID: A trace was requested for an untraced result
//   - ErrTraceUnavailable: The server did not complete the trace in time
//
// Server and driver errors are never wrapped in these types; they reach the
// caller unchanged.
package types
