package quill

import (
	"github.com/arloliu/quill/query"
	"github.com/arloliu/quill/types"
)

// Type aliases for convenience - re-export from types package.
type (
	Consistency      = types.Consistency
	StatementKind    = types.StatementKind
	StatementRecord  = types.StatementRecord
	Logger           = types.Logger
	MetricsCollector = types.MetricsCollector
	Intent           = query.Intent
)

// Re-export consistency level constants for convenience.
const (
	Any         = types.Any
	One         = types.One
	Two         = types.Two
	Three       = types.Three
	Quorum      = types.Quorum
	All         = types.All
	LocalQuorum = types.LocalQuorum
	EachQuorum  = types.EachQuorum
	Serial      = types.Serial
	LocalSerial = types.LocalSerial
	LocalOne    = types.LocalOne
)

// Re-export sentinel errors for convenience.
var (
	ErrInvalidArgument  = types.ErrInvalidArgument
	ErrSessionClosed    = types.ErrSessionClosed
	ErrNilSession       = types.ErrNilSession
	ErrPagingExhausted  = types.ErrPagingExhausted
	ErrNoTracingID      = types.ErrNoTracingID
	ErrTraceUnavailable = types.ErrTraceUnavailable
)
