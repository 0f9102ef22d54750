package types

// Logger is the structured logging contract used across quill.
//
// Each method takes a message followed by alternating key/value pairs:
//
//	logger.Warn("trace fetch failed", "trace_id", id, "error", err.Error())
//
// Implementations must be safe for concurrent use.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}
