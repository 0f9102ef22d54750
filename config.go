package quill

import (
	"log/slog"
	"time"

	"github.com/arloliu/quill/internal/logging"
	"github.com/arloliu/quill/internal/metrics"
	"github.com/arloliu/quill/types"
)

// Default trace polling settings.
//
// The server writes trace rows asynchronously, so a trace read right after
// the traced request may be incomplete.
const (
	DefaultTraceFetchAttempts = 5
	DefaultTraceFetchInterval = 3 * time.Millisecond
)

// TimestampProvider generates timestamps for write operations.
//
// A provider returns microseconds since the Unix epoch.
type TimestampProvider func() int64

// DefaultTimestampProvider returns the current time in microseconds.
func DefaultTimestampProvider() int64 {
	return time.Now().UnixMicro()
}

// Config holds configuration for a Session.
type Config struct {
	// DefaultPageSize applies to statements without an explicit page size.
	// Zero leaves the choice to the driver.
	DefaultPageSize int

	// DefaultConsistency applies to statements without an explicit level.
	// nil leaves the choice to the driver.
	DefaultConsistency *Consistency

	// TimestampProvider supplies write timestamps for statements without an
	// explicit one. nil lets the server assign them.
	TimestampProvider TimestampProvider

	// TraceFetchAttempts bounds how often FetchTrace polls system_traces.
	TraceFetchAttempts int

	// TraceFetchInterval is the pause between trace polls.
	TraceFetchInterval time.Duration

	// Recorder receives every executed statement. nil disables recording.
	Recorder Recorder

	Metrics MetricsCollector
	Logger  types.Logger
}

// DefaultConfig returns a Config with sensible defaults.
//
// Timestamps are server-assigned and the driver picks page size and
// consistency.
//
// Returns:
//   - *Config: Configuration with default settings
func DefaultConfig() *Config {
	return &Config{
		TraceFetchAttempts: DefaultTraceFetchAttempts,
		TraceFetchInterval: DefaultTraceFetchInterval,
		Metrics:            metrics.NewNopMetrics(),
		Logger:             logging.NewNopLogger(),
	}
}

// Option configures a Config.
type Option func(*Config)

// WithDefaultPageSize sets the page size for statements that do not set one.
//
// Parameters:
//   - n: Rows per page; values <= 0 restore the driver default
//
// Returns:
//   - Option: Configuration option
func WithDefaultPageSize(n int) Option {
	return func(c *Config) {
		c.DefaultPageSize = max(n, 0)
	}
}

// WithDefaultConsistency sets the consistency for statements that do not set one.
//
// Parameters:
//   - level: The consistency level
//
// Returns:
//   - Option: Configuration option
func WithDefaultConsistency(level Consistency) Option {
	return func(c *Config) {
		c.DefaultConsistency = &level
	}
}

// WithTimestampProvider sets the timestamp generator.
//
// Statements with an explicit timestamp keep their own.
//
// Parameters:
//   - fn: Function that returns current timestamp in microseconds
//
// Returns:
//   - Option: Configuration option
//
// Example:
//
//	session, _ := quill.NewSession(raw,
//	    quill.WithTimestampProvider(quill.DefaultTimestampProvider),
//	)
func WithTimestampProvider(fn TimestampProvider) Option {
	return func(c *Config) {
		c.TimestampProvider = fn
	}
}

// WithTraceFetch sets how FetchTrace polls for a complete trace.
//
// Parameters:
//   - attempts: Maximum number of polls (minimum 1)
//   - interval: Pause between polls
//
// Returns:
//   - Option: Configuration option
func WithTraceFetch(attempts int, interval time.Duration) Option {
	return func(c *Config) {
		c.TraceFetchAttempts = max(attempts, 1)
		c.TraceFetchInterval = max(interval, 0)
	}
}

// WithRecorder sets the statement recorder.
//
// Recording is best effort: a failing recorder is logged and counted but
// never fails the execution.
//
// Parameters:
//   - recorder: The recorder implementation (e.g., journal.MemoryJournal)
//
// Returns:
//   - Option: Configuration option
func WithRecorder(recorder Recorder) Option {
	return func(c *Config) {
		c.Recorder = recorder
	}
}

// WithMetrics sets the metrics collector.
//
// If not set, a no-op collector is used that discards all metrics.
// Use contrib/metrics/vm.New() for VictoriaMetrics integration.
//
// Parameters:
//   - collector: The metrics collector implementation
//
// Returns:
//   - Option: Configuration option
//
// Example:
//
//	import vmmetrics "github.com/arloliu/quill/contrib/metrics/vm"
//
//	collector := vmmetrics.New(vmmetrics.WithPrefix("myapp"))
//	session, _ := quill.NewSession(raw, quill.WithMetrics(collector))
func WithMetrics(collector MetricsCollector) Option {
	return func(c *Config) {
		c.Metrics = collector
	}
}

// WithLogger sets the structured logger.
//
// If not set, a no-op logger is used that discards all messages.
// The logger interface is compatible with zap.SugaredLogger.
//
// Parameters:
//   - logger: The logger implementation
//
// Returns:
//   - Option: Configuration option
func WithLogger(logger types.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithSlogLogger sets a log/slog logger as the structured logger.
//
// A nil logger uses slog.Default().
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
//	session, _ := quill.NewSession(raw, quill.WithSlogLogger(logger))
func WithSlogLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logging.NewSlogLogger(logger)
	}
}

func (c *Config) normalize() {
	if c.Logger == nil {
		c.Logger = logging.NewNopLogger()
	}
	if c.Metrics == nil {
		c.Metrics = metrics.NewNopMetrics()
	}
	if c.TraceFetchAttempts < 1 {
		c.TraceFetchAttempts = DefaultTraceFetchAttempts
	}
}
