package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arloliu/quill"
	"github.com/arloliu/quill/internal/logging"
	"github.com/arloliu/quill/types"
)

// ReexecuteConfig configures Reexecute.
type ReexecuteConfig struct {
	// ExecuteTimeout bounds each statement. Zero means no per-statement timeout.
	// Default: 30 seconds
	ExecuteTimeout time.Duration

	// IncludeFailed re-executes records whose original execution failed.
	// Default: false
	IncludeFailed bool

	// KeepPagingState sends the recorded paging state. Paging states are
	// tied to the server that issued them, so by default every statement
	// starts from its first page.
	// Default: false
	KeepPagingState bool

	// Logger receives a debug line per failed statement.
	Logger types.Logger

	// OnError is called after a failed re-execution (optional).
	OnError func(rec types.StatementRecord, err error)
}

// DefaultReexecuteConfig returns the default configuration.
func DefaultReexecuteConfig() ReexecuteConfig {
	return ReexecuteConfig{
		ExecuteTimeout: 30 * time.Second,
		Logger:         logging.NewNopLogger(),
	}
}

// ReexecuteOption configures Reexecute.
type ReexecuteOption func(*ReexecuteConfig)

// WithExecuteTimeout sets the per-statement timeout.
func WithExecuteTimeout(d time.Duration) ReexecuteOption {
	return func(c *ReexecuteConfig) {
		c.ExecuteTimeout = d
	}
}

// WithIncludeFailed re-executes records whose original execution failed.
func WithIncludeFailed(include bool) ReexecuteOption {
	return func(c *ReexecuteConfig) {
		c.IncludeFailed = include
	}
}

// WithKeepPagingState sends recorded paging states instead of restarting
// at the first page.
func WithKeepPagingState(keep bool) ReexecuteOption {
	return func(c *ReexecuteConfig) {
		c.KeepPagingState = keep
	}
}

// WithReexecuteLogger sets the logger.
func WithReexecuteLogger(logger types.Logger) ReexecuteOption {
	return func(c *ReexecuteConfig) {
		c.Logger = logger
	}
}

// WithOnError sets a callback for failed re-executions.
func WithOnError(fn func(rec types.StatementRecord, err error)) ReexecuteOption {
	return func(c *ReexecuteConfig) {
		c.OnError = fn
	}
}

// Report summarizes a Reexecute run.
type Report struct {
	// Executed counts statements that executed successfully.
	Executed int

	// Skipped counts records not executed because the original failed.
	Skipped int

	// Failed counts records that could not be rebuilt or failed again.
	Failed int
}

// Reexecute executes the statements of recs in order.
//
// A record that cannot be rebuilt or fails again is counted and reported
// through OnError; the run continues with the next record. Only context
// cancellation stops the run early.
//
// Parameters:
//   - ctx: Context for cancellation
//   - exec: Executor to run the statements, usually a *quill.Session
//   - recs: Records, e.g. from Journal.Replay
//   - opts: Optional configuration
//
// Returns:
//   - Report: Counts of executed, skipped and failed records
//   - error: The context error, or all statement errors joined
//
// Example:
//
//	recs, _ := j.ReplayKind(ctx, types.KindAlterTableDrop, 0)
//	report, err := journal.Reexecute(ctx, session, recs, journal.WithExecuteTimeout(5*time.Second))
func Reexecute(ctx context.Context, exec quill.Executor, recs []types.StatementRecord, opts ...ReexecuteOption) (Report, error) {
	var report Report
	if exec == nil {
		return report, types.ErrNilSession
	}

	config := DefaultReexecuteConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Logger == nil {
		config.Logger = logging.NewNopLogger()
	}

	var errs []error
	for _, rec := range recs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if rec.Error != "" && !config.IncludeFailed {
			report.Skipped++
			continue
		}

		if err := reexecuteOne(ctx, exec, rec, config); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return report, ctxErr
			}

			report.Failed++
			errs = append(errs, fmt.Errorf("record %s: %w", rec.ID, err))
			config.Logger.Debug("quill: re-execution failed",
				"record_id", rec.ID,
				"statement", rec.Query,
				"error", err.Error(),
			)
			if config.OnError != nil {
				config.OnError(rec, err)
			}

			continue
		}
		report.Executed++
	}

	return report, errors.Join(errs...)
}

func reexecuteOne(ctx context.Context, exec quill.Executor, rec types.StatementRecord, config ReexecuteConfig) error {
	stmt, err := quill.StatementFromRecord(rec)
	if err != nil {
		return err
	}
	if !config.KeepPagingState {
		stmt = stmt.WithPagingState(nil)
	}

	if config.ExecuteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.ExecuteTimeout)
		defer cancel()
	}

	_, err = exec.Execute(ctx, stmt)

	return err
}
