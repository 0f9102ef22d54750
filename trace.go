package quill

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/arloliu/quill/types"
)

const (
	traceSessionQuery = `SELECT coordinator, duration, request, started_at, parameters FROM system_traces.sessions WHERE session_id = ?`
	traceEventsQuery  = `SELECT event_id, activity, source, source_elapsed, thread FROM system_traces.events WHERE session_id = ?`
)

// QueryTrace is the server-side trace of one request.
type QueryTrace struct {
	TraceID     uuid.UUID
	Coordinator string
	Request     string
	Duration    time.Duration
	StartedAt   time.Time
	Parameters  map[string]string
	Events      []TraceEvent
}

// TraceEvent is one step of a traced request.
type TraceEvent struct {
	ID            uuid.UUID
	Time          time.Time
	Activity      string
	Source        string
	SourceElapsed time.Duration
	Thread        string
}

// FetchTrace reads the trace of a traced request from system_traces.
//
// Trace rows are written asynchronously after the response, so the session
// row is polled up to the configured number of attempts until its duration
// is set. A trace that never completes is reported as
// types.ErrTraceUnavailable; partial data is never returned.
//
// Parameters:
//   - ctx: Context for cancellation
//   - traceID: The 16 byte trace id from Result.TracingID
//
// Returns:
//   - *QueryTrace: The trace with events in server order
//   - error: types.ErrNoTracingID for an empty id, types.ErrTraceUnavailable,
//     types.ErrSessionClosed, or the driver error unchanged
func (s *Session) FetchTrace(ctx context.Context, traceID []byte) (*QueryTrace, error) {
	if s.closed.Load() {
		return nil, types.ErrSessionClosed
	}
	if len(traceID) == 0 {
		return nil, types.ErrNoTracingID
	}

	id, err := uuid.FromBytes(traceID)
	if err != nil {
		return nil, types.NewInvalidArgument("quill.FetchTrace", "traceID", err.Error())
	}

	s.config.Metrics.IncTraceFetchTotal()

	trace, attempts, err := s.pollTraceSession(ctx, id)
	s.config.Metrics.ObserveTraceFetchAttempts(attempts)
	if err != nil {
		s.config.Metrics.IncTraceFetchError()
		s.config.Logger.Debug("quill: trace fetch failed",
			"trace_id", id.String(),
			"attempts", attempts,
			"error", err.Error(),
		)

		return nil, err
	}

	events, err := s.readTraceEvents(ctx, id)
	if err != nil {
		s.config.Metrics.IncTraceFetchError()
		return nil, err
	}
	trace.Events = events

	return trace, nil
}

func (s *Session) pollTraceSession(ctx context.Context, id uuid.UUID) (*QueryTrace, int, error) {
	attempts := 0
	for attempts < s.config.TraceFetchAttempts {
		if attempts > 0 {
			if err := sleepContext(ctx, s.config.TraceFetchInterval); err != nil {
				return nil, attempts, err
			}
		}
		attempts++

		trace, complete, err := s.readTraceSession(ctx, id)
		if err != nil {
			return nil, attempts, err
		}
		if complete {
			return trace, attempts, nil
		}
	}

	return nil, attempts, types.ErrTraceUnavailable
}

func (s *Session) readTraceSession(ctx context.Context, id uuid.UUID) (*QueryTrace, bool, error) {
	iter := s.session.Query(traceSessionQuery, id[:]).IterContext(ctx)

	row, ok := iter.ScanValues()
	if err := iter.Close(); err != nil {
		return nil, false, err
	}
	if !ok || len(row) < 5 || row[1] == nil {
		return nil, false, nil
	}

	trace := &QueryTrace{
		TraceID:     id,
		Coordinator: traceString(row[0]),
		Duration:    time.Duration(traceInt(row[1])) * time.Microsecond,
		Request:     traceString(row[2]),
		Parameters:  traceParams(row[4]),
	}
	if started, ok := row[3].(time.Time); ok {
		trace.StartedAt = started
	}

	return trace, true, nil
}

func (s *Session) readTraceEvents(ctx context.Context, id uuid.UUID) ([]TraceEvent, error) {
	iter := s.session.Query(traceEventsQuery, id[:]).IterContext(ctx)

	var events []TraceEvent
	for {
		row, ok := iter.ScanValues()
		if !ok {
			break
		}
		if len(row) < 5 {
			continue
		}

		ev := TraceEvent{
			Activity:      traceString(row[1]),
			Source:        traceString(row[2]),
			SourceElapsed: time.Duration(traceInt(row[3])) * time.Microsecond,
			Thread:        traceString(row[4]),
		}
		if eventID, ok := traceUUID(row[0]); ok {
			ev.ID = eventID
			if eventID.Version() == 1 {
				ev.Time = time.Unix(eventID.Time().UnixTime()).UTC()
			}
		}
		events = append(events, ev)
	}

	if err := iter.Close(); err != nil {
		return nil, err
	}

	return events, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// traceString renders inet and text columns. net.IP and driver UUIDs
// implement fmt.Stringer.
func traceString(v any) string {
	switch tv := v.(type) {
	case nil:
		return ""
	case string:
		return tv
	case fmt.Stringer:
		return tv.String()
	default:
		return fmt.Sprint(tv)
	}
}

func traceInt(v any) int64 {
	switch tv := v.(type) {
	case int:
		return int64(tv)
	case int32:
		return int64(tv)
	case int64:
		return tv
	case time.Duration:
		return tv.Microseconds()
	default:
		return 0
	}
}

func traceParams(v any) map[string]string {
	switch tv := v.(type) {
	case map[string]string:
		return maps.Clone(tv)
	case map[string]any:
		out := make(map[string]string, len(tv))
		for k, val := range tv {
			out[k] = traceString(val)
		}

		return out
	default:
		return nil
	}
}

// traceUUID accepts uuid.UUID, 16 byte slices and driver UUID types, which
// render the canonical form through String.
func traceUUID(v any) (uuid.UUID, bool) {
	switch tv := v.(type) {
	case uuid.UUID:
		return tv, true
	case [16]byte:
		return uuid.UUID(tv), true
	case []byte:
		id, err := uuid.FromBytes(tv)
		return id, err == nil
	case string:
		id, err := uuid.Parse(tv)
		return id, err == nil
	case fmt.Stringer:
		id, err := uuid.Parse(tv.String())
		return id, err == nil
	default:
		return uuid.Nil, false
	}
}
