package journal

import (
	"bytes"
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/arloliu/quill"
	"github.com/arloliu/quill/types"
)

// DefaultMemoryCapacity is the number of records a MemoryJournal keeps by default.
const DefaultMemoryCapacity = 10000

// Journal is a recorder whose records can be read back.
type Journal interface {
	quill.Recorder

	// Replay returns up to n records, oldest first. n <= 0 returns all.
	Replay(ctx context.Context, n int) ([]types.StatementRecord, error)

	// Close stops accepting records.
	Close() error
}

var (
	_ Journal = (*MemoryJournal)(nil)
	_ Journal = (*NATSJournal)(nil)
)

// MemoryJournal keeps the most recent records in memory.
//
// When the journal is full the oldest record is overwritten and counted in
// Dropped. Records are lost on process exit.
//
// All methods are safe for concurrent use.
type MemoryJournal struct {
	mu      sync.Mutex
	ring    []types.StatementRecord
	start   int
	size    int
	dropped int64
	closed  atomic.Bool
}

// MemoryJournalOption configures a MemoryJournal.
type MemoryJournalOption func(*memoryConfig)

type memoryConfig struct {
	capacity int
}

// WithCapacity sets the number of records kept.
//
// Parameters:
//   - n: Maximum records (default: 10000; values < 1 mean 1)
//
// Returns:
//   - MemoryJournalOption: Configuration option
func WithCapacity(n int) MemoryJournalOption {
	return func(c *memoryConfig) {
		c.capacity = n
	}
}

// NewMemoryJournal creates an empty in-memory journal.
func NewMemoryJournal(opts ...MemoryJournalOption) *MemoryJournal {
	cfg := memoryConfig{capacity: DefaultMemoryCapacity}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.capacity = max(cfg.capacity, 1)

	return &MemoryJournal{ring: make([]types.StatementRecord, cfg.capacity)}
}

// Record stores a copy of rec.
//
// Returns:
//   - error: types.ErrSessionClosed after Close, or the context error
func (m *MemoryJournal) Record(ctx context.Context, rec types.StatementRecord) error {
	if m.closed.Load() {
		return types.ErrSessionClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	rec = cloneRecord(rec)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.size < len(m.ring) {
		m.ring[(m.start+m.size)%len(m.ring)] = rec
		m.size++

		return nil
	}

	m.ring[m.start] = rec
	m.start = (m.start + 1) % len(m.ring)
	m.dropped++

	return nil
}

// Replay returns up to n records, oldest first. n <= 0 returns all.
func (m *MemoryJournal) Replay(ctx context.Context, n int) ([]types.StatementRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	count := m.size
	if n > 0 {
		count = min(n, m.size)
	}

	out := make([]types.StatementRecord, count)
	for i := range count {
		out[i] = cloneRecord(m.ring[(m.start+i)%len(m.ring)])
	}

	return out, nil
}

// Records returns every stored record, oldest first.
func (m *MemoryJournal) Records() []types.StatementRecord {
	recs, _ := m.Replay(context.Background(), 0)
	return recs
}

// Len returns the number of stored records.
func (m *MemoryJournal) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.size
}

// Cap returns the journal capacity.
func (m *MemoryJournal) Cap() int {
	return len(m.ring)
}

// Dropped returns how many records were overwritten.
func (m *MemoryJournal) Dropped() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.dropped
}

// Close stops accepting records. Stored records stay readable.
//
// Close is safe to call multiple times.
func (m *MemoryJournal) Close() error {
	m.closed.Store(true)
	return nil
}

// IsClosed reports whether Close has been called.
func (m *MemoryJournal) IsClosed() bool {
	return m.closed.Load()
}

func cloneRecord(rec types.StatementRecord) types.StatementRecord {
	c := rec
	c.Names = slices.Clone(rec.Names)
	c.Values = slices.Clone(rec.Values)
	c.PagingState = bytes.Clone(rec.PagingState)
	if rec.Timestamp != nil {
		ts := *rec.Timestamp
		c.Timestamp = &ts
	}
	if rec.Consistency != nil {
		cl := *rec.Consistency
		c.Consistency = &cl
	}
	if rec.SerialConsistency != nil {
		cl := *rec.SerialConsistency
		c.SerialConsistency = &cl
	}

	return c
}
