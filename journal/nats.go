package journal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/quill/internal/logging"
	"github.com/arloliu/quill/types"
)

// NATSJournalConfig configures the NATS JetStream journal.
type NATSJournalConfig struct {
	// StreamName is the JetStream stream holding the records.
	// Default: "quill-journal"
	StreamName string

	// SubjectPrefix is the subject prefix. Records are published to
	// "{SubjectPrefix}.{kind}" (e.g., "quill.journal.select").
	// Default: "quill.journal"
	SubjectPrefix string

	// MaxAge is the maximum age of records in the stream.
	// Default: 7 days
	MaxAge time.Duration

	// MaxMsgs is the maximum number of records in the stream.
	// Default: 1,000,000
	MaxMsgs int64

	// MaxBytes is the maximum total size of the stream in bytes.
	// Default: 1GB
	MaxBytes int64

	// Replicas is the number of stream replicas.
	// Default: 1
	Replicas int

	// PublishTimeout bounds each publish.
	// Default: 5 seconds
	PublishTimeout time.Duration

	// FetchBatch is the number of records read per fetch during Replay.
	// Default: 256
	FetchBatch int

	// FetchWait is how long a replay fetch waits for records.
	// Default: 1 second
	FetchWait time.Duration

	// Logger receives warnings about undecodable records.
	// Default: no-op
	Logger types.Logger
}

// DefaultNATSJournalConfig returns the default configuration.
func DefaultNATSJournalConfig() NATSJournalConfig {
	return NATSJournalConfig{
		StreamName:     "quill-journal",
		SubjectPrefix:  "quill.journal",
		MaxAge:         7 * 24 * time.Hour,
		MaxMsgs:        1_000_000,
		MaxBytes:       1 << 30,
		Replicas:       1,
		PublishTimeout: 5 * time.Second,
		FetchBatch:     256,
		FetchWait:      time.Second,
		Logger:         logging.NewNopLogger(),
	}
}

// NATSJournalOption configures a NATSJournal.
type NATSJournalOption func(*NATSJournalConfig)

// WithStreamName sets the JetStream stream name.
func WithStreamName(name string) NATSJournalOption {
	return func(c *NATSJournalConfig) {
		c.StreamName = name
	}
}

// WithSubjectPrefix sets the subject prefix.
func WithSubjectPrefix(prefix string) NATSJournalOption {
	return func(c *NATSJournalConfig) {
		c.SubjectPrefix = prefix
	}
}

// WithMaxAge sets the maximum age of records in the stream.
func WithMaxAge(d time.Duration) NATSJournalOption {
	return func(c *NATSJournalConfig) {
		c.MaxAge = d
	}
}

// WithMaxMsgs sets the maximum number of records in the stream.
func WithMaxMsgs(n int64) NATSJournalOption {
	return func(c *NATSJournalConfig) {
		c.MaxMsgs = n
	}
}

// WithMaxBytes sets the maximum total size of the stream.
func WithMaxBytes(n int64) NATSJournalOption {
	return func(c *NATSJournalConfig) {
		c.MaxBytes = n
	}
}

// WithReplicas sets the number of stream replicas.
//
// Parameters:
//   - n: Number of replicas (1 for dev, 3 for production)
//
// Returns:
//   - NATSJournalOption: Configuration option
func WithReplicas(n int) NATSJournalOption {
	return func(c *NATSJournalConfig) {
		c.Replicas = n
	}
}

// WithPublishTimeout sets the timeout for publishing a record.
func WithPublishTimeout(d time.Duration) NATSJournalOption {
	return func(c *NATSJournalConfig) {
		c.PublishTimeout = d
	}
}

// WithFetch sets the replay fetch batch size and wait time.
func WithFetch(batch int, wait time.Duration) NATSJournalOption {
	return func(c *NATSJournalConfig) {
		c.FetchBatch = batch
		c.FetchWait = wait
	}
}

// WithLogger sets the logger.
func WithLogger(logger types.Logger) NATSJournalOption {
	return func(c *NATSJournalConfig) {
		c.Logger = logger
	}
}

// NATSJournal appends statement records to a JetStream stream.
//
// Records are kept under limits retention: reading them back does not
// remove them. Publishes carry the record id as the message id, so a
// retried publish of the same record is stored once.
type NATSJournal struct {
	js     jetstream.JetStream
	stream jetstream.Stream
	config NATSJournalConfig
	closed bool
	mu     sync.RWMutex
}

// NewNATSJournal creates or updates the journal stream.
//
// The caller owns the NATS connection behind js.
//
// Parameters:
//   - js: A JetStream context (created via jetstream.New(conn))
//   - opts: Optional configuration options
//
// Returns:
//   - *NATSJournal: The journal
//   - error: Error if js is nil or the stream cannot be created
//
// Example:
//
//	nc, _ := nats.Connect("nats://localhost:4222")
//	js, _ := jetstream.New(nc)
//	j, _ := journal.NewNATSJournal(js)
//	session, _ := quill.NewSession(raw, quill.WithRecorder(j))
func NewNATSJournal(js jetstream.JetStream, opts ...NATSJournalOption) (*NATSJournal, error) {
	if js == nil {
		return nil, errors.New("quill: JetStream context is nil")
	}

	config := DefaultNATSJournalConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Logger == nil {
		config.Logger = logging.NewNopLogger()
	}
	config.FetchBatch = max(config.FetchBatch, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        config.StreamName,
		Description: "quill statement journal",
		Subjects:    []string{config.SubjectPrefix + ".*"},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      config.MaxAge,
		MaxMsgs:     config.MaxMsgs,
		MaxBytes:    config.MaxBytes,
		Replicas:    config.Replicas,
		Storage:     jetstream.FileStorage,
		Discard:     jetstream.DiscardOld,
	})
	if err != nil {
		return nil, fmt.Errorf("quill: failed to create/update stream: %w", err)
	}

	return &NATSJournal{
		js:     js,
		stream: stream,
		config: config,
	}, nil
}

// Record publishes rec to "{prefix}.{kind}".
//
// Returns:
//   - error: types.ErrSessionClosed after Close, or the encode/publish error
func (n *NATSJournal) Record(ctx context.Context, rec types.StatementRecord) error {
	if n.isClosed() {
		return types.ErrSessionClosed
	}

	data, err := marshalRecord(nil, rec)
	if err != nil {
		return fmt.Errorf("quill: failed to encode record: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, n.config.PublishTimeout)
	defer cancel()

	var pubOpts []jetstream.PublishOpt
	if rec.ID != "" {
		pubOpts = append(pubOpts, jetstream.WithMsgID(rec.ID))
	}
	if _, err := n.js.Publish(pubCtx, n.subject(rec.Kind), data, pubOpts...); err != nil {
		return fmt.Errorf("quill: failed to publish record: %w", err)
	}

	return nil
}

// Replay returns up to n records, oldest first. n <= 0 returns all.
func (n *NATSJournal) Replay(ctx context.Context, limit int) ([]types.StatementRecord, error) {
	return n.replay(ctx, limit, n.config.SubjectPrefix+".*")
}

// ReplayKind returns up to limit records of one statement kind, oldest first.
func (n *NATSJournal) ReplayKind(ctx context.Context, kind types.StatementKind, limit int) ([]types.StatementRecord, error) {
	return n.replay(ctx, limit, n.subject(kind))
}

func (n *NATSJournal) replay(ctx context.Context, limit int, filter string) ([]types.StatementRecord, error) {
	if n.isClosed() {
		return nil, types.ErrSessionClosed
	}

	info, err := n.stream.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("quill: failed to get stream info: %w", err)
	}
	remaining := clampInt(info.State.Msgs)
	if limit > 0 {
		remaining = min(remaining, limit)
	}
	if remaining == 0 {
		return nil, nil
	}

	consumer, err := n.stream.OrderedConsumer(ctx, jetstream.OrderedConsumerConfig{
		FilterSubjects: []string{filter},
		DeliverPolicy:  jetstream.DeliverAllPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("quill: failed to create consumer: %w", err)
	}

	records := make([]types.StatementRecord, 0, min(remaining, n.config.FetchBatch))
	for remaining > 0 {
		if err := ctx.Err(); err != nil {
			return records, err
		}

		msgs, err := consumer.Fetch(min(remaining, n.config.FetchBatch), jetstream.FetchMaxWait(n.config.FetchWait))
		if err != nil {
			if errors.Is(err, jetstream.ErrNoMessages) || errors.Is(err, context.DeadlineExceeded) {
				break
			}

			return records, fmt.Errorf("quill: failed to fetch records: %w", err)
		}

		got := 0
		for msg := range msgs.Messages() {
			got++
			rec, err := unmarshalRecord(msg.Data())
			if err != nil {
				n.config.Logger.Warn("quill: skipping undecodable journal record",
					"subject", msg.Subject(),
					"error", err.Error(),
				)

				continue
			}
			records = append(records, rec)
			remaining--
			if remaining == 0 {
				break
			}
		}
		if err := msgs.Error(); err != nil && !errors.Is(err, jetstream.ErrNoMessages) {
			return records, fmt.Errorf("quill: error during record fetch: %w", err)
		}
		if got == 0 {
			break
		}
	}

	return records, nil
}

// Pending returns the number of records in the stream.
func (n *NATSJournal) Pending(ctx context.Context) (int, error) {
	if n.isClosed() {
		return 0, types.ErrSessionClosed
	}

	info, err := n.stream.Info(ctx)
	if err != nil {
		return 0, fmt.Errorf("quill: failed to get stream info: %w", err)
	}

	return clampInt(info.State.Msgs), nil
}

// Close stops accepting records. It does not close the NATS connection.
func (n *NATSJournal) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.closed = true

	return nil
}

// StreamName returns the JetStream stream name.
func (n *NATSJournal) StreamName() string {
	return n.config.StreamName
}

func (n *NATSJournal) isClosed() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.closed
}

func (n *NATSJournal) subject(kind types.StatementKind) string {
	if kind == "" {
		kind = types.KindRaw
	}

	return n.config.SubjectPrefix + "." + string(kind)
}

func clampInt(v uint64) int {
	const maxInt = uint64(^uint(0) >> 1)
	if v > maxInt {
		v = maxInt
	}

	return int(v) //nolint:gosec // clamped above
}
