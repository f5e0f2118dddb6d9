package notify

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
)

// Message is one committed outbox row ready for the broker.
type Message struct {
	ID        string
	Key       string
	EventType string
	Payload   []byte
}

// Publisher delivers a batch; the batch is acknowledged only if every
// message was accepted.
type Publisher interface {
	Publish(ctx context.Context, msgs []Message) error
}

// OutboxRelay moves committed outbox rows to the broker and marks them
// published. Rows are claimed with SKIP LOCKED so several relays can run.
type OutboxRelay struct {
	db        *sql.DB
	publisher Publisher
	logger    *slog.Logger
	batchSize int
	interval  time.Duration
}

type RelayOption func(*OutboxRelay)

func WithRelayLogger(logger *slog.Logger) RelayOption {
	return func(r *OutboxRelay) {
		r.logger = logger
	}
}

func WithBatchSize(n int) RelayOption {
	return func(r *OutboxRelay) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

func WithPollInterval(d time.Duration) RelayOption {
	return func(r *OutboxRelay) {
		if d > 0 {
			r.interval = d
		}
	}
}

func NewOutboxRelay(db *sql.DB, publisher Publisher, opts ...RelayOption) *OutboxRelay {
	r := &OutboxRelay{
		db:        db,
		publisher: publisher,
		logger:    slog.Default(),
		batchSize: 100,
		interval:  time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run polls until ctx is cancelled. Relay errors are logged and retried on
// the next tick.
func (r *OutboxRelay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := r.RelayOnce(ctx)
			if err != nil {
				r.logger.ErrorContext(ctx, "outbox relay failed", "error", err)
				continue
			}
			if n > 0 {
				r.logger.DebugContext(ctx, "outbox relayed", "count", n)
			}
		}
	}
}

const (
	claimOutboxSQL = `
		SELECT id, aggregate_id, event_type, payload
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED`
	markPublishedSQL = `UPDATE outbox SET published_at = $1 WHERE id = ANY($2::uuid[])`
)

// RelayOnce publishes one batch and returns how many rows it moved.
func (r *OutboxRelay) RelayOnce(ctx context.Context) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin outbox claim: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	rows, err := tx.QueryContext(ctx, claimOutboxSQL, r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("claim outbox rows: %w", err)
	}
	var (
		msgs []Message
		ids  []string
	)
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.Key, &m.EventType, &m.Payload); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan outbox row: %w", err)
		}
		msgs = append(msgs, m)
		ids = append(ids, m.ID)
	}
	if err := rows.Close(); err != nil {
		return 0, fmt.Errorf("close outbox rows: %w", err)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate outbox rows: %w", err)
	}
	if len(msgs) == 0 {
		return 0, nil
	}

	if err := r.publisher.Publish(ctx, msgs); err != nil {
		return 0, fmt.Errorf("publish outbox batch: %w", err)
	}
	if _, err := tx.ExecContext(ctx, markPublishedSQL, time.Now(), pq.Array(ids)); err != nil {
		return 0, fmt.Errorf("mark outbox published: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit outbox batch: %w", err)
	}
	return len(msgs), nil
}
