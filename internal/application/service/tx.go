package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"homestay/internal/application/store"
	dErrors "homestay/pkg/domain-errors"
	txcontext "homestay/pkg/platform/tx"
)

// memoryTx serializes units of work over an InMemoryStore and restores the
// pre-transaction snapshot when fn fails.
type memoryTx struct {
	mu    sync.Mutex
	store *store.InMemoryStore
}

// NewInMemoryTx returns a StoreTx for tests and single-process deployments.
func NewInMemoryTx(st *store.InMemoryStore) StoreTx {
	return &memoryTx{store: st}
}

func (t *memoryTx) RunInTx(ctx context.Context, fn func(txCtx context.Context, store Store) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	restore := t.store.Snapshot()
	if err := fn(ctx, t.store); err != nil {
		restore()
		return err
	}
	return nil
}

const defaultTxTimeout = 5 * time.Second

// postgresTx runs each unit of work in one database transaction carried on
// the context, so the store and the Postgres sequencer share it.
type postgresTx struct {
	db      *sql.DB
	store   Store
	timeout time.Duration
}

// NewPostgresTx returns a StoreTx backed by db. st must resolve its executor
// through txcontext.
func NewPostgresTx(db *sql.DB, st Store) StoreTx {
	return &postgresTx{db: db, store: st, timeout: defaultTxTimeout}
}

func (t *postgresTx) RunInTx(ctx context.Context, fn func(txCtx context.Context, store Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(txcontext.WithTx(ctx, tx), t.store); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
