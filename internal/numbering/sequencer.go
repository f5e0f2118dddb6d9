package numbering

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	txcontext "homestay/pkg/platform/tx"
)

// Sequencer hands out monotonically increasing serials per scope. The first
// value in a fresh scope is seed+1. Two calls in the same scope never return
// the same value.
type Sequencer interface {
	Next(ctx context.Context, scope string, seed int64) (int64, error)
}

// MemorySequencer is the in-process counter used by tests and single-node
// development setups.
type MemorySequencer struct {
	mu       sync.Mutex
	counters map[string]int64
}

func NewMemorySequencer() *MemorySequencer {
	return &MemorySequencer{counters: make(map[string]int64)}
}

func (s *MemorySequencer) Next(_ context.Context, scope string, seed int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.counters[scope]
	if !ok {
		current = seed
	}
	current++
	s.counters[scope] = current
	return current, nil
}

// PostgresSequencer keeps counters in the number_sequences table. When the
// context carries a transaction the increment joins it, so a rolled back
// application creation also gives its serial back.
type PostgresSequencer struct {
	db *sql.DB
}

func NewPostgresSequencer(db *sql.DB) *PostgresSequencer {
	return &PostgresSequencer{db: db}
}

const nextSerialSQL = `
INSERT INTO number_sequences (scope, value)
VALUES ($1, $2 + 1)
ON CONFLICT (scope) DO UPDATE SET value = number_sequences.value + 1
RETURNING value`

func (s *PostgresSequencer) Next(ctx context.Context, scope string, seed int64) (int64, error) {
	var value int64
	err := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, nextSerialSQL, scope, seed).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("next serial for %s: %w", scope, err)
	}
	return value, nil
}

// RedisSequencer increments counters with INCR. Keys are created with
// SETNX at the seed so the first INCR yields seed+1.
type RedisSequencer struct {
	client    *redis.Client
	keyPrefix string
}

func NewRedisSequencer(client *redis.Client) *RedisSequencer {
	return &RedisSequencer{client: client, keyPrefix: "homestay:seq:"}
}

func (s *RedisSequencer) Next(ctx context.Context, scope string, seed int64) (int64, error) {
	key := s.keyPrefix + scope
	if err := s.client.SetNX(ctx, key, seed, 0).Err(); err != nil {
		return 0, fmt.Errorf("seed serial %s: %w", scope, err)
	}
	value, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("next serial for %s: %w", scope, err)
	}
	return value, nil
}
