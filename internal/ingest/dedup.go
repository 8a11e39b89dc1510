package ingest

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupKeyPrefix = "helpdesk:ingested:"

// DedupFilter short-circuits reprocessing of recently handled
// message-ids. It is a fast path only: the ticket_messages table is the
// authoritative idempotency gate, so filter misses and Redis outages are
// safe.
type DedupFilter interface {
	Seen(ctx context.Context, messageID string) (bool, error)
	Mark(ctx context.Context, messageID string) error
}

type redisDedup struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisDedup creates a Redis-backed filter. Entries expire after ttl;
// anything older falls through to the database check.
func NewRedisDedup(rdb *redis.Client, ttl time.Duration) DedupFilter {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &redisDedup{rdb: rdb, ttl: ttl}
}

func (f *redisDedup) Seen(ctx context.Context, messageID string) (bool, error) {
	n, err := f.rdb.Exists(ctx, dedupKeyPrefix+messageID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Mark records the id only after the message is fully committed, so a
// write failure is retried rather than remembered.
func (f *redisDedup) Mark(ctx context.Context, messageID string) error {
	return f.rdb.Set(ctx, dedupKeyPrefix+messageID, 1, f.ttl).Err()
}
