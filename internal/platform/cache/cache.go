package cache

import (
	"context"
	"time"
)

// Cache is the best-effort accelerator in front of every external data
// source, plus the pub/sub fan-out for live-match deltas. Implementations
// must never fail a caller: an unreachable store degrades to misses and
// dropped publishes, and the caller proceeds as if the cache were empty.
//
// Entries are immutable once set (overwrite, not mutate-in-place), so
// concurrent writers to one key are a last-writer-wins race; the value is
// always re-derivable from upstream.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Publish(ctx context.Context, channel string, payload []byte)
}
