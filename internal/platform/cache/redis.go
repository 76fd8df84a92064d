package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pitchsight/datapipe/internal/platform/logging"
)

// Redis adapts a go-redis client to the Cache contract. Every operation is
// best-effort: failures are logged at warn and the caller proceeds as if
// the cache were empty.
type Redis struct {
	client *redis.Client
	logger *logging.Logger
}

func NewRedis(client *redis.Client, logger *logging.Logger) *Redis {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Redis{
		client: client,
		logger: logger,
	}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	if r.client == nil || key == "" {
		return nil, false
	}

	value, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.WarnContext(ctx, "cache get failed", "key", key, "error", err)
		}
		return nil, false
	}

	return value, true
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if r.client == nil || key == "" {
		return
	}

	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		r.logger.WarnContext(ctx, "cache set failed", "key", key, "ttl", ttl, "error", err)
	}
}

func (r *Redis) Publish(ctx context.Context, channel string, payload []byte) {
	if r.client == nil || channel == "" {
		return
	}

	if err := r.client.Publish(ctx, channel, payload).Err(); err != nil {
		r.logger.WarnContext(ctx, "publish failed", "channel", channel, "error", err)
	}
}
