package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	defaultTTL        = 2 * time.Minute
	defaultRetryDelay = 50 * time.Millisecond
	keyPrefix         = "settlement:consumer-lock:"
)

// releaseScript deletes the key only while it still holds our token, so an
// expired lock taken over by another holder is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker implements port.ConsumerLocker across processes with a Redis
// key per consumer. The TTL must outlast a gateway call plus the commit.
type RedisLocker struct {
	client     redis.UniversalClient
	ttl        time.Duration
	retryDelay time.Duration
	logger     *slog.Logger
}

// NewRedisLocker wires dependencies. Zero durations take the defaults.
func NewRedisLocker(client redis.UniversalClient, ttl, retryDelay time.Duration, logger *slog.Logger) *RedisLocker {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisLocker{client: client, ttl: ttl, retryDelay: retryDelay, logger: logger}
}

// Lock polls SET NX PX until the key is acquired or ctx ends.
func (l *RedisLocker) Lock(ctx context.Context, consumerID string) (func(), error) {
	key := keyPrefix + consumerID
	token := uuid.New().String()

	ticker := time.NewTicker(l.retryDelay)
	defer ticker.Stop()
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock for consumer %s: %w", consumerID, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("acquire lock for consumer %s: %w", consumerID, ctx.Err())
		case <-ticker.C:
		}
	}

	return func() {
		// The caller's ctx may already be cancelled; release regardless.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		n, err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Int()
		if err != nil && !errors.Is(err, redis.Nil) {
			l.logger.Error("release consumer lock", "consumer_id", consumerID, "error", err)
			return
		}
		if n == 0 {
			l.logger.Warn("consumer lock expired before release", "consumer_id", consumerID)
		}
	}, nil
}
