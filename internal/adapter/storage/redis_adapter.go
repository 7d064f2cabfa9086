package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/stock-ledger/internal/port"
)

const (
	lockKeyPrefix     = "lock:"
	defaultLockTTL    = 5 * time.Second
	defaultRetryDelay = 10 * time.Millisecond
)

// releaseLockScript deletes the key only while it still holds our token,
// so an expired lock that was taken over is never released by the old owner.
var releaseLockScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// RedisAdapter is a port.Locker shared by every replica talking to the
// same Redis.
type RedisAdapter struct {
	client     *redis.Client
	ttl        time.Duration
	retryDelay time.Duration
}

var _ port.Locker = (*RedisAdapter)(nil)

func NewRedisAdapter(client *redis.Client, ttl time.Duration) *RedisAdapter {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisAdapter{client: client, ttl: ttl, retryDelay: defaultRetryDelay}
}

func (r *RedisAdapter) Acquire(ctx context.Context, key string) (func(context.Context) error, error) {
	redisKey := lockKeyPrefix + key
	token := uuid.NewString()

	for {
		ok, err := r.client.SetNX(ctx, redisKey, token, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}

		timer := time.NewTimer(r.retryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("acquire lock %s: %w", key, ctx.Err())
		case <-timer.C:
		}
	}

	release := func(ctx context.Context) error {
		if err := releaseLockScript.Run(ctx, r.client, []string{redisKey}, token).Err(); err != nil {
			return fmt.Errorf("release lock %s: %w", key, err)
		}
		return nil
	}
	return release, nil
}
