package roundlock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only if it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a Locker shared by every process that talks to the same Redis.
// Locks expire after ttl so a crashed holder cannot block a tournament forever.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedis wraps an existing client.
func NewRedis(rdb *redis.Client, ttl time.Duration) *Redis {
	return &Redis{rdb: rdb, ttl: ttl}
}

// NewRedisFromURL parses a redis:// URL and pings the server.
func NewRedisFromURL(ctx context.Context, url string, ttl time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return NewRedis(rdb, ttl), nil
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.rdb.Close()
}

func (r *Redis) key(tournamentID int64) string {
	return fmt.Sprintf("tournament:lock:%d", tournamentID)
}

// Acquire takes the lock for tournamentID or returns ErrLocked.
func (r *Redis) Acquire(ctx context.Context, tournamentID int64) (Release, error) {
	key := r.key(tournamentID)
	token := uuid.NewString()

	ok, err := r.rdb.SetNX(ctx, key, token, r.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire round lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}

	return func(ctx context.Context) error {
		n, err := releaseScript.Run(ctx, r.rdb, []string{key}, token).Int()
		if err != nil {
			return fmt.Errorf("failed to release round lock: %w", err)
		}
		if n == 0 {
			return ErrNotHeld
		}
		return nil
	}, nil
}
