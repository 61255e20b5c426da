package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "isstracker:n2yo:quota"

// Redis is a Tracker shared by every instance pointing at the same Redis.
type Redis struct {
	client *redis.Client
	prefix string
	limit  int64
	window time.Duration
	now    func() time.Time
}

// NewRedis connects to redisURL and verifies the connection with PING.
func NewRedis(redisURL string, limit int64, window time.Duration) (*Redis, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return NewRedisFromClient(client, limit, window), nil
}

// NewRedisFromClient wraps an existing Redis connection.
func NewRedisFromClient(client *redis.Client, limit int64, window time.Duration) *Redis {
	if window <= 0 {
		window = time.Hour
	}
	return &Redis{
		client: client,
		prefix: defaultPrefix,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

func (r *Redis) key() string {
	return r.prefix + ":" + windowKey(r.now(), r.window)
}

// Reserve increments the window counter, undoing the increment when the
// budget was already spent.
func (r *Redis) Reserve(ctx context.Context) (Usage, error) {
	key := r.key()

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, r.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Usage{}, fmt.Errorf("reserving quota: %w", err)
	}

	used := incr.Val()
	if r.limit > 0 && used > r.limit {
		if err := r.client.Decr(ctx, key).Err(); err != nil {
			return Usage{}, fmt.Errorf("releasing quota: %w", err)
		}
		return Usage{Used: r.limit, Limit: r.limit, Allowed: false}, nil
	}
	return Usage{Used: used, Limit: r.limit, Allowed: true}, nil
}

func (r *Redis) Usage(ctx context.Context) (Usage, error) {
	used, err := r.client.Get(ctx, r.key()).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return Usage{}, fmt.Errorf("reading quota: %w", err)
	}
	return Usage{Used: used, Limit: r.limit, Allowed: r.limit <= 0 || used < r.limit}, nil
}

// Close releases the Redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}
