package helpers

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures NewRedisClient. Zero timeouts fall back to short
// defaults.
type RedisOptions struct {
	Addr         string
	Password     string
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func NewRedisClient(o RedisOptions) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         o.Addr,
		Password:     o.Password,
		DB:           o.DB,
		DialTimeout:  orDefault(o.DialTimeout, 2*time.Second),
		ReadTimeout:  orDefault(o.ReadTimeout, 500*time.Millisecond),
		WriteTimeout: orDefault(o.WriteTimeout, 500*time.Millisecond),
	})
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// RedisSetJSON stores value as JSON under key.
func RedisSetJSON(ctx context.Context, rdb redis.Cmdable, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, b, ttl).Err()
}

// RedisGetJSON decodes key into dest. found is false on a cache miss.
func RedisGetJSON[T any](ctx context.Context, rdb redis.Cmdable, key string, dest *T) (bool, error) {
	res, err := rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(res, dest); err != nil {
		return false, err
	}
	return true, nil
}

// RedisGetInt64 reads an integer counter; a missing key reads as 0.
func RedisGetInt64(ctx context.Context, rdb redis.Cmdable, key string) (int64, error) {
	n, err := rdb.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// RedisBump increments the counter at key and returns the new value.
func RedisBump(ctx context.Context, rdb redis.Cmdable, key string) (int64, error) {
	return rdb.Incr(ctx, key).Result()
}
