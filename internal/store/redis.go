package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisDeadlines keeps countdown deadlines in redis, keyed per order
// identifier. Keys carry an expiry comfortably past the deadline itself so
// finished orders do not accumulate.
type RedisDeadlines struct {
	Client *redis.Client
}

func NewRedisDeadlines(client *redis.Client) *RedisDeadlines {
	return &RedisDeadlines{Client: client}
}

func deadlineKey(identifier string) string {
	return "timer_end:" + identifier
}

func (s *RedisDeadlines) Get(ctx context.Context, identifier string) (time.Time, bool, error) {
	v, err := s.Client.Get(ctx, deadlineKey(identifier)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	millis, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, false, err
	}
	return time.UnixMilli(millis), true, nil
}

func (s *RedisDeadlines) Put(ctx context.Context, identifier string, deadline time.Time) error {
	ttl := time.Until(deadline) + 24*time.Hour
	return s.Client.Set(ctx, deadlineKey(identifier), strconv.FormatInt(deadline.UnixMilli(), 10), ttl).Err()
}
