package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const ratelimitKeyPrefix = "admission:calls:"

// RedisRateLimitStore persists call timestamps in Redis so admission state is
// shared across processes. Values are JSON-encoded unix-milli lists with a
// 24h TTL; an expired or missing key reads as an empty list.
type RedisRateLimitStore struct {
	cli *redis.Client
}

func NewRedisRateLimitStore(cli *redis.Client) *RedisRateLimitStore {
	return &RedisRateLimitStore{cli: cli}
}

func (s *RedisRateLimitStore) Get(ctx context.Context, providerID string) ([]time.Time, error) {
	b, err := s.cli.Get(ctx, ratelimitKeyPrefix+providerID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var millis []int64
	if err := json.Unmarshal(b, &millis); err != nil {
		return nil, fmt.Errorf("decode timestamps: %w", err)
	}
	stamps := make([]time.Time, 0, len(millis))
	for _, ms := range millis {
		stamps = append(stamps, time.UnixMilli(ms))
	}
	return stamps, nil
}

func (s *RedisRateLimitStore) Put(ctx context.Context, providerID string, stamps []time.Time) error {
	millis := make([]int64, 0, len(stamps))
	for _, t := range stamps {
		millis = append(millis, t.UnixMilli())
	}
	b, err := json.Marshal(millis)
	if err != nil {
		return fmt.Errorf("encode timestamps: %w", err)
	}
	if err := s.cli.Set(ctx, ratelimitKeyPrefix+providerID, b, 24*time.Hour).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
