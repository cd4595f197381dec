/*
redis.go - Redis-backed availability cache

PURPOSE:
  Caches the unavailable ranges of one cabin-month so calendar pages don't
  hit the database on every render. Implements booking.AvailabilityCache.

KEYS:
  availability:{cabinID}:{YYYY-MM}   JSON list of ranges, with TTL
  availability:{cabinID}:keys        set of the month keys above

  Invalidate deletes every month key of a cabin through the key set, so a
  create or cancel never leaves a stale month behind.

SEE ALSO:
  - booking/availability.go: Read-through use of this cache
*/
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/warp/cabin-engine/generic"
)

const DefaultTTL = 10 * time.Minute

type Options struct {
	Addr     string
	Password string
	DB       int
}

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, opts Options) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}
	return client, nil
}

type RedisAvailability struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisAvailability(client *redis.Client, ttl time.Duration) *RedisAvailability {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisAvailability{client: client, ttl: ttl}
}

func monthKey(cabinID generic.CabinID, month generic.Period) string {
	return fmt.Sprintf("availability:%d:%04d-%02d", cabinID, month.Start.Year(), int(month.Start.Month()))
}

func indexKey(cabinID generic.CabinID) string {
	return fmt.Sprintf("availability:%d:keys", cabinID)
}

// GetRanges returns the cached ranges and whether the month was cached.
func (r *RedisAvailability) GetRanges(ctx context.Context, cabinID generic.CabinID, month generic.Period) ([]generic.Period, bool, error) {
	data, err := r.client.Get(ctx, monthKey(cabinID, month)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var ranges []generic.Period
	if err := json.Unmarshal(data, &ranges); err != nil {
		return nil, false, fmt.Errorf("decode cached ranges: %w", err)
	}
	if ranges == nil {
		ranges = []generic.Period{}
	}
	return ranges, true, nil
}

func (r *RedisAvailability) SetRanges(ctx context.Context, cabinID generic.CabinID, month generic.Period, ranges []generic.Period) error {
	if ranges == nil {
		ranges = []generic.Period{}
	}
	data, err := json.Marshal(ranges)
	if err != nil {
		return err
	}

	key := monthKey(cabinID, month)
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, r.ttl)
		pipe.SAdd(ctx, indexKey(cabinID), key)
		pipe.Expire(ctx, indexKey(cabinID), r.ttl)
		return nil
	})
	return err
}

// Invalidate drops every cached month of the cabin.
func (r *RedisAvailability) Invalidate(ctx context.Context, cabinID generic.CabinID) error {
	idx := indexKey(cabinID)
	keys, err := r.client.SMembers(ctx, idx).Result()
	if err != nil {
		return err
	}
	return r.client.Del(ctx, append(keys, idx)...).Err()
}
