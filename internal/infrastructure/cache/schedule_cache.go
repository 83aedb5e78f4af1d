package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"

	"github.com/greystone/lending-api/internal/domain/model"
	"github.com/greystone/lending-api/internal/domain/port"
)

// keyPrefix is bumped whenever the cached representation changes.
const keyPrefix = "amortization:v1:"

// kv is the subset of *redis.Client the cache needs.
type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// ScheduleCache stores computed schedules in Redis as JSON.
type ScheduleCache struct {
	client kv
	ttl    time.Duration
}

var _ port.ScheduleCache = (*ScheduleCache)(nil)

// NewScheduleCache wraps a Redis client. A zero ttl keeps entries forever.
func NewScheduleCache(client kv, ttl time.Duration) *ScheduleCache {
	return &ScheduleCache{client: client, ttl: ttl}
}

// NewClient opens a Redis client and verifies the connection.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

func (c *ScheduleCache) Get(ctx context.Context, in model.AmortizationInput) (model.AmortizationSchedule, bool, error) {
	raw, err := c.client.Get(ctx, Key(in)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.AmortizationSchedule{}, false, nil
	}
	if err != nil {
		return model.AmortizationSchedule{}, false, fmt.Errorf("redis get: %w", err)
	}

	var s model.AmortizationSchedule
	if err := json.Unmarshal(raw, &s); err != nil {
		return model.AmortizationSchedule{}, false, fmt.Errorf("decode cached schedule: %w", err)
	}
	return s, true, nil
}

func (c *ScheduleCache) Set(ctx context.Context, in model.AmortizationInput, s model.AmortizationSchedule) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode schedule: %w", err)
	}
	if err := c.client.Set(ctx, Key(in), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Key derives the cache key from the canonical form of the terms, so that
// 100000 and 100000.00 share an entry.
func Key(in model.AmortizationInput) string {
	canonical := in.Principal.String() + "|" +
		in.AnnualRate.String() + "|" +
		strconv.Itoa(in.TermMonths) + "|" +
		model.DateOnly(in.StartDate).Format(time.DateOnly)
	return keyPrefix + strconv.FormatUint(xxhash.Sum64String(canonical), 16)
}
