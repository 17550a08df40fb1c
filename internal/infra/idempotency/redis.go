package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pipenotify/internal/domain/notification"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "pipenotify:idempotency:"

var _ notification.IdempotencyGuard = (*RedisGuard)(nil)

// RedisGuard binds idempotency keys to dispatch records using SET NX with a TTL.
type RedisGuard struct {
	client redis.Cmdable
	closer func() error
}

// NewRedisGuard creates a new Redis-backed idempotency guard.
func NewRedisGuard(redisAddr, password string, db int) *RedisGuard {
	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: password,
		DB:       db,
	})

	return &RedisGuard{client: client, closer: client.Close}
}

// NewRedisGuardWithClient wraps an existing client. Closing the guard does not close it.
func NewRedisGuardWithClient(client redis.Cmdable) *RedisGuard {
	return &RedisGuard{client: client, closer: func() error { return nil }}
}

// Claim stores rec under key unless the key already exists, in which case the
// record bound by the earlier request is returned. A key that expires between
// the SET NX and the follow-up GET is reported as an error rather than re-claimed.
func (g *RedisGuard) Claim(ctx context.Context, key string, rec notification.DispatchRecord, ttl time.Duration) (notification.DispatchRecord, bool, error) {
	redisKey := keyPrefix + key

	value, err := encodeRecord(rec)
	if err != nil {
		return notification.DispatchRecord{}, false, err
	}

	ok, err := g.client.SetNX(ctx, redisKey, value, ttl).Result()
	if err != nil {
		return notification.DispatchRecord{}, false, fmt.Errorf("claiming idempotency key: %w", err)
	}
	if ok {
		return rec, true, nil
	}

	stored, err := g.client.Get(ctx, redisKey).Result()
	if errors.Is(err, redis.Nil) {
		return notification.DispatchRecord{}, false, fmt.Errorf("idempotency key %s expired during claim", key)
	}
	if err != nil {
		return notification.DispatchRecord{}, false, fmt.Errorf("reading idempotency key: %w", err)
	}

	existing, err := decodeRecord(stored)
	if err != nil {
		return notification.DispatchRecord{}, false, err
	}
	return existing, false, nil
}

func encodeRecord(rec notification.DispatchRecord) (string, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encoding dispatch record: %w", err)
	}
	return string(data), nil
}

func decodeRecord(value string) (notification.DispatchRecord, error) {
	var rec notification.DispatchRecord
	if err := json.Unmarshal([]byte(value), &rec); err != nil {
		return notification.DispatchRecord{}, fmt.Errorf("decoding dispatch record: %w", err)
	}
	if rec.DispatchID == "" || rec.Stage == "" {
		return notification.DispatchRecord{}, fmt.Errorf("incomplete dispatch record: %q", value)
	}
	return rec, nil
}

// Release deletes the key.
func (g *RedisGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("releasing idempotency key: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (g *RedisGuard) Close() error {
	return g.closer()
}
