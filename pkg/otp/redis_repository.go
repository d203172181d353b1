package otp

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRepository keeps one key per email. SET replaces the previous record
// atomically and the key TTL expires it passively.
type RedisRepository struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisRepository(client redis.UniversalClient, prefix string) *RedisRepository {
	return &RedisRepository{client: client, prefix: prefix}
}

func (r *RedisRepository) key(email string) string {
	return r.prefix + email
}

func (r *RedisRepository) Replace(ctx context.Context, rec Record) error {
	ttl := rec.ExpiresAt.Sub(rec.CreatedAt)
	if ttl <= 0 {
		return r.DeleteAll(ctx, rec.Email)
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal otp record: %w", err)
	}
	if err := r.client.Set(ctx, r.key(rec.Email), payload, ttl).Err(); err != nil {
		return fmt.Errorf("persist otp record: %w", err)
	}
	return nil
}

func (r *RedisRepository) FindActive(ctx context.Context, email, codeHash string, now time.Time) (Record, error) {
	payload, err := r.client.Get(ctx, r.key(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("load otp record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return Record{}, fmt.Errorf("decode otp record: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(rec.CodeHash), []byte(codeHash)) != 1 || !rec.ExpiresAt.After(now) {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (r *RedisRepository) DeleteAll(ctx context.Context, email string) error {
	if err := r.client.Del(ctx, r.key(email)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("delete otp record: %w", err)
	}
	return nil
}
