package otp

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// RepositoryConfig carries the backend handles a ledger may need.
type RepositoryConfig struct {
	// Pool is required for the postgres ledger
	Pool *pgxpool.Pool
	// Redis is required for the redis ledger
	Redis       redis.UniversalClient
	RedisPrefix string
}

// NewRepository creates an OTP ledger for the given store type.
func NewRepository(store string, config RepositoryConfig) (Repository, error) {
	switch store {
	case "postgres", "postgresql":
		if config.Pool == nil {
			return nil, fmt.Errorf("pool required for postgres otp repository")
		}
		return NewPostgresRepository(config.Pool), nil
	case "redis":
		if config.Redis == nil {
			return nil, fmt.Errorf("redis client required for redis otp repository")
		}
		prefix := config.RedisPrefix
		if prefix == "" {
			prefix = "otp:"
		}
		return NewRedisRepository(config.Redis, prefix), nil
	case "memory":
		return NewInMemoryRepository(), nil
	default:
		return nil, fmt.Errorf("unsupported otp store: %s (supported: postgres, redis, memory)", store)
	}
}
