package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var Rdb *redis.Client

func InitRedis(redisAddress string, redisUsername string, redisPassword string) {
	Rdb = redis.NewClient(&redis.Options{
		Addr:     redisAddress,
		Username: redisUsername,
		Password: redisPassword,
		DB:       0,
	})
}

// Set writes a value with a TTL. Cache writes are best-effort; failures are
// logged, never surfaced.
func Set(ctx context.Context, key string, value string, expiration time.Duration) {
	if Rdb == nil {
		return
	}
	if err := Rdb.Set(ctx, key, value, expiration).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to write redis key")
	}
}

// Get returns the cached value and whether it was present.
func Get(ctx context.Context, key string) (string, bool) {
	if Rdb == nil {
		return "", false
	}
	val, err := Rdb.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			log.Error().Err(err).Str("key", key).Msg("failed to read redis key")
		}
		return "", false
	}
	return val, true
}
