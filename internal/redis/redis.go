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

// Set stores a value with a TTL; cache writes are best-effort and only logged.
func Set(ctx context.Context, key string, value interface{}, expiration time.Duration) {
	if err := Rdb.Set(ctx, key, value, expiration).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to add key to redis")
	}
}

// Get returns the cached value and whether it was present.
func Get(ctx context.Context, key string) (string, bool) {
	val, err := Rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to read key from redis")
		return "", false
	}
	return val, true
}
