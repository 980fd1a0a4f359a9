package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"alcyxob/coachlink/internal/config"
)

// ConnectRedis initializes the Redis client used for slot caching and
// verifies the connection with a short ping.
func ConnectRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}
