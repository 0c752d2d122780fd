package config

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedis connects to Redis if an address is configured. Returns nil when
// Redis is not configured or unreachable; callers treat a nil client as
// "no optimization available" and proceed without it.
func NewRedis(cfg *Config) *redis.Client {
	if cfg.RedisAddr == "" {
		log.Println("[redis] not configured, rate limiting and caching disabled")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("[redis] ping failed, proceeding without redis: %v", err)
		_ = rdb.Close()
		return nil
	}

	log.Printf("[redis] connected to %s", cfg.RedisAddr)
	return rdb
}
