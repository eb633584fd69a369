// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"pawcare/config"

	"github.com/go-redis/redis/v8"
)

// CacheClient is the generic cache client. The booking engine uses it for
// processed webhook-event dedup keys.
var CacheClient *redis.Client

// InitCache initializes the generic Redis cache client.
func InitCache() {
	CacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := CacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Cache): %v", err)
	}
}

// GetCacheClient returns the generic cache client. Unlike InitCache it does
// not ping; callers that can degrade without the cache get a client whose
// commands fail instead of a fatal exit.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		CacheClient = redis.NewClient(&redis.Options{
			Addr:     config.AppConfig.RedisAddr,
			Password: config.AppConfig.RedisPassword,
			DB:       config.AppConfig.RedisCacheDB,
		})
	}
	return CacheClient
}
