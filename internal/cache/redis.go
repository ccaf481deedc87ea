package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/retailsetu/delivery-engine/internal/config"

	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client
var redisPrefix string
var redisEnabled bool

// InitRedis connects the shared Redis client. With the section disabled the
// cache degrades to a no-op and callers fall through to the database.
func InitRedis(cfg *config.RedisConfig) error {
	if cfg == nil || !cfg.Enabled {
		redisEnabled = false
		return nil
	}
	addr := strings.TrimSpace(cfg.Host)
	if addr == "" {
		addr = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	redisPrefix = strings.TrimSpace(cfg.Prefix)
	if redisPrefix == "" {
		redisPrefix = "rs"
	}

	redisClient = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", addr, port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	redisEnabled = true
	return nil
}

// Enabled reports whether the cache is usable.
func Enabled() bool {
	return redisEnabled && redisClient != nil
}

// Client returns the shared Redis client, nil when disabled.
func Client() *redis.Client {
	if !Enabled() {
		return nil
	}
	return redisClient
}

// GetJSON reads a JSON value into dest. Returns false on a miss.
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !Enabled() {
		return false, nil
	}
	val, err := redisClient.Get(ctx, buildKey(key)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON stores a JSON value with a TTL.
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !Enabled() {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return redisClient.Set(ctx, buildKey(key), payload, ttl).Err()
}

// Del removes a key.
func Del(ctx context.Context, key string) error {
	if !Enabled() {
		return nil
	}
	return redisClient.Del(ctx, buildKey(key)).Err()
}

// PublishJSON publishes a JSON message to a pub/sub channel. Delivery is
// best-effort: a subscriber that is offline simply misses the message and
// catches up from the notification table.
func PublishJSON(ctx context.Context, channel string, value interface{}) error {
	if !Enabled() {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return redisClient.Publish(ctx, buildKey(channel), payload).Err()
}

// IncrWithWindow increments a counter, setting its expiry on first use.
// Used by the sliding-window rate limiter.
func IncrWithWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	if !Enabled() {
		return 0, nil
	}
	full := buildKey(key)
	count, err := redisClient.Incr(ctx, full).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := redisClient.Expire(ctx, full, window).Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}

func buildKey(key string) string {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return redisPrefix
	}
	return fmt.Sprintf("%s:%s", redisPrefix, trimmed)
}
