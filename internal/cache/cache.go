// Package cache provides the key/value store used for login sessions and
// rendered post HTML. A process-local implementation backs single-instance
// deployments; redis lets several instances share sessions.
package cache

import (
	"fmt"
	"strings"
	"time"
)

// Cache is a string key/value store with per-entry expiry.
type Cache interface {
	Get(key string) (value string, found bool, err error)
	Set(key string, value string, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Config selects and configures a Cache implementation.
type Config struct {
	Type            string        `yaml:"type" koanf:"type"` // "memory" or "redis"
	RedisAddr       string        `yaml:"redis_addr" koanf:"redis_addr"`
	RedisPassword   string        `yaml:"redis_password" koanf:"redis_password"`
	RedisDB         int           `yaml:"redis_db" koanf:"redis_db"`
	DefaultTTL      time.Duration `yaml:"default_ttl" koanf:"default_ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" koanf:"cleanup_interval"`
}

// DefaultConfig returns an in-memory cache configuration.
func DefaultConfig() Config {
	return Config{
		Type:            "memory",
		DefaultTTL:      24 * time.Hour,
		CleanupInterval: 10 * time.Minute,
	}
}

// New builds the Cache named by cfg.Type.
func New(cfg Config) (Cache, error) {
	switch cfg.Type {
	case "", "memory":
		return NewMemoryCache(cfg), nil
	case "redis":
		return NewRedisCache(cfg)
	default:
		return nil, fmt.Errorf("unknown cache type %q", cfg.Type)
	}
}

// Key joins a prefix and parts into a namespaced cache key.
func Key(prefix string, parts ...string) string {
	if len(parts) == 0 {
		return prefix
	}
	return prefix + ":" + strings.Join(parts, ":")
}
