// Package kvstore provides durable string key/value stores backing the
// storefront's session and profile slots.
package kvstore

import (
	"fmt"

	"github.com/gamstore/storefront/internal/domain"
)

// Store types
const (
	TypeMemory = "memory"
	TypeSQLite = "sqlite"
	TypeRedis  = "redis"
)

// Config selects and configures a backend
type Config struct {
	Type       string
	SQLitePath string
	RedisURL   string
	RedisKey   string // key prefix, defaults to DefaultRedisPrefix
}

// New opens the store named by cfg.Type
func New(cfg Config) (domain.KeyValueStore, error) {
	switch cfg.Type {
	case "", TypeMemory:
		return NewMemoryStore(), nil
	case TypeSQLite:
		return NewSQLiteStore(cfg.SQLitePath)
	case TypeRedis:
		return NewRedisStore(RedisConfig{URL: cfg.RedisURL, Prefix: cfg.RedisKey})
	default:
		return nil, fmt.Errorf("unknown store type %q", cfg.Type)
	}
}
