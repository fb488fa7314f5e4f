// Package session provides the persistence boundary for game sessions: a
// key-value store with TTL semantics (in-memory and Redis backends) and the
// typed record that a session serializes into it.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// ErrNotFound indicates the key is absent or its TTL has elapsed.
var ErrNotFound = errors.New("session: not found")

// DefaultTTL is the session lifetime applied when callers pass a zero TTL.
const DefaultTTL = time.Hour

// Store is a key-value store with per-key TTL. Values are opaque JSON
// documents; marshaling is owned by the record layer. Single-key operations
// are linearizable on every backend.
type Store interface {
	// Get returns the value for key, or ErrNotFound when absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key for ttl. A zero ttl means DefaultTTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether key is present and unexpired.
	Exists(ctx context.Context, key string) (bool, error)
}

// Config selects and parameterises the store backend
type Config struct {
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
}

// New builds the session store: it tries Redis first and falls back to the
// in-memory backend when the server is unreachable. Fallback is never an
// error; it is logged and the process carries on with local state.
func New(ctx context.Context, cfg Config, logger *log.Logger) Store {
	if cfg.RedisHost != "" {
		store, err := NewRedisStore(ctx, cfg)
		if err == nil {
			logger.Info("using redis session store", "host", cfg.RedisHost, "port", cfg.RedisPort)
			return store
		}
		logger.Warn("redis unreachable, falling back to in-memory sessions", "error", err)
	}
	return NewMemoryStore(quartz.NewReal())
}
