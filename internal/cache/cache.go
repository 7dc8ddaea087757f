// Package cache provides the session store implementations: a local LRU for
// single-node deployments and Redis for multi-node ones. Snapshots are
// stored serialized in both, so the two are interchangeable.
package cache

import (
	"fmt"

	"github.com/sourishdey2005/fraud--detection/internal/domain"
)

// New creates a session store based on configuration.
func New(cfg domain.SessionStoreConfig) (domain.SessionStore, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(cfg.MaxSessions, cfg.TTL), nil

	case "redis":
		return NewRedisStore(cfg)

	default:
		return nil, fmt.Errorf("unsupported session store type: %s", cfg.Type)
	}
}
