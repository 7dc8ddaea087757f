package domain

import "context"

// SessionStore persists session snapshots between user interactions. The
// dashboard is request/response per user action: each action loads a
// snapshot, operates on it, and writes it back.
type SessionStore interface {
	// Get retrieves a session snapshot.
	// Returns nil, nil if the session does not exist.
	Get(ctx context.Context, sessionID string) (*SessionState, error)

	// Put stores a session snapshot, replacing any previous one.
	Put(ctx context.Context, state *SessionState) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}
