package api

import (
	"errors"
	"sync"
)

var (
	ErrUserExists         = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// userRegistry is the prototype user store: in-memory, process-lifetime,
// plain credential comparison. Security hardening is explicitly out of
// scope for the dashboard.
type userRegistry struct {
	mu    sync.Mutex
	users map[string]string
}

func newUserRegistry() *userRegistry {
	return &userRegistry{users: make(map[string]string)}
}

func (r *userRegistry) register(username, password string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[username]; ok {
		return ErrUserExists
	}
	r.users[username] = password
	return nil
}

func (r *userRegistry) authenticate(username, password string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[username]
	if !ok || stored != password {
		return ErrInvalidCredentials
	}
	return nil
}
