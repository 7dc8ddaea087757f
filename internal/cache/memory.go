package cache

import (
	"container/list"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sourishdey2005/fraud--detection/internal/domain"
)

// MemoryStore is a thread-safe LRU session store with TTL support. Idle
// sessions past their TTL read as absent; the least recently used session is
// evicted when the store is full.
type MemoryStore struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	order   *list.List
}

type storeEntry struct {
	sessionID string
	snapshot  []byte
	expiresAt time.Time
}

// NewMemoryStore creates an in-memory session store.
func NewMemoryStore(maxSize int, ttl time.Duration) *MemoryStore {
	if maxSize <= 0 {
		maxSize = 10000
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &MemoryStore{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		order:   list.New(),
	}
}

// Get retrieves a session snapshot. Reading refreshes the session's TTL.
func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*domain.SessionState, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("sessionID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.items[sessionID]
	if !ok {
		return nil, nil
	}

	entry := elem.Value.(*storeEntry)
	if time.Now().After(entry.expiresAt) {
		s.removeElement(elem)
		return nil, nil
	}

	entry.expiresAt = time.Now().Add(s.ttl)
	s.order.MoveToFront(elem)

	var state domain.SessionState
	if err := json.Unmarshal(entry.snapshot, &state); err != nil {
		return nil, fmt.Errorf("failed to decode session snapshot: %w", err)
	}
	return &state, nil
}

// Put stores a session snapshot, replacing any previous one.
func (s *MemoryStore) Put(ctx context.Context, state *domain.SessionState) error {
	if state == nil || state.ID == "" {
		return fmt.Errorf("session state with an id is required")
	}

	snapshot, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode session snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.items[state.ID]; ok {
		s.order.MoveToFront(elem)
		entry := elem.Value.(*storeEntry)
		entry.snapshot = snapshot
		entry.expiresAt = time.Now().Add(s.ttl)
		return nil
	}

	elem := s.order.PushFront(&storeEntry{
		sessionID: state.ID,
		snapshot:  snapshot,
		expiresAt: time.Now().Add(s.ttl),
	})
	s.items[state.ID] = elem

	for s.order.Len() > s.maxSize {
		s.removeOldest()
	}
	return nil
}

// Delete removes a session.
func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.items[sessionID]; ok {
		s.removeElement(elem)
	}
	return nil
}

// Ping checks store health.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close clears the store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]*list.Element)
	s.order = list.New()
	return nil
}

// Stats returns store statistics.
func (s *MemoryStore) Stats() (size int, capacity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len(), s.maxSize
}

func (s *MemoryStore) removeOldest() {
	if elem := s.order.Back(); elem != nil {
		s.removeElement(elem)
	}
}

func (s *MemoryStore) removeElement(elem *list.Element) {
	entry := elem.Value.(*storeEntry)
	delete(s.items, entry.sessionID)
	s.order.Remove(elem)
}
