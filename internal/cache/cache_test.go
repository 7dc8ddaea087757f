package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/sourishdey2005/fraud--detection/internal/domain"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore(10, time.Minute)
	defer store.Close()

	ctx := context.Background()
	state := &domain.SessionState{
		ID:          "sess-001",
		Alerts:      []string{"alert"},
		CreditScore: 700,
		Transactions: []domain.Transaction{
			{ID: "TXN1", Status: domain.StatusPending, Handle: "u@sbi", Amount: 100},
		},
		Flags: domain.VerificationFlags{BankAccount: true},
	}

	if err := store.Put(ctx, state); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	got, err := store.Get(ctx, "sess-001")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected session, got nil")
	}
	if got.CreditScore != 700 || len(got.Transactions) != 1 || !got.Flags.BankAccount {
		t.Errorf("snapshot corrupted in round trip: %+v", got)
	}
}

func TestMemoryStoreMissingSession(t *testing.T) {
	store := NewMemoryStore(10, time.Minute)
	defer store.Close()

	got, err := store.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing session, got %+v", got)
	}
}

func TestMemoryStoreIsolation(t *testing.T) {
	store := NewMemoryStore(10, time.Minute)
	defer store.Close()

	ctx := context.Background()
	state := &domain.SessionState{ID: "sess-001", CreditScore: 500}
	store.Put(ctx, state)

	// Mutating the stored-in value must not affect the stored snapshot.
	state.CreditScore = 999

	got, _ := store.Get(ctx, "sess-001")
	if got.CreditScore != 500 {
		t.Errorf("store must hold its own copy, got score %d", got.CreditScore)
	}
}

func TestMemoryStoreEviction(t *testing.T) {
	store := NewMemoryStore(2, time.Minute)
	defer store.Close()

	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		store.Put(ctx, &domain.SessionState{ID: fmt.Sprintf("sess-%d", i)})
	}

	if size, _ := store.Stats(); size != 2 {
		t.Errorf("expected size 2 after eviction, got %d", size)
	}
	if got, _ := store.Get(ctx, "sess-1"); got != nil {
		t.Error("oldest session must be evicted")
	}
	if got, _ := store.Get(ctx, "sess-3"); got == nil {
		t.Error("newest session must survive")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(10, 10*time.Millisecond)
	defer store.Close()

	ctx := context.Background()
	store.Put(ctx, &domain.SessionState{ID: "sess-001"})

	time.Sleep(20 * time.Millisecond)

	if got, _ := store.Get(ctx, "sess-001"); got != nil {
		t.Error("expired session must read as absent")
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore(10, time.Minute)
	defer store.Close()

	ctx := context.Background()
	store.Put(ctx, &domain.SessionState{ID: "sess-001"})

	if err := store.Delete(ctx, "sess-001"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if got, _ := store.Get(ctx, "sess-001"); got != nil {
		t.Error("deleted session must be gone")
	}
}

func TestFactoryRejectsUnknownType(t *testing.T) {
	if _, err := New(domain.SessionStoreConfig{Type: "bogus"}); err == nil {
		t.Error("expected error for unknown store type")
	}
}
