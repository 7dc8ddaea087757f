// Package ledger holds the ordered, append-only transaction store of one
// session.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/sourishdey2005/fraud--detection/internal/domain"
	"github.com/sourishdey2005/fraud--detection/internal/identity"
)

var (
	// ErrHandleRejected is returned when a submitted payment handle fails
	// format validation. The store is left untouched.
	ErrHandleRejected = errors.New("payment handle rejected")

	// ErrIndexOutOfRange is returned when a status update targets a
	// non-existent record.
	ErrIndexOutOfRange = errors.New("transaction index out of range")

	// ErrInvalidAmount is returned for non-positive amounts.
	ErrInvalidAmount = errors.New("amount must be at least 1")
)

// Ledger is the ordered collection of transaction records for one session.
// Append-only except for the single Pending -> Validated status transition.
// Not safe for concurrent use; the owning session serializes access.
type Ledger struct {
	records []domain.Transaction
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{}
}

// FromRecords rebuilds a ledger from a stored session snapshot.
func FromRecords(records []domain.Transaction) *Ledger {
	l := &Ledger{records: make([]domain.Transaction, len(records))}
	copy(l.records, records)
	return l
}

// Submit validates the payment handle and appends a new Pending record. The
// record id is "TXN<n>" with n = count of prior records + 1. Nothing is
// stored when validation fails.
func (l *Ledger) Submit(handle string, amount int64, location string) (domain.Transaction, error) {
	if !identity.ValidPaymentHandle(handle) {
		return domain.Transaction{}, fmt.Errorf("%w: %q", ErrHandleRejected, handle)
	}
	if amount < 1 {
		return domain.Transaction{}, fmt.Errorf("%w: got %d", ErrInvalidAmount, amount)
	}

	tx := domain.Transaction{
		ID:        fmt.Sprintf("TXN%d", len(l.records)+1),
		Status:    domain.StatusPending,
		Handle:    handle,
		Amount:    amount,
		Location:  location,
		CreatedAt: time.Now().UTC(),
	}
	l.records = append(l.records, tx)
	return tx, nil
}

// Validate marks the record at index as Validated. Re-validating an already
// Validated record is allowed and has no observable effect.
func (l *Ledger) Validate(index int) error {
	if index < 0 || index >= len(l.records) {
		return fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, index, len(l.records))
	}
	l.records[index].Status = domain.StatusValidated
	return nil
}

// All returns a snapshot of the records in insertion order.
func (l *Ledger) All() []domain.Transaction {
	out := make([]domain.Transaction, len(l.records))
	copy(out, l.records)
	return out
}

// Len returns the number of stored records.
func (l *Ledger) Len() int {
	return len(l.records)
}
