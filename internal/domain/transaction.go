// Package domain defines the core types and interfaces for the fraud
// detection dashboard.
package domain

import "time"

// TransactionStatus is the lifecycle state of a recorded transaction.
type TransactionStatus string

const (
	// StatusPending is the initial status of every submitted transaction.
	StatusPending TransactionStatus = "Pending"

	// StatusValidated is set once by an explicit user action. There is no
	// transition back to Pending.
	StatusValidated TransactionStatus = "Validated"
)

// Transaction is a recorded payment transaction. All fields except Status
// are immutable once the record is stored.
type Transaction struct {
	// ID is assigned at submission time as "TXN<n>" where n is the number
	// of previously stored records plus one.
	ID string `json:"id"`

	Status TransactionStatus `json:"status"`

	// Handle is the payment handle ("local-part@provider-suffix"). It has
	// passed suffix validation at insertion time.
	Handle string `json:"handle"`

	// Amount is a positive integer amount, minimum 1. Accepted unvalidated
	// beyond that.
	Amount int64 `json:"amount"`

	// Location is free text. Empty when the submitting form did not
	// collect it; the unusual-location rule skips such records.
	Location string `json:"location,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}
