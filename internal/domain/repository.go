package domain

import "context"

// Repository is the audit trail for the dashboard's report views. It records
// submitted transactions and raised alerts per session. It is written behind
// the session, never read on the decision path: the session snapshot remains
// the source of truth for rule evaluation.
type Repository interface {
	// Transaction audit operations
	SaveTransaction(ctx context.Context, sessionID string, tx *Transaction) error
	UpdateTransactionStatus(ctx context.Context, sessionID string, txID string, status TransactionStatus) error
	ListTransactions(ctx context.Context, sessionID string) ([]*Transaction, error)

	// Alert audit operations. SaveAlert is a no-op for a message already
	// recorded for the session, mirroring the alert log's dedup policy.
	SaveAlert(ctx context.Context, sessionID string, message string) error
	ListAlerts(ctx context.Context, sessionID string) ([]string, error)

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}
