// Package repository provides the audit-trail persistence implementations.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sourishdey2005/fraud--detection/internal/domain"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidInput = errors.New("invalid input")
)

// SQLRepository implements domain.Repository using database/sql.
// Works with both SQLite and PostgreSQL drivers.
type SQLRepository struct {
	db     *sql.DB
	driver string
}

// New creates a new repository based on configuration.
func New(cfg domain.RepositoryConfig) (domain.Repository, error) {
	var db *sql.DB
	var err error

	switch cfg.Driver {
	case "sqlite":
		db, err = openSQLite(cfg)
	case "postgres":
		db, err = openPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	repo := &SQLRepository{
		db:     db,
		driver: cfg.Driver,
	}

	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

func (r *SQLRepository) migrate() error {
	for _, schema := range AllSchemas() {
		if _, err := r.db.Exec(schema); err != nil {
			return err
		}
	}
	return nil
}

// SaveTransaction records a submitted transaction for the session.
func (r *SQLRepository) SaveTransaction(ctx context.Context, sessionID string, tx *domain.Transaction) error {
	if sessionID == "" {
		return fmt.Errorf("%w: sessionID is required", ErrInvalidInput)
	}

	query := `
		INSERT INTO transactions (session_id, id, status, handle, amount, location, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		sessionID, tx.ID, string(tx.Status),
		tx.Handle, tx.Amount, tx.Location, tx.CreatedAt,
	)
	return err
}

// UpdateTransactionStatus records a status transition for the session.
func (r *SQLRepository) UpdateTransactionStatus(ctx context.Context, sessionID string, txID string, status domain.TransactionStatus) error {
	if sessionID == "" {
		return fmt.Errorf("%w: sessionID is required", ErrInvalidInput)
	}

	query := `UPDATE transactions SET status = ? WHERE session_id = ? AND id = ?`

	res, err := r.db.ExecContext(ctx, r.rebind(query), string(status), sessionID, txID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: transaction %s", ErrNotFound, txID)
	}
	return nil
}

// ListTransactions returns the session's recorded transactions in
// submission order.
func (r *SQLRepository) ListTransactions(ctx context.Context, sessionID string) ([]*domain.Transaction, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: sessionID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, status, handle, amount, location, created_at
		FROM transactions
		WHERE session_id = ?
		ORDER BY created_at, id
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []*domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		var status string
		var location sql.NullString

		if err := rows.Scan(&tx.ID, &status, &tx.Handle, &tx.Amount, &location, &tx.CreatedAt); err != nil {
			return nil, err
		}
		tx.Status = domain.TransactionStatus(status)
		tx.Location = location.String
		transactions = append(transactions, &tx)
	}

	return transactions, rows.Err()
}

// SaveAlert records a raised alert for the session. Recording a message
// already present is a no-op, mirroring the alert log's dedup policy.
func (r *SQLRepository) SaveAlert(ctx context.Context, sessionID string, message string) error {
	if sessionID == "" {
		return fmt.Errorf("%w: sessionID is required", ErrInvalidInput)
	}

	query := `
		INSERT INTO alerts (session_id, message, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (session_id, message) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query), sessionID, message, time.Now().UTC())
	return err
}

// ListAlerts returns the session's recorded alerts in raise order.
func (r *SQLRepository) ListAlerts(ctx context.Context, sessionID string) ([]string, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: sessionID is required", ErrInvalidInput)
	}

	query := `
		SELECT message FROM alerts
		WHERE session_id = ?
		ORDER BY created_at, message
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []string
	for rows.Next() {
		var msg string
		if err := rows.Scan(&msg); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

// Ping checks database health.
func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection.
func (r *SQLRepository) Close() error {
	return r.db.Close()
}

// rebind converts ? placeholders to $n for PostgreSQL.
func (r *SQLRepository) rebind(query string) string {
	if r.driver != "postgres" {
		return query
	}

	var sb strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			fmt.Fprintf(&sb, "$%d", n)
			continue
		}
		sb.WriteRune(ch)
	}
	return sb.String()
}
