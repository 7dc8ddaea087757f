package repository

// Schema definitions for the audit trail.
// Compatible with both SQLite and PostgreSQL.

const schemaTransactions = `
CREATE TABLE IF NOT EXISTS transactions (
    session_id TEXT NOT NULL,
    id TEXT NOT NULL,
    status TEXT NOT NULL,
    handle TEXT NOT NULL,
    amount BIGINT NOT NULL,
    location TEXT,
    created_at TIMESTAMP NOT NULL,
    PRIMARY KEY (session_id, id)
);

CREATE INDEX IF NOT EXISTS idx_transactions_session ON transactions(session_id);
`

const schemaAlerts = `
CREATE TABLE IF NOT EXISTS alerts (
    session_id TEXT NOT NULL,
    message TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    PRIMARY KEY (session_id, message)
);

CREATE INDEX IF NOT EXISTS idx_alerts_session ON alerts(session_id);
`

// AllSchemas returns the schemas in creation order.
func AllSchemas() []string {
	return []string{
		schemaTransactions,
		schemaAlerts,
	}
}
