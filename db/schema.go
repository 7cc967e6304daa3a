package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// The unique index truncates created_at to the UTC calendar day and only
// covers active rows, so soft-deleted tickets never block a new one. The
// AT TIME ZONE expression keeps the index immutable where a bare ::date
// cast on timestamptz is not.
const schema = `
	CREATE TABLE IF NOT EXISTS tickets (
		ticket_id UUID PRIMARY KEY,
		user_id VARCHAR(255) NOT NULL,
		ticket_type VARCHAR(16) NOT NULL,
		status VARCHAR(16) NOT NULL,
		amount DOUBLE PRECISION NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE UNIQUE INDEX IF NOT EXISTS tickets_user_daily_active_idx
		ON tickets (user_id, ((created_at AT TIME ZONE 'UTC')::date))
		WHERE is_active;

	CREATE INDEX IF NOT EXISTS tickets_user_id_idx ON tickets (user_id);

	CREATE TABLE IF NOT EXISTS ticket_events (
		event_id UUID PRIMARY KEY,
		published_at TIMESTAMPTZ NOT NULL,
		event_name VARCHAR(255) NOT NULL,
		event_payload JSONB NOT NULL
	);
`

func InitializeDatabaseSchema(db *sqlx.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("could not initialize database schema: %w", err)
	}
	return nil
}
