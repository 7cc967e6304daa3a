package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/RonaldoMorales/perla-metro-tickets-service/entity"
)

// AuditLog is an append-only record of every ticket lifecycle event.
// Soft-deleted tickets stay reconstructable from here.
type AuditLog struct {
	db *sqlx.DB
}

func NewAuditLog(db *sqlx.DB) AuditLog {
	if db == nil {
		panic("db is nil")
	}

	return AuditLog{db: db}
}

func (l AuditLog) StoreEvent(ctx context.Context, event entity.AuditEvent) error {
	_, err := l.db.NamedExecContext(
		ctx,
		`
			INSERT INTO
			    ticket_events (event_id, published_at, event_name, event_payload)
			VALUES
			    (:event_id, :published_at, :event_name, :event_payload)`,
		event,
	)
	var postgresError *pq.Error
	if errors.As(err, &postgresError) && postgresError.Code.Name() == "unique_violation" {
		// handling re-delivery
		return nil
	}
	if err != nil {
		return fmt.Errorf("could not store %s event in audit log: %w", event.ID, err)
	}

	return nil
}

func (l AuditLog) GetEvents(ctx context.Context) ([]entity.AuditEvent, error) {
	var events []entity.AuditEvent
	err := l.db.SelectContext(ctx, &events, "SELECT event_id, published_at, event_name, event_payload FROM ticket_events ORDER BY published_at ASC")
	if err != nil {
		return nil, fmt.Errorf("could not get events from audit log: %w", err)
	}

	return events, nil
}
