package entity

import (
	"time"
)

// AuditEvent is a ticket lifecycle event as stored in the ticket_events
// audit table.
type AuditEvent struct {
	ID          string    `db:"event_id"`
	PublishedAt time.Time `db:"published_at"`
	Name        string    `db:"event_name"`
	Payload     []byte    `db:"event_payload"`
}
