package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/RonaldoMorales/perla-metro-tickets-service/entity"
)

type sampleTicket struct {
	userID     string
	ticketType entity.TicketType
	status     entity.TicketStatus
	amount     float64
}

var sampleTickets = []sampleTicket{
	{userID: "a1b2c3d4-e5f6-4789-a123-456789abcdef", ticketType: entity.TicketTypeOutbound, status: entity.TicketStatusActive, amount: 1500},
	{userID: "b2c3d4e5-f6a7-4890-b234-567890bcdef1", ticketType: entity.TicketTypeReturn, status: entity.TicketStatusUsed, amount: 1500},
	{userID: "c3d4e5f6-a789-4901-c345-678901cdef12", ticketType: entity.TicketTypeOutbound, status: entity.TicketStatusActive, amount: 2000},
	{userID: "d4e5f6a7-8901-4012-d456-789012def123", ticketType: entity.TicketTypeReturn, status: entity.TicketStatusExpired, amount: 1800},
	{userID: "e5f6a789-0123-4123-e567-890123ef1234", ticketType: entity.TicketTypeOutbound, status: entity.TicketStatusActive, amount: 1500},
}

// SeedSampleTickets inserts a handful of sample tickets, back-dated one day
// apart so the daily-uniqueness index accepts them. Already-seeded rows are
// left alone.
func SeedSampleTickets(ctx context.Context, db *sqlx.DB) error {
	now := time.Now().UTC()

	for i, sample := range sampleTickets {
		createdAt := now.AddDate(0, 0, -i)

		_, err := db.ExecContext(ctx, `
			INSERT INTO tickets (ticket_id, user_id, ticket_type, status, amount, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, TRUE, $6, $6)
			ON CONFLICT DO NOTHING
		`, uuid.NewString(), sample.userID, sample.ticketType, sample.status, sample.amount, createdAt)
		if err != nil {
			return fmt.Errorf("could not seed ticket for user %s: %w", sample.userID, err)
		}
	}

	return nil
}
