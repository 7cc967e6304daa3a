package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/RonaldoMorales/perla-metro-tickets-service/entity"
)

const uniqueUserDailyIndex = "tickets_user_daily_active_idx"

type TicketsPostgresRepository struct {
	db *sqlx.DB
}

func NewTicketsPostgresRepository(db *sqlx.DB) *TicketsPostgresRepository {
	if db == nil {
		panic("db is nil")
	}

	return &TicketsPostgresRepository{db: db}
}

// Add inserts the ticket and returns it with the database-assigned
// timestamps. A violation of the daily unique index is reported as
// entity.ErrConflict: under concurrent creation the pre-check in the
// service can miss, and the index is what decides the race.
func (r *TicketsPostgresRepository) Add(ctx context.Context, ticket entity.Ticket) (entity.Ticket, error) {
	rows, err := r.db.NamedQueryContext(ctx, `
		INSERT INTO tickets (ticket_id, user_id, ticket_type, status, amount, is_active)
		VALUES (:ticket_id, :user_id, :ticket_type, :status, :amount, :is_active)
		RETURNING ticket_id, user_id, ticket_type, status, amount, is_active, created_at, updated_at
	`, ticket)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" && pqErr.Constraint == uniqueUserDailyIndex {
			return entity.Ticket{}, entity.ErrConflict
		}
		return entity.Ticket{}, fmt.Errorf("could not insert ticket: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return entity.Ticket{}, fmt.Errorf("insert of ticket %s returned no row", ticket.TicketID)
	}

	var stored entity.Ticket
	if err := rows.StructScan(&stored); err != nil {
		return entity.Ticket{}, fmt.Errorf("could not scan inserted ticket: %w", err)
	}
	return stored, nil
}

// FindActiveByUserBetween looks for an active ticket of the user whose
// created_at falls in [start, end).
func (r *TicketsPostgresRepository) FindActiveByUserBetween(ctx context.Context, userID string, start, end time.Time) (entity.Ticket, bool, error) {
	var ticket entity.Ticket
	err := r.db.GetContext(ctx, &ticket, `
		SELECT ticket_id, user_id, ticket_type, status, amount, is_active, created_at, updated_at
		FROM tickets
		WHERE user_id = $1 AND is_active AND created_at >= $2 AND created_at < $3
	`, userID, start, end)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Ticket{}, false, nil
	}
	if err != nil {
		return entity.Ticket{}, false, fmt.Errorf("could not query tickets for user %s: %w", userID, err)
	}
	return ticket, true, nil
}

func (r *TicketsPostgresRepository) FindAll(ctx context.Context) ([]entity.Ticket, error) {
	var tickets []entity.Ticket
	err := r.db.SelectContext(ctx, &tickets, `
		SELECT ticket_id, user_id, ticket_type, status, amount, is_active, created_at, updated_at
		FROM tickets
		WHERE is_active
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("could not select tickets: %w", err)
	}
	return tickets, nil
}

func (r *TicketsPostgresRepository) FindByID(ctx context.Context, ticketID string) (entity.Ticket, error) {
	var ticket entity.Ticket
	err := r.db.GetContext(ctx, &ticket, `
		SELECT ticket_id, user_id, ticket_type, status, amount, is_active, created_at, updated_at
		FROM tickets
		WHERE ticket_id = $1 AND is_active
	`, ticketID)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Ticket{}, entity.ErrNotFound
	}
	if err != nil {
		return entity.Ticket{}, fmt.Errorf("could not select ticket %s: %w", ticketID, err)
	}
	return ticket, nil
}

// Update writes back the mutable fields and refreshes updated_at. Only
// active rows can be updated; a missing or soft-deleted ticket is not found.
func (r *TicketsPostgresRepository) Update(ctx context.Context, ticket entity.Ticket) (entity.Ticket, error) {
	rows, err := r.db.NamedQueryContext(ctx, `
		UPDATE tickets
		SET ticket_type = :ticket_type, status = :status, amount = :amount, updated_at = NOW()
		WHERE ticket_id = :ticket_id AND is_active
		RETURNING ticket_id, user_id, ticket_type, status, amount, is_active, created_at, updated_at
	`, ticket)
	if err != nil {
		return entity.Ticket{}, fmt.Errorf("could not update ticket %s: %w", ticket.TicketID, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return entity.Ticket{}, entity.ErrNotFound
	}

	var updated entity.Ticket
	if err := rows.StructScan(&updated); err != nil {
		return entity.Ticket{}, fmt.Errorf("could not scan updated ticket: %w", err)
	}
	return updated, nil
}

// SoftDelete marks the ticket inactive. The row is kept for the audit trail.
func (r *TicketsPostgresRepository) SoftDelete(ctx context.Context, ticketID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tickets
		SET is_active = FALSE, updated_at = NOW()
		WHERE ticket_id = $1 AND is_active
	`, ticketID)
	if err != nil {
		return fmt.Errorf("could not soft delete ticket %s: %w", ticketID, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return entity.ErrNotFound
	}

	return nil
}
