package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/RonaldoMorales/perla-metro-tickets-service/entity"
)

// TicketsRepositoryMock is an in-memory TicketsRepository. It enforces the
// same daily-uniqueness and soft-delete semantics as the Postgres
// implementation so the service invariants can be tested without a database.
type TicketsRepositoryMock struct {
	mu      sync.Mutex
	tickets map[string]entity.Ticket

	// Now is the clock used for created_at; defaults to time.Now.
	Now func() time.Time
}

func NewTicketsRepositoryMock() *TicketsRepositoryMock {
	return &TicketsRepositoryMock{
		tickets: map[string]entity.Ticket{},
		Now:     time.Now,
	}
}

func (m *TicketsRepositoryMock) Add(ctx context.Context, ticket entity.Ticket) (entity.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.Now().UTC()
	dayStart, dayEnd := entity.DayWindow(now)
	for _, existing := range m.tickets {
		if existing.UserID == ticket.UserID && existing.IsActive &&
			!existing.CreatedAt.Before(dayStart) && existing.CreatedAt.Before(dayEnd) {
			return entity.Ticket{}, entity.ErrConflict
		}
	}

	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	m.tickets[ticket.TicketID] = ticket
	return ticket, nil
}

func (m *TicketsRepositoryMock) FindActiveByUserBetween(ctx context.Context, userID string, start, end time.Time) (entity.Ticket, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, ticket := range m.tickets {
		if ticket.UserID == userID && ticket.IsActive &&
			!ticket.CreatedAt.Before(start) && ticket.CreatedAt.Before(end) {
			return ticket, true, nil
		}
	}
	return entity.Ticket{}, false, nil
}

func (m *TicketsRepositoryMock) FindAll(ctx context.Context) ([]entity.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var tickets []entity.Ticket
	for _, ticket := range m.tickets {
		if ticket.IsActive {
			tickets = append(tickets, ticket)
		}
	}
	sort.Slice(tickets, func(i, j int) bool {
		return tickets[i].CreatedAt.After(tickets[j].CreatedAt)
	})
	return tickets, nil
}

func (m *TicketsRepositoryMock) FindByID(ctx context.Context, ticketID string) (entity.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ticket, ok := m.tickets[ticketID]
	if !ok || !ticket.IsActive {
		return entity.Ticket{}, entity.ErrNotFound
	}
	return ticket, nil
}

func (m *TicketsRepositoryMock) Update(ctx context.Context, ticket entity.Ticket) (entity.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.tickets[ticket.TicketID]
	if !ok || !existing.IsActive {
		return entity.Ticket{}, entity.ErrNotFound
	}

	existing.TicketType = ticket.TicketType
	existing.Status = ticket.Status
	existing.Amount = ticket.Amount
	existing.UpdatedAt = m.Now().UTC()
	m.tickets[ticket.TicketID] = existing
	return existing, nil
}

func (m *TicketsRepositoryMock) SoftDelete(ctx context.Context, ticketID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ticket, ok := m.tickets[ticketID]
	if !ok || !ticket.IsActive {
		return entity.ErrNotFound
	}

	ticket.IsActive = false
	ticket.UpdatedAt = m.Now().UTC()
	m.tickets[ticketID] = ticket
	return nil
}
