package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/RonaldoMorales/perla-metro-tickets-service/entity"
	"github.com/RonaldoMorales/perla-metro-tickets-service/metrics"
	"github.com/RonaldoMorales/perla-metro-tickets-service/pkg/log"
)

type TicketsRepository interface {
	Add(ctx context.Context, ticket entity.Ticket) (entity.Ticket, error)
	FindActiveByUserBetween(ctx context.Context, userID string, start, end time.Time) (entity.Ticket, bool, error)
	FindAll(ctx context.Context) ([]entity.Ticket, error)
	FindByID(ctx context.Context, ticketID string) (entity.Ticket, error)
	Update(ctx context.Context, ticket entity.Ticket) (entity.Ticket, error)
	SoftDelete(ctx context.Context, ticketID string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event any) error
}

// TicketsService validates ticket requests and governs the ticket lifecycle.
// All state lives in the repository; the service itself is stateless and
// safe for concurrent use.
type TicketsService struct {
	repo      TicketsRepository
	publisher EventPublisher
}

func NewTicketsService(repo TicketsRepository, publisher EventPublisher) TicketsService {
	if repo == nil {
		panic("missing repo")
	}
	if publisher == nil {
		panic("missing publisher")
	}

	return TicketsService{
		repo:      repo,
		publisher: publisher,
	}
}

// CreateTicket stores a new ticket with status forced to active. At most one
// active ticket may exist per user per UTC day: the repository lookup gives
// the friendly conflict error, while the partial unique index behind
// repo.Add is the authoritative guard under concurrent creation.
func (s TicketsService) CreateTicket(ctx context.Context, userID string, ticketType entity.TicketType, amount float64) (entity.Ticket, error) {
	if userID == "" {
		return entity.Ticket{}, fmt.Errorf("%w: userId is required", entity.ErrValidation)
	}
	if !ticketType.IsValid() {
		return entity.Ticket{}, fmt.Errorf("%w: ticketType must be %q or %q", entity.ErrValidation, entity.TicketTypeOutbound, entity.TicketTypeReturn)
	}
	if err := entity.ValidateAmount(amount); err != nil {
		return entity.Ticket{}, err
	}

	dayStart, dayEnd := entity.DayWindow(time.Now())
	_, found, err := s.repo.FindActiveByUserBetween(ctx, userID, dayStart, dayEnd)
	if err != nil {
		return entity.Ticket{}, fmt.Errorf("could not check for existing ticket: %w", err)
	}
	if found {
		metrics.TicketConflicts.Inc()
		return entity.Ticket{}, entity.ErrConflict
	}

	stored, err := s.repo.Add(ctx, entity.Ticket{
		TicketID:   uuid.NewString(),
		UserID:     userID,
		TicketType: ticketType,
		Status:     entity.TicketStatusActive,
		Amount:     amount,
		IsActive:   true,
	})
	if err != nil {
		return entity.Ticket{}, err
	}

	metrics.TicketsCreated.Inc()
	s.publish(ctx, entity.TicketCreated{
		Header:     entity.NewEventHeader(),
		TicketID:   stored.TicketID,
		UserID:     stored.UserID,
		TicketType: stored.TicketType,
		Status:     stored.Status,
		Amount:     stored.Amount,
	})

	return stored, nil
}

// ListTickets returns all active tickets, newest first.
func (s TicketsService) ListTickets(ctx context.Context) ([]entity.Ticket, error) {
	return s.repo.FindAll(ctx)
}

// GetTicket returns the ticket only while it is active; soft-deleted tickets
// are reported as not found.
func (s TicketsService) GetTicket(ctx context.Context, ticketID string) (entity.Ticket, error) {
	return s.repo.FindByID(ctx, ticketID)
}

// UpdateTicket applies the supplied fields of the patch to an active ticket.
// Omitted fields stay untouched. Reactivating an expired ticket is the one
// forbidden status transition.
func (s TicketsService) UpdateTicket(ctx context.Context, ticketID string, patch entity.TicketPatch) (entity.Ticket, error) {
	ticket, err := s.repo.FindByID(ctx, ticketID)
	if err != nil {
		return entity.Ticket{}, err
	}

	if patch.Status != nil {
		if !patch.Status.IsValid() {
			return entity.Ticket{}, fmt.Errorf("%w: status must be %q, %q or %q", entity.ErrValidation,
				entity.TicketStatusActive, entity.TicketStatusUsed, entity.TicketStatusExpired)
		}
		if ticket.Status == entity.TicketStatusExpired && *patch.Status == entity.TicketStatusActive {
			return entity.Ticket{}, fmt.Errorf("%w: an expired ticket cannot be reactivated", entity.ErrValidation)
		}
		ticket.Status = *patch.Status
	}
	if patch.TicketType != nil {
		if !patch.TicketType.IsValid() {
			return entity.Ticket{}, fmt.Errorf("%w: ticketType must be %q or %q", entity.ErrValidation, entity.TicketTypeOutbound, entity.TicketTypeReturn)
		}
		ticket.TicketType = *patch.TicketType
	}
	if patch.Amount != nil {
		if err := entity.ValidateAmount(*patch.Amount); err != nil {
			return entity.Ticket{}, err
		}
		ticket.Amount = *patch.Amount
	}

	updated, err := s.repo.Update(ctx, ticket)
	if err != nil {
		return entity.Ticket{}, err
	}

	metrics.TicketsUpdated.Inc()
	s.publish(ctx, entity.TicketUpdated{
		Header:     entity.NewEventHeader(),
		TicketID:   updated.TicketID,
		TicketType: updated.TicketType,
		Status:     updated.Status,
		Amount:     updated.Amount,
	})

	return updated, nil
}

// DeleteTicket flips the soft-delete flag. The record stays in the store for
// the audit trail. Deleting an already-deleted ticket is not idempotent and
// reports not found.
func (s TicketsService) DeleteTicket(ctx context.Context, ticketID string) error {
	ticket, err := s.repo.FindByID(ctx, ticketID)
	if err != nil {
		return err
	}

	if err := s.repo.SoftDelete(ctx, ticketID); err != nil {
		return err
	}

	metrics.TicketsDeleted.Inc()
	s.publish(ctx, entity.TicketDeleted{
		Header:   entity.NewEventHeader(),
		TicketID: ticket.TicketID,
		UserID:   ticket.UserID,
	})

	return nil
}

// publish is best effort: the write is already committed, so a broken event
// bus must not fail the request. The failure is logged with full detail.
func (s TicketsService) publish(ctx context.Context, event any) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.FromContext(ctx).WithError(err).WithField("event", fmt.Sprintf("%T", event)).
			Error("failed to publish ticket lifecycle event")
	}
}
