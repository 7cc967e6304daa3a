package entity

import (
	"time"

	"github.com/google/uuid"
)

type EventHeader struct {
	ID          string    `json:"id"`
	PublishedAt time.Time `json:"published_at"`
}

func NewEventHeader() EventHeader {
	return EventHeader{
		ID:          uuid.NewString(),
		PublishedAt: time.Now().UTC(),
	}
}

type TicketCreated struct {
	Header     EventHeader  `json:"header"`
	TicketID   string       `json:"ticket_id"`
	UserID     string       `json:"user_id"`
	TicketType TicketType   `json:"ticket_type"`
	Status     TicketStatus `json:"status"`
	Amount     float64      `json:"amount"`
}

type TicketUpdated struct {
	Header     EventHeader  `json:"header"`
	TicketID   string       `json:"ticket_id"`
	TicketType TicketType   `json:"ticket_type"`
	Status     TicketStatus `json:"status"`
	Amount     float64      `json:"amount"`
}

type TicketDeleted struct {
	Header   EventHeader `json:"header"`
	TicketID string      `json:"ticket_id"`
	UserID   string      `json:"user_id"`
}
