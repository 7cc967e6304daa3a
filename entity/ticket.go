package entity

import (
	"fmt"
	"math"
	"time"
)

type TicketType string

const (
	TicketTypeOutbound TicketType = "outbound"
	TicketTypeReturn   TicketType = "return"
)

func (t TicketType) IsValid() bool {
	return t == TicketTypeOutbound || t == TicketTypeReturn
}

type TicketStatus string

const (
	TicketStatusActive  TicketStatus = "active"
	TicketStatusUsed    TicketStatus = "used"
	TicketStatusExpired TicketStatus = "expired"
)

func (s TicketStatus) IsValid() bool {
	return s == TicketStatusActive || s == TicketStatusUsed || s == TicketStatusExpired
}

type Ticket struct {
	TicketID   string       `json:"ticket_id" db:"ticket_id"`
	UserID     string       `json:"user_id" db:"user_id"`
	TicketType TicketType   `json:"ticket_type" db:"ticket_type"`
	Status     TicketStatus `json:"status" db:"status"`
	Amount     float64      `json:"amount" db:"amount"`
	IsActive   bool         `json:"-" db:"is_active"`
	CreatedAt  time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at" db:"updated_at"`
}

// TicketPatch carries the fields of a partial update. A nil field was not
// supplied and leaves the stored value untouched; a non-nil field is applied
// even when it holds a zero value.
type TicketPatch struct {
	Status     *TicketStatus
	TicketType *TicketType
	Amount     *float64
}

func ValidateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("%w: amount must be a finite number", ErrValidation)
	}
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be greater than zero", ErrValidation)
	}
	return nil
}

// DayWindow returns the [start, end) boundaries of the UTC calendar day
// containing t. The daily-uniqueness rule counts UTC days; the unique index
// in the database truncates created_at the same way.
func DayWindow(t time.Time) (start, end time.Time) {
	t = t.UTC()
	start = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}
