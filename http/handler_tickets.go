package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"github.com/RonaldoMorales/perla-metro-tickets-service/entity"
)

type postTicketRequest struct {
	UserID     string   `json:"userId"`
	TicketType string   `json:"ticketType"`
	Amount     *float64 `json:"amount"`
}

// All fields are optional; absent and zero are distinct, so every field is
// a pointer.
type putTicketRequest struct {
	Status     *string  `json:"status"`
	TicketType *string  `json:"ticketType"`
	Amount     *float64 `json:"amount"`
}

type ticketResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	TicketType string    `json:"ticketType"`
	Status     string    `json:"status"`
	Amount     float64   `json:"amount"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type ticketListResponse struct {
	Count int              `json:"count"`
	Data  []ticketResponse `json:"data"`
}

type confirmationResponse struct {
	Message string `json:"message"`
}

func toTicketResponse(ticket entity.Ticket) ticketResponse {
	return ticketResponse{
		ID:         ticket.TicketID,
		UserID:     ticket.UserID,
		TicketType: string(ticket.TicketType),
		Status:     string(ticket.Status),
		Amount:     ticket.Amount,
		CreatedAt:  ticket.CreatedAt,
		UpdatedAt:  ticket.UpdatedAt,
	}
}

func (s *Server) PostTicket(c echo.Context) error {
	var request postTicketRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	if request.Amount == nil {
		return fmt.Errorf("%w: amount is required", entity.ErrValidation)
	}

	ticket, err := s.tickets.CreateTicket(
		c.Request().Context(),
		request.UserID,
		entity.TicketType(request.TicketType),
		*request.Amount,
	)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toTicketResponse(ticket))
}

func (s *Server) GetTickets(c echo.Context) error {
	tickets, err := s.tickets.ListTickets(c.Request().Context())
	if err != nil {
		return err
	}

	data := lo.Map(tickets, func(ticket entity.Ticket, _ int) ticketResponse {
		return toTicketResponse(ticket)
	})

	return c.JSON(http.StatusOK, ticketListResponse{
		Count: len(data),
		Data:  data,
	})
}

func (s *Server) GetTicket(c echo.Context) error {
	ticket, err := s.tickets.GetTicket(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toTicketResponse(ticket))
}

func (s *Server) PutTicket(c echo.Context) error {
	var request putTicketRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	patch := entity.TicketPatch{}
	if request.Status != nil {
		status := entity.TicketStatus(*request.Status)
		patch.Status = &status
	}
	if request.TicketType != nil {
		ticketType := entity.TicketType(*request.TicketType)
		patch.TicketType = &ticketType
	}
	patch.Amount = request.Amount

	ticket, err := s.tickets.UpdateTicket(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toTicketResponse(ticket))
}

func (s *Server) DeleteTicket(c echo.Context) error {
	if err := s.tickets.DeleteTicket(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, confirmationResponse{Message: "ticket deleted"})
}
