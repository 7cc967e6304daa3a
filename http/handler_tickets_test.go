package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RonaldoMorales/perla-metro-tickets-service/entity"
	"github.com/RonaldoMorales/perla-metro-tickets-service/mocks"
	"github.com/RonaldoMorales/perla-metro-tickets-service/service"
)

func newTestServer() *Server {
	svc := service.NewTicketsService(mocks.NewTicketsRepositoryMock(), &mocks.EventPublisherMock{})
	return NewServer(":0", svc)
}

func doRequest(server *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	rec := httptest.NewRecorder()
	server.e.ServeHTTP(rec, req)
	return rec
}

func decodeTicket(t *testing.T, rec *httptest.ResponseRecorder) ticketResponse {
	t.Helper()
	var ticket ticketResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ticket))
	return ticket
}

func TestPostTicket(t *testing.T) {
	server := newTestServer()

	rec := doRequest(server, http.MethodPost, "/tickets", `{"userId":"u1","ticketType":"outbound","amount":1500}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	ticket := decodeTicket(t, rec)
	assert.NotEmpty(t, ticket.ID)
	assert.Equal(t, "u1", ticket.UserID)
	assert.Equal(t, "active", ticket.Status)
	assert.Equal(t, 1500.0, ticket.Amount)

	// same user, same day
	rec = doRequest(server, http.MethodPost, "/tickets", `{"userId":"u1","ticketType":"return","amount":2000}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPostTicket_BadRequests(t *testing.T) {
	server := newTestServer()

	testCases := []struct {
		name string
		body string
	}{
		{name: "missing amount", body: `{"userId":"u1","ticketType":"outbound"}`},
		{name: "zero amount", body: `{"userId":"u1","ticketType":"outbound","amount":0}`},
		{name: "negative amount", body: `{"userId":"u1","ticketType":"outbound","amount":-10}`},
		{name: "missing user", body: `{"ticketType":"outbound","amount":100}`},
		{name: "unknown type", body: `{"userId":"u1","ticketType":"oneway","amount":100}`},
		{name: "malformed json", body: `{"userId":`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(server, http.MethodPost, "/tickets", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGetTickets(t *testing.T) {
	server := newTestServer()

	doRequest(server, http.MethodPost, "/tickets", `{"userId":"u1","ticketType":"outbound","amount":1500}`)
	doRequest(server, http.MethodPost, "/tickets", `{"userId":"u2","ticketType":"return","amount":2000}`)

	rec := doRequest(server, http.MethodGet, "/tickets", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var response ticketListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, 2, response.Count)
	assert.Len(t, response.Data, 2)
}

func TestGetTicket_NotFound(t *testing.T) {
	server := newTestServer()

	rec := doRequest(server, http.MethodGet, "/tickets/6c1f5b3e-8f5a-4b01-9f3e-111111111111", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPutTicket_ExpiredCannotBeReactivated(t *testing.T) {
	server := newTestServer()

	rec := doRequest(server, http.MethodPost, "/tickets", `{"userId":"u1","ticketType":"outbound","amount":1500}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	ticket := decodeTicket(t, rec)

	rec = doRequest(server, http.MethodPut, "/tickets/"+ticket.ID, `{"status":"expired"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "expired", decodeTicket(t, rec).Status)

	rec = doRequest(server, http.MethodPut, "/tickets/"+ticket.ID, `{"status":"active"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(server, http.MethodGet, "/tickets/"+ticket.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "expired", decodeTicket(t, rec).Status)
}

func TestPutTicket_PartialUpdate(t *testing.T) {
	server := newTestServer()

	rec := doRequest(server, http.MethodPost, "/tickets", `{"userId":"u1","ticketType":"outbound","amount":1500}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	ticket := decodeTicket(t, rec)

	rec = doRequest(server, http.MethodPut, "/tickets/"+ticket.ID, `{"amount":2500}`)
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeTicket(t, rec)
	assert.Equal(t, 2500.0, updated.Amount)
	assert.Equal(t, ticket.Status, updated.Status)
	assert.Equal(t, ticket.TicketType, updated.TicketType)

	// zero must be rejected by the positivity rule, not silently dropped
	rec = doRequest(server, http.MethodPut, "/tickets/"+ticket.ID, `{"amount":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteTicket(t *testing.T) {
	server := newTestServer()

	rec := doRequest(server, http.MethodPost, "/tickets", `{"userId":"u1","ticketType":"outbound","amount":1500}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	ticket := decodeTicket(t, rec)

	rec = doRequest(server, http.MethodDelete, "/tickets/"+ticket.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(server, http.MethodGet, "/tickets/"+ticket.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// soft delete is not idempotent
	rec = doRequest(server, http.MethodDelete, "/tickets/"+ticket.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type failingService struct{}

func (failingService) CreateTicket(context.Context, string, entity.TicketType, float64) (entity.Ticket, error) {
	return entity.Ticket{}, errors.New("connection reset by peer")
}
func (failingService) ListTickets(context.Context) ([]entity.Ticket, error) {
	return nil, errors.New("connection reset by peer")
}
func (failingService) GetTicket(context.Context, string) (entity.Ticket, error) {
	return entity.Ticket{}, errors.New("connection reset by peer")
}
func (failingService) UpdateTicket(context.Context, string, entity.TicketPatch) (entity.Ticket, error) {
	return entity.Ticket{}, errors.New("connection reset by peer")
}
func (failingService) DeleteTicket(context.Context, string) error {
	return errors.New("connection reset by peer")
}

func TestInternalErrorsAreOpaque(t *testing.T) {
	server := NewServer(":0", failingService{})

	rec := doRequest(server, http.MethodGet, "/tickets", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection reset")
	assert.Contains(t, rec.Body.String(), "internal server error")
}

func TestHealth(t *testing.T) {
	server := newTestServer()

	rec := doRequest(server, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
