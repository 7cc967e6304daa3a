package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/RonaldoMorales/perla-metro-tickets-service/app"
	"github.com/RonaldoMorales/perla-metro-tickets-service/db"
)

var httpAddress = "127.0.0.1:8080"

func TestComponent(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("github.com/testcontainers/testcontainers-go.(*Reaper).Connect.func1"))
	defer http.DefaultClient.CloseIdleConnections()

	ctx, cancel := context.WithCancel(context.Background())

	dbconn, err := sqlx.Open("postgres", postgresURL)
	require.NoError(t, err)
	defer dbconn.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer redisClient.Close()

	a := app.New(httpAddress, dbconn, redisClient, nil)

	finished := make(chan struct{})
	go func() {
		assert.NoError(t, a.Run(ctx))
		close(finished)
	}()

	defer func() {
		cancel()
		<-finished
	}()

	waitForHTTPServer(t)

	userID := uuid.NewString()

	// create
	code, body := doJSON(t, http.MethodPost, "/tickets", map[string]any{
		"userId":     userID,
		"ticketType": "outbound",
		"amount":     1500,
	})
	require.Equal(t, http.StatusCreated, code, string(body))

	var ticket struct {
		ID     string  `json:"id"`
		UserID string  `json:"userId"`
		Status string  `json:"status"`
		Amount float64 `json:"amount"`
	}
	require.NoError(t, json.Unmarshal(body, &ticket))
	assert.Equal(t, userID, ticket.UserID)
	assert.Equal(t, "active", ticket.Status)

	// the same user can't get a second ticket the same day
	code, _ = doJSON(t, http.MethodPost, "/tickets", map[string]any{
		"userId":     userID,
		"ticketType": "return",
		"amount":     2000,
	})
	assert.Equal(t, http.StatusConflict, code)

	// under concurrent creation exactly one request wins
	concurrentUser := uuid.NewString()
	var wg sync.WaitGroup
	codes := make([]int, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i], _ = doJSON(t, http.MethodPost, "/tickets", map[string]any{
				"userId":     concurrentUser,
				"ticketType": "outbound",
				"amount":     1500,
			})
		}(i)
	}
	wg.Wait()
	assert.ElementsMatch(t, []int{http.StatusCreated, http.StatusConflict}, codes)

	// listing contains the ticket
	code, body = doJSON(t, http.MethodGet, "/tickets", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), ticket.ID)

	// expire, then try to reactivate
	code, _ = doJSON(t, http.MethodPut, "/tickets/"+ticket.ID, map[string]any{"status": "expired"})
	require.Equal(t, http.StatusOK, code)

	code, _ = doJSON(t, http.MethodPut, "/tickets/"+ticket.ID, map[string]any{"status": "active"})
	assert.Equal(t, http.StatusBadRequest, code)

	// soft delete hides the ticket but keeps its audit trail
	code, _ = doJSON(t, http.MethodDelete, "/tickets/"+ticket.ID, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = doJSON(t, http.MethodGet, "/tickets/"+ticket.ID, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = doJSON(t, http.MethodDelete, "/tickets/"+ticket.ID, nil)
	assert.Equal(t, http.StatusNotFound, code)

	// unknown id
	code, _ = doJSON(t, http.MethodGet, "/tickets/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, code)

	assertTicketEventsInAuditLog(t, dbconn, ticket.ID)
}

func assertTicketEventsInAuditLog(t *testing.T, dbconn *sqlx.DB, ticketID string) {
	auditLog := db.NewAuditLog(dbconn)

	assert.Eventually(
		t,
		func() bool {
			events, err := auditLog.GetEvents(context.Background())
			if err != nil {
				return false
			}

			var names []string
			for _, event := range events {
				if strings.Contains(string(event.Payload), ticketID) {
					names = append(names, event.Name)
				}
			}

			return contains(names, "entity.TicketCreated") &&
				contains(names, "entity.TicketUpdated") &&
				contains(names, "entity.TicketDeleted")
		},
		10*time.Second,
		100*time.Millisecond,
		"expected lifecycle events for ticket %s in the audit log", ticketID,
	)
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func waitForHTTPServer(t *testing.T) {
	t.Helper()

	require.EventuallyWithT(
		t,
		func(t *assert.CollectT) {
			resp, err := http.Get(fmt.Sprintf("http://%s/health", httpAddress))
			if !assert.NoError(t, err) {
				return
			}
			defer resp.Body.Close()

			if assert.Less(t, resp.StatusCode, 300, "API not ready, http status: %d", resp.StatusCode) {
				return
			}
		},
		time.Second*10,
		time.Millisecond*50,
	)
}

func doJSON(t *testing.T, method, path string, payload any) (int, []byte) {
	t.Helper()

	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, fmt.Sprintf("http://%s%s", httpAddress, path), reqBody)
	require.NoError(t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, body
}
