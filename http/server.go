package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/RonaldoMorales/perla-metro-tickets-service/entity"
	"github.com/RonaldoMorales/perla-metro-tickets-service/pkg/log"
)

type TicketsService interface {
	CreateTicket(ctx context.Context, userID string, ticketType entity.TicketType, amount float64) (entity.Ticket, error)
	ListTickets(ctx context.Context) ([]entity.Ticket, error)
	GetTicket(ctx context.Context, ticketID string) (entity.Ticket, error)
	UpdateTicket(ctx context.Context, ticketID string, patch entity.TicketPatch) (entity.Ticket, error)
	DeleteTicket(ctx context.Context, ticketID string) error
}

type Server struct {
	addr    string
	e       *echo.Echo
	tickets TicketsService
}

func NewServer(addr string, ticketsService TicketsService) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echoMiddleware.Recover())
	e.Use(otelecho.Middleware("perla-metro-tickets-service"))
	e.Use(correlationIDMiddleware)
	e.Use(requestLoggerMiddleware)

	e.HTTPErrorHandler = errorHandler

	server := &Server{
		addr:    addr,
		e:       e,
		tickets: ticketsService,
	}

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.POST("/tickets", server.PostTicket)
	e.GET("/tickets", server.GetTickets)
	e.GET("/tickets/:id", server.GetTicket)
	e.PUT("/tickets/:id", server.PutTicket)
	e.DELETE("/tickets/:id", server.DeleteTicket)

	return server
}

func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		err := s.e.Shutdown(context.Background())
		if err != nil {
			log.FromContext(ctx).WithError(err).Error("failed to shutdown HTTP server")
		}
	}()
	log.FromContext(ctx).WithField("addr", s.addr).Info("[HTTP] server listening")
	if err := s.e.Start(s.addr); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func correlationIDMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		correlationID := c.Request().Header.Get("Correlation-ID")
		if correlationID == "" {
			correlationID = log.NewCorrelationID()
		}

		ctx := log.ContextWithCorrelationID(c.Request().Context(), correlationID)
		ctx = log.ToContext(ctx, logrus.NewEntry(logrus.StandardLogger()).WithField("correlation_id", correlationID))
		c.SetRequest(c.Request().WithContext(ctx))

		c.Response().Header().Set("Correlation-ID", correlationID)

		return next(c)
	}
}

func requestLoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		log.FromContext(c.Request().Context()).WithFields(logrus.Fields{
			"method":   c.Request().Method,
			"path":     c.Request().URL.Path,
			"status":   c.Response().Status,
			"duration": time.Since(start).String(),
		}).Info("Handled HTTP request")

		return err
	}
}
