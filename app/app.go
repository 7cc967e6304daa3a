package app

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"

	dbLib "github.com/RonaldoMorales/perla-metro-tickets-service/db"
	"github.com/RonaldoMorales/perla-metro-tickets-service/http"
	"github.com/RonaldoMorales/perla-metro-tickets-service/pkg/log"
	"github.com/RonaldoMorales/perla-metro-tickets-service/pubsub"
	"github.com/RonaldoMorales/perla-metro-tickets-service/pubsub/bus"
	"github.com/RonaldoMorales/perla-metro-tickets-service/service"
)

func init() {
	log.Init(logrus.InfoLevel)
}

type App struct {
	db              *sqlx.DB
	watermillRouter *message.Router
	httpServer      *http.Server
	traceProvider   *tracesdk.TracerProvider
}

func New(
	addr string,
	db *sqlx.DB,
	redisClient *redis.Client,
	traceProvider *tracesdk.TracerProvider,
) App {
	watermillLogger := log.NewWatermill(log.FromContext(context.Background()))

	redisPublisher := pubsub.NewRedisPublisher(redisClient, watermillLogger)

	eventBus, err := bus.NewEventBus(redisPublisher)
	if err != nil {
		panic(fmt.Errorf("failed to create event bus: %w", err))
	}

	ticketsRepo := dbLib.NewTicketsPostgresRepository(db)
	auditLog := dbLib.NewAuditLog(db)

	ticketsService := service.NewTicketsService(ticketsRepo, eventBus)

	redisSubscriber := pubsub.NewRedisSubscriber(redisClient, "svc-tickets.events", watermillLogger)

	watermillRouter, err := pubsub.NewWatermillRouter(redisSubscriber, auditLog, watermillLogger)
	if err != nil {
		panic(fmt.Errorf("failed to create watermill router: %w", err))
	}

	httpServer := http.NewServer(addr, ticketsService)

	return App{
		db:              db,
		watermillRouter: watermillRouter,
		httpServer:      httpServer,
		traceProvider:   traceProvider,
	}
}

func (a App) Run(ctx context.Context) error {
	if err := dbLib.InitializeDatabaseSchema(a.db); err != nil {
		return fmt.Errorf("failed to initialize database schema: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-ctx.Done()
		if a.traceProvider == nil {
			return nil
		}
		return a.traceProvider.Shutdown(context.Background())
	})

	g.Go(func() error {
		return a.watermillRouter.Run(ctx)
	})

	g.Go(func() error {
		// don't start the HTTP server before the watermill router, so the
		// app won't report healthy before it's ready
		<-a.watermillRouter.Running()

		return a.httpServer.Run(ctx)
	})

	return g.Wait()
}
