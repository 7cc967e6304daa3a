package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"

	"github.com/RonaldoMorales/perla-metro-tickets-service/app"
	"github.com/RonaldoMorales/perla-metro-tickets-service/db"
	"github.com/RonaldoMorales/perla-metro-tickets-service/tracing"
)

type options struct {
	HTTPAddr       string `long:"http-addr" env:"HTTP_ADDR" default:":8080" description:"address the HTTP server listens on"`
	PostgresURL    string `long:"postgres-url" env:"POSTGRES_URL" required:"true" description:"Postgres connection string"`
	RedisAddr      string `long:"redis-addr" env:"REDIS_ADDR" required:"true" description:"Redis address for the event stream"`
	JaegerEndpoint string `long:"jaeger-endpoint" env:"JAEGER_ENDPOINT" default:"http://localhost:14268/api/traces" description:"Jaeger collector endpoint"`
	Seed           bool   `long:"seed" description:"insert sample tickets and exit"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sqlDB, err := otelsql.Open("postgres", opts.PostgresURL)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open database connection")
	}
	dbConn := sqlx.NewDb(sqlDB, "postgres")
	defer dbConn.Close()

	if opts.Seed {
		if err := db.InitializeDatabaseSchema(dbConn); err != nil {
			logrus.WithError(err).Fatal("failed to initialize database schema")
		}
		if err := db.SeedSampleTickets(ctx, dbConn); err != nil {
			logrus.WithError(err).Fatal("failed to seed sample tickets")
		}
		logrus.Info("sample tickets seeded")
		return
	}

	traceProvider := tracing.ConfigureTraceProvider(opts.JaegerEndpoint)

	redisClient := redis.NewClient(&redis.Options{
		Addr: opts.RedisAddr,
	})
	defer redisClient.Close()

	a := app.New(opts.HTTPAddr, dbConn, redisClient, traceProvider)
	if err := a.Run(ctx); err != nil {
		logrus.WithError(err).Fatal("service stopped with error")
	}
}
