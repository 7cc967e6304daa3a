package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TicketsCreated The total number of tickets created (counter)
	TicketsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tickets",
		Name:      "created_total",
		Help:      "The total number of tickets created",
	})

	// TicketsUpdated The total number of tickets updated (counter)
	TicketsUpdated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tickets",
		Name:      "updated_total",
		Help:      "The total number of tickets updated",
	})

	// TicketsDeleted The total number of tickets soft-deleted (counter)
	TicketsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tickets",
		Name:      "deleted_total",
		Help:      "The total number of tickets soft deleted",
	})

	// TicketConflicts The total number of creations rejected by the daily-uniqueness rule (counter)
	TicketConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tickets",
		Name:      "daily_conflicts_total",
		Help:      "The total number of creations rejected because the user already had a ticket that day",
	})

	// MessagesProcessed The total number of processed messages (counter)
	MessagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "messages",
			Name:      "processed_total",
			Help:      "The total number of processed messages",
		},
		[]string{"topic", "handler"},
	)

	// MessagesProcessingFailed total number of message processing failures (counter)
	MessagesProcessingFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "messages",
			Name:      "processing_failed_total",
			Help:      "The total number of message processing failures",
		},
		[]string{"topic", "handler"},
	)

	// MessagesProcessingDuration The total time spent processing messages (summary with quantiles 0.5, 0.9, and 0.99)
	MessagesProcessingDuration = promauto.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace:  "messages",
			Name:       "processing_duration_seconds",
			Help:       "The total time spent processing messages",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"topic", "handler"},
	)
)
