package pubsub

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/RonaldoMorales/perla-metro-tickets-service/entity"
	"github.com/RonaldoMorales/perla-metro-tickets-service/pubsub/bus"
)

type AuditLog interface {
	StoreEvent(ctx context.Context, event entity.AuditEvent) error
}

func NewWatermillRouter(
	redisSubscriber message.Subscriber,
	auditLog AuditLog,
	watermillLogger watermill.LoggerAdapter,
) (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{}, watermillLogger)
	if err != nil {
		return nil, fmt.Errorf("could not create router: %w", err)
	}

	useMiddlewares(router, watermillLogger)

	router.AddNoPublisherHandler(
		"store_to_audit_log",
		bus.EventsTopic,
		redisSubscriber,
		func(msg *message.Message) error {
			eventName := bus.Marshaler.NameFromMessage(msg)
			if eventName == "" {
				return fmt.Errorf("could not get event name from message")
			}

			// we just need to unmarshal the event header, the rest is stored as is
			type Event struct {
				Header entity.EventHeader `json:"header"`
			}

			var event Event
			if err := bus.Marshaler.Unmarshal(msg, &event); err != nil {
				return fmt.Errorf("could not unmarshal event: %w", err)
			}

			return auditLog.StoreEvent(
				msg.Context(),
				entity.AuditEvent{
					ID:          event.Header.ID,
					PublishedAt: event.Header.PublishedAt,
					Name:        eventName,
					Payload:     msg.Payload,
				},
			)
		},
	)

	return router, nil
}
