package events

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scribo/internal/interfaces"
)

// NewLoggerSubscriber creates an event handler that logs all events
func NewLoggerSubscriber(logger arbor.ILogger) interfaces.EventHandler {
	return func(ctx context.Context, event interfaces.Event) error {
		logEvent := logger.Debug().
			Str("event_type", string(event.Type))

		if payload, ok := event.Payload.(interfaces.StageEventPayload); ok {
			if payload.ItemID != "" {
				logEvent = logEvent.Str("item_id", payload.ItemID)
			}
			if payload.Stage != "" {
				logEvent = logEvent.Str("stage", payload.Stage)
			}
			if payload.Message != "" {
				logEvent = logEvent.Str("message", payload.Message)
			}
		}

		logEvent.Msg("Event published")

		return nil
	}
}

// SubscribeLoggerToAllEvents subscribes the logger to all known event types
func SubscribeLoggerToAllEvents(eventService interfaces.EventService, logger arbor.ILogger) error {
	subscriber := NewLoggerSubscriber(logger)

	eventTypes := []interfaces.EventType{
		interfaces.EventItemClaimed,
		interfaces.EventStageStarted,
		interfaces.EventStageComplete,
		interfaces.EventStageDegraded,
		interfaces.EventItemPublished,
		interfaces.EventItemFailed,
	}

	for _, eventType := range eventTypes {
		if err := eventService.Subscribe(eventType, subscriber); err != nil {
			return fmt.Errorf("failed to subscribe logger to event type %s: %w", eventType, err)
		}
	}

	logger.Info().
		Int("event_type_count", len(eventTypes)).
		Msg("Logger subscribed to all event types")

	return nil
}
