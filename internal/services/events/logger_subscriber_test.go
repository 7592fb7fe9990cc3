package events

import (
	"context"
	"testing"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scribo/internal/interfaces"
)

// TestNewLoggerSubscriber verifies that the logger subscriber logs events
func TestNewLoggerSubscriber(t *testing.T) {
	logger := arbor.NewLogger()

	subscriber := NewLoggerSubscriber(logger)

	ctx := context.Background()
	event := interfaces.Event{
		Type: interfaces.EventStageComplete,
		Payload: interfaces.StageEventPayload{
			ItemID:  "item_123",
			Title:   "Night Differential Pay",
			Stage:   "write",
			Message: "draft complete",
		},
	}

	if err := subscriber(ctx, event); err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}

	// Event without payload
	event2 := interfaces.Event{
		Type:    interfaces.EventItemClaimed,
		Payload: nil,
	}

	if err := subscriber(ctx, event2); err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
}

// TestSubscribeLoggerToAllEvents verifies logger is subscribed to all event types
func TestSubscribeLoggerToAllEvents(t *testing.T) {
	logger := arbor.NewLogger()

	eventService := NewService(logger)
	defer eventService.Close()

	if err := SubscribeLoggerToAllEvents(eventService, logger); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	// Publishing after subscription exercises every registered handler
	err := eventService.PublishSync(context.Background(), interfaces.Event{
		Type: interfaces.EventItemPublished,
		Payload: interfaces.StageEventPayload{
			ItemID: "item_456",
			Stage:  "publish",
		},
	})
	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
}
