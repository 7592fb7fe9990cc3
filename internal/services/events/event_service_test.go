package events

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scribo/internal/interfaces"
)

func TestUnsubscribeRemovesHandler(t *testing.T) {
	logger := arbor.NewLogger()
	eventService := NewService(logger)
	defer eventService.Close()

	var calls int32
	handler := interfaces.EventHandler(func(ctx context.Context, event interfaces.Event) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	if err := eventService.Subscribe(interfaces.EventStageComplete, handler); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	ctx := context.Background()
	event := interfaces.Event{Type: interfaces.EventStageComplete}

	if err := eventService.PublishSync(ctx, event); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("Expected 1 call before unsubscribe, got %d", got)
	}

	if err := eventService.Unsubscribe(interfaces.EventStageComplete, handler); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if err := eventService.PublishSync(ctx, event); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("Expected handler not to run after unsubscribe, got %d calls", got)
	}
}

func TestUnsubscribeUnknownHandler(t *testing.T) {
	logger := arbor.NewLogger()
	eventService := NewService(logger)
	defer eventService.Close()

	other := interfaces.EventHandler(func(ctx context.Context, event interfaces.Event) error { return nil })

	if err := eventService.Unsubscribe(interfaces.EventStageComplete, other); err == nil {
		t.Error("Expected error unsubscribing a handler that was never registered")
	}
}
