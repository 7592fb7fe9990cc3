package llm

import (
	"errors"
	"testing"
	"time"
)

func TestIsRateLimitError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"429 status", errors.New("Error 429, Message: quota exceeded"), true},
		{"resource exhausted", errors.New("Status: RESOURCE_EXHAUSTED"), true},
		{"quota keyword", errors.New("quota limit reached for model"), true},
		{"unrelated error", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRateLimitError(tt.err); got != tt.expected {
				t.Errorf("IsRateLimitError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestExtractRetryDelay(t *testing.T) {
	err := errors.New("Error 429, Message: rate limited. Please retry in 45.387061394s., Status: RESOURCE_EXHAUSTED")
	delay := ExtractRetryDelay(err)
	if delay < 45*time.Second || delay > 46*time.Second {
		t.Errorf("expected ~45s delay, got %v", delay)
	}

	if got := ExtractRetryDelay(errors.New("no delay hint here")); got != 0 {
		t.Errorf("expected 0 for message without delay, got %v", got)
	}

	if got := ExtractRetryDelay(nil); got != 0 {
		t.Errorf("expected 0 for nil error, got %v", got)
	}
}

func TestCalculateBackoffCapped(t *testing.T) {
	config := NewDefaultRetryConfig()

	first := config.CalculateBackoff(0, 0)
	if first != config.InitialBackoff {
		t.Errorf("expected initial backoff %v on attempt 0, got %v", config.InitialBackoff, first)
	}

	// Large attempt numbers must not exceed the cap
	capped := config.CalculateBackoff(10, 0)
	if capped != config.MaxBackoff {
		t.Errorf("expected backoff capped at %v, got %v", config.MaxBackoff, capped)
	}

	// API-provided delay becomes the base plus buffer
	withDelay := config.CalculateBackoff(0, 30*time.Second)
	if withDelay != 35*time.Second {
		t.Errorf("expected 35s backoff from 30s API delay, got %v", withDelay)
	}
}
