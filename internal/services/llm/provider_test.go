package llm

import (
	"testing"

	"github.com/ternarybob/scribo/internal/common"
)

func newTestFactory() *ProviderFactory {
	cfg := common.NewDefaultConfig()
	return NewProviderFactory(&cfg.Gemini, &cfg.Claude, &cfg.LLM, common.GetLogger())
}

func TestDetectProvider(t *testing.T) {
	factory := newTestFactory()

	tests := []struct {
		model    string
		expected ProviderType
	}{
		{"claude-sonnet-4-20250514", ProviderClaude},
		{"claude/claude-sonnet-4-20250514", ProviderClaude},
		{"anthropic/claude-haiku-3", ProviderClaude},
		{"gemini-3-flash-preview", ProviderGemini},
		{"google/gemini-3-flash-preview", ProviderGemini},
		{"", ProviderClaude}, // default provider from config
	}

	for _, tt := range tests {
		if got := factory.DetectProvider(tt.model); got != tt.expected {
			t.Errorf("DetectProvider(%q) = %v, want %v", tt.model, got, tt.expected)
		}
	}
}

func TestNormalizeModel(t *testing.T) {
	factory := newTestFactory()

	if got := factory.NormalizeModel("claude/claude-sonnet-4-20250514"); got != "claude-sonnet-4-20250514" {
		t.Errorf("unexpected normalized model: %q", got)
	}
	if got := factory.NormalizeModel("gemini-3-flash-preview"); got != "gemini-3-flash-preview" {
		t.Errorf("prefix-free model must pass through, got %q", got)
	}
}
