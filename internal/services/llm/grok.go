package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/scribo/internal/common"
	"github.com/ternarybob/scribo/internal/interfaces"
)

// GrokClient calls the xAI API over its OpenAI-compatible chat completions
// endpoint. The Anthropic and Google SDKs do not cover xAI, so this client
// speaks the wire protocol directly.
type GrokClient struct {
	config  *common.GrokConfig
	logger  arbor.ILogger
	http    *http.Client
	limiter *rate.Limiter
}

type grokChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type grokChatRequest struct {
	Model       string            `json:"model"`
	Messages    []grokChatMessage `json:"messages"`
	Temperature float32           `json:"temperature,omitempty"`
	MaxTokens   int               `json:"max_tokens,omitempty"`
}

type grokChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// NewGrokClient creates a Grok API client from configuration
func NewGrokClient(config *common.GrokConfig, logger arbor.ILogger) *GrokClient {
	timeout := common.ParseDuration(config.Timeout, 3*time.Minute)
	gap := common.ParseDuration(config.RateLimit, time.Second)

	return &GrokClient{
		config:  config,
		logger:  logger,
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Every(gap), 1),
	}
}

// IsConfigured reports whether an API key is available
func (c *GrokClient) IsConfigured() bool {
	return c.config.APIKey != ""
}

// Chat sends a conversation to the Grok chat completions endpoint and
// returns the assistant's text response.
func (c *GrokClient) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	if !c.IsConfigured() {
		return "", fmt.Errorf("grok API key not configured")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter wait cancelled: %w", err)
	}

	payload := grokChatRequest{
		Model:       c.config.Model,
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
	}
	for _, msg := range messages {
		payload.Messages = append(payload.Messages, grokChatMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal grok request: %w", err)
	}

	url := c.config.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create grok request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	c.logger.Debug().
		Str("model", c.config.Model).
		Int("message_count", len(messages)).
		Msg("Calling Grok chat completions")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("grok API request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read grok response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("grok API returned status %d: %s", resp.StatusCode, truncateBody(respBody))
	}

	var parsed grokChatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse grok response: %w", err)
	}

	if parsed.Error != nil {
		return "", fmt.Errorf("grok API error (%s): %s", parsed.Error.Type, parsed.Error.Message)
	}

	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("empty response from grok API")
	}

	return parsed.Choices[0].Message.Content, nil
}

func truncateBody(body []byte) string {
	const maxLen = 300
	if len(body) > maxLen {
		return string(body[:maxLen]) + "..."
	}
	return string(body)
}
