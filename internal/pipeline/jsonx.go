package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON recovers a JSON object from LLM output that may wrap it in
// prose or markdown code fences. The outermost brace pair is taken; content
// before and after is discarded.
func ExtractJSON(text string) (string, error) {
	text = strings.TrimSpace(text)

	// Strip a markdown code fence if the whole payload is fenced
	if strings.HasPrefix(text, "```") {
		if idx := strings.Index(text, "\n"); idx >= 0 {
			text = text[idx+1:]
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("no JSON object found in response")
	}

	return text[start : end+1], nil
}

// DecodeJSON extracts and unmarshals a JSON object in one step
func DecodeJSON(text string, target any) error {
	raw, err := ExtractJSON(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		return fmt.Errorf("failed to decode JSON: %w", err)
	}
	return nil
}
