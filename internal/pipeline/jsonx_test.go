package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONPlainObject(t *testing.T) {
	raw, err := ExtractJSON(`{"title": "Holiday Pay"}`)
	require.NoError(t, err)
	assert.Equal(t, `{"title": "Holiday Pay"}`, raw)
}

func TestExtractJSONWrappedInProse(t *testing.T) {
	input := `Sure! Here is the outline you asked for:

{"title": "Holiday Pay", "sections": [{"heading": "Basics"}]}

Let me know if you need changes.`

	raw, err := ExtractJSON(input)
	require.NoError(t, err)
	assert.Equal(t, `{"title": "Holiday Pay", "sections": [{"heading": "Basics"}]}`, raw)
}

func TestExtractJSONCodeFence(t *testing.T) {
	input := "```json\n{\"title\": \"Holiday Pay\"}\n```"
	raw, err := ExtractJSON(input)
	require.NoError(t, err)
	assert.Equal(t, `{"title": "Holiday Pay"}`, raw)
}

func TestExtractJSONNoObject(t *testing.T) {
	_, err := ExtractJSON("I could not produce the requested output.")
	assert.Error(t, err)
}

func TestDecodeJSONIntoStruct(t *testing.T) {
	var target struct {
		Title string `json:"title"`
	}
	err := DecodeJSON("Some preamble {\"title\": \"Overtime Rules\"} trailing text", &target)
	require.NoError(t, err)
	assert.Equal(t, "Overtime Rules", target.Title)
}

func TestDecodeJSONInvalidPayload(t *testing.T) {
	var target map[string]any
	err := DecodeJSON(`{"title": unquoted}`, &target)
	assert.Error(t, err)
}
