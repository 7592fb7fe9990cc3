package common

import (
	"github.com/google/uuid"
)

// NewItemID generates a unique queue item ID with the "item_" prefix
// Format: item_<uuid>
func NewItemID() string {
	return "item_" + uuid.New().String()
}

// NewPipelineID generates a unique pipeline record ID with the "pipe_" prefix
// Format: pipe_<uuid>
func NewPipelineID() string {
	return "pipe_" + uuid.New().String()
}

// NewArticleID generates a unique article ID with the "art_" prefix
// Format: art_<uuid>
func NewArticleID() string {
	return "art_" + uuid.New().String()
}
