package models

import (
	"time"
)

// ItemStatus represents the lifecycle state of a queued content item.
// Transitions are monotonic along the stage sequence; "failed" is terminal
// and only an explicit requeue action returns an item to "queued".
type ItemStatus string

const (
	StatusQueued      ItemStatus = "queued"
	StatusResearching ItemStatus = "researching"
	StatusPlanning    ItemStatus = "planning"
	StatusWriting     ItemStatus = "writing"
	StatusHumanizing  ItemStatus = "humanizing"
	StatusSEO         ItemStatus = "seo"
	StatusMeta        ItemStatus = "meta"
	StatusPublishing  ItemStatus = "publishing"
	StatusPublished   ItemStatus = "published"
	StatusFailed      ItemStatus = "failed"
)

// ContentLevel is the tiered content depth of an item. Pillar articles get a
// wider, higher word-count band than supporting articles.
type ContentLevel string

const (
	LevelPillar     ContentLevel = "pillar"
	LevelSupporting ContentLevel = "supporting"
)

// MaxErrorMessageLen bounds the persisted error message on failed items.
const MaxErrorMessageLen = 500

// QueueItem is a unit of pipeline work: one topic to be produced into a
// published article.
type QueueItem struct {
	ID             string       `badgerhold:"key" json:"id"`
	Title          string       `json:"title"`
	Slug           string       `json:"slug"`
	TargetKeywords []string     `json:"target_keywords"`
	Level          ContentLevel `json:"level"`

	Status   ItemStatus `badgerhold:"index" json:"status"`
	Priority int        `json:"priority"` // higher = claimed sooner

	RetryCount   int    `json:"retry_count"`
	ErrorMessage string `json:"error_message,omitempty"`

	// InsightID references the published Article once the Publish stage ran.
	InsightID string `json:"insight_id,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// IsTerminal reports whether the item has reached an end state.
func (i *QueueItem) IsTerminal() bool {
	return i.Status == StatusPublished || i.Status == StatusFailed
}

// TruncateError bounds an error message for persistence on a QueueItem.
func TruncateError(msg string) string {
	if len(msg) > MaxErrorMessageLen {
		return msg[:MaxErrorMessageLen]
	}
	return msg
}

// StatusUpdate carries the optional fields merged into a QueueItem alongside
// a status change. Nil pointers leave the stored value untouched.
type StatusUpdate struct {
	ErrorMessage *string
	RetryCount   *int
	InsightID    *string
	CompletedAt  *time.Time
}

// QueueStats is a read-only count aggregation over the queue, used for
// progress reporting only - never for control flow.
type QueueStats struct {
	Queued     int `json:"queued"`
	InProgress int `json:"in_progress"`
	Published  int `json:"published"`
	Failed     int `json:"failed"`
	Total      int `json:"total"`
}
