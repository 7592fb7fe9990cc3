package models

import "time"

// Article is the terminal published entity written by the Publish stage.
// It lives in its own store; the rest of the platform (insights browsing,
// editorial tooling) reads it through simple CRUD contracts.
type Article struct {
	ID    string `badgerhold:"key" json:"id"`
	Title string `json:"title"`
	Slug  string `badgerhold:"index" json:"slug"`

	Content     string `json:"content"`      // markdown
	HTMLContent string `json:"html_content"` // rendered at publish

	MetaDescription string   `json:"meta_description"`
	Keywords        []string `json:"keywords,omitempty"`

	IsPillar        bool `json:"is_pillar"`
	WordCount       int  `json:"word_count"`
	ReadTimeMinutes int  `json:"read_time_minutes"`

	// PipelineStage mirrors the last completed stage for audit.
	PipelineStage string `json:"pipeline_stage"`

	PublishedAt time.Time `json:"published_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ReadTime derives the displayed read time from a word count, at the usual
// 200 words per minute, never below one minute.
func ReadTime(wordCount int) int {
	if wordCount <= 0 {
		return 1
	}
	minutes := (wordCount + 199) / 200
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
