package models

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Stage artifacts are the typed outputs persisted after each pipeline stage.
// Each variant validates itself at the stage boundary; untyped maps are never
// passed between stages.

// validate enforces the struct tags on artifact fields.
var validate = validator.New()

// ResearchSource is one search result backing the research synthesis.
type ResearchSource struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url" validate:"omitempty,url"`
	Domain  string `json:"domain"`
	// Excerpt holds fetched page content converted to markdown, when source
	// excerpting is enabled. Best effort - may be empty.
	Excerpt string `json:"excerpt,omitempty"`
}

// ResearchArtifact is the output of the Research stage. It may be entirely
// empty: research is best effort and downstream stages tolerate its absence.
type ResearchArtifact struct {
	Synthesis        string           `json:"synthesis"`
	Stats            []ResearchSource `json:"stats,omitempty"`
	Sources          []ResearchSource `json:"sources,omitempty"`
	RelatedQuestions []string         `json:"related_questions,omitempty"`
}

// IsEmpty reports whether the research produced nothing usable.
func (a *ResearchArtifact) IsEmpty() bool {
	return a == nil || (a.Synthesis == "" && len(a.Sources) == 0 && len(a.Stats) == 0)
}

// Validate always passes: an empty research artifact is a legal outcome.
func (a *ResearchArtifact) Validate() error { return nil }

// PlanSection is one ordered section of the article outline.
type PlanSection struct {
	Heading     string   `json:"heading" validate:"required"`
	Bullets     []string `json:"bullets,omitempty"`
	TargetWords int      `json:"target_words,omitempty"`
}

// PlanKeywords groups the keyword sets the Write and SEO stages work against.
type PlanKeywords struct {
	Main     string   `json:"main"`
	Cluster  []string `json:"cluster,omitempty"`
	Semantic []string `json:"semantic,omitempty"`
}

// InternalLink is one planned internal-link placement.
type InternalLink struct {
	Anchor string `json:"anchor"`
	Topic  string `json:"topic"`
}

// PlanArtifact is the structured outline produced by the Plan stage. The
// stage must always return some outline, even when research was empty.
type PlanArtifact struct {
	Title           string         `json:"title" validate:"required"`
	H1              string         `json:"h1"`
	MetaDescription string         `json:"meta_description"`
	Sections        []PlanSection  `json:"sections" validate:"required,min=1,dive"`
	FAQ             []string       `json:"faq,omitempty"`
	Keywords        PlanKeywords   `json:"keywords"`
	InternalLinks   []InternalLink `json:"internal_links,omitempty"`
}

// Validate checks structural completeness of the outline.
func (a *PlanArtifact) Validate() error {
	if a == nil {
		return fmt.Errorf("plan artifact is nil")
	}
	if strings.TrimSpace(a.Title) == "" {
		return fmt.Errorf("plan is missing a title")
	}
	if len(a.Sections) == 0 {
		return fmt.Errorf("plan has no sections")
	}
	if err := validate.Struct(a); err != nil {
		return fmt.Errorf("plan failed validation: %w", err)
	}
	return nil
}

// DraftMetrics are the quality measurements computed over a drafted article.
type DraftMetrics struct {
	WordCount       int     `json:"word_count"`
	KeywordCount    int     `json:"keyword_count"`
	KeywordDensity  float64 `json:"keyword_density"` // percent
	OutboundLinks   int     `json:"outbound_links"`
	InternalLinks   int     `json:"internal_links"`
	Callouts        int     `json:"callouts"`
	AvgWordsPerSent float64 `json:"avg_words_per_sentence"`
	SEOScore        int     `json:"seo_score"` // 0-100 heading/structure score
}

// DraftArtifact is the raw long-form article from the Write stage.
type DraftArtifact struct {
	Markdown string       `json:"markdown" validate:"required"`
	Metrics  DraftMetrics `json:"metrics"`
}

// Validate requires a non-empty body. Word-count band enforcement is a soft
// constraint handled by the Write stage, not a validity condition.
func (a *DraftArtifact) Validate() error {
	if a == nil || strings.TrimSpace(a.Markdown) == "" {
		return fmt.Errorf("draft artifact has no content")
	}
	return validate.Struct(a)
}

// HumanizeChanges summarizes what the style transform altered, for reviewer
// display.
type HumanizeChanges struct {
	WordCountDiff     int    `json:"word_count_diff"`
	ContractionsAdded int    `json:"contractions_added"`
	QuestionsAdded    int    `json:"questions_added"`
	Summary           string `json:"summary,omitempty"`
}

// HumanizedArtifact is the style-transformed article. The Humanize stage
// fails hard on malformed provider output, so a persisted artifact always
// carries a parseable body.
type HumanizedArtifact struct {
	Markdown   string          `json:"markdown" validate:"required"`
	HumanScore int             `json:"human_score"` // 0-100 estimate
	Changes    HumanizeChanges `json:"changes"`
}

func (a *HumanizedArtifact) Validate() error {
	if a == nil || strings.TrimSpace(a.Markdown) == "" {
		return fmt.Errorf("humanized artifact has no content")
	}
	return validate.Struct(a)
}

// SEOArtifact is the heading/link-adjusted article. PassThrough marks the
// degraded path where the stage returned its input unmodified.
type SEOArtifact struct {
	Markdown    string `json:"markdown" validate:"required"`
	PassThrough bool   `json:"pass_through,omitempty"`
}

func (a *SEOArtifact) Validate() error {
	if a == nil || strings.TrimSpace(a.Markdown) == "" {
		return fmt.Errorf("seo artifact has no content")
	}
	return validate.Struct(a)
}

// MetaArtifact carries the short-form metadata for the published article.
type MetaArtifact struct {
	Title           string   `json:"title" validate:"required"`
	MetaDescription string   `json:"meta_description"`
	Keywords        []string `json:"keywords,omitempty"`
	CanonicalSlug   string   `json:"canonical_slug,omitempty"`
	// Fallback marks metadata derived from the plan when the provider failed.
	Fallback bool `json:"fallback,omitempty"`
}

func (a *MetaArtifact) Validate() error {
	if a == nil || strings.TrimSpace(a.Title) == "" {
		return fmt.Errorf("meta artifact is missing a title")
	}
	return validate.Struct(a)
}
