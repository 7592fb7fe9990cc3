package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/scribo/internal/models"
)

// metaResponse is the JSON shape the metadata generation must return
type metaResponse struct {
	Title           string   `json:"title"`
	MetaDescription string   `json:"meta_description"`
	Keywords        []string `json:"keywords"`
	CanonicalSlug   string   `json:"canonical_slug"`
}

// runMeta generates the short-form metadata for publication. Degradable:
// failures fall back to metadata derived from the committed plan.
func (s *Stages) runMeta(ctx context.Context, item *models.QueueItem, record *models.PipelineRecord) (any, error) {
	body := record.FinalMarkdown()
	if body == "" {
		return nil, fmt.Errorf("meta stage requires article content")
	}

	excerpt := body
	if len(excerpt) > 6000 {
		excerpt = excerpt[:6000]
	}

	prompt := fmt.Sprintf(`Generate publication metadata for the article below.

Respond with ONLY a JSON object:
{
  "title": "SEO title, under 60 characters",
  "meta_description": "compelling summary, under %d characters",
  "keywords": ["5-8 keywords"],
  "canonical_slug": "url-safe-slug"
}

Article (may be truncated):
%s`, s.config.Pipeline.MetaDescriptionMax, excerpt)

	resp, err := s.generate(ctx, prompt, s.config.Claude.MetaModel, 0)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("item_id", item.ID).
			Msg("Meta generation failed, deriving metadata from plan")
		return s.fallbackMeta(item, record), nil
	}

	var parsed metaResponse
	if err := DecodeJSON(resp.Text, &parsed); err != nil {
		s.logger.Warn().
			Err(err).
			Str("item_id", item.ID).
			Msg("Meta response unparseable, deriving metadata from plan")
		return s.fallbackMeta(item, record), nil
	}

	artifact := &models.MetaArtifact{
		Title:           strings.TrimSpace(parsed.Title),
		MetaDescription: truncateMeta(parsed.MetaDescription, s.config.Pipeline.MetaDescriptionMax),
		Keywords:        parsed.Keywords,
		CanonicalSlug:   parsed.CanonicalSlug,
	}
	if artifact.Title == "" {
		return s.fallbackMeta(item, record), nil
	}
	return artifact, nil
}

// fallbackMeta derives metadata from the plan, or the queue item when even
// the plan is missing pieces.
func (s *Stages) fallbackMeta(item *models.QueueItem, record *models.PipelineRecord) *models.MetaArtifact {
	artifact := &models.MetaArtifact{
		Title:    item.Title,
		Keywords: item.TargetKeywords,
		Fallback: true,
	}
	if record.Plan != nil {
		if record.Plan.Title != "" {
			artifact.Title = record.Plan.Title
		}
		artifact.MetaDescription = truncateMeta(record.Plan.MetaDescription, s.config.Pipeline.MetaDescriptionMax)
		if record.Plan.Keywords.Main != "" {
			artifact.Keywords = append([]string{record.Plan.Keywords.Main}, record.Plan.Keywords.Cluster...)
		}
	}
	return artifact
}

func truncateMeta(desc string, max int) string {
	desc = strings.TrimSpace(desc)
	if max <= 0 || len(desc) <= max {
		return desc
	}
	if max <= 3 {
		return desc[:max]
	}
	return strings.TrimSpace(desc[:max-3]) + "..."
}
