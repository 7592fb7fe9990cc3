package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/scribo/internal/models"
)

// runPlan produces the structured article outline. The stage always yields
// an outline: when the provider fails or returns garbage, a deterministic
// fallback outline is built from the item's title and keywords.
func (s *Stages) runPlan(ctx context.Context, item *models.QueueItem, record *models.PipelineRecord) (any, error) {
	prompt := s.buildPlanPrompt(item, record.Research)

	resp, err := s.generate(ctx, prompt, s.config.Claude.PlanModel, 0)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("item_id", item.ID).
			Msg("Plan generation failed, using fallback outline")
		return fallbackPlan(item), nil
	}

	var plan models.PlanArtifact
	if err := DecodeJSON(resp.Text, &plan); err != nil {
		s.logger.Warn().
			Err(err).
			Str("item_id", item.ID).
			Msg("Plan response unparseable, using fallback outline")
		return fallbackPlan(item), nil
	}

	if err := plan.Validate(); err != nil {
		s.logger.Warn().
			Err(err).
			Str("item_id", item.ID).
			Msg("Plan response incomplete, using fallback outline")
		return fallbackPlan(item), nil
	}

	if plan.Keywords.Main == "" && len(item.TargetKeywords) > 0 {
		plan.Keywords.Main = item.TargetKeywords[0]
	}

	return &plan, nil
}

func (s *Stages) buildPlanPrompt(item *models.QueueItem, research *models.ResearchArtifact) string {
	var b strings.Builder

	min, max := s.config.Pipeline.Band(item.Level == models.LevelPillar)

	fmt.Fprintf(&b, `Create a detailed article outline for the topic below.

Topic: %s
Target keywords: %s
Target length: %d to %d words

`, item.Title, strings.Join(item.TargetKeywords, ", "), min, max)

	if research != nil && !research.IsEmpty() {
		b.WriteString("Research findings to draw on:\n")
		b.WriteString(research.Synthesis)
		b.WriteString("\n\n")
		if len(research.RelatedQuestions) > 0 {
			b.WriteString("Reader questions to cover in a FAQ section:\n")
			for _, q := range research.RelatedQuestions {
				fmt.Fprintf(&b, "- %s\n", q)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString(`Respond with ONLY a JSON object in this exact shape:
{
  "title": "article title",
  "h1": "on-page heading",
  "meta_description": "under 160 characters",
  "sections": [
    {"heading": "section heading", "bullets": ["point to cover"], "target_words": 400}
  ],
  "faq": ["question to answer"],
  "keywords": {"main": "primary keyword", "cluster": ["related"], "semantic": ["variant"]},
  "internal_links": [{"anchor": "anchor text", "topic": "related article topic"}]
}`)

	return b.String()
}

// fallbackPlan builds a minimal but valid outline from the queue item alone
func fallbackPlan(item *models.QueueItem) *models.PlanArtifact {
	main := ""
	if len(item.TargetKeywords) > 0 {
		main = item.TargetKeywords[0]
	}

	return &models.PlanArtifact{
		Title: item.Title,
		H1:    item.Title,
		Sections: []models.PlanSection{
			{Heading: "Introduction", Bullets: []string{"define the topic", "why it matters"}},
			{Heading: item.Title + " Explained", Bullets: item.TargetKeywords},
			{Heading: "Common Questions", Bullets: []string{"answer frequent reader questions"}},
			{Heading: "Key Takeaways", Bullets: []string{"summarize the main points"}},
		},
		Keywords: models.PlanKeywords{
			Main:    main,
			Cluster: item.TargetKeywords,
		},
	}
}
