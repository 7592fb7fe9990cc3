package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/scribo/internal/common"
	"github.com/ternarybob/scribo/internal/models"
)

// runWrite drafts the full article from the committed plan. There is no
// fallback: without a draft nothing downstream can run, so provider
// failures here fail the item.
func (s *Stages) runWrite(ctx context.Context, item *models.QueueItem, record *models.PipelineRecord) (any, error) {
	if record.Plan == nil {
		return nil, fmt.Errorf("write stage requires a committed plan")
	}

	prompt := s.buildWritePrompt(item, record)

	resp, err := s.generate(ctx, prompt, s.config.Claude.Model, s.config.Claude.MaxTokens)
	if err != nil {
		return nil, &ProviderUnavailableError{Provider: "claude", Stage: string(models.StageWrite), Err: err}
	}

	markdown := cleanDraftMarkdown(resp.Text)
	if strings.TrimSpace(markdown) == "" {
		return nil, &MalformedResponseError{Stage: string(models.StageWrite), Err: fmt.Errorf("empty draft body")}
	}

	artifact := &models.DraftArtifact{
		Markdown: markdown,
		Metrics:  ComputeDraftMetrics(markdown, record.Plan.Keywords.Main),
	}

	// Band governance warns, never blocks
	check := EvaluateWordCount(&s.config.Pipeline, item.Level, artifact.Metrics.WordCount)
	record.WordCountWarning = check.Warning
	switch check.Severity {
	case WordCountEscalated:
		s.logger.Error().
			Str("item_id", item.ID).
			Int("words", check.Words).
			Int("max", check.Max).
			Msg("Draft far past word ceiling")
	case WordCountWarn:
		s.logger.Warn().
			Str("item_id", item.ID).
			Int("words", check.Words).
			Int("min", check.Min).
			Int("max", check.Max).
			Msg("Draft outside word band")
	default:
		s.logger.Info().
			Str("item_id", item.ID).
			Int("words", check.Words).
			Int("seo_score", artifact.Metrics.SEOScore).
			Msg("Draft within word band")
	}

	return artifact, nil
}

func (s *Stages) buildWritePrompt(item *models.QueueItem, record *models.PipelineRecord) string {
	var b strings.Builder
	plan := record.Plan

	min, max := s.config.Pipeline.Band(item.Level == models.LevelPillar)

	fmt.Fprintf(&b, `Write a complete, publication-ready article in markdown.

Title: %s
Main keyword: %s
Length: %d to %d words. Stay inside this range.

Outline to follow exactly, section by section:
`, plan.Title, plan.Keywords.Main, min, max)

	for i, section := range plan.Sections {
		fmt.Fprintf(&b, "%d. %s", i+1, section.Heading)
		if section.TargetWords > 0 {
			fmt.Fprintf(&b, " (~%d words)", section.TargetWords)
		}
		b.WriteString("\n")
		for _, bullet := range section.Bullets {
			fmt.Fprintf(&b, "   - %s\n", bullet)
		}
	}

	if len(plan.FAQ) > 0 {
		b.WriteString("\nEnd with a FAQ section answering:\n")
		for _, q := range plan.FAQ {
			fmt.Fprintf(&b, "- %s\n", q)
		}
	}

	if len(plan.Keywords.Cluster) > 0 {
		fmt.Fprintf(&b, "\nWork these related keywords in naturally: %s\n", strings.Join(plan.Keywords.Cluster, ", "))
	}

	if record.Research != nil && !record.Research.IsEmpty() {
		b.WriteString("\nGround claims in this research where relevant:\n")
		b.WriteString(record.Research.Synthesis)
		b.WriteString("\n")
		for _, src := range record.Research.Sources {
			if src.URL != "" {
				fmt.Fprintf(&b, "- [%s](%s)\n", src.Title, src.URL)
			}
		}
	}

	b.WriteString(`
Formatting rules:
- Markdown only, starting with a single # H1
- Use ## for section headings
- Link to cited sources inline where facts come from them
- Use > blockquotes for key callouts
- No preamble or commentary, output the article only`)

	return b.String()
}

// cleanDraftMarkdown strips a wrapping code fence and any pre-H1 chatter
func cleanDraftMarkdown(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		if idx := strings.Index(text, "\n"); idx >= 0 {
			text = text[idx+1:]
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	// Drop anything the model said before the first heading
	if idx := strings.Index(text, "# "); idx > 0 {
		before := text[:idx]
		if !strings.Contains(before, "\n\n") || common.CountWords(before) < 30 {
			text = text[idx:]
		}
	}

	return text
}
