package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/scribo/internal/models"
)

// runSEO adjusts headings, keyword placement, and internal links over the
// humanized body. Fully degradable: any failure passes the input through
// unmodified with the PassThrough flag set.
func (s *Stages) runSEO(ctx context.Context, item *models.QueueItem, record *models.PipelineRecord) (any, error) {
	if record.Humanized == nil {
		return nil, fmt.Errorf("seo stage requires a humanized draft")
	}

	input := record.Humanized.Markdown
	prompt := s.buildSEOPrompt(record, input)

	resp, err := s.generate(ctx, prompt, s.config.Claude.SEOModel, s.config.Claude.MaxTokens)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("item_id", item.ID).
			Msg("SEO pass failed, passing content through unchanged")
		return &models.SEOArtifact{Markdown: input, PassThrough: true}, nil
	}

	optimized := cleanDraftMarkdown(resp.Text)
	if strings.TrimSpace(optimized) == "" {
		s.logger.Warn().
			Str("item_id", item.ID).
			Msg("SEO pass returned empty content, passing through")
		return &models.SEOArtifact{Markdown: input, PassThrough: true}, nil
	}

	// A drastic size change means the model rewrote instead of optimizing
	inWords := ComputeDraftMetrics(input, "").WordCount
	outWords := ComputeDraftMetrics(optimized, "").WordCount
	if inWords > 0 && (outWords < inWords/2 || outWords > inWords*2) {
		s.logger.Warn().
			Str("item_id", item.ID).
			Int("in_words", inWords).
			Int("out_words", outWords).
			Msg("SEO pass changed length drastically, passing through")
		return &models.SEOArtifact{Markdown: input, PassThrough: true}, nil
	}

	return &models.SEOArtifact{Markdown: optimized}, nil
}

func (s *Stages) buildSEOPrompt(record *models.PipelineRecord, input string) string {
	var b strings.Builder

	b.WriteString(`Optimize the article below for search without rewriting it.
Allowed changes only:
- Adjust headings to include target keywords where natural
- Tighten keyword placement in the first 100 words
- Insert missing internal link placeholders from the list below, written
  as <!-- INTERNAL: topic --> next to the anchor text
- Fix heading hierarchy (single H1, H2 sections)
Do not change facts, tone, or overall length. Output the full article in
markdown only, no commentary.

`)

	if record.Plan != nil {
		fmt.Fprintf(&b, "Main keyword: %s\n", record.Plan.Keywords.Main)
		if len(record.Plan.Keywords.Cluster) > 0 {
			fmt.Fprintf(&b, "Cluster keywords: %s\n", strings.Join(record.Plan.Keywords.Cluster, ", "))
		}
		for _, link := range record.Plan.InternalLinks {
			fmt.Fprintf(&b, "Internal link: [%s] -> %s\n", link.Anchor, link.Topic)
		}
	}

	b.WriteString("\nArticle:\n")
	b.WriteString(input)
	return b.String()
}
