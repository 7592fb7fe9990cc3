package pipeline

import (
	"context"
	"fmt"

	"github.com/ternarybob/scribo/internal/interfaces"
	"github.com/ternarybob/scribo/internal/models"
)

// humanizeResponse is the JSON shape the style transform must return
type humanizeResponse struct {
	Markdown   string `json:"markdown"`
	HumanScore int    `json:"human_score"`
	Changes    struct {
		ContractionsAdded int    `json:"contractions_added"`
		QuestionsAdded    int    `json:"questions_added"`
		Summary           string `json:"summary"`
	} `json:"changes"`
}

// runHumanize rewrites the draft in a natural register via Grok. A
// missing or unparseable provider fails the item; publishing the raw
// draft while recording it as humanized would leave AI-pattern text in
// the output.
func (s *Stages) runHumanize(ctx context.Context, item *models.QueueItem, record *models.PipelineRecord) (any, error) {
	if record.Draft == nil {
		return nil, fmt.Errorf("humanize stage requires a committed draft")
	}

	if !s.grok.IsConfigured() {
		return nil, &ProviderUnavailableError{
			Provider: "grok",
			Stage:    string(models.StageHumanize),
			Err:      fmt.Errorf("grok api key is not configured"),
		}
	}

	prompt := fmt.Sprintf(`Rewrite the article below so it reads like an experienced human writer:
vary sentence length, use contractions, address the reader directly where it
fits, and remove filler phrases. Keep every heading, fact, link, and the
overall length intact.

Respond with ONLY a JSON object:
{
  "markdown": "the full rewritten article",
  "human_score": 0-100 estimate of how natural the result reads,
  "changes": {
    "contractions_added": 0,
    "questions_added": 0,
    "summary": "one sentence describing what changed"
  }
}

Article:
%s`, record.Draft.Markdown)

	text, err := s.grok.Chat(ctx, []interfaces.Message{{Role: "user", Content: prompt}})
	if err != nil {
		return nil, &ProviderUnavailableError{Provider: "grok", Stage: string(models.StageHumanize), Err: err}
	}

	var parsed humanizeResponse
	if err := DecodeJSON(text, &parsed); err != nil {
		return nil, &MalformedResponseError{Stage: string(models.StageHumanize), Err: err}
	}
	if parsed.Markdown == "" {
		return nil, &MalformedResponseError{Stage: string(models.StageHumanize), Err: fmt.Errorf("rewritten markdown missing from response")}
	}

	artifact := &models.HumanizedArtifact{
		Markdown:   parsed.Markdown,
		HumanScore: parsed.HumanScore,
		Changes: models.HumanizeChanges{
			WordCountDiff:     ComputeDraftMetrics(parsed.Markdown, "").WordCount - record.Draft.Metrics.WordCount,
			ContractionsAdded: parsed.Changes.ContractionsAdded,
			QuestionsAdded:    parsed.Changes.QuestionsAdded,
			Summary:           parsed.Changes.Summary,
		},
	}

	s.logger.Info().
		Str("item_id", item.ID).
		Int("human_score", artifact.HumanScore).
		Int("word_count_diff", artifact.Changes.WordCountDiff).
		Msg("Draft humanized")

	return artifact, nil
}
