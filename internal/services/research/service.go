package research

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/scribo/internal/common"
	"github.com/ternarybob/scribo/internal/interfaces"
	"github.com/ternarybob/scribo/internal/models"
	"github.com/ternarybob/scribo/internal/services/llm"
)

// Service runs search-grounded research for a queue item. Results feed the
// outline and draft stages but are strictly best effort: a failed or empty
// research pass is a valid outcome, never a pipeline failure.
type Service struct {
	config    *common.ResearchConfig
	gemini    *common.GeminiConfig
	providers *llm.ProviderFactory
	fetcher   *SourceFetcher
	logger    arbor.ILogger
}

// NewService creates a research service
func NewService(
	config *common.ResearchConfig,
	gemini *common.GeminiConfig,
	providers *llm.ProviderFactory,
	logger arbor.ILogger,
) *Service {
	return &Service{
		config:    config,
		gemini:    gemini,
		providers: providers,
		fetcher:   NewSourceFetcher(config, logger),
		logger:    logger,
	}
}

// Research performs a grounded web search on the item's topic and
// synthesizes the findings into a research artifact.
func (s *Service) Research(ctx context.Context, item *models.QueueItem) (*models.ResearchArtifact, error) {
	query := item.Title
	if len(item.TargetKeywords) > 0 {
		query = fmt.Sprintf("%s (%s)", item.Title, strings.Join(item.TargetKeywords, ", "))
	}

	prompt := fmt.Sprintf(`Research the following article topic using web search.
Topic: %s

Summarize the current facts a writer would need: definitions, rules, rates,
recent changes, and concrete statistics with their sources. Finish with a
short list of related questions readers commonly ask about this topic, one
per line, prefixed with "Q: ".`, query)

	timeout := common.ParseDuration(s.gemini.Timeout, 2*time.Minute)
	searchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := s.providers.GenerateContent(searchCtx, &llm.ContentRequest{
		Messages:     []interfaces.Message{{Role: "user", Content: prompt}},
		Model:        s.gemini.Model,
		EnableSearch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("research synthesis failed: %w", err)
	}

	artifact := &models.ResearchArtifact{
		Synthesis:        resp.Text,
		RelatedQuestions: extractRelatedQuestions(resp.Text),
	}

	for _, src := range resp.Sources {
		artifact.Sources = append(artifact.Sources, models.ResearchSource{
			Title:  src.Title,
			URL:    src.URL,
			Domain: domainOf(src.URL),
		})
	}

	// Source excerpting is optional enrichment on top of the synthesis
	if s.config.FetchSources && len(artifact.Sources) > 0 {
		s.fetcher.ExcerptSources(ctx, artifact.Sources)
	}

	s.logger.Info().
		Str("item_id", item.ID).
		Int("source_count", len(artifact.Sources)).
		Int("question_count", len(artifact.RelatedQuestions)).
		Msg("Research synthesis complete")

	return artifact, nil
}

// extractRelatedQuestions pulls "Q: " prefixed lines from the synthesis
func extractRelatedQuestions(text string) []string {
	var questions []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "Q: ") {
			q := strings.TrimSpace(strings.TrimPrefix(line, "Q: "))
			if q != "" {
				questions = append(questions, q)
			}
		}
	}
	return questions
}

func domainOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(parsed.Hostname(), "www.")
}
