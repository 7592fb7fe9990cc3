package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/ternarybob/scribo/internal/common"
	"github.com/ternarybob/scribo/internal/models"
)

var htmlRenderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// runPublish assembles the final article and writes it to the article
// store. Publish is idempotent by slug: re-running it for the same item
// updates the existing article instead of duplicating it. Returns the
// published article ID.
func (s *Stages) runPublish(ctx context.Context, item *models.QueueItem, record *models.PipelineRecord) (string, error) {
	body := record.FinalMarkdown()
	if body == "" {
		return "", fmt.Errorf("publish stage requires article content")
	}
	if record.Meta == nil {
		return "", fmt.Errorf("publish stage requires committed metadata")
	}

	slug := record.Meta.CanonicalSlug
	if slug == "" {
		slug = common.Slugify(record.Meta.Title)
	}
	if slug == "" {
		slug = common.Slugify(item.Title)
	}
	if slug == "" {
		return "", fmt.Errorf("cannot derive a slug for item %s", item.ID)
	}

	var html bytes.Buffer
	if err := htmlRenderer.Convert([]byte(body), &html); err != nil {
		return "", fmt.Errorf("failed to render article HTML: %w", err)
	}

	wordCount := common.CountWords(body)
	article := &models.Article{
		ID:              common.NewArticleID(),
		Title:           record.Meta.Title,
		Slug:            slug,
		Content:         body,
		HTMLContent:     html.String(),
		MetaDescription: record.Meta.MetaDescription,
		Keywords:        record.Meta.Keywords,
		IsPillar:        item.Level == models.LevelPillar,
		WordCount:       wordCount,
		ReadTimeMinutes: models.ReadTime(wordCount),
		PipelineStage:   string(models.StagePublish),
		PublishedAt:     time.Now(),
	}

	if err := s.storage.ArticleStorage().Upsert(ctx, article); err != nil {
		return "", &PersistenceError{Stage: string(models.StagePublish), Err: err}
	}

	s.logger.Info().
		Str("item_id", item.ID).
		Str("article_id", article.ID).
		Str("slug", article.Slug).
		Int("word_count", article.WordCount).
		Int("read_time_min", article.ReadTimeMinutes).
		Msg("Article published")

	return article.ID, nil
}
