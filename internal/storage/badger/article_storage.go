package badger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/scribo/internal/interfaces"
	"github.com/ternarybob/scribo/internal/models"
)

// ArticleStorage implements the ArticleStorage interface for Badger
type ArticleStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewArticleStorage creates a new ArticleStorage instance
func NewArticleStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ArticleStorage {
	return &ArticleStorage{
		db:     db,
		logger: logger,
	}
}

// Upsert stores an article, replacing any prior version with the same slug.
// Republishing an item is idempotent with respect to the slug.
func (s *ArticleStorage) Upsert(ctx context.Context, article *models.Article) error {
	if article.Slug == "" {
		return fmt.Errorf("article slug is required")
	}
	if article.Content == "" {
		return fmt.Errorf("article content is required")
	}

	// Reuse the existing ID when the slug is already published
	if existing, err := s.GetBySlug(ctx, article.Slug); err == nil {
		article.ID = existing.ID
		article.CreatedAt = existing.CreatedAt
	}

	now := time.Now()
	if article.ID == "" {
		return fmt.Errorf("article ID is required")
	}
	if article.CreatedAt.IsZero() {
		article.CreatedAt = now
	}
	article.UpdatedAt = now

	if err := s.db.Store().Upsert(article.ID, *article); err != nil {
		s.logger.Error().Err(err).Str("slug", article.Slug).Msg("BadgerDB: Failed to upsert article")
		return fmt.Errorf("failed to save article: %w", err)
	}

	s.logger.Info().
		Str("article_id", article.ID).
		Str("slug", article.Slug).
		Int("word_count", article.WordCount).
		Msg("Article saved")
	return nil
}

// GetByID retrieves an article by ID
func (s *ArticleStorage) GetByID(ctx context.Context, id string) (*models.Article, error) {
	var article models.Article
	if err := s.db.Store().Get(id, &article); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("article not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	return &article, nil
}

// GetBySlug retrieves an article by its URL slug
func (s *ArticleStorage) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	var articles []models.Article
	if err := s.db.Store().Find(&articles, badgerhold.Where("Slug").Eq(slug)); err != nil {
		return nil, fmt.Errorf("failed to query article by slug: %w", err)
	}
	if len(articles) == 0 {
		return nil, fmt.Errorf("article not found for slug: %s", slug)
	}
	return &articles[0], nil
}

// List returns published articles, newest first
func (s *ArticleStorage) List(ctx context.Context, limit int) ([]*models.Article, error) {
	var articles []models.Article
	if err := s.db.Store().Find(&articles, nil); err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}

	sort.Slice(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})

	if limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}

	result := make([]*models.Article, len(articles))
	for i := range articles {
		result[i] = &articles[i]
	}
	return result, nil
}

// Count returns the number of published articles
func (s *ArticleStorage) Count(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(models.Article{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return int(count), nil
}
