package badger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/scribo/internal/interfaces"
	"github.com/ternarybob/scribo/internal/models"
)

// QueueStorage implements the QueueStorage interface for Badger.
// Claims are serialized through a mutex so that a queued item can never
// be handed to two claimers.
type QueueStorage struct {
	db      *BadgerDB
	logger  arbor.ILogger
	claimMu sync.Mutex
}

// NewQueueStorage creates a new QueueStorage instance
func NewQueueStorage(db *BadgerDB, logger arbor.ILogger) interfaces.QueueStorage {
	return &QueueStorage{
		db:     db,
		logger: logger,
	}
}

// Enqueue stores a new queue item with status queued
func (s *QueueStorage) Enqueue(ctx context.Context, item *models.QueueItem) error {
	if item.ID == "" {
		return fmt.Errorf("item ID is required")
	}
	if item.Title == "" {
		return fmt.Errorf("item title is required")
	}

	now := time.Now()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now
	if item.Status == "" {
		item.Status = models.StatusQueued
	}

	// Dereference pointer so the badgerhold type prefix matches Find operations
	if err := s.db.Store().Upsert(item.ID, *item); err != nil {
		s.logger.Error().Err(err).Str("item_id", item.ID).Msg("BadgerDB: Failed to upsert queue item")
		return fmt.Errorf("failed to enqueue item: %w", err)
	}

	s.logger.Debug().
		Str("item_id", item.ID).
		Str("title", item.Title).
		Int("priority", item.Priority).
		Msg("Item enqueued")
	return nil
}

// EnqueueBatch stores multiple items, returning the count enqueued.
// Items that fail validation are skipped, not fatal.
func (s *QueueStorage) EnqueueBatch(ctx context.Context, items []*models.QueueItem) (int, error) {
	enqueued := 0
	for _, item := range items {
		if err := s.Enqueue(ctx, item); err != nil {
			s.logger.Warn().Err(err).Str("title", item.Title).Msg("Skipping invalid batch item")
			continue
		}
		enqueued++
	}
	return enqueued, nil
}

// ClaimNext atomically selects the next workable item and marks it as
// researching. Selection order is priority descending, then enqueue time
// ascending. Returns nil when no queued item remains.
func (s *QueueStorage) ClaimNext(ctx context.Context) (*models.QueueItem, error) {
	s.claimMu.Lock()
	defer s.claimMu.Unlock()

	var queued []models.QueueItem
	if err := s.db.Store().Find(&queued, badgerhold.Where("Status").Eq(models.StatusQueued)); err != nil {
		return nil, fmt.Errorf("failed to query queued items: %w", err)
	}
	if len(queued) == 0 {
		return nil, nil
	}

	sort.SliceStable(queued, func(i, j int) bool {
		if queued[i].Priority != queued[j].Priority {
			return queued[i].Priority > queued[j].Priority
		}
		return queued[i].CreatedAt.Before(queued[j].CreatedAt)
	})

	item := queued[0]
	item.Status = models.StageResearch.InProgressStatus()
	item.UpdatedAt = time.Now()

	if err := s.db.Store().Upsert(item.ID, item); err != nil {
		return nil, fmt.Errorf("failed to claim item %s: %w", item.ID, err)
	}

	s.logger.Info().
		Str("item_id", item.ID).
		Str("title", item.Title).
		Int("priority", item.Priority).
		Msg("Claimed queue item")
	return &item, nil
}

// UpdateStatus transitions an item to a new status, applying any optional
// field updates in the same write.
func (s *QueueStorage) UpdateStatus(ctx context.Context, id string, status models.ItemStatus, update *models.StatusUpdate) error {
	var item models.QueueItem
	if err := s.db.Store().Get(id, &item); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("queue item not found: %s", id)
		}
		return fmt.Errorf("failed to get queue item: %w", err)
	}

	item.Status = status
	item.UpdatedAt = time.Now()

	if update != nil {
		if update.ErrorMessage != nil {
			item.ErrorMessage = models.TruncateError(*update.ErrorMessage)
		}
		if update.RetryCount != nil {
			item.RetryCount = *update.RetryCount
		}
		if update.InsightID != nil {
			item.InsightID = *update.InsightID
		}
		if update.CompletedAt != nil {
			item.CompletedAt = update.CompletedAt
		}
	}

	if err := s.db.Store().Upsert(id, item); err != nil {
		return fmt.Errorf("failed to update item status: %w", err)
	}

	s.logger.Debug().
		Str("item_id", id).
		Str("status", string(status)).
		Msg("Item status updated")
	return nil
}

// Requeue returns a failed item to the queue, clearing its error state
func (s *QueueStorage) Requeue(ctx context.Context, id string) error {
	var item models.QueueItem
	if err := s.db.Store().Get(id, &item); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("queue item not found: %s", id)
		}
		return fmt.Errorf("failed to get queue item: %w", err)
	}

	if item.Status != models.StatusFailed {
		return fmt.Errorf("item %s is %s, only failed items can be requeued", id, item.Status)
	}

	item.Status = models.StatusQueued
	item.ErrorMessage = ""
	item.UpdatedAt = time.Now()

	if err := s.db.Store().Upsert(id, item); err != nil {
		return fmt.Errorf("failed to requeue item: %w", err)
	}

	s.logger.Info().
		Str("item_id", id).
		Int("retry_count", item.RetryCount).
		Msg("Item requeued")
	return nil
}

// GetItem retrieves a queue item by ID
func (s *QueueStorage) GetItem(ctx context.Context, id string) (*models.QueueItem, error) {
	var item models.QueueItem
	if err := s.db.Store().Get(id, &item); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("queue item not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get queue item: %w", err)
	}
	return &item, nil
}

// ListItems returns items filtered by status. An empty status returns all
// items. Results are ordered newest first.
func (s *QueueStorage) ListItems(ctx context.Context, status models.ItemStatus, limit int) ([]*models.QueueItem, error) {
	var items []models.QueueItem
	var err error

	if status == "" {
		err = s.db.Store().Find(&items, nil)
	} else {
		err = s.db.Store().Find(&items, badgerhold.Where("Status").Eq(status))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list queue items: %w", err)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	result := make([]*models.QueueItem, len(items))
	for i := range items {
		result[i] = &items[i]
	}
	return result, nil
}

// CountByStatus aggregates queue items into summary counts
func (s *QueueStorage) CountByStatus(ctx context.Context) (*models.QueueStats, error) {
	var items []models.QueueItem
	if err := s.db.Store().Find(&items, nil); err != nil {
		return nil, fmt.Errorf("failed to count queue items: %w", err)
	}

	stats := &models.QueueStats{Total: len(items)}
	for _, item := range items {
		switch {
		case item.Status == models.StatusQueued:
			stats.Queued++
		case item.Status == models.StatusPublished:
			stats.Published++
		case item.Status == models.StatusFailed:
			stats.Failed++
		default:
			stats.InProgress++
		}
	}
	return stats, nil
}
