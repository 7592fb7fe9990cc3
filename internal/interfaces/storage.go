package interfaces

import (
	"context"

	"github.com/ternarybob/scribo/internal/models"
)

// QueueStorage - interface for durable work queue persistence
type QueueStorage interface {
	// Enqueue operations
	Enqueue(ctx context.Context, item *models.QueueItem) error
	EnqueueBatch(ctx context.Context, items []*models.QueueItem) (int, error)

	// ClaimNext atomically selects the highest-priority queued item and
	// marks it in progress. Returns nil when the queue is drained.
	ClaimNext(ctx context.Context) (*models.QueueItem, error)

	// Status operations
	UpdateStatus(ctx context.Context, id string, status models.ItemStatus, update *models.StatusUpdate) error
	Requeue(ctx context.Context, id string) error

	// Query operations
	GetItem(ctx context.Context, id string) (*models.QueueItem, error)
	ListItems(ctx context.Context, status models.ItemStatus, limit int) ([]*models.QueueItem, error)
	CountByStatus(ctx context.Context) (*models.QueueStats, error)
}

// PipelineStorage - interface for per-item stage artifact persistence
type PipelineStorage interface {
	Save(ctx context.Context, record *models.PipelineRecord) error
	GetByItemID(ctx context.Context, itemID string) (*models.PipelineRecord, error)

	// SaveArtifact commits a validated stage artifact and advances the
	// record's stage cursor in a single write.
	SaveArtifact(ctx context.Context, itemID string, stage models.Stage, artifact interface{}) error

	// Candidate operations for the redo flow. A candidate never replaces
	// the committed artifact until promoted.
	SaveCandidate(ctx context.Context, itemID string, stage models.Stage, artifact interface{}) error
	PromoteCandidate(ctx context.Context, itemID string, stage models.Stage) error
	DiscardCandidate(ctx context.Context, itemID string, stage models.Stage) error

	SetApproval(ctx context.Context, itemID string, stage models.Stage, approved bool) error
	Delete(ctx context.Context, itemID string) error
}

// ArticleStorage - interface for published article persistence
type ArticleStorage interface {
	Upsert(ctx context.Context, article *models.Article) error
	GetByID(ctx context.Context, id string) (*models.Article, error)
	GetBySlug(ctx context.Context, slug string) (*models.Article, error)
	List(ctx context.Context, limit int) ([]*models.Article, error)
	Count(ctx context.Context) (int, error)
}

// StorageManager - interface for coordinated storage access
type StorageManager interface {
	QueueStorage() QueueStorage
	PipelineStorage() PipelineStorage
	ArticleStorage() ArticleStorage

	// RunGC reclaims storage space between batch passes
	RunGC()

	Close() error
}
