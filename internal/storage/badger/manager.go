package badger

import (
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/scribo/internal/common"
	"github.com/ternarybob/scribo/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db       *BadgerDB
	queue    interfaces.QueueStorage
	pipeline interfaces.PipelineStorage
	article  interfaces.ArticleStorage
	logger   arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:       db,
		queue:    NewQueueStorage(db, logger),
		pipeline: NewPipelineStorage(db, logger),
		article:  NewArticleStorage(db, logger),
		logger:   logger,
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

// QueueStorage returns the Queue storage interface
func (m *Manager) QueueStorage() interfaces.QueueStorage {
	return m.queue
}

// PipelineStorage returns the Pipeline storage interface
func (m *Manager) PipelineStorage() interfaces.PipelineStorage {
	return m.pipeline
}

// ArticleStorage returns the Article storage interface
func (m *Manager) ArticleStorage() interfaces.ArticleStorage {
	return m.article
}

// RunGC reclaims value log space on the underlying database
func (m *Manager) RunGC() {
	m.db.RunGC()
}

// Close closes the database connection
func (m *Manager) Close() error {
	return m.db.Close()
}
