package badger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/scribo/internal/common"
	"github.com/ternarybob/scribo/internal/interfaces"
	"github.com/ternarybob/scribo/internal/models"
)

// PipelineStorage implements the PipelineStorage interface for Badger.
// One record per queue item; artifacts are committed per stage so an
// interrupted run resumes from the last persisted stage.
type PipelineStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewPipelineStorage creates a new PipelineStorage instance
func NewPipelineStorage(db *BadgerDB, logger arbor.ILogger) interfaces.PipelineStorage {
	return &PipelineStorage{
		db:     db,
		logger: logger,
	}
}

// Save upserts a pipeline record
func (s *PipelineStorage) Save(ctx context.Context, record *models.PipelineRecord) error {
	if record.ID == "" {
		return fmt.Errorf("pipeline record ID is required")
	}
	if record.ItemID == "" {
		return fmt.Errorf("pipeline record item ID is required")
	}

	now := time.Now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	if err := s.db.Store().Upsert(record.ID, *record); err != nil {
		s.logger.Error().Err(err).Str("item_id", record.ItemID).Msg("BadgerDB: Failed to upsert pipeline record")
		return fmt.Errorf("failed to save pipeline record: %w", err)
	}
	return nil
}

// GetByItemID retrieves the pipeline record for a queue item.
// Returns badgerhold.ErrNotFound wrapped when no record exists yet.
func (s *PipelineStorage) GetByItemID(ctx context.Context, itemID string) (*models.PipelineRecord, error) {
	var records []models.PipelineRecord
	if err := s.db.Store().Find(&records, badgerhold.Where("ItemID").Eq(itemID)); err != nil {
		return nil, fmt.Errorf("failed to query pipeline record: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("pipeline record for item %s: %w", itemID, badgerhold.ErrNotFound)
	}
	return &records[0], nil
}

// getOrCreate loads the record for an item, creating one when absent
func (s *PipelineStorage) getOrCreate(ctx context.Context, itemID string) (*models.PipelineRecord, error) {
	record, err := s.GetByItemID(ctx, itemID)
	if err == nil {
		return record, nil
	}

	record = &models.PipelineRecord{
		ID:        "pipe_" + itemID,
		ItemID:    itemID,
		CreatedAt: time.Now(),
	}
	return record, nil
}

// SaveArtifact validates and commits a stage artifact, advancing the stage
// cursor past the stage in the same write.
func (s *PipelineStorage) SaveArtifact(ctx context.Context, itemID string, stage models.Stage, artifact interface{}) error {
	record, err := s.getOrCreate(ctx, itemID)
	if err != nil {
		return err
	}

	if err := record.SetArtifact(stage, artifact); err != nil {
		return err
	}
	if v, ok := artifact.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("refusing to persist invalid %s artifact: %w", stage, err)
		}
	}

	if idx := models.StageIndex(stage); idx >= record.CurrentStage {
		record.CurrentStage = idx + 1
	}

	// Word count follows the most refined body available
	if body := record.FinalMarkdown(); body != "" {
		record.WordCount = common.CountWords(body)
	}

	if err := s.Save(ctx, record); err != nil {
		return err
	}

	s.logger.Debug().
		Str("item_id", itemID).
		Str("stage", string(stage)).
		Int("current_stage", record.CurrentStage).
		Msg("Stage artifact committed")
	return nil
}

// SaveCandidate stores redo output for a stage without touching the
// committed artifact.
func (s *PipelineStorage) SaveCandidate(ctx context.Context, itemID string, stage models.Stage, artifact interface{}) error {
	record, err := s.GetByItemID(ctx, itemID)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(artifact)
	if err != nil {
		return fmt.Errorf("failed to encode %s candidate: %w", stage, err)
	}

	if record.Candidates == nil {
		record.Candidates = make(map[models.Stage]json.RawMessage)
	}
	record.Candidates[stage] = raw

	if err := s.Save(ctx, record); err != nil {
		return err
	}

	s.logger.Info().
		Str("item_id", itemID).
		Str("stage", string(stage)).
		Msg("Candidate artifact saved for review")
	return nil
}

// PromoteCandidate replaces the committed artifact with the stored candidate
func (s *PipelineStorage) PromoteCandidate(ctx context.Context, itemID string, stage models.Stage) error {
	record, err := s.GetByItemID(ctx, itemID)
	if err != nil {
		return err
	}

	raw, ok := record.Candidates[stage]
	if !ok {
		return fmt.Errorf("no candidate for stage %s on item %s", stage, itemID)
	}

	artifact, err := models.UnmarshalArtifact(stage, raw)
	if err != nil {
		return err
	}
	if v, ok := artifact.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("candidate for stage %s failed validation: %w", stage, err)
		}
	}

	if err := record.SetArtifact(stage, artifact); err != nil {
		return err
	}
	delete(record.Candidates, stage)

	if body := record.FinalMarkdown(); body != "" {
		record.WordCount = common.CountWords(body)
	}

	if err := s.Save(ctx, record); err != nil {
		return err
	}

	s.logger.Info().
		Str("item_id", itemID).
		Str("stage", string(stage)).
		Msg("Candidate promoted to committed artifact")
	return nil
}

// DiscardCandidate drops redo output, leaving the committed artifact as is
func (s *PipelineStorage) DiscardCandidate(ctx context.Context, itemID string, stage models.Stage) error {
	record, err := s.GetByItemID(ctx, itemID)
	if err != nil {
		return err
	}

	if _, ok := record.Candidates[stage]; !ok {
		return fmt.Errorf("no candidate for stage %s on item %s", stage, itemID)
	}
	delete(record.Candidates, stage)

	if err := s.Save(ctx, record); err != nil {
		return err
	}

	s.logger.Info().
		Str("item_id", itemID).
		Str("stage", string(stage)).
		Msg("Candidate discarded")
	return nil
}

// SetApproval records a reviewer decision for a stage
func (s *PipelineStorage) SetApproval(ctx context.Context, itemID string, stage models.Stage, approved bool) error {
	record, err := s.GetByItemID(ctx, itemID)
	if err != nil {
		return err
	}

	if record.Approvals == nil {
		record.Approvals = make(map[models.Stage]bool)
	}
	record.Approvals[stage] = approved

	return s.Save(ctx, record)
}

// Delete removes the pipeline record for an item
func (s *PipelineStorage) Delete(ctx context.Context, itemID string) error {
	record, err := s.GetByItemID(ctx, itemID)
	if err != nil {
		return err
	}
	if err := s.db.Store().Delete(record.ID, models.PipelineRecord{}); err != nil {
		return fmt.Errorf("failed to delete pipeline record: %w", err)
	}
	return nil
}
