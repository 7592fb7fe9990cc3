package pipeline

import (
	"context"
	"fmt"

	"github.com/ternarybob/scribo/internal/models"
)

// RedoStage re-runs a single stage for an item and stores the output as a
// candidate. The committed artifact and everything downstream of it stay
// untouched until the candidate is explicitly promoted.
func (o *Orchestrator) RedoStage(ctx context.Context, itemID string, stage models.Stage) error {
	if stage == models.StagePublish {
		return fmt.Errorf("publish cannot be redone as a candidate; requeue the item instead")
	}

	item, err := o.storage.QueueStorage().GetItem(ctx, itemID)
	if err != nil {
		return err
	}

	record, err := o.storage.PipelineStorage().GetByItemID(ctx, itemID)
	if err != nil {
		return fmt.Errorf("item %s has no pipeline record to redo against: %w", itemID, err)
	}

	// The stage cursor points at the next stage to run, so only stages
	// strictly behind it have a committed artifact to redo against
	if idx := models.StageIndex(stage); idx >= record.CurrentStage {
		return fmt.Errorf("stage %s has not run yet for item %s", stage, itemID)
	}

	o.logger.Info().
		Str("item_id", itemID).
		Str("stage", string(stage)).
		Msg("Redoing stage as candidate")

	artifact, err := o.runStage(ctx, stage, item, record)
	if err != nil {
		return fmt.Errorf("redo of %s failed: %w", stage, err)
	}

	if v, ok := artifact.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return &MalformedResponseError{Stage: string(stage), Err: err}
		}
	}

	return o.storage.PipelineStorage().SaveCandidate(ctx, itemID, stage, artifact)
}

// PromoteCandidate commits a redo candidate as the stage's artifact
func (o *Orchestrator) PromoteCandidate(ctx context.Context, itemID string, stage models.Stage) error {
	return o.storage.PipelineStorage().PromoteCandidate(ctx, itemID, stage)
}

// DiscardCandidate drops a redo candidate
func (o *Orchestrator) DiscardCandidate(ctx context.Context, itemID string, stage models.Stage) error {
	return o.storage.PipelineStorage().DiscardCandidate(ctx, itemID, stage)
}
