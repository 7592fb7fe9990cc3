package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/scribo/internal/common"
	"github.com/ternarybob/scribo/internal/interfaces"
	"github.com/ternarybob/scribo/internal/models"
)

// Orchestrator drives queued items through the stage sequence until the
// queue drains. One item at a time; a failed item never stops the batch.
type Orchestrator struct {
	config     *common.Config
	storage    interfaces.StorageManager
	stages     *Stages
	events     interfaces.EventService
	logger     arbor.ILogger
	politeness time.Duration
}

// BatchResult summarizes one run-to-completion pass
type BatchResult struct {
	Processed int
	Published int
	Failed    int
	Duration  time.Duration
}

// NewOrchestrator creates a pipeline orchestrator
func NewOrchestrator(
	config *common.Config,
	storage interfaces.StorageManager,
	stages *Stages,
	events interfaces.EventService,
	logger arbor.ILogger,
) *Orchestrator {
	return &Orchestrator{
		config:     config,
		storage:    storage,
		stages:     stages,
		events:     events,
		logger:     logger,
		politeness: common.ParseDuration(config.Pipeline.PolitenessDelay, 5*time.Second),
	}
}

// RunBatch claims and processes items until the queue is drained or the
// context is cancelled. Returns counts for the pass.
func (o *Orchestrator) RunBatch(ctx context.Context) (*BatchResult, error) {
	start := time.Now()
	result := &BatchResult{}

	for {
		select {
		case <-ctx.Done():
			result.Duration = time.Since(start)
			return result, ctx.Err()
		default:
		}

		item, err := o.storage.QueueStorage().ClaimNext(ctx)
		if err != nil {
			result.Duration = time.Since(start)
			return result, fmt.Errorf("failed to claim next item: %w", err)
		}
		if item == nil {
			break
		}

		result.Processed++
		o.events.Publish(ctx, interfaces.Event{
			Type:    interfaces.EventItemClaimed,
			Payload: interfaces.StageEventPayload{ItemID: item.ID, Title: item.Title},
		})

		if err := o.ProcessItem(ctx, item); err != nil {
			result.Failed++
			o.failItem(ctx, item, err)
		} else {
			result.Published++
		}

		o.reportProgress(ctx)

		// Spacing between items keeps provider rate limits comfortable
		if result.Processed > 0 {
			select {
			case <-ctx.Done():
				result.Duration = time.Since(start)
				return result, ctx.Err()
			case <-time.After(o.politeness):
			}
		}
	}

	result.Duration = time.Since(start)
	o.logger.Info().
		Int("processed", result.Processed).
		Int("published", result.Published).
		Int("failed", result.Failed).
		Str("duration", result.Duration.Round(time.Second).String()).
		Msg("Batch run complete")

	return result, nil
}

// ProcessItem runs one item through every stage it has not already
// completed. Completed stages are detected from their persisted artifacts,
// which is what makes a crashed run resumable.
func (o *Orchestrator) ProcessItem(ctx context.Context, item *models.QueueItem) error {
	logger := o.logger.WithCorrelationId(item.ID)

	record, err := o.loadOrCreateRecord(ctx, item)
	if err != nil {
		return err
	}

	for _, stage := range models.StageOrder {
		if stage != models.StagePublish && record.HasValidArtifact(stage) {
			logger.Debug().
				Str("stage", string(stage)).
				Msg("Stage already complete, skipping")
			continue
		}

		if err := o.storage.QueueStorage().UpdateStatus(ctx, item.ID, stage.InProgressStatus(), nil); err != nil {
			return &PersistenceError{Stage: string(stage), Err: err}
		}

		logger.Info().
			Str("stage", string(stage)).
			Str("title", item.Title).
			Msg("Running stage")
		o.events.Publish(ctx, interfaces.Event{
			Type:    interfaces.EventStageStarted,
			Payload: interfaces.StageEventPayload{ItemID: item.ID, Title: item.Title, Stage: string(stage)},
		})

		if stage == models.StagePublish {
			if err := o.publishItem(ctx, item, record); err != nil {
				return err
			}
			continue
		}

		artifact, err := o.runStage(ctx, stage, item, record)
		if err != nil {
			return err
		}

		if err := o.commitArtifact(ctx, stage, record, artifact); err != nil {
			return err
		}

		if note := degradationNote(artifact); note != "" {
			logger.Warn().
				Str("stage", string(stage)).
				Str("note", note).
				Msg("Stage completed degraded")
			o.events.Publish(ctx, interfaces.Event{
				Type:    interfaces.EventStageDegraded,
				Payload: interfaces.StageEventPayload{ItemID: item.ID, Title: item.Title, Stage: string(stage), Message: note},
			})
		}

		o.events.Publish(ctx, interfaces.Event{
			Type:    interfaces.EventStageComplete,
			Payload: interfaces.StageEventPayload{ItemID: item.ID, Title: item.Title, Stage: string(stage)},
		})
	}

	return nil
}

// runStage dispatches to the stage executor
func (o *Orchestrator) runStage(ctx context.Context, stage models.Stage, item *models.QueueItem, record *models.PipelineRecord) (any, error) {
	switch stage {
	case models.StageResearch:
		return o.stages.runResearch(ctx, item, record)
	case models.StagePlan:
		return o.stages.runPlan(ctx, item, record)
	case models.StageWrite:
		return o.stages.runWrite(ctx, item, record)
	case models.StageHumanize:
		return o.stages.runHumanize(ctx, item, record)
	case models.StageSEOOptimize:
		return o.stages.runSEO(ctx, item, record)
	case models.StageMeta:
		return o.stages.runMeta(ctx, item, record)
	default:
		return nil, fmt.Errorf("no executor for stage %s", stage)
	}
}

// degradationNote reports the reason an artifact carries degraded output,
// or empty when the stage ran normally.
func degradationNote(artifact any) string {
	switch a := artifact.(type) {
	case *models.ResearchArtifact:
		if a.IsEmpty() {
			return "research unavailable, continuing without context"
		}
	case *models.SEOArtifact:
		if a.PassThrough {
			return "seo pass skipped, content unchanged"
		}
	case *models.MetaArtifact:
		if a.Fallback {
			return "metadata derived from plan"
		}
	}
	return ""
}

// commitArtifact validates, applies, and persists a stage artifact. The
// stage cursor only advances with the artifact in the same write.
func (o *Orchestrator) commitArtifact(ctx context.Context, stage models.Stage, record *models.PipelineRecord, artifact any) error {
	if v, ok := artifact.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return &MalformedResponseError{Stage: string(stage), Err: err}
		}
	}

	if err := record.SetArtifact(stage, artifact); err != nil {
		return &PersistenceError{Stage: string(stage), Err: err}
	}
	if idx := models.StageIndex(stage); idx >= record.CurrentStage {
		record.CurrentStage = idx + 1
	}
	if body := record.FinalMarkdown(); body != "" {
		record.WordCount = common.CountWords(body)
	}

	if err := o.storage.PipelineStorage().Save(ctx, record); err != nil {
		return &PersistenceError{Stage: string(stage), Err: err}
	}
	return nil
}

// publishItem runs the Publish stage and moves the item to its terminal
// published state.
func (o *Orchestrator) publishItem(ctx context.Context, item *models.QueueItem, record *models.PipelineRecord) error {
	articleID, err := o.stages.runPublish(ctx, item, record)
	if err != nil {
		return err
	}

	now := time.Now()
	if err := o.storage.QueueStorage().UpdateStatus(ctx, item.ID, models.StatusPublished, &models.StatusUpdate{
		InsightID:   &articleID,
		CompletedAt: &now,
	}); err != nil {
		return &PersistenceError{Stage: string(models.StagePublish), Err: err}
	}

	o.events.Publish(ctx, interfaces.Event{
		Type:    interfaces.EventItemPublished,
		Payload: interfaces.StageEventPayload{ItemID: item.ID, Title: item.Title, Message: articleID},
	})
	return nil
}

// reportProgress logs queue counts after each item. Reporting only.
func (o *Orchestrator) reportProgress(ctx context.Context) {
	stats, err := o.storage.QueueStorage().CountByStatus(ctx)
	if err != nil {
		o.logger.Warn().Err(err).Msg("Failed to count queue items")
		return
	}
	o.logger.Info().
		Int("queued", stats.Queued).
		Int("in_progress", stats.InProgress).
		Int("published", stats.Published).
		Int("failed", stats.Failed).
		Msg("Queue progress")
}

// loadOrCreateRecord fetches the pipeline record for an item, creating an
// empty one on first claim.
func (o *Orchestrator) loadOrCreateRecord(ctx context.Context, item *models.QueueItem) (*models.PipelineRecord, error) {
	record, err := o.storage.PipelineStorage().GetByItemID(ctx, item.ID)
	if err == nil {
		return record, nil
	}

	record = &models.PipelineRecord{
		ID:     common.NewPipelineID(),
		ItemID: item.ID,
	}
	if err := o.storage.PipelineStorage().Save(ctx, record); err != nil {
		return nil, &PersistenceError{Stage: string(models.StageResearch), Err: err}
	}
	return record, nil
}

// failItem records a stage failure on the item without touching its
// persisted artifacts, so a requeue resumes from the failed stage.
func (o *Orchestrator) failItem(ctx context.Context, item *models.QueueItem, stageErr error) {
	msg := stageErr.Error()
	retries := item.RetryCount + 1
	o.logger.Error().
		Err(stageErr).
		Str("item_id", item.ID).
		Str("title", item.Title).
		Int("retry_count", retries).
		Msg("Item failed")

	if err := o.storage.QueueStorage().UpdateStatus(ctx, item.ID, models.StatusFailed, &models.StatusUpdate{
		ErrorMessage: &msg,
		RetryCount:   &retries,
	}); err != nil {
		o.logger.Error().Err(err).Str("item_id", item.ID).Msg("Failed to record item failure")
	}

	o.events.Publish(ctx, interfaces.Event{
		Type:    interfaces.EventItemFailed,
		Payload: interfaces.StageEventPayload{ItemID: item.ID, Title: item.Title, Message: msg},
	})
}
