package pipeline

import (
	"context"

	"github.com/ternarybob/scribo/internal/models"
)

// runResearch performs grounded topic research. This stage is fully
// degradable: any failure yields an empty artifact and the pipeline
// continues without research context.
func (s *Stages) runResearch(ctx context.Context, item *models.QueueItem, record *models.PipelineRecord) (any, error) {
	artifact, err := s.research.Research(ctx, item)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("item_id", item.ID).
			Msg("Research failed, continuing with empty research")
		return &models.ResearchArtifact{}, nil
	}
	return artifact, nil
}
