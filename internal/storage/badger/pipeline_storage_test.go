package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/scribo/internal/models"
)

func TestSaveArtifactAdvancesStage(t *testing.T) {
	db := newTestDB(t)
	storage := NewPipelineStorage(db, arbor.NewLogger())
	ctx := context.Background()

	research := &models.ResearchArtifact{
		Synthesis: "Night differential pay is additional compensation for night work.",
	}
	require.NoError(t, storage.SaveArtifact(ctx, "item-1", models.StageResearch, research))

	record, err := storage.GetByItemID(ctx, "item-1")
	require.NoError(t, err)
	assert.Equal(t, 1, record.CurrentStage)
	assert.True(t, record.HasValidArtifact(models.StageResearch))
	assert.False(t, record.HasValidArtifact(models.StagePlan))

	plan := &models.PlanArtifact{
		Title: "Night Differential Pay: A Complete Guide",
		Sections: []models.PlanSection{
			{Heading: "What Is Night Differential Pay", Bullets: []string{"definition"}},
		},
	}
	require.NoError(t, storage.SaveArtifact(ctx, "item-1", models.StagePlan, plan))

	record, err = storage.GetByItemID(ctx, "item-1")
	require.NoError(t, err)
	assert.Equal(t, 2, record.CurrentStage)
	assert.Equal(t, plan.Title, record.Plan.Title)
}

func TestSaveArtifactRejectsInvalid(t *testing.T) {
	db := newTestDB(t)
	storage := NewPipelineStorage(db, arbor.NewLogger())
	ctx := context.Background()

	// A plan without sections must never be persisted
	err := storage.SaveArtifact(ctx, "item-2", models.StagePlan, &models.PlanArtifact{Title: "Empty Plan"})
	require.Error(t, err)

	_, err = storage.GetByItemID(ctx, "item-2")
	assert.Error(t, err, "invalid artifact must not create a record")
}

func TestResumeSkipsCompletedStages(t *testing.T) {
	db := newTestDB(t)
	storage := NewPipelineStorage(db, arbor.NewLogger())
	ctx := context.Background()

	require.NoError(t, storage.SaveArtifact(ctx, "item-3", models.StageResearch, &models.ResearchArtifact{
		Synthesis: "summary",
	}))
	require.NoError(t, storage.SaveArtifact(ctx, "item-3", models.StagePlan, &models.PlanArtifact{
		Title:    "Holiday Pay Rules",
		Sections: []models.PlanSection{{Heading: "Coverage", Bullets: []string{"who qualifies"}}},
	}))

	// Simulate a restart: a fresh storage instance reads the same record
	reopened := NewPipelineStorage(db, arbor.NewLogger())
	record, err := reopened.GetByItemID(ctx, "item-3")
	require.NoError(t, err)

	assert.True(t, record.HasValidArtifact(models.StageResearch))
	assert.True(t, record.HasValidArtifact(models.StagePlan))
	assert.False(t, record.HasValidArtifact(models.StageWrite))
	assert.Equal(t, 2, record.CurrentStage)
}

func TestCandidatePromoteAndDiscard(t *testing.T) {
	db := newTestDB(t)
	storage := NewPipelineStorage(db, arbor.NewLogger())
	ctx := context.Background()

	committed := &models.DraftArtifact{Markdown: "# Original draft\n\nOriginal body."}
	require.NoError(t, storage.SaveArtifact(ctx, "item-4", models.StageWrite, committed))

	candidate := &models.DraftArtifact{Markdown: "# Redone draft\n\nImproved body."}
	require.NoError(t, storage.SaveCandidate(ctx, "item-4", models.StageWrite, candidate))

	// Committed artifact untouched while the candidate is pending
	record, err := storage.GetByItemID(ctx, "item-4")
	require.NoError(t, err)
	assert.Equal(t, committed.Markdown, record.Draft.Markdown)
	assert.Contains(t, record.Candidates, models.StageWrite)

	// Promote replaces the committed artifact and clears the candidate
	require.NoError(t, storage.PromoteCandidate(ctx, "item-4", models.StageWrite))
	record, err = storage.GetByItemID(ctx, "item-4")
	require.NoError(t, err)
	assert.Equal(t, candidate.Markdown, record.Draft.Markdown)
	assert.NotContains(t, record.Candidates, models.StageWrite)

	// Discard leaves the committed artifact in place
	second := &models.DraftArtifact{Markdown: "# Third attempt\n\nAnother body."}
	require.NoError(t, storage.SaveCandidate(ctx, "item-4", models.StageWrite, second))
	require.NoError(t, storage.DiscardCandidate(ctx, "item-4", models.StageWrite))
	record, err = storage.GetByItemID(ctx, "item-4")
	require.NoError(t, err)
	assert.Equal(t, candidate.Markdown, record.Draft.Markdown)
	assert.NotContains(t, record.Candidates, models.StageWrite)
}

func TestPromoteWithoutCandidateFails(t *testing.T) {
	db := newTestDB(t)
	storage := NewPipelineStorage(db, arbor.NewLogger())
	ctx := context.Background()

	require.NoError(t, storage.SaveArtifact(ctx, "item-5", models.StageResearch, &models.ResearchArtifact{}))
	assert.Error(t, storage.PromoteCandidate(ctx, "item-5", models.StageWrite))
	assert.Error(t, storage.DiscardCandidate(ctx, "item-5", models.StageWrite))
}

func TestArticleUpsertIsIdempotentBySlug(t *testing.T) {
	db := newTestDB(t)
	storage := NewArticleStorage(db, arbor.NewLogger())
	ctx := context.Background()

	first := &models.Article{
		ID:      "art-1",
		Slug:    "night-differential-pay",
		Content: "# Night Differential Pay\n\nBody.",
	}
	require.NoError(t, storage.Upsert(ctx, first))

	// Republish under the same slug with a new candidate ID
	second := &models.Article{
		ID:      "art-2",
		Slug:    "night-differential-pay",
		Content: "# Night Differential Pay\n\nRevised body.",
	}
	require.NoError(t, storage.Upsert(ctx, second))

	count, err := storage.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "republish must not create a second article")

	got, err := storage.GetBySlug(ctx, "night-differential-pay")
	require.NoError(t, err)
	assert.Equal(t, "art-1", got.ID, "existing article ID is reused")
	assert.Contains(t, got.Content, "Revised body")
}
