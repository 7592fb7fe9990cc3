package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/scribo/internal/common"
	"github.com/ternarybob/scribo/internal/interfaces"
	"github.com/ternarybob/scribo/internal/models"
	"github.com/ternarybob/scribo/internal/services/events"
	"github.com/ternarybob/scribo/internal/services/llm"
	badgerstore "github.com/ternarybob/scribo/internal/storage/badger"
)

// scriptedGenerator routes prompts to canned responses by prompt prefix
type scriptedGenerator struct {
	planCalls  int
	writeCalls int
	draftWords int             // word count of produced drafts, 1900 when unset
	failWrites map[string]bool // fail drafting when the prompt mentions this title
}

func (g *scriptedGenerator) GenerateContent(ctx context.Context, req *llm.ContentRequest) (*llm.ContentResponse, error) {
	prompt := req.Messages[len(req.Messages)-1].Content

	switch {
	case strings.HasPrefix(prompt, "Create a detailed article outline"):
		g.planCalls++
		// Carry a failing topic through to the plan title so the write
		// prompt can be matched against it
		for title := range g.failWrites {
			if strings.Contains(prompt, title) {
				return &llm.ContentResponse{Text: strings.Replace(testPlanJSON, "Night Differential Pay: A Complete Guide", title, 1)}, nil
			}
		}
		return &llm.ContentResponse{Text: testPlanJSON}, nil

	case strings.HasPrefix(prompt, "Write a complete, publication-ready article"):
		g.writeCalls++
		for title := range g.failWrites {
			if strings.Contains(prompt, title) {
				return nil, fmt.Errorf("model overloaded")
			}
		}
		words := g.draftWords
		if words == 0 {
			words = 1900
		}
		return &llm.ContentResponse{Text: testDraft(words)}, nil

	case strings.HasPrefix(prompt, "Optimize the article"):
		// Echo back the article portion unchanged
		if idx := strings.Index(prompt, "Article:\n"); idx >= 0 {
			return &llm.ContentResponse{Text: prompt[idx+len("Article:\n"):]}, nil
		}
		return &llm.ContentResponse{Text: ""}, nil

	case strings.HasPrefix(prompt, "Generate publication metadata"):
		return &llm.ContentResponse{Text: `{
			"title": "Night Differential Pay: A Complete Guide",
			"meta_description": "Everything workers need to know about night differential pay.",
			"keywords": ["night differential pay", "night shift"],
			"canonical_slug": "night-differential-pay"
		}`}, nil
	}

	return nil, fmt.Errorf("unexpected prompt: %.60s", prompt)
}

const testPlanJSON = `{
	"title": "Night Differential Pay: A Complete Guide",
	"h1": "Night Differential Pay",
	"meta_description": "A complete guide to night differential pay.",
	"sections": [
		{"heading": "What Is Night Differential Pay", "bullets": ["definition"], "target_words": 600},
		{"heading": "Who Qualifies", "bullets": ["eligibility"], "target_words": 600},
		{"heading": "How Rates Are Calculated", "bullets": ["examples"], "target_words": 700}
	],
	"faq": ["Is night differential pay taxable?"],
	"keywords": {"main": "night differential pay", "cluster": ["night shift pay"]},
	"internal_links": [{"anchor": "overtime rules", "topic": "overtime pay"}]
}`

// testDraft builds a markdown article within a few words of the requested
// count, so band assertions can rely on it
func testDraft(words int) string {
	var b strings.Builder
	b.WriteString("# Night Differential Pay\n\n")
	b.WriteString("## What Is Night Differential Pay\n\n")
	perSection := (words - 19) / 3 // headings account for the other 19 fields
	for s := 0; s < 3; s++ {
		for written := 0; written < perSection; written += 4 {
			b.WriteString("every sentence carries weight. ")
		}
		b.WriteString("\n\n## Next Section\n\n")
	}
	return b.String()
}

// scriptedGrok returns a fixed humanize payload, or garbage when broken
type scriptedGrok struct {
	configured bool
	broken     bool
	calls      int
}

func (g *scriptedGrok) IsConfigured() bool { return g.configured }

func (g *scriptedGrok) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	g.calls++
	if g.broken {
		return "I decided not to return JSON today.", nil
	}
	payload := map[string]any{
		"markdown":    "# Night Differential Pay\n\nYou've probably wondered how night differential pay works. " + testDraft(1850),
		"human_score": 88,
		"changes": map[string]any{
			"contractions_added": 12,
			"questions_added":    2,
			"summary":            "varied sentence length and added contractions",
		},
	}
	raw, _ := json.Marshal(payload)
	return string(raw), nil
}

// emptyResearcher simulates research that finds nothing
type emptyResearcher struct{ calls int }

func (r *emptyResearcher) Research(ctx context.Context, item *models.QueueItem) (*models.ResearchArtifact, error) {
	r.calls++
	return &models.ResearchArtifact{
		Synthesis: "Night differential pay is additional pay for hours worked at night.",
		Sources: []models.ResearchSource{
			{Title: "DOL Night Pay", URL: "https://www.dol.gov/night-pay", Domain: "dol.gov"},
		},
	}, nil
}

type testHarness struct {
	orchestrator *Orchestrator
	storage      interfaces.StorageManager
	generator    *scriptedGenerator
	grok         *scriptedGrok
	researcher   *emptyResearcher
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "pipeline-test")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	logger := arbor.NewLogger()
	storage, err := badgerstore.NewManager(logger, &common.BadgerConfig{Path: tmpDir})
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })

	cfg := common.NewDefaultConfig()
	cfg.Pipeline.PolitenessDelay = "1ms"

	generator := &scriptedGenerator{failWrites: map[string]bool{}}
	grok := &scriptedGrok{configured: true}
	researcher := &emptyResearcher{}

	stages := NewStages(cfg, generator, grok, researcher, storage, logger)
	orchestrator := NewOrchestrator(cfg, storage, stages, events.NewService(logger), logger)

	return &testHarness{
		orchestrator: orchestrator,
		storage:      storage,
		generator:    generator,
		grok:         grok,
		researcher:   researcher,
	}
}

func (h *testHarness) enqueue(t *testing.T, id, title string, level models.ContentLevel) {
	t.Helper()
	err := h.storage.QueueStorage().Enqueue(context.Background(), &models.QueueItem{
		ID:             id,
		Title:          title,
		TargetKeywords: []string{"night differential pay"},
		Level:          level,
	})
	require.NoError(t, err)
}

func TestRunBatchPublishesItem(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	h.enqueue(t, "item-e2e", "Night Differential Pay", models.LevelSupporting)

	result, err := h.orchestrator.RunBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Published)
	assert.Equal(t, 0, result.Failed)

	item, err := h.storage.QueueStorage().GetItem(ctx, "item-e2e")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, item.Status)
	assert.NotEmpty(t, item.InsightID)
	assert.NotNil(t, item.CompletedAt)

	article, err := h.storage.ArticleStorage().GetBySlug(ctx, "night-differential-pay")
	require.NoError(t, err)
	assert.Equal(t, item.InsightID, article.ID)
	assert.Contains(t, article.HTMLContent, "<h1")
	assert.Greater(t, article.WordCount, 0)
	assert.GreaterOrEqual(t, article.ReadTimeMinutes, 1)

	record, err := h.storage.PipelineStorage().GetByItemID(ctx, "item-e2e")
	require.NoError(t, err)
	for _, stage := range []models.Stage{models.StageResearch, models.StagePlan, models.StageWrite, models.StageHumanize, models.StageSEOOptimize, models.StageMeta} {
		assert.True(t, record.HasValidArtifact(stage), "missing artifact for %s", stage)
	}
}

func TestRunBatchResumeSkipsCompletedStages(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	h.enqueue(t, "item-resume", "Night Differential Pay", models.LevelSupporting)

	// Simulate a prior run that completed research and plan before crashing
	var plan models.PlanArtifact
	require.NoError(t, json.Unmarshal([]byte(testPlanJSON), &plan))
	require.NoError(t, h.storage.PipelineStorage().SaveArtifact(ctx, "item-resume", models.StageResearch, &models.ResearchArtifact{Synthesis: "prior research"}))
	require.NoError(t, h.storage.PipelineStorage().SaveArtifact(ctx, "item-resume", models.StagePlan, &plan))

	prior, err := h.storage.PipelineStorage().GetByItemID(ctx, "item-resume")
	require.NoError(t, err)

	result, err := h.orchestrator.RunBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Published)

	// Research and plan must not have re-run
	assert.Equal(t, 0, h.researcher.calls)
	assert.Equal(t, 0, h.generator.planCalls)
	assert.Equal(t, 1, h.generator.writeCalls)

	record, err := h.storage.PipelineStorage().GetByItemID(ctx, "item-resume")
	require.NoError(t, err)
	assert.Equal(t, "prior research", record.Research.Synthesis)
	assert.Equal(t, prior.ID, record.ID)
}

func TestRunBatchIsolatesFailures(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	h.generator.failWrites["Doomed Topic"] = true
	h.enqueue(t, "item-bad", "Doomed Topic", models.LevelSupporting)
	h.enqueue(t, "item-good", "Night Differential Pay", models.LevelSupporting)

	result, err := h.orchestrator.RunBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 1, result.Published)
	assert.Equal(t, 1, result.Failed)

	bad, err := h.storage.QueueStorage().GetItem(ctx, "item-bad")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, bad.Status)
	assert.NotEmpty(t, bad.ErrorMessage)
	assert.Equal(t, 1, bad.RetryCount)

	good, err := h.storage.QueueStorage().GetItem(ctx, "item-good")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, good.Status)

	// The failed item keeps its completed artifacts for later requeue
	record, err := h.storage.PipelineStorage().GetByItemID(ctx, "item-bad")
	require.NoError(t, err)
	assert.True(t, record.HasValidArtifact(models.StagePlan))
	assert.False(t, record.HasValidArtifact(models.StageWrite))
}

func TestHumanizeHardFailureStopsItem(t *testing.T) {
	h := newTestHarness(t)
	h.grok.broken = true
	ctx := context.Background()

	h.enqueue(t, "item-grok", "Night Differential Pay", models.LevelSupporting)

	result, err := h.orchestrator.RunBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)

	item, err := h.storage.QueueStorage().GetItem(ctx, "item-grok")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, item.Status)
	assert.Contains(t, item.ErrorMessage, "humanize")

	// The draft survived the humanize failure
	record, err := h.storage.PipelineStorage().GetByItemID(ctx, "item-grok")
	require.NoError(t, err)
	assert.True(t, record.HasValidArtifact(models.StageWrite))
	assert.False(t, record.HasValidArtifact(models.StageHumanize))
}

func TestHumanizeUnconfiguredFailsItem(t *testing.T) {
	h := newTestHarness(t)
	h.grok.configured = false
	ctx := context.Background()

	h.enqueue(t, "item-nogrok", "Night Differential Pay", models.LevelSupporting)

	result, err := h.orchestrator.RunBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Published)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 0, h.grok.calls)

	item, err := h.storage.QueueStorage().GetItem(ctx, "item-nogrok")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, item.Status)
	assert.Contains(t, item.ErrorMessage, "not configured")

	// The raw draft must not ship or be recorded as humanized
	record, err := h.storage.PipelineStorage().GetByItemID(ctx, "item-nogrok")
	require.NoError(t, err)
	assert.True(t, record.HasValidArtifact(models.StageWrite))
	assert.False(t, record.HasValidArtifact(models.StageHumanize))
}

func TestOverlongDraftWarnsButStillPublishes(t *testing.T) {
	h := newTestHarness(t)
	h.generator.draftWords = 2600
	ctx := context.Background()

	h.enqueue(t, "item-long", "Night Differential Pay", models.LevelSupporting)

	result, err := h.orchestrator.RunBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Published)
	assert.Equal(t, 0, result.Failed)

	item, err := h.storage.QueueStorage().GetItem(ctx, "item-long")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, item.Status)

	record, err := h.storage.PipelineStorage().GetByItemID(ctx, "item-long")
	require.NoError(t, err)
	assert.True(t, record.HasValidArtifact(models.StageWrite))
	assert.Contains(t, record.WordCountWarning, "above the 2200-word maximum")
}

func TestRedoProducesCandidateUntilPromoted(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	h.enqueue(t, "item-redo", "Night Differential Pay", models.LevelSupporting)
	_, err := h.orchestrator.RunBatch(ctx)
	require.NoError(t, err)

	record, err := h.storage.PipelineStorage().GetByItemID(ctx, "item-redo")
	require.NoError(t, err)
	committed := record.Draft.Markdown

	require.NoError(t, h.orchestrator.RedoStage(ctx, "item-redo", models.StageWrite))

	record, err = h.storage.PipelineStorage().GetByItemID(ctx, "item-redo")
	require.NoError(t, err)
	assert.Equal(t, committed, record.Draft.Markdown, "committed draft untouched before promote")
	assert.Contains(t, record.Candidates, models.StageWrite)

	require.NoError(t, h.orchestrator.PromoteCandidate(ctx, "item-redo", models.StageWrite))

	record, err = h.storage.PipelineStorage().GetByItemID(ctx, "item-redo")
	require.NoError(t, err)
	assert.NotContains(t, record.Candidates, models.StageWrite)
	require.NotNil(t, record.Draft)
}

func TestRedoRejectsStageWithoutCommittedArtifact(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	h.enqueue(t, "item-partial", "Night Differential Pay", models.LevelSupporting)

	// Research and plan are committed; write is the next stage to run
	var plan models.PlanArtifact
	require.NoError(t, json.Unmarshal([]byte(testPlanJSON), &plan))
	require.NoError(t, h.storage.PipelineStorage().SaveArtifact(ctx, "item-partial", models.StageResearch, &models.ResearchArtifact{Synthesis: "prior research"}))
	require.NoError(t, h.storage.PipelineStorage().SaveArtifact(ctx, "item-partial", models.StagePlan, &plan))

	err := h.orchestrator.RedoStage(ctx, "item-partial", models.StageWrite)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has not run yet")

	require.NoError(t, h.orchestrator.RedoStage(ctx, "item-partial", models.StagePlan))
	record, err := h.storage.PipelineStorage().GetByItemID(ctx, "item-partial")
	require.NoError(t, err)
	assert.Contains(t, record.Candidates, models.StagePlan)
}

func TestRedoPublishRejected(t *testing.T) {
	h := newTestHarness(t)
	err := h.orchestrator.RedoStage(context.Background(), "whatever", models.StagePublish)
	assert.Error(t, err)
}
