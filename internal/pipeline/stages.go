package pipeline

import (
	"context"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/scribo/internal/common"
	"github.com/ternarybob/scribo/internal/interfaces"
	"github.com/ternarybob/scribo/internal/models"
	"github.com/ternarybob/scribo/internal/services/llm"
)

// Generator is the slice of the LLM provider factory the stages consume
type Generator interface {
	GenerateContent(ctx context.Context, request *llm.ContentRequest) (*llm.ContentResponse, error)
}

// StyleTransformer is the humanize-stage provider contract, satisfied by
// the Grok client
type StyleTransformer interface {
	IsConfigured() bool
	Chat(ctx context.Context, messages []interfaces.Message) (string, error)
}

// Researcher produces the research artifact for an item
type Researcher interface {
	Research(ctx context.Context, item *models.QueueItem) (*models.ResearchArtifact, error)
}

// Stages bundles the services the stage executors call. Stages persist
// nothing themselves except Publish; committed artifacts are written by the
// orchestrator through PipelineStorage.
type Stages struct {
	config    *common.Config
	providers Generator
	grok      StyleTransformer
	research  Researcher
	storage   interfaces.StorageManager
	logger    arbor.ILogger
}

// NewStages creates the stage executor set
func NewStages(
	config *common.Config,
	providers Generator,
	grok StyleTransformer,
	researcher Researcher,
	storage interfaces.StorageManager,
	logger arbor.ILogger,
) *Stages {
	return &Stages{
		config:    config,
		providers: providers,
		grok:      grok,
		research:  researcher,
		storage:   storage,
		logger:    logger,
	}
}

// generate sends a single-turn prompt through the provider factory. An empty
// model falls back to the configured default drafting model.
func (s *Stages) generate(ctx context.Context, prompt, model string, maxTokens int) (*llm.ContentResponse, error) {
	if model == "" {
		model = s.config.Claude.Model
	}
	return s.providers.GenerateContent(ctx, &llm.ContentRequest{
		Messages:  []interfaces.Message{{Role: "user", Content: prompt}},
		Model:     model,
		MaxTokens: maxTokens,
	})
}
