package app

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/scribo/internal/common"
	"github.com/ternarybob/scribo/internal/interfaces"
	"github.com/ternarybob/scribo/internal/pipeline"
	"github.com/ternarybob/scribo/internal/services/events"
	"github.com/ternarybob/scribo/internal/services/llm"
	"github.com/ternarybob/scribo/internal/services/research"
	"github.com/ternarybob/scribo/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager
	EventService   interfaces.EventService
	Providers      *llm.ProviderFactory
	Grok           *llm.GrokClient
	Research       *research.Service
	Orchestrator   *pipeline.Orchestrator
}

// New wires the application service graph
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	storageManager, err := badger.NewManager(logger, &config.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	eventService := events.NewService(logger)
	if err := events.SubscribeLoggerToAllEvents(eventService, logger); err != nil {
		return nil, fmt.Errorf("failed to subscribe event logger: %w", err)
	}

	providers := llm.NewProviderFactory(&config.Gemini, &config.Claude, &config.LLM, logger)
	grok := llm.NewGrokClient(&config.Grok, logger)
	researchSvc := research.NewService(&config.Research, &config.Gemini, providers, logger)

	stages := pipeline.NewStages(config, providers, grok, researchSvc, storageManager, logger)
	orchestrator := pipeline.NewOrchestrator(config, storageManager, stages, eventService, logger)

	return &App{
		Config:         config,
		Logger:         logger,
		StorageManager: storageManager,
		EventService:   eventService,
		Providers:      providers,
		Grok:           grok,
		Research:       researchSvc,
		Orchestrator:   orchestrator,
	}, nil
}

// Close releases application resources
func (a *App) Close() error {
	if err := a.Providers.Close(); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to close provider clients")
	}
	if err := a.EventService.Close(); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to close event service")
	}
	return a.StorageManager.Close()
}
