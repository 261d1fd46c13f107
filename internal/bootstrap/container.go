package bootstrap

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"orquix-backend/internal/config"
	"orquix-backend/internal/controller"
	"orquix-backend/internal/pkg/logger"
	"orquix-backend/internal/repository/memory"
	"orquix-backend/internal/repository/unitofwork"
	"orquix-backend/internal/service"
	"orquix-backend/pkg/contextbuilder"
	"orquix-backend/pkg/embedding"
	"orquix-backend/pkg/followup"
	"orquix-backend/pkg/llm"
	llmanthropic "orquix-backend/pkg/llm/anthropic"
	llmollama "orquix-backend/pkg/llm/ollama"
	llmopenai "orquix-backend/pkg/llm/openai"
	"orquix-backend/pkg/llm/registry"
	"orquix-backend/pkg/moderator"
	"orquix-backend/pkg/orchestrator"
	"orquix-backend/pkg/preanalyst"
	"orquix-backend/pkg/prompt"

	pktNats "orquix-backend/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	HealthController        controller.IHealthController
	ProjectController       controller.IProjectController
	ContextController       controller.IContextController
	OrchestrationController controller.IOrchestrationController
	ChatController          controller.IChatController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// 3. AI Components
	// Embedding Provider based on Config, wrapped with retry and a Redis
	// cache so repeated text never hits the upstream twice.
	var embeddingProvider embedding.Provider
	if cfg.Embedding.Provider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Embedding.Model,
			cfg.Embedding.Dimension,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Embedding.Model)
	} else {
		embeddingProvider = embedding.NewOpenAIProvider(
			cfg.Keys.OpenAI,
			cfg.Embedding.Model,
			cfg.Embedding.Dimension,
		)
		log.Printf("[INFO] Using Embedding Provider: OPENAI (%s)", cfg.Embedding.Model)
	}
	embeddingProvider = embedding.NewRetrying(embeddingProvider, cfg.Embedding.MaxRetries, cfg.Embedding.RetryDelay)
	embeddingProvider = embedding.NewCached(embeddingProvider, rdb)

	// Provider registry for the fan-out. Every adapter carries the shared
	// timeout and retry policy.
	reg := registry.New()
	for _, name := range cfg.Ai.Providers {
		adapter, err := newAdapter(name, "", cfg)
		if err != nil {
			log.Printf("[WARN] Skipping provider %q: %v", name, err)
			continue
		}
		adapter = llm.WithPolicy(adapter, cfg.Ai.Timeout, cfg.Ai.MaxRetries)
		if err := reg.Register(adapter); err != nil {
			log.Printf("[WARN] Failed to register provider %q: %v", name, err)
		}
	}
	if reg.Len() == 0 {
		log.Fatalf("[FATAL] No AI providers configured (AI_PROVIDERS=%v)", cfg.Ai.Providers)
	}
	log.Printf("[INFO] Registered AI Providers: %v", cfg.Ai.Providers)

	// Resolver adapter for internal reasoning steps (pre-analysis, context
	// classification, moderation). Uses the moderator provider and model.
	resolverAdapter, err := newAdapter(cfg.Ai.ModeratorProvider, cfg.Ai.ModeratorModel, cfg)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize moderator provider: %v", err)
	}
	resolverAdapter = llm.WithPolicy(resolverAdapter, cfg.Ai.Timeout, cfg.Ai.MaxRetries)
	log.Printf("[INFO] Using Moderator Provider: %s (%s)", cfg.Ai.ModeratorProvider, cfg.Ai.ModeratorModel)

	aiLogger := initAILogger()

	analyst := preanalyst.New(resolverAdapter, aiLogger)
	classifier := contextbuilder.NewClassifier(resolverAdapter, aiLogger)
	extractor := contextbuilder.NewExtractor(resolverAdapter, aiLogger)
	interpreter := followup.New(embeddingProvider, followup.DefaultSimilarityThreshold, aiLogger)
	packager := prompt.NewPackager(cfg.Context.MaxContextTokens, cfg.Context.TokenBuffer, cfg.Context.Separator)
	fanOut := orchestrator.NewFanOut(cfg.Ai.Timeout, aiLogger)
	mod := moderator.New(resolverAdapter, aiLogger)

	// In-memory stores
	clarificationRepo := memory.NewClarificationRepository()

	// 4. Services
	publisherService := service.NewPublisherService(cfg.Keys.EmbedChunkTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.EmbedChunkTopic,
		uowFactory,
		embeddingProvider,
	)

	recorder := service.NewInteractionRecorder(uowFactory, sysLogger)

	orchestrationService := service.NewOrchestrationService(
		uowFactory,
		analyst,
		clarificationRepo,
		interpreter,
		embeddingProvider,
		packager,
		reg,
		fanOut,
		mod,
		recorder,
		natsPub,
		service.GenerationParams{
			Temperature: cfg.Ai.Temperature,
			MaxTokens:   cfg.Ai.MaxTokens,
		},
		sysLogger,
	)

	contextService := service.NewContextService(uowFactory, classifier, extractor, sysLogger)
	projectService := service.NewProjectService(uowFactory, sysLogger)
	ingestionService := service.NewIngestionService(
		uowFactory,
		publisherService,
		cfg.Context.ChunkSize,
		cfg.Context.ChunkOverlap,
		sysLogger,
	)
	chatService := service.NewChatService(uowFactory, sysLogger)

	// 5. Controllers
	return &Container{
		HealthController:        controller.NewHealthController(db, reg),
		ProjectController:       controller.NewProjectController(projectService, ingestionService),
		ContextController:       controller.NewContextController(contextService),
		OrchestrationController: controller.NewOrchestrationController(orchestrationService),
		ChatController:          controller.NewChatController(chatService),

		ConsumerService: consumerService,
	}
}

func newAdapter(name, model string, cfg *config.Config) (llm.Adapter, error) {
	switch name {
	case "openai":
		return llmopenai.NewOpenAIProvider(cfg.Keys.OpenAI, model), nil
	case "anthropic":
		return llmanthropic.NewAnthropicProvider(cfg.Keys.Anthropic, model), nil
	case "ollama":
		if model == "" {
			model = cfg.Ai.OllamaModel
		}
		return llmollama.NewOllamaProvider(cfg.Ai.OllamaBaseURL, model), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
}

func initAILogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "ai_pipeline.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[AI] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}
