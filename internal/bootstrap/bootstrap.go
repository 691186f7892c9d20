package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dsuniblu/internal-docs-assistant/internal/config"
	"github.com/dsuniblu/internal-docs-assistant/internal/core/domain"
	"github.com/dsuniblu/internal-docs-assistant/internal/core/ports"
	"github.com/dsuniblu/internal-docs-assistant/internal/core/usecase"
	natsevents "github.com/dsuniblu/internal-docs-assistant/internal/infrastructure/events/nats"
	"github.com/dsuniblu/internal-docs-assistant/internal/infrastructure/llm/ollama"
	"github.com/dsuniblu/internal-docs-assistant/internal/infrastructure/rerank"
	"github.com/dsuniblu/internal-docs-assistant/internal/infrastructure/resilience"
	"github.com/dsuniblu/internal-docs-assistant/internal/infrastructure/session"
	"github.com/dsuniblu/internal-docs-assistant/internal/infrastructure/vector/pinecone"
	"github.com/dsuniblu/internal-docs-assistant/internal/observability/metrics"
)

type App struct {
	Config  config.Config
	Metrics *metrics.AssistantMetrics

	ChatUC   ports.ChatService
	Searcher ports.DocumentSearcher

	closeFn func()
}

func New(_ context.Context, cfg config.Config) (*App, error) {
	executor := resilience.NewExecutor(resilience.DefaultConfig())
	assistantMetrics := metrics.New("internal-docs-assistant")

	ollamaClient := ollama.New(
		cfg.OllamaURL,
		cfg.GenerationModel,
		cfg.EmbeddingModel,
		time.Duration(cfg.GenerateTimeoutSeconds)*time.Second,
		executor,
	)
	embedder := ollama.NewEmbedder(ollamaClient)
	generator := ollama.NewGenerator(ollamaClient)
	classifier := ollama.NewClassifier(ollamaClient)
	variants := ollama.NewVariantGenerator(ollamaClient)

	var index ports.VectorIndex
	if cfg.MockMode() {
		slog.Warn("pinecone credential absent, using built-in mock index")
		index = pinecone.NewMockIndex()
	} else {
		index = pinecone.New(cfg.PineconeIndexHost, cfg.PineconeAPIKey, embedder)
	}

	crossEncoders := rerank.NewLazy(func(ctx context.Context) (ports.CrossEncoderScorer, error) {
		client, err := rerank.New(
			cfg.CrossEncoderURL,
			cfg.CrossEncoderModel,
			time.Duration(cfg.RerankTimeoutSeconds)*time.Second,
		)
		if err != nil {
			return nil, err
		}
		if err := client.Probe(ctx); err != nil {
			return nil, fmt.Errorf("cross encoder probe: %w", err)
		}
		return client, nil
	})

	defaultMethod, ok := domain.ParseRerankMethod(cfg.RerankMethod)
	if !ok {
		defaultMethod = domain.RerankNone
	}
	pipeline := usecase.NewRetrievalPipeline(
		index,
		embedder,
		crossEncoders,
		usecase.NewQueryExpander(variants),
		usecase.RetrievalPipelineConfig{
			Defaults: domain.RetrievalDefaults{
				K:            cfg.RetrievalK,
				Namespace:    cfg.PineconeNamespace,
				RerankMethod: defaultMethod,
				RerankTopK:   cfg.RerankTopK,
			},
			RerankBatchSize:    cfg.RerankBatchSize,
			RelevanceThreshold: cfg.RelevanceThreshold,
			QueryTimeout:       time.Duration(cfg.IndexTimeoutSeconds) * time.Second,
			Metrics:            assistantMetrics,
		},
	)

	sessions := session.NewStore(
		time.Duration(cfg.SessionTTLSeconds)*time.Second,
		cfg.SessionMaxTurns,
	)

	var events ports.TurnEventPublisher
	var closeEvents func()
	if cfg.NATSURL != "" {
		publisher, err := natsevents.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, natsevents.Options{
			ResilienceExecutor: executor,
		})
		if err != nil {
			return nil, fmt.Errorf("init turn event publisher: %w", err)
		}
		events = publisher
		closeEvents = publisher.Close
	}

	chatUC := usecase.NewChatUseCase(
		classifier,
		usecase.NewKeywordClassifier(),
		pipeline,
		generator,
		sessions,
		events,
		usecase.ChatConfig{},
	)

	return &App{
		Config:   cfg,
		Metrics:  assistantMetrics,
		ChatUC:   chatUC,
		Searcher: pipeline,

		closeFn: func() {
			if closeEvents != nil {
				closeEvents()
			}
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
