package bootstrap

import (
	"context"
	"fmt"

	"github.com/yithril/docpipeline/internal/config"
	"github.com/yithril/docpipeline/internal/core/ports"
	"github.com/yithril/docpipeline/internal/core/usecase"
	"github.com/yithril/docpipeline/internal/infrastructure/extractor"
	"github.com/yithril/docpipeline/internal/infrastructure/inference"
	"github.com/yithril/docpipeline/internal/infrastructure/queue/nats"
	"github.com/yithril/docpipeline/internal/infrastructure/repository/postgres"
	"github.com/yithril/docpipeline/internal/infrastructure/resilience"
	"github.com/yithril/docpipeline/internal/infrastructure/storage"
	"github.com/yithril/docpipeline/internal/infrastructure/storage/gcs"
	"github.com/yithril/docpipeline/internal/infrastructure/storage/localfs"
	"github.com/yithril/docpipeline/internal/infrastructure/summarizer"
)

type App struct {
	Config config.Config

	Queue    ports.TaskQueue
	Repo     ports.DocumentRepository
	Store    ports.StagedObjectStore
	IngestUC ports.DocumentIngestor
	ReviewUC ports.ReviewDecider
	Pipeline *usecase.Orchestrator

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	store, err := newStagedStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}
	if err := store.EnsureAllStages(ctx); err != nil {
		return nil, fmt.Errorf("ensure storage stages: %w", err)
	}

	queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		return nil, fmt.Errorf("init task queue: %w", err)
	}

	backend := inference.New(inference.Config{
		BaseURL:       cfg.InferenceURL,
		ClassifyModel: cfg.ClassifyModel,
		MaxConcurrent: int64(cfg.InferenceMaxConcurrent),
	}, resilience.NewExecutor(resilience.DefaultConfig()))

	classifier := usecase.NewClassificationEngine(backend, cfg.CondenseModel, 0)
	summaries, err := summarizer.NewRegistry(backend)
	if err != nil {
		return nil, fmt.Errorf("init summarization strategies: %w", err)
	}
	textExtractor := extractor.NewService()

	pipeline := usecase.NewOrchestrator(repo, store, textExtractor, classifier, summaries, usecase.OrchestratorConfig{
		AllowedContentTypes: cfg.AllowedContentTypes,
		MaxPhaseRetries:     cfg.MaxPhaseRetries,
		Timeouts: usecase.Timeouts{
			Status:         cfg.StatusTimeout,
			Extraction:     cfg.ExtractionTimeout,
			Classification: cfg.ClassificationTimeout,
			Summarization:  cfg.SummarizationTimeout,
			Copy:           cfg.CopyTimeout,
		},
	})

	ingestUC := usecase.NewIngestDocumentUseCase(repo, store, queue, cfg.AllowedContentTypes)
	reviewUC := usecase.NewReviewUseCase(repo, store)

	return &App{
		Config: cfg,

		Queue:    queue,
		Repo:     repo,
		Store:    store,
		IngestUC: ingestUC,
		ReviewUC: reviewUC,
		Pipeline: pipeline,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func newStagedStore(ctx context.Context, cfg config.Config) (*storage.StagedStore, error) {
	switch cfg.StorageProvider {
	case "gcs":
		backend, err := gcs.New(ctx, cfg.GCSProjectID, cfg.GCSBucketPrefix)
		if err != nil {
			return nil, err
		}
		return storage.NewStagedStore(backend), nil
	case "localfs", "":
		backend, err := localfs.New(cfg.StoragePath)
		if err != nil {
			return nil, err
		}
		return storage.NewStagedStore(backend), nil
	default:
		return nil, fmt.Errorf("unknown storage provider: %s", cfg.StorageProvider)
	}
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
