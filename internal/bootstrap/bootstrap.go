package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/kellemar/text-analyzer/internal/config"
	"github.com/kellemar/text-analyzer/internal/core/ports"
	"github.com/kellemar/text-analyzer/internal/core/usecase"
	"github.com/kellemar/text-analyzer/internal/export"
	"github.com/kellemar/text-analyzer/internal/infrastructure/extractor/docfmt"
	"github.com/kellemar/text-analyzer/internal/infrastructure/llm/openai"
	"github.com/kellemar/text-analyzer/internal/infrastructure/repository/postgres"
	"github.com/kellemar/text-analyzer/internal/infrastructure/resilience"
	"github.com/kellemar/text-analyzer/internal/infrastructure/sink"
	"github.com/kellemar/text-analyzer/internal/infrastructure/storage/localfs"
	"github.com/kellemar/text-analyzer/internal/observability/metrics"
)

const serviceName = "text-analyzer"

type App struct {
	Config  config.Config
	Metrics *metrics.HTTPServerMetrics

	AnalyzeUC ports.ArticleAnalysisService
	AuthUC    ports.AuthService
	Export    *export.Service
	Migrate   func(ctx context.Context) error

	db      *sql.DB
	logSink *sink.ArticleSink
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	users := postgres.NewUserRepository(db)
	sessions := postgres.NewSessionRepository(db)
	articles := postgres.NewArticleLogRepository(db)

	storage, err := localfs.New(cfg.StorageBucketPath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	m := metrics.NewHTTPServerMetrics(serviceName)

	executor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts: cfg.RetryMaxAttempts,
	})
	provider, err := openai.New(openai.Options{
		APIKey:   cfg.OpenAIAPIKey,
		BaseURL:  cfg.OpenAIBaseURL,
		Model:    cfg.OpenAIModel,
		Timeout:  cfg.ProviderTimeout,
		Executor: executor,
		Record: func(model string, promptTokens, completionTokens int) {
			m.RecordTokenUsage(serviceName, model, promptTokens, completionTokens)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("init analysis provider: %w", err)
	}

	logSink := sink.New(articles, cfg.SinkQueueDepth, logger, func() {
		m.RecordSinkDrop(serviceName)
	})

	extractor := docfmt.New(cfg.MaxUploadBytes)

	analyzeUC := usecase.NewAnalyzeArticleUseCase(extractor, provider, storage, logSink, cfg.MaxUploadBytes, logger)
	authUC := usecase.NewAuthUseCase(users, sessions, cfg.SessionTTL)
	exportSvc := export.NewService(articles, logger)

	return &App{
		Config:  cfg,
		Metrics: m,

		AnalyzeUC: analyzeUC,
		AuthUC:    authUC,
		Export:    exportSvc,
		Migrate: func(ctx context.Context) error {
			return postgres.MigrateOptionalColumns(ctx, db)
		},

		db:      db,
		logSink: logSink,
	}, nil
}

// Close drains the article sink, then releases the database pool.
func (a *App) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	_ = a.logSink.Close(ctx)
	_ = a.db.Close()
}
