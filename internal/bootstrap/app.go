package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"medrecord-backend/internal/analyses"
	googleauth "medrecord-backend/internal/auth"
	"medrecord-backend/internal/batches"
	"medrecord-backend/internal/llm"
	"medrecord-backend/internal/llm/openrouter"
	"medrecord-backend/internal/queue"
	"medrecord-backend/internal/records"
	"medrecord-backend/internal/reports"
	"medrecord-backend/internal/shared/config"
	"medrecord-backend/internal/shared/server"
	"medrecord-backend/internal/shared/storage/db"
	"medrecord-backend/internal/shared/storage/object"
	localstore "medrecord-backend/internal/shared/storage/object/local"
	s3store "medrecord-backend/internal/shared/storage/object/s3"
	"medrecord-backend/internal/whodata"
)

// App holds the wired application dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Queue  queue.Client

	RecordsRepo  records.Repo
	AnalysesRepo analyses.Repo
	BatchStore   batches.Store
	ReportsRepo  reports.Repo
	WHORepo      whodata.Repo

	AnalysesService *analyses.Service
	BatchService    *batches.Service
	ReportService   *reports.Service
	WHOService      *whodata.Service

	AnalysisHandler *analyses.Handler
	BatchHandler    *batches.Handler
	ReportHandler   *reports.Handler
	WHODataHandler  *whodata.Handler
	GoogleAuth      *googleauth.GoogleService
}

// Build prepares the full dependency graph and router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	batchStore, err := buildBatchStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		return nil, err
	}
	llmClient, err := buildLLM(cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:     cfg,
		DB:         sqlDB,
		Store:      store,
		Queue:      queueClient,
		BatchStore: batchStore,
	}
	buildServices(app, llmClient)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		AnalysisHandler: app.AnalysisHandler,
		BatchHandler:    app.BatchHandler,
		ReportHandler:   app.ReportHandler,
		WHODataHandler:  app.WHODataHandler,
		GoogleAuth:      app.GoogleAuth,
	})
	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildBatchStore(ctx context.Context, cfg config.Config) (batches.Store, error) {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return batches.NewMemoryStore(), nil
	}
	store, err := batches.NewRedisStoreFromURL(ctx, cfg.RedisURL)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: redis connect failed; using in-memory batch store: %v", err)
			return batches.NewMemoryStore(), nil
		}
		return nil, err
	}
	return store, nil
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.QueueURL) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx)
}

func buildLLM(cfg config.Config) (llm.Client, error) {
	if cfg.LLMProvider != "openrouter" {
		return llm.PlaceholderClient{}, nil
	}
	apiKey := openrouter.APIKeyFromEnv()
	if apiKey == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: no OpenRouter API key; LLM calls will fail until configured")
			return llm.PlaceholderClient{}, nil
		}
		return nil, fmt.Errorf("OPENROUTER_API_KEY is required")
	}
	return openrouter.NewClient(apiKey, cfg.LLMModel)
}

func buildServices(app *App, llmClient llm.Client) {
	if app.DB != nil {
		app.RecordsRepo = &records.PGRepo{DB: app.DB}
		app.AnalysesRepo = &analyses.PGRepo{DB: app.DB}
		app.WHORepo = &whodata.PGRepo{DB: app.DB}
	} else {
		app.RecordsRepo = records.NewMemoryRepo()
		app.AnalysesRepo = analyses.NewMemoryRepo()
		app.WHORepo = whodata.NewMemoryRepo()
	}
	app.ReportsRepo = reports.NewMemoryRepo()

	analyzer := analyses.NewAnalyzer(llmClient)
	app.AnalysesService = &analyses.Service{
		Records:  app.RecordsRepo,
		Repo:     app.AnalysesRepo,
		Analyzer: analyzer,
	}

	orch := &batches.Orchestrator{
		Store:      app.BatchStore,
		Analyzer:   analyzer,
		ChunkSize:  app.Config.BatchChunkSize,
		ChunkDelay: app.Config.BatchChunkDelay,
	}
	app.BatchService = &batches.Service{
		Store:   app.BatchStore,
		Orch:    orch,
		Objects: app.Store,
		Queue:   app.Queue,
	}

	app.ReportService = reports.NewService(app.AnalysesRepo, app.ReportsRepo, llmClient)
	app.WHOService = whodata.NewService(app.WHORepo)

	app.AnalysisHandler = analyses.NewHandler(app.AnalysesService)
	app.BatchHandler = batches.NewHandler(app.BatchService)
	app.ReportHandler = reports.NewHandler(app.ReportService)
	app.WHODataHandler = whodata.NewHandler(app.WHOService)
	app.GoogleAuth = googleauth.NewGoogleService(googleauth.GoogleConfig{
		ClientID:     app.Config.GoogleClientID,
		ClientSecret: app.Config.GoogleClientSecret,
		RedirectURL:  app.Config.GoogleRedirectURL,
		UIRedirect:   app.Config.UIRedirectURL,
	})
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
