package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"legallens-backend/internal/admin"
	"legallens-backend/internal/analyses"
	"legallens-backend/internal/documents"
	"legallens-backend/internal/kbsync"
	"legallens-backend/internal/knowledge"
	"legallens-backend/internal/lookups"
	"legallens-backend/internal/queue"
	"legallens-backend/internal/risks"
	"legallens-backend/internal/services/health"
	"legallens-backend/internal/shared/config"
	"legallens-backend/internal/shared/server"
	"legallens-backend/internal/shared/server/middleware"
	"legallens-backend/internal/shared/storage/db"
	"legallens-backend/internal/shared/storage/object"
	localstore "legallens-backend/internal/shared/storage/object/local"
	s3store "legallens-backend/internal/shared/storage/object/s3"
	"legallens-backend/internal/shared/telemetry"
)

const initialLoadTimeout = 30 * time.Second

// App holds shared dependencies.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	Store            object.ObjectStore
	Queue            queue.Client
	Knowledge        *knowledge.Holder
	KnowledgeStore   *knowledge.PGStore
	LookupsRepo      lookups.Repo
	LookupsService   *lookups.Service
	AnalysesService  *analyses.Service
	DocumentsService *documents.Service
	AdminService     *admin.Service
	HealthService    *health.Service
	Poller           *kbsync.Poller
}

// Build prepares shared dependencies and the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	telemetry.SetLevel(cfg.LogLevel)
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := BuildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := BuildQueue(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Queue:  queueClient,
	}
	if sqlDB != nil {
		app.KnowledgeStore = &knowledge.PGStore{DB: sqlDB}
	}

	source, err := knowledge.NewSource(cfg.KnowledgeSource, cfg.KnowledgePath, store, app.KnowledgeStore)
	if err != nil {
		return nil, err
	}
	app.Knowledge = knowledge.NewHolder(source)
	loadKnowledge(ctx, app.Knowledge)

	if err := buildServices(ctx, app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:           app.Config,
		HealthHandler:    health.NewHandler(app.HealthService),
		AnalysisHandler:  analyses.NewHandler(app.AnalysesService),
		DocumentsHandler: documents.NewHandler(app.DocumentsService),
		LookupsHandler:   lookups.NewHandler(app.LookupsService),
		AdminHandler:     admin.NewHandler(app.AdminService, cfg.AdminToken),
		RateLimiter:      middleware.NewRateLimiter(nil),
	})

	return app, nil
}

// loadKnowledge performs the startup load. A failure leaves the empty base in
// place so the service still answers.
func loadKnowledge(ctx context.Context, holder *knowledge.Holder) {
	ctx, cancel := context.WithTimeout(ctx, initialLoadTimeout)
	defer cancel()
	base, err := holder.Reload(ctx)
	if err != nil {
		telemetry.Warn("bootstrap.knowledge_load_failed", map[string]any{
			"source": holder.SourceName(),
			"error":  err.Error(),
		})
		return
	}
	telemetry.Info("bootstrap.knowledge_loaded", map[string]any{
		"source":        holder.SourceName(),
		"explanations":  base.Len(),
		"risk_keywords": base.KeywordCount(),
		"version":       base.Version(),
	})
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) || cfg.KnowledgeSource != "postgres" {
			telemetry.Info("bootstrap: DATABASE_URL empty; using in-memory repositories", nil)
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	profile := db.ProfileForRuntime()
	connect := db.Connect
	if profile == db.ProfileLambda {
		connect = db.Shared
	}
	sqlDB, err := connect(ctx, cfg.DatabaseURL, db.OptionsFor(profile))
	if err != nil {
		if isDevLike(cfg.Env) && cfg.KnowledgeSource != "postgres" {
			telemetry.Warn("bootstrap: database connect failed; using in-memory repositories", map[string]any{"error": err.Error()})
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

// BuildStore returns the object store selected by OBJECT_STORE.
func BuildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		store, err := s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

// BuildQueue returns the reload notification client, or nil without RA_SQS_QUEUE_URL.
func BuildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if cfg.ReloadQueueURL == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx, cfg.AWSRegion, cfg.ReloadQueueURL)
}

func buildServices(ctx context.Context, app *App) error {
	if app.DB != nil {
		app.LookupsRepo = &lookups.PGRepo{DB: app.DB}
	} else {
		app.LookupsRepo = lookups.NewMemoryRepo()
	}
	app.LookupsService = lookups.NewService(app.LookupsRepo)

	app.AnalysesService = &analyses.Service{
		KB:       app.Knowledge,
		Analyzer: risks.New(risks.SeverityTableFromConfig(app.Config.HighSeverityKeywords)),
		Lookups:  app.LookupsService,
	}
	app.DocumentsService = documents.NewService(app.AnalysesService)
	var pinger health.Pinger
	if app.DB != nil {
		pinger = app.DB
	}
	app.HealthService = health.NewService(app.Knowledge, pinger)

	publishKey := ""
	if app.Config.KnowledgeSource == "object" || app.Config.KnowledgeSource == "embedded" {
		publishKey = app.Config.KnowledgePath
	}
	app.AdminService = admin.NewService(app.Knowledge, app.Store, publishKey, app.Queue)

	if app.Config.ReloadQueueURL != "" && !db.IsLambdaRuntime() {
		api, err := queue.NewSQSAPI(ctx, app.Config.AWSRegion)
		if err != nil {
			return err
		}
		app.Poller = kbsync.New(api, app.Config.ReloadQueueURL, app.Knowledge)
	}
	return nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
