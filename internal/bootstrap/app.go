package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"calorievision-backend/internal/analysis"
	"calorievision-backend/internal/catalog"
	"calorievision-backend/internal/services/health"
	"calorievision-backend/internal/sessions"
	"calorievision-backend/internal/shared/config"
	"calorievision-backend/internal/shared/server"
	"calorievision-backend/internal/shared/storage/db"
	"calorievision-backend/internal/shared/storage/object"
	localstore "calorievision-backend/internal/shared/storage/object/local"
	s3store "calorievision-backend/internal/shared/storage/object/s3"
	"calorievision-backend/internal/shared/telemetry"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	DB              *sql.DB
	Store           object.ObjectStore
	Catalog         *catalog.Catalog
	Analyzer        *analysis.Analyzer
	SessionsRepo    sessions.Repo
	SessionsService *sessions.Service
	SessionsHandler *sessions.Handler
	CatalogHandler  *catalog.Handler
	Health          *health.Service
}

// Build prepares every dependency and the router. A missing or unreachable
// catalog database never fails the build: the compiled-in catalog is used.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB := buildDB(ctx, cfg)
	var src catalog.Source
	if sqlDB != nil {
		src = &catalog.SQLSource{DB: sqlDB}
	}
	cat := catalog.Load(ctx, src)

	analyzer := analysis.NewAnalyzer(cat, analysis.NewRand(cfg.RandomSeed), cfg.ComplexityThreshold, cfg.AnalysisDelay)

	app := &App{
		Config:       cfg,
		DB:           sqlDB,
		Store:        store,
		Catalog:      cat,
		Analyzer:     analyzer,
		SessionsRepo: sessions.NewMemoryRepo(),
	}
	app.SessionsService = &sessions.Service{
		Repo:          app.SessionsRepo,
		Store:         store,
		Analyzer:      analyzer,
		MaxImageBytes: cfg.MaxImageBytes,
	}
	app.SessionsHandler = sessions.NewHandler(app.SessionsService)
	app.CatalogHandler = catalog.NewHandler(cat)
	app.Health = health.NewService(sqlDB, cat)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:         cfg,
		Health:         app.Health,
		CatalogHandler: app.CatalogHandler,
		SessionHandler: app.SessionsHandler,
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":            cfg.Env,
		"object_store":   cfg.ObjectStoreType,
		"catalog_source": cat.Source(),
		"catalog_size":   cat.Len(),
		"analysis_delay": cfg.AnalysisDelay.String(),
		"seeded":         cfg.RandomSeed != 0,
	})
	return app, nil
}

// StartJanitor expires idle sessions in the background until ctx is done.
func (a *App) StartJanitor(ctx context.Context) {
	go a.SessionsService.RunJanitor(ctx, a.Config.SessionTTL, a.Config.SessionTTL/2)
}

// Close waits for running analyses and releases the catalog database.
func (a *App) Close() error {
	a.SessionsService.Wait()
	if a.DB != nil && !db.IsLambdaRuntime() {
		return a.DB.Close()
	}
	return nil
}

func buildDB(ctx context.Context, cfg config.Config) *sql.DB {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		telemetry.Info("bootstrap.catalog_db", map[string]any{"status": "disabled"})
		return nil
	}
	target, err := db.Resolve(cfg.DatabaseURL)
	if err != nil {
		telemetry.Error("bootstrap.catalog_db", map[string]any{"status": "invalid_url", "err": err})
		return nil
	}

	var sqlDB *sql.DB
	if db.IsLambdaRuntime() {
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultLambdaOptions()))
	} else {
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	}
	if err != nil {
		telemetry.Error("bootstrap.catalog_db", map[string]any{"status": "connect_failed", "driver": target.Driver, "err": err})
		return nil
	}

	if isDevLike(cfg.Env) {
		if err := db.RunMigrations(ctx, sqlDB, target.Dialect); err != nil {
			telemetry.Error("bootstrap.catalog_db", map[string]any{"status": "migrate_failed", "driver": target.Driver, "err": err})
		}
	}
	return sqlDB
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, errors.New("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local", "test":
		return true
	default:
		return false
	}
}
