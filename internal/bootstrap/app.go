package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"glucowizard-backend/internal/identity"
	"glucowizard-backend/internal/inference"
	"glucowizard-backend/internal/inference/openai"
	"glucowizard-backend/internal/policies"
	"glucowizard-backend/internal/queue"
	"glucowizard-backend/internal/reports"
	"glucowizard-backend/internal/services/health"
	"glucowizard-backend/internal/shared/config"
	"glucowizard-backend/internal/shared/server"
	"glucowizard-backend/internal/shared/server/middleware"
	"glucowizard-backend/internal/shared/storage/db"
	"glucowizard-backend/internal/shared/storage/object"
	localstore "glucowizard-backend/internal/shared/storage/object/local"
	s3store "glucowizard-backend/internal/shared/storage/object/s3"
	supabasestore "glucowizard-backend/internal/shared/storage/object/supabase"
	"glucowizard-backend/internal/shared/telemetry"
	"glucowizard-backend/internal/users"
)

// App holds shared dependencies and the assembled router.
type App struct {
	Config         config.Config
	Router         *gin.Engine
	DB             *sql.DB
	Store          object.ObjectStore
	Queue          queue.Client
	Verifier       identity.Verifier
	Inference      inference.Client
	ReportsRepo    reports.Repo
	UsersRepo      users.Repo
	PoliciesRepo   policies.Repo
	ReportsService *reports.Service
	UsersService   *users.Service
	PolicyService  *policies.Service
}

// Deps overrides external collaborators, mainly for tests. Nil fields are
// built from the config.
type Deps struct {
	Verifier  identity.Verifier
	Inference inference.Client
	Store     object.ObjectStore
	Queue     queue.Client
}

// Build prepares dependencies from cfg and wires the router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	return BuildWith(ctx, cfg, Deps{})
}

// BuildWith is Build with some collaborators supplied by the caller.
func BuildWith(ctx context.Context, cfg config.Config, deps Deps) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, DB: sqlDB}

	var files *localstore.Handler
	app.Store = deps.Store
	if app.Store == nil {
		store, handler, err := buildStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		app.Store = store
		files = handler
	}

	app.Queue = deps.Queue
	if app.Queue == nil {
		if app.Queue, err = buildQueue(ctx, cfg); err != nil {
			return nil, err
		}
	}

	app.Verifier = deps.Verifier
	if app.Verifier == nil {
		if app.Verifier, err = buildVerifier(cfg); err != nil {
			return nil, err
		}
	}

	app.Inference = deps.Inference
	if app.Inference == nil {
		if app.Inference, err = buildInference(ctx, cfg); err != nil {
			return nil, err
		}
	}

	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:        cfg,
		Resolver:      identity.Resolver{Verifier: app.Verifier, Users: app.UsersService},
		Health:        health.NewService(app.DB),
		ReportHandler: reports.NewHandler(app.ReportsService),
		UserHandler:   users.NewHandler(app.UsersService),
		FilesHandler:  files,
		RateLimiter:   middleware.NewRateLimiter(nil),
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDev() {
			telemetry.Warn("bootstrap.database_memory", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err == nil {
		err = db.RunMigrations(ctx, sqlDB)
		if err != nil {
			_ = sqlDB.Close()
		}
	}
	if err != nil {
		if cfg.IsDev() {
			telemetry.Warn("bootstrap.database_memory", map[string]any{"reason": "connect failed", "err": err})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, *localstore.Handler, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		store, err := s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
		return store, nil, err
	case "supabase":
		store, err := supabasestore.New(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseBucket, 0)
		return store, nil, err
	default:
		secret := cfg.FileURLSecret
		if secret == "" {
			if !cfg.IsDev() {
				return nil, nil, fmt.Errorf("OBJECT_STORE=local requires FILE_URL_SECRET outside dev")
			}
			// Links stop verifying after a restart.
			secret = uuid.NewString()
			telemetry.Warn("bootstrap.file_url_secret_ephemeral", nil)
		}
		store, err := localstore.New(cfg.LocalStoreDir, cfg.PublicBaseURL, secret)
		if err != nil {
			return nil, nil, err
		}
		return store, &localstore.Handler{Store: store}, nil
	}
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.ReportsQueueURL) == "" {
		return queue.Nop{}, nil
	}
	return queue.NewSQSClient(ctx, cfg.AWSRegion, cfg.ReportsQueueURL)
}

func buildVerifier(cfg config.Config) (identity.Verifier, error) {
	if cfg.SupabaseJWTSecret != "" {
		return identity.NewJWTVerifier(cfg.SupabaseJWTSecret, "authenticated")
	}
	if cfg.SupabaseURL != "" {
		return identity.NewSupabaseVerifier(cfg.SupabaseURL, cfg.SupabaseKey, 0)
	}
	if cfg.IsDev() {
		telemetry.Warn("bootstrap.identity_unconfigured", map[string]any{"effect": "all requests are rejected"})
		return rejectAll{}, nil
	}
	return nil, errors.New("SUPABASE_JWT_SECRET or SUPABASE_URL is required")
}

func buildInference(ctx context.Context, cfg config.Config) (inference.Client, error) {
	if cfg.OpenAIAPIKey == "" {
		if cfg.IsDev() {
			telemetry.Warn("bootstrap.inference_unconfigured", map[string]any{"effect": "reports end in status error"})
			return nil, nil
		}
		return nil, errors.New("OPENAI_API_KEY is required")
	}
	return openai.NewClient(ctx, openai.Options{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.LLMModel,
		BaseURL: cfg.OpenAIBaseURL,
		Mode:    cfg.OpenAIAPIMode,
		Timeout: cfg.OpenAITimeout,
	})
}

func buildServices(app *App) {
	if app.DB != nil {
		app.ReportsRepo = &reports.PGRepo{DB: app.DB}
		app.UsersRepo = &users.PGRepo{DB: app.DB}
		app.PoliciesRepo = &policies.PGRepo{DB: app.DB}
	} else {
		app.ReportsRepo = reports.NewMemoryRepo()
		app.UsersRepo = users.NewMemoryRepo()
		app.PoliciesRepo = policies.NewMemoryRepo()
	}

	app.UsersService = &users.Service{Repo: app.UsersRepo}
	app.PolicyService = &policies.Service{Repo: app.PoliciesRepo}
	app.ReportsService = &reports.Service{
		Repo:      app.ReportsRepo,
		Store:     app.Store,
		Inference: app.Inference,
		Policies:  app.PolicyService,
		Events:    app.Queue,
	}
}

type rejectAll struct{}

func (rejectAll) Verify(context.Context, string) (identity.Identity, error) {
	return identity.Identity{}, identity.ErrUnauthorized
}
