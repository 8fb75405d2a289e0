package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"glucowizard-backend/internal/reports"
	"glucowizard-backend/internal/services/health"
	"glucowizard-backend/internal/shared/config"
	"glucowizard-backend/internal/shared/metrics"
	"glucowizard-backend/internal/shared/server/middleware"
	"glucowizard-backend/internal/shared/server/respond"
	localstore "glucowizard-backend/internal/shared/storage/object/local"
	"glucowizard-backend/internal/users"
)

const (
	apiPrefix         = "/api/v1"
	reportCreateGroup = "REPORT_CREATE"
)

// RouterDeps holds the handlers and collaborators mounted on the router.
type RouterDeps struct {
	Config        config.Config
	Resolver      middleware.Resolver
	Health        *health.Service
	ReportHandler *reports.Handler
	UserHandler   *users.Handler
	// FilesHandler is set only when the local object store is in use.
	FilesHandler *localstore.Handler
	RateLimiter  *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if !deps.Config.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		metrics.Middleware(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group(apiPrefix)
	api.GET("/health", healthHandler(deps.Health))
	if deps.FilesHandler != nil {
		deps.FilesHandler.RegisterRoutes(api)
	}

	protected := api.Group("")
	protected.Use(
		middleware.Auth(deps.Resolver),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				reportCreateGroup: {
					Rate:  deps.Config.CreateRateLimitRPS,
					Burst: deps.Config.CreateRateLimitBurst,
				},
			},
			GroupFor: rateLimitGroup,
			Limiter:  deps.RateLimiter,
		}),
	)
	if deps.ReportHandler != nil {
		deps.ReportHandler.RegisterRoutes(protected)
	}
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(protected)
	}

	return r
}

func rateLimitGroup(c *gin.Context) string {
	if c.Request.Method == http.MethodPost && c.FullPath() == apiPrefix+"/reports/create/" {
		return reportCreateGroup
	}
	return ""
}

func healthHandler(svc *health.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if svc == nil {
			respond.OK(c, gin.H{"ok": true})
			return
		}
		ok, checks := svc.Status(c.Request.Context())
		status := http.StatusOK
		if !ok {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, gin.H{"ok": ok, "checks": checks})
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
