package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/rootlinehq/rootline/internal/dbpool"
	"github.com/rootlinehq/rootline/internal/middleware"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Log         *logrus.Logger
	Pool        *dbpool.Pool
	Imports     ImportRepository
	Merges      MergeRepository
	Persons     PersonRepository
	Audit       AuditRepository
	Sessions    SessionCounter
	UserLookup  middleware.UserLookup
	CORSOrigins []string
	Version     string
}

// Router-level limits.
const (
	// Upload content is capped at 32 MB; the body limit leaves headroom
	// for the JSON envelope around it.
	maxBodySize = 40 << 20
	rateLimit   = 100 // requests per second per IP
	rateBurst   = 200 // token bucket burst size
)

// setupMiddleware configures all middleware on the Gin engine.
func setupMiddleware(ctx context.Context, r *gin.Engine, deps *RouterDeps) {
	r.SetTrustedProxies(nil) //nolint:errcheck // nil always succeeds.
	r.Use(middleware.RequestID(deps.Log))
	r.Use(ginLogger(deps.Log))
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.MaxBodySize(maxBodySize))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		MaxAge:           1 * time.Hour,
		AllowCredentials: false,
	}))
	r.Use(middleware.NewRateLimiter(ctx, rateLimit, rateBurst).Handler())
	r.Use(middleware.PrometheusMiddleware())

	// Metrics endpoint (unauthenticated, like health).
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// registerRoutes sets up all API route handlers on the given router group.
func registerRoutes(ctx context.Context, api *gin.RouterGroup, deps *RouterDeps) {
	log := deps.Log

	health := NewHealthHandler(deps.Pool, deps.Sessions, log, deps.Version)
	imports := NewImportHandler(deps.Imports, log)
	merges := NewMergeHandler(deps.Merges, log)
	persons := NewPersonHandler(deps.Persons, log)
	audit := NewAuditHandler(deps.Audit, log)

	// Health and readiness are unauthenticated.
	api.GET("/health", health.Liveness)
	api.GET("/ready", health.Readiness)

	// All other API routes require authentication.
	bfGuard := middleware.NewBruteForceGuard(ctx, log)
	api.Use(middleware.BruteForceMiddleware(bfGuard))
	api.Use(middleware.AuthMiddleware(middleware.NewCachedUserLookup(ctx, deps.UserLookup), log, bfGuard))

	// Import previews.
	api.POST("/imports/:upload_id/preview", imports.Prepare)
	api.GET("/imports/:upload_id/individuals", imports.List)
	api.GET("/imports/:upload_id/individuals/:id", imports.Get)
	api.GET("/imports/:upload_id/tree", imports.Tree)
	api.GET("/imports/:upload_id/statistics", imports.Statistics)
	api.PUT("/imports/:upload_id/decisions", imports.SaveDecisions)
	api.GET("/imports/:upload_id/decisions", imports.GetDecisions)
	api.DELETE("/imports/:upload_id", imports.Discard)

	// Merges.
	api.POST("/merge/preview", merges.Preview)
	api.POST("/merge", merges.Execute)

	// Persons.
	api.GET("/persons/:id", persons.Get)
	api.GET("/persons/:id/relationships", persons.Relationships)

	// Audit.
	api.GET("/audit", audit.Query)
}

// NewRouter creates and configures the Gin engine with all middleware and routes.
func NewRouter(ctx context.Context, deps *RouterDeps) http.Handler {
	r := gin.New()
	setupMiddleware(ctx, r, deps)
	registerRoutes(ctx, r.Group("/api/v1"), deps)

	return r
}
