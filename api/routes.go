package api

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/killallgit/persona-api/api/creators"
	"github.com/killallgit/persona-api/api/health"
	"github.com/killallgit/persona-api/api/ingestions"
	"github.com/killallgit/persona-api/api/jobs"
	"github.com/killallgit/persona-api/api/search"
	"github.com/killallgit/persona-api/api/types"
	"github.com/killallgit/persona-api/api/version"
	_ "github.com/killallgit/persona-api/docs/swagger"
)

// RegisterRoutes registers all API routes
func RegisterRoutes(engine *gin.Engine, deps *types.Dependencies, rateLimiters *sync.Map, cleanupStop chan struct{}, cleanupInitialized *sync.Once) error {
	if deps == nil {
		deps = &types.Dependencies{}
	}

	// Register public routes (no rate limiting)
	health.RegisterRoutes(engine, deps)
	version.RegisterRoutes(engine, deps)

	// Register Swagger documentation route
	engine.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/docs/index.html")
	})
	docsGroup := engine.Group("/docs")
	docsGroup.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Setup 404 handler
	engine.NoRoute(NotFoundHandler())

	v1 := engine.Group("/api/v1")

	// Ingestion is expensive, so starts are limited to 1 req/s with a burst of 3
	ingestionGroup := v1.Group("/ingestions")
	ingestionGroup.Use(PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, "ingestions", 1, 3))
	ingestions.RegisterRoutes(ingestionGroup, deps)

	// Job polling (10 req/s, burst of 20)
	jobGroup := v1.Group("/jobs")
	jobGroup.Use(PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, "jobs", 10, 20))
	jobs.RegisterRoutes(jobGroup, deps)

	// Creator records and stored chunks (10 req/s, burst of 20)
	creatorGroup := v1.Group("/creators")
	creatorGroup.Use(PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, "creators", 10, 20))
	creators.RegisterRoutes(creatorGroup, deps)

	// Search (5 req/s, burst of 10)
	searchGroup := v1.Group("/search")
	searchGroup.Use(PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, "search", 5, 10))
	search.RegisterRoutes(searchGroup, deps)

	return nil
}

// NotFoundHandler handles 404 errors
func NotFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		types.SendNotFound(c, "No endpoint at "+c.Request.URL.Path)
	}
}
