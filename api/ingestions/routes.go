package ingestions

import (
	"github.com/gin-gonic/gin"

	"github.com/killallgit/persona-api/api/types"
)

// RegisterRoutes registers ingestion routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	// POST /api/v1/ingestions (router already includes /ingestions prefix)
	router.POST("", Post(deps))
}
