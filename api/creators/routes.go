package creators

import (
	"github.com/gin-gonic/gin"

	"github.com/killallgit/persona-api/api/types"
)

// RegisterRoutes registers creator and stored chunk routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	router.GET("", List(deps))
	router.GET("/:id", Get(deps))
	router.GET("/:id/chunks", Chunks(deps))
	router.GET("/:id/videos/:videoId/chunks/:index/neighbors", Neighbors(deps))
}
