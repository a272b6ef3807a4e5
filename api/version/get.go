package version

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Get handles version requests
// @Summary      Service information
// @Tags         version
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       / [get]
func Get(version string) gin.HandlerFunc {
	if version == "" {
		version = "dev"
	}
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":        "Persona API",
			"version":     version,
			"description": "Creator transcript ingestion and hybrid retrieval",
			"status":      "running",
		})
	}
}
