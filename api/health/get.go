package health

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/killallgit/persona-api/api/types"
)

// Get handles health check requests
// @Summary      Health check
// @Description  Reports the state of the backing stores and the ingestion workers
// @Tags         health
// @Produce      json
// @Success      200 {object} types.HealthResponse
// @Failure      503 {object} types.HealthResponse
// @Router       /health [get]
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := types.HealthResponse{
			Status:    types.StatusHealthy,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Checks: map[string]types.ComponentStatus{
				"database": getDatabaseStatus(deps),
				"kvstore":  getKVStoreStatus(c.Request.Context(), deps),
				"workers":  getWorkerStatus(deps),
			},
		}
		if deps != nil {
			response.Version = deps.Version
		}

		code := http.StatusOK
		for _, check := range response.Checks {
			if check.Status == types.StatusUnhealthy {
				response.Status = types.StatusUnhealthy
				code = http.StatusServiceUnavailable
			}
		}

		c.JSON(code, response)
	}
}

// getDatabaseStatus returns the database connection status
func getDatabaseStatus(deps *types.Dependencies) types.ComponentStatus {
	if deps == nil || deps.DB == nil || deps.DB.DB == nil {
		return types.ComponentStatus{Status: "not configured"}
	}

	if err := deps.DB.HealthCheck(); err != nil {
		return types.ComponentStatus{Status: types.StatusUnhealthy, Error: err.Error()}
	}

	return types.ComponentStatus{Status: types.StatusHealthy}
}

// getKVStoreStatus pings the store holding jobs and ingestion locks
func getKVStoreStatus(ctx context.Context, deps *types.Dependencies) types.ComponentStatus {
	if deps == nil || deps.KVStore == nil {
		return types.ComponentStatus{Status: "not configured"}
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := deps.KVStore.Ping(ctx); err != nil {
		return types.ComponentStatus{Status: types.StatusUnhealthy, Error: err.Error()}
	}

	return types.ComponentStatus{Status: types.StatusHealthy}
}

// getWorkerStatus reports whether background ingestion workers are running
func getWorkerStatus(deps *types.Dependencies) types.ComponentStatus {
	if deps == nil || deps.WorkerPool == nil {
		return types.ComponentStatus{Status: "not configured"}
	}
	if !deps.WorkerPool.Running() {
		return types.ComponentStatus{Status: types.StatusUnhealthy, Error: "worker pool stopped"}
	}
	return types.ComponentStatus{Status: types.StatusHealthy, Message: fmt.Sprintf("%d workers", deps.WorkerPool.Size())}
}
