package search

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/killallgit/persona-api/api/types"
	apperrors "github.com/killallgit/persona-api/pkg/errors"
)

const (
	maxLimit      = 50
	searchTimeout = 30 * time.Second
)

// Post handles hybrid search requests
// @Summary      Search a creator's content
// @Description  Runs semantic and keyword retrieval over the creator's chunks and returns fused, ranked passages
// @Tags         search
// @Accept       json
// @Produce      json
// @Param        request body types.SearchRequest true "Search parameters"
// @Success      200 {object} types.SearchResponse "Ranked results"
// @Failure      400 {object} types.ErrorResponse "Bad request - invalid parameters"
// @Failure      503 {object} types.ErrorResponse "Search service not available"
// @Router       /api/v1/search [post]
func Post(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.SearchRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		req.Query = strings.TrimSpace(req.Query)
		if req.Query == "" {
			types.SendBadRequest(c, "Search query is required")
			return
		}
		if req.Limit < 0 || req.Limit > maxLimit {
			types.SendError(c, apperrors.ValidationError("limit", fmt.Sprintf("must be between 1 and %d", maxLimit)))
			return
		}

		if deps == nil || deps.Search == nil {
			types.SendServiceUnavailable(c, "Search service not available")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), searchTimeout)
		defer cancel()

		// Providers fail soft, so an unreachable index yields no results
		// rather than an error
		results := deps.Search.Search(ctx, req.CreatorID, req.Query, req.Limit)

		c.JSON(http.StatusOK, types.SearchResponse{
			BaseResponse: types.BaseResponse{
				Status:  types.StatusOK,
				Message: "Search results retrieved successfully",
			},
			Results: results,
			Query:   req.Query,
			Count:   len(results),
		})
	}
}
