package jobs

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/killallgit/persona-api/api/types"
	jobsService "github.com/killallgit/persona-api/internal/services/jobs"
	apperrors "github.com/killallgit/persona-api/pkg/errors"
)

// Get returns an ingestion job with its progress and result
// @Summary      Get job status
// @Description  Jobs are kept for 24 hours after they are created
// @Tags         jobs
// @Produce      json
// @Param        id path string true "Job ID"
// @Success      200 {object} types.JobResponse
// @Failure      404 {object} types.ErrorResponse "Job not found or expired"
// @Router       /api/v1/jobs/{id} [get]
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps == nil || deps.JobService == nil {
			types.SendServiceUnavailable(c, "Job service not available")
			return
		}

		jobID := c.Param("id")
		job, err := deps.JobService.GetJob(c.Request.Context(), jobID)
		if err != nil {
			if errors.Is(err, jobsService.ErrJobNotFound) {
				types.SendError(c, apperrors.NotFound("job", jobID))
				return
			}
			types.SendError(c, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to load job"))
			return
		}

		c.JSON(http.StatusOK, types.JobResponse{
			BaseResponse: types.BaseResponse{
				Status:  types.StatusOK,
				Message: "Job retrieved successfully",
			},
			Job: job,
		})
	}
}
