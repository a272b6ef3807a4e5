package ingestions

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/killallgit/persona-api/api/types"
	"github.com/killallgit/persona-api/internal/services/ingestion"
)

// Post queues ingestion of a channel
// @Summary      Start a channel ingestion
// @Description  Queues ingestion of the channel's captioned videos for the team's creator. Only one ingestion per channel and team runs at a time.
// @Tags         ingestions
// @Accept       json
// @Produce      json
// @Param        request body types.IngestionRequest true "Channel to ingest"
// @Success      202 {object} types.IngestionAcceptedResponse "Job queued"
// @Failure      400 {object} types.ErrorResponse "Invalid request"
// @Failure      403 {object} types.ErrorResponse "Team is not entitled to ingest this channel"
// @Failure      409 {object} types.ErrorResponse "An ingestion is already running for this channel"
// @Failure      503 {object} types.ErrorResponse "Ingestion service not available"
// @Router       /api/v1/ingestions [post]
func Post(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.IngestionRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		if deps == nil || deps.Ingestion == nil {
			types.SendServiceUnavailable(c, "Ingestion service not available")
			return
		}

		job, err := deps.Ingestion.Start(c.Request.Context(), ingestion.Request{
			ChannelID:         req.ChannelID,
			TeamID:            req.TeamID,
			CreatorID:         req.CreatorID,
			CustomDescription: req.CustomDescription,
			BackgroundText:    req.BackgroundText,
		})
		if err != nil {
			types.SendError(c, err)
			return
		}

		c.JSON(http.StatusAccepted, types.IngestionAcceptedResponse{
			BaseResponse: types.BaseResponse{
				Status:  types.StatusQueued,
				Message: "Ingestion queued",
			},
			JobID:     job.ID,
			StatusURL: "/api/v1/jobs/" + job.ID,
		})
	}
}
