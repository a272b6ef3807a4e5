package creators

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/killallgit/persona-api/api/types"
	"github.com/killallgit/persona-api/internal/models"
	creatorsService "github.com/killallgit/persona-api/internal/services/creators"
	apperrors "github.com/killallgit/persona-api/pkg/errors"
)

// Get returns a creator's ingestion record and stored chunk count
// @Summary      Get creator
// @Description  Reports the creator's last ingestion outcome and how many chunks are stored for it
// @Tags         creators
// @Produce      json
// @Param        id path string true "Creator ID"
// @Success      200 {object} types.CreatorResponse
// @Failure      404 {object} types.ErrorResponse "Creator not found"
// @Failure      503 {object} types.ErrorResponse "Creator store not available"
// @Router       /api/v1/creators/{id} [get]
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps == nil || deps.Creators == nil {
			types.SendServiceUnavailable(c, "Creator store not available")
			return
		}

		ctx := c.Request.Context()
		id := c.Param("id")
		creator, err := deps.Creators.GetCreator(ctx, id)
		if err != nil {
			sendCreatorError(c, id, err)
			return
		}

		var stored int64
		if deps.Chunks != nil {
			if stored, err = deps.Chunks.CountByCreator(ctx, id); err != nil {
				types.SendError(c, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to count chunks"))
				return
			}
		}

		c.JSON(http.StatusOK, types.CreatorResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK, Message: "Creator retrieved successfully"},
			Creator:      creator,
			StoredChunks: stored,
		})
	}
}

// List returns a team's creators. With channelId it returns the creator the
// team registered for that channel.
// @Summary      List creators
// @Tags         creators
// @Produce      json
// @Param        teamId query string true "Team ID"
// @Param        channelId query string false "Only the creator for this channel"
// @Success      200 {object} types.CreatorListResponse
// @Failure      400 {object} types.ErrorResponse "Missing teamId"
// @Failure      503 {object} types.ErrorResponse "Creator store not available"
// @Router       /api/v1/creators [get]
func List(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		teamID := strings.TrimSpace(c.Query("teamId"))
		if teamID == "" {
			types.SendError(c, apperrors.MissingFieldError("teamId"))
			return
		}
		if deps == nil || deps.Creators == nil {
			types.SendServiceUnavailable(c, "Creator store not available")
			return
		}

		ctx := c.Request.Context()
		var list []models.Creator
		if channelID := strings.TrimSpace(c.Query("channelId")); channelID != "" {
			creator, err := deps.Creators.GetCreatorByChannel(ctx, channelID, teamID)
			switch {
			case errors.Is(err, creatorsService.ErrCreatorNotFound):
			case err != nil:
				types.SendError(c, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to load creator"))
				return
			default:
				list = append(list, *creator)
			}
		} else {
			var err error
			if list, err = deps.Creators.ListCreators(ctx, teamID); err != nil {
				types.SendError(c, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to list creators"))
				return
			}
		}
		if list == nil {
			list = []models.Creator{}
		}

		c.JSON(http.StatusOK, types.CreatorListResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK, Message: "Creators retrieved successfully"},
			Creators:     list,
			Count:        len(list),
		})
	}
}

func sendCreatorError(c *gin.Context, id string, err error) {
	if errors.Is(err, creatorsService.ErrCreatorNotFound) {
		types.SendError(c, apperrors.NotFound("creator", id))
		return
	}
	types.SendError(c, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to load creator"))
}
