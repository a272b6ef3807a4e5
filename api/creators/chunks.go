package creators

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/killallgit/persona-api/api/types"
	"github.com/killallgit/persona-api/internal/models"
	apperrors "github.com/killallgit/persona-api/pkg/errors"
)

const (
	defaultRadius = 1
	maxRadius     = 5
)

// Chunks lists a creator's stored chunks in order
// @Summary      List stored chunks
// @Tags         creators
// @Produce      json
// @Param        id path string true "Creator ID"
// @Param        contentType query string false "transcript or channel_context"
// @Success      200 {object} types.ChunkListResponse
// @Failure      400 {object} types.ErrorResponse "Unknown content type"
// @Failure      503 {object} types.ErrorResponse "Chunk store not available"
// @Router       /api/v1/creators/{id}/chunks [get]
func Chunks(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		contentType := models.ContentType(c.Query("contentType"))
		switch contentType {
		case "", models.ContentTypeTranscript, models.ContentTypeChannelContext:
		default:
			types.SendError(c, apperrors.ValidationError("contentType",
				fmt.Sprintf("must be %s or %s", models.ContentTypeTranscript, models.ContentTypeChannelContext)))
			return
		}
		if deps == nil || deps.Chunks == nil {
			types.SendServiceUnavailable(c, "Chunk store not available")
			return
		}

		docs, err := deps.Chunks.FindByCreator(c.Request.Context(), c.Param("id"), contentType)
		if err != nil {
			types.SendError(c, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to list chunks"))
			return
		}
		sendChunks(c, docs)
	}
}

// Neighbors returns a chunk together with the chunks around it in its video,
// which lets a caller widen a search hit into its surrounding passage
// @Summary      Get neighbouring chunks
// @Tags         creators
// @Produce      json
// @Param        id path string true "Creator ID"
// @Param        videoId path string true "Video ID"
// @Param        index path int true "Chunk index"
// @Param        radius query int false "Chunks on each side (0-5, default 1)"
// @Success      200 {object} types.ChunkListResponse
// @Failure      400 {object} types.ErrorResponse "Invalid index or radius"
// @Failure      404 {object} types.ErrorResponse "Chunk not found"
// @Failure      503 {object} types.ErrorResponse "Chunk store not available"
// @Router       /api/v1/creators/{id}/videos/{videoId}/chunks/{index}/neighbors [get]
func Neighbors(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		index, err := strconv.Atoi(c.Param("index"))
		if err != nil || index < 0 {
			types.SendError(c, apperrors.ValidationError("index", "must be a non-negative integer"))
			return
		}
		radius := defaultRadius
		if raw := c.Query("radius"); raw != "" {
			radius, err = strconv.Atoi(raw)
			if err != nil || radius < 0 || radius > maxRadius {
				types.SendError(c, apperrors.ValidationError("radius", fmt.Sprintf("must be between 0 and %d", maxRadius)))
				return
			}
		}
		if deps == nil || deps.Chunks == nil {
			types.SendServiceUnavailable(c, "Chunk store not available")
			return
		}

		videoID := c.Param("videoId")
		docs, err := deps.Chunks.Neighbors(c.Request.Context(), c.Param("id"), videoID, index, radius)
		if err != nil {
			types.SendError(c, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to load chunks"))
			return
		}
		if !containsIndex(docs, index) {
			types.SendError(c, apperrors.NotFound("chunk", fmt.Sprintf("%s/%d", videoID, index)))
			return
		}
		sendChunks(c, docs)
	}
}

func containsIndex(docs []models.ChunkDocument, index int) bool {
	for _, d := range docs {
		if d.ChunkIndex == index {
			return true
		}
	}
	return false
}

func sendChunks(c *gin.Context, docs []models.ChunkDocument) {
	if docs == nil {
		docs = []models.ChunkDocument{}
	}
	c.JSON(http.StatusOK, types.ChunkListResponse{
		BaseResponse: types.BaseResponse{Status: types.StatusOK, Message: "Chunks retrieved successfully"},
		Chunks:       docs,
		Count:        len(docs),
	})
}
