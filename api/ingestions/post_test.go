package ingestions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/killallgit/persona-api/api/types"
	"github.com/killallgit/persona-api/internal/models"
	"github.com/killallgit/persona-api/internal/services/ingestion"
	apperrors "github.com/killallgit/persona-api/pkg/errors"
)

// mockStarter answers Start with a fixed job or error
type mockStarter struct {
	job  *models.Job
	err  error
	seen ingestion.Request
}

func (m *mockStarter) Start(ctx context.Context, req ingestion.Request) (*models.Job, error) {
	m.seen = req
	return m.job, m.err
}

func TestPost(t *testing.T) {
	gin.SetMode(gin.TestMode)

	validBody := types.IngestionRequest{
		ChannelID:         "UC123",
		TeamID:            "team-1",
		CreatorID:         "creator-1",
		CustomDescription: "woodworking tutorials",
	}

	tests := []struct {
		name           string
		body           interface{}
		starter        *mockStarter
		expectedStatus int
		expectedCode   string
		checkResponse  func(*testing.T, *mockStarter, []byte)
	}{
		{
			name:           "queued",
			body:           validBody,
			starter:        &mockStarter{job: &models.Job{ID: "job-1", Status: models.JobStatusQueued}},
			expectedStatus: http.StatusAccepted,
			checkResponse: func(t *testing.T, m *mockStarter, body []byte) {
				var resp types.IngestionAcceptedResponse
				require.NoError(t, json.Unmarshal(body, &resp))
				assert.Equal(t, "job-1", resp.JobID)
				assert.Equal(t, "/api/v1/jobs/job-1", resp.StatusURL)
				assert.Equal(t, types.StatusQueued, resp.Status)

				assert.Equal(t, "UC123", m.seen.ChannelID)
				assert.Equal(t, "team-1", m.seen.TeamID)
				assert.Equal(t, "creator-1", m.seen.CreatorID)
				assert.Equal(t, "woodworking tutorials", m.seen.CustomDescription)
			},
		},
		{
			name:           "already running",
			body:           validBody,
			starter:        &mockStarter{err: apperrors.IngestionInProgress("UC123", "team-1")},
			expectedStatus: http.StatusConflict,
			expectedCode:   string(apperrors.ErrCodeIngestionInProgress),
		},
		{
			name:           "not entitled",
			body:           validBody,
			starter:        &mockStarter{err: apperrors.NotEntitled("team-1", "UC123")},
			expectedStatus: http.StatusForbidden,
			expectedCode:   string(apperrors.ErrCodeNotEntitled),
		},
		{
			name:           "store unavailable",
			body:           validBody,
			starter:        &mockStarter{err: apperrors.Wrap(errors.New("dial tcp: refused"), apperrors.ErrCodeServiceDown, "job store unavailable")},
			expectedStatus: http.StatusServiceUnavailable,
			expectedCode:   string(apperrors.ErrCodeServiceDown),
		},
		{
			name:           "missing channel",
			body:           map[string]string{"teamId": "team-1", "creatorId": "creator-1"},
			starter:        &mockStarter{},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   string(apperrors.ErrCodeInvalidInput),
		},
		{
			name:           "invalid JSON",
			body:           "{",
			starter:        &mockStarter{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "ingestion not configured",
			body:           validBody,
			expectedStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := &types.Dependencies{}
			if tt.starter != nil {
				deps.Ingestion = tt.starter
			}

			var body []byte
			if s, ok := tt.body.(string); ok {
				body = []byte(s)
			} else {
				var err error
				body, err = json.Marshal(tt.body)
				require.NoError(t, err)
			}

			router := gin.New()
			RegisterRoutes(router.Group("/api/v1/ingestions"), deps)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/ingestions", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedCode != "" {
				var resp types.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, tt.expectedCode, resp.Error)
			}
			if tt.checkResponse != nil {
				tt.checkResponse(t, tt.starter, w.Body.Bytes())
			}
		})
	}
}
