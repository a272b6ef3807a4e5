package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/killallgit/persona-api/api/types"
	"github.com/killallgit/persona-api/internal/database"
	"github.com/killallgit/persona-api/internal/services/kvstore"
	"github.com/killallgit/persona-api/internal/services/workers"
)

// downStore is a key-value store whose server cannot be reached
type downStore struct {
	kvstore.Store
}

func (downStore) Ping(context.Context) error {
	return errors.New("dial tcp 127.0.0.1:6379: connection refused")
}

func TestGet(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		setupDeps      func(t *testing.T) *types.Dependencies
		expectedStatus int
		expectedBody   string
		expectedChecks map[string]string
	}{
		{
			name: "healthy with database and store",
			setupDeps: func(t *testing.T) *types.Dependencies {
				db, err := database.Initialize(":memory:", false)
				require.NoError(t, err)
				t.Cleanup(func() { db.Close() })
				store := kvstore.NewMemoryStore()
				t.Cleanup(func() { store.Close() })
				return &types.Dependencies{DB: db, KVStore: store, Version: "1.2.3"}
			},
			expectedStatus: http.StatusOK,
			expectedBody:   types.StatusHealthy,
			expectedChecks: map[string]string{"database": types.StatusHealthy, "kvstore": types.StatusHealthy},
		},
		{
			name: "healthy without dependencies",
			setupDeps: func(t *testing.T) *types.Dependencies {
				return &types.Dependencies{}
			},
			expectedStatus: http.StatusOK,
			expectedBody:   types.StatusHealthy,
			expectedChecks: map[string]string{"database": "not configured", "kvstore": "not configured", "workers": "not configured"},
		},
		{
			name: "unhealthy with stopped worker pool",
			setupDeps: func(t *testing.T) *types.Dependencies {
				return &types.Dependencies{WorkerPool: workers.NewWorkerPool(nil, 2, time.Second)}
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   types.StatusUnhealthy,
			expectedChecks: map[string]string{"workers": types.StatusUnhealthy},
		},
		{
			name: "unhealthy with closed database",
			setupDeps: func(t *testing.T) *types.Dependencies {
				db, err := database.Initialize(":memory:", false)
				require.NoError(t, err)
				require.NoError(t, db.Close())
				return &types.Dependencies{DB: db}
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   types.StatusUnhealthy,
			expectedChecks: map[string]string{"database": types.StatusUnhealthy},
		},
		{
			name: "unhealthy with unreachable store",
			setupDeps: func(t *testing.T) *types.Dependencies {
				return &types.Dependencies{KVStore: downStore{}}
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   types.StatusUnhealthy,
			expectedChecks: map[string]string{"kvstore": types.StatusUnhealthy},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

			Get(tt.setupDeps(t))(c)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response types.HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.expectedBody, response.Status)
			for name, status := range tt.expectedChecks {
				assert.Equal(t, status, response.Checks[name].Status, "check %s", name)
			}
		})
	}
}
