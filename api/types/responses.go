package types

import "github.com/killallgit/persona-api/internal/models"

// Status constants for API responses
const (
	StatusOK        = "ok"
	StatusError     = "error"
	StatusQueued    = "queued"
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// BaseResponse contains fields common to all API responses
type BaseResponse struct {
	Status  string `json:"status"`  // One of the Status constants above
	Message string `json:"message"` // Human-readable message
}

// IngestionAcceptedResponse is returned once an ingestion job is queued
type IngestionAcceptedResponse struct {
	BaseResponse
	JobID     string `json:"jobId"`
	StatusURL string `json:"statusUrl"`
}

// JobResponse wraps a job record
type JobResponse struct {
	BaseResponse
	Job *models.Job `json:"job"`
}

// SearchResponse for the hybrid search endpoint
type SearchResponse struct {
	BaseResponse
	Results []models.SearchResult `json:"results"`
	Query   string                `json:"query"`
	Count   int                   `json:"count"`
}

// CreatorResponse reports a creator's last ingestion and how many chunks are
// stored for it
type CreatorResponse struct {
	BaseResponse
	Creator      *models.Creator `json:"creator"`
	StoredChunks int64           `json:"storedChunks"`
}

// CreatorListResponse lists a team's creators
type CreatorListResponse struct {
	BaseResponse
	Creators []models.Creator `json:"creators"`
	Count    int              `json:"count"`
}

// ChunkListResponse lists stored chunks in chunk order
type ChunkListResponse struct {
	BaseResponse
	Chunks []models.ChunkDocument `json:"chunks"`
	Count  int                    `json:"count"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Error   string      `json:"error,omitempty"`   // Error code/type
	Details interface{} `json:"details,omitempty"` // Additional error details
}

// ComponentStatus reports the state of one backing service
type ComponentStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HealthResponse for health check endpoint
type HealthResponse struct {
	Status    string                     `json:"status"`
	Timestamp string                     `json:"timestamp"`
	Version   string                     `json:"version,omitempty"`
	Checks    map[string]ComponentStatus `json:"checks"`
}
