package models

import (
	"time"
)

// JobStatus represents the status of an ingestion job
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// JobType represents the type of job to be processed
type JobType string

const (
	JobTypeChannelIngestion JobType = "channel_ingestion"
)

// JobErrorType represents the category of error that failed a job
type JobErrorType string

const (
	ErrorTypeEligibility JobErrorType = "eligibility" // No usable videos or descriptions
	ErrorTypeEntitlement JobErrorType = "entitlement" // Team lost access mid-run
	ErrorTypeTimeout     JobErrorType = "timeout"     // Wall-clock limit hit
	ErrorTypeNotFound    JobErrorType = "not_found"   // Channel unreachable
	ErrorTypeConflict    JobErrorType = "conflict"    // Another job owns the channel
	ErrorTypeSystem      JobErrorType = "system"      // Storage, provider, or worker error
)

// StructuredJobError represents a structured error with classification information
type StructuredJobError struct {
	Type     JobErrorType
	Code     string
	Message  string
	Details  string
	Original error
}

func (e *StructuredJobError) Error() string {
	return e.Message
}

func (e *StructuredJobError) Unwrap() error {
	return e.Original
}

// NewEligibilityError creates an error for channels with nothing to ingest
func NewEligibilityError(code, message, details string) *StructuredJobError {
	return &StructuredJobError{Type: ErrorTypeEligibility, Code: code, Message: message, Details: details}
}

// NewEntitlementError creates an error for a lapsed or missing entitlement
func NewEntitlementError(code, message string, originalErr error) *StructuredJobError {
	return &StructuredJobError{Type: ErrorTypeEntitlement, Code: code, Message: message, Original: originalErr}
}

// NewTimeoutError creates an error for a run that exceeded its time limit
func NewTimeoutError(limit time.Duration, originalErr error) *StructuredJobError {
	return &StructuredJobError{
		Type:     ErrorTypeTimeout,
		Code:     "time_limit",
		Message:  "ingestion exceeded time limit of " + limit.String(),
		Original: originalErr,
	}
}

// NewNotFoundError creates an error for a channel that cannot be reached
func NewNotFoundError(code, message, details string, originalErr error) *StructuredJobError {
	return &StructuredJobError{Type: ErrorTypeNotFound, Code: code, Message: message, Details: details, Original: originalErr}
}

// NewConflictError creates an error for a job that lost its channel lock
func NewConflictError(code, message string) *StructuredJobError {
	return &StructuredJobError{Type: ErrorTypeConflict, Code: code, Message: message}
}

// NewSystemError creates a system-related structured error
func NewSystemError(code, message, details string, originalErr error) *StructuredJobError {
	return &StructuredJobError{Type: ErrorTypeSystem, Code: code, Message: message, Details: details, Original: originalErr}
}

// JobProgress counts processed videos
type JobProgress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// Percent returns progress in the 0-100 range
func (p JobProgress) Percent() float64 {
	if p.Total <= 0 {
		return 0
	}
	return float64(p.Current) / float64(p.Total) * 100
}

// IngestionResult is persisted on a job once it reaches a terminal state
type IngestionResult struct {
	ProcessedVideos int  `json:"processedVideos"`
	TotalVideos     int  `json:"totalVideos"`
	FailedVideos    int  `json:"failedVideos"`
	ProcessedChunks int  `json:"processedChunks"`
	TotalChunks     int  `json:"totalChunks"`
	ContextChunks   int  `json:"contextChunks"`
	CanReprocess    bool `json:"canReprocess"`
}

// JobPayload represents the input data for a job
type JobPayload map[string]interface{}

// Job is an ingestion run. It lives in the key-value store and expires with
// the retention window.
type Job struct {
	ID          string           `json:"jobId"`
	Type        JobType          `json:"type"`
	Status      JobStatus        `json:"status"`
	CreatorID   string           `json:"creatorId"`
	ChannelID   string           `json:"channelId"`
	TeamID      string           `json:"teamId"`
	Payload     JobPayload       `json:"payload,omitempty"`
	Progress    JobProgress      `json:"progress"`
	Result      *IngestionResult `json:"result,omitempty"`
	WorkerID    string           `json:"workerId,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
	StartedAt   *time.Time       `json:"startedAt,omitempty"`
	CompletedAt *time.Time       `json:"completedAt,omitempty"`

	Error        string `json:"error,omitempty"`
	ErrorType    string `json:"errorType,omitempty"`
	ErrorCode    string `json:"errorCode,omitempty"`
	ErrorDetails string `json:"errorDetails,omitempty"`
}

// CanProcess returns true if the job is ready to be processed
func (j *Job) CanProcess() bool {
	return j.Status == JobStatusQueued
}

// IsTerminal returns true if the job is in a terminal state
func (j *Job) IsTerminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// GetPayloadString safely retrieves a string value from the payload
func (j *Job) GetPayloadString(key string) (string, bool) {
	if j.Payload == nil {
		return "", false
	}
	str, ok := j.Payload[key].(string)
	return str, ok
}

// SetErrorDetails sets error classification information
func (j *Job) SetErrorDetails(errorType JobErrorType, errorCode, errorMsg, errorDetails string) {
	j.ErrorType = string(errorType)
	j.ErrorCode = errorCode
	j.Error = errorMsg
	j.ErrorDetails = errorDetails
}
