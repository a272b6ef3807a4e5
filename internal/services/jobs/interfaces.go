package jobs

import (
	"context"

	"github.com/killallgit/persona-api/internal/models"
)

// Service defines the business logic interface for job operations
type Service interface {
	// Enqueue operations
	EnqueueJob(ctx context.Context, jobType models.JobType, payload models.JobPayload, opts ...JobOption) (*models.Job, error)

	// Retrieval
	GetJob(ctx context.Context, jobID string) (*models.Job, error)

	// Worker operations (used by worker pool)
	ClaimNextJob(ctx context.Context, workerID string, jobTypes []models.JobType) (*models.Job, error)
	ClaimJob(ctx context.Context, jobID, workerID string) (*models.Job, error)
	UpdateProgress(ctx context.Context, jobID string, progress models.JobProgress) error
	CompleteJob(ctx context.Context, jobID string, result *models.IngestionResult) error
	FailJob(ctx context.Context, jobID string, err error, result *models.IngestionResult) error
}

// JobOption is a functional option for configuring jobs
type JobOption func(*jobConfig)

// jobConfig holds configuration for a job
type jobConfig struct {
	ID        string
	CreatorID string
	ChannelID string
	TeamID    string
}

// WithJobID fixes the job ID instead of generating one. The ingestion lock
// is taken under the ID before the job record exists.
func WithJobID(id string) JobOption {
	return func(cfg *jobConfig) {
		cfg.ID = id
	}
}

// WithCreator sets the creator the job ingests for
func WithCreator(creatorID string) JobOption {
	return func(cfg *jobConfig) {
		cfg.CreatorID = creatorID
	}
}

// WithChannel sets the channel and team the job belongs to
func WithChannel(channelID, teamID string) JobOption {
	return func(cfg *jobConfig) {
		cfg.ChannelID = channelID
		cfg.TeamID = teamID
	}
}
