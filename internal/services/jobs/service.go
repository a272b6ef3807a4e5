package jobs

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/killallgit/persona-api/internal/models"
)

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{
		repo: repo,
	}
}

func (s *service) EnqueueJob(ctx context.Context, jobType models.JobType, payload models.JobPayload, opts ...JobOption) (*models.Job, error) {
	cfg := &jobConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}

	job := &models.Job{
		ID:        cfg.ID,
		Type:      jobType,
		Status:    models.JobStatusQueued,
		CreatorID: cfg.CreatorID,
		ChannelID: cfg.ChannelID,
		TeamID:    cfg.TeamID,
		Payload:   payload,
	}

	if err := s.repo.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("creating job: %w", err)
	}

	log.Printf("[DEBUG] Enqueued %s job %s for channel %s", jobType, job.ID, job.ChannelID)

	return job, nil
}

func (s *service) GetJob(ctx context.Context, jobID string) (*models.Job, error) {
	job, err := s.repo.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, ErrJobNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("getting job: %w", err)
	}
	return job, nil
}

func (s *service) ClaimNextJob(ctx context.Context, workerID string, jobTypes []models.JobType) (*models.Job, error) {
	job, err := s.repo.ClaimNextJob(ctx, workerID, jobTypes)
	if err != nil {
		if errors.Is(err, ErrNoJobsAvailable) {
			return nil, err
		}
		return nil, fmt.Errorf("claiming job: %w", err)
	}

	log.Printf("[DEBUG] Worker %s claimed %s job %s", workerID, job.Type, job.ID)

	return job, nil
}

func (s *service) ClaimJob(ctx context.Context, jobID, workerID string) (*models.Job, error) {
	job, err := s.repo.ClaimJob(ctx, jobID, workerID)
	if err != nil {
		if errors.Is(err, ErrJobNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("claiming job %s: %w", jobID, err)
	}

	log.Printf("[DEBUG] Worker %s claimed %s job %s", workerID, job.Type, job.ID)

	return job, nil
}

func (s *service) UpdateProgress(ctx context.Context, jobID string, progress models.JobProgress) error {
	if err := s.repo.UpdateJobProgress(ctx, jobID, progress); err != nil {
		if errors.Is(err, ErrJobNotFound) {
			return err
		}
		return fmt.Errorf("updating job progress: %w", err)
	}

	log.Printf("[DEBUG] Job %s progress: %d/%d", jobID, progress.Current, progress.Total)

	return nil
}

func (s *service) CompleteJob(ctx context.Context, jobID string, result *models.IngestionResult) error {
	if err := s.repo.CompleteJob(ctx, jobID, result); err != nil {
		if errors.Is(err, ErrJobNotFound) {
			return err
		}
		return fmt.Errorf("completing job: %w", err)
	}

	log.Printf("[DEBUG] Job %s completed successfully", jobID)

	return nil
}

// FailJob records err on the job. A models.StructuredJobError keeps its
// classification; anything else is recorded as a system error.
func (s *service) FailJob(ctx context.Context, jobID string, err error, result *models.IngestionResult) error {
	errorType, errorCode, errorDetails := models.ErrorTypeSystem, "", ""
	var structured *models.StructuredJobError
	if errors.As(err, &structured) {
		errorType, errorCode, errorDetails = structured.Type, structured.Code, structured.Details
	}
	errorMsg := err.Error()

	if err := s.repo.FailJobWithDetails(ctx, jobID, errorType, errorCode, errorMsg, errorDetails, result); err != nil {
		if errors.Is(err, ErrJobNotFound) {
			return err
		}
		return fmt.Errorf("failing job: %w", err)
	}

	log.Printf("[ERROR] Job %s failed with %s error '%s': %s", jobID, errorType, errorCode, errorMsg)

	return nil
}
