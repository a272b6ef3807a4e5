package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/killallgit/persona-api/internal/models"
	"github.com/killallgit/persona-api/internal/services/kvstore"
)

// Repository errors
var (
	ErrJobNotFound       = errors.New("job not found")
	ErrNoJobsAvailable   = errors.New("no jobs available")
	ErrInvalidTransition = errors.New("invalid job state transition")
)

const (
	// DefaultRetention is how long job records live in the store
	DefaultRetention = 24 * time.Hour

	jobKeyPrefix   = "job:"
	claimKeyPrefix = "job-claim:"
	queueKey       = "jobs:queue"
)

// Repository defines the interface for job persistence
type Repository interface {
	// Create operations
	CreateJob(ctx context.Context, job *models.Job) error

	// Read operations
	GetJob(ctx context.Context, id string) (*models.Job, error)

	// Update operations
	ClaimNextJob(ctx context.Context, workerID string, jobTypes []models.JobType) (*models.Job, error)
	ClaimJob(ctx context.Context, jobID, workerID string) (*models.Job, error)
	UpdateJobProgress(ctx context.Context, jobID string, progress models.JobProgress) error
	CompleteJob(ctx context.Context, jobID string, result *models.IngestionResult) error
	FailJobWithDetails(ctx context.Context, jobID string, errorType models.JobErrorType, errorCode, errorMsg, errorDetails string, result *models.IngestionResult) error
}

// repository stores jobs as JSON documents in a key-value store and queues
// their IDs for workers
type repository struct {
	store     kvstore.Store
	retention time.Duration
	now       func() time.Time
}

// NewRepository creates a new job repository
func NewRepository(store kvstore.Store, retention time.Duration) Repository {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &repository{
		store:     store,
		retention: retention,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateJob persists a queued job and places it on the work queue
func (r *repository) CreateJob(ctx context.Context, job *models.Job) error {
	now := r.now()
	job.CreatedAt = now
	job.UpdatedAt = now

	if err := r.save(ctx, job); err != nil {
		return err
	}
	if err := r.store.Push(ctx, queueKey, []byte(job.ID)); err != nil {
		_ = r.store.Delete(ctx, jobKeyPrefix+job.ID)
		return fmt.Errorf("queueing job: %w", err)
	}
	return nil
}

// GetJob retrieves a job by ID
func (r *repository) GetJob(ctx context.Context, id string) (*models.Job, error) {
	data, err := r.store.Get(ctx, jobKeyPrefix+id)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("getting job: %w", err)
	}

	var job models.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("decoding job %s: %w", id, err)
	}
	return &job, nil
}

// ClaimNextJob pops queued job IDs until one is claimable. Jobs whose
// records expired are skipped; jobs of another type are requeued.
func (r *repository) ClaimNextJob(ctx context.Context, workerID string, jobTypes []models.JobType) (*models.Job, error) {
	for {
		raw, err := r.store.Pop(ctx, queueKey)
		if err != nil {
			if errors.Is(err, kvstore.ErrNotFound) {
				return nil, ErrNoJobsAvailable
			}
			return nil, fmt.Errorf("finding job to claim: %w", err)
		}

		job, err := r.GetJob(ctx, string(raw))
		if errors.Is(err, ErrJobNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if !job.CanProcess() {
			continue
		}
		if len(jobTypes) > 0 && !slices.Contains(jobTypes, job.Type) {
			if err := r.store.Push(ctx, queueKey, raw); err != nil {
				return nil, fmt.Errorf("requeueing job: %w", err)
			}
			return nil, ErrNoJobsAvailable
		}

		claimed, err := r.claim(ctx, job, workerID)
		if err != nil {
			return nil, err
		}
		if !claimed {
			continue
		}
		return job, nil
	}
}

// ClaimJob claims a specific queued job. Its queue entry is skipped later
// because the job is no longer queued.
func (r *repository) ClaimJob(ctx context.Context, jobID, workerID string) (*models.Job, error) {
	job, err := r.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !job.CanProcess() {
		return nil, fmt.Errorf("%w: claim %s job", ErrInvalidTransition, job.Status)
	}
	claimed, err := r.claim(ctx, job, workerID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, fmt.Errorf("%w: job %s already claimed", ErrInvalidTransition, job.ID)
	}
	return job, nil
}

// claim takes the job's claim marker with SET NX and only then moves the job
// to processing. A worker that read the job as queued but lost the marker
// reports false and leaves the record alone.
func (r *repository) claim(ctx context.Context, job *models.Job, workerID string) (bool, error) {
	ok, err := r.store.SetNX(ctx, claimKeyPrefix+job.ID, []byte(workerID), r.retention)
	if err != nil {
		return false, fmt.Errorf("claiming job %s: %w", job.ID, err)
	}
	if !ok {
		return false, nil
	}
	if err := r.markProcessing(ctx, job, workerID); err != nil {
		return false, err
	}
	return true, nil
}

func (r *repository) markProcessing(ctx context.Context, job *models.Job, workerID string) error {
	now := r.now()
	job.Status = models.JobStatusProcessing
	job.WorkerID = workerID
	job.StartedAt = &now
	if err := r.save(ctx, job); err != nil {
		return fmt.Errorf("updating claimed job: %w", err)
	}
	return nil
}

// UpdateJobProgress updates the progress of a processing job
func (r *repository) UpdateJobProgress(ctx context.Context, jobID string, progress models.JobProgress) error {
	job, err := r.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status != models.JobStatusProcessing {
		return fmt.Errorf("%w: progress on %s job", ErrInvalidTransition, job.Status)
	}

	if progress.Current > progress.Total {
		progress.Current = progress.Total
	}
	job.Progress = progress
	return r.save(ctx, job)
}

// CompleteJob marks a processing job as completed with a result
func (r *repository) CompleteJob(ctx context.Context, jobID string, result *models.IngestionResult) error {
	job, err := r.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status != models.JobStatusProcessing {
		return fmt.Errorf("%w: complete %s job", ErrInvalidTransition, job.Status)
	}

	now := r.now()
	job.Status = models.JobStatusCompleted
	job.CompletedAt = &now
	job.Result = result
	job.Progress.Current = job.Progress.Total
	return r.save(ctx, job)
}

// FailJobWithDetails marks a non-terminal job as failed with error details
func (r *repository) FailJobWithDetails(ctx context.Context, jobID string, errorType models.JobErrorType, errorCode, errorMsg, errorDetails string, result *models.IngestionResult) error {
	job, err := r.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job.IsTerminal() {
		return fmt.Errorf("%w: fail %s job", ErrInvalidTransition, job.Status)
	}

	now := r.now()
	job.Status = models.JobStatusFailed
	job.CompletedAt = &now
	job.Result = result
	job.SetErrorDetails(errorType, errorCode, errorMsg, errorDetails)
	return r.save(ctx, job)
}

func (r *repository) save(ctx context.Context, job *models.Job) error {
	job.UpdatedAt = r.now()
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encoding job: %w", err)
	}
	if err := r.store.Set(ctx, jobKeyPrefix+job.ID, data, r.retention); err != nil {
		return fmt.Errorf("saving job: %w", err)
	}
	return nil
}
