// Package ingestion runs channel ingestion jobs: it lists a channel's
// videos, turns eligible transcripts into embedded chunks and keeps the
// creator's vector and keyword stores in step.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/killallgit/persona-api/internal/chunker"
	"github.com/killallgit/persona-api/internal/models"
	"github.com/killallgit/persona-api/internal/services/creators"
	"github.com/killallgit/persona-api/internal/services/entitlement"
	"github.com/killallgit/persona-api/internal/services/jobs"
	"github.com/killallgit/persona-api/internal/services/videosource"
	"github.com/killallgit/persona-api/pkg/config"
	apperrors "github.com/killallgit/persona-api/pkg/errors"
)

// ErrIngestionInProgress is the cause of the conflict returned by Start when
// the channel is already locked for the team
var ErrIngestionInProgress = errors.New("ingestion already in progress")

const (
	payloadCustomDescription = "customDescription"
	payloadBackgroundText    = "backgroundText"

	// persistTimeout bounds the final job and creator writes, which run after
	// the ingestion deadline may have passed
	persistTimeout = 30 * time.Second
)

// Embedder turns chunk text into vectors
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorWriter is the write side of the vector store
type VectorWriter interface {
	Upsert(ctx context.Context, creatorID, videoID string, chunks []models.EmbeddedChunk) error
	DeleteByVideo(ctx context.Context, creatorID, videoID string) error
	DeleteIDs(ctx context.Context, ids []string) error
}

// DocumentWriter is the write side of the chunk metadata and keyword stores
type DocumentWriter interface {
	Replace(ctx context.Context, creatorID, videoID string, chunks []models.EmbeddedChunk) ([]string, error)
	DeleteByVideo(ctx context.Context, creatorID, videoID string) error
}

// Options tunes an ingestion run
type Options struct {
	Timeout            time.Duration
	MaxVideos          int
	MinVideoMinutes    float64
	MaxVideoMinutes    float64
	MinDescriptionLen  int
	RequireEntitlement bool
	Chunking           chunker.Options
}

// DefaultOptions returns the production ingestion limits
func DefaultOptions() Options {
	return Options{
		Timeout:            30 * time.Minute,
		MaxVideos:          50,
		MinVideoMinutes:    2,
		MaxVideoMinutes:    25,
		MinDescriptionLen:  50,
		RequireEntitlement: true,
		Chunking:           chunker.DefaultOptions(),
	}
}

// OptionsFromConfig maps configuration onto Options, keeping defaults for
// unset values
func OptionsFromConfig(ing config.IngestionConfig, src config.VideoSourceConfig) Options {
	opts := DefaultOptions()
	if ing.Timeout > 0 {
		opts.Timeout = ing.Timeout
	}
	if src.MaxVideos > 0 {
		opts.MaxVideos = src.MaxVideos
	}
	if ing.MinVideoMinutes > 0 {
		opts.MinVideoMinutes = ing.MinVideoMinutes
	}
	if ing.MaxVideoMinutes > 0 {
		opts.MaxVideoMinutes = ing.MaxVideoMinutes
	}
	if ing.MinDescriptionLen > 0 {
		opts.MinDescriptionLen = ing.MinDescriptionLen
	}
	opts.RequireEntitlement = ing.RequireEntitlement
	opts.Chunking = chunker.Options{
		MaxTokens:     ing.ChunkMaxTokens,
		MinChunkChars: ing.ChunkMinChars,
		MaxChunkChars: ing.ChunkMaxChars,
	}
	return opts
}

// Request asks for one channel to be ingested for a team's creator
type Request struct {
	ChannelID         string `json:"channelId"`
	TeamID            string `json:"teamId"`
	CreatorID         string `json:"creatorId"`
	CustomDescription string `json:"customDescription,omitempty"`
	BackgroundText    string `json:"backgroundText,omitempty"`
}

// Validate checks the required identifiers
func (r Request) Validate() error {
	switch {
	case strings.TrimSpace(r.ChannelID) == "":
		return apperrors.MissingFieldError("channelId")
	case strings.TrimSpace(r.TeamID) == "":
		return apperrors.MissingFieldError("teamId")
	case strings.TrimSpace(r.CreatorID) == "":
		return apperrors.MissingFieldError("creatorId")
	}
	return nil
}

func (r Request) payload() models.JobPayload {
	p := models.JobPayload{}
	if r.CustomDescription != "" {
		p[payloadCustomDescription] = r.CustomDescription
	}
	if r.BackgroundText != "" {
		p[payloadBackgroundText] = r.BackgroundText
	}
	return p
}

// Dependencies are the collaborators an Orchestrator drives
type Dependencies struct {
	Jobs         jobs.Service
	Lock         *jobs.ChannelLock
	Source       videosource.Source
	Embedder     Embedder
	Vectors      VectorWriter
	Documents    DocumentWriter
	Entitlements entitlement.Checker
	Creators     creators.CreatorRepository
}

// Orchestrator owns the ingestion job lifecycle. It is the only writer of
// ingestion job records.
type Orchestrator struct {
	jobs         jobs.Service
	lock         *jobs.ChannelLock
	source       videosource.Source
	embedder     Embedder
	vectors      VectorWriter
	documents    DocumentWriter
	entitlements entitlement.Checker
	creators     creators.CreatorRepository
	chunker      *chunker.Chunker
	opts         Options
	now          func() time.Time
}

// New creates an Orchestrator
func New(deps Dependencies, opts Options) *Orchestrator {
	d := DefaultOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = d.Timeout
	}
	if opts.MaxVideos <= 0 {
		opts.MaxVideos = d.MaxVideos
	}
	if opts.MaxVideoMinutes <= 0 {
		opts.MinVideoMinutes, opts.MaxVideoMinutes = d.MinVideoMinutes, d.MaxVideoMinutes
	}
	if opts.MinDescriptionLen <= 0 {
		opts.MinDescriptionLen = d.MinDescriptionLen
	}
	if deps.Entitlements == nil {
		deps.Entitlements = entitlement.AllowAll{}
	}

	return &Orchestrator{
		jobs:         deps.Jobs,
		lock:         deps.Lock,
		source:       deps.Source,
		embedder:     deps.Embedder,
		vectors:      deps.Vectors,
		documents:    deps.Documents,
		entitlements: deps.Entitlements,
		creators:     deps.Creators,
		chunker:      chunker.New(opts.Chunking),
		opts:         opts,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Start checks entitlement, takes the channel lock and queues the job for
// the worker pool. It returns without waiting for the run.
func (o *Orchestrator) Start(ctx context.Context, req Request) (*models.Job, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if o.opts.RequireEntitlement {
		ok, err := o.entitlements.IsEntitled(ctx, req.TeamID, req.ChannelID)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeServiceDown, "entitlement check failed")
		}
		if !ok {
			return nil, apperrors.NotEntitled(req.TeamID, req.ChannelID)
		}
	}

	jobID := uuid.NewString()
	acquired, err := o.lock.Acquire(ctx, req.ChannelID, req.TeamID, jobID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeServiceDown, "ingestion lock unavailable")
	}
	if !acquired {
		return nil, apperrors.IngestionInProgress(req.ChannelID, req.TeamID).WithCause(ErrIngestionInProgress)
	}

	job, err := o.jobs.EnqueueJob(ctx, models.JobTypeChannelIngestion, req.payload(),
		jobs.WithJobID(jobID),
		jobs.WithCreator(req.CreatorID),
		jobs.WithChannel(req.ChannelID, req.TeamID))
	if err != nil {
		o.releaseLock(ctx, req.ChannelID, req.TeamID, jobID)
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to create ingestion job")
	}

	o.updateCreator(ctx, job, func(c *models.Creator) {
		if req.CustomDescription != "" {
			c.CustomDescription = req.CustomDescription
		}
		if req.BackgroundText != "" {
			c.BackgroundText = req.BackgroundText
		}
		c.IngestionStatus = models.JobStatusQueued
		c.LastJobID = job.ID
		c.CanReprocess = false
	})

	log.Printf("[INFO] Queued ingestion job %s for channel %s team %s", job.ID, req.ChannelID, req.TeamID)
	return job, nil
}

// Run claims a queued job by ID and processes it on the calling goroutine
func (o *Orchestrator) Run(ctx context.Context, jobID, workerID string) error {
	job, err := o.jobs.ClaimJob(ctx, jobID, workerID)
	if err != nil {
		return err
	}
	return o.Process(ctx, job)
}

// Process runs a claimed job to a terminal state. The channel lock is
// refreshed before any work and released whatever the outcome. A job whose
// lock passed to another job while it was queued fails without running.
func (o *Orchestrator) Process(ctx context.Context, job *models.Job) error {
	held, err := o.lock.Refresh(ctx, job.ChannelID, job.TeamID, job.ID)
	if err != nil {
		log.Printf("[WARN] Could not refresh ingestion lock for job %s: %v", job.ID, err)
	} else if !held {
		return o.failLostLock(ctx, job)
	}
	defer o.releaseLock(ctx, job.ChannelID, job.TeamID, job.ID)

	o.updateCreator(ctx, job, func(c *models.Creator) {
		c.IngestionStatus = models.JobStatusProcessing
		c.LastJobID = job.ID
		c.CanReprocess = false
	})

	runCtx, cancel := context.WithTimeout(ctx, o.opts.Timeout)
	defer cancel()

	start := o.now()
	result, err := o.ingest(runCtx, job)
	if err != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		err = models.NewTimeoutError(o.opts.Timeout, err)
	}
	result.CanReprocess = true

	persistCtx, cancelPersist := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancelPersist()

	if err != nil {
		if failErr := o.jobs.FailJob(persistCtx, job.ID, err, result); failErr != nil {
			log.Printf("[ERROR] Failed to record failure of job %s: %v", job.ID, failErr)
		}
		o.finalizeCreator(persistCtx, job, result, err)
		return err
	}

	if err := o.jobs.CompleteJob(persistCtx, job.ID, result); err != nil {
		return fmt.Errorf("completing job %s: %w", job.ID, err)
	}
	o.finalizeCreator(persistCtx, job, result, nil)

	log.Printf("[INFO] Ingestion job %s finished in %s: %d/%d videos, %d chunks, %d context chunks",
		job.ID, o.now().Sub(start).Round(time.Millisecond), result.ProcessedVideos, result.TotalVideos,
		result.ProcessedChunks, result.ContextChunks)
	return nil
}

// failLostLock records a conflict on a job whose channel is owned by another
// job. The creator record belongs to the lock holder and is left alone.
func (o *Orchestrator) failLostLock(ctx context.Context, job *models.Job) error {
	conflict := models.NewConflictError("ingestion_in_progress",
		fmt.Sprintf("another ingestion took over channel %s for team %s while job %s was queued",
			job.ChannelID, job.TeamID, job.ID))

	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()
	if err := o.jobs.FailJob(persistCtx, job.ID, conflict, &models.IngestionResult{CanReprocess: true}); err != nil {
		log.Printf("[ERROR] Failed to record conflict on job %s: %v", job.ID, err)
	}
	log.Printf("[WARN] Job %s lost the ingestion lock for channel %s before it started", job.ID, job.ChannelID)
	return conflict
}

func (o *Orchestrator) releaseLock(ctx context.Context, channelID, teamID, owner string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()
	if err := o.lock.Release(ctx, channelID, teamID, owner); err != nil {
		log.Printf("[ERROR] %v", err)
	}
}

// updateCreator applies mutate to the job's creator record, creating it on
// first use. Creator bookkeeping never fails a job.
func (o *Orchestrator) updateCreator(ctx context.Context, job *models.Job, mutate func(*models.Creator)) {
	if o.creators == nil || job.CreatorID == "" {
		return
	}

	c, err := o.creators.GetCreator(ctx, job.CreatorID)
	if errors.Is(err, creators.ErrCreatorNotFound) {
		c = &models.Creator{ID: job.CreatorID, ChannelID: job.ChannelID, TeamID: job.TeamID}
	} else if err != nil {
		log.Printf("[WARN] Could not load creator %s: %v", job.CreatorID, err)
		return
	}

	mutate(c)
	if err := o.creators.SaveCreator(ctx, c); err != nil {
		log.Printf("[WARN] Could not save creator %s: %v", job.CreatorID, err)
	}
}

func (o *Orchestrator) finalizeCreator(ctx context.Context, job *models.Job, result *models.IngestionResult, runErr error) {
	o.updateCreator(ctx, job, func(c *models.Creator) {
		c.LastJobID = job.ID
		c.ProcessedVideos = result.ProcessedVideos
		c.FailedVideos = result.FailedVideos
		c.ProcessedChunks = result.ProcessedChunks
		c.TotalChunks = result.TotalChunks
		c.CanReprocess = true
		if runErr != nil {
			c.IngestionStatus = models.JobStatusFailed
			c.LastError = runErr.Error()
			return
		}
		now := o.now()
		c.IngestionStatus = models.JobStatusCompleted
		c.LastError = ""
		c.LastIngestedAt = &now
	})
}
