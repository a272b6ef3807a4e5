package ingestion

import (
	"context"

	"github.com/killallgit/persona-api/internal/models"
	"github.com/killallgit/persona-api/internal/services/workers"
)

// Processor runs channel ingestion jobs claimed by the worker pool
type Processor struct {
	orchestrator *Orchestrator
}

// Ensure Processor implements JobProcessor interface
var _ workers.JobProcessor = (*Processor)(nil)

// NewProcessor creates a worker pool processor backed by o
func NewProcessor(o *Orchestrator) *Processor {
	return &Processor{orchestrator: o}
}

func (p *Processor) CanProcess(jobType models.JobType) bool {
	return jobType == models.JobTypeChannelIngestion
}

func (p *Processor) ProcessJob(ctx context.Context, job *models.Job) error {
	return p.orchestrator.Process(ctx, job)
}
