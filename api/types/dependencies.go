package types

import (
	"context"

	"github.com/killallgit/persona-api/internal/database"
	"github.com/killallgit/persona-api/internal/models"
	"github.com/killallgit/persona-api/internal/services/ingestion"
	"github.com/killallgit/persona-api/internal/services/jobs"
	"github.com/killallgit/persona-api/internal/services/kvstore"
	"github.com/killallgit/persona-api/internal/services/workers"
)

// IngestionStarter queues channel ingestions
type IngestionStarter interface {
	Start(ctx context.Context, req ingestion.Request) (*models.Job, error)
}

// Searcher answers hybrid queries over a creator's chunks
type Searcher interface {
	Search(ctx context.Context, creatorID, query string, limit int) []models.SearchResult
}

// CreatorReader reads creator ingestion records
type CreatorReader interface {
	GetCreator(ctx context.Context, id string) (*models.Creator, error)
	GetCreatorByChannel(ctx context.Context, channelID, teamID string) (*models.Creator, error)
	ListCreators(ctx context.Context, teamID string) ([]models.Creator, error)
}

// ChunkReader reads stored chunk documents in chunk order
type ChunkReader interface {
	FindByCreator(ctx context.Context, creatorID string, contentType models.ContentType) ([]models.ChunkDocument, error)
	Neighbors(ctx context.Context, creatorID, videoID string, chunkIndex, radius int) ([]models.ChunkDocument, error)
	CountByCreator(ctx context.Context, creatorID string) (int64, error)
}

// Dependencies holds all the dependencies needed by handlers
type Dependencies struct {
	DB         *database.DB
	KVStore    kvstore.Store
	JobService jobs.Service
	Ingestion  IngestionStarter
	Search     Searcher
	Creators   CreatorReader
	Chunks     ChunkReader
	WorkerPool *workers.WorkerPool
	Version    string
}
