// Package documents persists chunk metadata records and serves keyword search
// over them.
package documents

import (
	"context"

	"github.com/killallgit/persona-api/internal/models"
)

// ChunkRepository defines the interface for chunk document persistence
type ChunkRepository interface {
	// Write operations
	Upsert(ctx context.Context, docs []*models.ChunkDocument) error
	DeleteIDs(ctx context.Context, ids []string) error
	DeleteByVideo(ctx context.Context, creatorID, videoID string) (int64, error)

	// Read operations
	FindByCreator(ctx context.Context, creatorID string, contentType models.ContentType) ([]models.ChunkDocument, error)
	ChunkIDs(ctx context.Context, creatorID, videoID string) ([]string, error)
	StaleIDs(ctx context.Context, creatorID, videoID string, keep int) ([]string, error)
	Neighbors(ctx context.Context, creatorID, videoID string, chunkIndex, radius int) ([]models.ChunkDocument, error)
	CountByCreator(ctx context.Context, creatorID string) (int64, error)
	Count(ctx context.Context) (int64, error)
	All(ctx context.Context, fn func(batch []models.ChunkDocument) error) error
}

// KeywordSearcher defines the full-text side of document search
type KeywordSearcher interface {
	Index(ctx context.Context, docs []*models.ChunkDocument) error
	Delete(ctx context.Context, ids []string) error
	Search(ctx context.Context, creatorID, query string, limit int) ([]models.ScoredText, error)
	Count() (uint64, error)
	Close() error
}
