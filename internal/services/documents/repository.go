package documents

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/killallgit/persona-api/internal/models"
)

const scanBatchSize = 500

type Repository struct {
	db *gorm.DB
}

// Ensure Repository implements ChunkRepository interface
var _ ChunkRepository = (*Repository)(nil)

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Upsert writes documents keyed by chunk identity, keeping the original
// creation time of records that already exist
func (r *Repository) Upsert(ctx context.Context, docs []*models.ChunkDocument) error {
	if len(docs) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"creator_id", "video_id", "content_type", "chunk_index", "text",
				"video_title", "video_url", "start_seconds", "end_seconds", "display_timestamp",
				"sentiment_score", "emotional_intensity", "is_highlight", "updated_at",
			}),
		}).
		CreateInBatches(docs, 100).Error
	if err != nil {
		return fmt.Errorf("upserting chunk documents: %w", err)
	}
	return nil
}

func (r *Repository) DeleteIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.ChunkDocument{}).Error; err != nil {
		return fmt.Errorf("deleting chunk documents: %w", err)
	}
	return nil
}

func (r *Repository) DeleteByVideo(ctx context.Context, creatorID, videoID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("creator_id = ? AND video_id = ?", creatorID, videoID).
		Delete(&models.ChunkDocument{})
	if result.Error != nil {
		return 0, fmt.Errorf("deleting chunk documents for video %s: %w", videoID, result.Error)
	}
	return result.RowsAffected, nil
}

// FindByCreator returns a creator's documents in chunk order. An empty
// contentType returns every type.
func (r *Repository) FindByCreator(ctx context.Context, creatorID string, contentType models.ContentType) ([]models.ChunkDocument, error) {
	var docs []models.ChunkDocument
	q := r.db.WithContext(ctx).Where("creator_id = ?", creatorID)
	if contentType != "" {
		q = q.Where("content_type = ?", contentType)
	}
	if err := q.Order("video_id ASC, chunk_index ASC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("finding chunk documents: %w", err)
	}
	return docs, nil
}

func (r *Repository) ChunkIDs(ctx context.Context, creatorID, videoID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.ChunkDocument{}).
		Where("creator_id = ? AND video_id = ?", creatorID, videoID).
		Order("chunk_index ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("listing chunk ids: %w", err)
	}
	return ids, nil
}

// StaleIDs returns the IDs of a video's chunks at or beyond keep, which a
// shorter re-ingestion of the video no longer covers
func (r *Repository) StaleIDs(ctx context.Context, creatorID, videoID string, keep int) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.ChunkDocument{}).
		Where("creator_id = ? AND video_id = ? AND chunk_index >= ?", creatorID, videoID, keep).
		Order("chunk_index ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("listing stale chunk ids: %w", err)
	}
	return ids, nil
}

// Neighbors returns the chunks within radius of chunkIndex in the same video,
// in chunk order
func (r *Repository) Neighbors(ctx context.Context, creatorID, videoID string, chunkIndex, radius int) ([]models.ChunkDocument, error) {
	if radius < 0 {
		radius = 0
	}
	var docs []models.ChunkDocument
	err := r.db.WithContext(ctx).
		Where("creator_id = ? AND video_id = ?", creatorID, videoID).
		Where("chunk_index BETWEEN ? AND ?", chunkIndex-radius, chunkIndex+radius).
		Order("chunk_index ASC").
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("finding neighbouring chunks: %w", err)
	}
	return docs, nil
}

func (r *Repository) CountByCreator(ctx context.Context, creatorID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ChunkDocument{}).
		Where("creator_id = ?", creatorID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting chunk documents: %w", err)
	}
	return count, nil
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ChunkDocument{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting chunk documents: %w", err)
	}
	return count, nil
}

// All streams every document in batches
func (r *Repository) All(ctx context.Context, fn func(batch []models.ChunkDocument) error) error {
	var batch []models.ChunkDocument
	result := r.db.WithContext(ctx).
		FindInBatches(&batch, scanBatchSize, func(tx *gorm.DB, _ int) error {
			return fn(batch)
		})
	if result.Error != nil {
		return fmt.Errorf("scanning chunk documents: %w", result.Error)
	}
	return nil
}
