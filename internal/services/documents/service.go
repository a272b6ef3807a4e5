package documents

import (
	"context"
	"fmt"
	"log"

	"github.com/killallgit/persona-api/internal/models"
)

// Service keeps the metadata records and the keyword index in step
type Service struct {
	repo     ChunkRepository
	keywords KeywordSearcher
}

func NewService(repo ChunkRepository, keywords KeywordSearcher) *Service {
	return &Service{repo: repo, keywords: keywords}
}

// Replace writes a video's chunks and removes any chunks left over from a
// longer earlier ingestion. It returns the removed IDs so the caller can
// drop the matching vectors.
func (s *Service) Replace(ctx context.Context, creatorID, videoID string, chunks []models.EmbeddedChunk) ([]string, error) {
	docs := make([]*models.ChunkDocument, 0, len(chunks))
	for _, c := range chunks {
		c.VideoID = videoID
		docs = append(docs, models.NewChunkDocument(creatorID, c))
	}

	if err := s.repo.Upsert(ctx, docs); err != nil {
		return nil, err
	}
	if err := s.keywords.Index(ctx, docs); err != nil {
		return nil, err
	}

	stale, err := s.repo.StaleIDs(ctx, creatorID, videoID, len(chunks))
	if err != nil {
		return nil, err
	}
	if len(stale) > 0 {
		if err := s.repo.DeleteIDs(ctx, stale); err != nil {
			return nil, err
		}
		if err := s.keywords.Delete(ctx, stale); err != nil {
			return nil, err
		}
		log.Printf("[DEBUG] Removed %d stale chunks for video %s", len(stale), videoID)
	}
	return stale, nil
}

// DeleteByVideo removes every record of one creator's video
func (s *Service) DeleteByVideo(ctx context.Context, creatorID, videoID string) error {
	ids, err := s.repo.ChunkIDs(ctx, creatorID, videoID)
	if err != nil {
		return err
	}
	if _, err := s.repo.DeleteByVideo(ctx, creatorID, videoID); err != nil {
		return err
	}
	return s.keywords.Delete(ctx, ids)
}

// KeywordSearch runs a full-text query over the creator's chunks
func (s *Service) KeywordSearch(ctx context.Context, creatorID, query string, limit int) ([]models.ScoredText, error) {
	return s.keywords.Search(ctx, creatorID, query, limit)
}

// FindByCreator lists a creator's chunks in chunk order, optionally limited
// to one content type
func (s *Service) FindByCreator(ctx context.Context, creatorID string, contentType models.ContentType) ([]models.ChunkDocument, error) {
	return s.repo.FindByCreator(ctx, creatorID, contentType)
}

// Neighbors returns the chunks surrounding a chunk in its video
func (s *Service) Neighbors(ctx context.Context, creatorID, videoID string, chunkIndex, radius int) ([]models.ChunkDocument, error) {
	return s.repo.Neighbors(ctx, creatorID, videoID, chunkIndex, radius)
}

// CountByCreator returns how many chunks a creator has stored
func (s *Service) CountByCreator(ctx context.Context, creatorID string) (int64, error) {
	return s.repo.CountByCreator(ctx, creatorID)
}

// Reindex rebuilds the keyword index from the metadata records. It is used at
// startup when the keyword index lives in memory, or has fallen behind.
func (s *Service) Reindex(ctx context.Context) (int, error) {
	total := 0
	err := s.repo.All(ctx, func(batch []models.ChunkDocument) error {
		docs := make([]*models.ChunkDocument, len(batch))
		for i := range batch {
			docs[i] = &batch[i]
		}
		if err := s.keywords.Index(ctx, docs); err != nil {
			return err
		}
		total += len(docs)
		return nil
	})
	if err != nil {
		return total, fmt.Errorf("reindexing keyword index: %w", err)
	}
	log.Printf("[INFO] Keyword index rebuilt with %d chunks", total)
	return total, nil
}

// NeedsReindex reports whether the keyword index holds fewer documents than
// the metadata store
func (s *Service) NeedsReindex(ctx context.Context) (bool, error) {
	indexed, err := s.keywords.Count()
	if err != nil {
		return false, fmt.Errorf("counting keyword documents: %w", err)
	}
	stored, err := s.repo.Count(ctx)
	if err != nil {
		return false, err
	}
	return uint64(stored) > indexed, nil
}
