package vectors

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"github.com/killallgit/persona-api/internal/models"
	"github.com/killallgit/persona-api/pkg/retry"
)

const (
	DefaultBatchSize      = 100
	DefaultBatchDelay     = 200 * time.Millisecond
	DefaultMinScore       = 0.25
	DefaultMaxStoredChars = 4000
	DefaultTopK           = 10
)

// Options configures a Store
type Options struct {
	IndexName      string
	Dimensions     int
	BatchSize      int
	BatchDelay     time.Duration
	MinScore       float64
	MaxStoredChars int
	Policy         retry.Policy
}

// Store is the tenant-aware facade over an IndexProvider. Writes fail hard;
// queries fail soft and return no results.
type Store struct {
	provider IndexProvider
	opts     Options
	limiter  *rate.Limiter
}

// NewStore creates a Store over provider
func NewStore(provider IndexProvider, opts Options) *Store {
	if opts.BatchSize <= 0 || opts.BatchSize > DefaultBatchSize {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.BatchDelay < 0 {
		opts.BatchDelay = 0
	}
	if opts.MinScore <= 0 {
		opts.MinScore = DefaultMinScore
	}
	if opts.MaxStoredChars <= 0 {
		opts.MaxStoredChars = DefaultMaxStoredChars
	}
	if opts.Policy.MaxAttempts == 0 {
		opts.Policy = retry.DefaultPolicy()
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.BatchDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.BatchDelay), 1)
	}

	return &Store{provider: provider, opts: opts, limiter: limiter}
}

// EnsureIndex creates the index with the configured dimension
func (s *Store) EnsureIndex(ctx context.Context) error {
	if err := s.provider.EnsureIndex(ctx, s.opts.IndexName, s.opts.Dimensions); err != nil {
		return fmt.Errorf("ensuring %s index %q: %w", s.provider.Name(), s.opts.IndexName, err)
	}
	return nil
}

// Dimensions returns the fixed vector dimension
func (s *Store) Dimensions() int {
	return s.opts.Dimensions
}

// Upsert writes chunks for one video of one creator. Records are keyed by
// creator, video and chunk index, so writing the same chunk again replaces it.
func (s *Store) Upsert(ctx context.Context, creatorID, videoID string, chunks []models.EmbeddedChunk) error {
	records := make([]Record, 0, len(chunks))
	for _, c := range chunks {
		if len(c.Vector) != s.opts.Dimensions {
			return fmt.Errorf("%w: chunk %d has %d, index has %d", ErrDimensionMismatch, c.Index, len(c.Vector), s.opts.Dimensions)
		}
		contentType := c.ContentType
		if contentType == "" {
			contentType = models.ContentTypeTranscript
		}
		records = append(records, Record{
			ID:     models.ChunkID(creatorID, videoID, c.Index),
			Vector: c.Vector,
			Metadata: Metadata{
				CreatorID:    creatorID,
				VideoID:      videoID,
				ContentType:  string(contentType),
				ChunkIndex:   c.Index,
				Text:         truncate(c.Text, s.opts.MaxStoredChars),
				VideoTitle:   c.VideoTitle,
				StartSeconds: c.StartSeconds,
			},
		})
	}

	for start := 0; start < len(records); start += s.opts.BatchSize {
		end := min(start+s.opts.BatchSize, len(records))
		batch := records[start:end]

		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("waiting between vector batches: %w", err)
		}
		_, err := retry.Do(ctx, s.opts.Policy, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.provider.Upsert(ctx, batch)
		})
		if err != nil {
			return fmt.Errorf("upserting vectors %d-%d for video %s: %w", start, end-1, videoID, err)
		}
	}

	log.Printf("[DEBUG] Upserted %d vectors for creator %s video %s", len(records), creatorID, videoID)
	return nil
}

// Query returns the creator's chunks most similar to vector, best first.
// Matches scoring below the minimum similarity are dropped. Provider errors
// are logged and yield no results.
func (s *Store) Query(ctx context.Context, creatorID string, vector []float32, topK int) []models.ScoredText {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if len(vector) != s.opts.Dimensions {
		log.Printf("[WARN] Vector query for creator %s rejected: %v (got %d, want %d)",
			creatorID, ErrDimensionMismatch, len(vector), s.opts.Dimensions)
		return []models.ScoredText{}
	}

	matches, err := s.provider.Query(ctx, vector, topK, Filter{CreatorID: creatorID}, s.opts.MinScore)
	if err != nil {
		log.Printf("[WARN] Vector query for creator %s failed: %v", creatorID, err)
		return []models.ScoredText{}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })

	results := make([]models.ScoredText, 0, len(matches))
	for _, m := range matches {
		if m.Score < s.opts.MinScore || m.Metadata.CreatorID != creatorID {
			continue
		}
		results = append(results, models.ScoredText{
			ID:       m.ID,
			Text:     m.Metadata.Text,
			Score:    m.Score,
			Metadata: m.Metadata.toMap(),
		})
		if len(results) == topK {
			break
		}
	}
	return results
}

// DeleteByVideo removes every vector of one creator's video
func (s *Store) DeleteByVideo(ctx context.Context, creatorID, videoID string) error {
	if err := s.provider.DeleteByFilter(ctx, Filter{CreatorID: creatorID, VideoID: videoID}); err != nil {
		return fmt.Errorf("deleting vectors for video %s: %w", videoID, err)
	}
	return nil
}

// DeleteIDs removes vectors by chunk identity
func (s *Store) DeleteIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.provider.DeleteMany(ctx, ids); err != nil {
		return fmt.Errorf("deleting %d vectors: %w", len(ids), err)
	}
	return nil
}

func (m Metadata) toMap() map[string]interface{} {
	out := map[string]interface{}{
		"creatorId":   m.CreatorID,
		"videoId":     m.VideoID,
		"contentType": m.ContentType,
		"chunkIndex":  m.ChunkIndex,
	}
	if m.VideoTitle != "" {
		out["videoTitle"] = m.VideoTitle
	}
	if m.StartSeconds != nil {
		out["startSeconds"] = *m.StartSeconds
	}
	return out
}

func truncate(s string, maxChars int) string {
	r := []rune(s)
	if len(r) <= maxChars {
		return s
	}
	return string(r[:maxChars])
}
