// Package search answers creator-scoped queries by fusing vector similarity
// with full-text relevance.
package search

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/killallgit/persona-api/internal/models"
)

const (
	DefaultLimit          = 5
	DefaultSemanticWeight = 0.7
	DefaultKeywordWeight  = 0.3
	DefaultOverlapBoost   = 0.1
	minCandidates         = 10
)

// Embedder turns the query into a vector
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorQuerier returns the creator's most similar chunks. It fails soft.
type VectorQuerier interface {
	Query(ctx context.Context, creatorID string, vector []float32, topK int) []models.ScoredText
}

// KeywordQuerier runs a full-text query over the creator's chunks
type KeywordQuerier interface {
	KeywordSearch(ctx context.Context, creatorID, query string, limit int) ([]models.ScoredText, error)
}

// Options configures the engine
type Options struct {
	SemanticWeight float64
	KeywordWeight  float64
	OverlapBoost   float64
	DefaultLimit   int
	// UseRawQuery skips filler stripping and abbreviation expansion
	UseRawQuery bool
}

// DefaultOptions returns the standard weights with raw queries
func DefaultOptions() Options {
	return Options{
		SemanticWeight: DefaultSemanticWeight,
		KeywordWeight:  DefaultKeywordWeight,
		OverlapBoost:   DefaultOverlapBoost,
		DefaultLimit:   DefaultLimit,
		UseRawQuery:    true,
	}
}

// Engine runs semantic and keyword retrieval concurrently and fuses them
type Engine struct {
	embedder Embedder
	vectors  VectorQuerier
	keywords KeywordQuerier
	opts     Options
}

func NewEngine(embedder Embedder, vectors VectorQuerier, keywords KeywordQuerier, opts Options) *Engine {
	if opts.SemanticWeight <= 0 && opts.KeywordWeight <= 0 {
		opts.SemanticWeight = DefaultSemanticWeight
		opts.KeywordWeight = DefaultKeywordWeight
	}
	if opts.OverlapBoost < 0 {
		opts.OverlapBoost = 0
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = DefaultLimit
	}
	return &Engine{embedder: embedder, vectors: vectors, keywords: keywords, opts: opts}
}

// Search returns at most limit results for the creator, best first. Provider
// failures are logged and treated as "no results" for that half; an empty
// slice is a valid outcome.
func (e *Engine) Search(ctx context.Context, creatorID, query string, limit int) []models.SearchResult {
	if limit <= 0 {
		limit = e.opts.DefaultLimit
	}
	q := Preprocess(query, e.opts.UseRawQuery)
	if q.Raw == "" || creatorID == "" {
		return []models.SearchResult{}
	}

	semantic, keyword := e.retrieve(ctx, creatorID, q, candidateCount(limit))
	results := FuseAndRank(q.Raw, semantic, keyword, limit, Weights{
		Semantic: e.opts.SemanticWeight,
		Keyword:  e.opts.KeywordWeight,
		Overlap:  e.opts.OverlapBoost,
	})

	log.Printf("[DEBUG] Search for creator %s: %d semantic, %d keyword, %d fused",
		creatorID, len(semantic), len(keyword), len(results))
	return results
}

// retrieve runs both halves concurrently. Each half fails soft.
func (e *Engine) retrieve(ctx context.Context, creatorID string, q Query, candidates int) (semantic, keyword []models.ScoredText) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		vector, err := e.embedder.Embed(gctx, q.Semantic)
		if err != nil {
			log.Printf("[WARN] Query embedding failed for creator %s: %v", creatorID, err)
			return nil
		}
		semantic = e.vectors.Query(gctx, creatorID, vector, candidates)
		return nil
	})

	g.Go(func() error {
		results, err := e.keywords.KeywordSearch(gctx, creatorID, q.Keyword, candidates)
		if err != nil {
			log.Printf("[WARN] Keyword search failed for creator %s: %v", creatorID, err)
			return nil
		}
		keyword = results
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Printf("[WARN] Search for creator %s interrupted: %v", creatorID, err)
		return nil, nil
	}
	return semantic, keyword
}

func candidateCount(limit int) int {
	return max(2*limit, minCandidates)
}
