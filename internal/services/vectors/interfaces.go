// Package vectors stores chunk embeddings per creator and answers top-K
// similarity queries.
package vectors

import (
	"context"
	"errors"
)

var (
	// ErrDimensionMismatch is returned when a vector does not match the
	// dimension the index was created with
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrIndexNotReady is returned when the index has not been ensured
	ErrIndexNotReady = errors.New("vector index not initialized")
)

// Metadata is stored alongside each vector
type Metadata struct {
	CreatorID    string `json:"creator_id"`
	VideoID      string `json:"video_id"`
	ContentType  string `json:"content_type"`
	ChunkIndex   int    `json:"chunk_index"`
	Text         string `json:"text"`
	VideoTitle   string `json:"video_title,omitempty"`
	StartSeconds *int   `json:"start_seconds,omitempty"`
}

// Record is a vector with its identity and metadata
type Record struct {
	ID       string
	Vector   []float32
	Metadata Metadata
}

// Filter restricts queries and deletes; empty fields match anything
type Filter struct {
	CreatorID   string
	VideoID     string
	ContentType string
}

// Match is a query hit with its cosine similarity
type Match struct {
	ID       string
	Score    float64
	Metadata Metadata
}

// IndexProvider is the narrow interface a vector database adapter implements
type IndexProvider interface {
	// EnsureIndex creates the index if missing. An existing index with a
	// different dimension yields ErrDimensionMismatch.
	EnsureIndex(ctx context.Context, name string, dim int) error

	// Upsert writes records, replacing any with the same ID
	Upsert(ctx context.Context, records []Record) error

	// Query returns up to topK matches scoring at least minScore
	Query(ctx context.Context, vector []float32, topK int, filter Filter, minScore float64) ([]Match, error)

	// DeleteMany removes records by ID
	DeleteMany(ctx context.Context, ids []string) error

	// DeleteByFilter removes every record matching filter
	DeleteByFilter(ctx context.Context, filter Filter) error

	// Name identifies the provider in logs
	Name() string
}
