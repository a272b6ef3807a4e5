package models

import (
	"fmt"
	"time"

	"github.com/killallgit/persona-api/pkg/transcript"
)

// ChannelContextVideoID is the video ID sentinel for chunks built from
// channel descriptions rather than transcripts
const ChannelContextVideoID = "CHANNEL_CONTEXT"

// ContentType distinguishes transcript chunks from synthetic ones
type ContentType string

const (
	ContentTypeTranscript     ContentType = "transcript"
	ContentTypeChannelContext ContentType = "channel_context"
)

// Sentiment is the emotional signal attached to a chunk
type Sentiment struct {
	Score                int     `json:"score"`
	Comparative          float64 `json:"comparative"`
	ExclamationCount     int     `json:"exclamationCount"`
	QuestionCount        int     `json:"questionCount"`
	EmotionalIntensity   float64 `json:"emotionalIntensity"`
	IsHighlightCandidate bool    `json:"isHighlightCandidate"`
}

// Chunk is a bounded span of transcript text prepared for embedding.
// Chunks are never mutated after alignment; reprocessing supersedes them.
type Chunk struct {
	Text         string    `json:"text"`
	Index        int       `json:"index"`
	VideoID      string    `json:"videoId"`
	StartSeconds *int      `json:"startSeconds,omitempty"`
	EndSeconds   *int      `json:"endSeconds,omitempty"`
	Sentiment    Sentiment `json:"sentiment"`
}

// EmbeddedChunk pairs a chunk with its vector and the context needed to store it
type EmbeddedChunk struct {
	Chunk
	Vector      []float32
	ContentType ContentType
	VideoTitle  string
	VideoURL    string
}

// ChunkID is the identity shared by a chunk's vector and metadata records
func ChunkID(creatorID, videoID string, index int) string {
	return fmt.Sprintf("%s:%s:%d", creatorID, videoID, index)
}

// ChunkDocument is the metadata record for a stored chunk
type ChunkDocument struct {
	ID                 string      `json:"id" gorm:"primaryKey"`
	CreatorID          string      `json:"creatorId" gorm:"not null;index:idx_chunks_creator_video,priority:1;index:idx_chunks_creator_type,priority:1"`
	VideoID            string      `json:"videoId" gorm:"not null;index:idx_chunks_creator_video,priority:2"`
	ContentType        ContentType `json:"contentType" gorm:"not null;default:'transcript';index:idx_chunks_creator_type,priority:2"`
	ChunkIndex         int         `json:"chunkIndex" gorm:"not null"`
	Text               string      `json:"text" gorm:"type:text;not null"`
	VideoTitle         string      `json:"videoTitle"`
	VideoURL           string      `json:"videoUrl"`
	StartSeconds       *int        `json:"startSeconds"`
	EndSeconds         *int        `json:"endSeconds"`
	DisplayTimestamp   string      `json:"displayTimestamp,omitempty"`
	SentimentScore     int         `json:"sentimentScore"`
	EmotionalIntensity float64     `json:"emotionalIntensity"`
	IsHighlight        bool        `json:"isHighlight" gorm:"index"`
	CreatedAt          time.Time   `json:"createdAt"`
	UpdatedAt          time.Time   `json:"updatedAt"`
}

// TableName specifies the table name for GORM
func (ChunkDocument) TableName() string {
	return "chunk_documents"
}

// NewChunkDocument builds the metadata record for an embedded chunk
func NewChunkDocument(creatorID string, c EmbeddedChunk) *ChunkDocument {
	contentType := c.ContentType
	if contentType == "" {
		contentType = ContentTypeTranscript
	}
	doc := &ChunkDocument{
		ID:                 ChunkID(creatorID, c.VideoID, c.Index),
		CreatorID:          creatorID,
		VideoID:            c.VideoID,
		ContentType:        contentType,
		ChunkIndex:         c.Index,
		Text:               c.Text,
		VideoTitle:         c.VideoTitle,
		VideoURL:           c.VideoURL,
		StartSeconds:       c.StartSeconds,
		EndSeconds:         c.EndSeconds,
		SentimentScore:     c.Sentiment.Score,
		EmotionalIntensity: c.Sentiment.EmotionalIntensity,
		IsHighlight:        c.Sentiment.IsHighlightCandidate,
	}
	if c.StartSeconds != nil {
		doc.DisplayTimestamp = transcript.FormatTimestamp(time.Duration(*c.StartSeconds) * time.Second)
	}
	return doc
}
