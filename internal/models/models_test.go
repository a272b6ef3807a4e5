package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestChunkID(t *testing.T) {
	assert.Equal(t, "creator-1:vid42:3", ChunkID("creator-1", "vid42", 3))
	assert.Equal(t, "creator-1:CHANNEL_CONTEXT:0", ChunkID("creator-1", ChannelContextVideoID, 0))
}

func TestNewChunkDocument(t *testing.T) {
	start, end := 75, 90
	c := EmbeddedChunk{
		Chunk: Chunk{
			Text:         "knead the dough for ten minutes",
			Index:        2,
			VideoID:      "vid42",
			StartSeconds: &start,
			EndSeconds:   &end,
			Sentiment:    Sentiment{Score: 4, EmotionalIntensity: 0.5, IsHighlightCandidate: true},
		},
		VideoTitle: "Sourdough basics",
	}

	doc := NewChunkDocument("creator-1", c)

	assert.Equal(t, "creator-1:vid42:2", doc.ID)
	assert.Equal(t, ContentTypeTranscript, doc.ContentType)
	assert.Equal(t, "1:15", doc.DisplayTimestamp)
	assert.True(t, doc.IsHighlight)
	assert.Equal(t, 4, doc.SentimentScore)
	assert.Equal(t, "Sourdough basics", doc.VideoTitle)
}

func TestNewChunkDocument_ChannelContext(t *testing.T) {
	doc := NewChunkDocument("creator-1", EmbeddedChunk{
		Chunk:       Chunk{Text: "about the channel", VideoID: ChannelContextVideoID},
		ContentType: ContentTypeChannelContext,
	})

	assert.Equal(t, ContentTypeChannelContext, doc.ContentType)
	assert.Empty(t, doc.DisplayTimestamp)
}

func TestJobStates(t *testing.T) {
	tests := []struct {
		status     JobStatus
		terminal   bool
		canProcess bool
	}{
		{JobStatusQueued, false, true},
		{JobStatusProcessing, false, false},
		{JobStatusCompleted, true, false},
		{JobStatusFailed, true, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			job := &Job{Status: tt.status}
			assert.Equal(t, tt.terminal, job.IsTerminal())
			assert.Equal(t, tt.canProcess, job.CanProcess())
		})
	}
}

func TestJobProgress_Percent(t *testing.T) {
	assert.Equal(t, 0.0, JobProgress{}.Percent())
	assert.Equal(t, 50.0, JobProgress{Current: 2, Total: 4}.Percent())
}

func TestJob_GetPayloadString(t *testing.T) {
	job := &Job{Payload: JobPayload{"customDescription": "bread nerd", "maxVideos": 10}}

	v, ok := job.GetPayloadString("customDescription")
	assert.True(t, ok)
	assert.Equal(t, "bread nerd", v)

	_, ok = job.GetPayloadString("maxVideos")
	assert.False(t, ok)

	_, ok = (&Job{}).GetPayloadString("missing")
	assert.False(t, ok)
}

func TestStructuredJobError(t *testing.T) {
	cause := errors.New("context deadline exceeded")
	err := NewTimeoutError(30*time.Minute, cause)

	assert.Equal(t, "ingestion exceeded time limit of 30m0s", err.Error())
	assert.Equal(t, ErrorTypeTimeout, err.Type)
	assert.ErrorIs(t, err, cause)
}

func TestEntitlement_IsValid(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		e    Entitlement
		want bool
	}{
		{"active no expiry", Entitlement{SubscriptionActive: true, FeatureEnabled: true}, true},
		{"active future expiry", Entitlement{SubscriptionActive: true, FeatureEnabled: true, ExpiresAt: &future}, true},
		{"expired", Entitlement{SubscriptionActive: true, FeatureEnabled: true, ExpiresAt: &past}, false},
		{"subscription inactive", Entitlement{FeatureEnabled: true}, false},
		{"feature disabled", Entitlement{SubscriptionActive: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.e.IsValid(now))
		})
	}
}
