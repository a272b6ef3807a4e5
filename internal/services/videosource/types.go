// Package videosource lists a channel's videos and fetches their captions.
package videosource

import (
	"context"
	"errors"
	"time"

	"github.com/killallgit/persona-api/pkg/transcript"
)

var (
	// ErrChannelNotFound indicates the channel reference resolved to nothing
	ErrChannelNotFound = errors.New("channel not found")

	// ErrInvalidResponse indicates the API returned an unusable response
	ErrInvalidResponse = errors.New("invalid response from video api")
)

// Source is the video platform collaborator used by ingestion
type Source interface {
	// ListChannelVideos returns the channel and up to max of its most recent
	// uploads
	ListChannelVideos(ctx context.Context, channelRef string, max int) (*ChannelListing, error)

	// GetTranscript returns the video's captions, or nil, nil when the video
	// has none
	GetTranscript(ctx context.Context, videoID string) (*transcript.Transcript, error)
}

// Channel describes a creator's channel
type Channel struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Video is one upload with the metadata eligibility depends on
type Video struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	URL             string    `json:"url"`
	DurationMinutes float64   `json:"durationMinutes"`
	HasCaptions     bool      `json:"hasCaptions"`
	PublishedAt     time.Time `json:"publishedAt"`
}

// ChannelListing is a channel with its recent videos
type ChannelListing struct {
	Channel Channel `json:"channel"`
	Videos  []Video `json:"videos"`
}

// youtube API response shapes

type channelsResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"snippet"`
		ContentDetails struct {
			RelatedPlaylists struct {
				Uploads string `json:"uploads"`
			} `json:"relatedPlaylists"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type playlistItemsResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		ContentDetails struct {
			VideoID string `json:"videoId"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type videosResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title       string    `json:"title"`
			Description string    `json:"description"`
			PublishedAt time.Time `json:"publishedAt"`
		} `json:"snippet"`
		ContentDetails struct {
			Duration string `json:"duration"`
			Caption  string `json:"caption"`
		} `json:"contentDetails"`
	} `json:"items"`
}
