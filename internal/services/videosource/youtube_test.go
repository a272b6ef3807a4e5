package videosource

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/killallgit/persona-api/pkg/retry"
)

const sampleVTT = `WEBVTT

00:00:00.000 --> 00:00:04.000
welcome back to the workshop

00:00:04.000 --> 00:00:09.500
today we are building a bookshelf
`

func newTestClient(t *testing.T, handler http.HandlerFunc) *YouTubeClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewYouTubeClient(Config{
		APIKey:            "test-key",
		BaseURL:           srv.URL + "/youtube/v3",
		CaptionURL:        srv.URL + "/timedtext",
		RequestsPerMinute: 60000,
		BurstSize:         100,
		Timeout:           2 * time.Second,
		Policy:            retry.Policy{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond},
	})
}

func TestListChannelVideos(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		switch r.URL.Path {
		case "/youtube/v3/channels":
			assert.Equal(t, "@woodshop", r.URL.Query().Get("forHandle"))
			fmt.Fprint(w, `{"items":[{"id":"UC123","snippet":{"title":"Wood Shop","description":"Weekly furniture builds"},"contentDetails":{"relatedPlaylists":{"uploads":"UU123"}}}]}`)
		case "/youtube/v3/playlistItems":
			if r.URL.Query().Get("pageToken") == "" {
				fmt.Fprint(w, `{"nextPageToken":"p2","items":[{"contentDetails":{"videoId":"v1"}},{"contentDetails":{"videoId":"v2"}}]}`)
				return
			}
			fmt.Fprint(w, `{"items":[{"contentDetails":{"videoId":"v3"}}]}`)
		case "/youtube/v3/videos":
			assert.Equal(t, "v1,v2,v3", r.URL.Query().Get("id"))
			fmt.Fprint(w, `{"items":[
				{"id":"v1","snippet":{"title":"Bookshelf","publishedAt":"2024-05-01T10:00:00Z"},"contentDetails":{"duration":"PT12M30S","caption":"true"}},
				{"id":"v2","snippet":{"title":"Short"},"contentDetails":{"duration":"PT45S","caption":"false"}},
				{"id":"v3","snippet":{"title":"Marathon"},"contentDetails":{"duration":"PT1H2M","caption":"true"}}
			]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	listing, err := client.ListChannelVideos(context.Background(), "@woodshop", 10)
	require.NoError(t, err)
	assert.Equal(t, "UC123", listing.Channel.ID)
	assert.Equal(t, "Weekly furniture builds", listing.Channel.Description)
	require.Len(t, listing.Videos, 3)

	assert.InDelta(t, 12.5, listing.Videos[0].DurationMinutes, 1e-9)
	assert.True(t, listing.Videos[0].HasCaptions)
	assert.Equal(t, "https://www.youtube.com/watch?v=v1", listing.Videos[0].URL)
	assert.False(t, listing.Videos[1].HasCaptions)
	assert.InDelta(t, 62.0, listing.Videos[2].DurationMinutes, 1e-9)
}

func TestListChannelVideos_RespectsMax(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/youtube/v3/channels":
			assert.Equal(t, "UC1", r.URL.Query().Get("id"))
			fmt.Fprint(w, `{"items":[{"id":"UC1","contentDetails":{"relatedPlaylists":{"uploads":"UU1"}}}]}`)
		case "/youtube/v3/playlistItems":
			assert.Equal(t, "2", r.URL.Query().Get("maxResults"))
			fmt.Fprint(w, `{"nextPageToken":"more","items":[{"contentDetails":{"videoId":"a"}},{"contentDetails":{"videoId":"b"}}]}`)
		case "/youtube/v3/videos":
			fmt.Fprint(w, `{"items":[{"id":"a","contentDetails":{"duration":"PT5M"}},{"id":"b","contentDetails":{"duration":"PT6M"}}]}`)
		}
	})

	listing, err := client.ListChannelVideos(context.Background(), "UC1", 2)
	require.NoError(t, err)
	assert.Len(t, listing.Videos, 2)
}

func TestListChannelVideos_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items":[]}`)
	})

	_, err := client.ListChannelVideos(context.Background(), "UCmissing", 5)
	require.ErrorIs(t, err, ErrChannelNotFound)
	assert.Equal(t, retry.ClassUnavailable, retry.Classify(err))
}

func TestListChannelVideos_RetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"items":[{"id":"UC1","snippet":{"title":"Ok"}}]}`)
	})

	listing, err := client.ListChannelVideos(context.Background(), "UC1", 5)
	require.NoError(t, err)
	assert.Equal(t, "Ok", listing.Channel.Title)
	assert.Equal(t, int32(3), calls.Load())
}

func TestListChannelVideos_AuthErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":{"message":"API key invalid"}}`)
	})

	_, err := client.ListChannelVideos(context.Background(), "UC1", 5)
	require.Error(t, err)
	assert.Equal(t, retry.ClassAuth, retry.Classify(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetTranscript(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/timedtext", r.URL.Path)
		assert.Equal(t, "vtt", r.URL.Query().Get("fmt"))
		switch r.URL.Query().Get("v") {
		case "with-captions":
			w.Header().Set("Content-Type", "text/vtt")
			fmt.Fprint(w, sampleVTT)
		default:
			w.WriteHeader(http.StatusOK)
		}
	})

	tr, err := client.GetTranscript(context.Background(), "with-captions")
	require.NoError(t, err)
	require.NotNil(t, tr)
	require.Len(t, tr.Segments, 2)
	assert.True(t, strings.Contains(tr.FullText, "bookshelf"))

	tr, err = client.GetTranscript(context.Background(), "no-captions")
	require.NoError(t, err)
	assert.Nil(t, tr)
}

func TestParseISODuration(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{"PT12M30S", 12.5, false},
		{"PT1H", 60, false},
		{"PT45S", 0.75, false},
		{"P1DT1M", 1441, false},
		{"PT0S", 0, false},
		{"", 0, true},
		{"PT", 0, true},
		{"12:30", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseISODuration(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}
