package videosource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/killallgit/persona-api/pkg/retry"
	"github.com/killallgit/persona-api/pkg/transcript"
)

const maxPageSize = 50

var isoDurationRegex = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

// Config holds configuration for the YouTube client
type Config struct {
	APIKey     string
	BaseURL    string // Default: https://www.googleapis.com/youtube/v3
	CaptionURL string // Default: https://video.google.com/timedtext
	Language   string // Default: en

	// Rate limiting
	RequestsPerMinute int // Default: 120
	BurstSize         int // Default: 5

	// HTTP configuration
	Timeout   time.Duration // Default: 20s
	UserAgent string
	Policy    retry.Policy
}

// YouTubeClient implements Source against the YouTube Data API v3
type YouTubeClient struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	fetcher     *transcript.Fetcher
	config      Config
}

// Ensure YouTubeClient implements Source interface
var _ Source = (*YouTubeClient)(nil)

// NewYouTubeClient creates a new YouTube client
func NewYouTubeClient(cfg Config) *YouTubeClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.googleapis.com/youtube/v3"
	}
	if cfg.CaptionURL == "" {
		cfg.CaptionURL = "https://video.google.com/timedtext"
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.RequestsPerMinute == 0 {
		cfg.RequestsPerMinute = 120
	}
	if cfg.BurstSize == 0 {
		cfg.BurstSize = 5
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = transcript.DefaultFetchOptions().UserAgent
	}
	if cfg.Policy.MaxAttempts == 0 {
		cfg.Policy = retry.DefaultPolicy()
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	fetchOpts := transcript.DefaultFetchOptions()
	fetchOpts.Timeout = cfg.Timeout
	fetchOpts.UserAgent = cfg.UserAgent

	return &YouTubeClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		rateLimiter: rate.NewLimiter(
			rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)),
			cfg.BurstSize,
		),
		fetcher: transcript.NewFetcher(fetchOpts),
		config:  cfg,
	}
}

// ListChannelVideos resolves the channel by ID or @handle and returns up to
// max of its latest uploads with duration and caption flags
func (c *YouTubeClient) ListChannelVideos(ctx context.Context, channelRef string, max int) (*ChannelListing, error) {
	if max <= 0 {
		max = maxPageSize
	}

	params := url.Values{"part": {"snippet,contentDetails"}}
	if strings.HasPrefix(channelRef, "@") {
		params.Set("forHandle", channelRef)
	} else {
		params.Set("id", channelRef)
	}

	var channels channelsResponse
	if err := c.get(ctx, "/channels", params, &channels); err != nil {
		return nil, fmt.Errorf("lookup channel %s: %w", channelRef, err)
	}
	if len(channels.Items) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrChannelNotFound, channelRef)
	}
	item := channels.Items[0]
	listing := &ChannelListing{
		Channel: Channel{
			ID:          item.ID,
			Title:       item.Snippet.Title,
			Description: item.Snippet.Description,
		},
	}

	uploads := item.ContentDetails.RelatedPlaylists.Uploads
	if uploads == "" {
		return listing, nil
	}

	ids, err := c.uploadIDs(ctx, uploads, max)
	if err != nil {
		return nil, err
	}

	for start := 0; start < len(ids); start += maxPageSize {
		end := min(start+maxPageSize, len(ids))
		videos, err := c.videoDetails(ctx, ids[start:end])
		if err != nil {
			return nil, err
		}
		listing.Videos = append(listing.Videos, videos...)
	}

	log.Printf("[DEBUG] Listed %d videos for channel %s", len(listing.Videos), listing.Channel.ID)
	return listing, nil
}

// GetTranscript fetches the caption track for a video. Videos without
// captions return nil, nil.
func (c *YouTubeClient) GetTranscript(ctx context.Context, videoID string) (*transcript.Transcript, error) {
	params := url.Values{
		"v":    {videoID},
		"lang": {c.config.Language},
		"fmt":  {"vtt"},
	}
	trackURL := c.config.CaptionURL + "?" + params.Encode()

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	t, err := retry.Do(ctx, c.config.Policy, func(ctx context.Context) (*transcript.Transcript, error) {
		return c.fetcher.FetchParsed(ctx, trackURL)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch transcript for video %s: %w", videoID, err)
	}
	if t == nil || len(t.Segments) == 0 {
		return nil, nil
	}
	return t, nil
}

func (c *YouTubeClient) uploadIDs(ctx context.Context, playlistID string, max int) ([]string, error) {
	var ids []string
	pageToken := ""
	for len(ids) < max {
		params := url.Values{
			"part":       {"contentDetails"},
			"playlistId": {playlistID},
			"maxResults": {strconv.Itoa(min(maxPageSize, max-len(ids)))},
		}
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		var page playlistItemsResponse
		if err := c.get(ctx, "/playlistItems", params, &page); err != nil {
			return nil, fmt.Errorf("list uploads: %w", err)
		}
		for _, item := range page.Items {
			if item.ContentDetails.VideoID != "" && len(ids) < max {
				ids = append(ids, item.ContentDetails.VideoID)
			}
		}
		if page.NextPageToken == "" || len(page.Items) == 0 {
			break
		}
		pageToken = page.NextPageToken
	}
	return ids, nil
}

func (c *YouTubeClient) videoDetails(ctx context.Context, ids []string) ([]Video, error) {
	params := url.Values{
		"part": {"snippet,contentDetails"},
		"id":   {strings.Join(ids, ",")},
	}
	var resp videosResponse
	if err := c.get(ctx, "/videos", params, &resp); err != nil {
		return nil, fmt.Errorf("video details: %w", err)
	}

	videos := make([]Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		minutes, err := ParseISODuration(item.ContentDetails.Duration)
		if err != nil {
			log.Printf("[WARN] Video %s has unparseable duration %q", item.ID, item.ContentDetails.Duration)
		}
		videos = append(videos, Video{
			ID:              item.ID,
			Title:           item.Snippet.Title,
			Description:     item.Snippet.Description,
			URL:             "https://www.youtube.com/watch?v=" + item.ID,
			DurationMinutes: minutes,
			HasCaptions:     item.ContentDetails.Caption == "true",
			PublishedAt:     item.Snippet.PublishedAt,
		})
	}
	return videos, nil
}

// get performs a rate-limited, retried GET against the data API and decodes
// the JSON body into out
func (c *YouTubeClient) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	if c.config.APIKey != "" {
		params.Set("key", c.config.APIKey)
	}
	endpoint := c.config.BaseURL + path + "?" + params.Encode()

	body, err := retry.Do(ctx, c.config.Policy, func(ctx context.Context) ([]byte, error) {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, retry.Permanent(fmt.Errorf("rate limiter: %w", err))
		}
		return c.doRequest(ctx, endpoint)
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

func (c *YouTubeClient) doRequest(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("youtube status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

// ParseISODuration converts an ISO 8601 duration such as PT12M30S to minutes
func ParseISODuration(s string) (float64, error) {
	m := isoDurationRegex.FindStringSubmatch(s)
	if m == nil || s == "P" || s == "PT" {
		return 0, fmt.Errorf("invalid ISO 8601 duration %q", s)
	}
	var seconds float64
	units := []float64{86400, 3600, 60, 1}
	for i, unit := range units {
		if m[i+1] == "" {
			continue
		}
		v, err := strconv.ParseFloat(m[i+1], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid ISO 8601 duration %q: %w", s, err)
		}
		seconds += v * unit
	}
	return seconds / 60, nil
}
