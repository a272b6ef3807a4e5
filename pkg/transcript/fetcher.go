package transcript

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// FetchOptions configures transcript fetching behavior
type FetchOptions struct {
	Timeout   time.Duration
	UserAgent string
	MaxSize   int64 // Maximum transcript size in bytes
}

// DefaultFetchOptions returns default fetch options
func DefaultFetchOptions() FetchOptions {
	return FetchOptions{
		Timeout:   30 * time.Second,
		UserAgent: "PersonaAPI/1.0",
		MaxSize:   5 * 1024 * 1024,
	}
}

// Fetcher downloads caption tracks over HTTP
type Fetcher struct {
	client  *http.Client
	options FetchOptions
	parser  *Parser
}

// NewFetcher creates a new transcript fetcher
func NewFetcher(options FetchOptions) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: options.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        5,
				IdleConnTimeout:     30 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		options: options,
		parser:  NewParser(),
	}
}

// TranscriptResult contains the fetched transcript and metadata
type TranscriptResult struct {
	Content     string
	Format      TranscriptFormat
	ContentType string
	Size        int64
}

// Fetch downloads a caption track. An empty body (no captions published for
// the requested language) yields a result with empty Content.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*TranscriptResult, error) {
	if url == "" {
		return nil, fmt.Errorf("empty transcript URL")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.options.UserAgent)
	req.Header.Set("Accept", "text/vtt,application/x-subrip,text/xml,application/json,*/*")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transcript: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcript server returned status %d", resp.StatusCode)
	}

	if resp.ContentLength > f.options.MaxSize {
		return nil, fmt.Errorf("transcript too large: %d bytes (max: %d)", resp.ContentLength, f.options.MaxSize)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.options.MaxSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}

	content := string(body)
	contentType := resp.Header.Get("Content-Type")

	return &TranscriptResult{
		Content:     content,
		Format:      detectFormat(url, contentType, content),
		ContentType: contentType,
		Size:        int64(len(body)),
	}, nil
}

// FetchParsed downloads and parses a caption track. It returns nil, nil when
// the track is empty.
func (f *Fetcher) FetchParsed(ctx context.Context, url string) (*Transcript, error) {
	result, err := f.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(result.Content) == "" {
		return nil, nil
	}
	return f.parser.Parse(result.Content, result.Format)
}

// detectFormat determines the transcript format from URL, content type, and content
func detectFormat(url, contentType, content string) TranscriptFormat {
	urlLower := strings.ToLower(url)
	switch {
	case strings.HasSuffix(urlLower, ".vtt") || strings.Contains(urlLower, "fmt=vtt"):
		return FormatVTT
	case strings.HasSuffix(urlLower, ".srt") || strings.Contains(urlLower, "fmt=srt"):
		return FormatSRT
	case strings.HasSuffix(urlLower, ".json") || strings.Contains(urlLower, "fmt=json3"):
		return FormatJSON
	case strings.HasSuffix(urlLower, ".txt"):
		return FormatText
	}

	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "vtt"):
		return FormatVTT
	case strings.Contains(ct, "subrip") || strings.Contains(ct, "srt"):
		return FormatSRT
	case strings.Contains(ct, "json"):
		return FormatJSON
	case strings.Contains(ct, "xml"):
		return FormatTimedText
	}

	head := strings.TrimSpace(content)
	if len(head) > 200 {
		head = head[:200]
	}
	switch {
	case strings.HasPrefix(head, "WEBVTT"):
		return FormatVTT
	case strings.HasPrefix(head, "<?xml") || strings.HasPrefix(head, "<transcript") || strings.HasPrefix(head, "<timedtext"):
		return FormatTimedText
	case strings.Contains(head, "-->"):
		return FormatSRT
	case strings.HasPrefix(head, "{") || strings.HasPrefix(head, "["):
		return FormatJSON
	default:
		return FormatText
	}
}
