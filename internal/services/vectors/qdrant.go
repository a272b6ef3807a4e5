package vectors

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// QdrantProvider talks to Qdrant over its REST API. Qdrant point IDs must be
// UUIDs or integers, so each chunk ID maps to a name-based UUID and the
// original ID travels in the payload.
type QdrantProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client

	mu         sync.RWMutex
	collection string
}

// NewQdrantProvider creates a Qdrant provider
func NewQdrantProvider(url, apiKey string, timeout time.Duration) *QdrantProvider {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &QdrantProvider{
		baseURL: strings.TrimRight(url, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// Name identifies the provider
func (q *QdrantProvider) Name() string {
	return "qdrant"
}

// EnsureIndex creates the collection with cosine distance when Qdrant reports
// it missing, or checks the dimension of an existing one
func (q *QdrantProvider) EnsureIndex(ctx context.Context, name string, dim int) error {
	data, err := q.doRequest(ctx, http.MethodGet, "/collections/"+name, nil)
	var statusErr *qdrantStatusError
	switch {
	case err == nil:
		var info struct {
			Result struct {
				Config struct {
					Params struct {
						Vectors struct {
							Size int `json:"size"`
						} `json:"vectors"`
					} `json:"params"`
				} `json:"config"`
			} `json:"result"`
		}
		if jsonErr := json.Unmarshal(data, &info); jsonErr == nil {
			if size := info.Result.Config.Params.Vectors.Size; size != 0 && size != dim {
				return fmt.Errorf("%w: collection %q has %d, requested %d", ErrDimensionMismatch, name, size, dim)
			}
		}
	case errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound:
		req := map[string]any{
			"vectors": map[string]any{
				"size":     dim,
				"distance": "Cosine",
			},
		}
		if _, err := q.doRequest(ctx, http.MethodPut, "/collections/"+name, req); err != nil {
			return err
		}
		for _, field := range []string{"creator_id", "video_id", "content_type"} {
			index := map[string]any{"field_name": field, "field_schema": "keyword"}
			if _, err := q.doRequest(ctx, http.MethodPut, "/collections/"+name+"/index?wait=true", index); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("checking collection %q: %w", name, err)
	}

	q.mu.Lock()
	q.collection = name
	q.mu.Unlock()
	return nil
}

func (q *QdrantProvider) current() (string, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.collection == "" {
		return "", ErrIndexNotReady
	}
	return q.collection, nil
}

// Upsert writes points, replacing existing IDs
func (q *QdrantProvider) Upsert(ctx context.Context, records []Record) error {
	collection, err := q.current()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	points := make([]map[string]any, 0, len(records))
	for _, r := range records {
		points = append(points, map[string]any{
			"id":      pointID(r.ID),
			"vector":  r.Vector,
			"payload": payloadOf(r),
		})
	}
	_, err = q.doRequest(ctx, http.MethodPut, "/collections/"+collection+"/points?wait=true", map[string]any{"points": points})
	return err
}

// Query searches the collection
func (q *QdrantProvider) Query(ctx context.Context, vector []float32, topK int, filter Filter, minScore float64) ([]Match, error) {
	collection, err := q.current()
	if err != nil {
		return nil, err
	}

	req := map[string]any{
		"vector":          vector,
		"limit":           topK,
		"with_payload":    true,
		"score_threshold": minScore,
	}
	if f := qdrantFilter(filter); f != nil {
		req["filter"] = f
	}

	data, err := q.doRequest(ctx, http.MethodPost, "/collections/"+collection+"/points/search", req)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Result []struct {
			ID      any             `json:"id"`
			Score   float64         `json:"score"`
			Payload json.RawMessage `json:"payload"`
		} `json:"result"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("decode qdrant search: %w", err)
	}

	matches := make([]Match, 0, len(parsed.Result))
	for _, item := range parsed.Result {
		var payload struct {
			Metadata
			ChunkID string `json:"chunk_id"`
		}
		if err := json.Unmarshal(item.Payload, &payload); err != nil {
			return nil, fmt.Errorf("decode qdrant payload: %w", err)
		}
		id := payload.ChunkID
		if id == "" {
			id = fmt.Sprintf("%v", item.ID)
		}
		matches = append(matches, Match{ID: id, Score: item.Score, Metadata: payload.Metadata})
	}
	return matches, nil
}

// DeleteMany removes points by chunk ID
func (q *QdrantProvider) DeleteMany(ctx context.Context, ids []string) error {
	collection, err := q.current()
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	points := make([]string, len(ids))
	for i, id := range ids {
		points[i] = pointID(id)
	}
	_, err = q.doRequest(ctx, http.MethodPost, "/collections/"+collection+"/points/delete?wait=true", map[string]any{"points": points})
	return err
}

// DeleteByFilter removes points matching filter
func (q *QdrantProvider) DeleteByFilter(ctx context.Context, filter Filter) error {
	collection, err := q.current()
	if err != nil {
		return err
	}
	f := qdrantFilter(filter)
	if f == nil {
		return fmt.Errorf("refusing to delete with an empty filter")
	}
	_, err = q.doRequest(ctx, http.MethodPost, "/collections/"+collection+"/points/delete?wait=true", map[string]any{"filter": f})
	return err
}

func (q *QdrantProvider) doRequest(ctx context.Context, method, path string, body any) ([]byte, error) {
	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		buf = bytes.NewBuffer(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, q.baseURL+path, buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}
	resp, err := q.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &qdrantStatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	return data, nil
}

// qdrantStatusError is a non-2xx reply. Its text keeps the status so retry
// classification still sees it.
type qdrantStatusError struct {
	Code int
	Body string
}

func (e *qdrantStatusError) Error() string {
	return fmt.Sprintf("qdrant status %d: %s", e.Code, e.Body)
}

func pointID(chunkID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(chunkID)).String()
}

func payloadOf(r Record) map[string]any {
	p := map[string]any{
		"chunk_id":     r.ID,
		"creator_id":   r.Metadata.CreatorID,
		"video_id":     r.Metadata.VideoID,
		"content_type": r.Metadata.ContentType,
		"chunk_index":  r.Metadata.ChunkIndex,
		"text":         r.Metadata.Text,
	}
	if r.Metadata.VideoTitle != "" {
		p["video_title"] = r.Metadata.VideoTitle
	}
	if r.Metadata.StartSeconds != nil {
		p["start_seconds"] = *r.Metadata.StartSeconds
	}
	return p
}

func qdrantFilter(filter Filter) map[string]any {
	var conditions []map[string]any
	if filter.CreatorID != "" {
		conditions = append(conditions, qdrantMatchFilter("creator_id", filter.CreatorID))
	}
	if filter.VideoID != "" {
		conditions = append(conditions, qdrantMatchFilter("video_id", filter.VideoID))
	}
	if filter.ContentType != "" {
		conditions = append(conditions, qdrantMatchFilter("content_type", filter.ContentType))
	}
	if len(conditions) == 0 {
		return nil
	}
	return map[string]any{"must": conditions}
}

func qdrantMatchFilter(key string, value any) map[string]any {
	return map[string]any{
		"key": key,
		"match": map[string]any{
			"value": value,
		},
	}
}
