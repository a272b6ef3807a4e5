package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/killallgit/persona-api/pkg/config"
	"github.com/killallgit/persona-api/pkg/retry"
)

func fastPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func TestHashProvider(t *testing.T) {
	p := NewHashProvider(256)
	ctx := context.Background()

	a, err := p.Embed(ctx, "sourdough starter feeding schedule")
	require.NoError(t, err)
	b, err := p.Embed(ctx, "sourdough starter feeding schedule")
	require.NoError(t, err)
	c, err := p.Embed(ctx, "motorcycle carburetor rebuild")
	require.NoError(t, err)

	assert.Len(t, a, 256)
	assert.Equal(t, a, b, "embedding is deterministic")
	assert.InDelta(t, 1.0, CosineSimilarity(a, b), 1e-6)
	assert.Less(t, CosineSimilarity(a, c), 0.5)

	related, err := p.Embed(ctx, "my sourdough starter needs feeding")
	require.NoError(t, err)
	assert.Greater(t, CosineSimilarity(a, related), CosineSimilarity(a, c))
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Equal(t, 0.0, CosineSimilarity([]float32{1}, []float32{1, 0}))
	assert.Equal(t, 0.0, CosineSimilarity([]float32{0, 0}, []float32{1, 0}))
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(config.EmbeddingConfig{Provider: "hash", Dimensions: 64})
	require.NoError(t, err)
	assert.Equal(t, "hash", p.Name())
	assert.Equal(t, 64, p.Dimensions())

	_, err = NewProvider(config.EmbeddingConfig{Provider: "openai"})
	assert.Error(t, err, "openai requires a key")

	_, err = NewProvider(config.EmbeddingConfig{Provider: "word2vec"})
	assert.Error(t, err)
}

func openAIServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *OpenAIProvider {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(handler))
	t.Cleanup(srv.Close)

	p, err := NewOpenAIProvider(OpenAIOptions{APIKey: "sk-test", BaseURL: srv.URL, Dimensions: 3})
	require.NoError(t, err)
	return p
}

func writeEmbedding(w http.ResponseWriter, vec []float32) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": []map[string]any{{"embedding": vec}},
	})
}

func TestOpenAIProvider_Embed(t *testing.T) {
	p := openAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hello", body["input"])
		assert.Equal(t, defaultOpenAIModel, body["model"])

		writeEmbedding(w, []float32{0.1, 0.2, 0.3})
	})

	vec, err := p.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
}

func TestService_RetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	p := openAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "upstream overloaded", http.StatusServiceUnavailable)
			return
		}
		writeEmbedding(w, []float32{1, 0, 0})
	})

	svc := NewService(p, Options{Policy: fastPolicy()})
	vec, err := svc.Embed(context.Background(), "retry me")

	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 0}, vec)
	assert.Equal(t, int32(3), calls.Load())
}

func TestService_DoesNotRetryAuthErrors(t *testing.T) {
	var calls atomic.Int32
	p := openAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	})

	svc := NewService(p, Options{Policy: fastPolicy()})
	_, err := svc.Embed(context.Background(), "nope")

	require.Error(t, err)
	assert.Equal(t, retry.ClassAuth, retry.Classify(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestService_GivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	p := openAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "slow down", http.StatusTooManyRequests)
	})

	svc := NewService(p, Options{Policy: fastPolicy()})
	_, err := svc.Embed(context.Background(), "busy")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries exceeded")
	assert.Equal(t, int32(3), calls.Load())
}

func TestService_RejectsWrongDimensions(t *testing.T) {
	p := openAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeEmbedding(w, []float32{1, 0})
	})

	svc := NewService(p, Options{Policy: fastPolicy()})
	_, err := svc.Embed(context.Background(), "short vector")

	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestService_PerCallTimeout(t *testing.T) {
	p := openAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	})

	svc := NewService(p, Options{Timeout: 20 * time.Millisecond, Policy: retry.Policy{MaxAttempts: 1}})
	_, err := svc.Embed(context.Background(), "slow")

	assert.ErrorIs(t, err, retry.ErrTimeout)
}
