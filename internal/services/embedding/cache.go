package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"log"
	"math"
	"strings"
	"time"

	"github.com/killallgit/persona-api/internal/services/kvstore"
)

// DefaultCacheTTL is how long a cached query vector is reused
const DefaultCacheTTL = time.Hour

// Embedder is anything that turns text into a vector
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// CachedEmbedder keeps recent query vectors in the key-value store so
// repeated searches skip the provider. Cache failures fall through to the
// provider.
type CachedEmbedder struct {
	next      Embedder
	store     kvstore.Store
	namespace string
	ttl       time.Duration
}

// NewCachedEmbedder wraps next. Namespace separates vectors from different
// providers or models sharing one store.
func NewCachedEmbedder(next Embedder, store kvstore.Store, namespace string, ttl time.Duration) *CachedEmbedder {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedEmbedder{next: next, store: store, namespace: namespace, ttl: ttl}
}

// Embed returns the cached vector for text or asks the wrapped embedder
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := c.key(text)

	raw, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		if vec, ok := decodeVector(raw); ok {
			return vec, nil
		}
	case !errors.Is(err, kvstore.ErrNotFound):
		log.Printf("[DEBUG] Embedding cache read failed: %v", err)
	}

	vec, err := c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := c.store.Set(ctx, key, encodeVector(vec), c.ttl); err != nil {
		log.Printf("[DEBUG] Embedding cache write failed: %v", err)
	}
	return vec, nil
}

func (c *CachedEmbedder) key(text string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(text)))
	return "embedding:" + c.namespace + ":" + hex.EncodeToString(sum[:])
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(raw []byte) ([]float32, bool) {
	if len(raw) == 0 || len(raw)%4 != 0 {
		return nil, false
	}
	vec := make([]float32, len(raw)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return vec, true
}
