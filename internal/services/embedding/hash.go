package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"strings"
	"unicode"
)

const defaultDimensions = 1536

// HashProvider is a deterministic, offline embedder for development and
// tests. Each token is hashed to a signed bucket, so texts that share words
// land close together.
type HashProvider struct {
	dim int
}

// NewHashProvider creates a hash embedder producing dim-length vectors
func NewHashProvider(dim int) *HashProvider {
	if dim <= 0 {
		dim = defaultDimensions
	}
	return &HashProvider{dim: dim}
}

// Embed returns the unit-length feature-hashed vector of text
func (h *HashProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float32, h.dim)
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(tokens) == 0 {
		tokens = []string{"empty"}
	}

	for _, tok := range tokens {
		sum := sha256.Sum256([]byte(tok))
		idx := binary.BigEndian.Uint32(sum[:4]) % uint32(h.dim)
		sign := float32(1)
		if sum[4]&1 == 1 {
			sign = -1
		}
		vec[idx] += sign
	}
	return normalize(vec), nil
}

// Dimensions returns the vector length
func (h *HashProvider) Dimensions() int {
	return h.dim
}

// Name identifies the provider
func (h *HashProvider) Name() string {
	return "hash"
}
