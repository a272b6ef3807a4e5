package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/killallgit/persona-api/pkg/retry"
)

// ErrDimensionMismatch is returned when a provider's vector length differs
// from the configured dimension
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Options configures a Service
type Options struct {
	Timeout   time.Duration
	Policy    retry.Policy
	RateLimit int // requests per second, 0 disables limiting
}

// Service wraps a Provider with rate limiting, a per-call timeout and
// classified retries
type Service struct {
	provider Provider
	limiter  *rate.Limiter
	timeout  time.Duration
	policy   retry.Policy
}

// NewService creates an embedding service around provider
func NewService(provider Provider, opts Options) *Service {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Policy.MaxAttempts == 0 {
		opts.Policy = retry.DefaultPolicy()
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), opts.RateLimit)
	}

	return &Service{
		provider: provider,
		limiter:  limiter,
		timeout:  opts.Timeout,
		policy:   opts.Policy,
	}
}

// Embed returns the vector for text, retrying transient provider failures
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := retry.Do(ctx, s.policy, func(ctx context.Context) ([]float32, error) {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		return retry.WithTimeout(ctx, s.timeout, func(ctx context.Context) ([]float32, error) {
			return s.provider.Embed(ctx, text)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%s embedding: %w", s.provider.Name(), err)
	}

	if len(vec) != s.provider.Dimensions() {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vec), s.provider.Dimensions())
	}
	return vec, nil
}

// Dimensions returns the provider's vector length
func (s *Service) Dimensions() int {
	return s.provider.Dimensions()
}
