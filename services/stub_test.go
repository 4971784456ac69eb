package services

import (
	"context"
	"fmt"

	"tmas-assistant-backend/internal/ai"
)

// stubEmbedder returns canned vectors by exact text, erroring on anything
// unknown so tests notice unexpected embedding calls.
type stubEmbedder struct {
	vectors map[string][]float32
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if vec, ok := s.vectors[text]; ok {
		return vec, nil
	}
	return nil, fmt.Errorf("no stub vector for %q", text)
}

// failEmbedder simulates a deployment with no embedding credential.
type failEmbedder struct{}

func (failEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, ai.ErrProviderUnavailable
}

// countingEmbedder counts calls that reach the provider.
type countingEmbedder struct {
	inner ai.Embedder
	calls int
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.calls++
	return c.inner.Embed(ctx, text)
}

func newFailingCache() *EmbeddingCache {
	return NewEmbeddingCache(failEmbedder{}, nil)
}
