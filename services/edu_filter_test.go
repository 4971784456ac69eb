package services

import (
	"context"
	"testing"
)

func TestIsEducationalKeywordAccepts(t *testing.T) {
	filter := NewEducationalFilter(newFailingCache(), 0.25)

	cases := []string{
		"Can you explain what a derivative is",
		"What is the net force on a 10 kg block?",
		"help me with my calculus homework",
	}
	for _, query := range cases {
		if !filter.IsEducational(context.Background(), query) {
			t.Errorf("IsEducational(%q) = false, want true", query)
		}
	}
}

func TestIsEducationalRejectsOffTopic(t *testing.T) {
	filter := NewEducationalFilter(newFailingCache(), 0.25)

	cases := []string{
		"nice weather today",
		"hello",
		"tell me a joke about pizza",
	}
	for _, query := range cases {
		if filter.IsEducational(context.Background(), query) {
			t.Errorf("IsEducational(%q) = true, want false", query)
		}
	}
}

func TestIsEducationalAcademicContextRescue(t *testing.T) {
	filter := NewEducationalFilter(newFailingCache(), 0.25)

	// Mentions football but asks about physics, so it should pass.
	query := "the physics behind a football throw"
	if !filter.IsEducational(context.Background(), query) {
		t.Errorf("IsEducational(%q) = false, want true", query)
	}
}

func TestIsEducationalEmbeddingAccepts(t *testing.T) {
	// Three words, no keyword hits: only the embedding check can accept.
	query := "assess my memo"
	cache := NewEmbeddingCache(&stubEmbedder{vectors: map[string][]float32{
		query:           {1, 0},
		educationalText: {1, 0},
	}}, nil)
	filter := NewEducationalFilter(cache, 0.25)

	if !filter.IsEducational(context.Background(), query) {
		t.Error("aligned embedding should accept the query")
	}
}

func TestIsEducationalEmbeddingRejectsWithKeywordMiss(t *testing.T) {
	// Opposed embedding and no educational keywords: both checks fail.
	query := "ramble ramble ramble ramble pizza please"
	cache := NewEmbeddingCache(&stubEmbedder{vectors: map[string][]float32{
		query:           {-1, 0},
		educationalText: {1, 0},
	}}, nil)
	filter := NewEducationalFilter(cache, 0.25)

	if filter.IsEducational(context.Background(), query) {
		t.Error("opposed embedding with no keyword match should reject")
	}
}

func TestIsEducationalKeywordOverridesLowSimilarity(t *testing.T) {
	// The two checks are OR'd: a keyword hit accepts even when the
	// embedding disagrees.
	query := "derivative derivative derivative"
	cache := NewEmbeddingCache(&stubEmbedder{vectors: map[string][]float32{
		query:           {-1, 0},
		educationalText: {1, 0},
	}}, nil)
	filter := NewEducationalFilter(cache, 0.25)

	if !filter.IsEducational(context.Background(), query) {
		t.Error("keyword hit should accept despite low similarity")
	}
}
