package services

import (
	"context"
	"testing"

	"tmas-assistant-backend/internal/config"
	"tmas-assistant-backend/models"
)

func testRecommenderConfig() *config.Config {
	return &config.Config{
		TopicRelevanceFloor: 0.1,
		TopicCollapseMin:    0.99,
	}
}

func TestRecommendKeywordFallback(t *testing.T) {
	cfg := testRecommenderConfig()
	cache := newFailingCache()
	rec := NewBookRecommender(cfg, cache, NewTopicService(cache))

	result := rec.Recommend(context.Background(), "calculus", nil)
	if len(result.Books) != 2 {
		t.Fatalf("got %d books, want 2: %v", len(result.Books), result.Books)
	}
	if result.Books[0].ID != "ace-ap-calculus-ab" || result.Books[1].ID != "ace-ap-calculus-bc" {
		t.Errorf("got %q and %q, want the two calculus entries",
			result.Books[0].ID, result.Books[1].ID)
	}
	if len(result.Topics) != 0 {
		t.Errorf("keyword fallback should not report topics, got %v", result.Topics)
	}
}

func TestRecommendNeverEmpty(t *testing.T) {
	cfg := testRecommenderConfig()
	cache := newFailingCache()
	rec := NewBookRecommender(cfg, cache, NewTopicService(cache))

	for _, query := range []string{"", "zzz qqq", "xylophone maintenance"} {
		result := rec.Recommend(context.Background(), query, nil)
		if len(result.Books) != 3 {
			t.Errorf("Recommend(%q) returned %d books, want first 3 of catalog", query, len(result.Books))
			continue
		}
		for i, book := range result.Books {
			if book.ID != models.Books[i].ID {
				t.Errorf("Recommend(%q)[%d] = %q, want %q", query, i, book.ID, models.Books[i].ID)
			}
		}
	}
}

func TestRecommendSingleTopicNarrows(t *testing.T) {
	query := "What is the net force on the block?"
	vectors := map[string][]float32{query: {1, 0}}
	for _, topic := range models.Topics {
		vec := []float32{0, 1}
		if topic.Name == "Physics" {
			vec = []float32{1, 0}
		}
		vectors[topic.EmbedText()] = vec
	}
	physicsBooks := map[string]bool{"ace-ap-physics-1": true, "ace-ap-physics-c": true}
	for _, book := range models.Books {
		vec := []float32{0, 1}
		if physicsBooks[book.ID] {
			vec = []float32{1, 0}
		}
		vectors[book.EmbedText()] = vec
	}

	cfg := testRecommenderConfig()
	cache := NewEmbeddingCache(&stubEmbedder{vectors: vectors}, nil)
	rec := NewBookRecommender(cfg, cache, NewTopicService(cache))

	result := rec.Recommend(context.Background(), query, nil)
	if len(result.Topics) != 1 || result.Topics[0].Topic != "Physics" {
		t.Fatalf("got topics %v, want single Physics classification", result.Topics)
	}
	if len(result.Books) != 2 {
		t.Fatalf("got %d books, want narrowing to 2 physics books: %v", len(result.Books), result.Books)
	}
	for _, book := range result.Books {
		if !physicsBooks[book.ID] {
			t.Errorf("narrowed result contains non-physics book %q", book.ID)
		}
	}
}

func TestRecommendRanksBySimilarity(t *testing.T) {
	// No topic collapses, so the similarity ranking survives unfiltered.
	query := "study tips"
	vectors := map[string][]float32{query: {1, 0}}
	for _, topic := range models.Topics {
		vectors[topic.EmbedText()] = []float32{0, 1}
	}
	for _, book := range models.Books {
		vec := []float32{0, 1}
		if book.ID == "ace-ap-statistics" {
			vec = []float32{1, 0}
		}
		vectors[book.EmbedText()] = vec
	}

	cfg := testRecommenderConfig()
	cache := NewEmbeddingCache(&stubEmbedder{vectors: vectors}, nil)
	rec := NewBookRecommender(cfg, cache, NewTopicService(cache))

	result := rec.Recommend(context.Background(), query, nil)
	if len(result.Books) != 5 {
		t.Fatalf("got %d books, want top 5", len(result.Books))
	}
	if result.Books[0].ID != "ace-ap-statistics" {
		t.Errorf("top book = %q, want ace-ap-statistics", result.Books[0].ID)
	}
}
