package services

import (
	"context"
	"sort"
	"strings"

	"tmas-assistant-backend/internal/ai"
	"tmas-assistant-backend/internal/config"
	"tmas-assistant-backend/internal/logger"
	"tmas-assistant-backend/models"
)

// BookRecommender ranks the catalog against a query using embeddings, with
// topic-based narrowing and a keyword fallback that needs no provider.
type BookRecommender struct {
	cfg    *config.Config
	cache  *EmbeddingCache
	topics *TopicService
}

func NewBookRecommender(cfg *config.Config, cache *EmbeddingCache, topics *TopicService) *BookRecommender {
	return &BookRecommender{cfg: cfg, cache: cache, topics: topics}
}

// RecommendationResult carries ranked books plus the topic classification
// that narrowed them, when the embedding path ran.
type RecommendationResult struct {
	Books  []models.Book           `json:"books"`
	Topics []models.TopicRelevance `json:"topics,omitempty"`
}

// Recommend returns up to five books for the query. Recent conversation
// turns are folded into the search text for context. Any failure on the
// embedding path degrades to keyword matching, never to an error.
func (r *BookRecommender) Recommend(ctx context.Context, query string, history []models.HistoryMessage) RecommendationResult {
	searchQuery := strings.TrimSpace(query)
	if len(history) > 0 {
		recent := history
		if len(recent) > 3 {
			recent = recent[len(recent)-3:]
		}
		var parts []string
		for _, msg := range recent {
			parts = append(parts, msg.Content)
		}
		searchQuery = strings.TrimSpace(searchQuery + " " + strings.Join(parts, " "))
	}

	topics := r.topics.IdentifyTopics(ctx, searchQuery, r.cfg.TopicRelevanceFloor, r.cfg.TopicCollapseMin)

	ranked, err := r.rankBySimilarity(ctx, searchQuery)
	if err != nil {
		logger.Warn("Similarity ranking unavailable, using keyword fallback", "error", err)
		return RecommendationResult{Books: fallbackBooks(query)}
	}

	// A single-topic classification narrows results to that topic's books.
	if len(topics) == 1 && topics[0].Relevance >= r.cfg.TopicCollapseMin {
		ids := models.TopicBookIDs[topics[0].Topic]
		if len(ids) > 0 {
			narrowed := filterByIDs(ranked, ids)
			if len(narrowed) == 0 {
				narrowed = filterByIDs(models.Books, ids)
			}
			if len(narrowed) > 0 {
				ranked = narrowed
			}
		}
	}

	if len(ranked) == 0 {
		return RecommendationResult{Books: fallbackBooks(query)}
	}

	return RecommendationResult{Books: ranked, Topics: topics}
}

func (r *BookRecommender) rankBySimilarity(ctx context.Context, query string) ([]models.Book, error) {
	queryVec, err := r.cache.Get(ctx, "query", query)
	if err != nil {
		return nil, err
	}

	type scored struct {
		book       models.Book
		similarity float64
	}
	var scores []scored

	for _, book := range models.Books {
		bookVec, err := r.cache.Get(ctx, "book", book.EmbedText())
		if err != nil {
			logger.Warn("Failed to embed book", "book", book.ID, "error", err)
			continue
		}
		similarity, err := ai.CosineSimilarity(queryVec, bookVec)
		if err != nil {
			return nil, err
		}
		scores = append(scores, scored{book: book, similarity: similarity})
	}
	if len(scores) == 0 {
		return nil, ai.ErrProviderUnavailable
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].similarity > scores[j].similarity
	})
	if len(scores) > 5 {
		scores = scores[:5]
	}

	books := make([]models.Book, 0, len(scores))
	for _, s := range scores {
		books = append(books, s.book)
	}
	return books, nil
}

// fallbackKeywordTitles maps query keywords to exact catalog titles.
var fallbackKeywordTitles = map[string][]string{
	"calculus":         {"ACE AP Calculus AB", "ACE AP Calculus BC"},
	"physics":          {"ACE AP Physics 1", "ACE AP Physics C: Mechanics"},
	"chemistry":        {"ACE AP Chemistry"},
	"biology":          {"ACE AP Biology"},
	"statistics":       {"ACE AP Statistics Review Book"},
	"computer science": {"ACE AP Computer Science Principles"},
	"csp":              {"ACE AP Computer Science Principles"},
	"amc":              {"ACE The AMC 10/12", "AMC 10/12 Key Fundamentals and Strategies"},
	"psychology":       {"ACE AP Psychology"},
	"geography":        {"ACE AP Human Geography"},
}

// fallbackKeywordOrder fixes iteration order over the map above so results
// are deterministic.
var fallbackKeywordOrder = []string{
	"calculus", "physics", "chemistry", "biology", "statistics",
	"computer science", "csp", "amc", "psychology", "geography",
}

// fallbackBooks matches catalog books by keyword. With no matches it
// returns the first three books so the caller never renders empty.
func fallbackBooks(query string) []models.Book {
	queryLower := strings.ToLower(query)

	var matched []models.Book
	seen := make(map[string]bool)
	for _, keyword := range fallbackKeywordOrder {
		if !strings.Contains(queryLower, keyword) {
			continue
		}
		for _, title := range fallbackKeywordTitles[keyword] {
			for _, book := range models.Books {
				if book.Title == title && !seen[book.ID] {
					matched = append(matched, book)
					seen[book.ID] = true
				}
			}
		}
	}

	if len(matched) == 0 {
		return append([]models.Book{}, models.Books[:3]...)
	}
	if len(matched) > 5 {
		matched = matched[:5]
	}
	return matched
}

func filterByIDs(books []models.Book, ids []string) []models.Book {
	allowed := make(map[string]bool, len(ids))
	for _, id := range ids {
		allowed[id] = true
	}
	var out []models.Book
	for _, b := range books {
		if allowed[b.ID] {
			out = append(out, b)
		}
	}
	return out
}
