package services

import (
	"context"
	"sort"
	"strings"

	"tmas-assistant-backend/internal/ai"
	"tmas-assistant-backend/internal/logger"
	"tmas-assistant-backend/models"
)

// TopicService classifies queries against the fixed subject taxonomy.
// Topic embeddings are computed lazily through the shared cache; when the
// provider is unavailable the keyword path produces the same result shape.
type TopicService struct {
	cache *EmbeddingCache
}

func NewTopicService(cache *EmbeddingCache) *TopicService {
	return &TopicService{cache: cache}
}

// IdentifyTopics scores every topic against the query and returns the
// relevant ones, normalized so the best match is 1.0. Topics under the
// floor are dropped. A near-perfect top score means the query is clearly
// single-subject, so only that topic is returned; otherwise up to five.
func (s *TopicService) IdentifyTopics(ctx context.Context, query string, floor, collapseMin float64) []models.TopicRelevance {
	queryVec, err := s.cache.Get(ctx, "query", query)
	if err != nil {
		logger.Warn("Topic embedding unavailable, using keyword match", "error", err)
		return s.identifyByKeywords(query)
	}

	var relevances []models.TopicRelevance
	for _, topic := range models.Topics {
		topicVec, err := s.cache.Get(ctx, "topic", topic.EmbedText())
		if err != nil {
			logger.Warn("Failed to embed topic", "topic", topic.Name, "error", err)
			continue
		}

		similarity, err := ai.CosineSimilarity(queryVec, topicVec)
		if err != nil {
			logger.Error("Topic similarity failed", "topic", topic.Name, "error", err)
			continue
		}
		if similarity < 0 {
			similarity = 0
		}
		relevances = append(relevances, models.TopicRelevance{
			Topic:       topic.Name,
			Relevance:   similarity,
			Description: topic.Description,
		})
	}

	if len(relevances) == 0 {
		return s.identifyByKeywords(query)
	}

	sortAndNormalize(relevances)

	filtered := relevances[:0]
	for _, rel := range relevances {
		if rel.Relevance >= floor {
			filtered = append(filtered, rel)
		}
	}

	// Normalization pins the top score at 1.0, so the collapse only fires
	// when no runner-up is also near-perfect.
	if len(filtered) > 0 && filtered[0].Relevance >= collapseMin &&
		(len(filtered) == 1 || filtered[1].Relevance < collapseMin) {
		return filtered[:1]
	}
	if len(filtered) > 5 {
		filtered = filtered[:5]
	}
	return filtered
}

// identifyByKeywords scores topics by how many of their keywords appear in
// the query. A topic with matches scores min(1, matches/keywords*2) before
// normalization.
func (s *TopicService) identifyByKeywords(query string) []models.TopicRelevance {
	queryLower := strings.ToLower(query)

	var relevances []models.TopicRelevance
	for _, topic := range models.Topics {
		matches := 0
		for _, keyword := range topic.Keywords {
			if strings.Contains(queryLower, strings.ToLower(keyword)) {
				matches++
			}
		}
		if matches == 0 {
			continue
		}

		relevance := float64(matches) / float64(len(topic.Keywords)) * 2
		if relevance > 1 {
			relevance = 1
		}
		relevances = append(relevances, models.TopicRelevance{
			Topic:       topic.Name,
			Relevance:   relevance,
			Description: topic.Description,
		})
	}

	sortAndNormalize(relevances)

	if len(relevances) > 5 {
		relevances = relevances[:5]
	}
	return relevances
}

func sortAndNormalize(relevances []models.TopicRelevance) {
	sort.SliceStable(relevances, func(i, j int) bool {
		return relevances[i].Relevance > relevances[j].Relevance
	})
	if len(relevances) > 0 && relevances[0].Relevance > 0 {
		max := relevances[0].Relevance
		for i := range relevances {
			relevances[i].Relevance = relevances[i].Relevance / max
			if relevances[i].Relevance > 1 {
				relevances[i].Relevance = 1
			}
		}
	}
}
