package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"tmas-assistant-backend/internal/ai"
	"tmas-assistant-backend/internal/logger"

	"github.com/redis/go-redis/v9"
)

// EmbeddingCache is a get-or-compute layer over the embedding provider.
// Tier 1 is an in-process map guarded by a single mutex, which also gives
// single-flight behavior: concurrent requests for an uncached key wait
// rather than issuing duplicate provider calls. Tier 2 is an optional Redis
// cache shared across replicas; Redis failures fall through to the provider.
type EmbeddingCache struct {
	embedder ai.Embedder
	redis    *redis.Client

	mu    sync.Mutex
	local map[string][]float32
}

const redisEmbeddingTTL = 7 * 24 * time.Hour

func NewEmbeddingCache(embedder ai.Embedder, redisClient *redis.Client) *EmbeddingCache {
	return &EmbeddingCache{
		embedder: embedder,
		redis:    redisClient,
		local:    make(map[string][]float32),
	}
}

// Get returns the embedding for text, computing it at most once per key per
// process. The key is a label plus content hash so unrelated callers with
// identical text still share an entry.
func (c *EmbeddingCache) Get(ctx context.Context, label, text string) ([]float32, error) {
	key := cacheKey(label, text)

	c.mu.Lock()
	defer c.mu.Unlock()

	if vec, ok := c.local[key]; ok {
		return vec, nil
	}

	if c.redis != nil {
		if raw, err := c.redis.Get(ctx, key).Bytes(); err == nil {
			var vec []float32
			if err := json.Unmarshal(raw, &vec); err == nil && len(vec) > 0 {
				c.local[key] = vec
				return vec, nil
			}
		}
	}

	vec, err := c.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	c.local[key] = vec
	if c.redis != nil {
		if raw, err := json.Marshal(vec); err == nil {
			if err := c.redis.Set(ctx, key, raw, redisEmbeddingTTL).Err(); err != nil {
				logger.Warn("Failed to write embedding to redis", "error", err)
			}
		}
	}

	return vec, nil
}

// Clear drops the in-process tier. Redis entries expire on their own.
func (c *EmbeddingCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.local = make(map[string][]float32)
}

// Size returns the number of locally cached vectors.
func (c *EmbeddingCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.local)
}

func cacheKey(label, text string) string {
	sum := sha256.Sum256([]byte(text))
	return "emb:" + label + ":" + hex.EncodeToString(sum[:16])
}
