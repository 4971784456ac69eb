package main

import (
	"context"
	"log"
	"strings"
	"time"

	"tmas-assistant-backend/internal/ai"
	"tmas-assistant-backend/internal/config"
	"tmas-assistant-backend/internal/logger"
	"tmas-assistant-backend/internal/queue"
	"tmas-assistant-backend/internal/telemetry"
	"tmas-assistant-backend/services"

	"github.com/go-co-op/gocron"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// The worker pre-extracts and embeds practice problems so API replicas
// serve them from cache. Problem embeddings go through the Redis tier of
// the shared embedding cache, which is what makes the warm pass visible
// to the API processes. It re-warms nightly to pick up replaced PDFs.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		logger.Warn("Metrics disabled", "error", err)
		metrics = nil
	}

	redisOpt, err := redisConnOpt(cfg)
	if err != nil {
		log.Fatal("Invalid Redis configuration:", err)
	}
	redisClient := asynq.NewClient(redisOpt)
	defer redisClient.Close()

	// The cache must share the Redis tier with the API, otherwise warmed
	// embeddings die with this process.
	cacheRedis, err := config.NewRedisClient(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	embedder := ai.NewEmbeddingClient(cfg, metrics)
	embeddings := services.NewEmbeddingCache(embedder, cacheRedis)
	extractor := services.NewProblemExtractor(cfg, embeddings, metrics)
	processor := queue.NewTaskProcessor(extractor)

	// Seed an initial warm pass, then re-warm every night.
	if err := queue.EnqueueWarmAll(redisClient); err != nil {
		logger.Warn("Initial warm enqueue failed", "error", err)
	}

	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.Every(1).Day().At("03:00").Do(func() {
		extractor.ClearCache()
		if err := queue.EnqueueWarmAll(redisClient); err != nil {
			logger.Warn("Nightly warm enqueue failed", "error", err)
		}
	})
	scheduler.StartAsync()

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 4,
			Queues: map[string]int{
				"default": 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("Task failed", "type", task.Type(), "error", err)
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskWarmProblems, processor.WarmProblems)

	logger.Info("Starting worker", "redis", cfg.RedisURL)
	if err := server.Run(mux); err != nil {
		log.Fatal("Failed to start worker:", err)
	}
}

// redisConnOpt accepts the same REDIS_URL forms as config.NewRedisClient:
// a full redis:// or rediss:// URL, or a bare host:port.
func redisConnOpt(cfg *config.Config) (asynq.RedisConnOpt, error) {
	if strings.HasPrefix(cfg.RedisURL, "redis://") || strings.HasPrefix(cfg.RedisURL, "rediss://") {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return asynq.RedisClientOpt{
			Addr:      opt.Addr,
			Username:  opt.Username,
			Password:  opt.Password,
			DB:        opt.DB,
			TLSConfig: opt.TLSConfig,
		}, nil
	}
	return asynq.RedisClientOpt{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}
