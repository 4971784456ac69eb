package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tmas-assistant-backend/internal/ai"
	"tmas-assistant-backend/internal/config"
	"tmas-assistant-backend/internal/logger"
	"tmas-assistant-backend/internal/telemetry"
	"tmas-assistant-backend/middleware"
	"tmas-assistant-backend/routes"
	"tmas-assistant-backend/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	shutdownTracer, err := telemetry.InitTracer("tmas-assistant-backend")
	if err != nil {
		logger.Warn("Tracing disabled", "error", err)
	} else {
		defer shutdownTracer()
	}

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		logger.Warn("Metrics disabled", "error", err)
		metrics = nil
	}

	// Optional infrastructure. The API runs fully without either: Redis
	// only adds a shared cache tier and rate limiting, Mongo only adds
	// transcript persistence.
	var redisClient *redis.Client
	if cfg.RedisEnabled {
		redisClient, err = config.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Redis unavailable, continuing without it", "error", err)
			redisClient = nil
		}
	}

	var mongoClient *mongo.Client
	if cfg.MongoEnabled {
		mongoClient, err = config.ConnectMongoDB(cfg)
		if err != nil {
			logger.Warn("MongoDB unavailable, transcripts disabled", "error", err)
			mongoClient = nil
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				mongoClient.Disconnect(ctx)
			}()
		}
	}

	// Core services
	embedder := ai.NewEmbeddingClient(cfg, metrics)
	if !embedder.Configured() {
		logger.Warn("No embedding credential configured, keyword fallbacks active",
			"provider", cfg.EmbeddingsProvider)
	}
	embeddings := services.NewEmbeddingCache(embedder, redisClient)
	topics := services.NewTopicService(embeddings)
	filter := services.NewEducationalFilter(embeddings, cfg.EducationalThreshold)
	recommender := services.NewBookRecommender(cfg, embeddings, topics)
	extractor := services.NewProblemExtractor(cfg, embeddings, metrics)
	assistant := ai.NewAssistantClient(cfg)
	advisor := services.NewProblemAdvisor(assistant)
	quiz := services.NewQuizService(assistant)

	var transcripts *services.TranscriptStore
	var export *services.ExportService
	if mongoClient != nil {
		db := mongoClient.Database(cfg.DBName)
		transcripts = services.NewTranscriptStore(db)
		export = services.NewExportService(transcripts)
	}

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.TracingMiddleware())
	router.Use(middleware.EnrichTrace())
	router.Use(middleware.MetricsMiddleware(metrics))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"}
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	if redisClient != nil {
		router.Use(middleware.RateLimitMiddleware(redisClient, cfg))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})

	routes.SetupChatRoutes(router, cfg, assistant, filter, transcripts)
	routes.SetupBookRoutes(router, cfg, recommender)
	routes.SetupProblemRoutes(router, cfg, extractor, advisor)
	routes.SetupQuizRoutes(router, cfg, quiz)
	routes.SetupAdminRoutes(router, cfg, export, extractor, embeddings)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
