package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	GinMode     string
	CORSOrigins []string

	// Chat backend (opaque streaming generator; see internal/ai/assistant.go)
	ChatBackendURL  string
	ChatGraphQLURL  string
	ChatSendTimeout int

	// Embeddings configuration
	EmbeddingsProvider    string // "openai" (default), "google"
	GeminiAPIKey          string
	GoogleEmbeddingsModel string // e.g., "text-embedding-004"
	OpenAIAPIKey          string
	OpenAIEmbeddingsModel string

	// Similarity thresholds. Empirically chosen; behavior parity over optimality.
	EducationalThreshold float64
	ProblemRelevanceMin  float64
	TopicRelevanceFloor  float64
	TopicCollapseMin     float64

	// PDF problem extraction
	PDFDir             string
	MaxProblemsPerBook int
	EmbedRatePerSecond float64

	// Redis Configuration (optional: embedding cache tier, rate limiting, asynq)
	RedisEnabled  bool
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// MongoDB Configuration (optional: conversation transcripts)
	MongoEnabled bool
	MongoURI     string
	DBName       string

	// Admin surface
	JWTSecret string

	RateLimitReqs   int
	RateLimitWindow int
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),

		ChatBackendURL:  getEnv("CHAT_BACKEND_URL", ""),
		ChatGraphQLURL:  getEnv("CHAT_GRAPHQL_URL", ""),
		ChatSendTimeout: getEnvInt("CHAT_SEND_TIMEOUT", 120),

		EmbeddingsProvider:    getEnv("EMBEDDINGS_PROVIDER", "openai"),
		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		GoogleEmbeddingsModel: getEnv("GOOGLE_EMBEDDINGS_MODEL", "text-embedding-004"),
		OpenAIAPIKey:          getEnv("OPENAI_API_KEY", ""),
		OpenAIEmbeddingsModel: getEnv("OPENAI_EMBEDDINGS_MODEL", "text-embedding-3-small"),

		EducationalThreshold: getEnvFloat64("EDUCATIONAL_THRESHOLD", 0.25),
		ProblemRelevanceMin:  getEnvFloat64("PROBLEM_RELEVANCE_MIN", 0.3),
		TopicRelevanceFloor:  getEnvFloat64("TOPIC_RELEVANCE_FLOOR", 0.1),
		TopicCollapseMin:     getEnvFloat64("TOPIC_COLLAPSE_MIN", 0.99),

		PDFDir:             getEnv("PDF_DIR", "./public/pdfs"),
		MaxProblemsPerBook: getEnvInt("MAX_PROBLEMS_PER_BOOK", 100),
		EmbedRatePerSecond: getEnvFloat64("EMBED_RATE_PER_SECOND", 20),

		RedisEnabled:  getEnvBool("REDIS_ENABLED", false),
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		MongoEnabled: getEnvBool("MONGO_ENABLED", false),
		MongoURI:     getEnv("MONGO_URI", "mongodb://localhost:27017/tmas_assistant"),
		DBName:       getEnv("DB_NAME", "tmas_assistant"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),
	}

	// A missing embedding credential is a supported configuration, not an
	// error: every embedding-dependent component has a keyword fallback path.
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
