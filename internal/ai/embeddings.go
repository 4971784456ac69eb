package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"tmas-assistant-backend/internal/config"
	"tmas-assistant-backend/internal/telemetry"

	"github.com/google/generative-ai-go/genai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/option"
)

// ErrProviderUnavailable means no embedding credential is configured.
// Callers must treat this as an expected condition and fall back to their
// non-embedding path, never as a crash.
var ErrProviderUnavailable = errors.New("embedding provider not configured")

// ProviderError carries the status and body of a failed provider call for
// diagnostics. No retry logic here; callers own fallback behavior.
type ProviderError struct {
	Provider string
	Status   int
	Body     string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s embeddings error: %d - %s", e.Provider, e.Status, e.Body)
}

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

const openAIEmbeddingsURL = "https://api.openai.com/v1/embeddings"

// EmbeddingClient wraps the external embedding service. Default provider is
// OpenAI over plain HTTP; Google Generative AI is available as an alternative.
type EmbeddingClient struct {
	cfg        *config.Config
	metrics    *telemetry.Metrics
	httpClient *http.Client
}

func NewEmbeddingClient(cfg *config.Config, metrics *telemetry.Metrics) *EmbeddingClient {
	return &EmbeddingClient{
		cfg:     cfg,
		metrics: metrics,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *EmbeddingClient) Embed(ctx context.Context, text string) ([]float32, error) {
	tracer := otel.Tracer("embedding-client")
	ctx, span := tracer.Start(ctx, "embeddings.embed")
	defer span.End()
	span.SetAttributes(
		attribute.String("embeddings.provider", c.cfg.EmbeddingsProvider),
		attribute.Int("embeddings.input_chars", len(text)),
	)

	start := time.Now()
	vec, err := c.embed(ctx, text)
	status := "success"
	if err != nil {
		status = "error"
	}
	c.metrics.RecordEmbeddingCall(c.cfg.EmbeddingsProvider, status, time.Since(start).Seconds())
	return vec, err
}

func (c *EmbeddingClient) embed(ctx context.Context, text string) ([]float32, error) {
	switch c.cfg.EmbeddingsProvider {
	case "openai", "":
		return c.embedOpenAI(ctx, text)
	case "google":
		return c.embedGoogle(ctx, text)
	default:
		return nil, fmt.Errorf("unknown embeddings provider: %s", c.cfg.EmbeddingsProvider)
	}
}

type openAIEmbeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type openAIEmbeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (c *EmbeddingClient) embedOpenAI(ctx context.Context, text string) ([]float32, error) {
	if c.cfg.OpenAIAPIKey == "" {
		return nil, ErrProviderUnavailable
	}

	body, err := json.Marshal(openAIEmbeddingRequest{
		Model: c.cfg.OpenAIEmbeddingsModel,
		Input: text,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openAIEmbeddingsURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.OpenAIAPIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &ProviderError{Provider: "openai", Status: resp.StatusCode, Body: string(respBody)}
	}

	var parsed openAIEmbeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode embeddings response: %w", err)
	}
	if len(parsed.Data) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}

	return parsed.Data[0].Embedding, nil
}

func (c *EmbeddingClient) embedGoogle(ctx context.Context, text string) ([]float32, error) {
	if c.cfg.GeminiAPIKey == "" {
		return nil, ErrProviderUnavailable
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(c.cfg.GeminiAPIKey))
	if err != nil {
		return nil, err
	}
	defer client.Close()

	model := client.EmbeddingModel(c.cfg.GoogleEmbeddingsModel)
	resp, err := model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, err
	}
	if resp.Embedding == nil {
		return nil, fmt.Errorf("no embedding returned")
	}

	return resp.Embedding.Values, nil
}

// Configured reports whether a credential exists for the active provider.
// Startup consults it to announce keyword-only mode instead of discovering
// it one failed call at a time.
func (c *EmbeddingClient) Configured() bool {
	switch c.cfg.EmbeddingsProvider {
	case "google":
		return c.cfg.GeminiAPIKey != ""
	default:
		return c.cfg.OpenAIAPIKey != ""
	}
}
