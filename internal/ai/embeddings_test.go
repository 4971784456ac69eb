package ai

import (
	"context"
	"errors"
	"testing"

	"tmas-assistant-backend/internal/config"
)

func TestConfigured(t *testing.T) {
	cases := []struct {
		name string
		cfg  config.Config
		want bool
	}{
		{"openai with key", config.Config{EmbeddingsProvider: "openai", OpenAIAPIKey: "sk-test"}, true},
		{"openai without key", config.Config{EmbeddingsProvider: "openai"}, false},
		{"default provider checks openai key", config.Config{OpenAIAPIKey: "sk-test"}, true},
		{"google with key", config.Config{EmbeddingsProvider: "google", GeminiAPIKey: "g-test"}, true},
		{"google ignores openai key", config.Config{EmbeddingsProvider: "google", OpenAIAPIKey: "sk-test"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := NewEmbeddingClient(&tc.cfg, nil)
			if got := client.Configured(); got != tc.want {
				t.Errorf("Configured() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEmbedUnconfiguredProvider(t *testing.T) {
	client := NewEmbeddingClient(&config.Config{EmbeddingsProvider: "openai"}, nil)
	_, err := client.Embed(context.Background(), "net force on an incline")
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Errorf("err = %v, want ErrProviderUnavailable", err)
	}
}
