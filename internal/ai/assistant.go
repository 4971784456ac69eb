package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tmas-assistant-backend/internal/config"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// ChatTurn is one prior message passed back to the assistant for context.
// Role is "user" or "assistant" on our API surface.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AssistantClient talks to the upstream conversational backend. Send returns
// the raw response body so the caller can reassemble and republish the stream
// incrementally; the circuit breaker only guards connection establishment.
type AssistantClient struct {
	endpoint        string
	graphqlEndpoint string
	httpClient      *http.Client
	breaker         *gobreaker.CircuitBreaker
}

func NewAssistantClient(cfg *config.Config) *AssistantClient {
	settings := gobreaker.Settings{
		Name:        "chat-backend",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}

	return &AssistantClient{
		endpoint:        cfg.ChatBackendURL,
		graphqlEndpoint: cfg.ChatGraphQLURL,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.ChatSendTimeout) * time.Second,
		},
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

type chatParams struct {
	ChatID      string           `json:"chatId"`
	Text        string           `json:"text"`
	UseSearch   bool             `json:"useSearch"`
	Attachments []string         `json:"attachments"`
	Messages    []upstreamTurn   `json:"messages"`
	Transcripts []map[string]any `json:"transcripts"`
}

type upstreamTurn struct {
	Role    string         `json:"role"`
	Content []upstreamText `json:"content"`
}

type upstreamText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type chatPayload struct {
	Type      string     `json:"type"`
	Timestamp string     `json:"timestamp"`
	Cookie    string     `json:"cookie"`
	Params    chatParams `json:"params"`
}

// Send submits a prompt with prior turns and returns the streaming body.
// The caller owns closing it. chatID may be empty, in which case a fresh
// conversation id is minted and used for this exchange only.
func (c *AssistantClient) Send(ctx context.Context, credential, chatID, prompt string, history []ChatTurn) (io.ReadCloser, string, error) {
	tracer := otel.Tracer("assistant-client")
	ctx, span := tracer.Start(ctx, "assistant.send")
	defer span.End()

	if chatID == "" {
		chatID = uuid.New().String()
	}
	span.SetAttributes(
		attribute.String("chat.id", chatID),
		attribute.Int("chat.history_turns", len(history)),
	)

	messages := make([]upstreamTurn, 0, len(history))
	for _, turn := range history {
		role := "USER"
		if turn.Role == "assistant" {
			role = "AI"
		}
		// Upstream expects each prior turn terminated with a blank line.
		messages = append(messages, upstreamTurn{
			Role:    role,
			Content: []upstreamText{{Type: "text", Text: turn.Content + "\n\n"}},
		})
	}

	payload := chatPayload{
		Type:      "CHAT",
		Timestamp: strconv.FormatInt(time.Now().Unix(), 10),
		Cookie:    credential,
		Params: chatParams{
			ChatID:      chatID,
			Text:        "<p>" + escapeHTML(prompt) + "</p>",
			UseSearch:   false,
			Attachments: []string{},
			Messages:    messages,
			Transcripts: []map[string]any{},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, chatID, err
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "text/plain;charset=UTF-8")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return nil, fmt.Errorf("chat backend returned %d: %s", resp.StatusCode, string(respBody))
		}
		return resp, nil
	})
	if err != nil {
		return nil, chatID, err
	}

	return result.(*http.Response).Body, chatID, nil
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// CreateChat registers a new conversation with the upstream backend so the
// id used in Send is recognized. Failures are not fatal; Send still works
// with an unregistered id, the upstream just won't persist the thread.
func (c *AssistantClient) CreateChat(ctx context.Context, credential, chatID string) error {
	if c.graphqlEndpoint == "" {
		return nil
	}

	reqBody, err := json.Marshal(graphqlRequest{
		Query: `mutation CreateChat($input: CreateChatInput!) { createChat(input: $input) { chatId title created } }`,
		Variables: map[string]any{
			"input": map[string]any{
				"chatId": chatID,
			},
		},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlEndpoint, bytes.NewReader(reqBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("Authorization", credential)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("create chat returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}
