package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tmas-assistant-backend/internal/config"
)

func TestSendPayloadShape(t *testing.T) {
	var got chatPayload
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("reading request body: %v", err)
		}
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("request body is not JSON: %v", err)
		}
		w.Write([]byte(`{"response":{"content":"ok","metadata":{}}}`))
	}))
	defer srv.Close()

	client := NewAssistantClient(&config.Config{ChatBackendURL: srv.URL, ChatSendTimeout: 5})
	history := []ChatTurn{
		{Role: "user", Content: "What is net force?"},
		{Role: "assistant", Content: "The vector sum of all forces on a body."},
	}

	body, chatID, err := client.Send(context.Background(), "session-cred", "", "is 2 < 3?", history)
	if err != nil {
		t.Fatal(err)
	}
	defer body.Close()

	if chatID == "" {
		t.Error("empty chat id, want a minted one")
	}
	if contentType != "text/plain;charset=UTF-8" {
		t.Errorf("Content-Type = %q, want text/plain;charset=UTF-8", contentType)
	}
	if got.Type != "CHAT" || got.Cookie != "session-cred" {
		t.Errorf("type/cookie = %q/%q, want CHAT/session-cred", got.Type, got.Cookie)
	}
	if got.Params.ChatID != chatID {
		t.Errorf("payload chat id %q does not match returned id %q", got.Params.ChatID, chatID)
	}
	if got.Params.Text != "<p>is 2 &lt; 3?</p>" {
		t.Errorf("prompt text = %q, want paragraph-wrapped with escaped markup", got.Params.Text)
	}

	if len(got.Params.Messages) != 2 {
		t.Fatalf("got %d history turns, want 2", len(got.Params.Messages))
	}
	if got.Params.Messages[0].Role != "USER" || got.Params.Messages[1].Role != "AI" {
		t.Errorf("roles = %q/%q, want USER/AI", got.Params.Messages[0].Role, got.Params.Messages[1].Role)
	}
	for i, msg := range got.Params.Messages {
		if len(msg.Content) != 1 {
			t.Fatalf("turn %d has %d content parts, want 1", i, len(msg.Content))
		}
		text := msg.Content[0].Text
		if !strings.HasSuffix(text, "\n\n") {
			t.Errorf("turn %d text %q missing trailing blank line", i, text)
		}
		if strings.TrimSuffix(text, "\n\n") != history[i].Content {
			t.Errorf("turn %d text %q does not carry original content %q", i, text, history[i].Content)
		}
	}
}

func TestSendReusesChatID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewAssistantClient(&config.Config{ChatBackendURL: srv.URL, ChatSendTimeout: 5})
	body, chatID, err := client.Send(context.Background(), "cred", "existing-chat", "hello there, assistant", nil)
	if err != nil {
		t.Fatal(err)
	}
	body.Close()
	if chatID != "existing-chat" {
		t.Errorf("chat id = %q, want the caller's id preserved", chatID)
	}
}
