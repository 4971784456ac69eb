package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"tmas-assistant-backend/internal/ai"
	"tmas-assistant-backend/internal/config"
	"tmas-assistant-backend/internal/logger"
	"tmas-assistant-backend/middleware"
	"tmas-assistant-backend/models"
	"tmas-assistant-backend/services"
	"tmas-assistant-backend/utils"

	"github.com/gin-gonic/gin"
)

// systemPrompt is prepended to every outgoing message. The assistant's
// persona must stay consistent regardless of what the upstream provider is.
const systemPrompt = `IMPORTANT INSTRUCTIONS: You are TMAS AI, an educational assistant for The Math and Science Academy. You must NEVER mention Knowt, Knowt.com, or that you are powered by Knowt in any way. If asked about your origin or what AI you are, say you are "TMAS AI, the educational assistant for The Math and Science Academy." Never reveal your underlying technology provider. Focus on helping students with math, science, AP courses, and study tips.`

const rejectionMessage = "I'm sorry, I can't help you with that. I can help you with educational questions though!"

// SetupChatRoutes wires the streaming chat endpoint and transcript lookup.
// transcripts may be nil when persistence is disabled.
func SetupChatRoutes(router *gin.Engine, cfg *config.Config, assistant *ai.AssistantClient, filter *services.EducationalFilter, transcripts *services.TranscriptStore) {
	router.POST("/api/chat", func(c *gin.Context) {
		var req models.ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}
		if req.IDToken == "" {
			utils.RespondWithUnauthorized(c, "Not authenticated")
			return
		}
		if strings.TrimSpace(req.Message) == "" {
			utils.RespondWithBadRequest(c, "Message is required", nil)
			return
		}

		educational := filter.IsEducational(c.Request.Context(), req.Message)
		if !educational {
			streamRejection(c)
			saveTranscript(transcripts, req.ChatID, req.Message, rejectionMessage, false)
			return
		}

		if req.CreateNewChat && req.ChatID != "" {
			if err := assistant.CreateChat(c.Request.Context(), req.IDToken, req.ChatID); err != nil {
				logger.Warn("Create chat failed", "chat_id", req.ChatID, "error", err)
			}
		}

		history := make([]ai.ChatTurn, 0, len(req.ConversationHistory))
		for _, msg := range req.ConversationHistory {
			history = append(history, ai.ChatTurn{Role: strings.ToLower(msg.Role), Content: msg.Content})
		}

		prompt := systemPrompt + "\n\nUser message: " + req.Message
		body, chatID, err := assistant.Send(c.Request.Context(), req.IDToken, req.ChatID, prompt, history)
		if err != nil {
			logger.Error("Chat backend send failed", "error", err)
			utils.RespondWithError(c, http.StatusBadGateway, "upstream_error", "Failed to get response from AI", nil)
			return
		}
		defer body.Close()

		setStreamHeaders(c)
		flusher, _ := c.Writer.(http.Flusher)

		parser := ai.NewStreamParser()
		buf := make([]byte, 4096)
		for {
			n, readErr := body.Read(buf)
			if n > 0 {
				for _, frame := range parser.Feed(buf[:n]) {
					writeFrame(c, frame)
				}
				if flusher != nil {
					flusher.Flush()
				}
			}
			if readErr == io.EOF {
				break
			}
			if readErr != nil {
				// Client gone or upstream died mid-stream; whatever was
				// accumulated still gets persisted below.
				logger.Warn("Chat stream interrupted", "chat_id", chatID, "error", readErr)
				break
			}
		}

		if final, ok := parser.Finish(); ok {
			writeFrame(c, final)
			if flusher != nil {
				flusher.Flush()
			}
			saveTranscript(transcripts, chatID, req.Message, final.Content, true)
		}
	})

	if transcripts != nil {
		router.GET("/api/chat/conversations/:conversation_id", middleware.RequireAdmin(cfg), func(c *gin.Context) {
			conversationID := c.Param("conversation_id")
			messages, err := transcripts.GetConversation(c.Request.Context(), conversationID)
			if err != nil {
				utils.RespondWithInternalError(c, "Failed to load conversation", nil)
				return
			}
			if len(messages) == 0 {
				utils.RespondWithNotFound(c, "Conversation not found")
				return
			}
			c.JSON(http.StatusOK, gin.H{"messages": messages})
		})
	}
}

func setStreamHeaders(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
}

func writeFrame(c *gin.Context, frame ai.StreamFrame) {
	data, err := json.Marshal(frame)
	if err != nil {
		return
	}
	c.Writer.Write(append(data, '\n'))
}

// streamRejection replays the rejection as a two-frame stream so clients
// handle it through the same path as real answers.
func streamRejection(c *gin.Context) {
	setStreamHeaders(c)
	writeFrame(c, ai.StreamFrame{Content: rejectionMessage, Done: false})
	writeFrame(c, ai.StreamFrame{Content: rejectionMessage, Done: true})
	if flusher, ok := c.Writer.(http.Flusher); ok {
		flusher.Flush()
	}
}

// saveTranscript persists an exchange off the request path. Storage being
// down or disabled never affects the chat response.
func saveTranscript(transcripts *services.TranscriptStore, conversationID, message, reply string, educational bool) {
	if transcripts == nil || conversationID == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		transcripts.SaveExchange(ctx, conversationID, message, reply, educational)
	}()
}
