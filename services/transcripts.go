package services

import (
	"context"
	"time"

	"tmas-assistant-backend/internal/logger"
	"tmas-assistant-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TranscriptStore persists chat exchanges for later review and export.
// All writes are best-effort: a storage failure never blocks a chat.
type TranscriptStore struct {
	col *mongo.Collection
}

func NewTranscriptStore(db *mongo.Database) *TranscriptStore {
	return &TranscriptStore{col: db.Collection("messages")}
}

// SaveExchange records a user message and the assistant's reply under one
// conversation id.
func (s *TranscriptStore) SaveExchange(ctx context.Context, conversationID, userMessage, reply string, educational bool) {
	now := time.Now()
	docs := []interface{}{
		models.Message{
			ConversationID: conversationID,
			Role:           "user",
			Content:        userMessage,
			Educational:    educational,
			Timestamp:      now,
		},
		models.Message{
			ConversationID: conversationID,
			Role:           "assistant",
			Content:        reply,
			Educational:    educational,
			Timestamp:      now,
		},
	}

	if _, err := s.col.InsertMany(ctx, docs); err != nil {
		logger.Warn("Failed to save transcript", "conversation_id", conversationID, "error", err)
	}
}

// GetConversation returns a conversation's messages oldest-first.
func (s *TranscriptStore) GetConversation(ctx context.Context, conversationID string) ([]models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cursor, err := s.col.Find(ctx, bson.M{"conversation_id": conversationID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// ListMessages returns recent messages across all conversations, capped by
// limit, newest first.
func (s *TranscriptStore) ListMessages(ctx context.Context, limit int64) ([]models.Message, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)
	cursor, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}
