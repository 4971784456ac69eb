package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HistoryMessage is one prior turn sent by the client. Role is "user" or
// "assistant".
type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message             string           `json:"message"`
	ConversationHistory []HistoryMessage `json:"conversationHistory"`
	IDToken             string           `json:"idToken"`
	ChatID              string           `json:"chatId"`
	CreateNewChat       bool             `json:"createNewChat"`
}

// BookRecommendationRequest is the body of POST /api/recommend-books.
type BookRecommendationRequest struct {
	UserQuery           string           `json:"userQuery"`
	ConversationHistory []HistoryMessage `json:"conversationHistory"`
	IDToken             string           `json:"idToken"`
	ChatID              string           `json:"chatId"`
}

// ProblemRecommendationRequest is the body of POST /api/recommend-problems.
type ProblemRecommendationRequest struct {
	UserQuery string `json:"userQuery"`
	BookID    string `json:"bookId"`
	IDToken   string `json:"idToken"`
	ChatID    string `json:"chatId"`
}

// QuizRequest is the body of POST /api/generate-quiz. AIResponse is the
// assistant answer the quiz should be generated from.
type QuizRequest struct {
	AIResponse string `json:"aiResponse"`
	IDToken    string `json:"idToken"`
	ChatID     string `json:"chatId"`
}

// Message is a persisted transcript entry. Persistence is optional; when
// Mongo is disabled no messages are written.
type Message struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ConversationID string             `bson:"conversation_id" json:"conversation_id"`
	Role           string             `bson:"role" json:"role"`
	Content        string             `bson:"content" json:"content"`
	Educational    bool               `bson:"educational" json:"educational"`
	Timestamp      time.Time          `bson:"timestamp" json:"timestamp"`
}
