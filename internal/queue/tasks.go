package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"tmas-assistant-backend/internal/logger"
	"tmas-assistant-backend/models"
	"tmas-assistant-backend/services"
)

const TaskWarmProblems = "problems:warm"

type WarmProblemsPayload struct {
	BookID string `json:"book_id"`
}

// NewWarmProblemsTask enqueues extraction and embedding of one book's
// problems so the first user request doesn't pay the full parse cost.
func NewWarmProblemsTask(bookID string) (*asynq.Task, error) {
	payload, err := json.Marshal(WarmProblemsPayload{BookID: bookID})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskWarmProblems,
		payload,
		asynq.MaxRetry(3),
		asynq.Timeout(10*time.Minute),
		asynq.Queue("default"),
	), nil
}

// TaskProcessor executes background tasks against the shared services.
type TaskProcessor struct {
	extractor *services.ProblemExtractor
}

func NewTaskProcessor(extractor *services.ProblemExtractor) *TaskProcessor {
	return &TaskProcessor{extractor: extractor}
}

func (p *TaskProcessor) WarmProblems(ctx context.Context, t *asynq.Task) error {
	var payload WarmProblemsPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal failed: %w", asynq.SkipRetry)
	}

	book, ok := models.GetBookByID(payload.BookID)
	if !ok {
		logger.Warn("Warm task for unknown book", "book", payload.BookID)
		return asynq.SkipRetry
	}
	if book.PDFPath == "" {
		return nil
	}

	problems, err := p.extractor.ExtractProblems(ctx, book)
	if err != nil {
		return err
	}

	logger.Info("Warmed problem cache", "book", book.ID, "problems", len(problems))
	return nil
}

// EnqueueWarmAll queues a warm task for every book that has a PDF.
func EnqueueWarmAll(client *asynq.Client) error {
	for _, book := range models.Books {
		if book.PDFPath == "" {
			continue
		}
		task, err := NewWarmProblemsTask(book.ID)
		if err != nil {
			return err
		}
		if _, err := client.Enqueue(task); err != nil {
			return fmt.Errorf("enqueue warm for %s: %w", book.ID, err)
		}
	}
	return nil
}
