package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"tmas-assistant-backend/internal/ai"
	"tmas-assistant-backend/internal/logger"
	"tmas-assistant-backend/models"
)

// ProblemAdvisor asks the chat backend to suggest practice problems when
// the PDF extraction path found nothing. The backend has no access to the
// book text, so these are educated guesses about chapters and ranges.
type ProblemAdvisor struct {
	assistant *ai.AssistantClient
}

func NewProblemAdvisor(assistant *ai.AssistantClient) *ProblemAdvisor {
	return &ProblemAdvisor{assistant: assistant}
}

const problemPromptTemplate = `You are an educational assistant helping students find relevant practice problems in textbooks.

Book: "%s"
Book Description: "%s"
User Query: "%s"

Based on the user's query, recommend 3-5 specific practice problems from this book that would help them practice the concepts they're asking about.

Since I don't have direct access to the book's content, provide recommendations in this format:
- Problem numbers or ranges (e.g., "Problems 15-20", "Chapter 3 Problems", "Section 4.2 Problems")
- Page numbers if you can estimate (e.g., "around pages 45-50")
- Chapter and section references
- Brief description of what each problem covers

Respond with ONLY a valid JSON array in this exact format:
[
  {
    "problemNumber": "15-20",
    "pageNumber": "45-50",
    "chapter": "3",
    "section": "4.2",
    "description": "Problems focusing on net force calculations with multiple forces",
    "relevance": 0.95
  }
]

The relevance score should be between 0 and 1, indicating how directly relevant the problem is to the user's query.`

// Recommend returns AI-suggested problems for the book. An unparseable
// answer degrades to the canned per-subject fallback; an error is returned
// only when the backend call fails.
func (a *ProblemAdvisor) Recommend(ctx context.Context, credential, chatID, query string, book models.Book) ([]models.PracticeProblem, error) {
	prompt := fmt.Sprintf(problemPromptTemplate, book.Title, book.Description, query)

	raw, err := askAssistant(ctx, a.assistant, credential, chatID, prompt)
	if err != nil {
		return nil, err
	}

	return parseAdvisedProblems(raw, book), nil
}

type advisedProblem struct {
	ProblemNumber string   `json:"problemNumber"`
	PageNumber    string   `json:"pageNumber"`
	Chapter       string   `json:"chapter"`
	Section       string   `json:"section"`
	Description   string   `json:"description"`
	Relevance     *float64 `json:"relevance"`
}

func parseAdvisedProblems(responseText string, book models.Book) []models.PracticeProblem {
	// An HTML error page means the upstream routed us somewhere wrong.
	if responseText == "" || looksLikeHTML(responseText) {
		logger.Error("Problem advisor got HTML instead of JSON")
		return FallbackProblems(book)
	}

	cleaned := stripFences(responseText)
	if looksLikeHTML(cleaned) {
		return FallbackProblems(book)
	}

	m := jsonArrayRe.FindString(cleaned)
	if m == "" || looksLikeHTML(m) {
		return FallbackProblems(book)
	}

	var advised []advisedProblem
	if err := json.Unmarshal([]byte(m), &advised); err != nil {
		logger.Error("Failed to parse advised problems", "error", err)
		return FallbackProblems(book)
	}

	var out []models.PracticeProblem
	for _, p := range advised {
		if strings.TrimSpace(p.Description) == "" {
			continue
		}
		relevance := 0.8
		if p.Relevance != nil {
			relevance = *p.Relevance
			if relevance < 0 {
				relevance = 0
			} else if relevance > 1 {
				relevance = 1
			}
		}
		out = append(out, models.PracticeProblem{
			BookID:        book.ID,
			BookTitle:     book.Title,
			ProblemNumber: p.ProblemNumber,
			PageNumber:    p.PageNumber,
			Chapter:       p.Chapter,
			Section:       p.Section,
			Description:   strings.TrimSpace(p.Description),
			Relevance:     relevance,
		})
		if len(out) == 5 {
			break
		}
	}

	if len(out) == 0 {
		return FallbackProblems(book)
	}
	return out
}

func looksLikeHTML(s string) bool {
	return strings.Contains(s, "<!DOCTYPE") || strings.Contains(s, "<html") ||
		strings.HasPrefix(strings.TrimSpace(s), "<")
}
