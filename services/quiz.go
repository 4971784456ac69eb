package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"

	"tmas-assistant-backend/internal/ai"
	"tmas-assistant-backend/internal/logger"
	"tmas-assistant-backend/models"
)

// QuizService turns an assistant answer into a three-question multiple
// choice quiz by asking the chat backend for structured JSON and
// aggressively salvaging whatever comes back.
type QuizService struct {
	assistant *ai.AssistantClient
}

func NewQuizService(assistant *ai.AssistantClient) *QuizService {
	return &QuizService{assistant: assistant}
}

var (
	htmlTagRe       = regexp.MustCompile(`<[^>]*>`)
	markdownLinkRe  = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	boldRe          = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicRe        = regexp.MustCompile(`\*([^*]+)\*`)
	inlineCodeRe    = regexp.MustCompile("`([^`]+)`")
	extraNewlinesRe = regexp.MustCompile(`\n{3,}`)

	fenceJSONRe  = regexp.MustCompile("```json\n?")
	fenceRe      = regexp.MustCompile("```\n?")
	fenceLineRe  = regexp.MustCompile("(?m)^```")
	jsonArrayRe  = regexp.MustCompile(`\[[\s\S]*\]`)
	jsonObjectRe = regexp.MustCompile(`\{[\s\S]*\}`)
)

const quizPromptTemplate = `You are an educational quiz generator. Based on the following educational content about math and science, generate exactly 3 multiple-choice quiz questions that test specific concepts, formulas, principles, or problem-solving skills mentioned in the content.

IMPORTANT REQUIREMENTS:
1. Questions MUST be directly related to the specific technical content (formulas, concepts, principles, calculations)
2. Questions should test understanding of the actual subject matter (physics, math, chemistry, etc.), NOT general learning strategies
3. Each question must have exactly 4 answer choices
4. Include specific numbers, formulas, or concepts from the content when relevant
5. Make questions progressively more challenging if possible

Content: "%s"

Respond with ONLY a valid JSON array in this exact format (no markdown, no code blocks, just pure JSON):
[
  {
    "question": "Specific question about the content?",
    "choices": ["Specific option A", "Specific option B", "Specific option C", "Specific option D"],
    "correctAnswer": 0,
    "hint": "Specific hint related to the concept"
  }
]

The correctAnswer should be the index (0-3) of the correct choice. Focus on testing actual knowledge of the subject matter discussed.`

// GenerateQuiz asks the backend for quiz questions about the given answer
// text. Unparseable responses degrade to a contextual or generic quiz; an
// error is returned only when the backend call itself fails.
func (s *QuizService) GenerateQuiz(ctx context.Context, credential, chatID, aiResponse string) ([]models.QuizQuestion, error) {
	prompt := fmt.Sprintf(quizPromptTemplate, cleanContent(aiResponse))

	raw, err := askAssistant(ctx, s.assistant, credential, chatID, prompt)
	if err != nil {
		return nil, err
	}

	return extractQuizQuestions(raw, aiResponse), nil
}

// cleanContent strips HTML and markdown from the assistant answer so the
// quiz prompt carries plain prose, capped to keep the prompt bounded.
func cleanContent(text string) string {
	cleaned := htmlTagRe.ReplaceAllString(text, "")
	cleaned = markdownLinkRe.ReplaceAllString(cleaned, "$1")
	cleaned = boldRe.ReplaceAllString(cleaned, "$1")
	cleaned = italicRe.ReplaceAllString(cleaned, "$1")
	cleaned = inlineCodeRe.ReplaceAllString(cleaned, "$1")
	cleaned = extraNewlinesRe.ReplaceAllString(cleaned, "\n\n")
	cleaned = strings.TrimSpace(cleaned)
	return truncate(cleaned, 2000)
}

func stripFences(text string) string {
	cleaned := fenceJSONRe.ReplaceAllString(text, "")
	cleaned = fenceRe.ReplaceAllString(cleaned, "")
	cleaned = fenceLineRe.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}

type quizCandidate struct {
	Question      string   `json:"question"`
	Choices       []string `json:"choices"`
	CorrectAnswer *int     `json:"correctAnswer"`
	Hint          string   `json:"hint"`
}

// extractQuizQuestions tries several shapes the model may have answered in:
// a bare JSON array, an object wrapping a questions array, or the whole
// cleaned text as JSON. Anything that doesn't yield exactly three valid
// questions falls back.
func extractQuizQuestions(responseText, originalContent string) []models.QuizQuestion {
	cleaned := stripFences(responseText)

	var candidates []quizCandidate

	if m := jsonArrayRe.FindString(cleaned); m != "" {
		if err := json.Unmarshal([]byte(m), &candidates); err != nil {
			candidates = nil
		}
	}

	if candidates == nil {
		if m := jsonObjectRe.FindString(cleaned); m != "" {
			var wrapper struct {
				Questions []quizCandidate `json:"questions"`
			}
			if err := json.Unmarshal([]byte(m), &wrapper); err == nil && len(wrapper.Questions) > 0 {
				candidates = wrapper.Questions
			}
		}
	}

	if candidates == nil {
		if err := json.Unmarshal([]byte(cleaned), &candidates); err != nil {
			candidates = nil
			var wrapper struct {
				Questions []quizCandidate `json:"questions"`
			}
			if err := json.Unmarshal([]byte(cleaned), &wrapper); err == nil {
				candidates = wrapper.Questions
			}
		}
	}

	var valid []models.QuizQuestion
	for _, q := range candidates {
		if !validQuizCandidate(q) {
			continue
		}
		choices := make([]string, len(q.Choices))
		for i, c := range q.Choices {
			choices[i] = strings.TrimSpace(c)
		}
		valid = append(valid, models.QuizQuestion{
			Question:      strings.TrimSpace(q.Question),
			Choices:       choices,
			CorrectAnswer: *q.CorrectAnswer,
			Hint:          strings.TrimSpace(q.Hint),
		})
		if len(valid) == 3 {
			break
		}
	}

	if len(valid) == 3 {
		return valid
	}
	if len(valid) > 0 {
		logger.Warn("Partial quiz parsed, using fallback", "valid", len(valid))
	} else {
		logger.Error("Failed to parse quiz JSON", "head", truncate(cleaned, 500))
	}

	if quiz := contextualFallbackQuiz(originalContent); quiz != nil {
		return quiz
	}
	return FallbackQuiz()
}

func validQuizCandidate(q quizCandidate) bool {
	if strings.TrimSpace(q.Question) == "" {
		return false
	}
	if len(q.Choices) != 4 {
		return false
	}
	for _, c := range q.Choices {
		if strings.TrimSpace(c) == "" {
			return false
		}
	}
	if q.CorrectAnswer == nil || *q.CorrectAnswer < 0 || *q.CorrectAnswer > 3 {
		return false
	}
	return strings.TrimSpace(q.Hint) != ""
}

var netForceRe = regexp.MustCompile(`(?i)net force|f_net|f_\{net\}`)
var physicsRe = regexp.MustCompile(`(?i)force|acceleration|velocity|momentum|energy|newton|f=ma|kinematics`)

// contextualFallbackQuiz returns a canned quiz matched to the source
// content, or nil when no canned set applies.
func contextualFallbackQuiz(content string) []models.QuizQuestion {
	if physicsRe.MatchString(content) && netForceRe.MatchString(content) {
		return []models.QuizQuestion{
			{
				Question: "What does Newton's second law state about net force?",
				Choices: []string{
					"F_net = ma, where force equals mass times acceleration",
					"F_net = mv, where force equals mass times velocity",
					"F_net = m/a, where force equals mass divided by acceleration",
					"Net force is always zero",
				},
				CorrectAnswer: 0,
				Hint:          "Newton's second law relates force, mass, and acceleration.",
			},
			{
				Question: "If a 10 kg object experiences a net force of 50 N, what is its acceleration?",
				Choices: []string{
					"5 m/s²",
					"50 m/s²",
					"0.2 m/s²",
					"500 m/s²",
				},
				CorrectAnswer: 0,
				Hint:          "Use F = ma and solve for acceleration: a = F/m",
			},
			{
				Question: "What happens to acceleration if the net force doubles while mass stays constant?",
				Choices: []string{
					"Acceleration doubles",
					"Acceleration halves",
					"Acceleration stays the same",
					"Acceleration quadruples",
				},
				CorrectAnswer: 0,
				Hint:          "From F = ma, if F doubles and m is constant, a must double.",
			},
		}
	}
	return nil
}

// FallbackQuiz is the last-resort quiz, content-free but well-formed.
func FallbackQuiz() []models.QuizQuestion {
	return []models.QuizQuestion{
		{
			Question: "What was the main topic discussed in the conversation?",
			Choices: []string{
				"A mathematical concept",
				"A scientific principle",
				"A study strategy",
				"All of the above",
			},
			CorrectAnswer: 3,
			Hint:          "Consider all aspects of the conversation.",
		},
		{
			Question: "Which of the following best summarizes the key takeaway?",
			Choices: []string{
				"Practice is essential",
				"Understanding fundamentals is important",
				"Both practice and understanding are crucial",
				"Memorization is sufficient",
			},
			CorrectAnswer: 2,
			Hint:          "Think about what makes learning effective.",
		},
		{
			Question: "How can you apply this knowledge?",
			Choices: []string{
				"Through regular practice",
				"By teaching others",
				"By solving related problems",
				"All of the above",
			},
			CorrectAnswer: 3,
			Hint:          "Multiple approaches can be effective.",
		},
	}
}

// askAssistant sends a one-shot prompt and returns the fully reassembled
// answer text.
func askAssistant(ctx context.Context, client *ai.AssistantClient, credential, chatID, prompt string) (string, error) {
	body, _, err := client.Send(ctx, credential, chatID, prompt, nil)
	if err != nil {
		return "", err
	}
	defer body.Close()

	parser := ai.NewStreamParser()
	buf := make([]byte, 4096)
	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			parser.Feed(buf[:n])
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return parser.Content(), readErr
		}
	}
	return parser.Content(), nil
}
