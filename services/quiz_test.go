package services

import (
	"fmt"
	"strings"
	"testing"
)

func sampleQuizJSON() string {
	return `[
  {"question": "What is the derivative of x^2?", "choices": ["2x", "x", "x^2", "2"], "correctAnswer": 0, "hint": "Apply the power rule."},
  {"question": "What is the integral of 2x?", "choices": ["x^2 + C", "2x^2", "x + C", "2"], "correctAnswer": 0, "hint": "Reverse the power rule."},
  {"question": "What is the limit of 1/x as x grows without bound?", "choices": ["0", "1", "infinity", "undefined"], "correctAnswer": 0, "hint": "The denominator dominates."}
]`
}

func TestExtractQuizQuestionsBareArray(t *testing.T) {
	questions := extractQuizQuestions(sampleQuizJSON(), "calculus content")
	if len(questions) != 3 {
		t.Fatalf("got %d questions, want 3", len(questions))
	}
	if questions[0].Question != "What is the derivative of x^2?" {
		t.Errorf("first question = %q", questions[0].Question)
	}
	if questions[0].CorrectAnswer != 0 || len(questions[0].Choices) != 4 {
		t.Errorf("first question malformed: %+v", questions[0])
	}
}

func TestExtractQuizQuestionsCodeFence(t *testing.T) {
	fenced := "```json\n" + sampleQuizJSON() + "\n```"
	unwrapped := extractQuizQuestions(sampleQuizJSON(), "calculus content")
	questions := extractQuizQuestions(fenced, "calculus content")
	if len(questions) != 3 {
		t.Fatalf("got %d questions from fenced response, want 3", len(questions))
	}
	for i := range questions {
		if questions[i].Question != unwrapped[i].Question {
			t.Errorf("fenced question %d = %q, want %q", i, questions[i].Question, unwrapped[i].Question)
		}
	}
}

func TestExtractQuizQuestionsObjectWrapper(t *testing.T) {
	wrapped := fmt.Sprintf(`Here you go: {"questions": %s}`, sampleQuizJSON())
	questions := extractQuizQuestions(wrapped, "calculus content")
	if len(questions) != 3 {
		t.Fatalf("got %d questions from wrapper object, want 3", len(questions))
	}
}

func TestExtractQuizQuestionsTooFewFallsBack(t *testing.T) {
	twoOnly := `[
  {"question": "Q1?", "choices": ["a", "b", "c", "d"], "correctAnswer": 1, "hint": "h"},
  {"question": "Q2?", "choices": ["a", "b", "c", "d"], "correctAnswer": 2, "hint": "h"}
]`
	questions := extractQuizQuestions(twoOnly, "unrelated content")
	if len(questions) != 3 {
		t.Fatalf("got %d questions, want 3 from fallback", len(questions))
	}
	if questions[0].Question != FallbackQuiz()[0].Question {
		t.Errorf("expected generic fallback, got %q", questions[0].Question)
	}
}

func TestExtractQuizQuestionsContextualFallback(t *testing.T) {
	content := "We discussed the net force on the block and found its acceleration with F=ma."
	questions := extractQuizQuestions("sorry, I cannot do that", content)
	if len(questions) != 3 {
		t.Fatalf("got %d questions, want 3", len(questions))
	}
	if questions[0].Question != "What does Newton's second law state about net force?" {
		t.Errorf("expected Newton quiz for net-force content, got %q", questions[0].Question)
	}
}

func TestExtractQuizQuestionsRejectsInvalidCandidates(t *testing.T) {
	// Four candidates, one invalid each way; the remaining three valid
	// ones must survive.
	mixed := `[
  {"question": "", "choices": ["a", "b", "c", "d"], "correctAnswer": 0, "hint": "h"},
  {"question": "Q1?", "choices": ["a", "b", "c", "d"], "correctAnswer": 0, "hint": "h"},
  {"question": "Q2?", "choices": ["a", "b", "c"], "correctAnswer": 0, "hint": "h"},
  {"question": "Q3?", "choices": ["a", "b", "c", "d"], "correctAnswer": 4, "hint": "h"},
  {"question": "Q4?", "choices": ["a", "b", "c", "d"], "correctAnswer": 3, "hint": "h"},
  {"question": "Q5?", "choices": ["a", "b", "c", "d"], "correctAnswer": 1, "hint": "h"}
]`
	questions := extractQuizQuestions(mixed, "unrelated")
	if len(questions) != 3 {
		t.Fatalf("got %d questions, want 3 valid survivors", len(questions))
	}
	want := []string{"Q1?", "Q4?", "Q5?"}
	for i, q := range questions {
		if q.Question != want[i] {
			t.Errorf("question %d = %q, want %q", i, q.Question, want[i])
		}
	}
}

func TestExtractQuizQuestionsMissingCorrectAnswer(t *testing.T) {
	noAnswer := `[
  {"question": "Q1?", "choices": ["a", "b", "c", "d"], "hint": "h"},
  {"question": "Q2?", "choices": ["a", "b", "c", "d"], "hint": "h"},
  {"question": "Q3?", "choices": ["a", "b", "c", "d"], "hint": "h"}
]`
	questions := extractQuizQuestions(noAnswer, "unrelated")
	if questions[0].Question != FallbackQuiz()[0].Question {
		t.Errorf("candidates without correctAnswer should be rejected, got %q", questions[0].Question)
	}
}

func TestCleanContentStripsMarkup(t *testing.T) {
	input := "<p>The **net force** is `F = ma`; see [Newton](https://example.com) for details.</p>"
	got := cleanContent(input)
	for _, banned := range []string{"<p>", "**", "`", "](", "https://example.com"} {
		if strings.Contains(got, banned) {
			t.Errorf("cleanContent left %q in %q", banned, got)
		}
	}
	for _, kept := range []string{"net force", "F = ma", "Newton"} {
		if !strings.Contains(got, kept) {
			t.Errorf("cleanContent dropped %q: %q", kept, got)
		}
	}
}
