package models

// QuizQuestion is one multiple-choice question. CorrectAnswer indexes into
// Choices, which always has exactly four entries after validation.
type QuizQuestion struct {
	Question      string   `json:"question"`
	Choices       []string `json:"choices"`
	CorrectAnswer int      `json:"correctAnswer"`
	Hint          string   `json:"hint"`
}
