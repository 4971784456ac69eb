package models

// ExtractedProblem is a practice problem located inside a book PDF.
// Embedding is nil when the provider call failed for this problem; such
// problems are kept but excluded from similarity ranking.
type ExtractedProblem struct {
	Text          string    `json:"text"`
	PageNumber    int       `json:"pageNumber"`
	ProblemNumber string    `json:"problemNumber,omitempty"`
	Chapter       string    `json:"chapter,omitempty"`
	Section       string    `json:"section,omitempty"`
	Embedding     []float32 `json:"-"`
}

// PracticeProblem is the API-facing recommendation shape. PageNumber is a
// string because AI-generated recommendations use ranges like "45-50".
type PracticeProblem struct {
	BookID        string  `json:"bookId"`
	BookTitle     string  `json:"bookTitle"`
	ProblemNumber string  `json:"problemNumber,omitempty"`
	PageNumber    string  `json:"pageNumber,omitempty"`
	Chapter       string  `json:"chapter,omitempty"`
	Section       string  `json:"section,omitempty"`
	Description   string  `json:"description"`
	Relevance     float64 `json:"relevance"`
}
