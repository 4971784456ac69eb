package services

import (
	"context"
	"strings"
	"testing"

	"tmas-assistant-backend/internal/config"
	"tmas-assistant-backend/models"
)

func TestIdentifyProblemsDeduplicates(t *testing.T) {
	statement := "Problem 5. Compute the derivative of f(x) = x^2 + 3x and evaluate the result at x = 2."
	page := statement + " " + statement

	problems := identifyProblems([]string{page})
	if len(problems) != 1 {
		t.Fatalf("got %d problems, want duplicate collapsed to 1: %+v", len(problems), problems)
	}
	if problems[0].ProblemNumber != "5" || problems[0].PageNumber != 1 {
		t.Errorf("got %+v, want problem 5 on page 1", problems[0])
	}
}

func TestIdentifyProblemsChapterLookback(t *testing.T) {
	page := "Chapter 3 practice set follows. Problem 2. A block of mass 10 kg slides down a frictionless incline at 30 degrees; find its acceleration and the normal force acting on it."

	problems := identifyProblems([]string{page})
	if len(problems) != 1 {
		t.Fatalf("got %d problems, want 1: %+v", len(problems), problems)
	}
	if problems[0].Chapter != "3" {
		t.Errorf("chapter = %q, want 3 from preceding heading", problems[0].Chapter)
	}
	if problems[0].ProblemNumber != "2" {
		t.Errorf("problem number = %q, want 2", problems[0].ProblemNumber)
	}
}

func TestIdentifyProblemsNumberedList(t *testing.T) {
	page := "1. Evaluate the definite integral of x squared between zero and three, showing each step.\n" +
		"2. Find the limit of sin(x)/x as x approaches zero and justify your answer with the squeeze theorem."

	problems := identifyProblems([]string{page})
	if len(problems) != 2 {
		t.Fatalf("got %d problems, want 2: %+v", len(problems), problems)
	}
	if problems[0].ProblemNumber != "1" || problems[1].ProblemNumber != "2" {
		t.Errorf("got numbers %q and %q, want 1 then 2",
			problems[0].ProblemNumber, problems[1].ProblemNumber)
	}
}

func TestIdentifyProblemsSkipsShortMatches(t *testing.T) {
	problems := identifyProblems([]string{"Problem 9. Too short."})
	if len(problems) != 0 {
		t.Errorf("got %d problems, want matches under 50 chars dropped: %+v", len(problems), problems)
	}
}

func TestIdentifyProblemsProblemSet(t *testing.T) {
	page := "End of chapter review. Problems 1-10 cover kinematics in one dimension; work them without a calculator before checking the answer key at the back of the book."

	problems := identifyProblems([]string{page})
	found := false
	for _, p := range problems {
		if p.ProblemNumber == "1-10" {
			found = true
		}
	}
	if !found {
		t.Errorf("no range entry for the problem set, got %+v", problems)
	}
}

func TestFindRelevantProblemsRanksAndFloors(t *testing.T) {
	cfg := &config.Config{
		ProblemRelevanceMin: 0.3,
		MaxProblemsPerBook:  100,
		EmbedRatePerSecond:  20,
	}
	query := "net force on an incline"
	queries := NewEmbeddingCache(&stubEmbedder{vectors: map[string][]float32{
		query: {1, 0},
	}}, nil)
	extractor := NewProblemExtractor(cfg, queries, nil)

	book := models.Book{ID: "b1", Title: "Sample Physics", PDFPath: "/pdfs/sample.pdf"}
	longText := strings.Repeat("A block on an incline with friction. ", 8)
	extractor.cache[book.ID+"-"+book.PDFPath] = []models.ExtractedProblem{
		{Text: "Orthogonal problem", PageNumber: 4, ProblemNumber: "4", Embedding: []float32{0, 1}},
		{Text: "Weak match problem kept above the floor", PageNumber: 3, ProblemNumber: "3", Embedding: []float32{1, 2}},
		{Text: longText, PageNumber: 1, ProblemNumber: "1", Embedding: []float32{1, 0}},
		{Text: "Diagonal match", PageNumber: 2, ProblemNumber: "2", Embedding: []float32{1, 1}},
		{Text: "Unranked, embedding failed", PageNumber: 5, ProblemNumber: "5", Embedding: nil},
	}

	out, err := extractor.FindRelevantProblems(context.Background(), query, book)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 3 {
		t.Fatalf("got %d problems, want 3 above the floor: %+v", len(out), out)
	}
	if out[0].ProblemNumber != "1" || out[1].ProblemNumber != "2" || out[2].ProblemNumber != "3" {
		t.Errorf("got order %q %q %q, want 1 2 3 by similarity",
			out[0].ProblemNumber, out[1].ProblemNumber, out[2].ProblemNumber)
	}
	if out[0].PageNumber != "1" {
		t.Errorf("page number = %q, want \"1\"", out[0].PageNumber)
	}
	if !strings.HasSuffix(out[0].Description, "...") || len(out[0].Description) > 204 {
		t.Errorf("long text should be truncated with ellipsis, got %q", out[0].Description)
	}
	for _, p := range out {
		if p.Relevance < 0 || p.Relevance > 1 {
			t.Errorf("relevance %v out of [0,1]", p.Relevance)
		}
	}
}

func TestExtractProblemsNoPDF(t *testing.T) {
	cfg := &config.Config{MaxProblemsPerBook: 100, EmbedRatePerSecond: 20}
	extractor := NewProblemExtractor(cfg, newFailingCache(), nil)

	problems, err := extractor.ExtractProblems(context.Background(), models.Book{ID: "no-pdf"})
	if err != nil {
		t.Fatal(err)
	}
	if problems != nil {
		t.Errorf("book without a PDF should yield nil, got %+v", problems)
	}
}

func TestEmbedProblemsSharedCache(t *testing.T) {
	cfg := &config.Config{MaxProblemsPerBook: 100, EmbedRatePerSecond: 1000}
	problems := []models.ExtractedProblem{
		{Text: "A cart accelerates from rest under a constant force", PageNumber: 1, ProblemNumber: "1"},
		{Text: "A pendulum swings with small amplitude", PageNumber: 2, ProblemNumber: "2"},
	}
	vectors := map[string][]float32{}
	for _, p := range problems {
		vectors[embedTextForProblem(p)] = []float32{1, 0}
	}
	counting := &countingEmbedder{inner: &stubEmbedder{vectors: vectors}}
	cache := NewEmbeddingCache(counting, nil)

	warmer := NewProblemExtractor(cfg, cache, nil)
	if err := warmer.embedProblems(context.Background(), "b1", problems); err != nil {
		t.Fatal(err)
	}
	for i := range problems {
		if problems[i].Embedding == nil {
			t.Fatalf("problem %d not embedded after warm pass", i)
		}
	}
	if counting.calls != len(problems) {
		t.Fatalf("provider calls = %d, want %d", counting.calls, len(problems))
	}

	// A second extractor on the same cache must be served entirely from it.
	served := make([]models.ExtractedProblem, len(problems))
	copy(served, problems)
	for i := range served {
		served[i].Embedding = nil
	}
	server := NewProblemExtractor(cfg, cache, nil)
	if err := server.embedProblems(context.Background(), "b1", served); err != nil {
		t.Fatal(err)
	}
	if counting.calls != len(problems) {
		t.Errorf("provider calls = %d after warm pass, want %d (cache hits only)", counting.calls, len(problems))
	}
	for i := range served {
		if served[i].Embedding == nil {
			t.Errorf("problem %d not served from cache", i)
		}
	}
}

func TestFallbackProblemsBySubject(t *testing.T) {
	physics := FallbackProblems(models.Book{ID: "p", Title: "ACE AP Physics 1"})
	if len(physics) != 2 || !strings.Contains(physics[0].Description, "Newton") {
		t.Errorf("physics fallback = %+v, want Newton's laws first", physics)
	}

	generic := FallbackProblems(models.Book{ID: "g", Title: "ACE AP Statistics Review Book"})
	if len(generic) != 1 {
		t.Errorf("generic fallback = %+v, want single catch-all entry", generic)
	}
}
