package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"tmas-assistant-backend/internal/ai"
	"tmas-assistant-backend/internal/config"
	"tmas-assistant-backend/internal/logger"
	"tmas-assistant-backend/internal/telemetry"
	"tmas-assistant-backend/models"

	"github.com/ledongthuc/pdf"
	"golang.org/x/time/rate"
)

// ProblemExtractor locates practice problems inside book PDFs and embeds
// them for similarity search. Extraction plus embedding runs once per book
// per process; the mutex makes concurrent requests for the same book wait
// for the first extraction instead of repeating it. Problem embeddings go
// through the shared cache, so a warm pass in the worker populates the
// Redis tier that API replicas then read instead of calling the provider.
type ProblemExtractor struct {
	cfg     *config.Config
	queries *EmbeddingCache
	metrics *telemetry.Metrics
	limiter *rate.Limiter

	mu    sync.Mutex
	cache map[string][]models.ExtractedProblem
}

func NewProblemExtractor(cfg *config.Config, queries *EmbeddingCache, metrics *telemetry.Metrics) *ProblemExtractor {
	return &ProblemExtractor{
		cfg:     cfg,
		queries: queries,
		metrics: metrics,
		limiter: rate.NewLimiter(rate.Limit(cfg.EmbedRatePerSecond), 1),
		cache:   make(map[string][]models.ExtractedProblem),
	}
}

var problemPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:Problem|Exercise|Question|Practice Problem)\s+(\d+)[.)\s]`),
	regexp.MustCompile(`(?i)(?:Problem|Exercise|Question)\s+(\d+)\s*[-–—]`),
	regexp.MustCompile(`(?m)^\s*(\d+)[.)]\s+[A-Z]`),
	regexp.MustCompile(`(?i)Chapter\s+(\d+)[\s,]+(?:Problem|Exercise|Question)\s+(\d+)`),
	regexp.MustCompile(`(?i)Section\s+([\d.]+)[\s,]+(?:Problem|Exercise|Question)\s+(\d+)`),
	regexp.MustCompile(`(?i)(?:Problems|Exercises|Questions)\s+(\d+)[-–—](\d+)`),
	regexp.MustCompile(`(?i)AP\s+(?:Problem|Exercise)\s+(\d+)`),
}

var (
	problemSetRe = regexp.MustCompile(`(?i)(?:Problems|Exercises)\s+(\d+)[-–—](\d+)`)
	chapterRe    = regexp.MustCompile(`(?i)Chapter\s+(\d+)`)
	sectionRe    = regexp.MustCompile(`(?i)Section\s+([\d.]+)`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// ExtractProblems parses the book's PDF, identifies problems, and embeds up
// to the configured cap. Results are cached per book; a book without a PDF
// yields no problems and no error.
func (e *ProblemExtractor) ExtractProblems(ctx context.Context, book models.Book) ([]models.ExtractedProblem, error) {
	if book.PDFPath == "" {
		return nil, nil
	}

	cacheKey := book.ID + "-" + book.PDFPath

	e.mu.Lock()
	defer e.mu.Unlock()

	if problems, ok := e.cache[cacheKey]; ok {
		return problems, nil
	}

	start := time.Now()
	pages, err := e.extractPages(book.PDFPath)
	if err != nil {
		e.metrics.RecordPDFProcessing(book.ID, "error", time.Since(start).Seconds())
		return nil, err
	}
	if len(pages) == 0 {
		logger.Warn("No text extracted from PDF", "book", book.ID, "path", book.PDFPath)
		e.metrics.RecordPDFProcessing(book.ID, "empty", time.Since(start).Seconds())
		return nil, nil
	}

	problems := identifyProblems(pages)
	if len(problems) == 0 {
		logger.Warn("No problems identified in PDF", "book", book.ID)
		e.metrics.RecordPDFProcessing(book.ID, "empty", time.Since(start).Seconds())
		return nil, nil
	}
	logger.Info("Identified practice problems", "book", book.ID, "count", len(problems))

	if len(problems) > e.cfg.MaxProblemsPerBook {
		problems = problems[:e.cfg.MaxProblemsPerBook]
	}

	if err := e.embedProblems(ctx, book.ID, problems); err != nil {
		e.metrics.RecordPDFProcessing(book.ID, "error", time.Since(start).Seconds())
		return nil, err
	}
	e.metrics.RecordPDFProcessing(book.ID, "success", time.Since(start).Seconds())

	e.cache[cacheKey] = problems
	return problems, nil
}

// embedProblems fills in problem embeddings through the shared cache,
// pacing provider calls so a 100-problem book doesn't trip rate limits.
// Cache hits (a prior warm pass, or the Redis tier) skip the provider
// entirely. Failed embeds keep the problem, unranked.
func (e *ProblemExtractor) embedProblems(ctx context.Context, bookID string, problems []models.ExtractedProblem) error {
	for i := range problems {
		if err := e.limiter.Wait(ctx); err != nil {
			return err
		}
		vec, err := e.queries.Get(ctx, "problem", embedTextForProblem(problems[i]))
		if err != nil {
			logger.Warn("Failed to embed problem", "book", bookID, "index", i, "error", err)
			continue
		}
		problems[i].Embedding = vec
	}
	return nil
}

// FindRelevantProblems returns the top problems for the query, ranked by
// similarity and cut at the relevance floor. An empty result means the
// caller should use the AI or canned fallback instead.
func (e *ProblemExtractor) FindRelevantProblems(ctx context.Context, query string, book models.Book) ([]models.PracticeProblem, error) {
	problems, err := e.ExtractProblems(ctx, book)
	if err != nil {
		return nil, err
	}
	if len(problems) == 0 {
		return nil, nil
	}

	queryVec, err := e.queries.Get(ctx, "query", query)
	if err != nil {
		return nil, err
	}

	type scored struct {
		problem    models.ExtractedProblem
		similarity float64
	}
	var scores []scored
	for _, p := range problems {
		if p.Embedding == nil {
			continue
		}
		similarity, err := ai.CosineSimilarity(queryVec, p.Embedding)
		if err != nil {
			return nil, err
		}
		if similarity > e.cfg.ProblemRelevanceMin {
			scores = append(scores, scored{problem: p, similarity: similarity})
		}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].similarity > scores[j].similarity
	})
	if len(scores) > 5 {
		scores = scores[:5]
	}

	out := make([]models.PracticeProblem, 0, len(scores))
	for _, s := range scores {
		relevance := s.similarity
		if relevance < 0 {
			relevance = 0
		} else if relevance > 1 {
			relevance = 1
		}
		out = append(out, models.PracticeProblem{
			BookID:        book.ID,
			BookTitle:     book.Title,
			ProblemNumber: s.problem.ProblemNumber,
			PageNumber:    strconv.Itoa(s.problem.PageNumber),
			Chapter:       s.problem.Chapter,
			Section:       s.problem.Section,
			Description:   describeProblem(s.problem.Text),
			Relevance:     relevance,
		})
	}
	return out, nil
}

// ClearCache drops all extracted problems, forcing re-extraction.
func (e *ProblemExtractor) ClearCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache = make(map[string][]models.ExtractedProblem)
}

// extractPages reads the PDF and splits its text into approximate pages by
// character count. Extracted text loses reliable page boundaries once
// whitespace is normalized, so an even split keeps page numbers usable as
// rough pointers into the printed book.
func (e *ProblemExtractor) extractPages(pdfPath string) ([]string, error) {
	fullPath := filepath.Join(e.cfg.PDFDir, filepath.Base(pdfPath))
	if _, err := os.Stat(fullPath); err != nil {
		return nil, fmt.Errorf("pdf not found: %s", fullPath)
	}

	f, reader, err := pdf.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	numPages := reader.NumPage()
	var textBuilder strings.Builder
	fonts := make(map[string]*pdf.Font)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(fonts)
		if err != nil {
			logger.Warn("Failed to extract page text", "page", i, "error", err)
			continue
		}
		textBuilder.WriteString(text)
	}

	fullText := textBuilder.String()
	if len(fullText) == 0 {
		return nil, nil
	}
	if numPages < 1 {
		numPages = 1
	}

	charsPerPage := len(fullText) / numPages
	if charsPerPage < 2000 {
		charsPerPage = 2000
	}

	var pages []string
	for i := 0; i < numPages; i++ {
		start := i * charsPerPage
		if start >= len(fullText) {
			break
		}
		end := start + charsPerPage
		if end > len(fullText) {
			end = len(fullText)
		}
		pageText := strings.TrimSpace(fullText[start:end])
		if len(pageText) > 0 {
			pages = append(pages, pageText)
		}
	}
	if len(pages) == 0 {
		pages = append(pages, fullText)
	}

	logger.Info("Extracted PDF text", "path", pdfPath, "pages", len(pages), "chars", len(fullText))
	return pages, nil
}

// identifyProblems scans page texts with every problem pattern. Problems
// are deduplicated by page plus problem number (or match offset when the
// pattern has no number group).
func identifyProblems(pages []string) []models.ExtractedProblem {
	var problems []models.ExtractedProblem
	seen := make(map[string]bool)

	for pageIndex, pageText := range pages {
		pageNumber := pageIndex + 1

		for _, pattern := range problemPatterns {
			matches := pattern.FindAllStringSubmatchIndex(pageText, -1)
			for _, m := range matches {
				matchIndex := m[0]

				contextEnd := matchIndex + 600
				if contextEnd > len(pageText) {
					contextEnd = len(pageText)
				}
				problemText := whitespaceRe.ReplaceAllString(pageText[matchIndex:contextEnd], " ")
				problemText = strings.TrimSpace(problemText)

				var problemNumber, chapter, section string
				group1 := submatch(pageText, m, 1)
				group2 := submatch(pageText, m, 2)
				if group2 != "" {
					chapter = group1
					problemNumber = group2
				} else if group1 != "" {
					problemNumber = group1
				}

				lookbackStart := matchIndex - 200
				if lookbackStart < 0 {
					lookbackStart = 0
				}
				lookback := pageText[lookbackStart:matchIndex]
				if chapter == "" {
					if cm := chapterRe.FindStringSubmatch(lookback); cm != nil {
						chapter = cm[1]
					}
				}
				if sm := sectionRe.FindStringSubmatch(lookback); sm != nil {
					section = sm[1]
				}

				key := fmt.Sprintf("%d-%s", pageNumber, problemNumber)
				if problemNumber == "" {
					key = fmt.Sprintf("%d-%d", pageNumber, matchIndex)
				}
				if len(problemText) > 50 && !seen[key] {
					seen[key] = true
					problems = append(problems, models.ExtractedProblem{
						Text:          problemText,
						PageNumber:    pageNumber,
						ProblemNumber: problemNumber,
						Chapter:       chapter,
						Section:       section,
					})
				}
			}
		}

		// Problem sets ("Problems 1-10") become one entry covering the range.
		for _, m := range problemSetRe.FindAllStringSubmatchIndex(pageText, -1) {
			contextStart := m[0] - 50
			if contextStart < 0 {
				contextStart = 0
			}
			contextEnd := m[0] + 200
			if contextEnd > len(pageText) {
				contextEnd = len(pageText)
			}
			problems = append(problems, models.ExtractedProblem{
				Text:          strings.TrimSpace(pageText[contextStart:contextEnd]),
				PageNumber:    pageNumber,
				ProblemNumber: submatch(pageText, m, 1) + "-" + submatch(pageText, m, 2),
			})
		}
	}

	sort.SliceStable(problems, func(i, j int) bool {
		if problems[i].PageNumber != problems[j].PageNumber {
			return problems[i].PageNumber < problems[j].PageNumber
		}
		a, aerr := strconv.Atoi(strings.SplitN(problems[i].ProblemNumber, "-", 2)[0])
		b, berr := strconv.Atoi(strings.SplitN(problems[j].ProblemNumber, "-", 2)[0])
		if aerr == nil && berr == nil {
			return a < b
		}
		return false
	})

	return problems
}

// FallbackProblems returns canned recommendations by subject, used when
// neither the embedding path nor the AI path produced anything usable.
func FallbackProblems(book models.Book) []models.PracticeProblem {
	titleLower := strings.ToLower(book.Title)

	switch {
	case strings.Contains(titleLower, "physics"):
		return []models.PracticeProblem{
			{BookID: book.ID, BookTitle: book.Title, Chapter: "3", Description: "Problems on forces and Newton's laws", Relevance: 0.8},
			{BookID: book.ID, BookTitle: book.Title, Chapter: "4", Description: "Problems on kinematics and motion", Relevance: 0.75},
		}
	case strings.Contains(titleLower, "calculus"):
		return []models.PracticeProblem{
			{BookID: book.ID, BookTitle: book.Title, Chapter: "2", Description: "Problems on derivatives and differentiation", Relevance: 0.8},
			{BookID: book.ID, BookTitle: book.Title, Chapter: "3", Description: "Problems on integrals and integration", Relevance: 0.75},
		}
	case strings.Contains(titleLower, "biology"):
		return []models.PracticeProblem{
			{BookID: book.ID, BookTitle: book.Title, Chapter: "2", Description: "Problems on cell structure and function", Relevance: 0.8},
			{BookID: book.ID, BookTitle: book.Title, Chapter: "3", Description: "Problems on genetics and heredity", Relevance: 0.75},
		}
	case strings.Contains(titleLower, "chemistry"):
		return []models.PracticeProblem{
			{BookID: book.ID, BookTitle: book.Title, Chapter: "2", Description: "Problems on atomic structure and periodic trends", Relevance: 0.8},
			{BookID: book.ID, BookTitle: book.Title, Chapter: "3", Description: "Problems on chemical bonding and reactions", Relevance: 0.75},
		}
	}

	return []models.PracticeProblem{
		{BookID: book.ID, BookTitle: book.Title, Description: "Practice problems throughout the book", Relevance: 0.7},
	}
}

func embedTextForProblem(p models.ExtractedProblem) string {
	label := "Problem"
	if p.ProblemNumber != "" {
		label = "Problem " + p.ProblemNumber
	}
	return fmt.Sprintf("%s on page %d. %s", label, p.PageNumber, truncate(p.Text, 300))
}

func describeProblem(text string) string {
	if len(text) > 200 {
		return strings.TrimSpace(truncate(text, 200)) + "..."
	}
	return strings.TrimSpace(text)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	// Back off to a rune boundary.
	for n > 0 && s[n]&0xC0 == 0x80 {
		n--
	}
	return s[:n]
}

func submatch(s string, m []int, group int) string {
	if len(m) <= 2*group+1 {
		return ""
	}
	lo, hi := m[2*group], m[2*group+1]
	if lo < 0 || hi < 0 {
		return ""
	}
	return s[lo:hi]
}
