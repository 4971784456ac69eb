package models

import "strings"

// Book is one entry in the published catalog. Counts are display strings
// ("300+"), not numbers. PDFPath is relative to the configured PDF
// directory; books without one cannot feed the problem extractor.
type Book struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Author       string   `json:"author"`
	Authors      []string `json:"authors,omitempty"`
	PageCount    string   `json:"pageCount"`
	ProblemCount string   `json:"problemCount"`
	Description  string   `json:"description"`
	PDFPath      string   `json:"pdfPath,omitempty"`
}

// EmbedText builds the searchable representation of a book for embedding.
func (b Book) EmbedText() string {
	authors := b.Author
	if len(b.Authors) > 0 {
		authors = ""
		for i, a := range b.Authors {
			if i > 0 {
				authors += ", "
			}
			authors += a
		}
	}
	return b.Title + " by " + authors + ". " + b.Description + ". " +
		b.PageCount + " pages, " + b.ProblemCount + " problems."
}

// Books is the full catalog, in display order.
var Books = []Book{
	{
		ID:           "amc-10-12-key",
		Title:        "AMC 10/12 Key Fundamentals and Strategies",
		Author:       "Ritvik Rustagi",
		PageCount:    "25+",
		ProblemCount: "50+",
		Description:  "Quick reference guide with essential formulas, strategies, and tips for AMC competitions",
	},
	{
		ID:           "ace-amc-10-12",
		Title:        "ACE The AMC 10/12",
		Author:       "Ritvik Rustagi",
		PageCount:    "350+",
		ProblemCount: "300+",
		Description:  "Competition math strategies, problem-solving techniques, and practice problems for AMC success",
		PDFPath:      "/pdfs/ACE_The_AMC_10_and_12.pdf",
	},
	{
		ID:           "ace-ap-calculus-ab",
		Title:        "ACE AP Calculus AB",
		Author:       "Ritvik Rustagi",
		PageCount:    "280+",
		ProblemCount: "150+",
		Description:  "Comprehensive coverage of AP Calculus AB topics with detailed explanations and practice problems",
		PDFPath:      "/pdfs/ACE_AP_Calculus_AB.pdf",
	},
	{
		ID:           "ace-ap-calculus-bc",
		Title:        "ACE AP Calculus BC",
		Author:       "Ritvik Rustagi",
		PageCount:    "300+",
		ProblemCount: "200+",
		Description:  "Master advanced calculus topics including series, parametric equations, and polar coordinates",
		PDFPath:      "/pdfs/ACE_AP_Calculus_BC.pdf",
	},
	{
		ID:           "ace-ap-physics-1",
		Title:        "ACE AP Physics 1",
		Author:       "Ritvik Rustagi",
		PageCount:    "270+",
		ProblemCount: "180+",
		Description:  "Fundamental physics concepts, problem-solving strategies, and exam preparation techniques",
		PDFPath:      "/pdfs/ACE_AP_Physics_1.pdf",
	},
	{
		ID:           "ace-ap-physics-c",
		Title:        "ACE AP Physics C: Mechanics",
		Author:       "Ritvik Rustagi",
		PageCount:    "300+",
		ProblemCount: "160+",
		Description:  "Calculus-based mechanics covering kinematics, dynamics, energy, and momentum",
		PDFPath:      "/pdfs/ACE_AP_Physics_C_Mechanics.pdf",
	},
	{
		ID:           "ace-ap-chemistry",
		Title:        "ACE AP Chemistry",
		Author:       "Aditya Baisakh",
		PageCount:    "400+",
		ProblemCount: "100+",
		Description:  "Thorough review of AP Chemistry topics, including practice problems and exam strategies",
		PDFPath:      "/pdfs/ACE_AP_Chemistry.pdf",
	},
	{
		ID:           "ace-ap-csp",
		Title:        "ACE AP Computer Science Principles",
		Author:       "Ipsaan Sedhai, Aviva Iyerkhan",
		Authors:      []string{"Ipsaan Sedhai", "Aviva Iyerkhan"},
		PageCount:    "100+",
		ProblemCount: "100+",
		Description:  "Best AP Computer Science Principles study guide with clear explanations and exam-focused practice",
		PDFPath:      "/pdfs/ACE_AP_CSP.pdf",
	},
	{
		ID:           "ace-ap-statistics",
		Title:        "ACE AP Statistics Review Book",
		Author:       "Gulshan Bhalrhu, Caden Wang",
		Authors:      []string{"Gulshan Bhalrhu", "Caden Wang"},
		PageCount:    "200+",
		ProblemCount: "100+",
		Description:  "Best AP Statistics study guide with comprehensive coverage of statistical concepts and exam preparation",
		PDFPath:      "/pdfs/ACE_AP_Stats.pdf",
	},
	{
		ID:           "ace-ap-biology",
		Title:        "ACE AP Biology",
		Author:       "Aditya Baisakh, Amaan Shafi, Abby Trinh",
		Authors:      []string{"Aditya Baisakh", "Amaan Shafi", "Abby Trinh"},
		PageCount:    "300+",
		ProblemCount: "100+",
		Description:  "Comprehensive coverage of AP Biology topics with detailed explanations and practice problems",
		PDFPath:      "/pdfs/ACE_AP_Biology.pdf",
	},
	{
		ID:           "ace-ap-psychology",
		Title:        "ACE AP Psychology",
		Author:       "Sricharan Pullela, Shivek Saraf",
		Authors:      []string{"Sricharan Pullela", "Shivek Saraf"},
		PageCount:    "300+",
		ProblemCount: "100+",
		Description:  "Comprehensive coverage of AP Psychology topics with detailed explanations and practice problems",
		PDFPath:      "/pdfs/ACE_AP_Psychology.pdf",
	},
	{
		ID:           "ace-ap-human-geography",
		Title:        "ACE AP Human Geography",
		Author:       "Shivek Saraf",
		Authors:      []string{"Shivek Saraf"},
		PageCount:    "300+",
		ProblemCount: "100+",
		Description:  "Comprehensive coverage of AP Human Geography topics with detailed explanations and practice problems",
		PDFPath:      "/pdfs/ACE_AP_Human_Geography.pdf",
	},
}

// GetBookByID returns the catalog entry with the given id.
func GetBookByID(id string) (Book, bool) {
	for _, b := range Books {
		if b.ID == id {
			return b, true
		}
	}
	return Book{}, false
}

// GetBooksByAuthor returns books whose author list matches the given name,
// case-insensitive substring match.
func GetBooksByAuthor(name string) []Book {
	needle := strings.ToLower(name)
	var out []Book
	for _, b := range Books {
		if strings.Contains(strings.ToLower(b.Author), needle) {
			out = append(out, b)
			continue
		}
		for _, a := range b.Authors {
			if strings.Contains(strings.ToLower(a), needle) {
				out = append(out, b)
				break
			}
		}
	}
	return out
}
