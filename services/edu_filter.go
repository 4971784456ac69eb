package services

import (
	"context"
	"regexp"
	"strings"

	"tmas-assistant-backend/internal/ai"
	"tmas-assistant-backend/internal/logger"
)

// educationalText describes the space of allowed queries; its embedding is
// computed once and compared against every incoming message.
const educationalText = `Educational content about mathematics, science, physics, chemistry, biology, calculus, statistics, computer science, psychology, geography, competition math, AP courses, study strategies, academic learning, problem solving, formulas, concepts, theories, exam preparation, homework help, tutoring, algebra, geometry, trigonometry, kinematics, dynamics, genetics, evolution, programming, algorithms, data analysis, hypothesis testing, cognitive psychology, human geography, population studies`

// EducationalFilter gates chat messages to educational queries. The
// embedding check and the keyword check are OR'd: a query passes if either
// accepts it. With no provider configured only the keyword path runs.
type EducationalFilter struct {
	cache     *EmbeddingCache
	threshold float64
}

func NewEducationalFilter(cache *EmbeddingCache, threshold float64) *EducationalFilter {
	return &EducationalFilter{cache: cache, threshold: threshold}
}

// IsEducational reports whether the query should reach the assistant.
// Embedding failures degrade to the keyword check rather than blocking.
func (f *EducationalFilter) IsEducational(ctx context.Context, query string) bool {
	queryVec, err := f.cache.Get(ctx, "query", query)
	if err != nil {
		logger.Warn("Educational check falling back to keywords", "error", err)
		return isEducationalByKeywords(query)
	}

	eduVec, err := f.cache.Get(ctx, "edu", educationalText)
	if err != nil {
		logger.Warn("Educational reference embedding failed", "error", err)
		return isEducationalByKeywords(query)
	}

	similarity, err := ai.CosineSimilarity(queryVec, eduVec)
	if err != nil {
		logger.Error("Educational similarity failed", "error", err)
		return isEducationalByKeywords(query)
	}

	return similarity >= f.threshold || isEducationalByKeywords(query)
}

var educationalKeywords = []string{
	// Math subjects
	"math", "mathematics", "calculus", "algebra", "geometry", "trigonometry",
	"precalculus", "arithmetic", "number theory", "discrete math",
	// Competition math
	"amc", "competition math", "olympiad", "math contest", "problem solving",
	// Calculus concepts
	"derivative", "integral", "limit", "differentiation", "integration",
	"antiderivative", "differential", "series", "sequence", "convergence",
	"parametric", "polar coordinates", "vector calculus", "multivariable",
	// Algebra concepts
	"polynomial", "quadratic", "linear", "exponential", "logarithm",
	"inequality", "system of equations", "matrix", "determinant",
	// Geometry concepts
	"triangle", "circle", "angle", "perimeter", "area", "volume",
	"surface area", "theorem", "proof", "congruent", "similar",
	// Science subjects
	"physics", "chemistry", "biology", "science", "stem",
	// Physics concepts
	"force", "energy", "velocity", "acceleration", "momentum", "kinematics",
	"dynamics", "net force", "newton", "motion", "displacement", "speed",
	"mass", "weight", "gravity", "friction", "tension", "normal force",
	"work", "power", "torque", "rotation", "angular", "oscillation",
	"wave", "frequency", "wavelength", "amplitude", "electricity",
	"magnetism", "electric field", "magnetic field", "current", "voltage",
	"resistance", "circuit", "thermodynamics", "entropy", "heat",
	"temperature", "pressure", "gas law", "quantum", "photon",
	// Chemistry concepts
	"molecule", "atom", "reaction", "compound", "element", "bond",
	"ionic", "covalent", "molecular", "stoichiometry", "mole",
	"molarity", "concentration", "ph", "acid", "base", "buffer",
	"equilibrium", "kinetics", "enthalpy",
	"gibbs", "oxidation", "reduction", "redox", "organic", "inorganic",
	"periodic table", "electron", "proton", "neutron", "ion", "isotope",
	// Biology concepts
	"cell", "genetics", "evolution", "ecology", "anatomy", "physiology",
	"biochemistry", "molecular biology", "dna", "rna", "protein",
	"enzyme", "metabolism", "photosynthesis", "respiration", "mitosis",
	"meiosis", "chromosome", "gene", "allele", "mutation", "natural selection",
	"ecosystem", "biome", "population", "community", "organism", "tissue",
	"organ", "system", "homeostasis", "hormone", "neuron", "synapse",
	// Statistics concepts
	"statistics", "probability", "distribution", "normal distribution",
	"binomial", "hypothesis", "hypothesis testing", "regression", "correlation",
	"sampling", "sample", "mean", "median", "mode",
	"standard deviation", "variance", "z-score", "t-test", "chi-square",
	"confidence interval", "p-value", "statistical significance", "data analysis",
	// Computer Science concepts
	"computer science", "programming", "algorithm", "data structure",
	"software", "code", "programming language", "computing", "csp",
	"variable", "function", "loop", "array", "list", "string", "integer",
	"boolean", "conditional", "recursion", "sorting", "searching",
	"binary", "hexadecimal", "bit", "byte", "memory", "cpu",
	// Psychology concepts
	"psychology", "cognitive", "behavioral", "social psychology",
	"developmental", "mental", "brain", "neuroscience",
	"neurotransmitter", "learning", "perception",
	"sensation", "consciousness", "emotion", "personality", "intelligence",
	"motivation", "stress", "anxiety", "depression", "therapy", "treatment",
	// Geography concepts
	"geography", "human geography", "migration", "culture",
	"political geography", "economic geography", "urban geography",
	"demography", "demographic", "urbanization", "rural", "urban",
	"sustainability", "environment", "climate", "region", "location",
	"place", "space", "scale", "globalization", "development",
	// Problem solving and learning
	"problem", "solve", "equation", "formula", "concept", "theory",
	"principle", "law", "rule", "method", "technique", "strategy",
	// Learning context
	"study", "learn", "homework", "assignment", "exam", "test", "quiz",
	"ap", "course", "class", "lesson", "tutorial", "explain", "understand",
	"review", "practice", "exercise", "worksheet", "textbook", "guide",
	// Question words
	"what is", "what are", "what does", "why", "how", "how does", "how to",
	"when", "where", "which", "who", "describe", "define",
	"compare", "contrast", "analyze", "evaluate", "interpret", "summarize",
	// Action words
	"calculate", "find", "determine", "compute",
	"derive", "prove", "show", "demonstrate", "illustrate",
	"identify", "classify", "categorize", "predict", "estimate", "approximate",
}

var nonEducationalKeywords = []string{
	"pizza", "restaurant", "food", "eat", "order", "delivery",
	"sports", "football", "basketball", "baseball", "soccer", "game", "score",
	"49ers", "giants", "team", "player", "match", "playoff",
	"movie", "show", "tv", "entertainment", "celebrity", "actor",
	"weather", "forecast", "temperature", "rain", "snow",
	"shopping", "buy", "purchase", "store", "mall",
	"travel", "vacation", "hotel", "flight", "trip",
	"news", "politics", "election", "president", "government",
}

var questionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^what\s+(is|are|does|do|was|were)`),
	regexp.MustCompile(`(?i)^how\s+(does|do|is|are|can|will)`),
	regexp.MustCompile(`(?i)^why\s+(does|do|is|are|can|will)`),
	regexp.MustCompile(`(?i)^explain\s+`),
	regexp.MustCompile(`(?i)^describe\s+`),
	regexp.MustCompile(`(?i)^define\s+`),
	regexp.MustCompile(`(?i)^calculate\s+`),
	regexp.MustCompile(`(?i)^find\s+`),
	regexp.MustCompile(`(?i)^determine\s+`),
	regexp.MustCompile(`(?i)^solve\s+`),
}

// Off-topic mentions are rescued when clearly framed academically, e.g.
// "the physics of football".
var academicContextRe = regexp.MustCompile(`\b(physics|math|science|calculate|formula|problem|force|energy|velocity|acceleration|equation|concept|theory)\b`)

// isEducationalByKeywords is the no-provider decision ladder: educational
// keywords accept, question openers accept, non-educational keywords reject
// unless academically framed, very short queries reject, long queries pass.
func isEducationalByKeywords(query string) bool {
	queryLower := strings.ToLower(query)

	for _, keyword := range educationalKeywords {
		if strings.Contains(queryLower, keyword) {
			return true
		}
	}

	for _, pattern := range questionPatterns {
		if pattern.MatchString(query) {
			return true
		}
	}

	for _, keyword := range nonEducationalKeywords {
		if strings.Contains(queryLower, keyword) {
			if !academicContextRe.MatchString(queryLower) {
				return false
			}
		}
	}

	wordCount := len(strings.Fields(strings.TrimSpace(query)))
	if wordCount < 3 {
		return false
	}

	// Can't tell; longer queries are more likely genuine questions, so let
	// the assistant decide.
	return wordCount >= 5
}
