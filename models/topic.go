package models

// Topic is a fixed academic subject the assistant can classify queries into.
type Topic struct {
	Name        string
	Description string
	Keywords    []string
}

// EmbedText builds the text embedded once per topic.
func (t Topic) EmbedText() string {
	return t.Name + ": " + t.Description
}

// TopicRelevance is a scored classification result. Relevance is normalized
// so the best-matching topic scores 1.0.
type TopicRelevance struct {
	Topic       string  `json:"topic"`
	Relevance   float64 `json:"relevance"`
	Description string  `json:"description"`
}

// Topics is the closed subject taxonomy.
var Topics = []Topic{
	{
		Name:        "Physics",
		Description: "Physics concepts including mechanics, kinematics, dynamics, forces, energy, momentum, waves, electricity, magnetism, thermodynamics",
		Keywords:    []string{"physics", "force", "acceleration", "velocity", "momentum", "energy", "kinematics", "dynamics", "newton", "mechanics", "electricity", "magnetism", "thermodynamics", "wave", "quantum"},
	},
	{
		Name:        "Calculus",
		Description: "Calculus topics including derivatives, integrals, limits, differentiation, integration, series, parametric equations, polar coordinates",
		Keywords:    []string{"calculus", "derivative", "integral", "limit", "differentiation", "integration", "series", "parametric", "polar", "differential", "antiderivative"},
	},
	{
		Name:        "Chemistry",
		Description: "Chemistry concepts including atoms, molecules, reactions, compounds, elements, stoichiometry, thermodynamics, kinetics, equilibrium",
		Keywords:    []string{"chemistry", "molecule", "atom", "reaction", "compound", "element", "stoichiometry", "thermodynamics", "kinetics", "equilibrium", "organic", "inorganic"},
	},
	{
		Name:        "Biology",
		Description: "Biology topics including cells, genetics, evolution, ecology, anatomy, physiology, biochemistry, molecular biology",
		Keywords:    []string{"biology", "cell", "genetics", "evolution", "ecology", "anatomy", "physiology", "biochemistry", "molecular", "dna", "rna", "protein"},
	},
	{
		Name:        "Statistics",
		Description: "Statistics and probability including data analysis, distributions, hypothesis testing, regression, probability, sampling",
		Keywords:    []string{"statistics", "probability", "distribution", "hypothesis", "regression", "sampling", "data analysis", "mean", "median", "standard deviation", "variance"},
	},
	{
		Name:        "Computer Science",
		Description: "Computer science topics including programming, algorithms, data structures, software development, computer systems",
		Keywords:    []string{"computer science", "programming", "algorithm", "data structure", "software", "code", "programming language", "computing", "csp"},
	},
	{
		Name:        "Mathematics",
		Description: "General mathematics including algebra, geometry, trigonometry, number theory, competition math, problem solving",
		Keywords:    []string{"math", "mathematics", "algebra", "geometry", "trigonometry", "amc", "competition", "problem solving", "number theory"},
	},
	{
		Name:        "Psychology",
		Description: "Psychology topics including cognitive psychology, behavioral psychology, social psychology, developmental psychology",
		Keywords:    []string{"psychology", "cognitive", "behavioral", "social psychology", "developmental", "mental", "brain", "neuroscience"},
	},
	{
		Name:        "Geography",
		Description: "Human geography including population, migration, culture, political geography, economic geography, urban geography",
		Keywords:    []string{"geography", "population", "migration", "culture", "political", "economic", "urban", "human geography"},
	},
}

// TopicBookIDs maps a topic name to the catalog books that cover it.
var TopicBookIDs = map[string][]string{
	"Biology":          {"ace-ap-biology"},
	"Physics":          {"ace-ap-physics-1", "ace-ap-physics-c"},
	"Calculus":         {"ace-ap-calculus-ab", "ace-ap-calculus-bc"},
	"Chemistry":        {"ace-ap-chemistry"},
	"Statistics":       {"ace-ap-statistics"},
	"Computer Science": {"ace-ap-csp"},
	"Psychology":       {"ace-ap-psychology"},
	"Geography":        {"ace-ap-human-geography"},
	"Mathematics":      {"ace-amc-10-12", "amc-10-12-key"},
}
