package resume

import (
	"strings"

	"github.com/spigell/joblo/internal/textsim"
)

var defaultSkills = []string{
	// languages
	"python", "java", "javascript", "typescript", "c++", "c#", "ruby", "go", "rust", "kotlin", "swift",
	"php", "scala", "r", "matlab", "perl", "objective-c", "dart", "lua", "julia", "fortran",

	// web
	"html", "css", "react", "angular", "vue", "node.js", "express", "django", "flask", "spring",
	"asp.net", "rails", "laravel", "symfony", "jquery", "bootstrap", "tailwind", "sass", "webpack",

	// databases
	"sql", "mysql", "postgresql", "mongodb", "redis", "elasticsearch", "cassandra", "dynamodb",
	"oracle", "sql server", "firebase", "neo4j", "influxdb", "couchdb",

	// cloud and devops
	"aws", "azure", "gcp", "docker", "kubernetes", "jenkins", "git", "ci/cd", "terraform",
	"ansible", "puppet", "chef", "circleci", "travis ci", "gitlab", "bitbucket",

	// data
	"machine learning", "deep learning", "tensorflow", "pytorch", "scikit-learn", "keras",
	"pandas", "numpy", "matplotlib", "seaborn", "nlp", "computer vision", "opencv",

	"rest api", "graphql", "microservices", "agile", "scrum", "jira", "linux", "unix",
	"security", "blockchain", "iot", "mobile development", "android", "ios", "react native",
	"flutter", "xamarin", "unity", "unreal engine",
}

// Vocabulary is an immutable list of known skill keywords.
type Vocabulary struct {
	entries []string
	lookup  map[string]string
}

func NewVocabulary(entries []string) *Vocabulary {
	v := &Vocabulary{lookup: make(map[string]string, len(entries))}
	for _, e := range entries {
		e = strings.TrimSpace(e)
		key := strings.ToLower(e)
		if e == "" {
			continue
		}
		if _, ok := v.lookup[key]; ok {
			continue
		}
		v.lookup[key] = e
		v.entries = append(v.entries, e)
	}
	return v
}

// DefaultVocabulary covers common languages, frameworks, databases and tooling.
func DefaultVocabulary() *Vocabulary {
	return NewVocabulary(defaultSkills)
}

// Len is the number of distinct skills known.
func (v *Vocabulary) Len() int {
	return len(v.entries)
}

// Canonical returns the vocabulary spelling of skill, if it is known.
func (v *Vocabulary) Canonical(skill string) (string, bool) {
	e, ok := v.lookup[strings.ToLower(strings.TrimSpace(skill))]
	return e, ok
}

// Find returns the entries that occur in text as whole words, in vocabulary order.
func (v *Vocabulary) Find(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, e := range v.entries {
		if textsim.ContainsWord(lower, strings.ToLower(e)) {
			found = append(found, e)
		}
	}
	return found
}
