// Package textsim implements TF-IDF weighting and cosine similarity for short
// documents such as résumés and job postings.
package textsim

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
)

const defaultMaxFeatures = 1000

// ErrEmptyVocabulary is returned when no term survives tokenization and stop-word removal.
var ErrEmptyVocabulary = errors.New("empty vocabulary: documents contain only stop words or no terms")

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Vector is an L2-normalised TF-IDF vector over the fitted vocabulary.
type Vector []float64

// Option configures a Vectorizer.
type Option func(*Vectorizer)

// WithMaxFeatures caps the vocabulary to the n most frequent terms. n <= 0 disables the cap.
func WithMaxFeatures(n int) Option {
	return func(v *Vectorizer) {
		v.maxFeatures = n
	}
}

// WithStopWords replaces the stop-word list.
func WithStopWords(words []string) Option {
	return func(v *Vectorizer) {
		v.stopWords = toSet(words)
	}
}

// Vectorizer is stateless between calls: every FitTransform builds a fresh vocabulary.
type Vectorizer struct {
	maxFeatures int
	stopWords   map[string]struct{}
}

func NewVectorizer(opts ...Option) *Vectorizer {
	v := &Vectorizer{
		maxFeatures: defaultMaxFeatures,
		stopWords:   toSet(englishStopWords),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Tokenize lowercases text and returns its terms without stop words.
func (v *Vectorizer) Tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	tokens := raw[:0]
	for _, token := range raw {
		if _, stop := v.stopWords[token]; stop {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}

// FitTransform fits a vocabulary on docs and returns one vector per document.
// Documents without any vocabulary term get a zero vector.
func (v *Vectorizer) FitTransform(docs []string) ([]Vector, error) {
	counts := make([]map[string]int, len(docs))
	corpusFreq := make(map[string]int)
	docFreq := make(map[string]int)

	for i, doc := range docs {
		tf := make(map[string]int)
		for _, token := range v.Tokenize(doc) {
			tf[token]++
		}
		for term, n := range tf {
			corpusFreq[term] += n
			docFreq[term]++
		}
		counts[i] = tf
	}

	if len(corpusFreq) == 0 {
		return nil, ErrEmptyVocabulary
	}

	vocabulary := v.selectFeatures(corpusFreq)
	index := make(map[string]int, len(vocabulary))
	for i, term := range vocabulary {
		index[term] = i
	}

	n := float64(len(docs))
	idf := make([]float64, len(vocabulary))
	for i, term := range vocabulary {
		idf[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	vectors := make([]Vector, len(docs))
	for i, tf := range counts {
		vec := make(Vector, len(vocabulary))
		for term, c := range tf {
			if j, ok := index[term]; ok {
				vec[j] = float64(c) * idf[j]
			}
		}
		normalize(vec)
		vectors[i] = vec
	}

	return vectors, nil
}

// Pair fits on exactly the two documents and returns their cosine similarity.
func (v *Vectorizer) Pair(a, b string) (float64, error) {
	vectors, err := v.FitTransform([]string{a, b})
	if err != nil {
		return 0, err
	}
	return Cosine(vectors[0], vectors[1]), nil
}

// Rank fits one vocabulary over reference and candidates and returns the
// similarity of every candidate to the reference, in candidate order.
func (v *Vectorizer) Rank(reference string, candidates []string) ([]float64, error) {
	docs := make([]string, 0, len(candidates)+1)
	docs = append(docs, reference)
	docs = append(docs, candidates...)

	vectors, err := v.FitTransform(docs)
	if err != nil {
		return nil, err
	}

	scores := make([]float64, len(candidates))
	for i := range candidates {
		scores[i] = Cosine(vectors[0], vectors[i+1])
	}
	return scores, nil
}

// Cosine returns the cosine similarity of two vectors of equal length.
// Zero vectors have similarity 0.
func Cosine(a, b Vector) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	return math.Max(0, math.Min(1, sim))
}

// selectFeatures keeps the most frequent terms, ties broken alphabetically,
// and returns them in alphabetical order.
func (v *Vectorizer) selectFeatures(freq map[string]int) []string {
	terms := make([]string, 0, len(freq))
	for term := range freq {
		terms = append(terms, term)
	}

	if v.maxFeatures > 0 && len(terms) > v.maxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if freq[terms[i]] != freq[terms[j]] {
				return freq[terms[i]] > freq[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:v.maxFeatures]
	}

	sort.Strings(terms)
	return terms
}

func normalize(vec Vector) {
	var sum float64
	for _, x := range vec {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] /= norm
	}
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return set
}
