package textsim

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	t.Parallel()

	v := NewVectorizer()
	got := v.Tokenize("The Python developer, with 5 years of REST API work!")
	want := []string{"python", "developer", "years", "rest", "api", "work"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestFitTransformEmptyVocabulary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		docs []string
	}{
		{name: "no documents", docs: nil},
		{name: "blank documents", docs: []string{"", "   "}},
		{name: "stop words only", docs: []string{"the and of", "a to is"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := NewVectorizer().FitTransform(tt.docs); !errors.Is(err, ErrEmptyVocabulary) {
				t.Fatalf("expected ErrEmptyVocabulary, got %v", err)
			}
		})
	}
}

func TestFitTransformNormalizes(t *testing.T) {
	t.Parallel()

	vectors, err := NewVectorizer().FitTransform([]string{"golang kubernetes golang", "python django", ""})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vectors) != 3 {
		t.Fatalf("expected 3 vectors, got %d", len(vectors))
	}

	for i, vec := range vectors[:2] {
		var sum float64
		for _, x := range vec {
			sum += x * x
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Fatalf("vector %d is not unit length: %f", i, sum)
		}
	}

	for _, x := range vectors[2] {
		if x != 0 {
			t.Fatalf("expected zero vector for empty document, got %v", vectors[2])
		}
	}
}

func TestMaxFeaturesKeepsMostFrequent(t *testing.T) {
	t.Parallel()

	v := NewVectorizer(WithMaxFeatures(2))
	terms := v.selectFeatures(map[string]int{"zeta": 3, "alpha": 1, "beta": 3, "gamma": 1})
	if want := []string{"beta", "zeta"}; !reflect.DeepEqual(terms, want) {
		t.Fatalf("expected %v, got %v", want, terms)
	}

	terms = v.selectFeatures(map[string]int{"zeta": 1, "alpha": 1, "beta": 1})
	if want := []string{"alpha", "beta"}; !reflect.DeepEqual(terms, want) {
		t.Fatalf("expected alphabetical tie break %v, got %v", want, terms)
	}
}

func TestPair(t *testing.T) {
	t.Parallel()

	v := NewVectorizer()

	same, err := v.Pair("python django postgres", "python django postgres")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(same-1) > 1e-9 {
		t.Fatalf("expected identical documents to score 1, got %f", same)
	}

	disjoint, err := v.Pair("python django", "kotlin android")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if disjoint != 0 {
		t.Fatalf("expected disjoint documents to score 0, got %f", disjoint)
	}

	partial, err := v.Pair("python django rest", "python flask")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if partial <= 0 || partial >= 1 {
		t.Fatalf("expected partial overlap in (0,1), got %f", partial)
	}

	if _, err := v.Pair("", "the"); !errors.Is(err, ErrEmptyVocabulary) {
		t.Fatalf("expected ErrEmptyVocabulary, got %v", err)
	}
}

func TestRankOrdersByOverlap(t *testing.T) {
	t.Parallel()

	scores, err := NewVectorizer().Rank("backend engineer golang kubernetes", []string{
		"frontend engineer react",
		"backend engineer golang kubernetes",
		"backend engineer java",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scores) != 3 {
		t.Fatalf("expected 3 scores, got %d", len(scores))
	}
	if !(scores[1] > scores[2] && scores[2] > scores[0]) {
		t.Fatalf("unexpected ranking: %v", scores)
	}
}

func TestStopWordsOverride(t *testing.T) {
	t.Parallel()

	v := NewVectorizer(WithStopWords([]string{"python"}))
	got := v.Tokenize("python and go")
	if want := []string{"and", "go"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	if words := EnglishStopWords(); len(words) != len(englishStopWords) {
		t.Fatalf("expected copy of the default list")
	}
}

func TestCosineMismatchedLength(t *testing.T) {
	t.Parallel()

	if got := Cosine(Vector{1, 0}, Vector{1}); got != 0 {
		t.Fatalf("expected 0 for mismatched vectors, got %f", got)
	}
}
