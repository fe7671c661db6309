package resume

import (
	"reflect"
	"testing"
)

func TestVocabularyFind(t *testing.T) {
	t.Parallel()

	v := DefaultVocabulary()
	got := v.Find("Built microservices with Go, gRPC and Kubernetes on AWS; some Machine Learning.")
	want := []string{"go", "aws", "kubernetes", "machine learning", "microservices"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	if canonical, ok := v.Canonical("  PyTorch "); !ok || canonical != "pytorch" {
		t.Fatalf("expected canonical pytorch, got %q %v", canonical, ok)
	}

	if got := NewVocabulary([]string{"Go", " go ", "", "Rust"}).Len(); got != 2 {
		t.Fatalf("expected 2 distinct skills, got %d", got)
	}
}

func TestDefaultTablesAreIsolated(t *testing.T) {
	t.Parallel()

	cities := DefaultCities()
	cities[0] = "atlantis"
	if DefaultCities()[0] != "bangalore" {
		t.Fatalf("default cities must be returned as a copy")
	}

	if got := NewCityGazetteer(DefaultCities()).Locate("Open to Pune or Navi Mumbai"); !reflect.DeepEqual(got, []string{"Mumbai", "Pune"}) {
		t.Fatalf("unexpected cities %v", got)
	}
}

func TestCityGazetteerMatchesSubstrings(t *testing.T) {
	t.Parallel()

	g := NewCityGazetteer([]string{"Bangalore", "", "pune", "PUNE"})
	got := g.Locate("Bangalore560037, open to PuneCity")
	if want := []string{"Bangalore", "Pune"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
