package embed

import (
	"errors"
	"math"
	"path/filepath"
	"reflect"
	"testing"
)

var corpus = []string{
	"coastal towns serve fresh seafood daily",
	"seafood restaurants line the harbor",
	"mountain trails wind past alpine lakes",
	"alpine villages host winter markets",
}

func TestBuildModel_VocabularyAndIDF(t *testing.T) {
	m, err := BuildModel(corpus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if m.Dimension() != len(m.Terms) {
		t.Errorf("dimension must equal term count")
	}
	if !sortedStrings(m.Terms) {
		t.Errorf("terms must be stored in sorted order for reproducibility")
	}

	// "seafood" appears in 2 of 4 documents, "coastal" in 1.
	rare := idfOf(t, m, "coastal")
	common := idfOf(t, m, "seafood")
	if rare <= common {
		t.Errorf("rarer term must carry higher idf: coastal=%v seafood=%v", rare, common)
	}
	want := math.Log(5.0/3.0) + 1.0
	if math.Abs(common-want) > 1e-12 {
		t.Errorf("seafood idf = %v, want %v", common, want)
	}
}

func TestBuildModel_Deterministic(t *testing.T) {
	a, err := BuildModel(corpus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := BuildModel(corpus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(a.Terms, b.Terms) || !reflect.DeepEqual(a.IDF, b.IDF) {
		t.Errorf("same corpus must produce an identical model")
	}
}

func TestBuildModel_EmptyCorpus(t *testing.T) {
	if _, err := BuildModel(nil); err == nil {
		t.Errorf("expected error for empty corpus")
	}
	if _, err := BuildModel([]string{"", "   "}); err == nil {
		t.Errorf("expected error for tokenless corpus")
	}
}

func TestModel_SaveLoadRoundTrip(t *testing.T) {
	m, err := BuildModel(corpus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	path := filepath.Join(t.TempDir(), "vocab.json")
	if err := m.Save(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := LoadModel(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	text := "fresh seafood by the harbor"
	if !reflect.DeepEqual(m.Vector(text), loaded.Vector(text)) {
		t.Errorf("loaded model must embed identically to the built model")
	}
}

func TestLoadModel_Missing(t *testing.T) {
	_, err := LoadModel(filepath.Join(t.TempDir(), "absent.json"))
	if err == nil {
		t.Fatalf("expected error for missing model file")
	}
	if !errors.Is(err, ErrModelUnavailable) {
		t.Errorf("missing model must wrap ErrModelUnavailable, got %v", err)
	}
}

func TestVector_Properties(t *testing.T) {
	m, err := BuildModel(corpus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	vec := m.Vector("seafood restaurants near the harbor")
	if len(vec) != m.Dimension() {
		t.Fatalf("vector length %d, want %d", len(vec), m.Dimension())
	}
	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	if math.Abs(norm-1.0) > 1e-9 {
		t.Errorf("non-empty vector must be L2 normalized, norm^2 = %v", norm)
	}

	// No vocabulary overlap: zero vector, not an error.
	zero := m.Vector("zzz qqq xxx")
	for i, v := range zero {
		if v != 0 {
			t.Fatalf("expected zero vector, found %v at %d", v, i)
		}
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("The chef's SPECIAL, with herbs and olive-oil!")
	want := []string{"chef's", "special", "herbs", "olive", "oil"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %v, want %v", got, want)
	}
}

func idfOf(t *testing.T, m *Model, term string) float64 {
	t.Helper()
	for i, tm := range m.Terms {
		if tm == term {
			return m.IDF[i]
		}
	}
	t.Fatalf("term %q not in vocabulary", term)
	return 0
}

func sortedStrings(s []string) bool {
	for i := 1; i < len(s); i++ {
		if s[i-1] > s[i] {
			return false
		}
	}
	return true
}
