package embed

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"regexp"
	"sort"
	"strings"
)

// ErrModelUnavailable marks a model that cannot be loaded offline. Fatal for
// the whole run: no query can be ranked without it.
var ErrModelUnavailable = errors.New("embedding model unavailable")

// Model is the fixed local embedding model: a vocabulary with smoothed IDF
// weights. Embeddings over one model version are bit-for-bit reproducible.
type Model struct {
	Terms []string  `json:"terms"`
	IDF   []float64 `json:"idf"`

	vocab map[string]int
}

var tokenPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)

// LoadModel reads a model file from disk and prepares it for embedding.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrModelUnavailable, path, err)
	}
	if len(m.Terms) == 0 || len(m.Terms) != len(m.IDF) {
		return nil, fmt.Errorf("%w: %s has %d terms and %d idf values", ErrModelUnavailable, path, len(m.Terms), len(m.IDF))
	}
	m.vocab = make(map[string]int, len(m.Terms))
	for i, t := range m.Terms {
		m.vocab[t] = i
	}
	return &m, nil
}

// BuildModel fits a vocabulary model over a corpus: document frequencies per
// term, smoothed IDF, stable alphabetical term ordering.
func BuildModel(corpus []string) (*Model, error) {
	if len(corpus) == 0 {
		return nil, errors.New("empty corpus")
	}
	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]bool)
		for _, tok := range Tokenize(text) {
			if !seen[tok] {
				seen[tok] = true
				df[tok]++
			}
		}
	}
	if len(df) == 0 {
		return nil, errors.New("no tokens found in corpus")
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	m := &Model{
		Terms: terms,
		IDF:   make([]float64, len(terms)),
		vocab: make(map[string]int, len(terms)),
	}
	n := float64(len(corpus))
	for i, term := range terms {
		m.IDF[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
		m.vocab[term] = i
	}
	return m, nil
}

// Save writes the model file.
func (m *Model) Save(path string) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Dimension is the length of every vector this model produces.
func (m *Model) Dimension() int { return len(m.Terms) }

// Vector computes the L2-normalized TF-IDF embedding of text. A text with no
// vocabulary overlap yields the zero vector, which scores 0 against anything.
func (m *Model) Vector(text string) []float64 {
	vec := make([]float64, len(m.Terms))
	tf := make(map[int]int)
	total := 0
	for _, tok := range Tokenize(text) {
		if idx, ok := m.vocab[tok]; ok {
			tf[idx]++
			total++
		}
	}
	if total == 0 {
		return vec
	}
	for idx, count := range tf {
		vec[idx] = float64(count) / float64(total) * m.IDF[idx]
	}
	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

// Tokenize lowercases and splits text into word tokens, dropping stopwords.
func Tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if stopwords[t] {
			continue
		}
		out = append(out, t)
	}
	return out
}

var stopwords = func() map[string]bool {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for",
		"to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was",
		"were", "be", "been", "being", "it", "this", "that", "these", "those",
		"from", "up", "down", "over", "under", "again", "further", "than",
		"so", "such", "into", "about", "between", "through", "during",
		"before", "after", "above", "below", "out", "off", "own", "same",
		"too", "very", "can", "will", "just", "should", "now",
	}
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}()
