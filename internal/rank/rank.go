package rank

import (
	"math"
	"sort"

	"docsift/internal/section"
)

// Candidate is one section entering the cross-document ranking, with enough
// provenance to break score ties deterministically.
type Candidate struct {
	Section  section.Section
	Document string // Source filename
	DocOrder int    // Position of the document in the input configuration
	Ord      int    // Insertion order across the gathered candidate set
	Vector   []float64
}

// Options controls result count and the optional similarity floor.
type Options struct {
	TopK     int
	MinScore float64 // Inclusive floor, applied only when UseFloor is set
	UseFloor bool
}

// DefaultTopK caps extracted_sections unless the caller overrides it.
const DefaultTopK = 5

// Rank scores every candidate against the query vector and returns the top-K
// as RankedResults with 1-based importance ranks. Order is total and
// reproducible: score descending, then document input order, then start
// page, then candidate insertion order.
func Rank(query []float64, cands []Candidate, opts Options) []section.RankedResult {
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}

	scored := make([]scoredCandidate, 0, len(cands))
	for _, c := range cands {
		s := Cosine(query, c.Vector)
		if opts.UseFloor && s < opts.MinScore {
			continue
		}
		scored = append(scored, scoredCandidate{Candidate: c, score: s})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.DocOrder != b.DocOrder {
			return a.DocOrder < b.DocOrder
		}
		if a.Section.StartPage != b.Section.StartPage {
			return a.Section.StartPage < b.Section.StartPage
		}
		return a.Ord < b.Ord
	})

	if len(scored) > opts.TopK {
		scored = scored[:opts.TopK]
	}

	results := make([]section.RankedResult, len(scored))
	for i, s := range scored {
		results[i] = section.RankedResult{
			DocumentID:     s.Section.DocumentID,
			SectionID:      s.Section.ID,
			ImportanceRank: i + 1,
			PageNumber:     s.Section.StartPage,
			Title:          s.Section.Heading,
			Document:       s.Document,
			Score:          s.score,
		}
	}
	return results
}

type scoredCandidate struct {
	Candidate
	score float64
}

// Cosine computes cosine similarity in [-1, 1]. A zero vector on either side
// scores 0.
func Cosine(a, b []float64) float64 {
	n := min(len(a), len(b))
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
