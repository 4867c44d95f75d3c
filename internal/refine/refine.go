package refine

import (
	"sort"
	"strings"

	"docsift/internal/embed"
	"docsift/internal/rank"
	"docsift/internal/section"
)

// minUnitChars filters out fragments too short to stand alone as an excerpt.
const minUnitChars = 20

// maxRefinedChars caps refined_text, cut at a word boundary.
const maxRefinedChars = 500

// Analyze re-segments a top-ranked section into sentence/paragraph units,
// re-ranks them against the same query vector, and returns the best unit as
// the section's refined text. A section-level match may be driven by one
// dense passage; this surfaces that passage instead of the whole body.
func Analyze(engine *embed.Engine, query []float64, res section.RankedResult, content string) section.Subsection {
	units := SplitUnits(content)
	if len(units) == 0 {
		return section.Subsection{
			SectionID:  res.SectionID,
			Text:       Truncate(strings.TrimSpace(content), maxRefinedChars),
			PageNumber: res.PageNumber,
		}
	}

	best, bestScore := 0, -2.0
	for i, unit := range units {
		score := rank.Cosine(query, engine.Embed(unit))
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return section.Subsection{
		SectionID:  res.SectionID,
		Text:       Truncate(units[best], maxRefinedChars),
		PageNumber: res.PageNumber,
		Score:      bestScore,
	}
}

// SplitUnits breaks section content into ranking units: paragraphs where the
// text has them, sentences grouped back up where a paragraph runs long.
func SplitUnits(content string) []string {
	var units []string
	for _, para := range splitParagraphs(content) {
		if len(para) <= maxRefinedChars {
			if len(para) >= minUnitChars {
				units = append(units, para)
			}
			continue
		}
		for _, sent := range SplitSentences(para) {
			if len(sent) >= minUnitChars {
				units = append(units, sent)
			}
		}
	}
	return units
}

// Snippets returns up to n of the most informative sentences of a text,
// longest first. Used at index time for the interactive corpus.
func Snippets(content string, n int) []string {
	sentences := SplitSentences(content)
	var keep []string
	for _, s := range sentences {
		if len(s) >= minUnitChars {
			keep = append(keep, s)
		}
	}
	sort.SliceStable(keep, func(i, j int) bool { return len(keep[i]) > len(keep[j]) })
	if len(keep) > n {
		keep = keep[:n]
	}
	return keep
}

// SplitSentences does basic sentence splitting on terminal punctuation.
func SplitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && text[i+1] == ' ' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func splitParagraphs(text string) []string {
	parts := strings.Split(text, "\n\n")
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Truncate cuts text to max characters at a word boundary, appending an
// ellipsis when anything was dropped.
func Truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := text[:max]
	if idx := strings.LastIndex(cut, " "); idx > max*4/5 {
		cut = cut[:idx]
	}
	return cut + "..."
}
