package segment

import (
	"regexp"
	"strings"
)

// Signals is the layout feature vector for one text block, fed to a
// Classifier to decide heading vs body.
type Signals struct {
	Text      string
	FontSize  float64
	BodySize  float64 // Modal body font size for the document
	Bold      bool
	WordCount int
	Top       float64 // Distance from page top in points
	Page      int
}

// Classifier decides whether a block opens a new section. Pluggable so the
// thresholds can be swapped without touching segmentation control flow.
type Classifier interface {
	IsHeading(sig Signals) bool
}

// Heuristics is the default layout-driven heading classifier.
type Heuristics struct {
	FontRatio    float64 // Heading font must exceed FontRatio x body size
	MaxBoldWords int     // Bold lines up to this many words also qualify
	MinLength    int     // Shorter candidates are rejected
	MaxWords     int
	MaxLength    int
	MinFontSize  float64
}

// DefaultHeuristics returns the tuned thresholds.
func DefaultHeuristics() Heuristics {
	return Heuristics{
		FontRatio:    1.15,
		MaxBoldWords: 12,
		MinLength:    4,
		MaxWords:     20,
		MaxLength:    80,
		MinFontSize:  10,
	}
}

var (
	longDigitRun = regexp.MustCompile(`\d{4,}`)
	urlLike      = regexp.MustCompile(`(?i)(RSVP|WWW\.|HTTP|\.COM|\.NET|\.ORG)`)
	listMarker   = regexp.MustCompile(`^([•\-*o]\s|\d+\)\s|[a-z]\)\s|\(\d+\)\s|\([a-z]\)\s)`)
	onlySymbols  = regexp.MustCompile(`^[\d\W]+$`)
	dateLine     = regexp.MustCompile(`^\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4}$`)
	pageMarker   = regexp.MustCompile(`^(\s*-\s*\d+\s*-\s*|\s*\d+\s*|\(\d+\))$`)
	captionLine  = regexp.MustCompile(`(?i)^(table|figure|appendix)\s+[a-z0-9]+`)
)

// Labels that show up as field captions and boilerplate, not headings.
var nonHeadingWords = map[string]bool{
	"date": true, "signature": true, "name": true, "page": true,
	"contact": true, "address": true, "email": true, "phone": true,
	"fax": true, "website": true, "remarks": true, "details": true,
	"version": true, "revision": true,
}

func (h Heuristics) IsHeading(sig Signals) bool {
	text := strings.TrimSpace(sig.Text)
	if len(text) < h.MinLength || len(text) > h.MaxLength {
		return false
	}
	if sig.WordCount > h.MaxWords {
		return false
	}
	if sig.FontSize < h.MinFontSize {
		return false
	}
	if longDigitRun.MatchString(text) || urlLike.MatchString(text) {
		return false
	}
	if onlySymbols.MatchString(text) || listMarker.MatchString(text) {
		return false
	}
	if dateLine.MatchString(text) || pageMarker.MatchString(text) || captionLine.MatchString(strings.ToLower(text)) {
		return false
	}
	if strings.HasSuffix(text, ":") && sig.WordCount < 5 {
		return false
	}
	if nonHeadingWords[strings.ToLower(text)] {
		return false
	}
	// Single words only qualify with a strong font or bold signal.
	if sig.WordCount < 2 && !sig.Bold && sig.FontSize <= sig.BodySize*h.FontRatio {
		return false
	}

	if sig.FontSize > sig.BodySize*h.FontRatio {
		return true
	}
	if sig.Bold && sig.WordCount <= h.MaxBoldWords && sig.FontSize >= sig.BodySize {
		return true
	}
	return false
}
