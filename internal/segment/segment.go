package segment

import (
	"math"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"docsift/internal/layout"
	"docsift/internal/section"
)

// titleZone is how far down from the top of page 1 the document title is
// expected to sit, in points.
const titleZone = 200.0

// Segment groups a document's ordered blocks into sections. Each detected
// heading opens a section; body blocks accumulate until the next heading.
// Documents with no detected headings yield a single section covering the
// full text so heading-less PDFs are not lost.
func Segment(doc *layout.Document, cls Classifier) section.Document {
	blocks := doc.Blocks()
	bodySize := BodyFontSize(blocks)
	title := ExtractTitle(blocks)
	if title == "" {
		title = TitleFromFilename(doc.Filename)
	}

	out := section.Document{
		ID:        uuid.NewString(),
		Filename:  doc.Filename,
		Title:     title,
		PageCount: doc.PageCount,
	}

	normTitle := normalize(title)
	headingIdx := make([]bool, len(blocks))
	var headingSizes []float64
	for i, b := range blocks {
		// The title itself is not a section heading.
		if normalize(b.Text) == normTitle {
			continue
		}
		sig := Signals{
			Text:      b.Text,
			FontSize:  b.FontSize,
			BodySize:  bodySize,
			Bold:      b.Bold,
			WordCount: len(strings.Fields(b.Text)),
			Top:       b.Top,
			Page:      b.Page,
		}
		if cls.IsHeading(sig) {
			headingIdx[i] = true
			headingSizes = append(headingSizes, roundSize(b.FontSize))
		}
	}

	levels := levelsBySize(headingSizes)

	var current *section.Section
	var body []string
	flush := func() {
		if current == nil {
			return
		}
		content := strings.TrimSpace(strings.Join(body, " "))
		// Headings with no body between them collapse: empty sections
		// are dropped, not emitted.
		if content != "" {
			current.Content = content
			out.Sections = append(out.Sections, *current)
		}
		current = nil
		body = nil
	}

	for i, b := range blocks {
		if headingIdx[i] {
			flush()
			current = &section.Section{
				ID:           uuid.NewString(),
				DocumentID:   out.ID,
				Heading:      b.Text,
				HeadingLevel: levels[roundSize(b.FontSize)],
				StartPage:    b.Page,
			}
			continue
		}
		if current != nil {
			body = append(body, b.Text)
		}
	}
	flush()

	if len(out.Sections) == 0 {
		heading := title
		if heading == "" {
			heading = "Untitled"
		}
		var all []string
		for _, b := range blocks {
			if normalize(b.Text) == normTitle {
				continue
			}
			all = append(all, b.Text)
		}
		content := strings.TrimSpace(strings.Join(all, " "))
		if content != "" {
			out.Sections = append(out.Sections, section.Section{
				ID:           uuid.NewString(),
				DocumentID:   out.ID,
				Heading:      heading,
				HeadingLevel: 1,
				StartPage:    1,
				Content:      content,
			})
		}
	}

	return out
}

// BodyFontSize estimates the modal body font size. Blocks in the title zone
// of page 1 are excluded so a large title does not skew the estimate.
func BodyFontSize(blocks []layout.TextBlock) float64 {
	freq := make(map[float64]int)
	for _, b := range blocks {
		if b.Page == 1 && b.Top < titleZone {
			continue
		}
		freq[roundSize(b.FontSize)]++
	}
	if len(freq) == 0 {
		for _, b := range blocks {
			freq[roundSize(b.FontSize)]++
		}
	}
	best, bestCount := 10.0, 0
	for size, count := range freq {
		if count > bestCount || (count == bestCount && size < best) {
			best, bestCount = size, count
		}
	}
	return best
}

// ExtractTitle finds the document title: the largest-font lines near the top
// of page 1, merged in top-to-bottom order. Date lines, page markers, and
// short fragments are skipped.
func ExtractTitle(blocks []layout.TextBlock) string {
	var firstPage []layout.TextBlock
	maxSize := 0.0
	for _, b := range blocks {
		if b.Page != 1 {
			continue
		}
		firstPage = append(firstPage, b)
		if b.FontSize > maxSize {
			maxSize = b.FontSize
		}
	}
	if len(firstPage) == 0 {
		return ""
	}

	var candidates []layout.TextBlock
	for _, b := range firstPage {
		if b.Top >= titleZone || b.FontSize < maxSize*0.9 {
			continue
		}
		if len(strings.Fields(b.Text)) < 3 {
			continue
		}
		if dateLine.MatchString(b.Text) || pageMarker.MatchString(b.Text) || captionLine.MatchString(strings.ToLower(b.Text)) {
			continue
		}
		candidates = append(candidates, b)
	}
	if len(candidates) == 0 {
		return ""
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].Top < candidates[j].Top })

	parts := make([]string, 0, len(candidates))
	for _, c := range candidates {
		parts = append(parts, c.Text)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// TitleFromFilename derives a readable title from a filename.
func TitleFromFilename(filename string) string {
	name := strings.TrimSuffix(filename, filepath.Ext(filename))
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return strings.TrimSpace(name)
}

// levelsBySize assigns heading levels by relative font-size rank: the
// largest distinct heading size observed becomes level 1, the next distinct
// size level 2, and so on.
func levelsBySize(sizes []float64) map[float64]int {
	distinct := make(map[float64]bool)
	for _, s := range sizes {
		distinct[s] = true
	}
	ordered := make([]float64, 0, len(distinct))
	for s := range distinct {
		ordered = append(ordered, s)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(ordered)))

	levels := make(map[float64]int, len(ordered))
	for i, s := range ordered {
		levels[s] = i + 1
	}
	return levels
}

func roundSize(f float64) float64 {
	return math.Round(f*10) / 10
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
