package layout

import (
	"fmt"
	"sort"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// TextBlock is one merged visual line of text with its layout metadata.
// Blocks are never mutated after creation; heading detection downstream
// relies on the font and position signal preserved here.
type TextBlock struct {
	Text     string
	FontSize float64 // Average font size across the line's text objects
	Bold     bool    // Any text object on the line uses a bold font
	X        float64 // Left edge in points
	Top      float64 // Distance from the top of the page in points
	Page     int     // 1-indexed page number
}

// Page holds the ordered blocks of a single page.
type Page struct {
	Number int
	Blocks []TextBlock
}

// Document is the layout-level view of one parsed PDF.
type Document struct {
	Filename  string
	PageCount int
	Pages     []Page
}

// Blocks returns all blocks across pages in reading order.
func (d *Document) Blocks() []TextBlock {
	var out []TextBlock
	for _, p := range d.Pages {
		out = append(out, p.Blocks...)
	}
	return out
}

// UnreadableError reports a document that cannot be parsed or yields zero
// extractable text. Per-document: callers skip the document and continue.
type UnreadableError struct {
	Filename string
	Err      error
}

func (e *UnreadableError) Error() string {
	return fmt.Sprintf("unreadable pdf %s: %v", e.Filename, e.Err)
}

func (e *UnreadableError) Unwrap() error { return e.Err }

// yLineTolerance groups text objects whose baselines are within this many
// points into the same visual line.
const yLineTolerance = 2.0

// wordGapFactor: a horizontal gap wider than this fraction of the font size
// separates two words.
const wordGapFactor = 0.3

// mergeLine is an intermediate accumulation of text objects on one baseline.
type mergeLine struct {
	y     float64
	texts []pdflib.Text
}

// MergeBlocks groups raw PDF text objects into per-line TextBlocks.
// pageTop is the Y coordinate of the top edge of the page (PDF user space
// runs bottom-up), used to express block positions as distance from the top.
func MergeBlocks(texts []pdflib.Text, pageTop float64, pageNum int) []TextBlock {
	if len(texts) == 0 {
		return nil
	}

	// Bucket text objects into lines by baseline Y.
	var lines []*mergeLine
	for _, t := range texts {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		var line *mergeLine
		for _, l := range lines {
			if abs(l.y-t.Y) <= yLineTolerance {
				line = l
				break
			}
		}
		if line == nil {
			line = &mergeLine{y: t.Y}
			lines = append(lines, line)
		}
		line.texts = append(line.texts, t)
	}

	// Top of page first; PDF Y grows upward.
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].y > lines[j].y })

	var blocks []TextBlock
	for _, line := range lines {
		sort.SliceStable(line.texts, func(i, j int) bool {
			return line.texts[i].X < line.texts[j].X
		})

		var sb strings.Builder
		var sizeSum float64
		bold := false
		minX := line.texts[0].X
		prevEnd := line.texts[0].X

		for i, t := range line.texts {
			if i > 0 && t.X-prevEnd > t.FontSize*wordGapFactor {
				sb.WriteByte(' ')
			}
			sb.WriteString(t.S)
			prevEnd = t.X + t.W
			sizeSum += t.FontSize
			if isBoldFont(t.Font) {
				bold = true
			}
			if t.X < minX {
				minX = t.X
			}
		}

		text := CleanText(sb.String())
		if text == "" {
			continue
		}
		blocks = append(blocks, TextBlock{
			Text:     text,
			FontSize: sizeSum / float64(len(line.texts)),
			Bold:     bold,
			X:        minX,
			Top:      pageTop - line.y,
			Page:     pageNum,
		})
	}
	return blocks
}

func isBoldFont(font string) bool {
	f := strings.ToLower(font)
	return strings.Contains(f, "bold") || strings.Contains(f, "black") || strings.Contains(f, "heavy")
}

// CleanText collapses whitespace runs and strips control characters.
func CleanText(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if r >= 32 || r == '\n' || r == '\t' {
			sb.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
