package layout

import (
	"fmt"
	"os"

	pdflib "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ReadFile parses a PDF into per-page text blocks with layout metadata.
// Returns *UnreadableError when the file is not a valid PDF or contains
// zero extractable text (e.g. pure scanned images).
func ReadFile(path, filename string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &UnreadableError{Filename: filename, Err: err}
	}
	pageCount, err := api.PageCount(f, nil)
	f.Close()
	if err != nil {
		return nil, &UnreadableError{Filename: filename, Err: fmt.Errorf("page count: %w", err)}
	}

	pf, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, &UnreadableError{Filename: filename, Err: err}
	}
	defer pf.Close()

	doc := &Document{
		Filename:  filename,
		PageCount: pageCount,
	}

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		texts := pageTexts(page)
		if len(texts) == 0 {
			continue
		}
		blocks := MergeBlocks(texts, pageTopEdge(page, texts), i)
		if len(blocks) == 0 {
			continue
		}
		doc.Pages = append(doc.Pages, Page{Number: i, Blocks: blocks})
	}

	if len(doc.Pages) == 0 {
		return nil, &UnreadableError{Filename: filename, Err: fmt.Errorf("no extractable text")}
	}
	return doc, nil
}

// pageTexts extracts the raw text objects of one page. Malformed content
// streams panic inside the pdf library; such pages are skipped, not fatal.
func pageTexts(page pdflib.Page) (texts []pdflib.Text) {
	defer func() {
		if r := recover(); r != nil {
			texts = nil
		}
	}()
	return page.Content().Text
}

// pageTopEdge resolves the Y coordinate of the page's top edge from the
// MediaBox, walking up the page tree for inherited values. Falls back to
// the highest observed text baseline when no MediaBox is present.
func pageTopEdge(page pdflib.Page, texts []pdflib.Text) float64 {
	for v := page.V; !v.IsNull(); v = v.Key("Parent") {
		mb := v.Key("MediaBox")
		if !mb.IsNull() && mb.Len() == 4 {
			return mb.Index(3).Float64()
		}
	}
	top := 0.0
	for _, t := range texts {
		if y := t.Y + t.FontSize; y > top {
			top = y
		}
	}
	return top
}
