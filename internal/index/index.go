package index

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"docsift/internal/embed"
	"docsift/internal/layout"
	"docsift/internal/parser"
	"docsift/internal/rank"
	"docsift/internal/refine"
	"docsift/internal/section"
	"docsift/internal/segment"
)

// Entry is one indexed section with its precomputed vector and snippet.
type Entry struct {
	DocID      string
	DocTitle   string
	Heading    string
	PageNumber int
	TopSnippet string
	Vector     []float64
}

// DocInfo summarizes one indexed document for listing endpoints.
type DocInfo struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	Title        string `json:"title"`
	PageCount    int    `json:"page_count,omitempty"`
	SectionCount int    `json:"section_count"`
}

// Match is one section hit inside a search result group.
type Match struct {
	Section    string  `json:"section"`
	PageNumber int     `json:"page_number"`
	TopSnippet string  `json:"top_snippet"`
	Score      float64 `json:"score"`
}

// DocResult groups a document's matches, ordered best match first.
type DocResult struct {
	DocID   string  `json:"doc_id"`
	Title   string  `json:"title"`
	Matches []Match `json:"matches"`
}

// Index holds the in-memory section index for the interactive server.
// It is built once at startup and read-only afterwards, so handlers
// share it without locking.
type Index struct {
	embedder *embed.Engine
	cls      segment.Classifier
	snippets int
	log      *slog.Logger

	docs    []DocInfo
	entries []Entry
}

func New(embedder *embed.Engine, cls segment.Classifier, snippets int, log *slog.Logger) *Index {
	if snippets <= 0 {
		snippets = 3
	}
	return &Index{embedder: embedder, cls: cls, snippets: snippets, log: log}
}

// Build walks dir and indexes every supported document it finds.
// Unreadable documents are logged and skipped, same as the batch engine.
func (ix *Index) Build(ctx context.Context, dir string) error {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if strings.EqualFold(filepath.Ext(name), ".pdf") || parser.IsSupportedExtension(name) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk corpus dir: %w", err)
	}
	sort.Strings(paths)

	for _, path := range paths {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := ix.addFile(ctx, path); err != nil {
			ix.log.Warn("skipping corpus document", "path", path, "error", err)
		}
	}
	if len(ix.entries) == 0 {
		return fmt.Errorf("no indexable sections under %s", dir)
	}
	ix.log.Info("corpus indexed", "documents", len(ix.docs), "sections", len(ix.entries))
	return nil
}

func (ix *Index) addFile(ctx context.Context, path string) error {
	filename := filepath.Base(path)
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		lay, err := layout.ReadFile(path, filename)
		if err != nil {
			return err
		}
		doc := segment.Segment(lay, ix.cls)
		return ix.addSections(ctx, doc.ID, filename, doc.Title, doc.PageCount, doc.Sections)
	}

	p, err := parser.ForFile(filename)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	secs, err := p.Parse(f, filename)
	if err != nil {
		return err
	}
	docID := uuid.New().String()
	title := segment.TitleFromFilename(filename)
	converted := make([]section.Section, 0, len(secs))
	for _, s := range secs {
		heading := s.Heading
		if heading == "" {
			heading = title
		}
		converted = append(converted, section.Section{
			ID:           uuid.New().String(),
			DocumentID:   docID,
			Heading:      heading,
			HeadingLevel: s.Level,
			StartPage:    1,
			Content:      s.Content,
		})
	}
	return ix.addSections(ctx, docID, filename, title, 0, converted)
}

func (ix *Index) addSections(ctx context.Context, docID, filename, title string, pageCount int, secs []section.Section) error {
	texts := make([]string, len(secs))
	for i, s := range secs {
		texts[i] = s.Content
	}
	vectors, err := ix.embedder.EmbedAll(ctx, texts)
	if err != nil {
		return err
	}

	kept := 0
	for i, s := range secs {
		if strings.TrimSpace(s.Content) == "" {
			continue
		}
		snippet := ""
		if sn := refine.Snippets(s.Content, ix.snippets); len(sn) > 0 {
			snippet = refine.Truncate(sn[0], 500)
		}
		ix.entries = append(ix.entries, Entry{
			DocID:      docID,
			DocTitle:   title,
			Heading:    s.Heading,
			PageNumber: s.StartPage,
			TopSnippet: snippet,
			Vector:     vectors[i],
		})
		kept++
	}
	ix.docs = append(ix.docs, DocInfo{
		ID:           docID,
		Filename:     filename,
		Title:        title,
		PageCount:    pageCount,
		SectionCount: kept,
	})
	return nil
}

// Documents lists the indexed corpus.
func (ix *Index) Documents() []DocInfo {
	out := make([]DocInfo, len(ix.docs))
	copy(out, ix.docs)
	return out
}

// Search embeds the query text and returns the top scoring sections,
// grouped by document. minScore is an inclusive floor; sections scoring
// below it never appear even when fewer than topK qualify.
func (ix *Index) Search(query string, topK int, minScore float64) []DocResult {
	queryVec := ix.embedder.Embed(query)

	type scored struct {
		idx   int
		score float64
	}
	var hits []scored
	for i, e := range ix.entries {
		s := rank.Cosine(queryVec, e.Vector)
		if s < minScore {
			continue
		}
		hits = append(hits, scored{idx: i, score: s})
	}
	sort.SliceStable(hits, func(a, b int) bool {
		if hits[a].score != hits[b].score {
			return hits[a].score > hits[b].score
		}
		return hits[a].idx < hits[b].idx
	})
	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}

	// Group by document, best match first within and across groups.
	byDoc := make(map[string]*DocResult)
	var order []string
	for _, h := range hits {
		e := ix.entries[h.idx]
		g, ok := byDoc[e.DocID]
		if !ok {
			g = &DocResult{DocID: e.DocID, Title: e.DocTitle}
			byDoc[e.DocID] = g
			order = append(order, e.DocID)
		}
		g.Matches = append(g.Matches, Match{
			Section:    e.Heading,
			PageNumber: e.PageNumber,
			TopSnippet: e.TopSnippet,
			Score:      h.score,
		})
	}

	// Hits are already sorted, so first appearance order equals best
	// match order across documents.
	results := make([]DocResult, 0, len(order))
	for _, id := range order {
		results = append(results, *byDoc[id])
	}
	return results
}
