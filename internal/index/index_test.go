package index

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"docsift/internal/embed"
	"docsift/internal/segment"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func buildTestIndex(t *testing.T) *Index {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"coastal_guide.md": `# Coastal Guide

## Beaches and Swimming

The coastline offers sandy beaches with calm swimming waters through summer.

## Seafood Restaurants

Harbor restaurants serve fresh seafood caught the same morning by local boats.
`,
		"mountain_notes.txt": "Mountain trails wind past alpine lakes and quiet villages with winter markets.",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write corpus file: %v", err)
		}
	}

	var corpus []string
	for _, body := range files {
		corpus = append(corpus, body)
	}
	m, err := embed.BuildModel(corpus)
	if err != nil {
		t.Fatalf("build model: %v", err)
	}

	ix := New(embed.NewEngine(m, embed.Options{}), segment.DefaultHeuristics(), 3, discardLogger())
	if err := ix.Build(context.Background(), dir); err != nil {
		t.Fatalf("build index: %v", err)
	}
	return ix
}

func TestIndex_Documents(t *testing.T) {
	ix := buildTestIndex(t)
	docs := ix.Documents()
	if len(docs) != 2 {
		t.Fatalf("expected 2 indexed documents, got %d", len(docs))
	}
	for _, d := range docs {
		if d.ID == "" || d.Title == "" {
			t.Errorf("document missing id or title: %+v", d)
		}
		if d.SectionCount == 0 {
			t.Errorf("document %s indexed no sections", d.Filename)
		}
	}
}

func TestIndex_SearchFindsRelevantSection(t *testing.T) {
	ix := buildTestIndex(t)

	results := ix.Search("fresh seafood from the harbor", 5, 0.1)
	if len(results) == 0 {
		t.Fatalf("expected at least one result")
	}
	top := results[0]
	if top.Title != "coastal guide" {
		t.Errorf("expected the coastal guide to rank first, got %q", top.Title)
	}
	if len(top.Matches) == 0 {
		t.Fatalf("result group has no matches")
	}
	if top.Matches[0].Section != "Seafood Restaurants" {
		t.Errorf("expected the seafood section to lead, got %q", top.Matches[0].Section)
	}
	if top.Matches[0].TopSnippet == "" {
		t.Errorf("matches must carry a snippet")
	}
}

func TestIndex_SearchMinScoreFloor(t *testing.T) {
	ix := buildTestIndex(t)

	// Query with no vocabulary overlap scores 0 everywhere; a positive
	// floor must exclude everything rather than pad results.
	results := ix.Search("zzz qqq xxx", 5, 0.3)
	if len(results) != 0 {
		t.Errorf("expected no results below the floor, got %d groups", len(results))
	}
}

func TestIndex_SearchTopKCapsAcrossDocuments(t *testing.T) {
	ix := buildTestIndex(t)

	all := ix.Search("beaches seafood mountain villages swimming restaurants", 1, 0)
	total := 0
	for _, g := range all {
		total += len(g.Matches)
	}
	if total != 1 {
		t.Errorf("top_k must cap total matches across documents, got %d", total)
	}
}

func TestIndex_BuildEmptyDirFails(t *testing.T) {
	m, err := embed.BuildModel([]string{"some words"})
	if err != nil {
		t.Fatalf("build model: %v", err)
	}
	ix := New(embed.NewEngine(m, embed.Options{}), segment.DefaultHeuristics(), 3, discardLogger())
	if err := ix.Build(context.Background(), t.TempDir()); err == nil {
		t.Errorf("expected error for a corpus with no indexable sections")
	}
}
