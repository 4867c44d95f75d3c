package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"docsift/internal/config"
	"docsift/internal/embed"
	"docsift/internal/section"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testEmbedder(t *testing.T) *embed.Engine {
	t.Helper()
	m, err := embed.BuildModel([]string{
		"nightlife bars and beach clubs along the coast",
		"family friendly coastal activities and water sports",
		"packing lists for summer trips with light clothing",
		"regional cooking classes and wine tasting experiences",
	})
	if err != nil {
		t.Fatalf("build model: %v", err)
	}
	return embed.NewEngine(m, embed.Options{})
}

func testSpec() *config.RunSpec {
	spec := &config.RunSpec{}
	spec.Persona.Role = "Travel Planner"
	spec.JobToBeDone.Task = "Plan a trip with nightlife and beach clubs"
	spec.Documents = []config.RunDocument{
		{Filename: "things_to_do.pdf"},
		{Filename: "tips.pdf"},
	}
	return spec
}

func sec(id, docID, heading, content string, page int) section.Section {
	return section.Section{
		ID:         id,
		DocumentID: docID,
		Heading:    heading,
		StartPage:  page,
		Content:    content,
	}
}

func testDocs() []extracted {
	return []extracted{
		{order: 0, doc: section.Document{
			ID:       "d1",
			Filename: "things_to_do.pdf",
			Title:    "Things to Do",
			Sections: []section.Section{
				sec("s1", "d1", "Family Activities", "Family friendly coastal activities and water sports fill the daytime hours.", 2),
				sec("s2", "d1", "Nightlife and Entertainment", "Nightlife bars and beach clubs along the coast stay open late into the night.", 5),
			},
		}},
		{order: 1, doc: section.Document{
			ID:       "d2",
			Filename: "tips.pdf",
			Title:    "Tips",
			Sections: []section.Section{
				sec("s3", "d2", "Packing Essentials", "Packing lists for summer trips favor light clothing and sturdy shoes.", 1),
			},
		}},
	}
}

func TestRankBatch_OrdersAndAssembles(t *testing.T) {
	cfg := config.Load()
	e := New(cfg, testEmbedder(t), discardLogger())

	out, err := e.rankBatch(context.Background(), testSpec(), testDocs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(out.ExtractedSections) != 3 {
		t.Fatalf("expected 3 ranked sections, got %d", len(out.ExtractedSections))
	}
	top := out.ExtractedSections[0]
	if top.SectionTitle != "Nightlife and Entertainment" {
		t.Errorf("expected the nightlife section to rank first, got %q", top.SectionTitle)
	}
	if top.Document != "things_to_do.pdf" || top.PageNumber != 5 {
		t.Errorf("unexpected top section provenance: %+v", top)
	}
	for i, es := range out.ExtractedSections {
		if es.ImportanceRank != i+1 {
			t.Errorf("importance ranks must be contiguous from 1, got %d at %d", es.ImportanceRank, i)
		}
	}

	if len(out.SubsectionAnalysis) != len(out.ExtractedSections) {
		t.Fatalf("each ranked section needs a subsection entry, got %d vs %d",
			len(out.SubsectionAnalysis), len(out.ExtractedSections))
	}
	if out.SubsectionAnalysis[0].Document != "things_to_do.pdf" {
		t.Errorf("subsection document must match its ranked section, got %q", out.SubsectionAnalysis[0].Document)
	}
	if out.SubsectionAnalysis[0].RefinedText == "" {
		t.Errorf("refined text must not be empty")
	}

	if len(out.Metadata.Documents) != 2 {
		t.Errorf("metadata must list every configured document, got %v", out.Metadata.Documents)
	}
	if out.Metadata.Persona != "Travel Planner" {
		t.Errorf("metadata persona not carried: %q", out.Metadata.Persona)
	}
}

func TestRankBatch_TopKFromConfig(t *testing.T) {
	cfg := config.Load()
	cfg.TopK = 1
	e := New(cfg, testEmbedder(t), discardLogger())

	out, err := e.rankBatch(context.Background(), testSpec(), testDocs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.ExtractedSections) != 1 {
		t.Errorf("expected top_k to cap results, got %d", len(out.ExtractedSections))
	}
}

func TestRankBatch_NoSectionsEmitsEmptyOutput(t *testing.T) {
	cfg := config.Load()
	e := New(cfg, testEmbedder(t), discardLogger())

	docs := []extracted{
		{order: 0, doc: section.Document{ID: "d1", Filename: "things_to_do.pdf", Title: "Things to Do"}},
	}
	out, err := e.rankBatch(context.Background(), testSpec(), docs)
	if err != nil {
		t.Fatalf("a sectionless batch is not an error: %v", err)
	}
	if len(out.ExtractedSections) != 0 || len(out.SubsectionAnalysis) != 0 {
		t.Errorf("expected empty result arrays, got %d and %d",
			len(out.ExtractedSections), len(out.SubsectionAnalysis))
	}
	if len(out.Metadata.Documents) != 2 {
		t.Errorf("metadata must still list the configured documents")
	}
}

func TestRun_AllDocumentsUnreadable(t *testing.T) {
	cfg := config.Load()
	cfg.InputDir = t.TempDir()

	specJSON := `{
		"persona": {"role": "Travel Planner"},
		"job_to_be_done": {"task": "Plan a trip"},
		"documents": [{"filename": "missing_one.pdf"}, {"filename": "missing_two.pdf"}]
	}`
	if err := os.WriteFile(filepath.Join(cfg.InputDir, cfg.RunSpec), []byte(specJSON), 0o644); err != nil {
		t.Fatalf("write run spec: %v", err)
	}

	e := New(cfg, testEmbedder(t), discardLogger())
	_, err := e.Run(context.Background())
	if err == nil {
		t.Fatalf("expected error when every document is unreadable")
	}
	if !errors.Is(err, config.ErrMalformed) {
		t.Errorf("expected a fatal batch error, got %v", err)
	}
}

func TestRun_MalformedSpec(t *testing.T) {
	cfg := config.Load()
	cfg.InputDir = t.TempDir()
	if err := os.WriteFile(filepath.Join(cfg.InputDir, cfg.RunSpec), []byte(`{"persona":{}}`), 0o644); err != nil {
		t.Fatalf("write run spec: %v", err)
	}

	e := New(cfg, testEmbedder(t), discardLogger())
	if _, err := e.Run(context.Background()); !errors.Is(err, config.ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
}
