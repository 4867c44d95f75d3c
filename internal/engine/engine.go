package engine

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"docsift/internal/assemble"
	"docsift/internal/config"
	"docsift/internal/embed"
	"docsift/internal/layout"
	"docsift/internal/rank"
	"docsift/internal/refine"
	"docsift/internal/section"
	"docsift/internal/segment"
)

// Engine runs the batch pipeline: scatter per-document extraction and
// segmentation across workers, gather every candidate, then rank once.
// Ranking is cross-document and needs the full candidate set, so it never
// starts before all documents are in.
type Engine struct {
	cfg      config.Config
	log      *slog.Logger
	embedder *embed.Engine
	cls      segment.Classifier
}

func New(cfg config.Config, embedder *embed.Engine, log *slog.Logger) *Engine {
	return &Engine{
		cfg:      cfg,
		log:      log,
		embedder: embedder,
		cls:      cfg.Heading,
	}
}

// Run executes one batch over the run configuration in the input directory.
// Per-document failures are logged and skipped; the run only fails when the
// configuration is malformed, zero documents remain readable, or embedding
// is impossible.
func (e *Engine) Run(ctx context.Context) (*assemble.Output, error) {
	spec, err := config.LoadRunSpec(filepath.Join(e.cfg.InputDir, e.cfg.RunSpec))
	if err != nil {
		return nil, err
	}
	return e.RunSpec(ctx, spec)
}

// RunSpec executes one batch over an already-loaded run configuration.
func (e *Engine) RunSpec(ctx context.Context, spec *config.RunSpec) (*assemble.Output, error) {
	docs := e.extractAll(ctx, spec)
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: no readable documents in batch", config.ErrMalformed)
	}
	return e.rankBatch(ctx, spec, docs)
}

// rankBatch is the post-extraction half of a run: gather candidates across
// documents, embed, rank, refine, assemble.
func (e *Engine) rankBatch(ctx context.Context, spec *config.RunSpec, docs []extracted) (*assemble.Output, error) {
	// Gather: one ordered candidate set across all documents.
	var cands []rank.Candidate
	contents := make(map[string]string)
	for _, d := range docs {
		for _, sec := range d.doc.Sections {
			cands = append(cands, rank.Candidate{
				Section:  sec,
				Document: d.doc.Filename,
				DocOrder: d.order,
				Ord:      len(cands),
			})
			contents[sec.ID] = sec.Content
		}
	}

	filenames := make([]string, len(spec.Documents))
	for i, d := range spec.Documents {
		filenames[i] = d.Filename
	}

	if len(cands) == 0 {
		// Empty candidate set is not fatal: emit a complete result with
		// empty section arrays.
		e.log.Warn("no sections detected across batch")
		return assemble.Build(filenames, spec.Persona.Role, spec.JobToBeDone.Task, time.Now(), nil, nil), nil
	}

	query := rank.ComposeQuery(spec.Persona.Role, spec.JobToBeDone.Task)
	queryVec := e.embedder.Embed(query)

	texts := make([]string, len(cands))
	for i, c := range cands {
		texts[i] = c.Section.Content
	}
	vectors, err := e.embedder.EmbedAll(ctx, texts)
	if err != nil {
		return nil, err
	}
	for i := range cands {
		cands[i].Vector = vectors[i]
		cands[i].Section.Embedding = vectors[i]
	}

	ranked := rank.Rank(queryVec, cands, rank.Options{TopK: e.cfg.TopK})

	subs := make([]section.Subsection, 0, len(ranked))
	for _, r := range ranked {
		subs = append(subs, refine.Analyze(e.embedder, queryVec, r, contents[r.SectionID]))
	}

	e.log.Info("batch complete",
		"documents", len(docs),
		"sections", len(cands),
		"ranked", len(ranked),
	)
	return assemble.Build(filenames, spec.Persona.Role, spec.JobToBeDone.Task, time.Now(), ranked, subs), nil
}

type extracted struct {
	order int
	doc   section.Document
}

// extractAll parses and segments every configured document with bounded
// concurrency. Extraction has no shared mutable state, so documents run
// independently; results rejoin in configuration order.
func (e *Engine) extractAll(ctx context.Context, spec *config.RunSpec) []extracted {
	results := make([]*extracted, len(spec.Documents))

	sem := make(chan struct{}, e.cfg.WorkerCount)
	var wg sync.WaitGroup
	for i, rd := range spec.Documents {
		if ctx.Err() != nil {
			break
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(i int, rd config.RunDocument) {
			defer wg.Done()
			defer func() { <-sem }()

			path := filepath.Join(e.cfg.InputDir, rd.Filename)
			lay, err := layout.ReadFile(path, rd.Filename)
			if err != nil {
				// Local failure: skip this document, keep the batch going.
				e.log.Warn("skipping unreadable document", "filename", rd.Filename, "error", err)
				return
			}
			doc := segment.Segment(lay, e.cls)
			if rd.Title != "" {
				doc.Title = rd.Title
			}
			results[i] = &extracted{order: i, doc: doc}
		}(i, rd)
	}
	wg.Wait()

	var out []extracted
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}
