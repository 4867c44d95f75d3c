package embed

import (
	"context"
	"sync"
)

// Engine wraps a loaded model behind a read-only handle that is safe for
// concurrent use. It is acquired once at process start; all embedding calls
// share it.
type Engine struct {
	model *Model

	maxChars  int // Input budget; longer texts are silently truncated
	batchSize int
	workers   int
}

// Options tunes batching and the input truncation budget.
type Options struct {
	MaxChars  int
	BatchSize int
	Workers   int
}

func (o *Options) applyDefaults() {
	if o.MaxChars <= 0 {
		o.MaxChars = 2000
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 32
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
}

// Load reads the model file at path and returns the shared engine handle.
// Call once per process; the handle is read-only afterwards.
func Load(path string, opts Options) (*Engine, error) {
	m, err := LoadModel(path)
	if err != nil {
		return nil, err
	}
	return NewEngine(m, opts), nil
}

// NewEngine wraps an already-built model. Used by Load and by the model
// bootstrap path.
func NewEngine(m *Model, opts Options) *Engine {
	opts.applyDefaults()
	return &Engine{
		model:     m,
		maxChars:  opts.MaxChars,
		batchSize: opts.BatchSize,
		workers:   opts.Workers,
	}
}

// Dimension returns the fixed vector length.
func (e *Engine) Dimension() int { return e.model.Dimension() }

// Embed produces the vector for a single text. Input beyond the engine's
// character budget is truncated, not an error.
func (e *Engine) Embed(text string) []float64 {
	return e.model.Vector(truncateRunes(text, e.maxChars))
}

// EmbedAll embeds texts in internal batches fanned out over a bounded worker
// set. Results are returned in input order. Per-call overhead dominates at
// small batch sizes, so callers should pass all texts at once.
func (e *Engine) EmbedAll(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out := make([][]float64, len(texts))

	sem := make(chan struct{}, e.workers)
	var wg sync.WaitGroup
	for start := 0; start < len(texts); start += e.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(start+e.batchSize, len(texts))
		sem <- struct{}{}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			defer func() { <-sem }()
			for i := start; i < end; i++ {
				out[i] = e.Embed(texts[i])
			}
		}(start, end)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
