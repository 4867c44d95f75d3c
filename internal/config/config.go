package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"docsift/internal/segment"
)

type Config struct {
	Port string

	// Filesystem boundary: PDFs and the run configuration are read from
	// InputDir; the result is written under OutputDir.
	InputDir   string
	OutputDir  string
	RunSpec    string // Run configuration filename inside InputDir
	OutputFile string

	// Embedding model
	ModelPath      string
	EmbedBatchSize int
	EmbedMaxChars  int
	EmbedWorkers   int

	// Ranking
	TopK     int
	MinScore float64

	// Interactive corpus
	CorpusDir    string
	SnippetCount int

	// Auth (server only, optional)
	APIKey string

	// Per-document parallelism during extraction/segmentation
	WorkerCount int

	// Heading heuristics, overridable through the tuning file
	Heading segment.Heuristics
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		InputDir:   envOr("DOCSIFT_INPUT_DIR", "input"),
		OutputDir:  envOr("DOCSIFT_OUTPUT_DIR", "output"),
		RunSpec:    envOr("DOCSIFT_RUN_SPEC", "input.json"),
		OutputFile: envOr("DOCSIFT_OUTPUT_FILE", "output.json"),

		ModelPath:      envOr("DOCSIFT_MODEL_PATH", "models/vocab.json"),
		EmbedBatchSize: envInt("DOCSIFT_EMBED_BATCH_SIZE", 32),
		EmbedMaxChars:  envInt("DOCSIFT_EMBED_MAX_CHARS", 2000),
		EmbedWorkers:   envInt("DOCSIFT_EMBED_WORKERS", 4),

		TopK:     envInt("DOCSIFT_TOP_K", 5),
		MinScore: envFloat("DOCSIFT_MIN_SCORE", 0.3),

		CorpusDir:    envOr("DOCSIFT_CORPUS_DIR", "input"),
		SnippetCount: envInt("DOCSIFT_SNIPPET_COUNT", 3),

		APIKey: os.Getenv("DOCSIFT_API_KEY"),

		WorkerCount: envInt("WORKER_COUNT", 4),

		Heading: segment.DefaultHeuristics(),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.EmbedBatchSize <= 0 {
		cfg.EmbedBatchSize = 32
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}

	return cfg
}

func (c Config) Validate() error {
	if c.InputDir == "" {
		return errors.New("DOCSIFT_INPUT_DIR is required")
	}
	if c.OutputDir == "" {
		return errors.New("DOCSIFT_OUTPUT_DIR is required")
	}
	if c.ModelPath == "" {
		return errors.New("DOCSIFT_MODEL_PATH is required")
	}
	return nil
}

// Tuning is the optional YAML overlay for heuristic thresholds.
type Tuning struct {
	Heading struct {
		FontRatio    float64 `yaml:"font_ratio"`
		MaxBoldWords int     `yaml:"max_bold_words"`
		MinLength    int     `yaml:"min_length"`
		MaxWords     int     `yaml:"max_words"`
		MaxLength    int     `yaml:"max_length"`
		MinFontSize  float64 `yaml:"min_font_size"`
	} `yaml:"heading"`
	Rank struct {
		TopK     int     `yaml:"top_k"`
		MinScore float64 `yaml:"min_score"`
	} `yaml:"rank"`
}

// ApplyTuning overlays values from a YAML tuning file onto the config.
// A missing file is not an error; defaults stand.
func (c *Config) ApplyTuning(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	var t Tuning
	if err := yaml.Unmarshal(data, &t); err != nil {
		return fmt.Errorf("parse tuning file %s: %w", path, err)
	}
	if t.Heading.FontRatio > 0 {
		c.Heading.FontRatio = t.Heading.FontRatio
	}
	if t.Heading.MaxBoldWords > 0 {
		c.Heading.MaxBoldWords = t.Heading.MaxBoldWords
	}
	if t.Heading.MinLength > 0 {
		c.Heading.MinLength = t.Heading.MinLength
	}
	if t.Heading.MaxWords > 0 {
		c.Heading.MaxWords = t.Heading.MaxWords
	}
	if t.Heading.MaxLength > 0 {
		c.Heading.MaxLength = t.Heading.MaxLength
	}
	if t.Heading.MinFontSize > 0 {
		c.Heading.MinFontSize = t.Heading.MinFontSize
	}
	if t.Rank.TopK > 0 {
		c.TopK = t.Rank.TopK
	}
	if t.Rank.MinScore > 0 {
		c.MinScore = t.Rank.MinScore
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
