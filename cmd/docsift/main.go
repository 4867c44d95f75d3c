package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"docsift/internal/assemble"
	"docsift/internal/config"
	"docsift/internal/embed"
	"docsift/internal/engine"
	"docsift/internal/layout"
)

func main() {
	godotenv.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	writeModel := flag.Bool("write-model", false, "build the embedding vocabulary from the input documents and write it to the model path, then exit")
	tuning := flag.String("tuning", "", "optional YAML file overriding heading detection thresholds")
	flag.Parse()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if *tuning != "" {
		if err := cfg.ApplyTuning(*tuning); err != nil {
			log.Error("invalid tuning file", "path", *tuning, "error", err)
			os.Exit(1)
		}
	}

	ctx := context.Background()

	if *writeModel {
		if err := buildModel(ctx, cfg, log); err != nil {
			log.Error("model build failed", "error", err)
			os.Exit(1)
		}
		return
	}

	embedder, err := embed.Load(cfg.ModelPath, embed.Options{
		MaxChars:  cfg.EmbedMaxChars,
		BatchSize: cfg.EmbedBatchSize,
		Workers:   cfg.EmbedWorkers,
	})
	if err != nil {
		// The model artifact is a required input; there is no degraded mode.
		log.Error("embedding model unavailable", "path", cfg.ModelPath, "error", err)
		os.Exit(1)
	}

	eng := engine.New(cfg, embedder, log)
	out, err := eng.Run(ctx)
	if err != nil {
		log.Error("batch failed", "error", err)
		os.Exit(1)
	}

	outPath := filepath.Join(cfg.OutputDir, cfg.OutputFile)
	if err := assemble.WriteFile(outPath, out); err != nil {
		log.Error("writing output failed", "path", outPath, "error", err)
		os.Exit(1)
	}
	log.Info("output written", "path", outPath)
}

// buildModel derives the TF-IDF vocabulary from every readable document
// named in the run configuration and saves it as the model artifact.
func buildModel(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	spec, err := config.LoadRunSpec(filepath.Join(cfg.InputDir, cfg.RunSpec))
	if err != nil {
		return err
	}

	var corpus []string
	for _, rd := range spec.Documents {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		doc, err := layout.ReadFile(filepath.Join(cfg.InputDir, rd.Filename), rd.Filename)
		if err != nil {
			log.Warn("skipping unreadable document", "filename", rd.Filename, "error", err)
			continue
		}
		for _, b := range doc.Blocks() {
			corpus = append(corpus, b.Text)
		}
	}
	if len(corpus) == 0 {
		return errors.New("no text extracted from input documents")
	}

	model, err := embed.BuildModel(corpus)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(cfg.ModelPath), 0o755); err != nil {
		return err
	}
	if err := model.Save(cfg.ModelPath); err != nil {
		return err
	}
	log.Info("model written", "path", cfg.ModelPath, "terms", model.Dimension())
	return nil
}
