package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"docsift/internal/api"
	"docsift/internal/config"
	"docsift/internal/embed"
	"docsift/internal/index"
)

func main() {
	godotenv.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	embedder, err := embed.Load(cfg.ModelPath, embed.Options{
		MaxChars:  cfg.EmbedMaxChars,
		BatchSize: cfg.EmbedBatchSize,
		Workers:   cfg.EmbedWorkers,
	})
	if err != nil {
		log.Error("embedding model unavailable", "path", cfg.ModelPath, "error", err)
		os.Exit(1)
	}

	// Index the corpus once at startup; handlers serve it read-only.
	ix := index.New(embedder, cfg.Heading, cfg.SnippetCount, log)
	if err := ix.Build(ctx, cfg.CorpusDir); err != nil {
		log.Error("corpus indexing failed", "dir", cfg.CorpusDir, "error", err)
		os.Exit(1)
	}

	srv := api.NewServer(ix, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting docsift search server", "port", cfg.Port, "corpus", cfg.CorpusDir)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
