package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"alfredoptarigan/resume-matcher/internal/config"
	"alfredoptarigan/resume-matcher/internal/handlers"
	"alfredoptarigan/resume-matcher/internal/middleware"
	"alfredoptarigan/resume-matcher/internal/repositories"
	"alfredoptarigan/resume-matcher/internal/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}
	log.Println("✅ Config loaded successfully")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	uploadRepo := repositories.NewUploadRepository(db)
	jobRepo := repositories.NewJobRepository(db)
	matchRepo := repositories.NewMatchResultRepository(db)
	log.Println("✅ Repositories initialized successfully")

	store, err := services.NewDocumentStore(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize document store: %w", err)
	}
	extractor := services.NewTextExtractor(cfg.Extraction)

	geminiService, err := services.NewGeminiService(ctx, cfg.Gemini)
	if err != nil {
		return fmt.Errorf("failed to initialize Gemini AI: %w", err)
	}
	log.Println("✅ Gemini AI initialized successfully")

	validator, err := services.NewResponseValidator()
	if err != nil {
		return err
	}

	index, err := openIndex(ctx, cfg, geminiService)
	if err != nil {
		return err
	}
	if index != nil {
		defer index.Close()
	}

	svc := handlers.Services{
		Uploads:  services.NewUploadService(uploadRepo, store, extractor, cfg.Storage.MaxFileSize),
		Analyses: services.NewAnalysisService(uploadRepo, jobRepo, matchRepo, geminiService, validator, index),
		History:  services.NewHistoryService(uploadRepo, jobRepo, matchRepo, index),
	}
	log.Println("✅ Services initialized successfully")

	app := handlers.NewApp(svc, middleware.NewTokenVerifier(cfg.Auth.JWTSecret), handlers.AppOptions{
		MaxFileSize:  cfg.Storage.MaxFileSize,
		WriteTimeout: cfg.Gemini.RequestTimeout + 30*time.Second,
		AccessLog:    true,
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s", addr)

	return app.Listen(addr)
}

// openIndex returns nil when QDRANT_URL is unset. A Qdrant that is
// configured but unreachable is logged and skipped rather than fatal.
func openIndex(ctx context.Context, cfg *config.Config, embedder services.GeminiService) (services.AnalysisIndex, error) {
	if !cfg.IndexEnabled() {
		log.Println("⚠️  QDRANT_URL not set, related analyses fall back to recent ones")
		return nil, nil
	}

	index, err := services.NewQdrantIndex(cfg.Qdrant, embedder)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Qdrant: %w", err)
	}

	if err := index.InitCollection(ctx); err != nil {
		log.Printf("⚠️  Qdrant unavailable, continuing without the index: %v", err)
		index.Close()
		return nil, nil
	}

	log.Println("✅ Qdrant initialized successfully")
	return index, nil
}
