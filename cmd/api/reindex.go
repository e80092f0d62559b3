package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"alfredoptarigan/resume-matcher/internal/config"
	"alfredoptarigan/resume-matcher/internal/models"
	"alfredoptarigan/resume-matcher/internal/repositories"
	"alfredoptarigan/resume-matcher/internal/services"
)

var reindexBatchSize int

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the Qdrant index of analyses from the database",
	Long: `Re-embeds the job description of every stored analysis and upserts it into
the Qdrant collection. Analyses run against pasted job text have no stored job
description and are skipped.`,
	RunE: runReindex,
}

func init() {
	reindexCmd.Flags().IntVar(&reindexBatchSize, "batch-size", 100, "Rows loaded per batch")
	rootCmd.AddCommand(reindexCmd)
}

func runReindex(cmd *cobra.Command, _ []string) error {
	log.Println("🚀 Starting analysis reindex...")

	cfg := config.Load()
	if cfg.Gemini.APIKey == "" {
		return errors.New("GEMINI_API_KEY is required")
	}
	if !cfg.IndexEnabled() {
		return errors.New("QDRANT_URL is required")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	db, err := config.OpenDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	geminiService, err := services.NewGeminiService(ctx, cfg.Gemini)
	if err != nil {
		return fmt.Errorf("failed to initialize Gemini: %w", err)
	}

	index, err := services.NewQdrantIndex(cfg.Qdrant, geminiService)
	if err != nil {
		return fmt.Errorf("failed to initialize Qdrant: %w", err)
	}
	defer index.Close()

	if err := index.InitCollection(ctx); err != nil {
		return fmt.Errorf("failed to initialize collection: %w", err)
	}

	var indexed, skipped, failed int
	err = repositories.NewMatchResultRepository(db).EachWithJobText(ctx, reindexBatchSize,
		func(result *models.MatchResult, ownerID uint, jobText string) error {
			if jobText == "" {
				skipped++
				return nil
			}

			if err := index.Index(ctx, ownerID, result.ID, jobText); err != nil {
				log.Printf("❌ Failed to index analysis %d: %v", result.ID, err)
				failed++
				return nil
			}

			indexed++
			return nil
		})
	if err != nil {
		return err
	}

	log.Printf("✅ Reindex finished: %d indexed, %d skipped, %d failed", indexed, skipped, failed)
	return nil
}
