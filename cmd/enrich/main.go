package main

import (
	"context"
	"log"

	"veritascope/internal/config"
	"veritascope/internal/database"
	"veritascope/internal/enrich"
	"veritascope/internal/entities"
	"veritascope/internal/inference"
	"veritascope/internal/keywords"
	"veritascope/internal/sentiment"
	"veritascope/internal/textnorm"
	"veritascope/internal/topics"

	"github.com/joho/godotenv"
)

// Runs one enrichment pass over every unenriched article and exits.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	if err := database.Connect(database.LoadConfig()); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	db := database.DB
	inferenceClient := inference.NewClient(cfg.InferenceURL, cfg.InferenceAPIKey, cfg.InferenceTimeout)
	normalizer := textnorm.New(inferenceClient)

	store, err := topics.NewArtifactStore(cfg.ModelDir)
	if err != nil {
		log.Fatal("Failed to open model directory:", err)
	}

	orchestrator := enrich.NewOrchestrator([]enrich.Dimension{
		keywords.NewExtractor(db, inferenceClient, normalizer),
		sentiment.NewClassifier(db, inferenceClient),
		entities.NewExtractor(db, inferenceClient),
		topics.NewService(db, store, inferenceClient, normalizer, cfg.TopicStrategy),
	})

	log.Println("🔄 Running enrichment pass...")
	orchestrator.RunAll(context.Background())
	log.Println("✅ Enrichment pass completed")
}
