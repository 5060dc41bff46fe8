package main

import (
	"context"
	"log"

	"veritascope/internal/config"
	"veritascope/internal/database"
	"veritascope/internal/inference"
	"veritascope/internal/textnorm"
	"veritascope/internal/topics"

	"github.com/joho/godotenv"
)

// Trains the topic model from every article currently in the store and
// writes the artifacts to MODEL_DIR.
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

	store, err := topics.NewArtifactStore(cfg.ModelDir)
	if err != nil {
		log.Fatal("Failed to open model directory:", err)
	}

	inferenceClient := inference.NewClient(cfg.InferenceURL, cfg.InferenceAPIKey, cfg.InferenceTimeout)
	normalizer := textnorm.New(inferenceClient)
	service := topics.NewService(database.DB, store, inferenceClient, normalizer, cfg.TopicStrategy)

	log.Printf("🔄 Training %s topic model into %s...", cfg.TopicStrategy, cfg.ModelDir)
	if err := service.Train(context.Background()); err != nil {
		log.Fatal("Training failed:", err)
	}
	log.Println("✅ Topic model training completed")
}
