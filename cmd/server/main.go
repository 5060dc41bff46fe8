package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"veritascope/internal/auth"
	"veritascope/internal/config"
	"veritascope/internal/database"
	"veritascope/internal/enrich"
	"veritascope/internal/entities"
	"veritascope/internal/handlers"
	"veritascope/internal/inference"
	"veritascope/internal/ingest"
	"veritascope/internal/keywords"
	"veritascope/internal/sentiment"
	"veritascope/internal/textnorm"
	"veritascope/internal/topics"
	"veritascope/internal/trends"
	"veritascope/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	// Connect to database
	if err := database.Connect(database.LoadConfig()); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	db := database.DB

	// Shared plumbing
	inferenceClient := inference.NewClient(cfg.InferenceURL, cfg.InferenceAPIKey, cfg.InferenceTimeout)
	normalizer := textnorm.New(inferenceClient)

	artifactStore, err := topics.NewArtifactStore(cfg.ModelDir)
	if err != nil {
		log.Fatal("Failed to open model directory:", err)
	}
	topicService := topics.NewService(db, artifactStore, inferenceClient, normalizer, cfg.TopicStrategy)

	// Enrichment dimensions behind one orchestrator
	orchestrator := enrich.NewOrchestrator([]enrich.Dimension{
		keywords.NewExtractor(db, inferenceClient, normalizer),
		sentiment.NewClassifier(db, inferenceClient),
		entities.NewExtractor(db, inferenceClient),
		topicService,
	})

	var ingestService *ingest.Service
	if cfg.NewsAPIKey != "" {
		ingestService = ingest.NewService(db, ingest.NewClient(cfg.NewsAPIURL, cfg.NewsAPIKey), cfg.NewsPerPull)
	} else {
		log.Println("NEWS_API_KEY not set; headline ingestion disabled")
	}

	workerService := worker.NewWorkerService(ingestService, orchestrator, cfg.EnrichInterval)
	if err := workerService.Start(); err != nil {
		log.Fatal("Failed to start background workers:", err)
	}

	setupGracefulShutdown(workerService)

	// Set Gin mode based on environment
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handlers.SetupRouter(handlers.RouterDeps{
		DB:            db,
		AuthService:   auth.NewService(cfg.JWTSecret, auth.DefaultTokenTTL),
		TopicService:  topicService,
		TrendDetector: trends.NewDetector(db, normalizer, cfg.TrendingDays),
		WorkerService: workerService,
	})

	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func setupGracefulShutdown(workerService *worker.WorkerService) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Received shutdown signal, gracefully shutting down...")

		workerService.Stop()
		database.Close()

		log.Println("Shutdown complete")
		os.Exit(0)
	}()
}
