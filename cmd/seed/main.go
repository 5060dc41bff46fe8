package main

import (
	"flag"
	"log"
	"time"

	"veritascope/internal/auth"
	"veritascope/internal/database"
	"veritascope/internal/models"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/lib/pq"
	"gorm.io/gorm/clause"
)

// This is a simple utility script to seed the database with an admin user
// and a handful of articles for local development

func main() {
	var adminEmail = flag.String("admin-email", "admin@veritascope.local", "Email for the seeded admin account")
	var adminPassword = flag.String("admin-password", "change-me-please", "Password for the seeded admin account")
	var articlesOnly = flag.Bool("articles-only", false, "Only seed articles, skip the admin user")
	flag.Parse()

	log.Printf("🌱 VeritaScope Database Seeder")
	log.Printf("==============================")

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	if err := database.Connect(database.LoadConfig()); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	if !*articlesOnly {
		seedAdminUser(*adminEmail, *adminPassword)
	}
	seedArticles()

	log.Println("✅ Database seeding completed")
	log.Println("")
	log.Println("Next steps:")
	log.Println("• go run ./cmd/train    to fit the topic model")
	log.Println("• go run ./cmd/enrich   to enrich the seeded articles")
	log.Println("• go run ./cmd/server   to serve the API")
}

func seedAdminUser(email, password string) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatal("Failed to hash admin password:", err)
	}

	user := models.User{
		ID:           uuid.New(),
		Email:        email,
		Username:     "admin",
		PasswordHash: hash,
		Role:         "admin",
	}
	result := database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoNothing: true,
	}).Create(&user)
	if result.Error != nil {
		log.Fatal("Failed to seed admin user:", result.Error)
	}
	if result.RowsAffected > 0 {
		log.Printf("👤 Seeded admin user %s", email)
	} else {
		log.Printf("👤 Admin user %s already present", email)
	}
}

func seedArticles() {
	now := time.Now()
	samples := []struct {
		title       string
		source      string
		description string
		hoursAgo    int
		keywords    []string
	}{
		{
			title:       "Central bank holds rates steady as inflation cools",
			source:      "Example Wire",
			description: "Policymakers left the benchmark rate unchanged, citing softening price pressure.",
			hoursAgo:    3,
			keywords:    []string{"interest rates", "inflation", "central bank"},
		},
		{
			title:       "Chipmaker unveils new AI accelerator line",
			source:      "Tech Daily",
			description: "The company says the processors double training throughput for large models.",
			hoursAgo:    8,
			keywords:    []string{"ai", "semiconductors", "hardware"},
		},
		{
			title:       "Underdogs clinch championship in overtime thriller",
			source:      "Sports Desk",
			description: "A last-minute goal sealed the title in front of a record crowd.",
			hoursAgo:    15,
			keywords:    []string{"championship", "overtime", "finals"},
		},
		{
			title:       "New vaccine trial reports strong early results",
			source:      "Health Journal",
			description: "Researchers observed a robust immune response across all age groups.",
			hoursAgo:    26,
			keywords:    []string{"vaccine", "clinical trial", "immunology"},
		},
	}

	seeded := 0
	for _, s := range samples {
		published := now.Add(-time.Duration(s.hoursAgo) * time.Hour)
		article := models.Article{
			ID:          uuid.New(),
			URL:         "https://example.com/seed/" + uuid.NewString(),
			Title:       s.title,
			Source:      s.source,
			Description: s.description,
			PublishedAt: &published,
		}
		if err := database.DB.Create(&article).Error; err != nil {
			log.Printf("⚠️ Failed to seed article %q: %v", s.title, err)
			continue
		}
		keywordRow := models.KeywordSet{
			ArticleID: article.ID,
			Keywords:  pq.StringArray(s.keywords),
		}
		if err := database.DB.Create(&keywordRow).Error; err != nil {
			log.Printf("⚠️ Failed to seed keywords for %q: %v", s.title, err)
		}
		seeded++
	}
	log.Printf("📰 Seeded %d sample articles", seeded)
}
