package analytics

import (
	"fmt"
	"testing"
	"time"

	"veritascope/internal/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func seedArticle(t *testing.T, db *gorm.DB, daysAgo int, sentiment *models.SentimentResult) models.Article {
	published := time.Now().AddDate(0, 0, -daysAgo)
	article := models.Article{
		ID:          uuid.New(),
		URL:         fmt.Sprintf("https://example.com/%s", uuid.NewString()),
		Title:       "seed article",
		PublishedAt: &published,
	}
	if err := db.Create(&article).Error; err != nil {
		t.Fatalf("Failed to seed article: %v", err)
	}
	if sentiment != nil {
		sentiment.ArticleID = article.ID
		if err := db.Create(sentiment).Error; err != nil {
			t.Fatalf("Failed to seed sentiment: %v", err)
		}
	}
	return article
}

func TestVolumeForecast(t *testing.T) {
	db := setupTestDB(t)
	// Three articles yesterday, two the day before, one outside the window.
	for i := 0; i < 3; i++ {
		seedArticle(t, db, 1, nil)
	}
	for i := 0; i < 2; i++ {
		seedArticle(t, db, 2, nil)
	}
	seedArticle(t, db, 200, nil)

	payload := NewService(db, 90, 7).VolumeForecast()

	if len(payload.HistoryDates) != 2 {
		t.Fatalf("History has %d days, want 2", len(payload.HistoryDates))
	}
	if payload.HistoryCounts[0] != 2 || payload.HistoryCounts[1] != 3 {
		t.Errorf("History counts = %v, want [2 3]", payload.HistoryCounts)
	}
	if payload.HistoryDates[0] >= payload.HistoryDates[1] {
		t.Errorf("History dates not ascending: %v", payload.HistoryDates)
	}
	if len(payload.FcastDates) != 7 || len(payload.FcastValues) != 7 {
		t.Errorf("Forecast has %d dates and %d values, want 7 each",
			len(payload.FcastDates), len(payload.FcastValues))
	}
}

func TestVolumeForecastEmptyStore(t *testing.T) {
	payload := NewService(setupTestDB(t), 90, 7).VolumeForecast()

	if payload.HistoryDates == nil || payload.FcastDates == nil {
		t.Fatal("Empty store must produce empty slices, not nil")
	}
	if len(payload.HistoryDates) != 0 || len(payload.FcastDates) != 0 {
		t.Errorf("Empty store produced history %v, forecast %v",
			payload.HistoryDates, payload.FcastDates)
	}
}

func TestVolumeForecastSingleDayHasNoForecast(t *testing.T) {
	db := setupTestDB(t)
	seedArticle(t, db, 1, nil)

	payload := NewService(db, 90, 7).VolumeForecast()
	if len(payload.HistoryDates) != 1 {
		t.Fatalf("History has %d days, want 1", len(payload.HistoryDates))
	}
	if len(payload.FcastDates) != 0 {
		t.Errorf("One-point history must not forecast, got %v", payload.FcastDates)
	}
}

func TestSentimentForecastDailyAverages(t *testing.T) {
	db := setupTestDB(t)
	seedArticle(t, db, 1, &models.SentimentResult{
		Positive: 80, Neutral: 20, Negative: 0, Overall: models.SentimentPositive,
	})
	seedArticle(t, db, 1, &models.SentimentResult{
		Positive: 40, Neutral: 40, Negative: 20, Overall: models.SentimentNeutral,
	})
	// No sentiment row yet; must not drag the averages down.
	seedArticle(t, db, 1, nil)

	payload := NewService(db, 90, 7).SentimentForecast()

	if len(payload.Days) != 1 {
		t.Fatalf("Series has %d days, want 1", len(payload.Days))
	}
	if payload.Pos[0] != 60 || payload.Neu[0] != 30 || payload.Neg[0] != 10 {
		t.Errorf("Daily averages = %d/%d/%d, want 60/30/10",
			payload.Pos[0], payload.Neu[0], payload.Neg[0])
	}
	// A single day cannot be forecast.
	if len(payload.PosFcast) != 0 || len(payload.NeuFcast) != 0 || len(payload.NegFcast) != 0 {
		t.Errorf("One-day series must not forecast, got pos=%v neu=%v neg=%v",
			payload.PosFcast, payload.NeuFcast, payload.NegFcast)
	}
}

func TestSentimentForecastMultiDay(t *testing.T) {
	db := setupTestDB(t)
	for daysAgo := 1; daysAgo <= 5; daysAgo++ {
		seedArticle(t, db, daysAgo, &models.SentimentResult{
			Positive: 50, Neutral: 30, Negative: 20, Overall: models.SentimentPositive,
		})
	}

	payload := NewService(db, 90, 7).SentimentForecast()
	if len(payload.Days) != 5 {
		t.Fatalf("Series has %d days, want 5", len(payload.Days))
	}
	if len(payload.PosFcastDates) != 7 || len(payload.PosFcast) != 7 {
		t.Errorf("Positive forecast has %d dates and %d values, want 7 each",
			len(payload.PosFcastDates), len(payload.PosFcast))
	}
}

func TestTopicForecast(t *testing.T) {
	db := setupTestDB(t)
	if err := db.Create(&models.Topic{ID: 2, Name: "Economy & Markets", Keywords: "markets stocks"}).Error; err != nil {
		t.Fatalf("Failed to seed topic: %v", err)
	}

	for daysAgo := 1; daysAgo <= 3; daysAgo++ {
		a := seedArticle(t, db, daysAgo, nil)
		mapping := models.ArticleTopicMapping{ArticleID: a.ID, TopicID: 2, RelevanceScore: 0.9}
		if err := db.Create(&mapping).Error; err != nil {
			t.Fatalf("Failed to seed mapping: %v", err)
		}
	}
	// An article mapped to a different topic stays out of the series.
	other := seedArticle(t, db, 1, nil)
	if err := db.Create(&models.Topic{ID: 3, Name: "Other"}).Error; err != nil {
		t.Fatalf("Failed to seed topic: %v", err)
	}
	if err := db.Create(&models.ArticleTopicMapping{ArticleID: other.ID, TopicID: 3}).Error; err != nil {
		t.Fatalf("Failed to seed mapping: %v", err)
	}

	payload := NewService(db, 90, 7).TopicForecast(2)

	if payload.TopicName != "Economy & Markets" {
		t.Errorf("TopicName = %q, want %q", payload.TopicName, "Economy & Markets")
	}
	if len(payload.HistoryDates) != 3 {
		t.Fatalf("History has %d days, want 3", len(payload.HistoryDates))
	}
	for i, c := range payload.HistoryCounts {
		if c != 1 {
			t.Errorf("History count[%d] = %v, want 1", i, c)
		}
	}
	if len(payload.FcastDates) != 7 {
		t.Errorf("Forecast has %d dates, want 7", len(payload.FcastDates))
	}
}

func TestTopicForecastUnknownTopic(t *testing.T) {
	payload := NewService(setupTestDB(t), 90, 7).TopicForecast(42)
	if payload.TopicID != 42 {
		t.Errorf("TopicID = %d, want 42", payload.TopicID)
	}
	if len(payload.HistoryDates) != 0 || len(payload.FcastDates) != 0 {
		t.Errorf("Unknown topic produced history %v, forecast %v",
			payload.HistoryDates, payload.FcastDates)
	}
}

func TestSentimentDistribution(t *testing.T) {
	db := setupTestDB(t)
	seedArticle(t, db, 1, &models.SentimentResult{Positive: 100, Neutral: 0, Negative: 0, Overall: models.SentimentPositive})
	seedArticle(t, db, 1, &models.SentimentResult{Positive: 0, Neutral: 100, Negative: 0, Overall: models.SentimentNeutral})
	seedArticle(t, db, 1, &models.SentimentResult{Positive: 0, Neutral: 0, Negative: 100, Overall: models.SentimentNegative})
	seedArticle(t, db, 1, &models.SentimentResult{Positive: 100, Neutral: 0, Negative: 0, Overall: models.SentimentPositive})

	dist := NewService(db, 90, 7).SentimentDistribution()
	if dist.Positive != 50 || dist.Neutral != 25 || dist.Negative != 25 {
		t.Errorf("Distribution = %+v, want 50/25/25", dist)
	}
}

func TestSentimentDistributionEmpty(t *testing.T) {
	dist := NewService(setupTestDB(t), 90, 7).SentimentDistribution()
	if dist.Positive != 0 || dist.Neutral != 0 || dist.Negative != 0 {
		t.Errorf("Empty store distribution = %+v, want zeros", dist)
	}
}

func TestTopTopics(t *testing.T) {
	db := setupTestDB(t)
	topics := []models.Topic{
		{ID: models.OutlierTopicID, Name: "Miscellaneous"},
		{ID: 0, Name: "Politics"},
		{ID: 1, Name: "Sports"},
	}
	for _, topic := range topics {
		if err := db.Create(&topic).Error; err != nil {
			t.Fatalf("Failed to seed topic: %v", err)
		}
	}

	assign := func(topicID, n int) {
		for i := 0; i < n; i++ {
			a := seedArticle(t, db, 1, nil)
			m := models.ArticleTopicMapping{ArticleID: a.ID, TopicID: topicID, RelevanceScore: 0.5}
			if err := db.Create(&m).Error; err != nil {
				t.Fatalf("Failed to seed mapping: %v", err)
			}
		}
	}
	assign(0, 2)
	assign(1, 4)
	assign(models.OutlierTopicID, 9)

	rows := NewService(db, 90, 7).TopTopics(5)
	if len(rows) != 2 {
		t.Fatalf("TopTopics returned %d rows, want 2 (outliers excluded)", len(rows))
	}
	if rows[0].Name != "Sports" || rows[0].ArticleCount != 4 {
		t.Errorf("Top row = %+v, want Sports with 4 articles", rows[0])
	}
	if rows[1].Name != "Politics" || rows[1].ArticleCount != 2 {
		t.Errorf("Second row = %+v, want Politics with 2 articles", rows[1])
	}
}
