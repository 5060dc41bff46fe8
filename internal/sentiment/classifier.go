// Package sentiment classifies article polarity and persists one immutable
// result row per article.
package sentiment

import (
	"context"
	"fmt"
	"math"
	"strings"

	"veritascope/internal/inference"
	"veritascope/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Classifier wraps the inference service's polarity model. The model emits
// a single label with a confidence score; the three display percentages
// are derived from that, rounded independently, and may not sum to 100.
type Classifier struct {
	db        *gorm.DB
	inference *inference.Client
}

// NewClassifier creates a sentiment classifier.
func NewClassifier(db *gorm.DB, client *inference.Client) *Classifier {
	return &Classifier{db: db, inference: client}
}

// Name identifies the enrichment dimension.
func (c *Classifier) Name() string { return "sentiment" }

// Pending returns articles that have no sentiment row yet. Articles with
// no usable text are excluded so the scan converges instead of revisiting
// them every pass.
func (c *Classifier) Pending() ([]models.Article, error) {
	var articles []models.Article
	err := c.db.
		Joins("LEFT JOIN sentiments s ON s.article_id = news.id").
		Where("s.id IS NULL").
		Where("TRIM(COALESCE(news.title, '') || ' ' || COALESCE(news.description, '')) <> ''").
		Find(&articles).Error
	return articles, err
}

// EnrichOne classifies and persists sentiment for a single article.
// Empty-text articles never reach here (Pending filters them), but guard
// anyway so a direct call cannot fabricate neutrality for blank input.
func (c *Classifier) EnrichOne(ctx context.Context, article models.Article) error {
	text := strings.TrimSpace(article.Document())
	if text == "" {
		return nil
	}

	result, err := c.Analyze(ctx, text)
	if err != nil {
		return err
	}
	result.ArticleID = article.ID

	return c.db.
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "article_id"}}, DoNothing: true}).
		Create(&result).Error
}

// Analyze classifies one document. The model's score goes entirely to the
// predicted label's bucket and the remaining mass to neutral; each
// percentage is rounded on its own.
func (c *Classifier) Analyze(ctx context.Context, text string) (models.SentimentResult, error) {
	resp, err := c.inference.Sentiment(ctx, text)
	if err != nil {
		return models.SentimentResult{}, fmt.Errorf("sentiment inference: %w", err)
	}

	var positive, neutral, negative float64
	var overall string
	switch strings.ToUpper(resp.Label) {
	case "POSITIVE":
		positive = resp.Score
		neutral = 1 - resp.Score
		overall = models.SentimentPositive
	case "NEGATIVE":
		negative = resp.Score
		neutral = 1 - resp.Score
		overall = models.SentimentNegative
	default:
		// NEUTRAL, or anything unrecognized, collapses to neutral.
		neutral = resp.Score
		overall = models.SentimentNeutral
	}

	return models.SentimentResult{
		Positive: roundPercent(positive),
		Neutral:  roundPercent(neutral),
		Negative: roundPercent(negative),
		Overall:  overall,
	}, nil
}

func roundPercent(v float64) int {
	return int(math.Round(v * 100))
}
