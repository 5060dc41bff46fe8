package ingest

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"veritascope/internal/models"
)

// DefaultPageSize matches the headline API's default pull size.
const DefaultPageSize = 10

// Service pulls headlines and stores the ones not seen before. An article
// is identified by URL; re-pulling the same headline is a no-op.
type Service struct {
	db       *gorm.DB
	client   *Client
	pageSize int
}

func NewService(db *gorm.DB, client *Client, pageSize int) *Service {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Service{db: db, client: client, pageSize: pageSize}
}

// PullLatest fetches the current headlines and stores new ones. Returns
// how many articles were actually inserted.
func (s *Service) PullLatest(ctx context.Context) (int, error) {
	headlines, err := s.client.TopHeadlines(ctx, s.pageSize)
	if err != nil {
		return 0, fmt.Errorf("headline pull failed: %w", err)
	}

	inserted := 0
	for _, h := range headlines {
		if h.Title == "" || h.URL == "" {
			continue
		}
		stored, err := s.Store(h)
		if err != nil {
			log.Printf("⚠️ Failed to store article %s: %v", h.URL, err)
			continue
		}
		if stored {
			inserted++
		}
	}

	log.Printf("📰 Headline pull: %d fetched, %d new", len(headlines), inserted)
	return inserted, nil
}

// Store inserts one headline unless its URL is already known. The unique
// index on URL makes the check-then-insert atomic under concurrent pulls.
func (s *Service) Store(h APIArticle) (bool, error) {
	article := models.Article{
		ID:          uuid.New(),
		URL:         h.URL,
		Title:       StripTags(h.Title),
		Source:      h.Source.Name,
		Description: StripTags(h.Description),
		ImageURL:    h.URLToImage,
		PublishedAt: parsePublishedAt(h.PublishedAt),
	}

	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "url"}},
		DoNothing: true,
	}).Create(&article)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func parsePublishedAt(value string) *time.Time {
	if value == "" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	return &parsed
}
