// Package entities extracts named entities per article and partitions them
// into people, organizations and locations.
package entities

import (
	"context"
	"fmt"
	"strings"

	"veritascope/internal/inference"
	"veritascope/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Extractor wraps the inference service's NER model. Label mapping is
// fixed: PERSON, ORG, and GPE/LOC; every other label is discarded.
type Extractor struct {
	db        *gorm.DB
	inference *inference.Client
}

// NewExtractor creates an entity extractor.
func NewExtractor(db *gorm.DB, client *inference.Client) *Extractor {
	return &Extractor{db: db, inference: client}
}

// Name identifies the enrichment dimension.
func (e *Extractor) Name() string { return "entities" }

// Pending returns articles that have no entity row yet.
func (e *Extractor) Pending() ([]models.Article, error) {
	var articles []models.Article
	err := e.db.
		Joins("LEFT JOIN entities en ON en.article_id = news.id").
		Where("en.id IS NULL").
		Find(&articles).Error
	return articles, err
}

// EnrichOne extracts and persists entities for a single article. All three
// category columns are always written, empty when nothing was found.
func (e *Extractor) EnrichOne(ctx context.Context, article models.Article) error {
	set, err := e.Extract(ctx, article.Document())
	if err != nil {
		return err
	}
	set.ArticleID = article.ID

	return e.db.
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "article_id"}}, DoNothing: true}).
		Create(&set).Error
}

// Extract runs NER over one document and partitions the deduplicated
// mentions by category. Empty input yields empty categories.
func (e *Extractor) Extract(ctx context.Context, text string) (models.EntitySet, error) {
	set := models.EntitySet{
		People:        []string{},
		Organizations: []string{},
		Locations:     []string{},
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return set, nil
	}

	mentions, err := e.inference.Entities(ctx, text)
	if err != nil {
		return models.EntitySet{}, fmt.Errorf("entity inference: %w", err)
	}

	seen := map[string]struct{}{}
	for _, m := range mentions {
		name := strings.TrimSpace(m.Text)
		if name == "" {
			continue
		}
		key := m.Label + "\x00" + name
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		switch m.Label {
		case "PERSON":
			set.People = append(set.People, name)
		case "ORG":
			set.Organizations = append(set.Organizations, name)
		case "GPE", "LOC":
			set.Locations = append(set.Locations, name)
		}
	}
	return set, nil
}
