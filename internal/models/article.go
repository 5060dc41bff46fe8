package models

import (
	"time"

	"github.com/google/uuid"
)

// Article is a raw news article as delivered by the article source.
// Immutable once ingested; enrichment passes only ever add rows in the
// enrichment tables keyed by ArticleID.
type Article struct {
	ID          uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	URL         string     `json:"url" gorm:"uniqueIndex;not null"`
	Title       string     `json:"title" gorm:"type:text"`
	Source      string     `json:"source"`
	Description string     `json:"description" gorm:"type:text"`
	ImageURL    string     `json:"image_url"`
	PublishedAt *time.Time `json:"published_at" gorm:"index"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Keywords  *KeywordSet           `json:"keywords,omitempty" gorm:"foreignKey:ArticleID"`
	Sentiment *SentimentResult      `json:"sentiment,omitempty" gorm:"foreignKey:ArticleID"`
	Entities  *EntitySet            `json:"entities,omitempty" gorm:"foreignKey:ArticleID"`
	Topics    []ArticleTopicMapping `json:"topics,omitempty" gorm:"foreignKey:ArticleID"`
}

// TableName sets the table name for the Article model
func (Article) TableName() string {
	return "news"
}

// Document returns the text every enrichment dimension works from.
func (a *Article) Document() string {
	if a.Description == "" {
		return a.Title
	}
	return a.Title + " " + a.Description
}
