package models

import (
	"time"

	"github.com/google/uuid"
)

// Overall sentiment labels.
const (
	SentimentPositive = "Positive"
	SentimentNeutral  = "Neutral"
	SentimentNegative = "Negative"
)

// SentimentResult stores the polarity breakdown for one article. The three
// percentages are rounded independently and are not guaranteed to sum to
// 100; downstream aggregates work with the stored values as-is.
type SentimentResult struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ArticleID uuid.UUID `json:"article_id" gorm:"type:uuid;uniqueIndex;not null"`
	Positive  int       `json:"positive"`
	Neutral   int       `json:"neutral"`
	Negative  int       `json:"negative"`
	Overall   string    `json:"overall"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName sets the table name for the SentimentResult model
func (SentimentResult) TableName() string {
	return "sentiments"
}
