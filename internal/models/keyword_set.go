package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// KeywordSet holds the top-ranked keyword phrases extracted for one article.
// Written exactly once per article; the unique index on ArticleID is what
// makes the extraction pass idempotent. An empty Keywords array means the
// article normalized to empty text and is still considered enriched.
type KeywordSet struct {
	ID        uuid.UUID      `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ArticleID uuid.UUID      `json:"article_id" gorm:"type:uuid;uniqueIndex;not null"`
	Keywords  pq.StringArray `json:"keywords" gorm:"type:text[]"`
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
}

// TableName sets the table name for the KeywordSet model
func (KeywordSet) TableName() string {
	return "keywords"
}
