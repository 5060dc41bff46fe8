package models

import (
	"time"

	"github.com/google/uuid"
)

// OutlierTopicID is the distinguished topic for documents the clustering
// strategy could not confidently assign anywhere.
const OutlierTopicID = -1

// Topic is a corpus-level cluster discovered by a training pass. Names come
// from a curated label map; Keywords is the descriptive term string the
// trainer logged for that cluster.
type Topic struct {
	ID        int       `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name      string    `json:"name" gorm:"not null"`
	Keywords  string    `json:"keywords"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for the Topic model
func (Topic) TableName() string {
	return "topics"
}

// ArticleTopicMapping relates one article to its assigned topic with the
// model's confidence. The composite unique index enforces at most one
// mapping per (article, topic) pair even under concurrent assignment runs.
type ArticleTopicMapping struct {
	ID             uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ArticleID      uuid.UUID `json:"article_id" gorm:"type:uuid;not null;uniqueIndex:uq_article_topic"`
	TopicID        int       `json:"topic_id" gorm:"not null;uniqueIndex:uq_article_topic"`
	RelevanceScore float64   `json:"relevance_score"`
	AssignedAt     time.Time `json:"assigned_at" gorm:"autoCreateTime;index"`

	Topic Topic `json:"topic,omitempty" gorm:"foreignKey:TopicID"`
}

// TableName sets the table name for the ArticleTopicMapping model
func (ArticleTopicMapping) TableName() string {
	return "article_topics_mapping"
}
