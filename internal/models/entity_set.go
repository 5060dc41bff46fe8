package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Entity category names used by the NER label mapping.
const (
	EntityTypePerson       = "PERSON"
	EntityTypeOrganization = "ORG"
	EntityTypeLocation     = "LOC"
)

// EntitySet stores the deduplicated named entities for one article,
// partitioned into the three display categories. All three columns are
// always present; an empty array means nothing was found in that category.
type EntitySet struct {
	ID            uuid.UUID      `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ArticleID     uuid.UUID      `json:"article_id" gorm:"type:uuid;uniqueIndex;not null"`
	People        pq.StringArray `json:"people" gorm:"type:text[]"`
	Organizations pq.StringArray `json:"organizations" gorm:"type:text[]"`
	Locations     pq.StringArray `json:"locations" gorm:"type:text[]"`
	CreatedAt     time.Time      `json:"created_at" gorm:"autoCreateTime"`
}

// TableName sets the table name for the EntitySet model
func (EntitySet) TableName() string {
	return "entities"
}

// EntityRow is the normalized per-entity shape used by consumers that want
// one (name, type) pair per row instead of the array columns.
type EntityRow struct {
	ArticleID uuid.UUID `json:"article_id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
}

// EntityRows translates the array-column storage shape into normalized rows.
func (e *EntitySet) EntityRows() []EntityRow {
	rows := make([]EntityRow, 0, len(e.People)+len(e.Organizations)+len(e.Locations))
	for _, name := range e.People {
		rows = append(rows, EntityRow{ArticleID: e.ArticleID, Name: name, Type: EntityTypePerson})
	}
	for _, name := range e.Organizations {
		rows = append(rows, EntityRow{ArticleID: e.ArticleID, Name: name, Type: EntityTypeOrganization})
	}
	for _, name := range e.Locations {
		rows = append(rows, EntityRow{ArticleID: e.ArticleID, Name: name, Type: EntityTypeLocation})
	}
	return rows
}
