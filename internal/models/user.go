package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a dashboard account. Articles and enrichment are global; accounts
// carry only login credentials and a small editable profile.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         string    `json:"role" gorm:"default:user"`
	Interests    string    `json:"interests"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for the User model
func (User) TableName() string {
	return "users"
}
