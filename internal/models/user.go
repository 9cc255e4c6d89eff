// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents a registered account. The password column stores whatever
// the configured credential scheme produces and is never serialized.
type User struct {
	ID        uint      `gorm:"column:user_id;primaryKey" json:"userId"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Nickname  string    `gorm:"not null" json:"nickname"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Posts     []Post    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// UserWithPosts is the response shape for a user joined with their posts.
type UserWithPosts struct {
	User
	Posts []PostSummary `json:"posts"`
}
