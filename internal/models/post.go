package models

import (
	"time"
)

// Post represents a piece of content owned by a user. Posts carry only a
// creation timestamp; the users table cascades deletes onto posts.
type Post struct {
	ID        uint      `gorm:"column:post_id;primaryKey" json:"postId"`
	Title     string    `json:"title"`
	Content   string    `gorm:"type:text" json:"content"`
	UserID    uint      `gorm:"column:user_id;not null;index" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// PostListItem is the projection returned by post list and detail reads.
type PostListItem struct {
	ID      uint   `gorm:"column:post_id" json:"postId"`
	Title   string `json:"title"`
	Content string `json:"content"`
	UserID  uint   `gorm:"column:user_id" json:"userId"`
}

// PostSummary is the projection embedded in a user-with-posts response.
type PostSummary struct {
	ID        uint      `gorm:"column:post_id" json:"postId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}
