package models

import (
	"time"
)

// Topic is a top-level discussion thread. Topics are never hard-deleted;
// moderation hides them entirely.
type Topic struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Title      string    `gorm:"not null" json:"title"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	AuthorID   string    `gorm:"not null;index" json:"author_id"`
	Author     User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	CategoryID string    `gorm:"not null;index" json:"category_id"`
	Category   Category  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"category"`
	Moderated  bool      `gorm:"not null;default:false" json:"moderated"`
	CreatedAt  time.Time `json:"created_at"`

	// Filled by queries, not stored
	CommentCount int `gorm:"-" json:"comment_count"`
}
