package models

import (
	"time"
)

// Category groups topics.
type Category struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"not null;unique" json:"name"`
	Slug      string    `gorm:"not null;uniqueIndex" json:"slug"`
	CreatedAt time.Time `json:"created_at"`

	// Filled by queries, not stored
	TopicCount int `gorm:"-" json:"topic_count"`
}
