package models

import (
	"time"
)

// Comment is a reply to a topic or to another comment. ParentID nil means
// top-level. Deletion is soft: the row stays so replies keep their anchor.
type Comment struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	AuthorID  string    `gorm:"not null;index" json:"author_id"`
	Author    User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	TopicID   string    `gorm:"not null;index" json:"topic_id"`
	Topic     Topic     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"topic"`
	ParentID  *string   `gorm:"size:36;index" json:"parent_id"`
	IsDeleted bool      `gorm:"not null;default:false" json:"is_deleted"`
	Moderated bool      `gorm:"not null;default:false" json:"moderated"`
	CreatedAt time.Time `json:"created_at"`
}
