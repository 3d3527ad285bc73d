package models

import (
	"time"
)

// Vote values. A zero effective vote is represented by row absence.
const (
	VoteUp   = 1
	VoteDown = -1
)

// Vote is one user's signed preference on a topic or a comment. Exactly one
// of TopicID/CommentID is set. The partial unique indexes give one live row
// per (user, target); racing writers are serialized by the constraint.
type Vote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"size:36;not null;index;uniqueIndex:ux_vote_user_topic,priority:1;uniqueIndex:ux_vote_user_comment,priority:1" json:"user_id"`
	TopicID   *string   `gorm:"size:36;index;uniqueIndex:ux_vote_user_topic,priority:2" json:"topic_id"`
	CommentID *string   `gorm:"size:36;index;uniqueIndex:ux_vote_user_comment,priority:2" json:"comment_id"`
	Value     int       `gorm:"not null" json:"value"` // 1 or -1
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
