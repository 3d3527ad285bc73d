package models

import (
	"time"
)

// Report statuses. Transitions are admin-driven and bidirectional; resolved
// is the only status that keeps the target's moderated flag set.
const (
	ReportPending   = "pending"
	ReportResolved  = "resolved"
	ReportDismissed = "dismissed"
)

// Report is a user flag against a topic or a comment. Exactly one of
// TopicID/CommentID is set. At most one pending report per (reporter, target).
type Report struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Reason     string    `gorm:"size:500;not null" json:"reason"`
	ReporterID string    `gorm:"size:36;not null;index" json:"reporter_id"`
	Reporter   User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"reporter"`
	TopicID    *string   `gorm:"size:36;index" json:"topic_id"`
	CommentID  *string   `gorm:"size:36;index" json:"comment_id"`
	Status     string    `gorm:"size:20;default:'pending';not null" json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// ValidReportStatus reports whether s is a known report status.
func ValidReportStatus(s string) bool {
	switch s {
	case ReportPending, ReportResolved, ReportDismissed:
		return true
	}
	return false
}
