package forum

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hearthforum/hearth/internal/auth"
	"github.com/hearthforum/hearth/internal/db"
	"github.com/hearthforum/hearth/internal/models"
	"github.com/hearthforum/hearth/pkg/logging"
	"github.com/hearthforum/hearth/pkg/telemetry"
)

// ReportService owns the moderation pipeline: user-filed reports and the
// admin review queue that flips target moderated flags.
type ReportService struct {
	db           *gorm.DB
	reasonMaxLen int
	logger       *zap.Logger
}

// NewReportService creates a new report service
func NewReportService(gdb *gorm.DB, reasonMaxLen int) *ReportService {
	if reasonMaxLen <= 0 {
		reasonMaxLen = 500
	}
	return &ReportService{
		db:           gdb,
		reasonMaxLen: reasonMaxLen,
		logger:       logging.WithComponent("reports"),
	}
}

// ReportView is the admin-queue projection of a report.
type ReportView struct {
	ID               string    `json:"id"`
	Reason           string    `json:"reason"`
	ReporterID       string    `json:"reporterId"`
	ReporterName     string    `json:"reporterName"`
	ReporterUsername string    `json:"reporterUsername"`
	TargetType       string    `json:"targetType"`
	TargetID         string    `json:"targetId"`
	TargetPreview    string    `json:"targetPreview"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"createdAt"`
}

// SubmitResult distinguishes a fresh report from a duplicate of a still
// pending one. Duplicates are absorbed, not rejected, so the queue holds at
// most one open report per (reporter, target).
type SubmitResult struct {
	ReportID        string `json:"reportId"`
	AlreadyReported bool   `json:"alreadyReported"`
}

// Submit files a report against a topic or comment. A second submission by
// the same reporter against the same target while the first is still pending
// returns the existing report instead of inserting a new row. Once the first
// has been resolved or dismissed, a fresh report may be filed again.
func (s *ReportService) Submit(ctx context.Context, id auth.Identity, targetKind, targetID, reason string) (*SubmitResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "forum.reports.submit")
	defer span.End()

	if err := RequireWriter(id); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, Validationf("report reason must not be empty")
	}
	if len(reason) > s.reasonMaxLen {
		return nil, Validationf("report reason exceeds %d characters", s.reasonMaxLen)
	}

	topicID, commentID, err := s.resolveTarget(ctx, targetKind, targetID)
	if err != nil {
		return nil, err
	}

	repo := db.NewReportRepository(db.NewRepository(s.db))
	existing, err := repo.PendingByReporter(ctx, id.UserID, topicID, commentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &SubmitResult{ReportID: existing.ID, AlreadyReported: true}, nil
	}

	report := models.Report{
		ID:         uuid.NewString(),
		Reason:     reason,
		ReporterID: id.UserID,
		TopicID:    topicID,
		CommentID:  commentID,
		Status:     models.ReportPending,
	}
	if err := s.db.WithContext(ctx).Create(&report).Error; err != nil {
		return nil, err
	}

	s.logger.Info("report filed",
		zap.String("report_id", report.ID),
		zap.String("target_kind", targetKind),
		zap.String("target_id", targetID))

	return &SubmitResult{ReportID: report.ID}, nil
}

// List returns the full report queue, newest first, with a short preview of
// each target so the reviewer can triage without opening every thread.
func (s *ReportService) List(ctx context.Context, id auth.Identity) ([]*ReportView, error) {
	ctx, span := telemetry.StartSpan(ctx, "forum.reports.list")
	defer span.End()

	if err := RequireAdmin(id); err != nil {
		return nil, err
	}

	reports, err := db.NewReportRepository(db.NewRepository(s.db)).List(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]*ReportView, 0, len(reports))
	for _, r := range reports {
		view := &ReportView{
			ID:               r.ID,
			Reason:           r.Reason,
			ReporterID:       r.ReporterID,
			ReporterName:     r.Reporter.Name,
			ReporterUsername: r.Reporter.Username,
			Status:           r.Status,
			CreatedAt:        r.CreatedAt,
		}
		if r.TopicID != nil {
			view.TargetType = TargetTopic
			view.TargetID = *r.TopicID
			var topic models.Topic
			if err := s.db.WithContext(ctx).Select("title").First(&topic, "id = ?", *r.TopicID).Error; err == nil {
				view.TargetPreview = preview(topic.Title)
			}
		} else if r.CommentID != nil {
			view.TargetType = TargetComment
			view.TargetID = *r.CommentID
			var comment models.Comment
			if err := s.db.WithContext(ctx).Select("content").First(&comment, "id = ?", *r.CommentID).Error; err == nil {
				view.TargetPreview = preview(comment.Content)
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// SetStatus moves a report between pending, resolved and dismissed, keeping
// the target's moderated flag in lockstep inside one transaction. Resolving
// moderates the target; dismissing or reopening clears the flag. Any
// transition between the three states is allowed, so a mistaken resolution
// can be undone.
func (s *ReportService) SetStatus(ctx context.Context, id auth.Identity, reportID, status string) error {
	ctx, span := telemetry.StartSpan(ctx, "forum.reports.set_status")
	defer span.End()

	if err := RequireAdmin(id); err != nil {
		return err
	}
	if !models.ValidReportStatus(status) {
		return Validationf("unknown report status %q", status)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var report models.Report
		if err := tx.First(&report, "id = ?", reportID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := tx.Model(&report).Update("status", status).Error; err != nil {
			return err
		}

		moderated := status == models.ReportResolved
		if report.TopicID != nil {
			return tx.Model(&models.Topic{}).
				Where("id = ?", *report.TopicID).
				Update("moderated", moderated).Error
		}
		if report.CommentID != nil {
			return tx.Model(&models.Comment{}).
				Where("id = ?", *report.CommentID).
				Update("moderated", moderated).Error
		}
		return nil
	})
}

func (s *ReportService) resolveTarget(ctx context.Context, targetKind, targetID string) (topicID, commentID *string, err error) {
	switch targetKind {
	case TargetTopic:
		var topic models.Topic
		if err := s.db.WithContext(ctx).Select("id").First(&topic, "id = ?", targetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, ErrNotFound
			}
			return nil, nil, err
		}
		return &targetID, nil, nil
	case TargetComment:
		var comment models.Comment
		if err := s.db.WithContext(ctx).Select("id").First(&comment, "id = ?", targetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, ErrNotFound
			}
			return nil, nil, err
		}
		return nil, &targetID, nil
	default:
		return nil, nil, Validationf("unknown report target kind %q", targetKind)
	}
}

func preview(text string) string {
	const max = 120
	runes := []rune(strings.TrimSpace(text))
	if len(runes) <= max {
		return string(runes)
	}
	return string(runes[:max]) + "…"
}
