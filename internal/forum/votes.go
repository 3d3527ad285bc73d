package forum

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hearthforum/hearth/internal/auth"
	"github.com/hearthforum/hearth/internal/models"
	"github.com/hearthforum/hearth/pkg/logging"
	"github.com/hearthforum/hearth/pkg/telemetry"
)

// VoteService owns the vote ledger: one signed row per (user, target),
// toggled off on a repeat of the same value, switched in place on the
// opposite value. The aggregate is always recomputed from the ledger inside
// the mutating transaction, never read-modify-written from a cached sum.
type VoteService struct {
	db     *gorm.DB
	bus    Publisher
	logger *zap.Logger
}

// NewVoteService creates a new vote service
func NewVoteService(db *gorm.DB, bus Publisher) *VoteService {
	if bus == nil {
		bus = NopPublisher{}
	}
	return &VoteService{
		db:     db,
		bus:    bus,
		logger: logging.WithComponent("votes"),
	}
}

// CastResult reports the ledger state after a cast.
type CastResult struct {
	TargetKind string `json:"targetKind"`
	TargetID   string `json:"targetId"`
	Aggregate  int    `json:"aggregate"`
	ViewerVote int    `json:"viewerVote"`
}

// Cast records, switches or toggles off a vote and returns the recomputed
// aggregate. A repeated identical cast deletes the row (effective value 0),
// so a double-click is a no-op pair, never an error.
func (s *VoteService) Cast(ctx context.Context, id auth.Identity, targetKind, targetID string, value int) (*CastResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "forum.votes.cast")
	defer span.End()

	if err := RequireWriter(id); err != nil {
		return nil, err
	}
	if value != models.VoteUp && value != models.VoteDown {
		return nil, Validationf("vote value must be 1 or -1")
	}
	if targetKind != TargetTopic && targetKind != TargetComment {
		return nil, Validationf("unknown vote target kind %q", targetKind)
	}

	topicID, err := s.resolveTopicID(ctx, targetKind, targetID)
	if err != nil {
		return nil, err
	}

	result, err := s.castOnce(ctx, id.UserID, targetKind, targetID, value)
	if err != nil && isUniqueViolation(err) {
		// A concurrent first vote by the same user won the race; rerun so
		// this cast observes the now-existing row.
		result, err = s.castOnce(ctx, id.UserID, targetKind, targetID, value)
	}
	if err != nil {
		return nil, err
	}

	// Best-effort fan-out; the committed write is the source of truth.
	event := VoteEvent{ID: targetID, Type: targetKind, Votes: result.Aggregate}
	if err := s.bus.Publish(ctx, TopicChannel(topicID), EventNewVote, event); err != nil {
		s.logger.Warn("vote fan-out failed",
			zap.String("topic_id", topicID),
			zap.String("target_id", targetID),
			zap.Error(err))
	}

	return result, nil
}

func (s *VoteService) castOnce(ctx context.Context, userID, targetKind, targetID string, value int) (*CastResult, error) {
	result := &CastResult{TargetKind: targetKind, TargetID: targetID}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Where("user_id = ?", userID)
		if targetKind == TargetTopic {
			q = q.Where("topic_id = ?", targetID)
		} else {
			q = q.Where("comment_id = ?", targetID)
		}

		var existing models.Vote
		err := q.First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			vote := models.Vote{UserID: userID, Value: value}
			if targetKind == TargetTopic {
				vote.TopicID = &targetID
			} else {
				vote.CommentID = &targetID
			}
			if err := tx.Create(&vote).Error; err != nil {
				return err
			}
			result.ViewerVote = value
		case err != nil:
			return err
		case existing.Value == value:
			// Toggle off
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			result.ViewerVote = 0
		default:
			// Switch direction in place
			if err := tx.Model(&existing).Update("value", value).Error; err != nil {
				return err
			}
			result.ViewerVote = value
		}

		// Recompute the aggregate inside the transaction so concurrent
		// casts by other users are never lost to a stale cached sum.
		sumQ := tx.Model(&models.Vote{}).Select("COALESCE(SUM(value), 0)")
		if targetKind == TargetTopic {
			sumQ = sumQ.Where("topic_id = ?", targetID)
		} else {
			sumQ = sumQ.Where("comment_id = ?", targetID)
		}
		return sumQ.Scan(&result.Aggregate).Error
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Aggregate returns the sum of stored values for a target, 0 if none.
func (s *VoteService) Aggregate(ctx context.Context, targetKind, targetID string) (int, error) {
	var sum int
	q := s.db.WithContext(ctx).Model(&models.Vote{}).Select("COALESCE(SUM(value), 0)")
	if targetKind == TargetTopic {
		q = q.Where("topic_id = ?", targetID)
	} else {
		q = q.Where("comment_id = ?", targetID)
	}
	err := q.Scan(&sum).Error
	return sum, err
}

// ViewerVote returns the viewer's stored value for a target, 0 if none or
// unauthenticated.
func (s *VoteService) ViewerVote(ctx context.Context, targetKind, targetID, viewerID string) (int, error) {
	if viewerID == "" {
		return 0, nil
	}
	q := s.db.WithContext(ctx).Where("user_id = ?", viewerID)
	if targetKind == TargetTopic {
		q = q.Where("topic_id = ?", targetID)
	} else {
		q = q.Where("comment_id = ?", targetID)
	}
	var vote models.Vote
	if err := q.First(&vote).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return vote.Value, nil
}

// resolveTopicID validates the target exists and returns the topic whose
// channel carries the fan-out.
func (s *VoteService) resolveTopicID(ctx context.Context, targetKind, targetID string) (string, error) {
	if targetKind == TargetTopic {
		var topic models.Topic
		if err := s.db.WithContext(ctx).Select("id").First(&topic, "id = ?", targetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", ErrNotFound
			}
			return "", err
		}
		return topic.ID, nil
	}

	var comment models.Comment
	if err := s.db.WithContext(ctx).Select("id, topic_id").First(&comment, "id = ?", targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return comment.TopicID, nil
}

// isUniqueViolation reports whether err came from a uniqueness constraint.
// The constraint is what serializes racing first votes for a (user, target)
// pair; the loser retries and lands on the toggle/switch path.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
