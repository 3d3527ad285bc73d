package forum

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hearthforum/hearth/internal/auth"
	"github.com/hearthforum/hearth/internal/db"
	"github.com/hearthforum/hearth/internal/models"
	"github.com/hearthforum/hearth/pkg/logging"
	"github.com/hearthforum/hearth/pkg/telemetry"
)

// UserService owns public profiles and the admin user controls.
type UserService struct {
	db         *gorm.DB
	avatarBase string
	logger     *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(gdb *gorm.DB, avatarBase string) *UserService {
	return &UserService{
		db:         gdb,
		avatarBase: avatarBase,
		logger:     logging.WithComponent("users"),
	}
}

// ProfileView is the public projection of a user: identity plus their
// visible activity.
type ProfileView struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Username  string          `json:"username"`
	Role      string          `json:"role"`
	Bio       string          `json:"bio,omitempty"`
	BannerURL string          `json:"bannerUrl,omitempty"`
	AvatarURL string          `json:"avatar"`
	CreatedAt time.Time       `json:"createdAt"`
	Topics    []*TopicSummary `json:"topics"`
	Comments  []*CommentView  `json:"comments"`
}

// ProfileUpdate carries the editable profile fields. Nil pointers mean
// "leave unchanged".
type ProfileUpdate struct {
	Name      *string
	Username  *string
	Bio       *string
	BannerURL *string
}

var usernamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{2,29}$`)

// GetProfile returns a user's public profile by username: their topics
// (moderated ones excluded) and their comments, content masked by the same
// rules as the thread view.
func (s *UserService) GetProfile(ctx context.Context, username string) (*ProfileView, error) {
	ctx, span := telemetry.StartSpan(ctx, "forum.users.get_profile")
	defer span.End()

	repo := db.NewRepository(s.db)

	user, err := db.NewUserRepository(repo).GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	topics, err := db.NewTopicRepository(repo).ListByAuthor(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	summaries := make([]*TopicSummary, 0, len(topics))
	for _, t := range topics {
		if t.Moderated {
			continue
		}
		summaries = append(summaries, &TopicSummary{
			ID:             t.ID,
			Title:          t.Title,
			AuthorID:       t.AuthorID,
			AuthorName:     user.Name,
			AuthorUsername: user.Username,
			AvatarURL:      AvatarURL(s.avatarBase, user.Name),
			CategoryID:     t.CategoryID,
			CategoryName:   t.Category.Name,
			CreatedAt:      t.CreatedAt,
			CommentCount:   t.CommentCount,
		})
	}

	comments, err := db.NewCommentRepository(repo).ListByAuthor(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
	}
	sums, err := db.NewVoteRepository(repo).SumsForComments(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]*CommentView, 0, len(comments))
	for _, c := range comments {
		content := c.Content
		views = append(views, &CommentView{
			ID:             c.ID,
			Content:        &content,
			ContentHTML:    RenderMarkdown(c.Content),
			AuthorID:       c.AuthorID,
			AuthorName:     user.Name,
			AuthorUsername: user.Username,
			AuthorRole:     user.Role,
			AvatarURL:      AvatarURL(s.avatarBase, user.Name),
			TopicID:        c.TopicID,
			ParentID:       c.ParentID,
			IsDeleted:      c.IsDeleted,
			Moderated:      c.Moderated,
			CreatedAt:      c.CreatedAt,
			VoteCount:      sums[c.ID],
			Replies:        []*CommentView{},
		})
	}
	ResolveCommentTree(views)

	return &ProfileView{
		ID:        user.ID,
		Name:      user.Name,
		Username:  user.Username,
		Role:      user.Role,
		Bio:       user.Bio,
		BannerURL: user.BannerURL,
		AvatarURL: AvatarURL(s.avatarBase, user.Name),
		CreatedAt: user.CreatedAt,
		Topics:    summaries,
		Comments:  views,
	}, nil
}

// UpdateProfile applies the caller's profile edits. Banned users cannot
// edit. Username changes are checked for collisions inside the transaction.
func (s *UserService) UpdateProfile(ctx context.Context, id auth.Identity, update ProfileUpdate) (*ProfileView, error) {
	ctx, span := telemetry.StartSpan(ctx, "forum.users.update_profile")
	defer span.End()

	if err := RequireWriter(id); err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, Validationf("display name must not be empty")
		}
		changes["name"] = name
	}
	if update.Username != nil {
		username := strings.ToLower(strings.TrimSpace(*update.Username))
		if !usernamePattern.MatchString(username) {
			return nil, Validationf("username must be 3-30 characters: lowercase letters, digits, - or _")
		}
		changes["username"] = username
	}
	if update.Bio != nil {
		changes["bio"] = strings.TrimSpace(*update.Bio)
	}
	if update.BannerURL != nil {
		banner := strings.TrimSpace(*update.BannerURL)
		if banner != "" {
			if err := validateBannerURL(banner); err != nil {
				return nil, err
			}
		}
		changes["banner_url"] = banner
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if username, ok := changes["username"].(string); ok {
			var taken int64
			if err := tx.Model(&models.User{}).
				Where("username = ? AND id <> ?", username, id.UserID).
				Count(&taken).Error; err != nil {
				return err
			}
			if taken > 0 {
				return Validationf("username %q is already taken", username)
			}
		}
		if len(changes) == 0 {
			return nil
		}
		return tx.Model(&models.User{}).Where("id = ?", id.UserID).Updates(changes).Error
	})
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id.UserID).Error; err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, user.Username)
}

// UpdateRole changes a user's role. Banning revokes every live session in
// the same transaction, so a banned user is logged out everywhere at once,
// not just blocked on their next login.
func (s *UserService) UpdateRole(ctx context.Context, id auth.Identity, userID, role string) error {
	ctx, span := telemetry.StartSpan(ctx, "forum.users.update_role")
	defer span.End()

	if err := RequireAdmin(id); err != nil {
		return err
	}
	if role != models.RoleUser && role != models.RoleAdmin && role != models.RoleBanned {
		return Validationf("unknown role %q", role)
	}
	if userID == id.UserID {
		return Validationf("cannot change your own role")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).Where("id = ?", userID).Update("role", role)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if role == models.RoleBanned {
			return tx.Where("user_id = ?", userID).Delete(&models.Session{}).Error
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("role updated",
		zap.String("user_id", userID),
		zap.String("role", role))
	return nil
}

// ListUsers returns every user for the admin panel, newest first.
func (s *UserService) ListUsers(ctx context.Context, id auth.Identity) ([]*models.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "forum.users.list")
	defer span.End()

	if err := RequireAdmin(id); err != nil {
		return nil, err
	}
	return db.NewUserRepository(db.NewRepository(s.db)).List(ctx)
}

// validateBannerURL accepts absolute http(s) URLs only.
func validateBannerURL(raw string) error {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return Validationf("banner URL is not a valid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Validationf("banner URL must use http or https")
	}
	if u.Host == "" {
		return Validationf("banner URL must be absolute")
	}
	return nil
}
