package forum

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hearthforum/hearth/internal/auth"
	"github.com/hearthforum/hearth/internal/db"
	"github.com/hearthforum/hearth/internal/models"
	"github.com/hearthforum/hearth/pkg/telemetry"
)

// TopicService owns topic creation and the list surfaces.
type TopicService struct {
	db         *gorm.DB
	avatarBase string
}

// NewTopicService creates a new topic service
func NewTopicService(gdb *gorm.DB, avatarBase string) *TopicService {
	return &TopicService{db: gdb, avatarBase: avatarBase}
}

// Create starts a new topic in an existing category.
func (s *TopicService) Create(ctx context.Context, id auth.Identity, categoryID, title, content string) (*TopicView, error) {
	ctx, span := telemetry.StartSpan(ctx, "forum.topics.create")
	defer span.End()

	if err := RequireWriter(id); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" {
		return nil, Validationf("topic title must not be empty")
	}
	if content == "" {
		return nil, Validationf("topic content must not be empty")
	}

	var category models.Category
	if err := s.db.WithContext(ctx).First(&category, "id = ?", categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Validationf("category %q does not exist", categoryID)
		}
		return nil, err
	}

	var author models.User
	if err := s.db.WithContext(ctx).First(&author, "id = ?", id.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	topic := models.Topic{
		ID:         uuid.NewString(),
		Title:      title,
		Content:    content,
		AuthorID:   author.ID,
		CategoryID: category.ID,
	}
	if err := s.db.WithContext(ctx).Create(&topic).Error; err != nil {
		return nil, err
	}
	topic.Author = author
	topic.Category = category

	view := &TopicView{
		ID:             topic.ID,
		Title:          topic.Title,
		Content:        &topic.Content,
		ContentHTML:    RenderMarkdown(topic.Content),
		AuthorID:       author.ID,
		AuthorName:     author.Name,
		AuthorUsername: author.Username,
		AuthorRole:     author.Role,
		AvatarURL:      AvatarURL(s.avatarBase, author.Name),
		CategoryID:     category.ID,
		CategoryName:   category.Name,
		CreatedAt:      topic.CreatedAt,
		Comments:       []*CommentView{},
	}
	return view, nil
}

// List returns topic summaries newest first, optionally filtered by category.
// Moderated topics are excluded from the listing entirely.
func (s *TopicService) List(ctx context.Context, categoryID string) ([]*TopicSummary, error) {
	ctx, span := telemetry.StartSpan(ctx, "forum.topics.list")
	defer span.End()

	topics, err := db.NewTopicRepository(db.NewRepository(s.db)).List(ctx, categoryID)
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
			AuthorName:     t.Author.Name,
			AuthorUsername: t.Author.Username,
			AvatarURL:      AvatarURL(s.avatarBase, t.Author.Name),
			CategoryID:     t.CategoryID,
			CategoryName:   t.Category.Name,
			CreatedAt:      t.CreatedAt,
			CommentCount:   t.CommentCount,
		})
	}
	return summaries, nil
}

// Categories returns all categories with topic counts.
func (s *TopicService) Categories(ctx context.Context) ([]*models.Category, error) {
	return db.NewCategoryRepository(db.NewRepository(s.db)).List(ctx)
}
