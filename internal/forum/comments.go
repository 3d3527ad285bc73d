package forum

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hearthforum/hearth/internal/auth"
	"github.com/hearthforum/hearth/internal/db"
	"github.com/hearthforum/hearth/internal/models"
	"github.com/hearthforum/hearth/pkg/logging"
	"github.com/hearthforum/hearth/pkg/telemetry"
)

// CommentService owns the comment tree. Comments are stored flat with an
// adjacency link (parent_id) and the tree is rebuilt in memory on fetch, so
// reply depth is unbounded without schema or query changes.
type CommentService struct {
	db         *gorm.DB
	bus        Publisher
	avatarBase string
	logger     *zap.Logger
}

// NewCommentService creates a new comment service
func NewCommentService(gdb *gorm.DB, bus Publisher, avatarBase string) *CommentService {
	if bus == nil {
		bus = NopPublisher{}
	}
	return &CommentService{
		db:         gdb,
		bus:        bus,
		avatarBase: avatarBase,
		logger:     logging.WithComponent("comments"),
	}
}

// Create inserts a new leaf comment and fans it out, fully decorated, on the
// topic's channel.
func (s *CommentService) Create(ctx context.Context, id auth.Identity, topicID string, parentID *string, content string) (*CommentView, error) {
	ctx, span := telemetry.StartSpan(ctx, "forum.comments.create")
	defer span.End()

	if err := RequireWriter(id); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, Validationf("comment content must not be empty")
	}

	var topic models.Topic
	if err := s.db.WithContext(ctx).Select("id, moderated").First(&topic, "id = ?", topicID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if topic.Moderated {
		return nil, ErrTopicModerated
	}

	if parentID != nil {
		var parent models.Comment
		if err := s.db.WithContext(ctx).Select("id, topic_id").First(&parent, "id = ?", *parentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		if parent.TopicID != topicID {
			return nil, Validationf("parent comment belongs to a different topic")
		}
	}

	var author models.User
	if err := s.db.WithContext(ctx).First(&author, "id = ?", id.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	comment := models.Comment{
		ID:       uuid.NewString(),
		Content:  content,
		AuthorID: author.ID,
		TopicID:  topicID,
		ParentID: parentID,
	}
	if err := s.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return nil, err
	}
	comment.Author = author

	// Decorated at its initial state: zero votes, no replies.
	view := s.commentView(&comment, 0, 0)

	if err := s.bus.Publish(ctx, TopicChannel(topicID), EventNewComment, view); err != nil {
		s.logger.Warn("comment fan-out failed",
			zap.String("topic_id", topicID),
			zap.String("comment_id", comment.ID),
			zap.Error(err))
	}

	return view, nil
}

// SoftDelete marks a comment deleted by its author. The row stays so replies
// keep rendering beneath it; content is masked on every subsequent read.
// Irreversible.
func (s *CommentService) SoftDelete(ctx context.Context, id auth.Identity, commentID string) error {
	ctx, span := telemetry.StartSpan(ctx, "forum.comments.soft_delete")
	defer span.End()

	if err := RequireWriter(id); err != nil {
		return err
	}

	var comment models.Comment
	if err := s.db.WithContext(ctx).First(&comment, "id = ?", commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if comment.AuthorID != id.UserID {
		return ErrForbidden
	}

	if err := s.db.WithContext(ctx).Model(&comment).Update("is_deleted", true).Error; err != nil {
		return err
	}

	event := CommentUpdatedEvent{ID: commentID, IsDeleted: true}
	if err := s.bus.Publish(ctx, TopicChannel(comment.TopicID), EventCommentUpdated, event); err != nil {
		s.logger.Warn("delete fan-out failed",
			zap.String("topic_id", comment.TopicID),
			zap.String("comment_id", commentID),
			zap.Error(err))
	}

	return nil
}

// FetchTopicWithComments loads a topic and its full comment tree,
// visibility-resolved for the viewer. Top-level comments and every reply
// list are ordered by creation time ascending. A moderated topic yields
// ErrTopicModerated: the whole discussion view is suppressed.
func (s *CommentService) FetchTopicWithComments(ctx context.Context, topicID, viewerID string) (*TopicView, error) {
	ctx, span := telemetry.StartSpan(ctx, "forum.comments.fetch_topic")
	defer span.End()

	repo := db.NewRepository(s.db)

	topic, err := db.NewTopicRepository(repo).GetByID(ctx, topicID)
	if err != nil {
		return nil, err
	}
	if topic == nil {
		return nil, ErrNotFound
	}
	if topic.Moderated {
		return nil, ErrTopicModerated
	}

	comments, err := db.NewCommentRepository(repo).ListByTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}

	voteRepo := db.NewVoteRepository(repo)

	topicVotes, err := voteRepo.SumForTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}
	topicViewerVote, err := voteRepo.ViewerVoteForTopic(ctx, topicID, viewerID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
	}
	commentVotes, err := voteRepo.SumsForComments(ctx, ids)
	if err != nil {
		return nil, err
	}
	viewerVotes, err := voteRepo.ViewerVotesForComments(ctx, ids, viewerID)
	if err != nil {
		return nil, err
	}

	tree := s.buildTree(comments, commentVotes, viewerVotes)

	view := s.topicView(topic, topicVotes, topicViewerVote)
	view.Comments = tree
	ResolveTopic(view)

	return view, nil
}

// buildTree rebuilds the reply forest from the flat creation-ordered slice.
// A single pass suffices because every parent precedes its children in
// creation order. Replies whose parent row is missing surface at top level
// rather than disappearing.
func (s *CommentService) buildTree(comments []*models.Comment, votes, viewerVotes map[string]int) []*CommentView {
	byID := make(map[string]*CommentView, len(comments))
	roots := make([]*CommentView, 0, len(comments))

	for _, c := range comments {
		byID[c.ID] = s.commentView(c, votes[c.ID], viewerVotes[c.ID])
	}
	for _, c := range comments {
		view := byID[c.ID]
		if c.ParentID == nil {
			roots = append(roots, view)
			continue
		}
		if parent, ok := byID[*c.ParentID]; ok {
			parent.Replies = append(parent.Replies, view)
		} else {
			roots = append(roots, view)
		}
	}
	return roots
}

func (s *CommentService) commentView(c *models.Comment, voteCount, userVote int) *CommentView {
	content := c.Content
	return &CommentView{
		ID:             c.ID,
		Content:        &content,
		ContentHTML:    RenderMarkdown(c.Content),
		AuthorID:       c.AuthorID,
		AuthorName:     c.Author.Name,
		AuthorUsername: c.Author.Username,
		AuthorRole:     c.Author.Role,
		AvatarURL:      AvatarURL(s.avatarBase, c.Author.Name),
		TopicID:        c.TopicID,
		ParentID:       c.ParentID,
		IsDeleted:      c.IsDeleted,
		Moderated:      c.Moderated,
		CreatedAt:      c.CreatedAt,
		VoteCount:      voteCount,
		UserVote:       userVote,
		Replies:        []*CommentView{},
	}
}

func (s *CommentService) topicView(t *models.Topic, voteCount, userVote int) *TopicView {
	content := t.Content
	return &TopicView{
		ID:             t.ID,
		Title:          t.Title,
		Content:        &content,
		ContentHTML:    RenderMarkdown(t.Content),
		AuthorID:       t.AuthorID,
		AuthorName:     t.Author.Name,
		AuthorUsername: t.Author.Username,
		AuthorRole:     t.Author.Role,
		AvatarURL:      AvatarURL(s.avatarBase, t.Author.Name),
		CategoryID:     t.CategoryID,
		CategoryName:   t.Category.Name,
		Moderated:      t.Moderated,
		CreatedAt:      t.CreatedAt,
		VoteCount:      voteCount,
		UserVote:       userVote,
		Comments:       []*CommentView{},
	}
}
