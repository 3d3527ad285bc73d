package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/hearthforum/hearth/internal/models"
)

// Repository provides database access methods
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// UserRepository provides user-related database operations
type UserRepository struct {
	*Repository
}

// NewUserRepository creates a new user repository
func NewUserRepository(repo *Repository) *UserRepository {
	return &UserRepository{Repository: repo}
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// List retrieves all users, newest first
func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// SessionRepository provides session-related database operations
type SessionRepository struct {
	*Repository
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(repo *Repository) *SessionRepository {
	return &SessionRepository{Repository: repo}
}

// GetByToken retrieves a session with its user by token
func (r *SessionRepository) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	var session models.Session
	if err := r.db.WithContext(ctx).Preload("User").Where("token = ?", token).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// CategoryRepository provides category-related database operations
type CategoryRepository struct {
	*Repository
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(repo *Repository) *CategoryRepository {
	return &CategoryRepository{Repository: repo}
}

// GetByID retrieves a category by ID
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

// List retrieves all categories with their topic counts
func (r *CategoryRepository) List(ctx context.Context) ([]*models.Category, error) {
	var categories []*models.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}

	type countRow struct {
		CategoryID string
		Count      int
	}
	var counts []countRow
	if err := r.db.WithContext(ctx).Model(&models.Topic{}).
		Select("category_id, COUNT(*) as count").
		Group("category_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}

	countMap := make(map[string]int, len(counts))
	for _, c := range counts {
		countMap[c.CategoryID] = c.Count
	}
	for _, cat := range categories {
		cat.TopicCount = countMap[cat.ID]
	}
	return categories, nil
}

// TopicRepository provides topic-related database operations
type TopicRepository struct {
	*Repository
}

// NewTopicRepository creates a new topic repository
func NewTopicRepository(repo *Repository) *TopicRepository {
	return &TopicRepository{Repository: repo}
}

// GetByID retrieves a topic with its author and category
func (r *TopicRepository) GetByID(ctx context.Context, id string) (*models.Topic, error) {
	var topic models.Topic
	if err := r.db.WithContext(ctx).Preload("Author").Preload("Category").
		First(&topic, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &topic, nil
}

// List retrieves topics newest first, optionally filtered by category,
// with comment counts filled in
func (r *TopicRepository) List(ctx context.Context, categoryID string) ([]*models.Topic, error) {
	q := r.db.WithContext(ctx).Preload("Author").Preload("Category")
	if categoryID != "" {
		q = q.Where("category_id = ?", categoryID)
	}

	var topics []*models.Topic
	if err := q.Order("created_at DESC").Find(&topics).Error; err != nil {
		return nil, err
	}
	if len(topics) == 0 {
		return topics, nil
	}

	ids := make([]string, len(topics))
	for i, t := range topics {
		ids[i] = t.ID
	}

	type countRow struct {
		TopicID string
		Count   int
	}
	var counts []countRow
	if err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Select("topic_id, COUNT(*) as count").
		Where("topic_id IN ?", ids).
		Group("topic_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}

	countMap := make(map[string]int, len(counts))
	for _, c := range counts {
		countMap[c.TopicID] = c.Count
	}
	for _, t := range topics {
		t.CommentCount = countMap[t.ID]
	}
	return topics, nil
}

// ListByAuthor retrieves a user's topics newest first with comment counts
func (r *TopicRepository) ListByAuthor(ctx context.Context, authorID string) ([]*models.Topic, error) {
	var topics []*models.Topic
	if err := r.db.WithContext(ctx).Preload("Author").Preload("Category").
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Find(&topics).Error; err != nil {
		return nil, err
	}
	if len(topics) == 0 {
		return topics, nil
	}

	ids := make([]string, len(topics))
	for i, t := range topics {
		ids[i] = t.ID
	}

	type countRow struct {
		TopicID string
		Count   int
	}
	var counts []countRow
	if err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Select("topic_id, COUNT(*) as count").
		Where("topic_id IN ?", ids).
		Group("topic_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}

	countMap := make(map[string]int, len(counts))
	for _, c := range counts {
		countMap[c.TopicID] = c.Count
	}
	for _, t := range topics {
		t.CommentCount = countMap[t.ID]
	}
	return topics, nil
}

// CommentRepository provides comment-related database operations
type CommentRepository struct {
	*Repository
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(repo *Repository) *CommentRepository {
	return &CommentRepository{Repository: repo}
}

// GetByID retrieves a comment with its author
func (r *CommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("Author").First(&comment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &comment, nil
}

// ListByTopic retrieves every comment of a topic in creation order. The tree
// is rebuilt in memory by the caller, so depth is unbounded.
func (r *CommentRepository) ListByTopic(ctx context.Context, topicID string) ([]*models.Comment, error) {
	var comments []*models.Comment
	if err := r.db.WithContext(ctx).Preload("Author").
		Where("topic_id = ?", topicID).
		Order("created_at ASC").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// ListByAuthor retrieves a user's comments newest first
func (r *CommentRepository) ListByAuthor(ctx context.Context, authorID string) ([]*models.Comment, error) {
	var comments []*models.Comment
	if err := r.db.WithContext(ctx).Preload("Author").
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// VoteRepository provides vote-related database operations
type VoteRepository struct {
	*Repository
}

// NewVoteRepository creates a new vote repository
func NewVoteRepository(repo *Repository) *VoteRepository {
	return &VoteRepository{Repository: repo}
}

// SumForTopic returns the vote aggregate for a topic
func (r *VoteRepository) SumForTopic(ctx context.Context, topicID string) (int, error) {
	var sum int
	err := r.db.WithContext(ctx).Model(&models.Vote{}).
		Select("COALESCE(SUM(value), 0)").
		Where("topic_id = ?", topicID).
		Scan(&sum).Error
	return sum, err
}

// SumForComment returns the vote aggregate for a comment
func (r *VoteRepository) SumForComment(ctx context.Context, commentID string) (int, error) {
	var sum int
	err := r.db.WithContext(ctx).Model(&models.Vote{}).
		Select("COALESCE(SUM(value), 0)").
		Where("comment_id = ?", commentID).
		Scan(&sum).Error
	return sum, err
}

// SumsForComments returns vote aggregates for a set of comments in one query
func (r *VoteRepository) SumsForComments(ctx context.Context, commentIDs []string) (map[string]int, error) {
	sums := make(map[string]int, len(commentIDs))
	if len(commentIDs) == 0 {
		return sums, nil
	}

	type sumRow struct {
		CommentID string
		Total     int
	}
	var rows []sumRow
	if err := r.db.WithContext(ctx).Model(&models.Vote{}).
		Select("comment_id, SUM(value) as total").
		Where("comment_id IN ?", commentIDs).
		Group("comment_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		sums[row.CommentID] = row.Total
	}
	return sums, nil
}

// ViewerVoteForTopic returns the viewer's stored vote value, 0 if none
func (r *VoteRepository) ViewerVoteForTopic(ctx context.Context, topicID, viewerID string) (int, error) {
	if viewerID == "" {
		return 0, nil
	}
	var vote models.Vote
	err := r.db.WithContext(ctx).
		Where("topic_id = ? AND user_id = ?", topicID, viewerID).
		First(&vote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return vote.Value, nil
}

// ViewerVoteForComment returns the viewer's stored vote value, 0 if none
func (r *VoteRepository) ViewerVoteForComment(ctx context.Context, commentID, viewerID string) (int, error) {
	if viewerID == "" {
		return 0, nil
	}
	var vote models.Vote
	err := r.db.WithContext(ctx).
		Where("comment_id = ? AND user_id = ?", commentID, viewerID).
		First(&vote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return vote.Value, nil
}

// ViewerVotesForComments returns the viewer's votes over a set of comments
func (r *VoteRepository) ViewerVotesForComments(ctx context.Context, commentIDs []string, viewerID string) (map[string]int, error) {
	votes := make(map[string]int, len(commentIDs))
	if viewerID == "" || len(commentIDs) == 0 {
		return votes, nil
	}

	var rows []models.Vote
	if err := r.db.WithContext(ctx).
		Where("comment_id IN ? AND user_id = ?", commentIDs, viewerID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		if row.CommentID != nil {
			votes[*row.CommentID] = row.Value
		}
	}
	return votes, nil
}

// ReportRepository provides report-related database operations
type ReportRepository struct {
	*Repository
}

// NewReportRepository creates a new report repository
func NewReportRepository(repo *Repository) *ReportRepository {
	return &ReportRepository{Repository: repo}
}

// GetByID retrieves a report by ID
func (r *ReportRepository) GetByID(ctx context.Context, id string) (*models.Report, error) {
	var report models.Report
	if err := r.db.WithContext(ctx).First(&report, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

// PendingByReporter returns the reporter's pending report against a target,
// nil if none exists
func (r *ReportRepository) PendingByReporter(ctx context.Context, reporterID string, topicID, commentID *string) (*models.Report, error) {
	q := r.db.WithContext(ctx).Where("reporter_id = ? AND status = ?", reporterID, models.ReportPending)
	if topicID != nil {
		q = q.Where("topic_id = ?", *topicID)
	} else {
		q = q.Where("comment_id = ?", *commentID)
	}

	var report models.Report
	if err := q.First(&report).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

// List retrieves all reports newest first with their reporters
func (r *ReportRepository) List(ctx context.Context) ([]*models.Report, error) {
	var reports []*models.Report
	if err := r.db.WithContext(ctx).Preload("Reporter").
		Order("created_at DESC").
		Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}
