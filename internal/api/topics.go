package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hearthforum/hearth/internal/auth"
	"github.com/hearthforum/hearth/internal/forum"
)

// TopicAPI serves the topic and category surfaces.
type TopicAPI struct {
	topics   *forum.TopicService
	comments *forum.CommentService
}

// NewTopicAPI creates a new topic API
func NewTopicAPI(topics *forum.TopicService, comments *forum.CommentService) *TopicAPI {
	return &TopicAPI{topics: topics, comments: comments}
}

// ListCategories handles GET /api/categories
func (a *TopicAPI) ListCategories(c *gin.Context) {
	categories, err := a.topics.Categories(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// ListTopics handles GET /api/topics?category=<id>
func (a *TopicAPI) ListTopics(c *gin.Context) {
	summaries, err := a.topics.List(c.Request.Context(), c.Query("category"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"topics": summaries})
}

type createTopicRequest struct {
	CategoryID string `json:"categoryId" binding:"required"`
	Title      string `json:"title" binding:"required"`
	Content    string `json:"content" binding:"required"`
}

// CreateTopic handles POST /api/topics
func (a *TopicAPI) CreateTopic(c *gin.Context) {
	var req createTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, "categoryId, title and content are required")
		return
	}

	view, err := a.topics.Create(c.Request.Context(), auth.FromContext(c), req.CategoryID, req.Title, req.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// GetTopic handles GET /api/topics/:id and returns the topic with its full
// comment tree, decorated for the viewer.
func (a *TopicAPI) GetTopic(c *gin.Context) {
	viewerID := auth.FromContext(c).UserID
	view, err := a.comments.FetchTopicWithComments(c.Request.Context(), c.Param("id"), viewerID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
