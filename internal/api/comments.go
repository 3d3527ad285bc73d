package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hearthforum/hearth/internal/auth"
	"github.com/hearthforum/hearth/internal/forum"
)

// CommentAPI serves comment writes. Reads come bundled with the topic.
type CommentAPI struct {
	comments *forum.CommentService
}

// NewCommentAPI creates a new comment API
func NewCommentAPI(comments *forum.CommentService) *CommentAPI {
	return &CommentAPI{comments: comments}
}

type createCommentRequest struct {
	Content  string  `json:"content" binding:"required"`
	ParentID *string `json:"parentId"`
}

// CreateComment handles POST /api/topics/:id/comments
func (a *CommentAPI) CreateComment(c *gin.Context) {
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, "content is required")
		return
	}

	view, err := a.comments.Create(c.Request.Context(), auth.FromContext(c), c.Param("id"), req.ParentID, req.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// DeleteComment handles DELETE /api/comments/:id. Deletion is soft: the
// comment keeps its place in the tree with its content masked.
func (a *CommentAPI) DeleteComment(c *gin.Context) {
	err := a.comments.SoftDelete(c.Request.Context(), auth.FromContext(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "isDeleted": true})
}
