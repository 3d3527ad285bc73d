package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hearthforum/hearth/internal/auth"
	"github.com/hearthforum/hearth/internal/forum"
)

// VoteAPI serves vote casts.
type VoteAPI struct {
	votes *forum.VoteService
}

// NewVoteAPI creates a new vote API
func NewVoteAPI(votes *forum.VoteService) *VoteAPI {
	return &VoteAPI{votes: votes}
}

type castVoteRequest struct {
	TargetType string `json:"targetType" binding:"required"`
	TargetID   string `json:"targetId" binding:"required"`
	Value      int    `json:"value" binding:"required"`
}

// CastVote handles POST /api/votes. Repeating an identical vote toggles it
// off; the response always carries the resulting aggregate, so clients can
// reconcile optimistic updates against it.
func (a *VoteAPI) CastVote(c *gin.Context) {
	var req castVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, "targetType, targetId and value are required")
		return
	}

	result, err := a.votes.Cast(c.Request.Context(), auth.FromContext(c), req.TargetType, req.TargetID, req.Value)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
