package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hearthforum/hearth/internal/forum"
	"github.com/hearthforum/hearth/pkg/logging"
)

// writeError maps core errors onto HTTP statuses. A moderated topic is 410:
// the resource existed and was deliberately withdrawn, which is a different
// signal to clients and caches than 404.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, forum.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	case errors.Is(err, forum.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, forum.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, forum.ErrTopicModerated):
		c.JSON(http.StatusGone, gin.H{"error": "topic removed by moderation"})
	case forum.IsValidation(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		logging.WithComponent("api").Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func writeBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}
