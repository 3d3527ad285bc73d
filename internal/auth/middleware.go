package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hearthforum/hearth/pkg/logging"
)

const identityKey = "auth.identity"

// SessionCookie is the cookie name the web client stores its token under.
const SessionCookie = "session_token"

// Middleware resolves the caller's session on every request and stores the
// identity in the gin context. Resolution failures degrade to anonymous so a
// flaky lookup never breaks public reads.
func Middleware(resolver *Resolver) gin.HandlerFunc {
	logger := logging.WithComponent("auth")
	return func(c *gin.Context) {
		id, err := resolver.Resolve(c.Request.Context(), tokenFromRequest(c))
		if err != nil {
			logger.Warn("session resolution failed", zap.Error(err))
			id = Identity{}
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

// FromContext returns the identity stored by Middleware, anonymous if none.
func FromContext(c *gin.Context) Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(Identity); ok {
			return id
		}
	}
	return Identity{}
}

// RequireSession aborts anonymous requests with 401. Role checks stay in the
// service layer; this guard only cuts the obvious case before body parsing.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if FromContext(c).Anonymous() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}
