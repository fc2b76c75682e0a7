package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/paragraf-app/core/internal/pkg/response"
)

const contextKeyAuthed = "authenticated"

// Auth returns a middleware that enforces the static workspace token.
// An empty configured token disables authentication entirely.
func Auth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Set(contextKeyAuthed, true)
			c.Next()
			return
		}

		presented := extractToken(c)
		if presented == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			response.Unauthorized(c)
			return
		}
		c.Set(contextKeyAuthed, true)
		c.Next()
	}
}

// IsAuthenticated returns true if the request passed the auth middleware.
func IsAuthenticated(c *gin.Context) bool {
	v, _ := c.Get(contextKeyAuthed)
	ok, _ := v.(bool)
	return ok
}

func extractToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if auth != "" {
		return NormalizeToken(auth)
	}
	return NormalizeToken(c.Query("token"))
}

// NormalizeToken trims spaces and strips optional Bearer prefix.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}
