package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vidstream/vidstream-api/internal/domain"
	"github.com/vidstream/vidstream-api/internal/service"
)

const (
	ctxUserID = "user_id"
	ctxClaims = "claims"
)

// AuthMiddleware authenticates the request from the Authorization header or,
// failing that, the access-token cookie, and attaches the resolved identity
// to the request context.
func AuthMiddleware(sessions service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := extractAccessToken(c)
		if !ok {
			abortError(c, domain.ErrUnauthorized)
			return
		}

		claims, err := sessions.ValidateAccessToken(c.Request.Context(), token)
		if err != nil {
			abortError(c, err)
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxClaims, claims)

		c.Next()
	}
}

// OptionalAuthMiddleware resolves the identity when a valid token is present
// and stays silent otherwise. Used on public reads that personalize for
// logged-in viewers (channel profile's is_subscribed).
func OptionalAuthMiddleware(sessions service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := extractAccessToken(c); ok {
			if claims, err := sessions.ValidateAccessToken(c.Request.Context(), token); err == nil {
				c.Set(ctxUserID, claims.UserID)
				c.Set(ctxClaims, claims)
			}
		}

		c.Next()
	}
}

// CurrentUserID returns the authenticated user's id from the request context.
func CurrentUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(ctxUserID)
	if !exists {
		return "", false
	}

	id, ok := v.(string)
	return id, ok && id != ""
}

func extractAccessToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1], true
		}
		return "", false
	}

	if cookie, err := c.Cookie(accessTokenCookie); err == nil && cookie != "" {
		return cookie, true
	}

	return "", false
}
