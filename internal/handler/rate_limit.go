package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vidstream/vidstream-api/internal/dto"
	"github.com/vidstream/vidstream-api/internal/service"
)

// RateLimitMiddleware applies the Redis sliding-window limiter. A limiter
// infrastructure error fails open; a rejected request gets 429 with
// X-RateLimit headers.
func RateLimitMiddleware(rateLimiter *service.RateLimiter, limit int, window time.Duration, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)

		err := rateLimiter.Allow(c.Request.Context(), key, limit, window)
		if err != nil {
			if errors.Is(err, service.ErrRateLimited) {
				remaining, _ := rateLimiter.Remaining(c.Request.Context(), key, limit, window)
				c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
				c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

				c.JSON(http.StatusTooManyRequests, dto.Fail(err.Error()))
				c.Abort()
				return
			}

			// Redis trouble should not lock users out of login.
			c.Next()
			return
		}

		remaining, _ := rateLimiter.Remaining(c.Request.Context(), key, limit, window)
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		c.Next()
	}
}

// IPBasedKey extracts the rate limit key from the client IP.
func IPBasedKey(c *gin.Context) string {
	ip := c.GetHeader("X-Forwarded-For")
	if ip != "" {
		ips := strings.Split(ip, ",")
		return strings.TrimSpace(ips[0])
	}

	return c.ClientIP()
}
