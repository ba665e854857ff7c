package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"VConnct/logger"
	"VConnct/service/storage"
)

// RateLimit throttles by client IP ahead of authentication, so abusive
// traffic never reaches the credential path. Runs as a no-op when redis is
// not configured.
func RateLimit(l *storage.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := l.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.Warnf("[ratelimit] check failed: %v", err)
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "Too many requests, please try again later"})
			return
		}
		c.Next()
	}
}
