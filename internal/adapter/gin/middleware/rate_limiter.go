package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-directory-service/pkg/logger"
	"user-directory-service/pkg/ratelimit"
)

// RateLimiter returns a Gin middleware that applies limiter per client IP.
// A nil limiter disables limiting; limiter errors let the request through.
func RateLimiter(limiter ratelimit.Limiter, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		clientIP := c.ClientIP()
		allowed, err := limiter.Allow(c.Request.Context(), "http:"+clientIP)
		if err != nil {
			logger.WithContext(c.Request.Context(), log).Warn("rate limiter error, allowing request",
				zap.String("client_ip", clientIP),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if !allowed {
			logger.WithContext(c.Request.Context(), log).Warn("rate limit exceeded",
				zap.String("client_ip", clientIP),
				zap.String("path", c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "Too many requests, please try again later",
			})
			return
		}

		c.Next()
	}
}
