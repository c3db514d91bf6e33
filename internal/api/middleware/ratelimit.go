package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zwaTOx/MultiTasker/internal/constants"
	"github.com/zwaTOx/MultiTasker/internal/ratelimit"
)

func RateLimitMiddleware(rl *ratelimit.RateLimiter, key string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, count, err := rl.Allow(c.Request.Context(), key, limit, window)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Rate limit check failed"})
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", limit-count))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", time.Now().Add(window).Unix()))

		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": window.Seconds(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// AuthRateLimit covers login and register.
func AuthRateLimit(rl *ratelimit.RateLimiter) gin.HandlerFunc {
	return RateLimitMiddleware(rl, "global:auth", constants.GlobalAuthLimit, time.Minute)
}

// RecoveryRateLimit covers reset-code issuance, which sends mail.
func RecoveryRateLimit(rl *ratelimit.RateLimiter) gin.HandlerFunc {
	return RateLimitMiddleware(rl, "global:recovery", constants.RecoveryLimit, time.Minute)
}
