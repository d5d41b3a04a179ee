package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"qrlink/pkg/limiter"
)

// RateLimit rejects clients that exhaust their token bucket with 429.
func RateLimit(rl *limiter.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		if !rl.Allow(clientIP) {
			wait := rl.NextAvailable(clientIP)
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Try again later.",
			})
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(rl.RemainingTokens(clientIP)))
		c.Next()
	}
}
