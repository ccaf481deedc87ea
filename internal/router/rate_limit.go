package router

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/retailsetu/delivery-engine/internal/cache"
	"github.com/retailsetu/delivery-engine/internal/http/response"

	"github.com/gin-gonic/gin"
)

// RateLimitKeyFunc derives the throttle bucket for a request.
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule is one sliding-window throttle.
type RateLimitRule struct {
	Prefix        string
	WindowSeconds int
	MaxRequests   int
	Message       string
}

// RateLimitMiddleware throttles requests through the shared Redis counter.
// With the cache disabled the middleware passes everything through.
func RateLimitMiddleware(rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cache.Enabled() || rule.WindowSeconds <= 0 || rule.MaxRequests <= 0 {
			c.Next()
			return
		}

		key := ""
		if keyFunc != nil {
			key = strings.TrimSpace(keyFunc(c))
		}
		if key == "" {
			key = c.ClientIP()
		}
		if rule.Prefix != "" {
			key = fmt.Sprintf("%s:%s", rule.Prefix, key)
		}

		window := time.Duration(rule.WindowSeconds) * time.Second
		count, err := cache.IncrWithWindow(c.Request.Context(), key, window)
		if err != nil {
			// A broken limiter must not take the API down with it.
			c.Next()
			return
		}
		if count > int64(rule.MaxRequests) {
			msg := strings.TrimSpace(rule.Message)
			if msg == "" {
				msg = fmt.Sprintf("too many requests, retry in %d seconds", rule.WindowSeconds)
			}
			response.Error(c, response.CodeTooManyRequests, msg)
			c.Abort()
			return
		}

		c.Next()
	}
}

// KeyByIP buckets requests by client IP.
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// KeyByUser buckets requests by the authenticated user, falling back to IP
// before authentication has run.
func KeyByUser(c *gin.Context) string {
	if value, ok := c.Get("user_id"); ok {
		if uid, ok := value.(uint); ok && uid != 0 {
			return "user:" + strconv.FormatUint(uint64(uid), 10)
		}
	}
	return c.ClientIP()
}
