package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"elitepay/internal/adapter/storage/redis"
	"elitepay/pkg/apperror"
	"elitepay/pkg/response"
)

// RateLimitRule is a fixed-window quota for a route group.
type RateLimitRule struct {
	Limit  int64
	Window time.Duration
}

// DefaultRateLimitRules are the per-group quotas applied by the router.
var DefaultRateLimitRules = map[string]RateLimitRule{
	"scan":        {Limit: 120, Window: time.Minute},
	"topup":       {Limit: 30, Window: time.Minute},
	"deduct":      {Limit: 60, Window: time.Minute},
	"convert":     {Limit: 30, Window: time.Minute},
	"limits":      {Limit: 30, Window: time.Minute},
	"admin_login": {Limit: 10, Window: time.Minute},
	"admin":       {Limit: 120, Window: time.Minute},
}

// RateLimiter enforces a fixed-window rate limit per client for the
// given route group. When the store is unreachable the request is let
// through so a degraded Redis does not take payments down with it.
func RateLimiter(store *redis.RateLimitStore, group string, rule RateLimitRule, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("%s:%s", group, extractIdentifier(c))

		res, err := store.Allow(c.Request.Context(), key, rule.Limit, rule.Window)
		if err != nil {
			log.Warn().Err(err).Str("group", group).Msg("rate limit store unavailable, allowing request")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(res.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt, 10))

		if !res.Allowed {
			retryAfter := res.ResetAt - time.Now().Unix()
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
			response.Error(c, apperror.ErrRateLimitExceeded())
			c.Abort()
			return
		}

		c.Next()
	}
}

// extractIdentifier keys the rate limit by card UID when the request
// carries one, falling back to the client IP.
func extractIdentifier(c *gin.Context) string {
	if uid := c.Param("uid"); uid != "" {
		return uid
	}
	return c.ClientIP()
}
