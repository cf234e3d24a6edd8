package ratelimit

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/taskboard-service/internal/auth"
)

// Middleware gates requests through the limiter before any credential work
// happens. Denied requests answer 429 without touching the hasher, the OTP
// state, or storage.
//
// The client key prefers the authenticated user id, then the first
// X-Forwarded-For hop, then the socket address. Redis outages fail open:
// dropping legitimate traffic is worse than briefly losing the brake.
func Middleware(limiter Limiter, limit int, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := clientKey(c)

		result, err := limiter.Allow(c.Context(), key)
		if err != nil {
			logger.Warn("rate limiter unavailable, failing open", zap.Error(err))
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			retryAfter := int(time.Until(result.ResetAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Set("Retry-After", strconv.Itoa(retryAfter))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"message": "Too many requests, please try again later.",
			})
		}

		return c.Next()
	}
}

func clientKey(c *fiber.Ctx) string {
	if user, ok := auth.UserFromContext(c); ok {
		return "uid:" + user.ID
	}
	if forwarded := c.Get("X-Forwarded-For"); forwarded != "" {
		return "ip:" + strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	return "ip:" + c.IP()
}
