package middleware

import (
	"fmt"
	"time"

	"school/kv"
	"school/logger"

	"github.com/gofiber/fiber/v2"
)

// RateLimit allows limit requests per client IP and window under the given
// bucket name. It is a pass-through when Redis is not configured.
func RateLimit(bucket string, limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !kv.Available() {
			return c.Next()
		}
		key := fmt.Sprintf("ratelimit:%s:%s", bucket, c.IP())
		ok, n, err := kv.AllowRate(c.UserContext(), key, int64(limit), window)
		if err != nil {
			logger.Log.Warn("rate limiter unavailable", "bucket", bucket, "error", err)
			return c.Next()
		}
		if !ok {
			c.Set(fiber.HeaderRetryAfter, fmt.Sprintf("%d", int(window.Seconds())))
			logger.Log.Info("rate limited", "bucket", bucket, "ip", c.IP(), "hits", n)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"status": false,
				"error":  "too many requests",
			})
		}
		return c.Next()
	}
}
