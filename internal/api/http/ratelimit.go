package http

import (
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/townhall/civic-service/internal/ratelimit"
)

// RateLimitByIP throttles a route group per client IP. A nil limiter or a
// non-positive limit disables throttling; Redis outages fail open.
func RateLimitByIP(limiter *ratelimit.Limiter, scope string, limit int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if limiter == nil || limit <= 0 {
			return c.Next()
		}
		allowed, err := limiter.Allow(c.UserContext(), fmt.Sprintf("%s:%s", scope, c.IP()), limit)
		if err != nil {
			return c.Next()
		}
		if !allowed {
			return fiber.NewError(http.StatusTooManyRequests, "too many requests, slow down")
		}
		return c.Next()
	}
}
