package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/townhall/civic-service/internal/domain"
)

// RequireApproved rejects callers whose account has not been approved yet.
// Superusers bypass the check.
func RequireApproved() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, "authentication required")
		}
		if !principal.Account.IsApproved && !principal.Account.IsSuperuser {
			return fiber.NewError(http.StatusForbidden, "account pending approval")
		}
		return c.Next()
	}
}

// RequireRole ensures the principal has one of the allowed roles.
// Superusers always pass.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, "authentication required")
		}
		if principal.Account.IsSuperuser || len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Account.Role]; !exists {
			return fiber.NewError(http.StatusForbidden, "insufficient role")
		}
		return c.Next()
	}
}

// RequireSuperuser restricts a route to superusers.
func RequireSuperuser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, "authentication required")
		}
		if !principal.Account.IsSuperuser {
			return fiber.NewError(http.StatusForbidden, "superuser required")
		}
		return c.Next()
	}
}
