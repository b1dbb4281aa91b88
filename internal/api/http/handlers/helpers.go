package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/townhall/civic-service/internal/auth"
	"github.com/townhall/civic-service/internal/authz"
	apperrors "github.com/townhall/civic-service/pkg/util/errorutil"
)

// actorFrom extracts the authorization context of the authenticated caller.
func actorFrom(c *fiber.Ctx) (authz.Context, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return authz.Context{}, apperrors.NewUnauthorized("authentication required")
	}
	return authz.ContextFor(principal.Account, principal.Official), nil
}

// pagination reads limit/offset query parameters with sane defaults.
func pagination(c *fiber.Ctx) (limit, offset int) {
	limit, _ = strconv.Atoi(c.Query("limit", "50"))
	offset, _ = strconv.Atoi(c.Query("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
