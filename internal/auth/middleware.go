package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/townhall/civic-service/internal/domain"
	"github.com/townhall/civic-service/internal/repository"
	apperrors "github.com/townhall/civic-service/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller. Official is non-nil only
// for government principals.
type Principal struct {
	Account  *domain.Principal
	Official *domain.GovernmentOfficial
}

// AuthMiddleware validates credentials and loads principals. Two schemes are
// accepted: "Bearer <jwt>" issued at login, and "Token <key>" for the opaque
// API credential issued on account approval.
type AuthMiddleware struct {
	tokens *TokenManager
	store  repository.Store
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, store repository.Store) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, store: store}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	var principalID string
	switch {
	case strings.EqualFold(parts[0], "Bearer"):
		claims, err := m.tokens.ParseToken(parts[1])
		if err != nil {
			return apperrors.NewUnauthorized("invalid token")
		}
		principalID = claims.SubjectID
	case strings.EqualFold(parts[0], "Token"):
		cred, err := m.store.Credentials().GetByKey(c.Context(), parts[1])
		if err != nil {
			if err == pgx.ErrNoRows {
				return apperrors.NewUnauthorized("invalid credential")
			}
			return apperrors.MapError(err)
		}
		principalID = cred.PrincipalID
	default:
		return apperrors.NewUnauthorized("invalid authorization scheme")
	}

	account, err := m.store.Principals().GetByID(c.Context(), principalID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewUnauthorized("account not found")
		}
		return apperrors.MapError(err)
	}

	principal := &Principal{Account: account}
	if account.Role == domain.RoleGovernment {
		official, err := m.store.Officials().GetByPrincipal(c.Context(), account.ID)
		if err != nil {
			// A government principal without an official record is broken
			// data; it must not resolve to a flagless context.
			if err == pgx.ErrNoRows {
				return apperrors.NewNotFound("profile")
			}
			return apperrors.MapError(err)
		}
		principal.Official = official
	}

	c.Locals(principalKey, principal)
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
