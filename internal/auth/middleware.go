package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/storefront-service/internal/domain"
	"github.com/spec-kit/storefront-service/internal/repository"
	apperrors "github.com/spec-kit/storefront-service/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// AccessTokenCookie is the cookie carrying the short-lived access token.
const AccessTokenCookie = "accessToken"

// RefreshTokenCookie is the cookie carrying the refresh token.
const RefreshTokenCookie = "refreshToken"

// Middleware validates access tokens from cookies or bearer headers and
// loads the authenticated user.
type Middleware struct {
	tokens *TokenManager
	users  repository.UserRepository
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenManager, users repository.UserRepository) *Middleware {
	return &Middleware{tokens: tokens, users: users}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	tokenStr := extractAccessToken(c)
	if tokenStr == "" {
		return apperrors.NewUnauthorized("missing access token")
	}
	if err := m.authenticate(c, tokenStr); err != nil {
		return err
	}
	return c.Next()
}

// Optional loads the principal when a valid access token is present and
// treats everything else as anonymous. The chain always advances exactly
// once; handler errors propagate untouched.
func (m *Middleware) Optional(c *fiber.Ctx) error {
	if tokenStr := extractAccessToken(c); tokenStr != "" {
		_ = m.authenticate(c, tokenStr)
	}
	return c.Next()
}

// authenticate resolves the token into a principal stored on the context.
// It never advances the chain.
func (m *Middleware) authenticate(c *fiber.Ctx, tokenStr string) error {
	claims, err := m.tokens.ParseAccessToken(tokenStr)
	if err != nil {
		return apperrors.NewInvalidToken()
	}

	user, err := m.users.GetByID(c.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("user not found")
		}
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, user)
	return nil
}

// PrincipalFromContext retrieves the authenticated user.
func PrincipalFromContext(c *fiber.Ctx) (*domain.User, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	user, ok := val.(*domain.User)
	return user, ok
}

func extractAccessToken(c *fiber.Ctx) string {
	if cookie := c.Cookies(AccessTokenCookie); cookie != "" {
		return cookie
	}
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
