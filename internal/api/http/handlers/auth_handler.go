package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront-service/internal/api/dto"
	"github.com/spec-kit/storefront-service/internal/auth"
	"github.com/spec-kit/storefront-service/internal/domain"
	"github.com/spec-kit/storefront-service/internal/service"
	apperrors "github.com/spec-kit/storefront-service/pkg/util/errorutil"
)

// AuthHandler exposes signup, login, logout, refresh and profile endpoints.
type AuthHandler struct {
	auth         *service.AuthService
	cart         *service.CartService
	secureCookie bool
}

// NewAuthHandler constructs handler. secureCookie should be true in
// production so session cookies are only sent over TLS.
func NewAuthHandler(authService *service.AuthService, cartService *service.CartService, secureCookie bool) *AuthHandler {
	return &AuthHandler{auth: authService, cart: cartService, secureCookie: secureCookie}
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("name, email, password required", nil)
	}

	// Only an authenticated admin may create another admin. Anonymous
	// signups are always customers regardless of the requested role.
	if req.Role == domain.RoleAdmin {
		principal, ok := auth.PrincipalFromContext(c)
		if !ok || principal.Role != domain.RoleAdmin {
			return apperrors.NewForbidden("admin role requires an admin caller")
		}
	}

	session, err := h.auth.Register(c.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}

	h.setSessionCookies(c, session.Tokens)
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": session.User})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	session, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setSessionCookies(c, session.Tokens)
	return c.JSON(fiber.Map{"data": session.User})
}

// Logout handles POST /api/auth/logout. Always succeeds at the transport
// level; cookies are cleared even when no valid token was presented.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.auth.Revoke(c.Context(), c.Cookies(auth.RefreshTokenCookie))

	h.clearSessionCookies(c)
	return c.JSON(fiber.Map{"message": "logged out successfully"})
}

// Refresh handles POST /api/auth/refresh. Issues a new access token; the
// refresh token is not rotated.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	accessToken, expiresAt, err := h.auth.Refresh(c.Context(), c.Cookies(auth.RefreshTokenCookie))
	if err != nil {
		return err
	}

	h.setCookie(c, auth.AccessTokenCookie, accessToken, h.auth.TokenManager().AccessTTL())
	return c.JSON(fiber.Map{
		"message":    "token refreshed successfully",
		"expires_at": expiresAt,
	})
}

// Profile handles GET /api/auth/profile.
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	cart, err := h.cart.ListCart(c.Context(), principal.ID)
	if err != nil {
		return err
	}
	items := make([]domain.CartItem, 0, len(cart))
	for _, line := range cart {
		items = append(items, domain.CartItem{ProductID: line.Product.ID, Quantity: line.Quantity})
	}

	return c.JSON(fiber.Map{"data": principal.Public(items)})
}

func (h *AuthHandler) setSessionCookies(c *fiber.Ctx, pair domain.TokenPair) {
	tm := h.auth.TokenManager()
	h.setCookie(c, auth.AccessTokenCookie, pair.AccessToken, tm.AccessTTL())
	h.setCookie(c, auth.RefreshTokenCookie, pair.RefreshToken, tm.RefreshTTL())
}

func (h *AuthHandler) clearSessionCookies(c *fiber.Ctx) {
	h.setCookie(c, auth.AccessTokenCookie, "", -time.Hour)
	h.setCookie(c, auth.RefreshTokenCookie, "", -time.Hour)
}

func (h *AuthHandler) setCookie(c *fiber.Ctx, name, value string, maxAge time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		MaxAge:   int(maxAge.Seconds()),
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteStrictMode,
		Path:     "/",
	})
}
