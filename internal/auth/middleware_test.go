package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/storefront-service/internal/domain"
	apperrors "github.com/spec-kit/storefront-service/pkg/util/errorutil"
)

type stubUserRepo struct {
	user *domain.User
}

func (s *stubUserRepo) Create(ctx context.Context, user *domain.User) error { return nil }
func (s *stubUserRepo) Update(ctx context.Context, user *domain.User) error { return nil }
func (s *stubUserRepo) Count(ctx context.Context) (int64, error)            { return 0, nil }

func (s *stubUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if s.user != nil && s.user.ID == id {
		return s.user, nil
	}
	return nil, pgx.ErrNoRows
}

func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}

func newMiddlewareApp(register func(app *fiber.App)) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"code": de.Code})
		},
	})
	register(app)
	return app
}

func accessCookie(t *testing.T, tm *TokenManager, userID string) *http.Cookie {
	t.Helper()
	token, _, err := tm.IssueAccessToken(userID)
	require.NoError(t, err)
	return &http.Cookie{Name: AccessTokenCookie, Value: token}
}

// A handler error behind Optional must reach the error handler untouched;
// the chain advances exactly once.
func TestMiddleware_OptionalPropagatesHandlerError(t *testing.T) {
	tm := NewTokenManager(testAuthConfig())
	mw := NewMiddleware(tm, &stubUserRepo{user: &domain.User{ID: "user-1", Role: domain.RoleAdmin}})

	calls := 0
	app := newMiddlewareApp(func(app *fiber.App) {
		app.Post("/signup", mw.Optional, func(c *fiber.Ctx) error {
			calls++
			principal, ok := PrincipalFromContext(c)
			require.True(t, ok, "principal must be loaded for a valid cookie")
			assert.Equal(t, "user-1", principal.ID)
			return apperrors.NewDuplicateUser()
		})
	})

	req := httptest.NewRequest(fiber.MethodPost, "/signup", nil)
	req.AddCookie(accessCookie(t, tm, "user-1"))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, 1, calls)
}

func TestMiddleware_OptionalWithoutTokenIsAnonymous(t *testing.T) {
	tm := NewTokenManager(testAuthConfig())
	mw := NewMiddleware(tm, &stubUserRepo{})

	calls := 0
	app := newMiddlewareApp(func(app *fiber.App) {
		app.Get("/open", mw.Optional, func(c *fiber.Ctx) error {
			calls++
			_, ok := PrincipalFromContext(c)
			assert.False(t, ok)
			return c.SendStatus(fiber.StatusOK)
		})
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/open", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, calls)
}

func TestMiddleware_OptionalTreatsBadTokenAsAnonymous(t *testing.T) {
	tm := NewTokenManager(testAuthConfig())
	mw := NewMiddleware(tm, &stubUserRepo{})

	calls := 0
	app := newMiddlewareApp(func(app *fiber.App) {
		app.Get("/open", mw.Optional, func(c *fiber.Ctx) error {
			calls++
			_, ok := PrincipalFromContext(c)
			assert.False(t, ok)
			return c.SendStatus(fiber.StatusOK)
		})
	})

	req := httptest.NewRequest(fiber.MethodGet, "/open", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "not-a-jwt"})

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, calls)
}

func TestMiddleware_HandleRequiresToken(t *testing.T) {
	tm := NewTokenManager(testAuthConfig())
	mw := NewMiddleware(tm, &stubUserRepo{})

	app := newMiddlewareApp(func(app *fiber.App) {
		app.Get("/private", mw.Handle, func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/private", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestMiddleware_HandleLoadsPrincipal(t *testing.T) {
	tm := NewTokenManager(testAuthConfig())
	mw := NewMiddleware(tm, &stubUserRepo{user: &domain.User{ID: "user-1", Role: domain.RoleCustomer}})

	app := newMiddlewareApp(func(app *fiber.App) {
		app.Get("/private", mw.Handle, func(c *fiber.Ctx) error {
			principal, ok := PrincipalFromContext(c)
			require.True(t, ok)
			return c.JSON(fiber.Map{"id": principal.ID})
		})
	})

	req := httptest.NewRequest(fiber.MethodGet, "/private", nil)
	req.AddCookie(accessCookie(t, tm, "user-1"))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestMiddleware_HandleRejectsUnknownUser(t *testing.T) {
	tm := NewTokenManager(testAuthConfig())
	mw := NewMiddleware(tm, &stubUserRepo{})

	app := newMiddlewareApp(func(app *fiber.App) {
		app.Get("/private", mw.Handle, func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})
	})

	req := httptest.NewRequest(fiber.MethodGet, "/private", nil)
	req.AddCookie(accessCookie(t, tm, "ghost"))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
