package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/storefront-service/internal/config"
	"github.com/spec-kit/storefront-service/internal/domain"
	"github.com/spec-kit/storefront-service/internal/repository"
	apperrors "github.com/spec-kit/storefront-service/pkg/util/errorutil"
)

// memoryUserRepo is an in-memory stand-in for the Postgres user repository.
type memoryUserRepo struct {
	byID      map[string]*domain.User
	byEmail   map[string]*domain.User
	seq       int
	createErr error
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]*domain.User),
	}
}

func (m *memoryUserRepo) Create(_ context.Context, user *domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.seq++
	user.ID = fmt.Sprintf("user-%d", m.seq)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	m.byID[user.ID] = &copied
	m.byEmail[user.Email] = &copied
	return nil
}

func (m *memoryUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := m.byID[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *user
	m.byID[user.ID] = &copied
	m.byEmail[user.Email] = &copied
	return nil
}

func (m *memoryUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := m.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (m *memoryUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	user, ok := m.byEmail[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (m *memoryUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.byID)), nil
}

// memoryCartRepo is an empty-cart stand-in.
type memoryCartRepo struct{}

func (memoryCartRepo) ListByUser(context.Context, string) ([]domain.CartItem, error) {
	return []domain.CartItem{}, nil
}
func (memoryCartRepo) ListWithProducts(context.Context, string) ([]domain.CartLine, error) {
	return []domain.CartLine{}, nil
}
func (memoryCartRepo) Upsert(context.Context, string, string) error            { return nil }
func (memoryCartRepo) SetQuantity(context.Context, string, string, int) error { return nil }
func (memoryCartRepo) Clear(context.Context, string) error                    { return nil }

func newTestAuthService(t *testing.T) (*AuthService, *memoryUserRepo, repository.SessionStore) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := config.Config{
		Auth: config.AuthConfig{
			AccessTokenSecret:     "test-access-secret",
			RefreshTokenSecret:    "test-refresh-secret",
			AccessTokenTTLMinutes: 15,
			RefreshTokenTTLDays:   7,
			BcryptCost:            4,
		},
	}

	users := newMemoryUserRepo()
	sessions := repository.NewSessionStore(client, cfg.Auth.RefreshTokenTTL())

	svc := NewAuthService(cfg, AuthDependencies{
		UserRepo:     users,
		CartRepo:     memoryCartRepo{},
		SessionStore: sessions,
		Logger:       zap.NewNop(),
	})
	return svc, users, sessions
}

func assertErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr), "expected DomainError, got %v", err)
	assert.Equal(t, code, domainErr.Code)
}

func TestAuthService_RegisterThenLogin(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "a@x.com", Password: "pw123"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, registered.User.Role, "role defaults to customer")
	assert.NotEmpty(t, registered.Tokens.AccessToken)
	assert.NotEmpty(t, registered.Tokens.RefreshToken)

	session, err := svc.Login(ctx, "a@x.com", "pw123")
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, session.User.ID)
	assert.Equal(t, "a@x.com", session.User.Email)
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "a@x.com", Password: "pw123"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Name: "Eve", Email: "a@x.com", Password: "different"})
	assertErrorCode(t, err, "DUPLICATE_USER")
}

func TestAuthService_RegisterDuplicateRacesToUniqueConstraint(t *testing.T) {
	svc, users, _ := newTestAuthService(t)

	// A concurrent signup that commits between the email lookup and the
	// insert surfaces as a unique violation from the database.
	users.createErr = &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}

	_, err := svc.Register(context.Background(), RegisterInput{Name: "Eve", Email: "a@x.com", Password: "pw123"})
	assertErrorCode(t, err, "DUPLICATE_USER")
}

func TestAuthService_RegisterRejectsUnknownRole(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "Ada", Email: "a@x.com", Password: "pw123", Role: "superuser",
	})
	assertErrorCode(t, err, "VALIDATION_FAILED")
}

func TestAuthService_LoginInvalidCredentials(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "a@x.com", Password: "pw123"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "a@x.com", "wrong")
	assertErrorCode(t, err, "INVALID_CREDENTIALS")

	// Unknown email shares the same failure mode.
	_, err = svc.Login(ctx, "nobody@x.com", "pw123")
	assertErrorCode(t, err, "INVALID_CREDENTIALS")
}

func TestAuthService_RefreshHappyPath(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "a@x.com", Password: "pw123"})
	require.NoError(t, err)

	accessToken, expiresAt, err := svc.Refresh(ctx, session.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, accessToken)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)

	// The refresh token is not rotated: it keeps working.
	_, _, err = svc.Refresh(ctx, session.Tokens.RefreshToken)
	assert.NoError(t, err)
}

func TestAuthService_RefreshMissingAndInvalidTokens(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	_, _, err := svc.Refresh(ctx, "")
	assertErrorCode(t, err, "MISSING_TOKEN")

	_, _, err = svc.Refresh(ctx, "not-a-jwt")
	assertErrorCode(t, err, "INVALID_TOKEN")
}

func TestAuthService_NewLoginRevokesOldRefreshToken(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	first, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "a@x.com", Password: "pw123"})
	require.NoError(t, err)

	// JWT timestamps have second precision; a later login must produce a
	// distinct refresh token.
	time.Sleep(1100 * time.Millisecond)

	second, err := svc.Login(ctx, "a@x.com", "pw123")
	require.NoError(t, err)
	require.NotEqual(t, first.Tokens.RefreshToken, second.Tokens.RefreshToken)

	_, _, err = svc.Refresh(ctx, first.Tokens.RefreshToken)
	assertErrorCode(t, err, "REVOKED_TOKEN")

	_, _, err = svc.Refresh(ctx, second.Tokens.RefreshToken)
	assert.NoError(t, err)
}

func TestAuthService_RevokeThenRefresh(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "a@x.com", Password: "pw123"})
	require.NoError(t, err)

	svc.Revoke(ctx, session.Tokens.RefreshToken)

	// The signature is still valid; the store is authoritative.
	_, _, err = svc.Refresh(ctx, session.Tokens.RefreshToken)
	assertErrorCode(t, err, "REVOKED_TOKEN")
}

func TestAuthService_RevokeIsBestEffort(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	// Nothing panics or errors on missing or garbage tokens.
	svc.Revoke(ctx, "")
	svc.Revoke(ctx, "not-a-jwt")
}

func TestAuthService_FullSessionLifecycle(t *testing.T) {
	svc, _, sessions := newTestAuthService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "a@x.com", Password: "pw123"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, registered.User.Role)

	_, err = svc.Login(ctx, "a@x.com", "wrong")
	assertErrorCode(t, err, "INVALID_CREDENTIALS")

	session, err := svc.Login(ctx, "a@x.com", "pw123")
	require.NoError(t, err)

	accessToken, _, err := svc.Refresh(ctx, session.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, accessToken)

	svc.Revoke(ctx, session.Tokens.RefreshToken)

	_, err = sessions.Get(ctx, session.User.ID)
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)

	_, _, err = svc.Refresh(ctx, session.Tokens.RefreshToken)
	assertErrorCode(t, err, "REVOKED_TOKEN")
}

func TestAuthService_SessionNeverExposesPasswordHash(t *testing.T) {
	svc, users, _ := newTestAuthService(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "a@x.com", Password: "pw123"})
	require.NoError(t, err)

	stored, err := users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, "pw123", stored.PasswordHash)
	assert.NotContains(t, fmt.Sprintf("%+v", session.User), stored.PasswordHash)
}
