package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/spec-kit/storefront-service/internal/auth"
	"github.com/spec-kit/storefront-service/internal/config"
	"github.com/spec-kit/storefront-service/internal/domain"
	"github.com/spec-kit/storefront-service/internal/events"
	"github.com/spec-kit/storefront-service/internal/repository"
	apperrors "github.com/spec-kit/storefront-service/pkg/util/errorutil"
)

// RegisterInput describes the signup payload.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.UserRole
}

// AuthService coordinates registration, login and the refresh-token
// lifecycle. Refresh verification is two checks in sequence: signature
// validity against the refresh secret, then byte equality against the
// stored session record. The store is authoritative for revocation.
type AuthService struct {
	users      repository.UserRepository
	carts      repository.CartRepository
	sessions   repository.SessionStore
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
}

// AuthDependencies encapsulates requirements for auth service.
type AuthDependencies struct {
	UserRepo     repository.UserRepository
	CartRepo     repository.CartRepository
	SessionStore repository.SessionStore
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		carts:      deps.CartRepo,
		sessions:   deps.SessionStore,
		tokenMgr:   auth.NewTokenManager(cfg.Auth),
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Register creates a new account and opens a session for it. The role
// defaults to customer; who may request an elevated role is a transport
// concern, not enforced here.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.Session, error) {
	if input.Role == "" {
		input.Role = domain.RoleCustomer
	}
	if !input.Role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": input.Role})
	}

	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewDuplicateUser()
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewStoreUnavailable(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         input.Role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// A concurrent signup can win the race between the email lookup
		// and the insert; the unique constraint reports it as a duplicate.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperrors.NewDuplicateUser()
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}

	session, err := s.openSession(ctx, user, nil)
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventUserRegistered,
		SubjectID: user.ID,
		Payload:   events.UserRegisteredPayload{Email: user.Email, Role: user.Role},
	})
	return session, nil
}

// Login authenticates a user by email and password. Unknown email and bad
// password share one failure mode.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInvalidCredentials()
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewInvalidCredentials()
	}

	cart, err := s.carts.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return s.openSession(ctx, user, cart)
}

// Refresh mints a new access token for a presented refresh token. The
// refresh token itself is not rotated. A token whose signature verifies
// can still be rejected when the stored record was overwritten by a later
// login or deleted by logout.
func (s *AuthService) Refresh(ctx context.Context, presented string) (string, time.Time, error) {
	if presented == "" {
		return "", time.Time{}, apperrors.NewMissingToken()
	}

	claims, err := s.tokenMgr.ParseRefreshToken(presented)
	if err != nil {
		return "", time.Time{}, apperrors.NewInvalidToken()
	}

	stored, err := s.sessions.Get(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return "", time.Time{}, apperrors.NewRevokedToken()
		}
		return "", time.Time{}, apperrors.NewStoreUnavailable(err)
	}
	if stored != presented {
		return "", time.Time{}, apperrors.NewRevokedToken()
	}

	accessToken, expiresAt, err := s.tokenMgr.IssueAccessToken(claims.UserID)
	if err != nil {
		return "", time.Time{}, err
	}
	return accessToken, expiresAt, nil
}

// Revoke deletes the refresh session record for the presented token.
// Logout is best-effort: an absent, invalid or missing token is not an
// error and the transport always clears cookies.
func (s *AuthService) Revoke(ctx context.Context, presented string) {
	if presented == "" {
		return
	}
	claims, err := s.tokenMgr.ParseRefreshToken(presented)
	if err != nil {
		return
	}
	if err := s.sessions.Delete(ctx, claims.UserID); err != nil {
		s.logger.Warn("failed to delete refresh session", zap.String("user_id", claims.UserID), zap.Error(err))
	}
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// openSession issues a token pair and persists the refresh half. The store
// write overwrites any prior record, invalidating previously issued
// refresh tokens for the user even while their signatures remain valid.
func (s *AuthService) openSession(ctx context.Context, user *domain.User, cart []domain.CartItem) (*domain.Session, error) {
	pair, err := s.tokenMgr.IssuePair(user.ID)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, user.ID, pair.RefreshToken); err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return &domain.Session{User: user.Public(cart), Tokens: pair}, nil
}

func (s *AuthService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now().UTC()
	_ = s.dispatcher.Publish(ctx, event)
}
