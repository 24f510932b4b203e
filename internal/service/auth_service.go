package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/nitap-dev/mentor-portal-api/internal/models"
	"github.com/nitap-dev/mentor-portal-api/pkg/config"
	appErrors "github.com/nitap-dev/mentor-portal-api/pkg/errors"
)

type authPrincipalRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Principal, error)
	FindByID(ctx context.Context, id string) (*models.Principal, error)
	UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error
	UpdateLastLogin(ctx context.Context, id string, ts time.Time) error
}

type sessionStore interface {
	Issue(ctx context.Context, p *models.Principal) (string, error)
	Resolve(ctx context.Context, token string) (*models.SessionClaims, error)
	Revoke(ctx context.Context, token string) error
	RevokeAll(ctx context.Context, principalID, keepSID string) error
}

// AuthService provides authentication use cases.
type AuthService struct {
	repo      authPrincipalRepository
	sessions  sessionStore
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	config    config.SessionConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authPrincipalRepository, sessions sessionStore, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService, cfg config.SessionConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{repo: repo, sessions: sessions, validator: validate, logger: logger, metrics: metrics, config: cfg}
}

// Login authenticates a principal and issues a session. The same generic
// InvalidCredentials error covers unknown emails and wrong passwords so the
// response never reveals whether an email exists.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	principal, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch principal")
	}

	if !principal.Active {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "account is inactive")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(principal.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}

	token, err := s.sessions.Issue(ctx, principal)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
	}

	s.metrics.SessionIssued()

	if err := s.repo.UpdateLastLogin(ctx, principal.ID, time.Now().UTC()); err != nil {
		s.logger.Warn("failed to update last login", zap.Error(err))
	}

	return &models.LoginResponse{
		Token:     token,
		ExpiresIn: int64(s.config.TTL.Seconds()),
		Principal: models.PrincipalInfo{
			ID:        principal.ID,
			Email:     principal.Email,
			Role:      principal.Role,
			FacultyID: principal.FacultyID,
			StudentID: principal.StudentID,
		},
	}, nil
}

// Resolve validates a session token. Fails closed on expired, tampered and
// revoked tokens.
func (s *AuthService) Resolve(ctx context.Context, token string) (*models.SessionClaims, error) {
	return s.sessions.Resolve(ctx, token)
}

// Logout revokes the session carried by the token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Revoke(ctx, token); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to revoke session")
	}
	s.metrics.SessionRevoked()
	return nil
}

// ChangePassword verifies the old password and replaces the stored hash.
// Depending on configuration the principal's other sessions are revoked;
// the current session stays alive either way.
func (s *AuthService) ChangePassword(ctx context.Context, claims *models.SessionClaims, req models.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid change password payload")
	}

	principal, err := s.repo.FindByID(ctx, claims.PrincipalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrUnauthorized, "principal no longer exists")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load principal")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(principal.PasswordHash), []byte(req.OldPassword)); err != nil {
		return appErrors.Clone(appErrors.ErrInvalidCredentials, "old password does not match")
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	if err := s.repo.UpdatePassword(ctx, principal.ID, string(newHash), time.Now().UTC()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update password")
	}

	if s.config.RevokeOnPasswordChange {
		if err := s.sessions.RevokeAll(ctx, principal.ID, claims.SessionID); err != nil {
			s.logger.Warn("failed to revoke sessions after password change", zap.Error(err))
		}
	}

	return nil
}
