package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nitap-dev/mentor-portal-api/internal/models"
	appErrors "github.com/nitap-dev/mentor-portal-api/pkg/errors"
	"github.com/nitap-dev/mentor-portal-api/pkg/config"
)

const (
	sessionKeyPrefix   = "session:"
	principalKeyPrefix = "sessions:principal:"
)

// Store issues and resolves session tokens. The token handed to clients is
// a signed JWT, but resolution also requires the session id to be live in
// Redis, so revocation takes effect immediately instead of at JWT expiry.
type Store struct {
	client *redis.Client
	cfg    config.SessionConfig
	logger *zap.Logger
}

// NewStore constructs a session store.
func NewStore(client *redis.Client, cfg config.SessionConfig, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{client: client, cfg: cfg, logger: logger}
}

// Issue creates a session for the principal and returns the signed token.
func (s *Store) Issue(ctx context.Context, p *models.Principal) (string, error) {
	sid := uuid.NewString()
	now := time.Now().UTC()

	claims := &models.SessionClaims{
		SessionID:   sid,
		PrincipalID: p.ID,
		Role:        p.Role,
		Email:       p.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKeyPrefix+sid, p.ID, s.cfg.TTL)
	pipe.SAdd(ctx, principalKeyPrefix+p.ID, sid)
	pipe.Expire(ctx, principalKeyPrefix+p.ID, s.cfg.TTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("persist session: %w", err)
	}

	return token, nil
}

// Resolve verifies the token and checks the session is still live. Expired,
// tampered, and revoked tokens all fail closed with Unauthorized.
func (s *Store) Resolve(ctx context.Context, token string) (*models.SessionClaims, error) {
	claims, err := s.parse(token)
	if err != nil {
		return nil, err
	}

	exists, err := s.client.Exists(ctx, sessionKeyPrefix+claims.SessionID).Result()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "session lookup failed")
	}
	if exists == 0 {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session expired or revoked")
	}

	return claims, nil
}

// Revoke removes the token's session. Visible to subsequent Resolve calls
// immediately.
func (s *Store) Revoke(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, sessionKeyPrefix+claims.SessionID)
	pipe.SRem(ctx, principalKeyPrefix+claims.PrincipalID, claims.SessionID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// RevokeAll drops every session for the principal except keepSID (empty
// keeps none). Used on password change.
func (s *Store) RevokeAll(ctx context.Context, principalID, keepSID string) error {
	sids, err := s.client.SMembers(ctx, principalKeyPrefix+principalID).Result()
	if err != nil {
		return fmt.Errorf("list principal sessions: %w", err)
	}

	pipe := s.client.TxPipeline()
	for _, sid := range sids {
		if sid == keepSID {
			continue
		}
		pipe.Del(ctx, sessionKeyPrefix+sid)
		pipe.SRem(ctx, principalKeyPrefix+principalID, sid)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("revoke principal sessions: %w", err)
	}
	return nil
}

func (s *Store) parse(token string) (*models.SessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &models.SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session expired")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid session token")
	}

	claims, ok := parsed.Claims.(*models.SessionClaims)
	if !ok || !parsed.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid session claims")
	}
	return claims, nil
}
