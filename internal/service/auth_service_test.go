package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/nitap-dev/mentor-portal-api/internal/models"
	"github.com/nitap-dev/mentor-portal-api/pkg/config"
	appErrors "github.com/nitap-dev/mentor-portal-api/pkg/errors"
)

type mockPrincipalRepo struct {
	items      map[string]*models.Principal
	emailIndex map[string]string
	lastLogins []string
	passwords  map[string]string
}

func (m *mockPrincipalRepo) FindByEmail(ctx context.Context, email string) (*models.Principal, error) {
	if id, ok := m.emailIndex[email]; ok {
		cp := *m.items[id]
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockPrincipalRepo) FindByID(ctx context.Context, id string) (*models.Principal, error) {
	if p, ok := m.items[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockPrincipalRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	if m.passwords == nil {
		m.passwords = make(map[string]string)
	}
	m.passwords[id] = passwordHash
	if p, ok := m.items[id]; ok {
		p.PasswordHash = passwordHash
	}
	return nil
}

func (m *mockPrincipalRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLogins = append(m.lastLogins, id)
	return nil
}

type mockSessionStore struct {
	issued      []string
	revoked     []string
	revokedAll  []string
	keptSession string
	resolveErr  error
}

func (m *mockSessionStore) Issue(ctx context.Context, p *models.Principal) (string, error) {
	token := "token-" + p.ID
	m.issued = append(m.issued, token)
	return token, nil
}

func (m *mockSessionStore) Resolve(ctx context.Context, token string) (*models.SessionClaims, error) {
	if m.resolveErr != nil {
		return nil, m.resolveErr
	}
	return &models.SessionClaims{SessionID: "sid", PrincipalID: "p1"}, nil
}

func (m *mockSessionStore) Revoke(ctx context.Context, token string) error {
	m.revoked = append(m.revoked, token)
	return nil
}

func (m *mockSessionStore) RevokeAll(ctx context.Context, principalID, keepSID string) error {
	m.revokedAll = append(m.revokedAll, principalID)
	m.keptSession = keepSID
	return nil
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func newAuthFixture(t *testing.T) (*AuthService, *mockPrincipalRepo, *mockSessionStore) {
	t.Helper()
	fid := "f1"
	repo := &mockPrincipalRepo{
		items: map[string]*models.Principal{
			"p1": {
				ID:           "p1",
				Email:        "mentor@nitap.ac.in",
				PasswordHash: hashOf(t, "correct-horse"),
				Role:         models.RoleFaculty,
				FacultyID:    &fid,
				Active:       true,
			},
		},
		emailIndex: map[string]string{"mentor@nitap.ac.in": "p1"},
	}
	sessions := &mockSessionStore{}
	cfg := config.SessionConfig{TTL: time.Hour, RevokeOnPasswordChange: true}
	svc := NewAuthService(repo, sessions, validator.New(), zap.NewNop(), nil, cfg)
	return svc, repo, sessions
}

func TestLoginSuccessReturnsRole(t *testing.T) {
	svc, repo, sessions := newAuthFixture(t)

	res, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "mentor@nitap.ac.in",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleFaculty, res.Principal.Role)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, int64(3600), res.ExpiresIn)
	assert.Len(t, sessions.issued, 1)
	assert.Equal(t, []string{"p1"}, repo.lastLogins)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, sessions := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "mentor@nitap.ac.in",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
	assert.Empty(t, sessions.issued)
}

func TestLoginUnknownEmailSameError(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "nobody@nitap.ac.in",
		Password: "whatever",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginInactiveAccount(t *testing.T) {
	svc, repo, _ := newAuthFixture(t)
	repo.items["p1"].Active = false

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "mentor@nitap.ac.in",
		Password: "correct-horse",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestChangePasswordRevokesOtherSessions(t *testing.T) {
	svc, repo, sessions := newAuthFixture(t)
	claims := &models.SessionClaims{SessionID: "current-sid", PrincipalID: "p1"}

	err := svc.ChangePassword(context.Background(), claims, models.ChangePasswordRequest{
		OldPassword: "correct-horse",
		NewPassword: "battery-staple",
	})
	require.NoError(t, err)
	assert.Contains(t, repo.passwords, "p1")
	assert.Equal(t, []string{"p1"}, sessions.revokedAll)
	assert.Equal(t, "current-sid", sessions.keptSession)

	err = bcrypt.CompareHashAndPassword([]byte(repo.passwords["p1"]), []byte("battery-staple"))
	assert.NoError(t, err)
}

func TestChangePasswordWrongOldPassword(t *testing.T) {
	svc, _, sessions := newAuthFixture(t)
	claims := &models.SessionClaims{SessionID: "sid", PrincipalID: "p1"}

	err := svc.ChangePassword(context.Background(), claims, models.ChangePasswordRequest{
		OldPassword: "wrong",
		NewPassword: "battery-staple",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
	assert.Empty(t, sessions.revokedAll)
}

func TestChangePasswordKeepsSessionsWhenDisabled(t *testing.T) {
	svc, _, sessions := newAuthFixture(t)
	svc.config.RevokeOnPasswordChange = false

	claims := &models.SessionClaims{SessionID: "sid", PrincipalID: "p1"}
	err := svc.ChangePassword(context.Background(), claims, models.ChangePasswordRequest{
		OldPassword: "correct-horse",
		NewPassword: "battery-staple",
	})
	require.NoError(t, err)
	assert.Empty(t, sessions.revokedAll)
}

func TestLogoutRevokes(t *testing.T) {
	svc, _, sessions := newAuthFixture(t)

	err := svc.Logout(context.Background(), "token-p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"token-p1"}, sessions.revoked)
}
