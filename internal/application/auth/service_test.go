package auth

import (
	"context"
	"testing"
	"time"

	"github.com/portfolio-api/internal/domain"
	"github.com/portfolio-api/internal/pkg/id"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSessionStore struct{ mock.Mock }

func (m *mockSessionStore) Put(ctx context.Context, s *domain.Session) error {
	return m.Called(ctx, s).Error(0)
}
func (m *mockSessionStore) GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error) {
	args := m.Called(ctx, token)
	if s, _ := args.Get(0).(*domain.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockSessionStore) RotateRefreshToken(ctx context.Context, sessionID, newToken string, newExpiry int64) error {
	return m.Called(ctx, sessionID, newToken, newExpiry).Error(0)
}
func (m *mockSessionStore) SoftDeleteByUser(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type mockSigner struct{ mock.Mock }

func (m *mockSigner) Sign(userID, role, sessionID string) (string, error) {
	args := m.Called(userID, role, sessionID)
	return args.String(0), args.Error(1)
}

func adminUser(t *testing.T, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.User{
		UserID:       id.New(),
		Username:     "admin",
		Email:        "admin@example.com",
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		Enable:       true,
	}
}

func TestLogin_WithUsername(t *testing.T) {
	users, sessions, signer := &mockUserStore{}, &mockSessionStore{}, &mockSigner{}
	user := adminUser(t, "hunter2")

	users.On("GetByUsername", mock.Anything, "admin").Return(user, nil)
	sessions.On("Put", mock.Anything, mock.MatchedBy(func(s *domain.Session) bool {
		return s.UserID == user.UserID && s.Enable && s.RefreshToken != ""
	})).Return(nil)
	signer.On("Sign", user.UserID, domain.RoleAdmin, mock.Anything).Return("jwt-token", nil)

	svc := NewService(ServiceDeps{Users: users, Sessions: sessions, Signer: signer})
	pair, err := svc.Login(context.Background(), domain.LoginRequest{Login: "admin", Password: "hunter2"})
	require.NoError(t, err)

	assert.Equal(t, "jwt-token", pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Greater(t, pair.ExpiresAt, time.Now().Unix())
}

func TestLogin_WithEmail(t *testing.T) {
	users, sessions, signer := &mockUserStore{}, &mockSessionStore{}, &mockSigner{}
	user := adminUser(t, "hunter2")

	users.On("GetByEmail", mock.Anything, "admin@example.com").Return(user, nil)
	sessions.On("Put", mock.Anything, mock.Anything).Return(nil)
	signer.On("Sign", user.UserID, domain.RoleAdmin, mock.Anything).Return("jwt-token", nil)

	svc := NewService(ServiceDeps{Users: users, Sessions: sessions, Signer: signer})
	_, err := svc.Login(context.Background(), domain.LoginRequest{Login: "Admin@Example.com", Password: "hunter2"})
	require.NoError(t, err)
	users.AssertNotCalled(t, "GetByUsername")
}

func TestLogin_WrongPassword(t *testing.T) {
	users, sessions, signer := &mockUserStore{}, &mockSessionStore{}, &mockSigner{}
	users.On("GetByUsername", mock.Anything, "admin").Return(adminUser(t, "hunter2"), nil)

	svc := NewService(ServiceDeps{Users: users, Sessions: sessions, Signer: signer})
	_, err := svc.Login(context.Background(), domain.LoginRequest{Login: "admin", Password: "wrong"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	sessions.AssertNotCalled(t, "Put")
}

func TestLogin_UnknownUserIsUnauthorized(t *testing.T) {
	users, sessions, signer := &mockUserStore{}, &mockSessionStore{}, &mockSigner{}
	users.On("GetByUsername", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)

	svc := NewService(ServiceDeps{Users: users, Sessions: sessions, Signer: signer})
	_, err := svc.Login(context.Background(), domain.LoginRequest{Login: "ghost", Password: "x"})
	// Not-found is masked as unauthorized.
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestLogin_DisabledAccount(t *testing.T) {
	users, sessions, signer := &mockUserStore{}, &mockSessionStore{}, &mockSigner{}
	user := adminUser(t, "hunter2")
	user.Enable = false
	users.On("GetByUsername", mock.Anything, "admin").Return(user, nil)

	svc := NewService(ServiceDeps{Users: users, Sessions: sessions, Signer: signer})
	_, err := svc.Login(context.Background(), domain.LoginRequest{Login: "admin", Password: "hunter2"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRefresh_RotatesToken(t *testing.T) {
	users, sessions, signer := &mockUserStore{}, &mockSessionStore{}, &mockSigner{}
	user := adminUser(t, "hunter2")
	session := &domain.Session{
		SessionID:        id.New(),
		UserID:           user.UserID,
		Enable:           true,
		RefreshToken:     "old-token",
		RefreshExpiresAt: time.Now().Add(time.Hour).Unix(),
	}

	sessions.On("GetByRefreshToken", mock.Anything, "old-token").Return(session, nil)
	users.On("Get", mock.Anything, user.UserID).Return(user, nil)
	sessions.On("RotateRefreshToken", mock.Anything, session.SessionID, mock.Anything, mock.Anything).Return(nil)
	signer.On("Sign", user.UserID, domain.RoleAdmin, session.SessionID).Return("new-jwt", nil)

	svc := NewService(ServiceDeps{Users: users, Sessions: sessions, Signer: signer})
	pair, err := svc.Refresh(context.Background(), domain.RefreshRequest{RefreshToken: "old-token"})
	require.NoError(t, err)

	assert.Equal(t, "new-jwt", pair.AccessToken)
	assert.NotEqual(t, "old-token", pair.RefreshToken)
	sessions.AssertExpectations(t)
}

func TestRefresh_ExpiredToken(t *testing.T) {
	users, sessions, signer := &mockUserStore{}, &mockSessionStore{}, &mockSigner{}
	session := &domain.Session{
		SessionID:        id.New(),
		UserID:           id.New(),
		Enable:           true,
		RefreshToken:     "stale",
		RefreshExpiresAt: time.Now().Add(-time.Minute).Unix(),
	}
	sessions.On("GetByRefreshToken", mock.Anything, "stale").Return(session, nil)

	svc := NewService(ServiceDeps{Users: users, Sessions: sessions, Signer: signer})
	_, err := svc.Refresh(context.Background(), domain.RefreshRequest{RefreshToken: "stale"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	sessions.AssertNotCalled(t, "RotateRefreshToken")
}

func TestLogout_DisablesSessions(t *testing.T) {
	users, sessions, signer := &mockUserStore{}, &mockSessionStore{}, &mockSigner{}
	userID := id.New()
	sessions.On("SoftDeleteByUser", mock.Anything, userID).Return(nil)

	svc := NewService(ServiceDeps{Users: users, Sessions: sessions, Signer: signer})
	require.NoError(t, svc.Logout(context.Background(), userID))
	sessions.AssertExpectations(t)
}

func TestLogout_MissingUserID(t *testing.T) {
	svc := NewService(ServiceDeps{Users: &mockUserStore{}, Sessions: &mockSessionStore{}, Signer: &mockSigner{}})
	err := svc.Logout(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}
