// Package auth handles dashboard login, token refresh and logout.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/portfolio-api/internal/domain"
	"github.com/portfolio-api/internal/pkg/id"
	"github.com/portfolio-api/internal/pkg/token"
	"github.com/portfolio-api/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

const refreshTokenTTL = 30 * 24 * time.Hour

type Service interface {
	// Login authenticates with a username or email plus password and opens a
	// new session.
	Login(ctx context.Context, req domain.LoginRequest) (*domain.TokenPair, error)
	// Refresh rotates the refresh token and issues a new access token.
	Refresh(ctx context.Context, req domain.RefreshRequest) (*domain.TokenPair, error)
	// Logout disables every session of the user.
	Logout(ctx context.Context, userID string) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type sessionStore interface {
	Put(ctx context.Context, s *domain.Session) error
	GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error)
	RotateRefreshToken(ctx context.Context, sessionID, newToken string, newExpiry int64) error
	SoftDeleteByUser(ctx context.Context, userID string) error
}

type tokenSigner interface {
	Sign(userID, role, sessionID string) (string, error)
}

type service struct {
	users    userStore
	sessions sessionStore
	signer   tokenSigner
}

type ServiceDeps struct {
	Users    userStore
	Sessions sessionStore
	Signer   tokenSigner
}

func NewService(deps ServiceDeps) Service {
	return &service{users: deps.Users, sessions: deps.Sessions, signer: deps.Signer}
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*domain.TokenPair, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}

	user, err := s.lookupUser(ctx, req.Login)
	if err != nil {
		// Do not reveal whether the account exists.
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if !user.Enable {
		return nil, fmt.Errorf("account disabled: %w", domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}

	refresh, err := token.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	session := &domain.Session{
		SessionID:        id.New(),
		UserID:           user.UserID,
		Enable:           true,
		RefreshToken:     refresh,
		RefreshExpiresAt: now.Add(refreshTokenTTL).Unix(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.sessions.Put(ctx, session); err != nil {
		return nil, err
	}

	access, err := s.signer.Sign(user.UserID, user.Role, session.SessionID)
	if err != nil {
		return nil, err
	}
	slog.Info("login", "user_id", user.UserID, "session_id", session.SessionID)
	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    session.RefreshExpiresAt,
	}, nil
}

func (s *service) Refresh(ctx context.Context, req domain.RefreshRequest) (*domain.TokenPair, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}

	session, err := s.sessions.GetByRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", domain.ErrUnauthorized)
	}
	if time.Now().Unix() > session.RefreshExpiresAt {
		return nil, fmt.Errorf("refresh token expired: %w", domain.ErrUnauthorized)
	}

	user, err := s.users.Get(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("session user missing: %w", domain.ErrUnauthorized)
	}
	if !user.Enable {
		return nil, fmt.Errorf("account disabled: %w", domain.ErrUnauthorized)
	}

	newRefresh, err := token.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	newExpiry := time.Now().UTC().Add(refreshTokenTTL).Unix()
	if err := s.sessions.RotateRefreshToken(ctx, session.SessionID, newRefresh, newExpiry); err != nil {
		return nil, err
	}

	access, err := s.signer.Sign(user.UserID, user.Role, session.SessionID)
	if err != nil {
		return nil, err
	}
	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: newRefresh,
		ExpiresAt:    newExpiry,
	}, nil
}

func (s *service) Logout(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("missing user id: %w", domain.ErrBadRequest)
	}
	return s.sessions.SoftDeleteByUser(ctx, userID)
}

func (s *service) lookupUser(ctx context.Context, login string) (*domain.User, error) {
	login = strings.TrimSpace(login)
	if strings.Contains(login, "@") {
		return s.users.GetByEmail(ctx, strings.ToLower(login))
	}
	return s.users.GetByUsername(ctx, login)
}
