package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ikkim/minishop-backend/internal/app/model"
	"github.com/ikkim/minishop-backend/internal/app/repository"
	"github.com/ikkim/minishop-backend/pkg/logger"
	pkgredis "github.com/ikkim/minishop-backend/pkg/redis"
	"github.com/ikkim/minishop-backend/pkg/util"
	"gorm.io/gorm"
)

const accountCodeLength = 8

var (
	ErrUserNotFound           = errors.New("user not found")
	ErrIdentityExchangeFailed = errors.New("identity exchange failed")
	ErrSessionRevoked         = errors.New("session revoked")
)

// IdentityProvider resolves a client login code to a stable external user id
type IdentityProvider interface {
	ExchangeCode(ctx context.Context, code string) (string, error)
}

// SessionStore holds the current token of each user
type SessionStore interface {
	Set(ctx context.Context, userID uint, token string) error
	Get(ctx context.Context, userID uint) (string, error)
	Delete(ctx context.Context, userID uint) error
}

type AuthConfig struct {
	JWTSecret     string
	TokenExpiry   time.Duration
	DefaultAvatar string
	AccountPrefix string
}

type LoginResult struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

type AuthService interface {
	Login(ctx context.Context, code string) (*LoginResult, error)
	Logout(ctx context.Context, userID uint) error
	ValidateSession(ctx context.Context, userID uint, token string) error
}

type authService struct {
	userRepo repository.UserRepository
	identity IdentityProvider
	sessions SessionStore
	cfg      AuthConfig
}

func NewAuthService(
	userRepo repository.UserRepository,
	identity IdentityProvider,
	sessions SessionStore,
	cfg AuthConfig,
) AuthService {
	return &authService{
		userRepo: userRepo,
		identity: identity,
		sessions: sessions,
		cfg:      cfg,
	}
}

// Login exchanges the code for an open id, registers the user on first
// sight and issues a token that replaces any previous session.
func (s *authService) Login(ctx context.Context, code string) (*LoginResult, error) {
	openID, err := s.identity.ExchangeCode(ctx, code)
	if err != nil {
		logger.Warn("Identity exchange failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", ErrIdentityExchangeFailed, err)
	}

	user, err := s.findOrRegister(openID)
	if err != nil {
		return nil, err
	}

	token, err := util.GenerateToken(user.ID, user.OpenID, s.cfg.JWTSecret, s.cfg.TokenExpiry)
	if err != nil {
		logger.Error("Failed to generate token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}

	if err := s.sessions.Set(ctx, user.ID, token); err != nil {
		logger.Error("Failed to store session", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}

	logger.Info("User logged in", map[string]interface{}{
		"user_id": user.ID,
	})
	return &LoginResult{User: user, Token: token}, nil
}

func (s *authService) findOrRegister(openID string) (*model.User, error) {
	user, err := s.userRepo.FindByOpenID(openID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	account := s.cfg.AccountPrefix + util.GenerateAccountCode(accountCodeLength)
	user = &model.User{
		OpenID:   openID,
		Account:  account,
		Nickname: account,
		Avatar:   s.cfg.DefaultAvatar,
	}
	if err := s.userRepo.Create(user); err != nil {
		// two first logins raced on the unique open id
		if existing, findErr := s.userRepo.FindByOpenID(openID); findErr == nil {
			return existing, nil
		}
		return nil, err
	}

	logger.Info("New user registered", map[string]interface{}{
		"user_id": user.ID,
		"account": user.Account,
	})
	return user, nil
}

func (s *authService) Logout(ctx context.Context, userID uint) error {
	if err := s.sessions.Delete(ctx, userID); err != nil {
		return err
	}
	logger.Info("User logged out", map[string]interface{}{
		"user_id": userID,
	})
	return nil
}

// ValidateSession fails with ErrSessionRevoked unless token is the user's current one
func (s *authService) ValidateSession(ctx context.Context, userID uint, token string) error {
	current, err := s.sessions.Get(ctx, userID)
	if errors.Is(err, pkgredis.ErrSessionNotFound) {
		return ErrSessionRevoked
	}
	if err != nil {
		return err
	}
	if current != token {
		return ErrSessionRevoked
	}
	return nil
}
