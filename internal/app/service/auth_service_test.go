package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ikkim/minishop-backend/internal/app/model"
	"github.com/ikkim/minishop-backend/internal/app/repository"
	"github.com/ikkim/minishop-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testJWTSecret = "test-jwt-secret"

func setupAuthServiceTest(t *testing.T) (AuthService, *gorm.DB, *fakeSessionStore, *fakeIdentityProvider) {
	testDB := setupServiceTestDB(t)
	sessions := newFakeSessionStore()
	identity := &fakeIdentityProvider{openIDs: map[string]string{
		"code-new":   "open-new",
		"code-again": "open-new",
		"code-other": "open-other",
	}}

	authService := NewAuthService(
		repository.NewUserRepository(testDB),
		identity,
		sessions,
		AuthConfig{
			JWTSecret:     testJWTSecret,
			TokenExpiry:   time.Hour,
			DefaultAvatar: "https://cdn.test/default.png",
			AccountPrefix: "用户",
		},
	)
	return authService, testDB, sessions, identity
}

func TestAuthService_Login_NewUser(t *testing.T) {
	authService, testDB, sessions, _ := setupAuthServiceTest(t)
	ctx := context.Background()

	result, err := authService.Login(ctx, "code-new")
	require.NoError(t, err)
	require.NotNil(t, result.User)

	var count int64
	require.NoError(t, testDB.Model(&model.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	assert.True(t, strings.HasPrefix(result.User.Account, "用户"))
	assert.Equal(t, result.User.Account, result.User.Nickname)
	assert.Equal(t, "https://cdn.test/default.png", result.User.Avatar)

	// the stored token resolves to the new user
	stored, err := sessions.Get(ctx, result.User.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Token, stored)

	claims, err := util.ValidateToken(stored, testJWTSecret)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)
}

func TestAuthService_Login_ExistingUser(t *testing.T) {
	authService, testDB, _, _ := setupAuthServiceTest(t)
	ctx := context.Background()

	first, err := authService.Login(ctx, "code-new")
	require.NoError(t, err)
	second, err := authService.Login(ctx, "code-again")
	require.NoError(t, err)

	assert.Equal(t, first.User.ID, second.User.ID)

	var count int64
	require.NoError(t, testDB.Model(&model.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// the newer login replaces the previous session
	assert.ErrorIs(t, authService.ValidateSession(ctx, first.User.ID, "stale-token"), ErrSessionRevoked)
	assert.NoError(t, authService.ValidateSession(ctx, second.User.ID, second.Token))
}

func TestAuthService_Login_ExchangeFailed(t *testing.T) {
	authService, testDB, _, identity := setupAuthServiceTest(t)

	_, err := authService.Login(context.Background(), "unknown-code")
	assert.ErrorIs(t, err, ErrIdentityExchangeFailed)

	identity.err = errors.New("network down")
	_, err = authService.Login(context.Background(), "code-new")
	assert.ErrorIs(t, err, ErrIdentityExchangeFailed)

	var count int64
	require.NoError(t, testDB.Model(&model.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAuthService_Logout(t *testing.T) {
	authService, _, _, _ := setupAuthServiceTest(t)
	ctx := context.Background()

	result, err := authService.Login(ctx, "code-other")
	require.NoError(t, err)
	require.NoError(t, authService.ValidateSession(ctx, result.User.ID, result.Token))

	require.NoError(t, authService.Logout(ctx, result.User.ID))
	assert.ErrorIs(t, authService.ValidateSession(ctx, result.User.ID, result.Token), ErrSessionRevoked)
}
