package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/minishop-backend/internal/app/service"
	apperrors "github.com/ikkim/minishop-backend/internal/errors"
	"github.com/ikkim/minishop-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-jwt-secret-for-middleware"

type fakeSessions struct {
	tokens map[uint]string
	err    error
}

func (f *fakeSessions) ValidateSession(ctx context.Context, userID uint, token string) error {
	if f.err != nil {
		return f.err
	}
	if f.tokens[userID] != token {
		return service.ErrSessionRevoked
	}
	return nil
}

func setupMiddlewareTest(sessions SessionValidator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(LoggingMiddleware())
	auth := NewAuthMiddleware(testJWTSecret, sessions)
	router.GET("/test", auth.Authenticate(), func(c *gin.Context) {
		userID, _ := GetUserID(c)
		openID, _ := GetOpenID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "open_id": openID})
	})
	return router
}

func generateTestToken(t *testing.T, userID uint, expiry time.Duration) string {
	token, err := util.GenerateToken(userID, "open-id", testJWTSecret, expiry)
	require.NoError(t, err)
	return token
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	valid := generateTestToken(t, 1, time.Hour)
	stale := generateTestToken(t, 1, 2*time.Hour)
	expired := generateTestToken(t, 1, -time.Minute)
	sessions := &fakeSessions{tokens: map[uint]string{1: valid}}

	tests := []struct {
		name     string
		header   string
		query    string
		wantCode int
		wantErr  string
	}{
		{name: "bearer token", header: "Bearer " + valid, wantCode: http.StatusOK},
		{name: "query token", query: "?token=" + valid, wantCode: http.StatusOK},
		{name: "missing token", wantCode: http.StatusUnauthorized, wantErr: apperrors.AuthUnauthorized},
		{name: "bad header format", header: "Token " + valid, wantCode: http.StatusUnauthorized, wantErr: apperrors.AuthTokenInvalid},
		{name: "garbage token", header: "Bearer not-a-jwt", wantCode: http.StatusUnauthorized, wantErr: apperrors.AuthTokenInvalid},
		{name: "expired token", header: "Bearer " + expired, wantCode: http.StatusUnauthorized, wantErr: apperrors.AuthTokenExpired},
		{name: "replaced by newer login", header: "Bearer " + stale, wantCode: http.StatusUnauthorized, wantErr: apperrors.AuthTokenRevoked},
	}

	router := setupMiddlewareTest(sessions)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
			if tt.wantErr != "" {
				assert.Contains(t, w.Body.String(), tt.wantErr)
			} else {
				assert.JSONEq(t, `{"user_id":1,"open_id":"open-id"}`, w.Body.String())
			}
		})
	}
}

func TestAuthMiddleware_SessionStoreFailure(t *testing.T) {
	router := setupMiddlewareTest(&fakeSessions{err: errors.New("redis unreachable")})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+generateTestToken(t, 1, time.Hour))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestLoggingMiddleware_KeepsIncomingRequestID(t *testing.T) {
	router := setupMiddlewareTest(nil)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
}
