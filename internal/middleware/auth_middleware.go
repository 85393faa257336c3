package middleware

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/minishop-backend/internal/app/service"
	"github.com/ikkim/minishop-backend/internal/errors"
	"github.com/ikkim/minishop-backend/pkg/util"
)

const (
	UserIDKey   = "user_id"
	UserOpenKey = "user_open_id"
)

// SessionValidator confirms a token is the user's live session
type SessionValidator interface {
	ValidateSession(ctx context.Context, userID uint, token string) error
}

type AuthMiddleware struct {
	jwtSecret string
	sessions  SessionValidator
}

func NewAuthMiddleware(jwtSecret string, sessions SessionValidator) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
		sessions:  sessions,
	}
}

// Authenticate requires a valid JWT that is still the user's current session.
// The token comes from the Authorization header or, for websockets, the
// token query parameter.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		var token string

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				log.Warn("Invalid authorization header format", map[string]interface{}{
					"path": c.Request.URL.Path,
				})
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "invalid authorization header format")
				c.Abort()
				return
			}
			token = parts[1]
		} else {
			token = c.Query("token")
			if token == "" {
				log.Warn("Missing authorization header", map[string]interface{}{
					"path": c.Request.URL.Path,
				})
				errors.Unauthorized(c, "Authorization header is required")
				c.Abort()
				return
			}
			log.Debug("Using token from query parameter", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
		}

		claims, err := util.ValidateToken(token, m.jwtSecret)
		if err != nil {
			log.Warn("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})

			if stderrors.Is(err, util.ErrExpiredToken) {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenExpired, "login expired")
			} else {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "invalid token")
			}
			c.Abort()
			return
		}

		if m.sessions != nil {
			if err := m.sessions.ValidateSession(c.Request.Context(), claims.UserID, token); err != nil {
				if stderrors.Is(err, service.ErrSessionRevoked) {
					log.Warn("Token no longer matches session", map[string]interface{}{
						"user_id": claims.UserID,
					})
					errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenRevoked, "session ended, please log in again")
				} else {
					log.Error("Failed to check session", err, map[string]interface{}{
						"user_id": claims.UserID,
					})
					errors.InternalError(c, "")
				}
				c.Abort()
				return
			}
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UserOpenKey, claims.OpenID)

		log.Debug("User authenticated successfully", map[string]interface{}{
			"user_id": claims.UserID,
		})

		c.Next()
	}
}

// GetUserID extracts user ID from context
func GetUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok
}

// GetOpenID extracts the WeChat open id from context
func GetOpenID(c *gin.Context) (string, bool) {
	openID, exists := c.Get(UserOpenKey)
	if !exists {
		return "", false
	}
	s, ok := openID.(string)
	return s, ok
}
