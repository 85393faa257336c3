package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ikkim/minishop-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// DefaultSessionPrefix namespaces login tokens, one key per user
const DefaultSessionPrefix = "shop:token:"

// ErrSessionNotFound is returned when no token is stored for a user
var ErrSessionNotFound = errors.New("session not found")

// SessionStore keeps the most recent login token of each user with a TTL
type SessionStore struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewSessionStore(client redis.Cmdable, prefix string, ttl time.Duration) *SessionStore {
	if prefix == "" {
		prefix = DefaultSessionPrefix
	}
	return &SessionStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Key returns the redis key holding the token of userID
func (s *SessionStore) Key(userID uint) string {
	return fmt.Sprintf("%s%d", s.prefix, userID)
}

// Set stores token for userID, replacing any previous session
func (s *SessionStore) Set(ctx context.Context, userID uint, token string) error {
	if err := s.client.Set(ctx, s.Key(userID), token, s.ttl).Err(); err != nil {
		logger.Error("Failed to store session", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}
	logger.Debug("Session stored", map[string]interface{}{
		"user_id": userID,
		"ttl":     s.ttl.String(),
	})
	return nil
}

// Get returns the token stored for userID
func (s *SessionStore) Get(ctx context.Context, userID uint) (string, error) {
	val, err := s.client.Get(ctx, s.Key(userID)).Result()
	if err == redis.Nil {
		return "", ErrSessionNotFound
	}
	if err != nil {
		logger.Error("Failed to read session", err, map[string]interface{}{
			"user_id": userID,
		})
		return "", err
	}
	return val, nil
}

// Delete removes the session of userID
func (s *SessionStore) Delete(ctx context.Context, userID uint) error {
	if err := s.client.Del(ctx, s.Key(userID)).Err(); err != nil {
		logger.Error("Failed to delete session", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}
	return nil
}
