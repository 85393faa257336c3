package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/ikkim/minishop-backend/internal/db"
	pkgredis "github.com/ikkim/minishop-backend/pkg/redis"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return testDB
}

type fakeIdentityProvider struct {
	openIDs map[string]string // code -> open id
	err     error
}

func (f *fakeIdentityProvider) ExchangeCode(ctx context.Context, code string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	openID, ok := f.openIDs[code]
	if !ok {
		return "", errors.New("errcode=40029 invalid code")
	}
	return openID, nil
}

type fakeSessionStore struct {
	mu     sync.Mutex
	tokens map[uint]string
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{tokens: map[uint]string{}}
}

func (f *fakeSessionStore) Set(ctx context.Context, userID uint, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[userID] = token
	return nil
}

func (f *fakeSessionStore) Get(ctx context.Context, userID uint) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	token, ok := f.tokens[userID]
	if !ok {
		return "", pkgredis.ErrSessionNotFound
	}
	return token, nil
}

func (f *fakeSessionStore) Delete(ctx context.Context, userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, userID)
	return nil
}

type fakeBlobStore struct {
	keys []string
	err  error
}

func (f *fakeBlobStore) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if _, err := io.ReadAll(body); err != nil {
		return "", err
	}
	f.keys = append(f.keys, key)
	return "https://cdn.test/" + key, nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []OrderEvent
}

func (f *fakeNotifier) NotifyOrder(event OrderEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeNotifier) Events() []OrderEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]OrderEvent(nil), f.events...)
}
