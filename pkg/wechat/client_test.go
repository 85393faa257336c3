package wechat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{AppID: "app", AppSecret: "secret", BaseURL: server.URL})
	require.NoError(t, err)
	return client
}

func TestNewClient_InvalidConfig(t *testing.T) {
	_, err := NewClient(Config{AppID: "app"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestExchangeCode(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		status     int
		body       string
		wantOpenID string
		wantErr    error
	}{
		{
			name:       "success",
			code:       "good-code",
			status:     http.StatusOK,
			body:       `{"openid":"o-123","session_key":"k"}`,
			wantOpenID: "o-123",
		},
		{
			name:    "errcode in body",
			code:    "bad-code",
			status:  http.StatusOK,
			body:    `{"errcode":40029,"errmsg":"invalid code"}`,
			wantErr: ErrExchangeFailed,
		},
		{
			name:    "missing openid",
			code:    "odd-code",
			status:  http.StatusOK,
			body:    `{"session_key":"k"}`,
			wantErr: ErrExchangeFailed,
		},
		{
			name:    "non-200",
			code:    "code",
			status:  http.StatusBadGateway,
			body:    `oops`,
			wantErr: ErrExchangeFailed,
		},
		{
			name:    "empty code",
			code:    "",
			wantErr: ErrEmptyCode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/sns/jscode2session", r.URL.Path)
				assert.Equal(t, "app", r.URL.Query().Get("appid"))
				assert.Equal(t, "secret", r.URL.Query().Get("secret"))
				assert.Equal(t, tt.code, r.URL.Query().Get("js_code"))
				assert.Equal(t, "authorization_code", r.URL.Query().Get("grant_type"))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			openID, err := client.ExchangeCode(context.Background(), tt.code)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, openID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOpenID, openID)
		})
	}
}
