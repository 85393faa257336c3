package wechat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ikkim/minishop-backend/pkg/logger"
)

// Client exchanges mini-program login codes for user open ids
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new client with the given configuration
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// ExchangeCode resolves a login code to the user's open id
func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	if code == "" {
		return "", ErrEmptyCode
	}

	session, err := c.code2Session(ctx, code)
	if err != nil {
		return "", err
	}
	return session.OpenID, nil
}

func (c *Client) code2Session(ctx context.Context, code string) (*SessionResponse, error) {
	q := url.Values{}
	q.Set("appid", c.config.AppID)
	q.Set("secret", c.config.AppSecret)
	q.Set("js_code", code)
	q.Set("grant_type", "authorization_code")
	endpoint := strings.TrimRight(c.config.BaseURL, "/") + "/sns/jscode2session?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status code %d", ErrExchangeFailed, resp.StatusCode)
	}

	var session SessionResponse
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrExchangeFailed, err)
	}

	if session.ErrCode != 0 {
		logger.Warn("WeChat code exchange rejected", map[string]interface{}{
			"errcode": session.ErrCode,
			"errmsg":  session.ErrMsg,
		})
		return nil, fmt.Errorf("%w: errcode=%d errmsg=%s", ErrExchangeFailed, session.ErrCode, session.ErrMsg)
	}
	if session.OpenID == "" {
		return nil, fmt.Errorf("%w: missing openid", ErrExchangeFailed)
	}

	return &session, nil
}
