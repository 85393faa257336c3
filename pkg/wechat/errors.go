package wechat

import "errors"

var (
	// ErrInvalidConfig is returned when app credentials are missing
	ErrInvalidConfig = errors.New("invalid wechat config")

	// ErrEmptyCode is returned when no login code was supplied
	ErrEmptyCode = errors.New("empty login code")

	// ErrExchangeFailed is returned when WeChat rejects the login code
	ErrExchangeFailed = errors.New("code exchange failed")

	// ErrNetworkError is returned when there's a network communication error
	ErrNetworkError = errors.New("network error")
)
