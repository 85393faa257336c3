package wechat

// Config represents the configuration for the mini-program login client
type Config struct {
	// AppID is the mini-program app id
	AppID string

	// AppSecret is the mini-program app secret
	AppSecret string

	// BaseURL is the WeChat API base URL
	BaseURL string
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.AppID == "" || c.AppSecret == "" || c.BaseURL == "" {
		return ErrInvalidConfig
	}
	return nil
}
