package identity

import "time"

// TransportConfig controls the HTTP backup transport.
type TransportConfig struct {
	BaseURL   string
	UserID    string // server-side identity reference for the backup slot
	AuthToken string
	Timeout   time.Duration
	Retry     RetryConfig // retry settings (zero uses defaults)
}

// GetRetryConfig returns Retry config or defaults if not set.
func (c TransportConfig) GetRetryConfig() RetryConfig {
	if c.Retry.MaxAttempts == 0 {
		return DefaultRetryConfig()
	}
	return c.Retry
}
