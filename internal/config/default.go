package config

import (
	"time"

	"github.com/yndnr/csrfguard/internal/core/domain"
	"github.com/yndnr/csrfguard/pkg/token"
)

// Storage backends.
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
)

// Default configuration values.
const (
	DefaultBackend    = BackendMemory
	DefaultTokenTTL   = 2 * time.Hour
	DefaultGCInterval = 10 * time.Minute

	DefaultCookiePath = "/"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		CSRF: CSRFSection{
			Enabled:     true,
			ParamName:   domain.DefaultParamName,
			HeaderName:  domain.HeaderName,
			TokenLength: token.DefaultLength,
		},
		Storage: StorageSection{
			Backend:    DefaultBackend,
			TokenTTL:   DefaultTokenTTL,
			GCInterval: DefaultGCInterval,
		},
		Cookie: CookieSection{
			Secure: true,
			Path:   DefaultCookiePath,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
