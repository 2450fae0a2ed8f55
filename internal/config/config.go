package config

import "time"

// Config is the root configuration.
type Config struct {
	CSRF    CSRFSection    `koanf:"csrf" json:"csrf" yaml:"csrf"`
	Storage StorageSection `koanf:"storage" json:"storage" yaml:"storage"`
	Cookie  CookieSection  `koanf:"cookie" json:"cookie" yaml:"cookie"`
	Log     LogSection     `koanf:"log" json:"log" yaml:"log"`
}

// CSRFSection configures the token guard.
type CSRFSection struct {
	Enabled     bool   `koanf:"enabled" json:"enabled" yaml:"enabled"`
	ParamName   string `koanf:"param_name" json:"param_name" yaml:"param_name"`
	HeaderName  string `koanf:"header_name" json:"header_name" yaml:"header_name"`
	TokenLength int    `koanf:"token_length" json:"token_length" yaml:"token_length"`
}

// StorageSection selects and tunes the session token backend.
type StorageSection struct {
	// Backend is "memory" or "badger".
	Backend string `koanf:"backend" json:"backend" yaml:"backend"`

	// DataDir is the Badger directory. Required for the badger backend.
	DataDir string `koanf:"data_dir" json:"data_dir" yaml:"data_dir"`

	// TokenTTL bounds the lifetime of stored tokens. Zero keeps them
	// until removed.
	TokenTTL time.Duration `koanf:"token_ttl" json:"token_ttl" yaml:"token_ttl"`

	GCInterval time.Duration `koanf:"gc_interval" json:"gc_interval" yaml:"gc_interval"`
}

// CookieSection configures the cookie-backed token store.
type CookieSection struct {
	// Key is the hex encoded 32-byte sealing key.
	Key    string `koanf:"key" json:"key" yaml:"key"`
	Secure bool   `koanf:"secure" json:"secure" yaml:"secure"`
	Path   string `koanf:"path" json:"path" yaml:"path"`
	Domain string `koanf:"domain" json:"domain" yaml:"domain"`
	MaxAge int    `koanf:"max_age" json:"max_age" yaml:"max_age"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level" json:"level" yaml:"level"`
	Format string `koanf:"format" json:"format" yaml:"format"`
}
