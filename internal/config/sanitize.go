package config

import "strings"

// Sanitize returns a copy of the config with secrets masked for display.
func Sanitize(cfg *Config) *Config {
	sanitized := *cfg

	if sanitized.Cookie.Key != "" {
		sanitized.Cookie.Key = maskSecret(sanitized.Cookie.Key)
	}

	return &sanitized
}

func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
