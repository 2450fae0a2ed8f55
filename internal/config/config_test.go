package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/csrfguard/internal/core/domain"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestDefault(t *testing.T) {
	cfg := Default()

	if !cfg.CSRF.Enabled {
		t.Error("validation should be enabled by default")
	}
	if cfg.CSRF.ParamName != "_csrf" {
		t.Errorf("ParamName = %q, want _csrf", cfg.CSRF.ParamName)
	}
	if cfg.CSRF.HeaderName != "X-CSRF-Token" {
		t.Errorf("HeaderName = %q, want X-CSRF-Token", cfg.CSRF.HeaderName)
	}
	if cfg.Storage.Backend != BackendMemory {
		t.Errorf("Backend = %q, want memory", cfg.Storage.Backend)
	}
	if cfg.Storage.TokenTTL != DefaultTokenTTL {
		t.Errorf("TokenTTL = %v, want %v", cfg.Storage.TokenTTL, DefaultTokenTTL)
	}
	if !cfg.Cookie.Secure {
		t.Error("cookies should be Secure by default")
	}
	if cfg.Log.Format != DefaultLogFormat {
		t.Errorf("Log.Format = %q, want %q", cfg.Log.Format, DefaultLogFormat)
	}

	if err := Verify(cfg); err != nil {
		t.Errorf("Verify(Default()) = %v", err)
	}
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"disabled without param name", func(c *Config) {
			c.CSRF.Enabled = false
			c.CSRF.ParamName = ""
		}, ""},
		{"empty param name", func(c *Config) { c.CSRF.ParamName = "" }, "TM-CSRF-4000"},
		{"short token", func(c *Config) { c.CSRF.TokenLength = 8 }, "TM-CSRF-4001"},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "redis" }, "storage.backend"},
		{"badger without dir", func(c *Config) { c.Storage.Backend = BackendBadger }, "storage.data_dir"},
		{"badger with dir", func(c *Config) {
			c.Storage.Backend = BackendBadger
			c.Storage.DataDir = "/var/lib/csrfguard"
		}, ""},
		{"negative ttl", func(c *Config) { c.Storage.TokenTTL = -time.Second }, "token_ttl"},
		{"cookie key not hex", func(c *Config) { c.Cookie.Key = "zz" }, "not hex"},
		{"cookie key too short", func(c *Config) { c.Cookie.Key = "0001" }, "32 bytes"},
		{"cookie key ok", func(c *Config) { c.Cookie.Key = testKey }, ""},
		{"negative max age", func(c *Config) { c.Cookie.MaxAge = -1 }, "max_age"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Verify(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Verify() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Verify() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestVerify_DomainErrors(t *testing.T) {
	cfg := Default()
	cfg.CSRF.ParamName = ""
	if err := Verify(cfg); !errors.Is(err, domain.ErrInvalidParamName) {
		t.Errorf("Verify() = %v, want ErrInvalidParamName", err)
	}
}

func TestCookieKey(t *testing.T) {
	c := CookieSection{}
	if c.CookieKey() != nil {
		t.Error("CookieKey() without key should be nil")
	}
	c.Key = testKey
	if got := c.CookieKey(); len(got) != 32 || got[31] != 0x1f {
		t.Errorf("CookieKey() = %x", got)
	}
}

func TestSanitize(t *testing.T) {
	cfg := Default()
	cfg.Cookie.Key = testKey

	sanitized := Sanitize(cfg)

	if cfg.Cookie.Key != testKey {
		t.Error("original config should not be modified")
	}
	if sanitized.Cookie.Key == testKey {
		t.Error("sanitized config should mask the cookie key")
	}
	if len(sanitized.Cookie.Key) != len(testKey) {
		t.Errorf("masked key length = %d, want %d", len(sanitized.Cookie.Key), len(testKey))
	}
	if !strings.HasPrefix(sanitized.Cookie.Key, "00") || !strings.HasSuffix(sanitized.Cookie.Key, "1f") {
		t.Errorf("masked key = %q, want first and last two characters kept", sanitized.Cookie.Key)
	}
}

func TestSanitize_EmptyKey(t *testing.T) {
	if got := Sanitize(Default()).Cookie.Key; got != "" {
		t.Errorf("empty key sanitized to %q", got)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "csrfguard.yaml")
	content := `
csrf:
  param_name: authenticity_token
storage:
  backend: badger
  data_dir: /from/file
  token_ttl: 15m
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CSRFGUARD_LOG_LEVEL", "warn")

	cfg, err := Load(path, map[string]any{"storage.data_dir": "/from/flag"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.CSRF.ParamName != "authenticity_token" {
		t.Errorf("ParamName = %q", cfg.CSRF.ParamName)
	}
	if !cfg.CSRF.Enabled {
		t.Error("default Enabled lost")
	}
	if cfg.Storage.TokenTTL != 15*time.Minute {
		t.Errorf("TokenTTL = %v, want 15m", cfg.Storage.TokenTTL)
	}
	if cfg.Storage.DataDir != "/from/flag" {
		t.Errorf("DataDir = %q, want /from/flag", cfg.Storage.DataDir)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
}

func TestLoad_Invalid(t *testing.T) {
	if _, err := Load("", map[string]any{"csrf.token_length": 4}); !errors.Is(err, domain.ErrInvalidTokenLength) {
		t.Errorf("Load() = %v, want ErrInvalidTokenLength", err)
	}
	if _, err := Load("/nonexistent/csrfguard.yaml", nil); err == nil {
		t.Error("Load() should fail for a missing file")
	}
}
