package config

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/yndnr/csrfguard/internal/core/domain"
	"github.com/yndnr/csrfguard/pkg/crypto/adaptive"
	"github.com/yndnr/csrfguard/pkg/token"
)

// Verify validates the configuration.
func Verify(cfg *Config) error {
	if err := verifyCSRF(&cfg.CSRF); err != nil {
		return err
	}
	if err := verifyStorage(&cfg.Storage); err != nil {
		return err
	}
	if err := verifyCookie(&cfg.Cookie); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func verifyCSRF(cfg *CSRFSection) error {
	if cfg.Enabled && cfg.ParamName == "" {
		return domain.ErrInvalidParamName.WithDetails("csrf.param_name is required while validation is enabled")
	}
	if cfg.TokenLength < token.MinLength {
		return domain.ErrInvalidTokenLength.WithDetails(
			fmt.Sprintf("csrf.token_length %d below minimum %d", cfg.TokenLength, token.MinLength))
	}
	return nil
}

func verifyStorage(cfg *StorageSection) error {
	switch cfg.Backend {
	case BackendMemory:
	case BackendBadger:
		if cfg.DataDir == "" {
			return errors.New("storage.data_dir is required for the badger backend")
		}
	default:
		return fmt.Errorf("storage.backend %q is not one of memory, badger", cfg.Backend)
	}
	if cfg.TokenTTL < 0 {
		return errors.New("storage.token_ttl must not be negative")
	}
	return nil
}

func verifyCookie(cfg *CookieSection) error {
	if cfg.MaxAge < 0 {
		return errors.New("cookie.max_age must not be negative")
	}
	if cfg.Key == "" {
		return nil
	}
	key, err := hex.DecodeString(cfg.Key)
	if err != nil {
		return fmt.Errorf("cookie.key is not hex: %w", err)
	}
	if len(key) != adaptive.KeySize {
		return fmt.Errorf("cookie.key must be %d bytes, got %d", adaptive.KeySize, len(key))
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	switch cfg.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format %q is not one of json, text", cfg.Format)
	}
	return nil
}

// CookieKey returns the decoded cookie sealing key, or nil if none is
// configured. The config must have passed Verify.
func (c *CookieSection) CookieKey() []byte {
	if c.Key == "" {
		return nil
	}
	key, _ := hex.DecodeString(c.Key)
	return key
}
