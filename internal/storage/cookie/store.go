package cookie

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/yndnr/csrfguard/pkg/crypto/adaptive"
)

// Options controls the attributes of written cookies. HttpOnly is always
// set and cannot be disabled.
type Options struct {
	Path     string
	Domain   string
	MaxAge   int
	Secure   bool
	SameSite http.SameSite
}

// DefaultOptions returns secure, site-wide, session-lifetime cookies.
func DefaultOptions() Options {
	return Options{
		Path:     "/",
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

// Store is a token store scoped to a single HTTP exchange.
// It is not safe for concurrent use.
type Store struct {
	req    *http.Request
	resp   http.ResponseWriter
	cipher *adaptive.Cipher
	opts   Options

	// written tracks values set or removed during this exchange; a nil
	// entry marks a removal.
	written map[string]*string
}

// NewStore returns a Store reading cookies from r and writing them to w.
func NewStore(w http.ResponseWriter, r *http.Request, c *adaptive.Cipher, opts Options) (*Store, error) {
	if w == nil || r == nil {
		return nil, errors.New("cookie: request and response are required")
	}
	if c == nil {
		return nil, errors.New("cookie: cipher is required")
	}
	if opts.SameSite == 0 {
		opts.SameSite = http.SameSiteLaxMode
	}
	return &Store{
		req:     r,
		resp:    w,
		cipher:  c,
		opts:    opts,
		written: make(map[string]*string),
	}, nil
}

// Get returns the token stored under name, or "" if the cookie is absent
// or cannot be opened.
func (s *Store) Get(_ context.Context, name string) (string, error) {
	if v, ok := s.written[name]; ok {
		if v == nil {
			return "", nil
		}
		return *v, nil
	}

	c, err := s.req.Cookie(name)
	if err != nil {
		return "", nil
	}
	value, err := s.cipher.OpenString(c.Value, []byte(name))
	if err != nil {
		return "", nil
	}
	return value, nil
}

// Add seals value and sets it as cookie name.
func (s *Store) Add(_ context.Context, name, value string) error {
	sealed, err := s.cipher.SealString(value, []byte(name))
	if err != nil {
		return err
	}

	c := s.cookie(name, sealed)
	if s.opts.MaxAge > 0 {
		c.MaxAge = s.opts.MaxAge
		c.Expires = time.Now().Add(time.Duration(s.opts.MaxAge) * time.Second)
	}
	http.SetCookie(s.resp, c)

	s.written[name] = &value
	return nil
}

// Remove expires cookie name.
func (s *Store) Remove(_ context.Context, name string) error {
	c := s.cookie(name, "")
	c.MaxAge = -1
	c.Expires = time.Unix(0, 0)
	http.SetCookie(s.resp, c)

	s.written[name] = nil
	return nil
}

// Exists reports whether a readable token is stored under name.
func (s *Store) Exists(ctx context.Context, name string) (bool, error) {
	v, err := s.Get(ctx, name)
	return v != "", err
}

func (s *Store) cookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     s.opts.Path,
		Domain:   s.opts.Domain,
		Secure:   s.opts.Secure,
		HttpOnly: true,
		SameSite: s.opts.SameSite,
	}
}
