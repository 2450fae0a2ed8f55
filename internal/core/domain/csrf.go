package domain

import (
	"crypto/rand"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	// DefaultParamName is the default form field and storage key of the token.
	DefaultParamName = "_csrf"

	// HeaderName is the HTTP header that carries the token for AJAX requests.
	HeaderName = "X-CSRF-Token"

	// SessionIDPrefix is the prefix of generated session IDs.
	SessionIDPrefix = "sess-"

	// cgiHeaderPrefix prefixes request headers in a CGI environment.
	cgiHeaderPrefix = "HTTP_"
)

// HeaderEnvKey returns the CGI environment variable carrying the given
// request header, e.g. X-CSRF-Token -> HTTP_X_CSRF_TOKEN.
func HeaderEnvKey(header string) string {
	return cgiHeaderPrefix + strings.ReplaceAll(strings.ToUpper(header), "-", "_")
}

// HeaderFromEnv rebuilds request headers from a CGI-style environment
// ("KEY=value" entries, as returned by os.Environ). Only HTTP_* entries
// are kept; HTTP_X_CSRF_TOKEN becomes X-Csrf-Token.
func HeaderFromEnv(environ []string) http.Header {
	h := make(http.Header)
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, cgiHeaderPrefix) {
			continue
		}
		name := strings.ReplaceAll(strings.TrimPrefix(key, cgiHeaderPrefix), "_", "-")
		if name == "" {
			continue
		}
		h.Add(name, value)
	}
	return h
}

// NewSessionID generates a new session ID using ULID.
// Format: sess-{ulid_lowercase}, 31 characters total.
func NewSessionID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", ErrInternal.WithCause(err)
	}
	return SessionIDPrefix + strings.ToLower(id.String()), nil
}

// ValidateSessionID checks that id is usable as a storage scope.
//
// Generated IDs are accepted, as are opaque IDs issued by a host session
// manager as long as they are non-empty and contain no '/' (the storage key
// separator) or whitespace.
func ValidateSessionID(id string) error {
	if id == "" {
		return ErrMissingSession
	}
	if strings.HasPrefix(id, SessionIDPrefix) {
		if _, err := ulid.Parse(strings.ToUpper(id[len(SessionIDPrefix):])); err != nil {
			return ErrInvalidSessionID.WithDetails(id).WithCause(err)
		}
		return nil
	}
	if strings.ContainsAny(id, "/ \t\r\n") {
		return ErrInvalidSessionID.WithDetails(id)
	}
	return nil
}
