package storage

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/yndnr/csrfguard/internal/core/domain"
)

// KeyPrefix is the namespace of all token keys.
const KeyPrefix = "csrf/"

// SessionStore scopes a KVEngine to one session.
//
// It satisfies the token guard's store contract: missing keys read as
// empty strings and removing a missing key succeeds.
type SessionStore struct {
	engine    KVEngine
	sessionID string
	ttl       time.Duration
}

// NewSessionStore binds engine to sessionID. Entries written through the
// store expire after ttl when ttl > 0.
func NewSessionStore(engine KVEngine, sessionID string, ttl time.Duration) (*SessionStore, error) {
	if err := domain.ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	return &SessionStore{
		engine:    engine,
		sessionID: sessionID,
		ttl:       ttl,
	}, nil
}

// SessionID returns the bound session ID.
func (s *SessionStore) SessionID() string {
	return s.sessionID
}

func (s *SessionStore) key(name string) []byte {
	return []byte(KeyPrefix + s.sessionID + "/" + name)
}

// Get returns the value under name, or "" if absent.
func (s *SessionStore) Get(ctx context.Context, name string) (string, error) {
	value, err := s.engine.Get(ctx, s.key(name))
	if errors.Is(err, ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(value), nil
}

// Add stores value under name, replacing any previous value.
func (s *SessionStore) Add(ctx context.Context, name, value string) error {
	return s.engine.Set(ctx, s.key(name), []byte(value), s.ttl)
}

// Remove deletes name.
func (s *SessionStore) Remove(ctx context.Context, name string) error {
	return s.engine.Delete(ctx, s.key(name))
}

// Exists reports whether name is present.
func (s *SessionStore) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.engine.Get(ctx, s.key(name))
	if errors.Is(err, ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Entry is a stored token as seen by ScanSessions.
type Entry struct {
	SessionID string `json:"session_id" yaml:"session_id"`
	Param     string `json:"param" yaml:"param"`
	Value     string `json:"value" yaml:"value"`
}

// ScanSessions calls fn for every token stored in engine until fn
// returns false.
func ScanSessions(ctx context.Context, engine KVEngine, fn func(Entry) bool) error {
	return engine.Scan(ctx, []byte(KeyPrefix), func(key, value []byte) bool {
		rest := bytes.TrimPrefix(key, []byte(KeyPrefix))
		i := bytes.IndexByte(rest, '/')
		if i < 0 {
			return true
		}
		return fn(Entry{
			SessionID: string(rest[:i]),
			Param:     string(rest[i+1:]),
			Value:     string(value),
		})
	})
}
