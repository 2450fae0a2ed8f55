package service

import (
	"context"
	"net/http"
	"strings"

	"github.com/yndnr/csrfguard/internal/core/domain"
	"github.com/yndnr/csrfguard/internal/telemetry/logger"
	"github.com/yndnr/csrfguard/pkg/token"
)

// TokenStore defines the storage interface for the current token.
//
// Get returns an empty string and a nil error when the key is absent.
// Remove must succeed for absent keys.
type TokenStore interface {
	Get(ctx context.Context, key string) (string, error)
	Add(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// RandomSource produces unpredictable token values.
type RandomSource interface {
	Next() (string, error)
}

// Token sources reported in ValidationEvent.Source.
const (
	SourceParam  = "param"
	SourceHeader = "header"
	SourceNone   = "none"
)

// ValidationEvent describes one completed Check call.
type ValidationEvent struct {
	// Valid is the result returned to the caller.
	Valid bool
	// Bypassed is set when validation is disabled.
	Bypassed bool
	// Source tells where the compared value came from.
	Source string
}

// ValidationHook is called synchronously after every Check, before the
// result is returned.
type ValidationHook func(ctx context.Context, ev ValidationEvent)

// TokenGuard issues and validates CSRF tokens bound to a store.
type TokenGuard struct {
	enabled    bool
	paramName  string
	headerName string
	store      TokenStore
	source     RandomSource
	hooks      []ValidationHook
	logger     logger.Logger
}

// Option configures a TokenGuard.
type Option func(*TokenGuard)

// WithValidation enables or disables validation. Defaults to true.
func WithValidation(enabled bool) Option {
	return func(g *TokenGuard) {
		g.enabled = enabled
	}
}

// WithParamName sets the form field and storage key. Defaults to "_csrf".
func WithParamName(name string) Option {
	return func(g *TokenGuard) {
		g.paramName = name
	}
}

// WithHeaderName sets the request header used as fallback in Check.
// Defaults to "X-CSRF-Token".
func WithHeaderName(name string) Option {
	return func(g *TokenGuard) {
		g.headerName = name
	}
}

// WithHooks registers validation hooks.
func WithHooks(hooks ...ValidationHook) Option {
	return func(g *TokenGuard) {
		g.hooks = append(g.hooks, hooks...)
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(g *TokenGuard) {
		g.logger = l
	}
}

// NewTokenGuard creates a guard over the given store and random source.
func NewTokenGuard(store TokenStore, source RandomSource, opts ...Option) (*TokenGuard, error) {
	g := &TokenGuard{
		enabled:    true,
		paramName:  domain.DefaultParamName,
		headerName: domain.HeaderName,
		store:      store,
		source:     source,
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.logger == nil {
		g.logger = logger.Default()
	}
	if g.headerName == "" {
		g.headerName = domain.HeaderName
	}
	if g.enabled && g.paramName == "" {
		return nil, domain.ErrInvalidParamName.WithDetails("parameter name is empty")
	}
	if store == nil {
		return nil, domain.ErrMissingStore
	}
	if source == nil {
		return nil, domain.ErrMissingSource
	}

	return g, nil
}

// Enabled reports whether validation is enabled.
func (g *TokenGuard) Enabled() bool {
	return g.enabled
}

// ParamName returns the form field and storage key of the token.
func (g *TokenGuard) ParamName() string {
	return g.paramName
}

// HeaderName returns the request header consulted by Check.
func (g *TokenGuard) HeaderName() string {
	return g.headerName
}

// OnValidate registers a hook fired after every Check.
func (g *TokenGuard) OnValidate(hook ValidationHook) {
	g.hooks = append(g.hooks, hook)
}

// Generate creates a new token and stores it, replacing any previous one.
// Returns an empty token when validation is disabled.
func (g *TokenGuard) Generate(ctx context.Context) (string, error) {
	if !g.enabled {
		return "", nil
	}

	tok, err := g.source.Next()
	if err != nil {
		return "", err
	}
	if err := g.store.Add(ctx, g.paramName, tok); err != nil {
		return "", err
	}

	g.logger.Debug("csrf token generated", "param", g.paramName)
	return tok, nil
}

// Get returns the current token, creating one on first access or when
// regenerate is set. Returns an empty token when validation is disabled.
func (g *TokenGuard) Get(ctx context.Context, regenerate bool) (string, error) {
	if !g.enabled {
		return "", nil
	}
	if regenerate {
		return g.Generate(ctx)
	}

	tok, err := g.load(ctx)
	if err != nil {
		return "", err
	}
	if tok == "" {
		return g.Generate(ctx)
	}
	return tok, nil
}

// Check compares submitted against the stored token. An empty submitted
// value falls back to the CSRF header in header (which may be nil).
//
// Returns true unconditionally when validation is disabled. Hooks run on
// every call, including when the store read fails.
func (g *TokenGuard) Check(ctx context.Context, submitted string, header http.Header) (bool, error) {
	if !g.enabled {
		g.notify(ctx, ValidationEvent{Valid: true, Bypassed: true, Source: SourceNone})
		return true, nil
	}

	src := SourceParam
	if submitted == "" {
		submitted = g.HeaderToken(header)
		src = SourceHeader
	}
	if submitted == "" {
		src = SourceNone
	}

	stored, err := g.load(ctx)
	if err != nil {
		g.notify(ctx, ValidationEvent{Source: src})
		return false, err
	}

	valid := token.Equal(stored, submitted)
	if !valid {
		g.logger.Debug("csrf check rejected",
			"param", g.paramName,
			"source", src,
			"stored", stored != "")
	}

	g.notify(ctx, ValidationEvent{Valid: valid, Source: src})
	return valid, nil
}

// HeaderToken returns the token carried in the CSRF request header, or an
// empty string. Header names are matched case-insensitively.
func (g *TokenGuard) HeaderToken(header http.Header) string {
	if header == nil {
		return ""
	}
	if v := header.Get(g.headerName); v != "" {
		return v
	}
	// Maps built by hand or converted from other transports may carry
	// non-canonical keys.
	for k, vs := range header {
		if len(vs) > 0 && strings.EqualFold(k, g.headerName) {
			return vs[0]
		}
	}
	return ""
}

// Exists reports whether a non-empty token is stored.
func (g *TokenGuard) Exists(ctx context.Context) (bool, error) {
	ok, err := g.store.Exists(ctx, g.paramName)
	if err != nil || !ok {
		return false, err
	}
	tok, err := g.load(ctx)
	if err != nil {
		return false, err
	}
	return tok != "", nil
}

// Remove deletes the stored token. Removing an absent token is not an error.
func (g *TokenGuard) Remove(ctx context.Context) error {
	if err := g.store.Remove(ctx, g.paramName); err != nil {
		return err
	}
	g.logger.Debug("csrf token removed", "param", g.paramName)
	return nil
}

func (g *TokenGuard) load(ctx context.Context) (string, error) {
	return g.store.Get(ctx, g.paramName)
}

func (g *TokenGuard) notify(ctx context.Context, ev ValidationEvent) {
	for _, hook := range g.hooks {
		hook(ctx, ev)
	}
}
