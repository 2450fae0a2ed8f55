package audit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/yndnr/csrfguard/internal/core/service"
	"github.com/yndnr/csrfguard/internal/telemetry/logger"
)

// Auditor records rejected checks.
type Auditor struct {
	logger  logger.Logger
	limiter *rate.Limiter
	now     func() time.Time

	mu         sync.Mutex
	suppressed int
	total      int
}

// Option configures an Auditor.
type Option func(*Auditor)

// WithClock replaces time.Now for the limiter.
func WithClock(now func() time.Time) Option {
	return func(a *Auditor) {
		a.now = now
	}
}

// New creates an Auditor allowing perSecond entries on average with
// bursts of up to burst entries. A non-positive perSecond disables
// throttling.
func New(l logger.Logger, perSecond float64, burst int, opts ...Option) *Auditor {
	if l == nil {
		l = logger.Default()
	}
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}

	a := &Auditor{
		logger:  l,
		limiter: rate.NewLimiter(limit, burst),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Hook returns the validation hook to register on a TokenGuard.
func (a *Auditor) Hook() service.ValidationHook {
	return a.record
}

func (a *Auditor) record(ctx context.Context, ev service.ValidationEvent) {
	if ev.Valid {
		return
	}

	a.mu.Lock()
	a.total++
	if !a.limiter.AllowN(a.now(), 1) {
		a.suppressed++
		a.mu.Unlock()
		return
	}
	dropped := a.suppressed
	a.suppressed = 0
	a.mu.Unlock()

	args := []any{"source", ev.Source}
	if id := logger.RequestIDFromContext(ctx); id != "" {
		args = append(args, "request_id", id)
	}
	if dropped > 0 {
		args = append(args, "suppressed", dropped)
	}
	a.logger.Warn("csrf check rejected", args...)
}

// Stats returns the number of rejected checks seen and the number not yet
// logged because of throttling.
func (a *Auditor) Stats() (total, suppressed int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.total, a.suppressed
}
