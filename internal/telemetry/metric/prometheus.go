package metric

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yndnr/csrfguard/internal/core/service"
)

const namespace = "csrfguard"

// Check results reported in the result label.
const (
	ResultValid    = "valid"
	ResultRejected = "rejected"
	ResultBypassed = "bypassed"
)

// Registry holds the csrfguard collectors.
type Registry struct {
	reg *prometheus.Registry

	TokensGenerated prometheus.Counter
	TokensRemoved   prometheus.Counter
	Checks          *prometheus.CounterVec
}

// NewRegistry creates a registry with the csrfguard collectors and the
// standard Go and process collectors.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		TokensGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_generated_total",
			Help:      "Tokens generated and stored.",
		}),
		TokensRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_removed_total",
			Help:      "Tokens removed from a store.",
		}),
		Checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checks_total",
			Help:      "Completed token checks by result and token source.",
		}, []string{"result", "source"}),
	}

	r.reg.MustRegister(
		r.TokensGenerated,
		r.TokensRemoved,
		r.Checks,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Registerer returns the underlying registerer so other components (the
// Badger engine) can add their collectors.
func (r *Registry) Registerer() prometheus.Registerer {
	return r.reg
}

// Gatherer returns the underlying gatherer.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler returns an HTTP handler serving the registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// ValidationHook returns a hook counting every check.
func (r *Registry) ValidationHook() service.ValidationHook {
	return func(_ context.Context, ev service.ValidationEvent) {
		r.Checks.WithLabelValues(result(ev), ev.Source).Inc()
	}
}

func result(ev service.ValidationEvent) string {
	switch {
	case ev.Bypassed:
		return ResultBypassed
	case ev.Valid:
		return ResultValid
	default:
		return ResultRejected
	}
}

// InstrumentStore wraps store so successful writes and removals are
// counted.
func (r *Registry) InstrumentStore(store service.TokenStore) service.TokenStore {
	return &instrumentedStore{TokenStore: store, r: r}
}

type instrumentedStore struct {
	service.TokenStore
	r *Registry
}

func (s *instrumentedStore) Add(ctx context.Context, key, value string) error {
	if err := s.TokenStore.Add(ctx, key, value); err != nil {
		return err
	}
	s.r.TokensGenerated.Inc()
	return nil
}

func (s *instrumentedStore) Remove(ctx context.Context, key string) error {
	if err := s.TokenStore.Remove(ctx, key); err != nil {
		return err
	}
	s.r.TokensRemoved.Inc()
	return nil
}
