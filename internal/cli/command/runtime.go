package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/csrfguard/internal/cli/output"
	"github.com/yndnr/csrfguard/internal/config"
	"github.com/yndnr/csrfguard/internal/core/domain"
	"github.com/yndnr/csrfguard/internal/core/service"
	"github.com/yndnr/csrfguard/internal/storage"
	"github.com/yndnr/csrfguard/internal/storage/memory"
	"github.com/yndnr/csrfguard/internal/telemetry/audit"
	"github.com/yndnr/csrfguard/internal/telemetry/logger"
	"github.com/yndnr/csrfguard/internal/telemetry/metric"
	"github.com/yndnr/csrfguard/pkg/token"
)

// runtime holds what commands share for one invocation.
type runtime struct {
	cfg     *config.Config
	log     logger.Logger
	format  output.Format
	metrics *metric.Registry
	auditor *audit.Auditor

	kv storage.KVEngine
}

// engine opens the configured backend on first use.
func (rt *runtime) engine() (storage.KVEngine, error) {
	if rt.kv != nil {
		return rt.kv, nil
	}

	switch rt.cfg.Storage.Backend {
	case config.BackendBadger:
		kvCfg := storage.DefaultKVConfig(rt.cfg.Storage.DataDir)
		kvCfg.Badger.GCInterval = rt.cfg.Storage.GCInterval

		e, err := storage.NewBadgerEngine(kvCfg, logger.Slog(rt.log))
		if err != nil {
			return nil, err
		}
		e.RegisterMetrics(rt.metrics.Registerer())
		rt.kv = e
	default:
		rt.kv = memory.New()
	}
	return rt.kv, nil
}

// guard builds a TokenGuard over the session selected with --session.
func (rt *runtime) guard(c *cli.Context) (*service.TokenGuard, string, error) {
	sessionID := c.String("session")
	if sessionID == "" {
		return nil, "", domain.ErrMissingSession.WithDetails("pass --session or set CSRFGUARD_SESSION")
	}

	engine, err := rt.engine()
	if err != nil {
		return nil, "", err
	}
	store, err := storage.NewSessionStore(engine, sessionID, rt.cfg.Storage.TokenTTL)
	if err != nil {
		return nil, "", err
	}
	source, err := token.NewSource(rt.cfg.CSRF.TokenLength)
	if err != nil {
		return nil, "", domain.ErrInvalidTokenLength.WithCause(err)
	}

	g, err := service.NewTokenGuard(rt.metrics.InstrumentStore(store), source,
		service.WithValidation(rt.cfg.CSRF.Enabled),
		service.WithParamName(rt.cfg.CSRF.ParamName),
		service.WithHeaderName(rt.cfg.CSRF.HeaderName),
		service.WithLogger(rt.log.With("session", sessionID)),
		service.WithHooks(rt.metrics.ValidationHook(), rt.auditor.Hook()),
	)
	if err != nil {
		return nil, "", err
	}
	return g, sessionID, nil
}

// print renders data in the selected output format.
func (rt *runtime) print(c *cli.Context, data any) error {
	return output.NewFormatter(rt.format).Format(c.App.Writer, data)
}

func (rt *runtime) close() error {
	if rt.kv == nil {
		return nil
	}
	err := rt.kv.Close()
	rt.kv = nil
	return err
}
