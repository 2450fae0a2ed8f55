package command

import (
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/csrfguard/internal/cli/output"
	"github.com/yndnr/csrfguard/internal/config"
	"github.com/yndnr/csrfguard/internal/infra/buildinfo"
	"github.com/yndnr/csrfguard/internal/telemetry/audit"
	"github.com/yndnr/csrfguard/internal/telemetry/logger"
	"github.com/yndnr/csrfguard/internal/telemetry/metric"
)

const (
	metaRuntime = "runtime"

	// Audit log throttle for rejected checks.
	auditPerSecond = 5
	auditBurst     = 20

	// ExitRejected is the exit status of a failed token check.
	ExitRejected = 1
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "csrfguard",
		Usage:   "Issue and verify CSRF tokens bound to a session",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			TokenCommand(),
			SessionCommand(),
			CookieCommand(),
			ConfigCommand(),
			VersionCommand(),
		},
		Metadata: map[string]any{},
		Before:   setup,
		After:    teardown,
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML configuration file",
			EnvVars: []string{"CSRFGUARD_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "data-dir",
			Aliases: []string{"d"},
			Usage:   "Badger data directory (implies --backend badger)",
		},
		&cli.StringFlag{
			Name:    "backend",
			Aliases: []string{"b"},
			Usage:   "Token storage backend: memory, badger",
		},
		&cli.StringFlag{
			Name:    "session",
			Aliases: []string{"s"},
			Usage:   "Session ID the token is bound to",
			EnvVars: []string{"CSRFGUARD_SESSION"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   "table",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Enable debug logging",
		},
		&cli.BoolFlag{
			Name:  "metrics",
			Usage: "Print csrfguard metrics to stderr on exit",
		},
	}
}

// flagOverrides maps global flags onto configuration keys.
func flagOverrides(c *cli.Context) map[string]any {
	overrides := make(map[string]any)
	if c.IsSet("data-dir") {
		overrides["storage.data_dir"] = c.String("data-dir")
		overrides["storage.backend"] = config.BackendBadger
	}
	if c.IsSet("backend") {
		overrides["storage.backend"] = c.String("backend")
	}
	if c.Bool("verbose") {
		overrides["log.level"] = "debug"
	}
	return overrides
}

func setup(c *cli.Context) error {
	format, err := output.ParseFormat(c.String("output"))
	if err != nil {
		return err
	}

	cfg, err := config.Load(c.String("config"), flagOverrides(c))
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: c.App.ErrWriter,
	})
	if err != nil {
		return err
	}
	logger.SetDefault(log)

	c.App.Metadata[metaRuntime] = &runtime{
		cfg:     cfg,
		log:     log,
		format:  format,
		metrics: metric.NewRegistry(),
		auditor: audit.New(log, auditPerSecond, auditBurst),
	}
	return nil
}

func teardown(c *cli.Context) error {
	rt, ok := c.App.Metadata[metaRuntime].(*runtime)
	if !ok {
		return nil
	}
	if c.Bool("metrics") {
		if err := writeMetrics(c.App.ErrWriter, rt.metrics.Gatherer()); err != nil {
			rt.log.Warn("write metrics failed", "error", err)
		}
	}
	return rt.close()
}

func runtimeFrom(c *cli.Context) (*runtime, error) {
	rt, ok := c.App.Metadata[metaRuntime].(*runtime)
	if !ok {
		return nil, fmt.Errorf("cli runtime not initialized")
	}
	return rt, nil
}

// writeMetrics writes the csrfguard_* families in the Prometheus text format.
func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}

	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, f := range families {
		if !strings.HasPrefix(f.GetName(), "csrfguard_") {
			continue
		}
		if err := enc.Encode(f); err != nil {
			return err
		}
	}
	return nil
}
