package command

import (
	"context"
	"net/http"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/csrfguard/internal/core/domain"
	"github.com/yndnr/csrfguard/internal/core/service"
	"github.com/yndnr/csrfguard/internal/storage"
	"github.com/yndnr/csrfguard/internal/telemetry/logger"
)

// TokenCommand returns the token subcommand group.
func TokenCommand() *cli.Command {
	return &cli.Command{
		Name:    "token",
		Aliases: []string{"tok"},
		Usage:   "Manage the CSRF token of a session",
		Subcommands: []*cli.Command{
			{
				Name:    "generate",
				Aliases: []string{"gen"},
				Usage:   "Generate a new token, replacing the current one",
				Action:  tokenGenerate,
			},
			{
				Name:  "get",
				Usage: "Print the current token, generating one if none is stored",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "regenerate",
						Aliases: []string{"r"},
						Usage:   "Replace the stored token",
					},
				},
				Action: tokenGet,
			},
			{
				Name:      "check",
				Usage:     "Validate a submitted token against the stored one",
				ArgsUsage: "[TOKEN]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "header",
						Aliases: []string{"H"},
						Usage:   "Value of the CSRF request header, used when TOKEN is empty",
					},
					&cli.BoolFlag{
						Name:  "from-env",
						Usage: "Read request headers from HTTP_* environment variables (CGI)",
					},
				},
				Action: tokenCheck,
			},
			{
				Name:   "exists",
				Usage:  "Report whether a token is stored",
				Action: tokenExists,
			},
			{
				Name:    "remove",
				Aliases: []string{"rm"},
				Usage:   "Remove the stored token",
				Action:  tokenRemove,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List stored tokens (all sessions unless --session is set)",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "reveal",
						Usage: "Print token values unmasked",
					},
				},
				Action: tokenList,
			},
		},
	}
}

type tokenResult struct {
	SessionID string `json:"session_id" yaml:"session_id"`
	Param     string `json:"param" yaml:"param"`
	Token     string `json:"token" yaml:"token"`
}

type checkResult struct {
	SessionID string `json:"session_id" yaml:"session_id"`
	Param     string `json:"param" yaml:"param"`
	Valid     bool   `json:"valid" yaml:"valid"`
	Bypassed  bool   `json:"bypassed" yaml:"bypassed"`
	Source    string `json:"source" yaml:"source"`
}

type existsResult struct {
	SessionID string `json:"session_id" yaml:"session_id"`
	Param     string `json:"param" yaml:"param"`
	Exists    bool   `json:"exists" yaml:"exists"`
}

func tokenGenerate(c *cli.Context) error {
	return issueToken(c, func(ctx context.Context, g *service.TokenGuard) (string, error) {
		return g.Generate(ctx)
	})
}

func tokenGet(c *cli.Context) error {
	regenerate := c.Bool("regenerate")
	return issueToken(c, func(ctx context.Context, g *service.TokenGuard) (string, error) {
		return g.Get(ctx, regenerate)
	})
}

func issueToken(c *cli.Context, issue func(context.Context, *service.TokenGuard) (string, error)) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}
	g, sessionID, err := rt.guard(c)
	if err != nil {
		return err
	}

	tok, err := issue(c.Context, g)
	if err != nil {
		return err
	}
	return rt.print(c, tokenResult{SessionID: sessionID, Param: g.ParamName(), Token: tok})
}

func tokenCheck(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}
	g, sessionID, err := rt.guard(c)
	if err != nil {
		return err
	}

	var header http.Header
	if c.Bool("from-env") {
		header = domain.HeaderFromEnv(os.Environ())
	}
	if v := c.String("header"); v != "" {
		if header == nil {
			header = make(http.Header)
		}
		header.Set(g.HeaderName(), v)
	}

	var ev service.ValidationEvent
	g.OnValidate(func(_ context.Context, e service.ValidationEvent) {
		ev = e
	})

	valid, err := g.Check(c.Context, c.Args().First(), header)
	if err != nil {
		return err
	}

	if err := rt.print(c, checkResult{
		SessionID: sessionID,
		Param:     g.ParamName(),
		Valid:     valid,
		Bypassed:  ev.Bypassed,
		Source:    ev.Source,
	}); err != nil {
		return err
	}
	if !valid {
		return cli.Exit("csrf token rejected", ExitRejected)
	}
	return nil
}

func tokenExists(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}
	g, sessionID, err := rt.guard(c)
	if err != nil {
		return err
	}

	ok, err := g.Exists(c.Context)
	if err != nil {
		return err
	}
	return rt.print(c, existsResult{SessionID: sessionID, Param: g.ParamName(), Exists: ok})
}

func tokenRemove(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}
	g, sessionID, err := rt.guard(c)
	if err != nil {
		return err
	}

	if err := g.Remove(c.Context); err != nil {
		return err
	}
	return rt.print(c, existsResult{SessionID: sessionID, Param: g.ParamName(), Exists: false})
}

func tokenList(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}
	engine, err := rt.engine()
	if err != nil {
		return err
	}

	only := c.String("session")
	reveal := c.Bool("reveal")

	entries := []storage.Entry{}
	err = storage.ScanSessions(c.Context, engine, func(e storage.Entry) bool {
		if only != "" && e.SessionID != only {
			return true
		}
		if !reveal {
			e.Value = logger.RedactString(e.Value)
		}
		entries = append(entries, e)
		return true
	})
	if err != nil {
		return err
	}
	return rt.print(c, entries)
}
