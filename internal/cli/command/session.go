package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/csrfguard/internal/core/domain"
)

// SessionCommand returns the session subcommand group.
func SessionCommand() *cli.Command {
	return &cli.Command{
		Name:    "session",
		Aliases: []string{"sess"},
		Usage:   "Session helpers",
		Subcommands: []*cli.Command{
			{
				Name:  "new",
				Usage: "Print a fresh session ID",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "with-token",
						Aliases: []string{"t"},
						Usage:   "Also generate a token for the new session",
					},
				},
				Action: sessionNew,
			},
		},
	}
}

type sessionResult struct {
	SessionID string `json:"session_id" yaml:"session_id"`
	Token     string `json:"token,omitempty" yaml:"token,omitempty"`
}

func sessionNew(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}

	id, err := domain.NewSessionID()
	if err != nil {
		return err
	}
	result := sessionResult{SessionID: id}

	if c.Bool("with-token") {
		if err := c.Set("session", id); err != nil {
			return err
		}
		g, _, err := rt.guard(c)
		if err != nil {
			return err
		}
		if result.Token, err = g.Generate(c.Context); err != nil {
			return err
		}
	}

	return rt.print(c, result)
}
