package command

import (
	"errors"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/csrfguard/pkg/crypto/adaptive"
)

// CookieCommand returns the cookie subcommand group. It seals and opens
// values the way the cookie token store does, using cookie.key and the
// configured parameter name as cookie name.
func CookieCommand() *cli.Command {
	return &cli.Command{
		Name:  "cookie",
		Usage: "Seal or open cookie-store token values",
		Subcommands: []*cli.Command{
			{
				Name:      "seal",
				Usage:     "Seal a token into a cookie value",
				ArgsUsage: "TOKEN",
				Action:    cookieSeal,
			},
			{
				Name:      "open",
				Usage:     "Open a sealed cookie value",
				ArgsUsage: "VALUE",
				Action:    cookieOpen,
			},
		},
	}
}

type cookieResult struct {
	Name      string `json:"name" yaml:"name"`
	Cipher    string `json:"cipher" yaml:"cipher"`
	Value     string `json:"value" yaml:"value"`
	Plaintext string `json:"plaintext,omitempty" yaml:"plaintext,omitempty"`
}

func cookieCipher(c *cli.Context) (*runtime, *adaptive.Cipher, error) {
	rt, err := runtimeFrom(c)
	if err != nil {
		return nil, nil, err
	}
	key := rt.cfg.Cookie.CookieKey()
	if key == nil {
		return nil, nil, errors.New("cookie.key is not configured")
	}
	ciph, err := adaptive.New(key)
	if err != nil {
		return nil, nil, err
	}
	return rt, ciph, nil
}

func cookieSeal(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return errors.New("exactly one TOKEN argument required")
	}
	rt, ciph, err := cookieCipher(c)
	if err != nil {
		return err
	}

	name := rt.cfg.CSRF.ParamName
	sealed, err := ciph.SealString(c.Args().First(), []byte(name))
	if err != nil {
		return err
	}
	return rt.print(c, cookieResult{Name: name, Cipher: string(ciph.Type()), Value: sealed})
}

func cookieOpen(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return errors.New("exactly one VALUE argument required")
	}
	rt, ciph, err := cookieCipher(c)
	if err != nil {
		return err
	}

	name := rt.cfg.CSRF.ParamName
	plain, err := ciph.OpenString(c.Args().First(), []byte(name))
	if err != nil {
		return err
	}
	return rt.print(c, cookieResult{
		Name:      name,
		Cipher:    string(ciph.Type()),
		Value:     c.Args().First(),
		Plaintext: plain,
	})
}
