// Package cli is the terminal dashboard: subcommands that sign in, show the
// market table and edit the portfolio through the tracker API.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"github.com/user/carbontracker/backend/internal/client"
	"github.com/user/carbontracker/backend/internal/config"
)

// App carries what every command needs. It is filled after flag parsing.
type App struct {
	Config *config.Client
	Client *client.Client

	In  *bufio.Reader
	Out io.Writer
	Err io.Writer

	// Render turns markdown into terminal output.
	Render func(markdown string) (string, error)
}

// NewApp builds an App on the standard streams.
func NewApp(cfg *config.Client) *App {
	return &App{
		Config: cfg,
		Client: client.New(cfg.ServerURL, cfg.Timeout),
		In:     bufio.NewReader(os.Stdin),
		Out:    os.Stdout,
		Err:    os.Stderr,
		Render: renderTerminal,
	}
}

// Register adds the dashboard commands to c. app may be populated later, but
// before c.Execute.
func Register(c *subcommands.Commander, app *App) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")

	c.Register(&registerCmd{app: app}, "session")
	c.Register(&loginCmd{app: app}, "session")
	c.Register(&logoutCmd{app: app}, "session")
	c.Register(&whoamiCmd{app: app}, "session")

	c.Register(&marketCmd{app: app}, "market")
	c.Register(&watchCmd{app: app}, "market")

	c.Register(&portfolioCmd{app: app}, "portfolio")
	c.Register(&saveCmd{app: app}, "portfolio")
}

func (a *App) printMarkdown(markdown string) {
	out, err := a.Render(markdown)
	if err != nil {
		out = markdown
	}
	fmt.Fprint(a.Out, out)
}

func (a *App) fail(format string, args ...interface{}) subcommands.ExitStatus {
	fmt.Fprintf(a.Err, "Error: "+format+"\n", args...)
	return subcommands.ExitFailure
}

// signedIn loads the saved token into the client.
func (a *App) signedIn() error {
	token, err := loadToken(a.Config.TokenFile)
	if err != nil {
		return err
	}
	if token == "" {
		return errNotSignedIn
	}
	a.Client.Token = token
	return nil
}

var errNotSignedIn = errors.New("not signed in, run login first")

// apiError turns client errors into messages for the terminal.
func apiError(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, client.ErrUnauthorized) {
		return "session expired, run login again"
	}
	return err.Error()
}

func renderTerminal(markdown string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		return "", err
	}
	return r.Render(markdown)
}
