package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type registerCmd struct {
	app   *App
	name  string
	email string
}

func (*registerCmd) Name() string     { return "register" }
func (*registerCmd) Synopsis() string { return "create an account" }
func (*registerCmd) Usage() string {
	return `tracker register [-name <name>] [-email <email>]

  Creates an account on the tracker server. Missing values are prompted for,
  the password is always read from the terminal.
`
}

func (p *registerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.name, "name", "", "Display name.")
	f.StringVar(&p.email, "email", "", "Email address used to sign in.")
}

func (p *registerCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a := p.app
	var err error
	if p.name == "" {
		if p.name, err = prompt(a.In, a.Out, "Name"); err != nil {
			return a.fail("%v", err)
		}
	}
	if p.email == "" {
		if p.email, err = prompt(a.In, a.Out, "Email"); err != nil {
			return a.fail("%v", err)
		}
	}
	password, err := promptPassword(a.Out)
	if err != nil {
		return a.fail("%v", err)
	}

	identity, err := a.Client.Register(ctx, p.name, p.email, password)
	if err != nil {
		return a.fail("%s", apiError(err))
	}

	fmt.Fprintf(a.Out, "Account created for %s <%s>. Run login to sign in.\n", identity.Name, identity.Email)
	return subcommands.ExitSuccess
}

type loginCmd struct {
	app   *App
	email string
}

func (*loginCmd) Name() string     { return "login" }
func (*loginCmd) Synopsis() string { return "sign in and remember the session" }
func (*loginCmd) Usage() string {
	return `tracker login [-email <email>]

  Signs in and stores the session token in the token file, so that later
  commands run as the signed in user.
`
}

func (p *loginCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.email, "email", "", "Email address.")
}

func (p *loginCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a := p.app
	var err error
	if p.email == "" {
		if p.email, err = prompt(a.In, a.Out, "Email"); err != nil {
			return a.fail("%v", err)
		}
	}
	password, err := promptPassword(a.Out)
	if err != nil {
		return a.fail("%v", err)
	}

	session, err := a.Client.Login(ctx, p.email, password)
	if err != nil {
		return a.fail("%s", apiError(err))
	}
	if err := saveToken(a.Config.TokenFile, session.Token); err != nil {
		return a.fail("cannot save session: %v", err)
	}

	fmt.Fprintf(a.Out, "Signed in as %s <%s> until %s.\n",
		session.User.Name, session.User.Email, session.ExpiresAt.Local().Format("2006-01-02 15:04"))
	return subcommands.ExitSuccess
}

type logoutCmd struct {
	app *App
}

func (*logoutCmd) Name() string     { return "logout" }
func (*logoutCmd) Synopsis() string { return "forget the saved session" }
func (*logoutCmd) Usage() string {
	return `tracker logout

  Removes the saved session token.
`
}

func (*logoutCmd) SetFlags(*flag.FlagSet) {}

func (p *logoutCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := removeToken(p.app.Config.TokenFile); err != nil {
		return p.app.fail("%v", err)
	}
	fmt.Fprintln(p.app.Out, "Signed out.")
	return subcommands.ExitSuccess
}

type whoamiCmd struct {
	app *App
}

func (*whoamiCmd) Name() string     { return "whoami" }
func (*whoamiCmd) Synopsis() string { return "show the signed in user" }
func (*whoamiCmd) Usage() string {
	return `tracker whoami

  Prints the user of the saved session, as seen by the server.
`
}

func (*whoamiCmd) SetFlags(*flag.FlagSet) {}

func (p *whoamiCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a := p.app
	if err := a.signedIn(); err != nil {
		return a.fail("%v", err)
	}

	identity, err := a.Client.Session(ctx)
	if err != nil {
		return a.fail("%s", apiError(err))
	}
	if identity == nil {
		return a.fail("session expired, run login again")
	}

	fmt.Fprintf(a.Out, "%s <%s>\n", identity.Name, identity.Email)
	return subcommands.ExitSuccess
}
