package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/user/carbontracker/backend/internal/client"
	"github.com/user/carbontracker/backend/internal/dashboard"
	"github.com/user/carbontracker/backend/internal/models"
)

// tableFlags are the table controls shared by market and watch.
type tableFlags struct {
	source string
	query  string
	sort   string
	desc   bool
	page   int
	size   int
}

func (t *tableFlags) set(f *flag.FlagSet) {
	f.StringVar(&t.source, "source", client.SourceExchange, "Market data source (exchange, aggregator).")
	f.StringVar(&t.query, "q", "", "Only show cryptocurrencies whose name or symbol contains this text.")
	f.StringVar(&t.sort, "sort", string(dashboard.SortVolume), "Sort column (name, symbol, price, change, volume, carbonFootprint).")
	f.BoolVar(&t.desc, "desc", true, "Sort in descending order.")
	f.IntVar(&t.page, "page", 1, "Page to show.")
	f.IntVar(&t.size, "n", dashboard.DefaultPageSize, "Rows per page (5, 10, 20, 50, 100).")
}

func (t *tableFlags) state() (dashboard.State, error) {
	if t.source != client.SourceExchange && t.source != client.SourceAggregator {
		return dashboard.State{}, fmt.Errorf("unknown source %q", t.source)
	}
	key, ok := dashboard.ParseSortKey(t.sort)
	if !ok {
		return dashboard.State{}, fmt.Errorf("unknown sort column %q", t.sort)
	}

	st := dashboard.NewState()
	st.SetQuery(t.query)
	if !st.SetPageSize(t.size) {
		return dashboard.State{}, fmt.Errorf("invalid page size %d", t.size)
	}
	st.Key, st.Dir = key, dashboard.Ascending
	if t.desc {
		st.Dir = dashboard.Descending
	}
	st.SetPage(t.page)
	return st, nil
}

type marketCmd struct {
	app *App
	tableFlags
}

func (*marketCmd) Name() string     { return "market" }
func (*marketCmd) Synopsis() string { return "show cryptocurrency prices and carbon footprints" }
func (*marketCmd) Usage() string {
	return `tracker market [-source exchange|aggregator] [-q <text>] [-sort <column>] [-desc=false] [-page <n>] [-n <size>]

  Prints one page of the market table. The data comes live from the chosen
  source, or from built-in data when the source is unreachable.

Usage Examples:
$ tracker market -q bit -sort carbonFootprint
`
}

func (p *marketCmd) SetFlags(f *flag.FlagSet) { p.tableFlags.set(f) }

func (p *marketCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a := p.app
	st, err := p.state()
	if err != nil {
		fmt.Fprintf(a.Err, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	list, err := a.Client.Market(ctx, p.source)
	if err != nil {
		return a.fail("cannot load market data: %s", apiError(err))
	}

	a.printMarkdown(MarketMarkdown(p.source, dashboard.Compute(list, st), st))
	return subcommands.ExitSuccess
}

type watchCmd struct {
	app *App
	tableFlags
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "show the market table and refresh it periodically" }
func (*watchCmd) Usage() string {
	return `tracker watch [market flags]

  Like market, but reloads the data every refresh interval until interrupted
  or until you log out. Requires a signed in session. A failed reload keeps
  the previous table on screen.
`
}

func (p *watchCmd) SetFlags(f *flag.FlagSet) { p.tableFlags.set(f) }

func (p *watchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a := p.app
	st, err := p.state()
	if err != nil {
		fmt.Fprintf(a.Err, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	if err := a.signedIn(); err != nil {
		return a.fail("%v", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	signedOut := false
	r := dashboard.NewRefresher(func(ctx context.Context) ([]models.Crypto, error) {
		if err := a.signedIn(); errors.Is(err, errNotSignedIn) {
			signedOut = true
			cancel()
			return nil, err
		}
		return a.Client.Market(ctx, p.source)
	}, a.Config.RefreshInterval)
	first := true
	r.OnUpdate = func(list []models.Crypto) {
		// the page from the command line only applies to the first list
		if !first {
			st.ListChanged()
		}
		first = false
		a.printMarkdown(MarketMarkdown(p.source, dashboard.Compute(list, st), st))
	}
	r.OnError = func(err error) {
		fmt.Fprintf(a.Err, "Warning: refresh failed: %s\n", apiError(err))
	}

	r.Run(ctx)
	if signedOut {
		fmt.Fprintln(a.Out, "Signed out, stopped refreshing.")
	}
	return subcommands.ExitSuccess
}
