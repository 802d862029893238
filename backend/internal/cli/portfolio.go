package cli

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/subcommands"

	"github.com/user/carbontracker/backend/internal/client"
	"github.com/user/carbontracker/backend/internal/dashboard"
)

type portfolioCmd struct {
	app    *App
	source string
}

func (*portfolioCmd) Name() string     { return "portfolio" }
func (*portfolioCmd) Synopsis() string { return "show the saved portfolio with its value and carbon footprint" }
func (*portfolioCmd) Usage() string {
	return `tracker portfolio [-source exchange|aggregator]

  Prints the saved holdings valued at the current market prices. Holdings
  whose symbol is not in the market data count as zero.
`
}

func (p *portfolioCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.source, "source", client.SourceExchange, "Market data source used for prices.")
}

func (p *portfolioCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a := p.app
	if err := a.signedIn(); err != nil {
		return a.fail("%v", err)
	}

	holdings, err := a.Client.Portfolio(ctx)
	if err != nil {
		return a.fail("cannot load portfolio: %s", apiError(err))
	}
	list, err := a.Client.Market(ctx, p.source)
	if err != nil {
		return a.fail("cannot load market data: %s", apiError(err))
	}

	a.printMarkdown(PortfolioMarkdown(holdings, list))
	return subcommands.ExitSuccess
}

type saveCmd struct {
	app    *App
	source string
	remove string
	clear  bool
	now    func() time.Time
}

func (*saveCmd) Name() string     { return "save" }
func (*saveCmd) Synopsis() string { return "add or remove holdings and save the portfolio" }
func (*saveCmd) Usage() string {
	return `tracker save [-clear] [-rm <id,id...>] [SYMBOL=AMOUNT...]

  Edits the saved portfolio and stores it again as a whole. Each SYMBOL=AMOUNT
  adds a holding; the symbol must be listed by the market source and the
  amount must be positive. -rm removes holdings by id, -clear starts from an
  empty portfolio.

Usage Examples:
$ tracker save BTC=0.5 ETH=2
$ tracker save -rm BTC-1700000000000
`
}

func (p *saveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.source, "source", client.SourceExchange, "Market data source the symbols are checked against.")
	f.StringVar(&p.remove, "rm", "", "Comma separated ids of holdings to remove.")
	f.BoolVar(&p.clear, "clear", false, "Drop every saved holding first.")
}

func (p *saveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a := p.app
	if f.NArg() == 0 && p.remove == "" && !p.clear {
		fmt.Fprint(a.Err, p.Usage())
		return subcommands.ExitUsageError
	}
	if err := a.signedIn(); err != nil {
		return a.fail("%v", err)
	}

	var form dashboard.Form
	if !p.clear {
		holdings, err := a.Client.Portfolio(ctx)
		if err != nil {
			return a.fail("cannot load portfolio: %s", apiError(err))
		}
		form.Items = holdings
	}

	for _, id := range strings.Split(p.remove, ",") {
		if id = strings.TrimSpace(id); id == "" {
			continue
		}
		if !form.Remove(id) {
			return a.fail("no holding with id %s", id)
		}
	}

	list, err := a.Client.Market(ctx, p.source)
	if err != nil {
		return a.fail("cannot load market data: %s", apiError(err))
	}

	now := time.Now
	if p.now != nil {
		now = p.now
	}
	for i, arg := range f.Args() {
		symbol, amount, err := parseHolding(arg)
		if err != nil {
			return a.fail("%v", err)
		}
		// ids are SYMBOL-<millis>, keep them distinct within one invocation
		if _, err := form.Add(symbol, amount, list, now().Add(time.Duration(i)*time.Millisecond)); err != nil {
			return a.fail("%s: %v", arg, err)
		}
	}

	if err := a.Client.SavePortfolio(ctx, form.Items); err != nil {
		return a.fail("cannot save portfolio: %s", apiError(err))
	}

	fmt.Fprintf(a.Out, "Portfolio saved with %d holdings.\n", len(form.Items))
	a.printMarkdown(PortfolioMarkdown(form.Items, list))
	return subcommands.ExitSuccess
}

// parseHolding reads SYMBOL=AMOUNT. The symbol is kept as typed since the
// sources differ in case.
func parseHolding(arg string) (string, float64, error) {
	symbol, amountStr, ok := strings.Cut(arg, "=")
	if !ok {
		return "", 0, fmt.Errorf("%q: expected SYMBOL=AMOUNT", arg)
	}
	amount, err := strconv.ParseFloat(strings.TrimSpace(amountStr), 64)
	if err != nil {
		return "", 0, fmt.Errorf("%q: invalid amount", arg)
	}
	return strings.TrimSpace(symbol), amount, nil
}
