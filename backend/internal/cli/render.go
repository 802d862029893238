package cli

import (
	"bytes"
	"fmt"
	"strconv"

	md "github.com/nao1215/markdown"

	"github.com/user/carbontracker/backend/internal/dashboard"
	"github.com/user/carbontracker/backend/internal/market"
	"github.com/user/carbontracker/backend/internal/models"
)

// MarketMarkdown renders one page of the market table.
func MarketMarkdown(source string, page dashboard.Page, st dashboard.State) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Market (%s)", source))
	if st.Query != "" {
		doc.PlainText(fmt.Sprintf("Search: %s", md.Bold(st.Query)))
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignLeft,
		},
		Header: []string{"Name", "Symbol", "Price ($)", "Change", "Volume", "Carbon footprint", "Impact"},
		Rows:   [][]string{},
	}
	for _, c := range page.Items {
		kg := market.ParseFootprint(c.CarbonFootprint)
		table.Rows = append(table.Rows, []string{
			c.Name,
			c.Symbol,
			dashboard.FormatPrice(c.Price),
			dashboard.FormatChange(c.Change),
			dashboard.FormatVolume(c.Volume),
			dashboard.HumanCO2(kg),
			string(dashboard.ImpactClass(kg)),
		})
	}
	doc.Table(table)

	if page.Total == 0 {
		doc.PlainText("No cryptocurrency matches the search.")
	} else {
		doc.PlainText(fmt.Sprintf("Showing %d-%d of %d, page %d/%d, sorted by %s %s.",
			page.Start+1, page.End, page.Total, page.Page, page.TotalPages, st.Key, st.Dir))
	}

	return doc.String()
}

// PortfolioMarkdown renders the holdings valued against list.
func PortfolioMarkdown(holdings []models.Holding, list []models.Crypto) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Portfolio")
	if len(holdings) == 0 {
		doc.PlainText("The portfolio is empty. Add holdings with save SYMBOL=AMOUNT.")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignLeft,
		},
		Header: []string{"Symbol", "Amount", "Price ($)", "Value", "Carbon footprint", "ID"},
		Rows:   [][]string{},
	}
	for _, line := range dashboard.PortfolioLines(holdings, list) {
		price, footprint := "n/a", "n/a"
		if line.Known {
			price = dashboard.FormatPrice(line.Price)
			footprint = dashboard.FormatKg(line.Footprint)
		}
		table.Rows = append(table.Rows, []string{
			line.Holding.Symbol,
			strconv.FormatFloat(line.Holding.Amount, 'f', -1, 64),
			price,
			dashboard.FormatUSD(line.Value),
			footprint,
			line.Holding.ID,
		})
	}
	doc.Table(table)

	totals := dashboard.ComputeTotals(holdings, list)
	doc.H2("Totals")
	doc.PlainText(fmt.Sprintf("Total value: %s", md.Bold(dashboard.FormatUSD(totals.Value))))
	doc.PlainText(fmt.Sprintf("Carbon footprint: %s", md.Bold(dashboard.FormatKg(totals.Footprint))))

	kg := totals.Footprint.InexactFloat64()
	doc.PlainText(fmt.Sprintf("Impact: %s (%.0f%%)", dashboard.ImpactClass(kg), dashboard.ImpactPercent(kg)))

	return doc.String()
}
