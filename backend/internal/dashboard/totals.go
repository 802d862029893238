package dashboard

import (
	"math"
	"strconv"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/user/carbontracker/backend/internal/market"
	"github.com/user/carbontracker/backend/internal/models"
)

// Totals is the aggregate of a portfolio against one market snapshot.
type Totals struct {
	Value     decimal.Decimal // USD
	Footprint decimal.Decimal // kg CO₂
}

// Line is one holding joined with its market record.
type Line struct {
	Holding   models.Holding
	Price     float64
	Value     decimal.Decimal
	Footprint decimal.Decimal
	Known     bool // false when the symbol is absent from the snapshot
}

// PortfolioLines joins holdings with the snapshot by exact symbol. Holdings
// without a market record value as zero.
func PortfolioLines(holdings []models.Holding, list []models.Crypto) []Line {
	bySymbol := make(map[string]models.Crypto, len(list))
	for _, c := range list {
		if _, dup := bySymbol[c.Symbol]; !dup {
			bySymbol[c.Symbol] = c
		}
	}

	lines := make([]Line, 0, len(holdings))
	for _, h := range holdings {
		line := Line{Holding: h, Value: decimal.Zero, Footprint: decimal.Zero}
		if c, ok := bySymbol[h.Symbol]; ok {
			amount := decimal.NewFromFloat(h.Amount)
			line.Known = true
			line.Price = c.Price
			line.Value = amount.Mul(decimal.NewFromFloat(c.Price))
			line.Footprint = amount.Mul(decimal.NewFromFloat(market.ParseFootprint(c.CarbonFootprint)))
		}
		lines = append(lines, line)
	}
	return lines
}

// ComputeTotals sums value and footprint over the holdings.
func ComputeTotals(holdings []models.Holding, list []models.Crypto) Totals {
	t := Totals{Value: decimal.Zero, Footprint: decimal.Zero}
	for _, line := range PortfolioLines(holdings, list) {
		t.Value = t.Value.Add(line.Value)
		t.Footprint = t.Footprint.Add(line.Footprint)
	}
	return t
}

// FormatUSD renders an amount as dollars with grouping, e.g. $1,234.50.
func FormatUSD(amount decimal.Decimal) string {
	cur := money.GetCurrency(money.USD)
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// FormatPrice uses more decimals for cheap assets.
func FormatPrice(p float64) string {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		p = 0
	}
	fraction := 2
	switch {
	case p < 0.01:
		fraction = 6
	case p < 1:
		fraction = 4
	}
	return formatGrouped(decimal.NewFromFloat(p), fraction)
}

// FormatVolume renders a volume in millions with one decimal.
func FormatVolume(v float64) string {
	return strconv.FormatFloat(v/1e6, 'f', 1, 64) + "M"
}

// FormatChange renders a 24h change with its sign.
func FormatChange(c float64) string {
	s := strconv.FormatFloat(math.Abs(c), 'f', 2, 64) + "%"
	if c < 0 {
		return "-" + s
	}
	return "+" + s
}

// FormatKg renders a footprint total with at most one decimal.
func FormatKg(d decimal.Decimal) string {
	d = d.Round(1)
	fraction := 1
	if d.Equal(d.Truncate(0)) {
		fraction = 0
	}
	return formatGrouped(d, fraction) + " kg CO₂"
}

var co2Suffixes = []string{"", "Thousand", "Million", "Billion", "Trillion"}

// HumanCO2 scales x by thousands, e.g. 62014287 -> "62.01 Million CO₂".
func HumanCO2(x float64) string {
	magnitude := 0
	for math.Abs(x) >= 1000 && magnitude < len(co2Suffixes)-1 {
		magnitude++
		x /= 1000
	}
	s := strconv.FormatFloat(x, 'f', 2, 64)
	if co2Suffixes[magnitude] != "" {
		s += " " + co2Suffixes[magnitude]
	}
	return s + " CO₂"
}

// Impact buckets a footprint for display.
type Impact string

const (
	ImpactLow      Impact = "low"
	ImpactModerate Impact = "moderate"
	ImpactElevated Impact = "elevated"
	ImpactHigh     Impact = "high"
)

func ImpactClass(kg float64) Impact {
	switch {
	case kg > 1000:
		return ImpactHigh
	case kg > 500:
		return ImpactElevated
	case kg > 100:
		return ImpactModerate
	default:
		return ImpactLow
	}
}

// ImpactPercent maps a footprint onto a 0-100 log scale.
func ImpactPercent(kg float64) float64 {
	if kg <= 0 {
		return 0
	}
	return math.Min(100, math.Log10(kg+1)*25)
}

// formatGrouped renders d with fraction decimals and comma thousands.
func formatGrouped(d decimal.Decimal, fraction int) string {
	minor := d.Shift(int32(fraction)).Round(0)
	return money.NewFormatter(fraction, ".", ",", "", "1").Format(minor.IntPart())
}
