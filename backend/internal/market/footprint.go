package market

import (
	"math"
	"strconv"
	"strings"
)

const (
	// Network consumption in TWh per year.
	powConsumptionTWh = 174.0
	posConsumptionTWh = 5.88
	// Grid intensity in g CO₂ per kWh.
	gramsPerKWh = 200.0

	// Per transaction footprints used by the aggregator, in kg.
	powTransactionKg = 668.74
	posTransactionKg = 0.01

	footprintUnit = "kg CO₂"
)

// EstimateFootprint scales the yearly network emissions of symbol by the
// logarithms of traded volume and market cap.
func EstimateFootprint(symbol string, volume, marketCap float64) float64 {
	consumption := posConsumptionTWh
	if IsProofOfWork(symbol) {
		consumption = powConsumptionTWh
	}
	kWh := consumption * 1_000_000
	kg := kWh * gramsPerKWh / 1000

	volumeFactor := math.Log10(volume+1) / 10
	marketCapFactor := math.Log10(marketCap+1) / 20

	return math.Round(kg * (volumeFactor + marketCapFactor))
}

// TransactionFootprint is the fixed per transaction footprint of symbol.
func TransactionFootprint(symbol string) float64 {
	if IsProofOfWork(symbol) {
		return powTransactionKg
	}
	return posTransactionKg
}

// FormatFootprint renders kg as "<kg> kg CO₂".
func FormatFootprint(kg float64) string {
	return strconv.FormatFloat(kg, 'f', -1, 64) + " " + footprintUnit
}

// ParseFootprint returns the leading number of a footprint string, 0 when
// there is none.
func ParseFootprint(s string) float64 {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// ApproxMarketCap derives a market cap from price, traded volume and the 24h
// change. A zero or missing change counts as 1 and the divisor is never below 0.01.
func ApproxMarketCap(price, volume, changePercent float64) float64 {
	change := changePercent
	if change == 0 || math.IsNaN(change) {
		change = 1
	}
	return price * volume / math.Max(0.01, math.Abs(change))
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func parseNumber(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
