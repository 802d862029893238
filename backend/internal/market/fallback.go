package market

import (
	_ "embed"

	"github.com/user/carbontracker/backend/internal/models"
)

// embeddedMarkets is the last resort dataset of the aggregator, in the
// aggregator's own response format.
//
//go:embed data/markets.json
var embeddedMarkets []byte

var exchangeFallback = []struct {
	symbol, name          string
	price, change, volume float64
}{
	{"BTC", "Bitcoin", 65432.1, 2.34, 25000000000},
	{"ETH", "Ethereum", 3456.78, -1.23, 15000000000},
	{"SOL", "Solana", 123.45, 5.67, 5000000000},
	{"BNB", "Binance Coin", 567.89, 0.12, 3000000000},
	{"ADA", "Cardano", 0.45, -2.34, 2000000000},
	{"DOGE", "Dogecoin", 0.12, 10.45, 1500000000},
	{"XRP", "Ripple", 0.56, -0.78, 1200000000},
	{"DOT", "Polkadot", 6.78, 3.45, 900000000},
	{"AVAX", "Avalanche", 34.56, 7.89, 800000000},
	{"MATIC", "Polygon", 0.89, -4.56, 700000000},
	{"LINK", "Chainlink", 12.34, 3.21, 650000000},
	{"UNI", "Uniswap", 5.67, -2.1, 600000000},
	{"ATOM", "Cosmos", 8.9, 1.23, 550000000},
	{"LTC", "Litecoin", 78.9, -0.45, 500000000},
	{"XLM", "Stellar", 0.12, 0.78, 450000000},
}

// ExchangeFallback returns the static snapshot served when the exchange
// cannot be reached. A new slice is returned on every call.
func ExchangeFallback() []models.Crypto {
	list := make([]models.Crypto, 0, len(exchangeFallback))
	for _, c := range exchangeFallback {
		list = append(list, newExchangeCrypto(c.symbol, c.name, c.price, c.change, c.volume))
	}
	return list
}
