package market

import "strings"

// Static lookup data. The slices and maps below are never mutated; they are
// exposed only through the functions in this file.

// proofOfWork lists the base symbols of proof-of-work chains. A symbol is
// classified as proof-of-work when it contains any of them.
var proofOfWork = []string{"BTC", "BCH", "BSV", "LTC", "DOGE", "ETC", "ZEC", "XMR", "RVN", "KDA"}

type paletteEntry struct {
	key   string
	color string
}

// palette is checked in order, first substring match wins.
var palette = []paletteEntry{
	{"BTC", "#F7931A"},
	{"ETH", "#627EEA"},
	{"SOL", "#00FFA3"},
	{"BNB", "#F3BA2F"},
	{"ADA", "#0033AD"},
	{"DOGE", "#C2A633"},
	{"XRP", "#23292F"},
	{"DOT", "#E6007A"},
	{"AVAX", "#E84142"},
	{"MATIC", "#8247E5"},
	{"LINK", "#2A5ADA"},
	{"UNI", "#FF007A"},
	{"ATOM", "#2E3148"},
	{"LTC", "#345D9D"},
	{"NEAR", "#000000"},
}

var fullNames = map[string]string{
	"BTC":   "Bitcoin",
	"ETH":   "Ethereum",
	"SOL":   "Solana",
	"BNB":   "Binance Coin",
	"ADA":   "Cardano",
	"DOGE":  "Dogecoin",
	"XRP":   "Ripple",
	"DOT":   "Polkadot",
	"AVAX":  "Avalanche",
	"MATIC": "Polygon",
	"LINK":  "Chainlink",
	"UNI":   "Uniswap",
	"ATOM":  "Cosmos",
	"LTC":   "Litecoin",
	"NEAR":  "NEAR Protocol",
	"SHIB":  "Shiba Inu",
	"TRX":   "TRON",
	"FTM":   "Fantom",
	"ALGO":  "Algorand",
	"MANA":  "Decentraland",
	"SAND":  "The Sandbox",
	"AAVE":  "Aave",
	"CRO":   "Cronos",
	"EGLD":  "MultiversX",
	"HBAR":  "Hedera",
	"EOS":   "EOS",
	"CAKE":  "PancakeSwap",
	"XTZ":   "Tezos",
	"FIL":   "Filecoin",
	"VET":   "VeChain",
	"THETA": "Theta Network",
	"XLM":   "Stellar",
	"FLOW":  "Flow",
	"ICP":   "Internet Computer",
	"AXS":   "Axie Infinity",
	"NEO":   "NEO",
	"KCS":   "KuCoin Token",
	"MIOTA": "IOTA",
	"BTT":   "BitTorrent",
	"ONE":   "Harmony",
	"ZIL":   "Zilliqa",
	"DASH":  "Dash",
	"XMR":   "Monero",
	"ENJ":   "Enjin Coin",
	"GALA":  "Gala",
	"CHZ":   "Chiliz",
	"BAT":   "Basic Attention Token",
	"HOT":   "Holo",
	"ZEC":   "Zcash",
	"QTUM":  "Qtum",
}

// leveragedMarkers flag leveraged tokens on the exchange.
var leveragedMarkers = []string{"UP", "DOWN", "BEAR", "BULL"}

// IsProofOfWork reports whether symbol belongs to a proof-of-work chain.
func IsProofOfWork(symbol string) bool {
	s := strings.ToUpper(symbol)
	for _, coin := range proofOfWork {
		if strings.Contains(s, coin) {
			return true
		}
	}
	return false
}

// FullName returns the display name of an exchange base symbol, or the symbol
// itself when it is unknown.
func FullName(symbol string) string {
	if name, ok := fullNames[symbol]; ok {
		return name
	}
	return symbol
}

// IconURL returns the CryptoIcons URL of symbol.
func IconURL(symbol string) string {
	return "https://cryptoicons.org/api/icon/" + strings.ToLower(symbol) + "/64"
}

func isLeveraged(pair string) bool {
	for _, m := range leveragedMarkers {
		if strings.Contains(pair, m) {
			return true
		}
	}
	return false
}
