package market

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/user/carbontracker/backend/internal/models"
)

// ExchangeConfig configures the exchange ticker adapter.
type ExchangeConfig struct {
	BaseURL string // e.g. https://api.binance.com
	Quote   string // quote asset the pairs are filtered on, e.g. USDT
	Timeout time.Duration
}

// Exchange turns 24h exchange ticker statistics into a snapshot.
type Exchange struct {
	cfg    ExchangeConfig
	client *http.Client
	log    *zap.Logger
}

func NewExchange(cfg ExchangeConfig, client *http.Client, log *zap.Logger) *Exchange {
	if cfg.Quote == "" {
		cfg.Quote = "USDT"
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Exchange{cfg: cfg, client: client, log: log.Named("exchange")}
}

type ticker24h struct {
	Symbol             string `json:"symbol"`
	LastPrice          string `json:"lastPrice"`
	PriceChangePercent string `json:"priceChangePercent"`
	QuoteVolume        string `json:"quoteVolume"`
}

func (e *Exchange) Name() string { return "exchange" }

// Snapshot returns the live snapshot, or the built-in fallback when the
// exchange is unreachable or returns nothing usable.
func (e *Exchange) Snapshot(ctx context.Context) []models.Crypto {
	list, err := e.Fetch(ctx)
	if err != nil {
		e.log.Warn("exchange unavailable, using fallback data", zap.Error(err))
		return ExchangeFallback()
	}
	return list
}

// Fetch queries the exchange without fallback.
func (e *Exchange) Fetch(ctx context.Context) ([]models.Crypto, error) {
	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	var tickers []ticker24h
	if err := getJSON(ctx, e.client, strings.TrimRight(e.cfg.BaseURL, "/")+"/api/v3/ticker/24hr", &tickers); err != nil {
		return nil, err
	}

	list := e.normalize(tickers)
	if len(list) == 0 {
		return nil, errors.New("no " + e.cfg.Quote + " pairs in exchange response")
	}
	return list, nil
}

type pair struct {
	base   string
	price  float64
	change float64
	volume float64
}

func (e *Exchange) normalize(tickers []ticker24h) []models.Crypto {
	pairs := make([]pair, 0, len(tickers))
	for _, t := range tickers {
		if !strings.HasSuffix(t.Symbol, e.cfg.Quote) || isLeveraged(t.Symbol) {
			continue
		}
		base := strings.TrimSuffix(t.Symbol, e.cfg.Quote)
		if base == "" {
			continue
		}
		pairs = append(pairs, pair{
			base:   base,
			price:  parseNumber(t.LastPrice),
			change: parseNumber(t.PriceChangePercent),
			volume: parseNumber(t.QuoteVolume),
		})
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return finite(pairs[i].volume) > finite(pairs[j].volume)
	})

	list := make([]models.Crypto, 0, len(pairs))
	for _, p := range pairs {
		list = append(list, newExchangeCrypto(p.base, FullName(p.base), p.price, p.change, p.volume))
	}
	return list
}

func newExchangeCrypto(symbol, name string, price, change, volume float64) models.Crypto {
	price, volume = finite(price), finite(volume)
	marketCap := ApproxMarketCap(price, volume, change)

	return models.Crypto{
		Name:            name,
		Symbol:          symbol,
		Price:           price,
		Change:          finite(change),
		Volume:          volume,
		CarbonFootprint: FormatFootprint(finite(EstimateFootprint(symbol, volume, marketCap))),
		Color:           Color(symbol),
		IconURL:         IconURL(symbol),
	}
}
