package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"go.uber.org/zap"

	"github.com/user/carbontracker/backend/internal/models"
)

// AggregatorConfig configures the market-cap aggregator adapter.
type AggregatorConfig struct {
	BaseURL string // e.g. https://api.coingecko.com
	PerPage int
	// FallbackPath is a JSON dataset in the aggregator's response format;
	// FallbackSelector is the JSONPath of the market array inside it.
	FallbackPath     string
	FallbackSelector string
	Timeout          time.Duration
}

// Aggregator turns the top assets by market cap into a snapshot.
type Aggregator struct {
	cfg    AggregatorConfig
	client *http.Client
	log    *zap.Logger
}

func NewAggregator(cfg AggregatorConfig, client *http.Client, log *zap.Logger) *Aggregator {
	if cfg.PerPage <= 0 {
		cfg.PerPage = 100
	}
	if cfg.FallbackSelector == "" {
		cfg.FallbackSelector = "$"
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Aggregator{cfg: cfg, client: client, log: log.Named("aggregator")}
}

type coinMarket struct {
	Symbol                   string  `json:"symbol"`
	Name                     string  `json:"name"`
	Image                    string  `json:"image"`
	CurrentPrice             float64 `json:"current_price"`
	PriceChangePercentage24h float64 `json:"price_change_percentage_24h"`
	TotalSupply              float64 `json:"total_supply"`
}

func (a *Aggregator) Name() string { return "aggregator" }

// Snapshot returns the live snapshot, then the configured dataset file, then
// the embedded dataset.
func (a *Aggregator) Snapshot(ctx context.Context) []models.Crypto {
	coins, err := a.fetch(ctx)
	if err == nil {
		return toCryptos(coins)
	}
	a.log.Warn("aggregator unavailable, using fallback dataset", zap.Error(err))

	if a.cfg.FallbackPath != "" {
		coins, err = a.loadFile(a.cfg.FallbackPath)
		if err == nil {
			return toCryptos(coins)
		}
		a.log.Warn("fallback dataset unreadable, using embedded copy",
			zap.String("path", a.cfg.FallbackPath), zap.Error(err))
	}

	coins, err = decodeDataset(embeddedMarkets, "$")
	if err != nil {
		// the embedded dataset is checked by tests
		a.log.Error("embedded dataset unreadable", zap.Error(err))
		return []models.Crypto{}
	}
	return toCryptos(coins)
}

func (a *Aggregator) fetch(ctx context.Context) ([]coinMarket, error) {
	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	q := url.Values{}
	q.Set("vs_currency", "usd")
	q.Set("order", "market_cap_desc")
	q.Set("per_page", strconv.Itoa(a.cfg.PerPage))
	q.Set("sparkline", "false")
	addr := strings.TrimRight(a.cfg.BaseURL, "/") + "/api/v3/coins/markets?" + q.Encode()

	var coins []coinMarket
	if err := getJSON(ctx, a.client, addr, &coins); err != nil {
		return nil, err
	}
	if len(coins) == 0 {
		return nil, errors.New("empty aggregator response")
	}
	return coins, nil
}

func (a *Aggregator) loadFile(path string) ([]coinMarket, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decodeDataset(data, a.cfg.FallbackSelector)
}

// decodeDataset selects the market array at selector in data.
func decodeDataset(data []byte, selector string) ([]coinMarket, error) {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}

	selected, err := jsonpath.Get(selector, doc)
	if err != nil {
		return nil, fmt.Errorf("select %q: %w", selector, err)
	}
	if _, ok := selected.([]interface{}); !ok {
		return nil, fmt.Errorf("select %q: not an array", selector)
	}

	raw, err := json.Marshal(selected)
	if err != nil {
		return nil, err
	}
	var coins []coinMarket
	if err := json.Unmarshal(raw, &coins); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	if len(coins) == 0 {
		return nil, errors.New("empty dataset")
	}
	return coins, nil
}

// toCryptos keeps the lower-case style of aggregator symbols in colors.
func toCryptos(coins []coinMarket) []models.Crypto {
	list := make([]models.Crypto, 0, len(coins))
	for _, c := range coins {
		list = append(list, models.Crypto{
			Name:            c.Name,
			Symbol:          c.Symbol,
			Price:           finite(c.CurrentPrice),
			Change:          finite(c.PriceChangePercentage24h),
			Volume:          finite(c.TotalSupply),
			CarbonFootprint: FormatFootprint(TransactionFootprint(c.Symbol)),
			Color:           strings.ToLower(Color(c.Symbol)),
			IconURL:         c.Image,
		})
	}
	return list
}
