package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/damon-houk/lkr-exchange-tools/internal/domain/entity"
	"github.com/damon-houk/lkr-exchange-tools/internal/domain/service"
	"github.com/damon-houk/lkr-exchange-tools/internal/infrastructure/logger"
)

const (
	// DefaultExchangeRateAPIURL returns mid-market quotes for a base currency at <url>/<BASE>
	DefaultExchangeRateAPIURL = "https://api.exchangerate-api.com/v4/latest"

	// DefaultLocalCurrency is the pivot currency all quotes are expressed in
	DefaultLocalCurrency = "LKR"

	// DefaultSpread is the synthetic half-spread applied around the mid rate
	DefaultSpread = 0.02
)

// DefaultAllowedCurrencies are the codes kept from the fallback response
var DefaultAllowedCurrencies = []string{
	"USD", "EUR", "GBP", "JPY", "AUD", "CAD", "CHF", "CNY", "SGD", "INR", "AED", "SAR",
}

// ExchangeRateAPIConfig configures the fallback rates client
type ExchangeRateAPIConfig struct {
	BaseURL           string
	LocalCurrency     string
	AllowedCurrencies []string
	Spread            float64
	Timeout           time.Duration
}

// ExchangeRateAPIClient builds a rate table from a public mid-market API
type ExchangeRateAPIClient struct {
	baseURL       string
	localCurrency string
	allowed       []string
	spread        float64
	httpClient    *http.Client
	logger        logger.Logger
	now           func() time.Time
}

// ExchangeRateAPIResponse represents the response structure of the rates API
type ExchangeRateAPIResponse struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

// NewExchangeRateAPIClient creates a new fallback client
func NewExchangeRateAPIClient(cfg ExchangeRateAPIConfig, httpClient *http.Client, log logger.Logger) *ExchangeRateAPIClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultExchangeRateAPIURL
	}
	if cfg.LocalCurrency == "" {
		cfg.LocalCurrency = DefaultLocalCurrency
	}
	if len(cfg.AllowedCurrencies) == 0 {
		cfg.AllowedCurrencies = DefaultAllowedCurrencies
	}
	if cfg.Spread <= 0 || cfg.Spread >= 1 {
		cfg.Spread = DefaultSpread
	}
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &ExchangeRateAPIClient{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		localCurrency: entity.NormalizeCode(cfg.LocalCurrency),
		allowed:       cfg.AllowedCurrencies,
		spread:        cfg.Spread,
		httpClient:    newHTTPClient(httpClient, cfg.Timeout),
		logger:        log,
		now:           time.Now,
	}
}

// Name identifies the client in logs and metrics
func (c *ExchangeRateAPIClient) Name() string { return "exchange_rate_api" }

// FetchRates retrieves mid rates quoted against the local currency and inverts them
func (c *ExchangeRateAPIClient) FetchRates(ctx context.Context) (entity.RateTable, error) {
	reqURL := c.baseURL + "/" + url.PathEscape(c.localCurrency)

	body, err := getBody(ctx, c.httpClient, reqURL, map[string]string{
		"Accept": "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("exchange rate API: %w", err)
	}

	var apiResp ExchangeRateAPIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode exchange rate API response: %w", err)
	}

	if len(apiResp.Rates) == 0 {
		return nil, service.ErrNoRates
	}

	table := c.buildTable(apiResp.Rates)

	c.logger.Debug("Fetched fallback rates", map[string]interface{}{
		"url":        reqURL,
		"base":       apiResp.Base,
		"currencies": len(table),
	})

	return table, nil
}

// buildTable keeps allow-listed codes and converts "foreign per local" quotes
// into "local per foreign" buy/sell rates around the mid.
func (c *ExchangeRateAPIClient) buildTable(quotes map[string]float64) entity.RateTable {
	timestamp := c.now().UTC().Format(time.RFC3339)
	table := make(entity.RateTable, len(c.allowed)+1)

	for _, code := range c.allowed {
		code = entity.NormalizeCode(code)
		if code == c.localCurrency {
			continue
		}
		quote, ok := quotes[code]
		if !ok || quote <= 0 {
			continue
		}

		mid := 1 / quote
		table[code] = entity.RateEntry{
			Currency:  code,
			Buying:    mid * (1 - c.spread),
			Selling:   mid * (1 + c.spread),
			Source:    entity.SourceFallback,
			Timestamp: timestamp,
		}
	}

	table[c.localCurrency] = entity.RateEntry{
		Currency:  c.localCurrency,
		Buying:    1,
		Selling:   1,
		Source:    entity.SourceBase,
		Timestamp: timestamp,
	}

	return table
}
